package renderer

import (
	"strings"
	"testing"

	"github.com/etnz/tradehistory"
	"github.com/etnz/tradehistory/date"
	"github.com/shopspring/decimal"
)

func trade(day int, code string, typ tradehistory.TransactionType, qty, amount string) tradehistory.Transaction {
	return tradehistory.Transaction{
		TradeDate:    date.New(2024, 1, day),
		SecurityCode: code,
		SecurityName: "name of " + code,
		Type:         typ,
		Quantity:     decimal.NewNullDecimal(decimal.RequireFromString(qty)),
		Currency:     tradehistory.JPY,
		Valuation:    tradehistory.ValuedAt(decimal.RequireFromString(amount)),
	}
}

func ledger() *tradehistory.Ledger {
	return tradehistory.NewLedger(
		trade(1, "7203", tradehistory.Buy, "10", "20000"),
		trade(2, "7203", tradehistory.Sell, "5", "12500"),
		trade(3, "6758", tradehistory.Sell, "100", "1300000"),
	)
}

// assertContains fails for every want missing from got.
func assertContains(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
}

func TestSummaryMarkdown(t *testing.T) {
	diags := tradehistory.Diagnostics{{Kind: tradehistory.JoinMiss, File: "a.csv", Row: 2}}
	got := SummaryMarkdown(tradehistory.Summarize(ledger(), diags, date.Date{}, 10))
	assertContains(t, got,
		"# Trade History Summary",
		"3 transactions from 2024-01-01 to 2024-01-03.",
		"## By Type",
		"## By Month",
		"2024-01",
		"## Diagnostics",
		"JoinMiss",
		"## Top Securities",
		"name of 6758",
	)
	// 6758 has the largest amount
	if strings.Index(got, "name of 6758") > strings.Index(got, "name of 7203") {
		t.Errorf("top securities not sorted by amount:\n%s", got)
	}
}

func TestSummaryMarkdownEmpty(t *testing.T) {
	got := SummaryMarkdown(tradehistory.Summarize(tradehistory.NewLedger(), nil, date.Date{}, 10))
	assertContains(t, got, "0 transactions, none dated.")
	if strings.Contains(got, "## Top Securities") || strings.Contains(got, "## Diagnostics") {
		t.Errorf("empty summary renders empty sections:\n%s", got)
	}
}

func TestPositionsMarkdown(t *testing.T) {
	ps := tradehistory.Positions(ledger(), tradehistory.FIFO, nil, nil)
	got := PositionsMarkdown(ps, tradehistory.FIFO)
	assertContains(t, got,
		"# Positions",
		"Cost basis method: fifo.",
		"7203",
		"name of 7203",
		"**Total realized:**",
		"## Warnings",
		"6758: sold with no purchase on record",
	)
}

func TestPositionsMarkdownAlignment(t *testing.T) {
	ps := tradehistory.Positions(ledger(), tradehistory.FIFO, nil, nil)
	got := PositionsMarkdown(ps, tradehistory.FIFO)
	assertContains(t, got,
		"| Code | Name | Quantity | Cost | Market Value | Unrealized | Realized |",
		"|:--------|:--------|--------:|--------:|--------:|--------:|--------:|",
	)
}

func TestDiagnosticsMarkdown(t *testing.T) {
	if got := DiagnosticsMarkdown(nil, 0); !strings.Contains(got, "No diagnostics.") {
		t.Errorf("DiagnosticsMarkdown(nil) = %q", got)
	}
	diags := tradehistory.Diagnostics{
		{Kind: tradehistory.ParseWarning, File: "JP.csv", Row: 3, Field: "quantity", Value: "abc", Message: "unparseable number"},
		{Kind: tradehistory.ParseWarning, File: "JP.csv", Row: 4, Field: "quantity", Value: "def", Message: "unparseable number"},
		{Kind: tradehistory.ParseWarning, File: "JP.csv", Row: 5, Field: "quantity", Value: "ghi", Message: "unparseable number"},
		{Kind: tradehistory.UnknownFormat, File: "notes.csv"},
	}
	got := DiagnosticsMarkdown(diags, 2)
	assertContains(t, got, "## UnknownFormat (1)", "## ParseWarning (3)", "notes.csv", "abc", "def", "1 more not shown.")
	if strings.Contains(got, "ghi") {
		t.Errorf("DiagnosticsMarkdown() ignores the limit:\n%s", got)
	}
	if strings.Index(got, "UnknownFormat") > strings.Index(got, "ParseWarning") {
		t.Errorf("kinds not in display order:\n%s", got)
	}
}

func TestFormatsMarkdown(t *testing.T) {
	var adapters []*tradehistory.Adapter
	for _, f := range tradehistory.Formats {
		a, err := tradehistory.AdapterFor(f)
		if err != nil {
			t.Fatalf("AdapterFor(%v) unexpected error: %v", f, err)
		}
		adapters = append(adapters, a)
	}
	got := FormatsMarkdown(adapters)
	for _, want := range []string{"INVST", "SaveFile", "Shift_JIS", "UTF-8", "受渡金額［円］", "settlement_amount"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatsMarkdown() has no %q:\n%s", want, got)
		}
	}
}
