package tradehistory

import (
	"testing"

	"github.com/etnz/tradehistory/date"
)

func rec(file string, row int, fields map[string]string) Record {
	return Record{Fields: fields, Provenance: Provenance{File: file, Row: row}}
}

func TestMergeDisjointColumns(t *testing.T) {
	// a fund table without code nor currency, and a stock table without account
	funds := []Record{rec("INVST.csv", 1, map[string]string{
		"trade_date":    "2024/02/01",
		"security_name": "オルカン",
		"quantity":      "5,000",
		"account_type":  "つみたてNISA",
	})}
	stocks := []Record{rec("JP.csv", 1, map[string]string{
		"trade_date":        "2024年01月05日",
		"security_code":     "7203",
		"security_name":     "トヨタ自動車",
		"currency":          "JPY",
		"settlement_amount": "20,000",
	})}

	l, diags := Merge(funds, stocks)
	if len(diags) != 0 {
		t.Errorf("Merge() diagnostics = %v, want none", diags)
	}
	if l.Len() != 2 {
		t.Fatalf("Merge().Len() = %d, want 2", l.Len())
	}
	first, second := l.At(0), l.At(1)
	if first.SecurityCode != "7203" || second.SecurityName != "オルカン" {
		t.Errorf("Merge() order = %q, %q want stock first (earlier trade date)", first.SecurityName, second.SecurityName)
	}
	if first.Account != OtherAccount || first.Quantity.Valid {
		t.Errorf("stock account/quantity = %v/%v, want null filled", first.Account, first.Quantity)
	}
	if second.SecurityCode != "" || second.Currency != UnknownCurrency || second.Settlement.Valid {
		t.Errorf("fund code/currency/settlement = %q/%v/%v, want null filled", second.SecurityCode, second.Currency, second.Settlement)
	}
	if second.Account != CumulativeNISA || !second.Quantity.Decimal.Equal(D("5000")) {
		t.Errorf("fund account/quantity = %v/%v, want Cumulative NISA/5000", second.Account, second.Quantity.Decimal)
	}
}

func TestMergeSortsNullDatesLast(t *testing.T) {
	table := []Record{
		rec("a.csv", 1, map[string]string{"trade_date": "", "security_name": "no date 1"}),
		rec("a.csv", 2, map[string]string{"trade_date": "2024/03/01", "security_name": "march"}),
		rec("a.csv", 3, map[string]string{"trade_date": "garbage", "security_name": "no date 2"}),
		rec("a.csv", 4, map[string]string{"trade_date": "2024/01/01", "security_name": "january 1"}),
		rec("a.csv", 5, map[string]string{"trade_date": "2024-01-01", "security_name": "january 2"}),
	}
	l, diags := Merge(table)
	want := []string{"january 1", "january 2", "march", "no date 1", "no date 2"}
	for i, name := range want {
		if got := l.At(i).SecurityName; got != name {
			t.Errorf("ledger[%d] = %q, want %q", i, got, name)
		}
	}
	if got := diags.Count(ParseWarning); got != 2 {
		t.Errorf("ParseWarning count = %d, want 2 (empty and garbage trade dates)", got)
	}
	for _, d := range diags {
		if d.Field != "trade_date" || d.File != "a.csv" || (d.Row != 1 && d.Row != 3) {
			t.Errorf("diagnostic %v, want trade_date warning on a.csv rows 1 or 3", d)
		}
	}
}

func TestMergeNormalizes(t *testing.T) {
	l, diags := Merge([]Record{rec("US.csv", 7, map[string]string{
		"trade_date":        "24/03/01",
		"settlement_date":   "2024/03/05",
		"security_code":     " VOO ",
		"security_name":     "バンガード S&P500 ETF",
		"transaction_type":  "買付",
		"quantity":          "5",
		"price":             "100.25",
		"settlement_amount": "-",
		"currency":          "USD",
		"account_type":      "特定",
		"data_source":       "US.csv",
	})})
	if len(diags) != 0 {
		t.Errorf("Merge() diagnostics = %v, want none", diags)
	}
	tx := l.At(0)
	if tx.TradeDate != date.New(2024, 3, 1) || tx.SettlementDate != date.New(2024, 3, 5) {
		t.Errorf("dates = %v, %v want 2024-03-01, 2024-03-05", tx.TradeDate, tx.SettlementDate)
	}
	if tx.SecurityCode != "VOO" || tx.Type != Buy || tx.TypeLabel != "買付" || tx.Currency != USD || tx.Account != Specific {
		t.Errorf("transaction = %+v, want VOO Buy(買付) USD Specific", tx)
	}
	if !tx.Price.Decimal.Equal(D("100.25")) || tx.Settlement.Valid {
		t.Errorf("price/settlement = %v/%v, want 100.25/null", tx.Price.Decimal, tx.Settlement)
	}
	if tx.Provenance().Row != 7 {
		t.Errorf("Provenance().Row = %d, want 7", tx.Provenance().Row)
	}
}

func TestMergeReportsBadNumbers(t *testing.T) {
	_, diags := Merge([]Record{rec("JP.csv", 2, map[string]string{
		"trade_date": "2024/01/05",
		"quantity":   "n/a",
		"price":      "-",
	})})
	if len(diags) != 1 || diags[0].Field != "quantity" || diags[0].Value != "n/a" || diags[0].Kind != ParseWarning {
		t.Errorf("diagnostics = %v, want one ParseWarning on quantity", diags)
	}
}
