package tradehistory

import (
	"strings"
	"testing"

	"github.com/etnz/tradehistory/date"
)

func fxTable(t *testing.T, content string) *FXTable {
	t.Helper()
	fx, _, err := DecodeFXTable(strings.NewReader(content), "forex_data.csv")
	if err != nil {
		t.Fatalf("DecodeFXTable() unexpected error: %v", err)
	}
	return fx
}

func TestDecodeFXTable(t *testing.T) {
	fx, diags, err := DecodeFXTable(strings.NewReader(strings.Join([]string{
		"Date,USDJPY=X,EURJPY=X",
		"2024-03-01 00:00:00+00:00,150.1,162.3",
		"2024-03-04 00:00:00+09:00,149.8,",
		"2024-03-04 00:00:00+09:00,148.0,161.0",
		"not a date,1,1",
	}, "\n")), "forex_data.csv")
	if err != nil {
		t.Fatalf("DecodeFXTable() unexpected error: %v", err)
	}
	tests := []struct {
		pair string
		on   date.Date
		want string
		ok   bool
	}{
		{"USDJPY", date.New(2024, 3, 1), "150.1", true},
		{"USDJPY=X", date.New(2024, 3, 1), "150.1", true},
		{"EURJPY", date.New(2024, 3, 1), "162.3", true},
		{"USDJPY", date.New(2024, 3, 4), "149.8", true}, // first wins
		{"EURJPY", date.New(2024, 3, 4), "161.0", true}, // first non empty
		{"USDJPY", date.New(2024, 3, 2), "", false},
	}
	for _, tt := range tests {
		got, ok := fx.Rate(tt.pair, tt.on)
		if ok != tt.ok || (ok && !got.Equal(D(tt.want))) {
			t.Errorf("Rate(%s, %v) = %v, %v want %v, %v", tt.pair, tt.on, got, ok, tt.want, tt.ok)
		}
	}
	if diags.Count(ParseWarning) != 2 {
		t.Errorf("diagnostics = %v, want a duplicate date and a bad date warning", diags)
	}
}

func TestDecodeFXTableWithoutDate(t *testing.T) {
	if _, _, err := DecodeFXTable(strings.NewReader("day,USDJPY\n2024-01-01,140\n"), "fx.csv"); err == nil {
		t.Errorf("DecodeFXTable() without Date column want error")
	}
}

func TestJoinFXMissKeepsRow(t *testing.T) {
	fx := fxTable(t, "Date,USDJPY\n2024-03-01,150\n")
	l := NewLedger(
		Transaction{TradeDate: date.New(2024, 3, 1), Currency: USD, Price: ND("100"), Quantity: ND("5")},
		Transaction{TradeDate: date.New(2024, 3, 2), Currency: USD, Price: ND("100"), Quantity: ND("5")},
		Transaction{TradeDate: date.New(2024, 3, 2), Currency: JPY, Settlement: ND("1000")},
	)
	diags := l.JoinFX(fx)
	if l.Len() != 3 {
		t.Fatalf("JoinFX() dropped rows: Len() = %d, want 3", l.Len())
	}
	if diags.Count(JoinMiss) != 1 {
		t.Errorf("JoinMiss count = %d, want 1 (only the USD row depends on the rate)", diags.Count(JoinMiss))
	}
	if !l.At(0).USDJPY.Valid || l.At(1).USDJPY.Valid {
		t.Errorf("USDJPY = %v, %v want set then null", l.At(0).USDJPY, l.At(1).USDJPY)
	}

	l.Valuate(Discard())
	if v := l.At(1).Valuation; v.OK() || v.Status() != MissingRate {
		t.Errorf("USD row without rate valuation = %v, want missing_rate", v)
	}
	if amount, ok := l.At(0).Valuation.Amount(); !ok || !amount.Equal(D("75000")) {
		t.Errorf("USD row valuation = %v, want 75000", l.At(0).Valuation)
	}
}

func TestJoinCrosswalkNeverOverwrites(t *testing.T) {
	cw, diags, err := DecodeCrosswalk(strings.NewReader(strings.Join([]string{
		"security_name,security_code",
		"オルカン,0331418A",
		"トヨタ自動車,9999",
		"オルカン,DUPLICATE",
	}, "\n")), "securitycode.csv")
	if err != nil {
		t.Fatal(err)
	}
	if diags.Count(ParseWarning) != 1 {
		t.Errorf("duplicate crosswalk diagnostics = %v, want 1 warning", diags)
	}
	l := NewLedger(
		Transaction{TradeDate: date.New(2024, 1, 1), SecurityName: "オルカン"},
		Transaction{TradeDate: date.New(2024, 1, 2), SecurityName: "トヨタ自動車", SecurityCode: "7203"},
		Transaction{TradeDate: date.New(2024, 1, 3), SecurityName: "unknown fund"},
	)
	diags = l.JoinCrosswalk(cw)
	want := []string{"0331418A", "7203", ""}
	for i, code := range want {
		if got := l.At(i).SecurityCode; got != code {
			t.Errorf("ledger[%d].SecurityCode = %q, want %q", i, got, code)
		}
	}
	if diags.Count(JoinMiss) != 1 || diags[0].Value != "unknown fund" {
		t.Errorf("diagnostics = %v, want one JoinMiss on unknown fund", diags)
	}
}

func TestRemap(t *testing.T) {
	m := NewRemap()
	if _, err := m.Decode(strings.NewReader("security_name,security_code\nオルカン,ACWI\n"), "securitycode2.csv"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Decode(strings.NewReader("コード,銘柄名,類似米国ETFティッカー\n1655,iシェアーズ S&P500,IVV\n"), "jpxcodesus.csv"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Decode(strings.NewReader("name,code\n"), "bad.csv"); err == nil {
		t.Errorf("Decode() with unknown columns want error")
	}
	l := NewLedger(
		Transaction{TradeDate: date.New(2024, 1, 1), SecurityName: "オルカン", SecurityCode: "0331418A"},
		Transaction{TradeDate: date.New(2024, 1, 2), SecurityName: "iシェアーズ S&P500 米国株 ETF", SecurityCode: "1655"},
		Transaction{TradeDate: date.New(2024, 1, 3), SecurityName: "トヨタ自動車", SecurityCode: "7203"},
	)
	if n := l.ApplyRemap(m); n != 2 {
		t.Errorf("ApplyRemap() = %d, want 2", n)
	}
	want := []string{"ACWI", "IVV", "7203"}
	for i, code := range want {
		if got := l.At(i).SecurityCode; got != code {
			t.Errorf("ledger[%d].SecurityCode = %q, want %q", i, got, code)
		}
	}
}

func TestClassify(t *testing.T) {
	l := NewLedger(
		Transaction{Format: FormatJPStock},
		Transaction{Format: FormatSBIForeign},
		Transaction{Format: FormatInvestmentTrust},
		Transaction{Format: FormatSBIDomestic},
		Transaction{Format: FormatWise},
		Transaction{},
	)
	l.Classify()
	want := []string{JapaneseStock, USStock, InvestmentTrust, JapaneseStockOrIT, ForeignExchange, OtherInvestment}
	for i, w := range want {
		if got := l.At(i).InvestmentType; got != w {
			t.Errorf("ledger[%d].InvestmentType = %q, want %q", i, got, w)
		}
	}
}
