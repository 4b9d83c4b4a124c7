package tradehistory

import (
	"errors"
	"strings"
	"testing"
)

// assertCanonical fails if a record carries a non canonical column.
func assertCanonical(t *testing.T, records []Record) {
	t.Helper()
	for _, r := range records {
		for k := range r.Fields {
			if !isColumn(k) {
				t.Errorf("record %s:%d has non canonical column %q", r.Provenance.File, r.Provenance.Row, k)
			}
		}
	}
}

func TestAdaptJPStock(t *testing.T) {
	content := sjis(t,
		jpHeader,
		"2024/01/05,2024/01/09,7203,トヨタ自動車,特定,買付,10,\"2,000\",\"20,000\"",
	)
	records, diags := adaptString(t, FormatJPStock, "tradehistory(JP)_20240110.csv", content)
	if len(diags) != 0 {
		t.Errorf("Adapt() diagnostics = %v, want none", diags)
	}
	if len(records) != 1 {
		t.Fatalf("Adapt() = %d records, want 1", len(records))
	}
	assertCanonical(t, records)
	r := records[0]
	want := map[string]string{
		"trade_date":        "2024/01/05",
		"settlement_date":   "2024/01/09",
		"security_code":     "7203",
		"security_name":     "トヨタ自動車",
		"transaction_type":  "買付",
		"quantity":          "10",
		"price":             "2,000",
		"settlement_amount": "20,000",
		"currency":          "JPY",
		"account_type":      "特定",
		"data_source":       "tradehistory(JP)_20240110.csv",
	}
	for k, v := range want {
		if got := r.Get(k); got != v {
			t.Errorf("record[%q] = %q, want %q", k, got, v)
		}
	}
	if r.Provenance.Row != 1 || r.Provenance.Record["銘柄名"] != "トヨタ自動車" || r.Provenance.ID == "" {
		t.Errorf("Provenance = %+v, want row 1 with raw record and id", r.Provenance)
	}
}

func TestAdaptInvestmentTrustHasNoCode(t *testing.T) {
	content := sjis(t,
		invstHeader,
		"2024/02/01,2024/02/06,eMAXIS Slim 全世界株式（オール・カントリー）,つみたてNISA,買付,\"5,000\",\"20,000\",\"10,000\",円",
	)
	records, _ := adaptString(t, FormatInvestmentTrust, "tradehistory(INVST)_20240301.csv", content)
	if len(records) != 1 {
		t.Fatalf("Adapt() = %d records, want 1", len(records))
	}
	assertCanonical(t, records)
	if code, ok := records[0].Fields["security_code"]; !ok || code != "" {
		t.Errorf("security_code = %q (present=%v), want empty and present", code, ok)
	}
	if got := records[0].Get("currency"); got != "円" {
		t.Errorf("currency = %q, want 円", got)
	}
}

func TestAdaptUSStock(t *testing.T) {
	content := sjis(t,
		usHeader,
		"2024/03/01,2024/03/05,VOO,バンガード S&P500 ETF,特定,買付,5,100,\"75,500\"",
	)
	records, _ := adaptString(t, FormatUSStock, "tradehistory(US)_20240310.csv", content)
	if len(records) != 1 {
		t.Fatalf("Adapt() = %d records, want 1", len(records))
	}
	assertCanonical(t, records)
	if got := records[0].Get("currency"); got != "USD" {
		t.Errorf("currency = %q, want USD", got)
	}
	if got := records[0].Get("security_code"); got != "VOO" {
		t.Errorf("security_code = %q, want VOO", got)
	}
}

func TestAdaptSBIDomesticSkipsPreamble(t *testing.T) {
	lines := []string{
		"CSV作成日,2024/04/01",
		"",
		"約定履歴照会",
		"期間,2024/01/01-2024/03/31",
		"",
		"件数,1",
		"",
		"明細",
		sbiHeader,
		"2024/03/15,ソニーグループ,6758,東証,株式現物買,--,特定,--,100,\"13,000\",0,0,2024/03/19,\"1,300,000\"",
	}
	records, diags := adaptString(t, FormatSBIDomestic, "SaveFile_000001.csv", sjis(t, lines...))
	if len(diags) != 0 {
		t.Errorf("Adapt() diagnostics = %v, want none", diags)
	}
	if len(records) != 1 {
		t.Fatalf("Adapt() = %d records, want 1", len(records))
	}
	assertCanonical(t, records)
	r := records[0]
	if r.Get("security_code") != "6758" || r.Get("settlement_amount") != "1,300,000" || r.Get("currency") != "JPY" {
		t.Errorf("record = %v, want code 6758, settlement 1,300,000, JPY", r.Fields)
	}
}

func TestAdaptSBIForeignTicker(t *testing.T) {
	content := sjis(t,
		"約定履歴",
		"",
		yakujoHeader,
		"2024/05/02,2024/05/07,AAPL / アップル,買付,特定,3,170.5,USD,\"79,000\"",
		"2024/05/03,2024/05/08,アップル,買付,特定,1,171,USD,\"26,000\"",
		"2024/05/06,2024/05/09,BRK.B / バークシャー,買付,特定,2,410,USD,\"125,000\"",
		"2024/05/07,2024/05/10,ヴァンガード VOO / ETF,買付,特定,1,470,USD,\"72,000\"",
	)
	records, _ := adaptString(t, FormatSBIForeign, "yakujo20240510.csv", content)
	if len(records) != 4 {
		t.Fatalf("Adapt() = %d records, want 4", len(records))
	}
	assertCanonical(t, records)
	for i, want := range []string{"AAPL", "", "BRK.B", ""} {
		if got := records[i].Get("security_code"); got != want {
			t.Errorf("security_code of %q = %q, want %q", records[i].Get("security_name"), got, want)
		}
	}
}

func TestTickerFromName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"AAPL / アップル", "AAPL"},
		{" VT / バンガード・トータル・ワールド", "VT"},
		{"BRK.B / バークシャー", "BRK.B"},
		{"ヴァンガード VOO / ETF", ""},
		{"アップル", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := TickerFromName(tt.name); got != tt.want {
			t.Errorf("TickerFromName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestAdaptWise(t *testing.T) {
	content := strings.Join([]string{
		"\ufeff" + wiseHeader,
		"TRANSFER-1,COMPLETED,NEUTRAL,2024-06-01 09:00:00,2024-06-01 10:00:00,JPY,150000,JPY,1000,USD,0.00666",
		"TRANSFER-2,COMPLETED,NEUTRAL,2024-06-02 09:00:00,2024-06-02 10:00:00,USD,500,USD,74500,JPY,149",
		"TRANSFER-3,CANCELLED,NEUTRAL,2024-06-03 09:00:00,,JPY,1000,JPY,6.6,USD,0.0066",
		"TRANSFER-4,COMPLETED,OUT,2024-06-04 09:00:00,2024-06-04 10:00:00,JPY,1000,JPY,6.6,USD,0.0066",
		"TRANSFER-5,COMPLETED,NEUTRAL,2024-06-05 09:00:00,2024-06-05 10:00:00,EUR,100,EUR,108,USD,1.08",
	}, "\n")
	records, _ := adaptString(t, FormatWise, "wizefx.csv", content)
	if len(records) != 3 {
		t.Fatalf("Adapt() = %d records, want 3 completed conversions", len(records))
	}
	assertCanonical(t, records)

	tests := []struct {
		code, label, quantity, settlement, currency string
	}{
		{"USDJPY=X", "buy USD", "1000", "150000", "JPY"},
		{"USDJPY=X", "sell USD", "500", "74500", "JPY"},
		{"EURUSD=X", "buy USD", "108", "", "EUR"},
	}
	for i, tt := range tests {
		r := records[i]
		if r.Get("security_code") != tt.code || r.Get("transaction_type") != tt.label ||
			r.Get("quantity") != tt.quantity || r.Get("settlement_amount") != tt.settlement ||
			r.Get("currency") != tt.currency {
			t.Errorf("record %d = %v, want %+v", i, r.Fields, tt)
		}
	}
}

func TestAdaptMissingColumn(t *testing.T) {
	// an older export without the account column
	content := sjis(t,
		"約定日,受渡日,銘柄コード,銘柄名,売買区分,数量［株］,単価［円］,受渡金額［円］",
		"2024/01/05,2024/01/09,7203,トヨタ自動車,買付,10,2000,20000",
	)
	records, diags := adaptString(t, FormatJPStock, "JP.csv", content)
	if len(records) != 1 {
		t.Fatalf("Adapt() = %d records, want 1", len(records))
	}
	if _, ok := records[0].Fields["account_type"]; ok {
		t.Errorf("account_type present, want absent (null)")
	}
	if diags.Count(ParseWarning) != 1 || diags[0].Field != "口座区分" {
		t.Errorf("diagnostics = %v, want one ParseWarning on 口座区分", diags)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		file string
		want SourceFormat
	}{
		{"RAWDATA/tradehistory(INVST)_20240921.csv", FormatInvestmentTrust},
		{"tradehistory(JP)_20240921.csv", FormatJPStock},
		{"tradehistory(US)_20240921.csv", FormatUSStock},
		{"SaveFile_000001.csv", FormatSBIDomestic},
		{"yakujo20240921.csv", FormatSBIForeign},
		{"wizefx.csv", FormatWise},
		// first tag wins
		{"INVST_JP_US.csv", FormatInvestmentTrust},
		{"JP_US.csv", FormatJPStock},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.file)
		if err != nil || got != tt.want {
			t.Errorf("DetectFormat(%q) = %v, %v want %v", tt.file, got, err, tt.want)
		}
	}

	_, err := DetectFormat("RAWDATA/JP/notes.csv")
	var unknown *UnknownFormatError
	if !errors.As(err, &unknown) || unknown.File != "RAWDATA/JP/notes.csv" {
		t.Errorf("DetectFormat(notes.csv) error = %v, want UnknownFormatError naming the file", err)
	}
}

func TestParseSourceFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseSourceFormat(f.String())
		if err != nil || got != f {
			t.Errorf("ParseSourceFormat(%q) = %v, %v want %v", f.String(), got, err, f)
		}
	}
	if got, err := ParseSourceFormat("savefile"); err != nil || got != FormatSBIDomestic {
		t.Errorf("ParseSourceFormat(savefile) = %v, %v want SaveFile", got, err)
	}
	if _, err := ParseSourceFormat("csv"); err == nil {
		t.Errorf("ParseSourceFormat(csv) want error")
	}
}

func TestPairSymbol(t *testing.T) {
	tests := []struct{ from, to, want string }{
		{"USD", "JPY", "USDJPY=X"},
		{"JPY", "USD", "USDJPY=X"},
		{"EUR", "JPY", "EURJPY=X"},
		{"JPY", "EUR", "EURJPY=X"},
		{"USD", "EUR", "EURUSD=X"},
		{"GBP", "JPY", "GBPJPY=X"},
	}
	for _, tt := range tests {
		if got := PairSymbol(tt.from, tt.to); got != tt.want {
			t.Errorf("PairSymbol(%q, %q) = %q, want %q", tt.from, tt.to, got, tt.want)
		}
	}
}
