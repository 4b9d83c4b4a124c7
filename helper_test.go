package tradehistory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/japanese"
)

// sjis encodes lines as a Shift_JIS CSV, the way brokers export them.
func sjis(t *testing.T, lines ...string) string {
	t.Helper()
	s, err := japanese.ShiftJIS.NewEncoder().String(strings.Join(lines, "\r\n") + "\r\n")
	if err != nil {
		t.Fatalf("cannot encode fixture to Shift_JIS: %v", err)
	}
	return s
}

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// D is a helper for test to create decimals from literals.
func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ND is a helper for test to create a valid NullDecimal from literals.
func ND(s string) decimal.NullDecimal { return decimal.NewNullDecimal(D(s)) }

// adaptString adapts an in-memory export with the adapter of a format.
func adaptString(t *testing.T, f SourceFormat, name, content string) ([]Record, Diagnostics) {
	t.Helper()
	a, err := AdapterFor(f)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := a.Read(strings.NewReader(content), name)
	if err != nil {
		t.Fatalf("Read(%s) unexpected error: %v", name, err)
	}
	return a.Adapt(raw, name)
}

const (
	jpHeader     = "約定日,受渡日,銘柄コード,銘柄名,口座区分,売買区分,数量［株］,単価［円］,受渡金額［円］"
	usHeader     = "約定日,受渡日,ティッカー,銘柄名,口座,売買区分,数量［株］,単価［USドル］,受渡金額［円］"
	invstHeader  = "約定日,受渡日,ファンド名,口座,取引,数量［口］,単価,受渡金額/(ポイント利用)[円],決済通貨"
	sbiHeader    = "約定日,銘柄,銘柄コード,市場,取引,期限,預り,課税,約定数量,約定単価,手数料/諸経費等,税額,受渡日,受渡金額/決済損益"
	yakujoHeader = "国内約定日,国内受渡日,銘柄名,取引,預り区分,約定数量,約定単価,通貨,受渡金額"
	wiseHeader   = "ID,ステータス,送金の種類,作成日,完了日,送金元通貨,送金額（手数料差し引き後）,送金元通貨,受取額（手数料差し引き後）,受取通貨,為替レート"
)
