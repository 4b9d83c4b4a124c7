package tradehistory

import (
	"regexp"
	"strings"
)

// adapters is the fixed table of supported exports, in detection order.
var adapters = []*Adapter{
	{
		Format:   FormatInvestmentTrust,
		Tags:     []string{"INVST"},
		Encoding: ShiftJIS,
		Columns: map[string]string{
			"約定日":             "trade_date",
			"受渡日":             "settlement_date",
			"ファンド名":           "security_name",
			"取引":              "transaction_type",
			"数量［口］":           "quantity",
			"単価":              "price",
			"受渡金額/(ポイント利用)[円]": "settlement_amount",
			"決済通貨":            "currency",
			"口座":              "account_type",
		},
		// funds have no code column, the crosswalk resolves it.
		Const: map[string]string{"security_code": ""},
	},
	{
		Format:   FormatJPStock,
		Tags:     []string{"JP"},
		Encoding: ShiftJIS,
		Columns: map[string]string{
			"約定日":     "trade_date",
			"受渡日":     "settlement_date",
			"銘柄コード":   "security_code",
			"銘柄名":     "security_name",
			"売買区分":    "transaction_type",
			"数量［株］":   "quantity",
			"単価［円］":   "price",
			"受渡金額［円］": "settlement_amount",
			"口座区分":    "account_type",
		},
		Const: map[string]string{"currency": "JPY"},
	},
	{
		Format:   FormatUSStock,
		Tags:     []string{"US"},
		Encoding: ShiftJIS,
		Columns: map[string]string{
			"約定日":      "trade_date",
			"受渡日":      "settlement_date",
			"ティッカー":    "security_code",
			"銘柄名":      "security_name",
			"売買区分":     "transaction_type",
			"数量［株］":    "quantity",
			"単価［USドル］": "price",
			"受渡金額［円］":  "settlement_amount",
			"口座":       "account_type",
		},
		Const: map[string]string{"currency": "USD"},
	},
	{
		Format:   FormatSBIDomestic,
		Tags:     []string{"SaveFile"},
		SkipRows: 8,
		Encoding: ShiftJIS,
		Columns: map[string]string{
			"約定日":       "trade_date",
			"受渡日":       "settlement_date",
			"銘柄コード":     "security_code",
			"銘柄":        "security_name",
			"取引":        "transaction_type",
			"約定数量":      "quantity",
			"約定単価":      "price",
			"受渡金額/決済損益": "settlement_amount",
			"預り":        "account_type",
		},
		Const: map[string]string{"currency": "JPY"},
	},
	{
		Format:   FormatSBIForeign,
		Tags:     []string{"yakujo"},
		SkipRows: 2,
		Encoding: ShiftJIS,
		Columns: map[string]string{
			"国内約定日": "trade_date",
			"国内受渡日": "settlement_date",
			"銘柄名":   "security_name",
			"取引":    "transaction_type",
			"約定数量":  "quantity",
			"約定単価":  "price",
			"受渡金額":  "settlement_amount",
			"通貨":    "currency",
			"預り区分":  "account_type",
		},
		Derive: func(fields map[string]string, _ func(string) string) bool {
			fields["security_code"] = TickerFromName(fields["security_name"])
			return true
		},
	},
	{
		Format:   FormatWise,
		Tags:     []string{"wise", "wize"},
		Encoding: UTF8,
		Columns: map[string]string{
			"完了日":  "trade_date",
			"為替レート": "price",
		},
		Derive: deriveWise,
	},
}

var tickerPattern = regexp.MustCompile(`^\s*([^\s/]+) / `)

// TickerFromName extracts the leading ticker of an SBI foreign stock name
// written as "AAPL / アップル". It returns "" when the name does not start
// with such a token.
func TickerFromName(name string) string {
	m := tickerPattern.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1]
}

// PairSymbol returns the market symbol of a currency conversion, the same for
// both directions: USD to JPY and JPY to USD are both "USDJPY=X".
func PairSymbol(from, to string) string {
	switch {
	case pairOf(from, to, "EUR", "JPY"):
		return "EURJPY=X"
	case pairOf(from, to, "USD", "JPY"):
		return "USDJPY=X"
	case pairOf(from, to, "EUR", "USD"):
		return "EURUSD=X"
	}
	return from + to + "=X"
}

func pairOf(from, to, base, quote string) bool {
	return (from == base && to == quote) || (from == quote && to == base)
}

// deriveWise keeps completed conversions and maps them to a trade of the
// foreign currency: buying USD or EUR is a Buy, anything else a Sell.
func deriveWise(fields map[string]string, native func(string) string) bool {
	if native("ステータス") != "COMPLETED" || native("送金の種類") != "NEUTRAL" {
		return false
	}
	from := strings.ToUpper(strings.TrimSpace(native("送金元通貨.1")))
	to := strings.ToUpper(strings.TrimSpace(native("受取通貨")))
	fromAmount := native("送金額（手数料差し引き後）")
	toAmount := native("受取額（手数料差し引き後）")

	symbol := PairSymbol(from, to)
	fields["security_code"] = symbol
	fields["security_name"] = strings.TrimSuffix(symbol, "=X")
	fields["settlement_date"] = fields["trade_date"]
	fields["account_type"] = ""

	if to == "USD" || to == "EUR" {
		fields["transaction_type"] = "buy " + to
		fields["quantity"] = toAmount
	} else {
		fields["transaction_type"] = "sell " + from
		fields["quantity"] = fromAmount
	}

	// the JPY leg is the settlement, conversions without one cannot be valued.
	switch {
	case to == "JPY":
		fields["settlement_amount"] = toAmount
		fields["currency"] = "JPY"
	case from == "JPY":
		fields["settlement_amount"] = fromAmount
		fields["currency"] = "JPY"
	default:
		fields["settlement_amount"] = ""
		fields["currency"] = from
	}
	return true
}
