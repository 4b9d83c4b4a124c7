package tradehistory

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/width"
)

var numberPattern = regexp.MustCompile(`-?\d+(\.\d+)?`)

// CleanNumeric parses an amount as written in an export: "1,234", "2,000円",
// "１２３", "(500)" or "12.5 口".
//
// Thousands separators and the yen glyph are removed, full width digits are
// folded, and the first signed number is kept. Parentheses are dropped, so
// "(500)" is 500, not -500. "-" and text without digits are null.
func CleanNumeric(text string) decimal.NullDecimal {
	text = width.Fold.String(strings.TrimSpace(text))
	text = strings.NewReplacer(",", "", "円", "").Replace(text)
	if text == "" || text == "-" {
		return decimal.NullDecimal{}
	}
	match := numberPattern.FindString(text)
	if match == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// trade type vocabularies, Japanese and English. English terms match case insensitively.
var (
	buyTerms  = []string{"買", "buy", "買付", "再投資", "入庫"}
	sellTerms = []string{"売", "sell", "解約"}
)

// StandardizeTransactionType maps a free text label to Buy, Sell or Other.
// An empty label is Unknown. Labels are matched by substring; buy terms are
// checked first.
func StandardizeTransactionType(label string) TransactionType {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" || label == "nan" {
		return Unknown
	}
	for _, term := range buyTerms {
		if strings.Contains(label, term) {
			return Buy
		}
	}
	for _, term := range sellTerms {
		if strings.Contains(label, term) {
			return Sell
		}
	}
	return Other
}

// StandardizeCurrency maps a currency label to JPY, USD or UnknownCurrency.
func StandardizeCurrency(label string) Currency {
	switch strings.ToUpper(strings.TrimSpace(width.Fold.String(label))) {
	case "JPY", "日本円", "円":
		return JPY
	case "USD", "米国ドル", "米ドル":
		return USD
	}
	return UnknownCurrency
}

// StandardizeAccountType maps an account label to its canonical type.
func StandardizeAccountType(label string) AccountType {
	label = strings.TrimSpace(width.Fold.String(label))
	switch {
	case strings.Contains(label, "特定"):
		return Specific
	case strings.Contains(label, "つみたてNISA"):
		return CumulativeNISA
	case strings.Contains(label, "一般"):
		return General
	}
	return OtherAccount
}
