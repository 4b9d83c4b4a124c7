package yahoo

import "strings"

// Symbol returns the Yahoo Finance symbol of a ledger security code: Tokyo
// listed codes get the ".T" suffix, ".JP" codes are moved to ".T" and ".US"
// codes lose their suffix. Other codes, FX pairs such as "USDJPY=X" included,
// are used as is. An empty code has no symbol.
func Symbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch {
	case code == "":
		return ""
	case isDigits(code):
		return code + ".T"
	case strings.HasSuffix(code, ".JP"):
		return strings.TrimSuffix(code, ".JP") + ".T"
	case strings.HasSuffix(code, ".US"):
		return strings.TrimSuffix(code, ".US")
	default:
		return code
	}
}

// PairSymbol returns the symbol of a JPY currency pair, "USD" gives "USDJPY=X".
func PairSymbol(currency string) string { return strings.ToUpper(currency) + "JPY=X" }

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
