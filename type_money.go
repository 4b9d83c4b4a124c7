package tradehistory

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an exact amount in a currency, used by positions and reports.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns an amount of money.
func M(value decimal.Decimal, currency string) Money { return Money{value: value, cur: currency} }

// Yen returns a JPY amount.
func Yen(value decimal.Decimal) Money { return Money{value: value, cur: "JPY"} }

// currency returns the go-money currency; unknown codes get a default one.
func (m Money) currency() money.Currency {
	// the Money constructor never returns a nil currency
	return *money.New(0, m.cur).Currency()
}

// String formats the amount with the currency conventions, e.g. "¥20,000".
// Amounts are rounded to the currency minor unit.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Currency() string           { return m.cur }
func (m Money) Decimal() decimal.Decimal   { return m.value }
func (m Money) IsZero() bool               { return m.value.IsZero() }
func (m Money) IsPositive() bool           { return m.value.IsPositive() }
func (m Money) IsNegative() bool           { return m.value.IsNegative() }
func (m Money) Neg() Money                 { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Mul(q decimal.Decimal) Money { return Money{value: m.value.Mul(q), cur: m.cur} }
func (m Money) Div(q decimal.Decimal) Money { return Money{value: m.value.Div(q), cur: m.cur} }
func (m Money) Equal(n Money) bool         { return m.value.Equal(n.value) && m.cur == n.cur }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + "!=" + b.cur)
	}
	return a.cur
}

// SignedString returns the amount with an explicit sign, "-" for zero.
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}
