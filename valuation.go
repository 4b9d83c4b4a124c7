package tradehistory

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValuationStatus tells whether a transaction has a JPY amount, and if not why.
type ValuationStatus int

const (
	// NotValued is the status before the valuation engine ran.
	NotValued ValuationStatus = iota
	Valued
	// MissingRate is a USD trade with no USDJPY rate on its trade date.
	MissingRate
	// MissingAmount is a JPY trade with neither settlement amount nor price and quantity.
	MissingAmount
	// UndefinedCurrency is a trade whose currency cannot be valued.
	UndefinedCurrency
)

func (s ValuationStatus) String() string {
	switch s {
	case Valued:
		return "valued"
	case MissingRate:
		return "missing_rate"
	case MissingAmount:
		return "missing_amount"
	case UndefinedCurrency:
		return "undefined_currency"
	default:
		return ""
	}
}

func parseValuationStatus(s string) (ValuationStatus, error) {
	for _, v := range []ValuationStatus{NotValued, Valued, MissingRate, MissingAmount, UndefinedCurrency} {
		if v.String() == s {
			return v, nil
		}
	}
	return NotValued, fmt.Errorf("unknown valuation status %q", s)
}

// Valuation is either a JPY amount or the reason there is none.
//
// Unvalued rows never carry an amount, so they cannot leak into totals.
type Valuation struct {
	status ValuationStatus
	amount decimal.Decimal
}

// ValuedAt returns a successful valuation.
func ValuedAt(amount decimal.Decimal) Valuation { return Valuation{status: Valued, amount: amount} }

// Unvalued returns a failed valuation.
func Unvalued(reason ValuationStatus) Valuation { return Valuation{status: reason} }

// Amount returns the JPY amount and whether there is one.
func (v Valuation) Amount() (decimal.Decimal, bool) { return v.amount, v.status == Valued }

// Status returns the valuation status.
func (v Valuation) Status() ValuationStatus { return v.status }

// OK reports whether the valuation produced an amount.
func (v Valuation) OK() bool { return v.status == Valued }

func (v Valuation) String() string {
	if v.status == Valued {
		return v.amount.String()
	}
	return v.status.String()
}

// Value computes the JPY amount of a transaction.
//
// JPY trades use the settlement amount, or price times quantity when the
// settlement is missing or zero. USD trades need the joined USDJPY rate.
// Any other currency is undefined.
func Value(tx *Transaction) Valuation {
	switch tx.Currency {
	case JPY:
		gross, hasGross := product(tx.Price, tx.Quantity)
		settled := tx.Settlement.Valid && !tx.Settlement.Decimal.IsZero()
		if !settled && hasGross && gross.IsPositive() {
			return ValuedAt(gross)
		}
		if tx.Settlement.Valid {
			return ValuedAt(tx.Settlement.Decimal)
		}
		return Unvalued(MissingAmount)
	case USD:
		gross, ok := product(tx.Price, tx.Quantity)
		if !ok {
			return Unvalued(MissingAmount)
		}
		if !tx.USDJPY.Valid {
			return Unvalued(MissingRate)
		}
		return ValuedAt(gross.Mul(tx.USDJPY.Decimal))
	default:
		return Unvalued(UndefinedCurrency)
	}
}

// product returns a*b when both are present.
func product(a, b decimal.NullDecimal) (decimal.Decimal, bool) {
	if !a.Valid || !b.Valid {
		return decimal.Zero, false
	}
	return a.Decimal.Mul(b.Decimal), true
}

// Valuate values every transaction of the ledger in place. Every row left
// without a JPY amount is reported as ValuationUndefined, the field names the
// missing input.
func (l *Ledger) Valuate(logger Logger) Diagnostics {
	var diags Diagnostics
	for i := range l.txs {
		tx := &l.txs[i]
		tx.Valuation = Value(tx)
		d := Diagnostic{Kind: ValuationUndefined, File: tx.provenance.File, Row: tx.provenance.Row}
		switch tx.Valuation.Status() {
		case Valued:
			continue
		case MissingRate:
			d.Field, d.Value, d.Message = "USDJPY", tx.TradeDate.String(), "no USDJPY rate, row left unvalued"
		case MissingAmount:
			d.Field, d.Value, d.Message = "settlement_amount", nullString(tx.Settlement), "no amount to value"
		default:
			d.Field, d.Value, d.Message = "currency", tx.Currency.String(), "currency cannot be valued in JPY"
		}
		diags = append(diags, d)
	}
	logger.Debug("valued", "transactions", len(l.txs), "unvalued", len(diags))
	return diags
}
