package tradehistory

import (
	"fmt"
	"slices"

	"github.com/etnz/tradehistory/date"
	"github.com/shopspring/decimal"
)

// CostBasisMethod defines the method for calculating cost basis.
type CostBasisMethod int

const (
	// AverageCost values sold shares at the weighted average cost of all purchases.
	AverageCost CostBasisMethod = iota
	// FIFO values sold shares at the cost of the oldest remaining purchases.
	FIFO
)

func (m CostBasisMethod) String() string {
	switch m {
	case AverageCost:
		return "average"
	case FIFO:
		return "fifo"
	default:
		return "unknown"
	}
}

// ParseCostBasisMethod parses a string into a CostBasisMethod.
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	switch s {
	case "average":
		return AverageCost, nil
	case "fifo":
		return FIFO, nil
	default:
		return 0, fmt.Errorf("unknown cost basis method: %q", s)
	}
}

// lot is a purchase still held, in JPY.
type lot struct {
	Date     date.Date
	Quantity decimal.Decimal
	Cost     decimal.Decimal
}

type lots []lot

// costOfSelling returns the cost of selling qty shares, oldest lots first.
func (l lots) costOfSelling(qty decimal.Decimal) decimal.Decimal {
	cost := decimal.Zero
	for _, current := range l {
		if current.Quantity.GreaterThan(qty) {
			return cost.Add(current.Cost.Mul(qty).Div(current.Quantity))
		}
		cost = cost.Add(current.Cost)
		qty = qty.Sub(current.Quantity)
	}
	return cost
}

// sell removes qty shares, oldest lots first.
func (l lots) sell(qty decimal.Decimal) lots {
	var remaining lots
	for _, current := range l {
		if qty.IsZero() {
			remaining = append(remaining, current)
			continue
		}
		if current.Quantity.GreaterThan(qty) {
			sold := current.Cost.Mul(qty).Div(current.Quantity)
			remaining = append(remaining, lot{
				Date:     current.Date,
				Quantity: current.Quantity.Sub(qty),
				Cost:     current.Cost.Sub(sold),
			})
			qty = decimal.Zero
			continue
		}
		qty = qty.Sub(current.Quantity)
	}
	return remaining
}

func (l lots) quantity() decimal.Decimal {
	q := decimal.Zero
	for _, x := range l {
		q = q.Add(x.Quantity)
	}
	return q
}

func (l lots) cost() decimal.Decimal {
	c := decimal.Zero
	for _, x := range l {
		c = c.Add(x.Cost)
	}
	return c
}

// Position is the state of one security after walking the ledger.
// Amounts are in JPY.
type Position struct {
	Code     string
	Name     string
	Currency Currency
	Buys     int
	Sells    int
	Quantity decimal.Decimal // shares held
	Cost     Money           // cost basis of the shares held
	Profit   Money           // sum of gains of profitable sells
	Loss     Money           // sum of losses of losing sells, positive
	Skipped  int             // unvalued or quantity-less trades left out

	// Last known price, in the trade currency, and the market value in JPY.
	LastPrice     decimal.NullDecimal
	LastPriceDate date.Date
	MarketValue   decimal.NullDecimal

	purchases    lots
	avgQuantity  decimal.Decimal
	avgCost      decimal.Decimal
	missingBasis bool
}

// Realized returns the net realized gain.
func (p *Position) Realized() Money { return p.Profit.Sub(p.Loss) }

// Unrealized returns market value minus cost basis, when priced.
func (p *Position) Unrealized() (Money, bool) {
	if !p.MarketValue.Valid {
		return Yen(decimal.Zero), false
	}
	return Yen(p.MarketValue.Decimal).Sub(p.Cost), true
}

// NoBuyBeforeSell reports whether a sell happened with no purchase on record.
func (p *Position) NoBuyBeforeSell() bool { return p.missingBasis }

func (p *Position) buy(tx Transaction, amount decimal.Decimal) {
	qty := tx.Quantity.Decimal
	p.Buys++
	p.purchases = append(p.purchases, lot{Date: tx.TradeDate, Quantity: qty, Cost: amount})
	p.avgQuantity = p.avgQuantity.Add(qty)
	p.avgCost = p.avgCost.Add(amount)
	p.Quantity = p.Quantity.Add(qty)
}

func (p *Position) sell(tx Transaction, amount decimal.Decimal, method CostBasisMethod) {
	qty := tx.Quantity.Decimal
	p.Sells++
	if p.avgQuantity.IsZero() {
		// nothing to compute a gain against
		p.missingBasis = true
		p.Quantity = p.Quantity.Sub(qty)
		return
	}
	var cost decimal.Decimal
	switch method {
	case FIFO:
		cost = p.purchases.costOfSelling(qty)
		p.purchases = p.purchases.sell(qty)
	default:
		// the average is over every purchase, held or not
		cost = p.avgCost.Div(p.avgQuantity).Mul(qty)
	}
	gain := amount.Sub(cost)
	if gain.IsPositive() {
		p.Profit = p.Profit.Add(Yen(gain))
	} else {
		p.Loss = p.Loss.Add(Yen(gain.Neg()))
	}
	p.Quantity = p.Quantity.Sub(qty)
}

// Positions walks the ledger in order and returns one position per security
// code, sorted by code. Only Buy and Sell rows with a quantity and a valued
// JPY amount count; other trades of a known security are counted as skipped.
//
// prices holds adjusted close prices per security code, in the trade
// currency; fx converts USD prices to JPY. Both may be nil.
func Positions(l *Ledger, method CostBasisMethod, prices *Series, fx *FXTable) []*Position {
	byCode := make(map[string]*Position)
	for _, tx := range l.txs {
		if tx.SecurityCode == "" || (tx.Type != Buy && tx.Type != Sell) {
			continue
		}
		p, ok := byCode[tx.SecurityCode]
		if !ok {
			p = &Position{Code: tx.SecurityCode, Name: tx.SecurityName, Currency: tx.Currency, Cost: Yen(decimal.Zero), Profit: Yen(decimal.Zero), Loss: Yen(decimal.Zero)}
			byCode[tx.SecurityCode] = p
		}
		amount, valued := tx.Valuation.Amount()
		if !valued || !tx.Quantity.Valid || !tx.Quantity.Decimal.IsPositive() {
			p.Skipped++
			continue
		}
		if tx.Type == Buy {
			p.buy(tx, amount.Abs())
		} else {
			p.sell(tx, amount.Abs(), method)
		}
	}

	positions := make([]*Position, 0, len(byCode))
	for _, p := range byCode {
		switch {
		case method == FIFO:
			p.Cost = Yen(p.purchases.cost())
		case !p.avgQuantity.IsZero() && p.Quantity.IsPositive():
			p.Cost = Yen(p.avgCost.Div(p.avgQuantity).Mul(p.Quantity))
		}
		p.price(prices, fx)
		positions = append(positions, p)
	}
	slices.SortFunc(positions, func(a, b *Position) int {
		switch {
		case a.Code < b.Code:
			return -1
		case a.Code > b.Code:
			return 1
		}
		return 0
	})
	return positions
}

// price sets the last price and the JPY market value.
func (p *Position) price(prices *Series, fx *FXTable) {
	if prices == nil {
		return
	}
	on, close, ok := prices.Latest(p.Code)
	if !ok {
		return
	}
	p.LastPrice = decimal.NewNullDecimal(close)
	p.LastPriceDate = on
	value := close.Mul(p.Quantity)
	switch p.Currency {
	case JPY:
		p.MarketValue = decimal.NewNullDecimal(value)
	case USD:
		if fx == nil {
			return
		}
		if _, rate, ok := fx.Latest("USDJPY"); ok {
			p.MarketValue = decimal.NewNullDecimal(value.Mul(rate))
		}
	}
}
