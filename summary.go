package tradehistory

import (
	"cmp"
	"slices"

	"github.com/etnz/tradehistory/date"
	"github.com/shopspring/decimal"
)

// Count is a label and how many transactions carry it.
type Count struct {
	Label string
	N     int
}

// SecurityTotal aggregates the trades of one security code.
type SecurityTotal struct {
	Code       string
	Name       string
	Trades     int
	Quantity   decimal.Decimal // bought minus sold
	Settlement decimal.Decimal // sum of settlement amounts
	Amount     decimal.Decimal // sum of valued JPY amounts
}

// Summary is a descriptive overview of a ledger.
type Summary struct {
	Transactions int
	Range        date.Range
	Unvalued     int

	ByType           []Count
	ByAccount        []Count
	ByCurrency       []Count
	BySource         []Count
	ByInvestmentType []Count
	ByMonth          []Count // chronological, "2006-01"
	Missing          []Count // null values per canonical column
	Diagnostics      []Count // per kind

	// Invested is the sum of valued JPY amounts of Buy trades up to AsOf.
	Invested Money
	AsOf     date.Date
	// Traded is the sum of every valued JPY amount.
	Traded Money

	TopSecurities []SecurityTotal // by JPY amount, descending
	Securities    []SecurityTotal // by code
}

// Summarize computes the summary of a ledger as of a day. top bounds the
// number of TopSecurities.
func Summarize(l *Ledger, diags Diagnostics, asOf date.Date, top int) *Summary {
	s := &Summary{
		Transactions: l.Len(),
		Range:        l.DateRange(),
		AsOf:         asOf,
		Invested:     Yen(decimal.Zero),
		Traded:       Yen(decimal.Zero),
	}

	var types, accounts, currencies, sources, investments, months counter
	missing := make(map[string]int)
	securities := make(map[string]*SecurityTotal)

	for _, tx := range l.txs {
		types.add(tx.Type.String())
		accounts.add(tx.Account.String())
		currencies.add(tx.Currency.String())
		sources.add(tx.DataSource)
		investments.add(tx.InvestmentType)
		if !tx.TradeDate.IsZero() {
			months.add(date.NewRange(tx.TradeDate, date.Monthly).Identifier())
		}
		for column, null := range map[string]bool{
			"trade_date":        tx.TradeDate.IsZero(),
			"settlement_date":   tx.SettlementDate.IsZero(),
			"security_code":     tx.SecurityCode == "",
			"quantity":          !tx.Quantity.Valid,
			"price":             !tx.Price.Valid,
			"settlement_amount": !tx.Settlement.Valid,
			"amount_jpy":        !tx.Valuation.OK(),
		} {
			if null {
				missing[column]++
			}
		}

		amount, valued := tx.Valuation.Amount()
		if !valued {
			s.Unvalued++
		} else {
			s.Traded = s.Traded.Add(Yen(amount))
			if tx.Type == Buy && (asOf.IsZero() || !tx.TradeDate.After(asOf)) {
				s.Invested = s.Invested.Add(Yen(amount))
			}
		}

		if tx.SecurityCode == "" {
			continue
		}
		st, ok := securities[tx.SecurityCode]
		if !ok {
			st = &SecurityTotal{Code: tx.SecurityCode, Name: tx.SecurityName}
			securities[tx.SecurityCode] = st
		}
		st.Trades++
		if tx.Quantity.Valid {
			switch tx.Type {
			case Buy:
				st.Quantity = st.Quantity.Add(tx.Quantity.Decimal)
			case Sell:
				st.Quantity = st.Quantity.Sub(tx.Quantity.Decimal)
			}
		}
		if tx.Settlement.Valid {
			st.Settlement = st.Settlement.Add(tx.Settlement.Decimal)
		}
		if valued {
			st.Amount = st.Amount.Add(amount)
		}
	}

	s.ByType = types.sorted()
	s.ByAccount = accounts.sorted()
	s.ByCurrency = currencies.sorted()
	s.BySource = sources.sorted()
	s.ByInvestmentType = investments.sorted()
	s.ByMonth = months.chronological()
	for _, column := range Columns {
		if n := missing[column]; n > 0 {
			s.Missing = append(s.Missing, Count{Label: column, N: n})
		}
	}
	for _, k := range Kinds {
		if n := diags.Count(k); n > 0 {
			s.Diagnostics = append(s.Diagnostics, Count{Label: k.String(), N: n})
		}
	}

	for _, st := range securities {
		s.Securities = append(s.Securities, *st)
	}
	slices.SortFunc(s.Securities, func(a, b SecurityTotal) int { return cmp.Compare(a.Code, b.Code) })
	s.TopSecurities = slices.Clone(s.Securities)
	slices.SortStableFunc(s.TopSecurities, func(a, b SecurityTotal) int { return b.Amount.Cmp(a.Amount) })
	if top >= 0 && len(s.TopSecurities) > top {
		s.TopSecurities = s.TopSecurities[:top]
	}
	return s
}

// counter counts labels.
type counter struct {
	n map[string]int
}

func (c *counter) add(label string) {
	if c.n == nil {
		c.n = make(map[string]int)
	}
	c.n[label]++
}

// sorted returns the counts, most frequent first, then by label.
func (c *counter) sorted() []Count {
	counts := c.chronological()
	slices.SortStableFunc(counts, func(a, b Count) int { return cmp.Compare(b.N, a.N) })
	return counts
}

// chronological returns the counts sorted by label.
func (c *counter) chronological() []Count {
	counts := make([]Count, 0, len(c.n))
	for label, n := range c.n {
		counts = append(counts, Count{Label: label, N: n})
	}
	slices.SortFunc(counts, func(a, b Count) int { return cmp.Compare(a.Label, b.Label) })
	return counts
}
