package yahoo

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/tradehistory"
	"github.com/etnz/tradehistory/date"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Prices returns the adjusted close prices of security codes over a range,
// one column per code. Codes that could not be fetched are returned in the
// error map and do not stop the others. The returned error is only set when
// ctx is done.
func (c *Client) Prices(ctx context.Context, codes []string, r date.Range) (*tradehistory.Series, map[string]error, error) {
	var names, symbols []string
	for _, code := range codes {
		if sym := Symbol(code); sym != "" {
			names, symbols = append(names, code), append(symbols, sym)
		}
	}
	return c.series(ctx, names, symbols, AdjClose, r)
}

// Rates returns the daily closes of currencies against JPY over a range,
// one column per pair ("USDJPY").
func (c *Client) Rates(ctx context.Context, currencies []string, r date.Range) (*tradehistory.FXTable, map[string]error, error) {
	var names, symbols []string
	for _, cur := range currencies {
		sym := PairSymbol(cur)
		names, symbols = append(names, strings.TrimSuffix(sym, "=X")), append(symbols, sym)
	}
	s, errs, err := c.series(ctx, names, symbols, Close, r)
	if err != nil {
		return nil, nil, err
	}
	return &tradehistory.FXTable{Series: s}, errs, nil
}

// series fetches symbols concurrently and stores them under names. Columns
// keep the order of names, columns without any value are left out.
func (c *Client) series(ctx context.Context, names, symbols []string, field Field, r date.Range) (*tradehistory.Series, map[string]error, error) {
	workers := c.Workers
	if workers <= 0 {
		workers = 1
	}
	histories := make([]*date.History[decimal.Decimal], len(symbols))
	failures := make([]error, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sym := range symbols {
		g.Go(func() error {
			h, err := c.fetch(gctx, sym, field, r)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			histories[i], failures[i] = h, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	s := tradehistory.NewSeries()
	errs := make(map[string]error)
	for i, name := range names {
		if failures[i] != nil {
			errs[name] = failures[i]
			c.logger.Warn("fetch failed", "code", name, "symbol", symbols[i], "err", failures[i])
		}
		if histories[i] == nil {
			continue
		}
		for on, v := range histories[i].Values() {
			s.Set(name, on, v)
		}
		c.logger.Debug("fetched", "code", name, "symbol", symbols[i], "days", histories[i].Len())
	}
	return s, errs, nil
}

// fetch gets a symbol one year at a time. A code is given up after
// MaxFailures consecutive failed years, or at once when the failure is
// permanent. The years fetched so far are kept.
func (c *Client) fetch(ctx context.Context, symbol string, field Field, r date.Range) (*date.History[decimal.Decimal], error) {
	h := new(date.History[decimal.Decimal])
	failures := 0
	var last error
	for _, chunk := range years(r) {
		part, err := c.History(ctx, symbol, field, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures++
			last = err
			if permanent(err) || failures >= c.MaxFailures {
				return h, fmt.Errorf("given up after %d consecutive failures: %w", failures, err)
			}
			continue
		}
		failures = 0
		for on, v := range part.Values() {
			h.Append(on, v)
		}
	}
	if h.Len() == 0 && last != nil {
		return nil, last
	}
	return h, nil
}

// years splits a range on calendar years.
func years(r date.Range) []date.Range {
	var chunks []date.Range
	for from := r.From; !from.After(r.To); from = from.EndOf(date.Yearly).Add(1) {
		to := from.EndOf(date.Yearly)
		if to.After(r.To) {
			to = r.To
		}
		chunks = append(chunks, date.Range{From: from, To: to})
	}
	return chunks
}
