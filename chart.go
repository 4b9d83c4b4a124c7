package tradehistory

import (
	"encoding/json"
	"io"

	"github.com/etnz/tradehistory/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Point is one adjusted close price.
type Point struct {
	Date  date.Date       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// Marker is one trade drawn over a price chart.
type Marker struct {
	Date      date.Date       `json:"date"`
	Amount    decimal.Decimal `json:"amount_jpy"`
	Direction string          `json:"direction"` // "Buy" or "Sell"
}

// Chart is what a chart renderer needs for one security: its adjusted close
// series and the trades made on it.
type Chart struct {
	Code    string   `json:"security_code"`
	Name    string   `json:"security_name,omitempty"`
	Prices  []Point  `json:"prices"`
	Markers []Marker `json:"markers"`
}

// ChartOf builds the chart of a security code. Trades without a trade date or
// a valued amount, and trades other than Buy or Sell, have no marker.
func ChartOf(l *Ledger, prices *Series, code string) Chart {
	c := Chart{Code: code, Prices: []Point{}, Markers: []Marker{}}
	if prices != nil {
		if h := prices.Column(code); h != nil {
			for on, v := range h.Values() {
				c.Prices = append(c.Prices, Point{Date: on, Close: v})
			}
		}
	}
	for _, tx := range l.txs {
		if tx.SecurityCode != code {
			continue
		}
		if c.Name == "" {
			c.Name = tx.SecurityName
		}
		amount, ok := tx.Valuation.Amount()
		if !ok || tx.TradeDate.IsZero() || (tx.Type != Buy && tx.Type != Sell) {
			continue
		}
		c.Markers = append(c.Markers, Marker{Date: tx.TradeDate, Amount: amount, Direction: tx.Type.String()})
	}
	return c
}

// Charts builds the chart of every security code of the ledger.
func Charts(l *Ledger, prices *Series) []Chart {
	codes := l.SecurityCodes()
	charts := make([]Chart, 0, len(codes))
	for _, code := range codes {
		charts = append(charts, ChartOf(l, prices, code))
	}
	return charts
}

// EncodeCharts writes charts as indented JSON.
func EncodeCharts(w io.Writer, charts []Chart) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(charts)
}
