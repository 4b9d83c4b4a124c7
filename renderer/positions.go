package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/tradehistory"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"
)

// PositionsMarkdown renders positions and their realized gains.
func PositionsMarkdown(ps []*tradehistory.Position, method tradehistory.CostBasisMethod) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Positions")
	doc.PlainText(fmt.Sprintf("Cost basis method: %s. Amounts in JPY.", method))

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight,
			md.AlignRight, md.AlignRight, md.AlignRight,
		},
		Header: []string{"Code", "Name", "Quantity", "Cost", "Market Value", "Unrealized", "Realized"},
	}
	realized := tradehistory.Yen(decimal.Zero)
	var warnings []string
	for _, p := range ps {
		value, unrealized := "", ""
		if p.MarketValue.Valid {
			value = tradehistory.Yen(p.MarketValue.Decimal).String()
		}
		if u, ok := p.Unrealized(); ok {
			unrealized = u.SignedString()
		}
		table.Rows = append(table.Rows, []string{
			p.Code,
			p.Name,
			p.Quantity.String(),
			p.Cost.String(),
			value,
			unrealized,
			p.Realized().SignedString(),
		})
		realized = realized.Add(p.Realized())

		if p.NoBuyBeforeSell() {
			warnings = append(warnings, fmt.Sprintf("%s: sold with no purchase on record", p.Code))
		}
		if p.Skipped > 0 {
			warnings = append(warnings, fmt.Sprintf("%s: %d trades without amount or quantity left out", p.Code, p.Skipped))
		}
	}
	doc.Table(table)
	doc.PlainText(fmt.Sprintf("%s %s", md.Bold("Total realized:"), realized.SignedString()))

	if len(warnings) > 0 {
		doc.H2("Warnings")
		doc.BulletList(warnings...)
	}
	return doc.String()
}
