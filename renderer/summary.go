package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/tradehistory"
	md "github.com/nao1215/markdown"
)

// SummaryMarkdown renders a ledger summary.
func SummaryMarkdown(s *tradehistory.Summary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Trade History Summary")
	if s.Range.From.IsZero() {
		doc.PlainText(fmt.Sprintf("%d transactions, none dated.", s.Transactions))
	} else {
		doc.PlainText(fmt.Sprintf("%d transactions from %s to %s.", s.Transactions, s.Range.From, s.Range.To))
	}

	asOf := "Total Invested"
	if !s.AsOf.IsZero() {
		asOf = fmt.Sprintf("Invested as of %s", s.AsOf)
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold(asOf), md.Bold(s.Invested.String())},
		Rows: [][]string{
			{"Traded", s.Traded.String()},
			{"Unvalued transactions", strconv.Itoa(s.Unvalued)},
		},
	})

	counts(doc, "By Type", "Type", s.ByType)
	counts(doc, "By Account", "Account", s.ByAccount)
	counts(doc, "By Currency", "Currency", s.ByCurrency)
	counts(doc, "By Investment Type", "Investment Type", s.ByInvestmentType)
	counts(doc, "By Source File", "File", s.BySource)
	counts(doc, "By Month", "Month", s.ByMonth)
	counts(doc, "Missing Values", "Column", s.Missing)
	counts(doc, "Diagnostics", "Kind", s.Diagnostics)

	if len(s.TopSecurities) > 0 {
		doc.H2("Top Securities")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"Code", "Name", "Trades", "Quantity", "Amount"},
		}
		for _, st := range s.TopSecurities {
			table.Rows = append(table.Rows, []string{
				st.Code,
				st.Name,
				strconv.Itoa(st.Trades),
				st.Quantity.String(),
				tradehistory.Yen(st.Amount).String(),
			})
		}
		doc.Table(table)
	}
	return doc.String()
}

// counts renders a section of label counts, nothing when empty.
func counts(doc *md.Markdown, title, label string, cs []tradehistory.Count) {
	if len(cs) == 0 {
		return
	}
	doc.H2(title)
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{label, "Count"},
	}
	for _, c := range cs {
		name := c.Label
		if name == "" {
			name = md.Italic("none")
		}
		table.Rows = append(table.Rows, []string{name, strconv.Itoa(c.N)})
	}
	doc.Table(table)
}
