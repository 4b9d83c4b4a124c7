package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/tradehistory"
	md "github.com/nao1215/markdown"
)

// DiagnosticsMarkdown renders diagnostics grouped by kind. At most limit
// rows are listed per kind, all of them when limit <= 0.
func DiagnosticsMarkdown(diags tradehistory.Diagnostics, limit int) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Diagnostics")
	if len(diags) == 0 {
		doc.PlainText("No diagnostics.")
		return doc.String()
	}
	for _, kind := range tradehistory.Kinds {
		n := diags.Count(kind)
		if n == 0 {
			continue
		}
		doc.H2(fmt.Sprintf("%s (%d)", kind, n))
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignLeft, md.AlignLeft},
			Header:    []string{"File", "Row", "Field", "Value", "Message"},
		}
		for _, d := range diags {
			if d.Kind != kind {
				continue
			}
			if limit > 0 && len(table.Rows) == limit {
				break
			}
			row := ""
			if d.Row > 0 {
				row = strconv.Itoa(d.Row)
			}
			table.Rows = append(table.Rows, []string{d.File, row, d.Field, d.Value, d.Message})
		}
		doc.Table(table)
		if limit > 0 && n > limit {
			doc.PlainText(md.Italic(fmt.Sprintf("%d more not shown.", n-limit)))
		}
	}
	return doc.String()
}
