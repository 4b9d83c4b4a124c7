package renderer

import (
	"bytes"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/etnz/tradehistory"
	md "github.com/nao1215/markdown"
)

// FormatsMarkdown renders the export formats and their native columns.
func FormatsMarkdown(adapters []*tradehistory.Adapter) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Export Formats")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Format", "File Name Tags", "Encoding", "Preamble Lines"},
		Rows: func() [][]string {
			var rows [][]string
			for _, a := range adapters {
				rows = append(rows, []string{a.Format.String(), strings.Join(a.Tags, ", "), a.Encoding.String(), strconv.Itoa(a.SkipRows)})
			}
			return rows
		}(),
	})

	for _, a := range adapters {
		doc.H2(a.Format.String())
		table := md.TableSet{Header: []string{"Native Column", "Canonical Column"}}
		for _, native := range slices.Sorted(maps.Keys(a.Columns)) {
			table.Rows = append(table.Rows, []string{native, a.Columns[native]})
		}
		for _, column := range slices.Sorted(maps.Keys(a.Const)) {
			table.Rows = append(table.Rows, []string{md.Italic("constant " + a.Const[column]), column})
		}
		doc.Table(table)
	}
	return doc.String()
}
