package tradehistory

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Record is a transaction shaped row before normalization: canonical column
// names mapped to the raw text found in the export.
type Record struct {
	Format     SourceFormat
	Fields     map[string]string
	Provenance Provenance
}

// Get returns the raw text of a canonical column, "" when absent.
func (r Record) Get(column string) string { return r.Fields[column] }

// Adapter maps one export schema to the canonical columns.
type Adapter struct {
	Format   SourceFormat
	Tags     []string // file name tags, see DetectFormat
	SkipRows int      // preamble lines before the header
	Encoding Encoding

	// Columns renames native columns to canonical ones.
	Columns map[string]string
	// Const sets canonical columns to a fixed value.
	Const map[string]string
	// Derive, if set, completes the canonical fields from the native row.
	// Returning false drops the row.
	Derive func(fields map[string]string, native func(name string) string) bool
}

// Adapt maps raw rows to canonical records. source identifies the file and
// becomes the data_source of every record.
//
// Native columns listed in Columns but absent from the header are reported
// once and left null.
func (a *Adapter) Adapt(raw *RawTable, source string) ([]Record, Diagnostics) {
	var diags Diagnostics
	index := make(map[string]int, len(a.Columns))
	for native := range a.Columns {
		i := raw.Column(native)
		if i < 0 {
			diags = append(diags, Diagnostic{
				Kind:    ParseWarning,
				File:    source,
				Field:   native,
				Message: fmt.Sprintf("column missing from %s export", a.Format),
			})
			continue
		}
		index[native] = i
	}

	records := make([]Record, 0, len(raw.Records))
	for n, rec := range raw.Records {
		cell := func(name string) string {
			i := raw.Column(name)
			if i < 0 || i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		fields := make(map[string]string, len(Columns))
		for native, canonical := range a.Columns {
			if i, ok := index[native]; ok && i < len(rec) {
				fields[canonical] = rec[i]
			}
		}
		for canonical, v := range a.Const {
			fields[canonical] = v
		}
		if a.Derive != nil && !a.Derive(fields, cell) {
			continue
		}
		fields["data_source"] = source
		for k := range fields {
			if !isColumn(k) {
				delete(fields, k)
			}
		}
		records = append(records, Record{
			Format:     a.Format,
			Fields:     fields,
			Provenance: newProvenance(source, n+1, raw.Header, rec),
		})
	}
	return records, diags
}

// Read decodes an export with the adapter's encoding and preamble.
func (a *Adapter) Read(r io.Reader, source string) (*RawTable, error) {
	return ReadRawTable(r, source, a.Encoding, a.SkipRows)
}

// AdaptFile reads and adapts one export file.
func (a *Adapter) AdaptFile(path string) ([]Record, Diagnostics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	source := filepath.Base(path)
	raw, err := a.Read(f, source)
	if err != nil {
		return nil, nil, err
	}
	records, diags := a.Adapt(raw, source)
	return records, diags, nil
}

// AdapterFor returns the adapter of a format.
func AdapterFor(f SourceFormat) (*Adapter, error) {
	for _, a := range adapters {
		if a.Format == f {
			return a, nil
		}
	}
	return nil, fmt.Errorf("no adapter for format %v", f)
}
