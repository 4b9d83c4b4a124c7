package tradehistory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/etnz/tradehistory/date"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Series is a table of daily values keyed by date, one column per name.
// It holds both FX rates (one column per currency pair) and adjusted close
// prices (one column per security code).
type Series struct {
	names   []string
	columns map[string]*date.History[decimal.Decimal]
}

// NewSeries returns an empty series.
func NewSeries() *Series {
	return &Series{columns: make(map[string]*date.History[decimal.Decimal])}
}

// Names returns the column names in insertion order.
func (s *Series) Names() []string { return slices.Clone(s.names) }

// Column returns the history of a column, nil if absent.
func (s *Series) Column(name string) *date.History[decimal.Decimal] { return s.columns[name] }

func (s *Series) column(name string) *date.History[decimal.Decimal] {
	h, ok := s.columns[name]
	if !ok {
		h = new(date.History[decimal.Decimal])
		s.columns[name] = h
		s.names = append(s.names, name)
	}
	return h
}

// Set records a value, replacing any existing one on that day.
func (s *Series) Set(name string, on date.Date, value decimal.Decimal) {
	s.column(name).Append(on, value)
}

// Get returns the value of a column on an exact day.
func (s *Series) Get(name string, on date.Date) (decimal.Decimal, bool) {
	h, ok := s.columns[name]
	if !ok {
		return decimal.Zero, false
	}
	return h.Get(on)
}

// Latest returns the last known value of a column.
func (s *Series) Latest(name string) (date.Date, decimal.Decimal, bool) {
	h, ok := s.columns[name]
	if !ok || h.Len() == 0 {
		return date.Date{}, decimal.Zero, false
	}
	on, v := h.Latest()
	return on, v, true
}

// DecodeSeries reads a wide CSV: a "Date" column and one column per name.
// Dates may carry a time of day and an offset, both are dropped. Empty cells
// are skipped. When a date appears twice the first value is kept and the
// duplicate is reported.
func DecodeSeries(r io.Reader, file string) (*Series, Diagnostics, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: reading header: %w", file, err)
	}
	header = dedupe(header)
	dateCol := slices.IndexFunc(header, func(h string) bool { return strings.EqualFold(h, "Date") })
	if dateCol < 0 {
		return nil, nil, fmt.Errorf("%s: no Date column in %v", file, header)
	}

	s := NewSeries()
	var diags Diagnostics
	for _, name := range header {
		if name != header[dateCol] && name != "" {
			s.column(name)
		}
	}
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", file, err)
		}
		if dateCol >= len(rec) || blank(rec) {
			continue
		}
		on, err := date.ParseTimestamp(rec[dateCol])
		if err != nil {
			diags = append(diags, Diagnostic{Kind: ParseWarning, File: file, Row: row, Field: "Date", Value: rec[dateCol], Message: "unparseable date, row skipped"})
			continue
		}
		for i, name := range header {
			if i == dateCol || i >= len(rec) || name == "" {
				continue
			}
			v := CleanNumeric(rec[i])
			if !v.Valid {
				continue
			}
			if !s.column(name).AppendFirst(on, v.Decimal) {
				diags = append(diags, Diagnostic{Kind: ParseWarning, File: file, Row: row, Field: name, Value: on.String(), Message: "duplicate date, first value kept"})
			}
		}
	}
	return s, diags, nil
}

// EncodeSeries writes the series as a wide CSV, one row per date that has at
// least one value.
func EncodeSeries(w io.Writer, s *Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Date"}, s.names...)); err != nil {
		return err
	}
	hs := make([]*date.History[decimal.Decimal], len(s.names))
	for i, name := range s.names {
		hs[i] = s.columns[name]
	}
	for on := range date.Iterate(hs...) {
		rec := make([]string, 0, len(hs)+1)
		rec = append(rec, on.String())
		for _, h := range hs {
			v, ok := h.Get(on)
			if !ok {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, v.String())
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FXTable holds daily close rates per currency pair. Pair names are stored
// without the market suffix: "USDJPY=X" is read as "USDJPY".
type FXTable struct {
	*Series
}

// Rate returns the rate of a pair on an exact day.
func (t *FXTable) Rate(pair string, on date.Date) (decimal.Decimal, bool) {
	return t.Get(strings.TrimSuffix(pair, "=X"), on)
}

// DecodeFXTable reads an FX CSV with a Date column and one column per pair.
func DecodeFXTable(r io.Reader, file string) (*FXTable, Diagnostics, error) {
	s, diags, err := DecodeSeries(r, file)
	if err != nil {
		return nil, nil, err
	}
	fx := &FXTable{NewSeries()}
	for _, name := range s.names {
		pair := strings.TrimSuffix(name, "=X")
		for on, v := range s.columns[name].Values() {
			fx.column(pair).AppendFirst(on, v)
		}
	}
	return fx, diags, nil
}

// Crosswalk maps security names to security codes.
type Crosswalk struct {
	codes map[string]string
}

// NewCrosswalk returns an empty crosswalk.
func NewCrosswalk() *Crosswalk { return &Crosswalk{codes: make(map[string]string)} }

// Add records a name to code entry. It reports false and keeps the existing
// entry when the name is already known.
func (c *Crosswalk) Add(name, code string) bool {
	if _, ok := c.codes[name]; ok {
		return false
	}
	c.codes[name] = code
	return true
}

// Lookup returns the code of a security name.
func (c *Crosswalk) Lookup(name string) (string, bool) {
	code, ok := c.codes[name]
	return code, ok
}

// Len returns the number of entries.
func (c *Crosswalk) Len() int { return len(c.codes) }

// DecodeCrosswalk reads a CSV with security_name and security_code columns.
// Duplicate names keep their first code and are reported.
func DecodeCrosswalk(r io.Reader, file string) (*Crosswalk, Diagnostics, error) {
	c := NewCrosswalk()
	var diags Diagnostics
	err := readPairs(r, file, []string{"security_name"}, []string{"security_code"}, func(row int, name, code string) {
		if !c.Add(name, code) {
			diags = append(diags, Diagnostic{Kind: ParseWarning, File: file, Row: row, Field: "security_name", Value: name, Message: "duplicate crosswalk entry, first code kept"})
		}
	})
	if err != nil {
		return nil, nil, err
	}
	return c, diags, nil
}

// Remap holds post-hoc corrections applied after the crosswalk. Unlike the
// crosswalk, a remap overwrites existing codes.
//
// Two shapes are supported: corrections keyed by security name
// (security_name, security_code) and code to code maps, such as the Tokyo
// listed ETFs to their similar US ETF ticker (コード, 類似米国ETFティッカー).
type Remap struct {
	byName map[string]string
	byCode map[string]string
}

// NewRemap returns an empty remap.
func NewRemap() *Remap {
	return &Remap{byName: make(map[string]string), byCode: make(map[string]string)}
}

// Len returns the number of entries.
func (m *Remap) Len() int { return len(m.byName) + len(m.byCode) }

// Code returns the corrected code of a transaction.
func (m *Remap) Code(name, code string) (string, bool) {
	changed := false
	if c, ok := m.byName[name]; ok && c != "" {
		code, changed = c, true
	}
	if c, ok := m.byCode[code]; ok && c != "" {
		code, changed = c, true
	}
	return code, changed
}

var (
	remapNameKeys = []string{"security_name"}
	remapCodeKeys = []string{"security_code", "コード", "from_code"}
	remapTargets  = []string{"remapped_code", "類似米国ETFティッカー", "to_code"}
)

// Decode reads a remap CSV, merging it into m. The first entry wins for
// duplicated keys.
func (m *Remap) Decode(r io.Reader, file string) (Diagnostics, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	var diags Diagnostics
	add := func(into map[string]string, field string) func(int, string, string) {
		return func(row int, key, value string) {
			if _, ok := into[key]; ok {
				diags = append(diags, Diagnostic{Kind: ParseWarning, File: file, Row: row, Field: field, Value: key, Message: "duplicate remap entry, first kept"})
				return
			}
			into[key] = value
		}
	}
	// name keyed corrections use security_code as the target column.
	err = readPairs(strings.NewReader(string(data)), file, remapNameKeys, []string{"security_code"}, add(m.byName, "security_name"))
	if err == nil {
		return diags, nil
	}
	if err := readPairs(strings.NewReader(string(data)), file, remapCodeKeys, remapTargets, add(m.byCode, "security_code")); err != nil {
		return nil, err
	}
	return diags, nil
}

// readPairs reads two columns of a UTF-8 CSV, the first header name found in
// keys and in values. Rows with an empty key are skipped.
func readPairs(r io.Reader, file string, keys, values []string, fn func(row int, key, value string)) error {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("%s: reading header: %w", file, err)
	}
	header = dedupe(header)
	find := func(names []string) int {
		for _, n := range names {
			if i := slices.Index(header, n); i >= 0 {
				return i
			}
		}
		return -1
	}
	ki, vi := find(keys), find(values)
	if ki < 0 || vi < 0 {
		return fmt.Errorf("%s: want columns %v and %v, got %v", file, keys, values, header)
	}
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if ki >= len(rec) || vi >= len(rec) {
			continue
		}
		key := strings.TrimSpace(rec[ki])
		if key == "" {
			continue
		}
		fn(row, key, strings.TrimSpace(rec[vi]))
	}
}

// References is the reference data joined to the ledger.
type References struct {
	FX        *FXTable
	Crosswalk *Crosswalk
	Remap     *Remap // optional
}

// LoadReferences reads the FX table, the crosswalk and the optional remap
// files. Any failure is fatal and wraps ErrReference.
func LoadReferences(fxFile, crosswalkFile string, remapFiles ...string) (*References, Diagnostics, error) {
	var diags Diagnostics
	refs := &References{Remap: NewRemap()}

	err := withFile(fxFile, func(r io.Reader) error {
		fx, d, err := DecodeFXTable(r, filepath.Base(fxFile))
		refs.FX, diags = fx, append(diags, d...)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: FX table: %w", ErrReference, err)
	}

	err = withFile(crosswalkFile, func(r io.Reader) error {
		cw, d, err := DecodeCrosswalk(r, filepath.Base(crosswalkFile))
		refs.Crosswalk, diags = cw, append(diags, d...)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: crosswalk: %w", ErrReference, err)
	}

	for _, file := range remapFiles {
		err = withFile(file, func(r io.Reader) error {
			d, err := refs.Remap.Decode(r, filepath.Base(file))
			diags = append(diags, d...)
			return err
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%w: remap: %w", ErrReference, err)
		}
	}
	return refs, diags, nil
}

func withFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}
