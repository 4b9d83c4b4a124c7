package tradehistory

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding is the text encoding of an export file.
type Encoding int

const (
	ShiftJIS Encoding = iota
	UTF8
)

func (e Encoding) String() string {
	if e == UTF8 {
		return "UTF-8"
	}
	return "Shift_JIS"
}

// decoder returns the x/text decoder for e. UTF-8 input may start with a BOM.
func (e Encoding) decoder() transform.Transformer {
	if e == UTF8 {
		return unicode.BOMOverride(unicode.UTF8.NewDecoder())
	}
	return japanese.ShiftJIS.NewDecoder()
}

// RawTable is the tabular content of one export file in its native schema.
type RawTable struct {
	File    string
	Header  []string
	Records [][]string
}

// Column returns the index of a native column name, or -1.
func (t *RawTable) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// ReadRawTable decodes an export: it skips the preamble lines, reads the
// header row and every record. Records shorter or longer than the header are
// kept as is.
func ReadRawTable(r io.Reader, file string, enc Encoding, skip int) (*RawTable, error) {
	br := bufio.NewReader(transform.NewReader(r, enc.decoder()))
	// preamble lines are counted raw, blank ones included
	for i := 0; i < skip; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			return nil, fmt.Errorf("%s: reading preamble line %d: %w", file, i+1, err)
		}
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: no header after %d preamble lines", file, skip)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", file, err)
	}
	t := &RawTable{File: file, Header: dedupe(header)}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		if blank(rec) {
			continue
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

// dedupe trims header names and suffixes repeated ones with ".1", ".2"...
// Wise exports have two columns named 送金元通貨.
func dedupe(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if n, ok := seen[h]; ok {
			seen[h] = n + 1
			out[i] = fmt.Sprintf("%s.%d", h, n+1)
			continue
		}
		seen[h] = 0
		out[i] = h
	}
	return out
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
