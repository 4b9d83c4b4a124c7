package tradehistory

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SourceFormat identifies the schema of an export file.
type SourceFormat int

const (
	// FormatAuto asks for the format to be detected from the file name.
	FormatAuto SourceFormat = iota
	// FormatInvestmentTrust is the Rakuten mutual fund trade history.
	FormatInvestmentTrust
	// FormatJPStock is the Rakuten domestic stock trade history.
	FormatJPStock
	// FormatUSStock is the Rakuten US stock trade history.
	FormatUSStock
	// FormatSBIDomestic is the SBI domestic trade history ("SaveFile" export).
	FormatSBIDomestic
	// FormatSBIForeign is the SBI foreign stock confirmed orders ("yakujo" export).
	FormatSBIForeign
	// FormatWise is the Wise transfer history.
	FormatWise
)

// Formats lists every concrete format, in detection order.
var Formats = []SourceFormat{
	FormatInvestmentTrust,
	FormatJPStock,
	FormatUSStock,
	FormatSBIDomestic,
	FormatSBIForeign,
	FormatWise,
}

func (f SourceFormat) String() string {
	switch f {
	case FormatInvestmentTrust:
		return "INVST"
	case FormatJPStock:
		return "JP"
	case FormatUSStock:
		return "US"
	case FormatSBIDomestic:
		return "SaveFile"
	case FormatSBIForeign:
		return "yakujo"
	case FormatWise:
		return "wise"
	default:
		return "auto"
	}
}

// ParseSourceFormat parses a format name as written by String, case insensitive.
func ParseSourceFormat(s string) (SourceFormat, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "auto") {
		return FormatAuto, nil
	}
	for _, f := range Formats {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return FormatAuto, fmt.Errorf("unknown source format %q", s)
}

// DetectFormat classifies a file by its name: the format tags are searched
// in the base name in a fixed order and the first match wins.
//
// The classifier is weak (a "US" tag matches many names). It is only used for
// batches declared with FormatAuto.
func DetectFormat(file string) (SourceFormat, error) {
	base := filepath.Base(file)
	for _, a := range adapters {
		for _, tag := range a.Tags {
			if strings.Contains(base, tag) {
				return a.Format, nil
			}
		}
	}
	return FormatAuto, &UnknownFormatError{File: file}
}
