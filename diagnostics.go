package tradehistory

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Logger is the subset of *log.Logger (github.com/charmbracelet/log) the pipeline needs.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger { return log.New(io.Discard) }

var (
	// ErrNoInput is returned when no input file matched any source format.
	ErrNoInput = errors.New("no input file matched a source format")
	// ErrReference is returned when a reference table cannot be loaded.
	ErrReference = errors.New("cannot load reference table")
)

// UnknownFormatError is returned for a file whose name matches no format tag.
type UnknownFormatError struct {
	File string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown source format for file %q", e.File)
}

// DiagnosticKind classifies a non fatal problem.
type DiagnosticKind int

const (
	// UnknownFormat is a skipped file.
	UnknownFormat DiagnosticKind = iota
	// ParseWarning is a field that could not be parsed and was left null.
	ParseWarning
	// JoinMiss is a failed reference lookup, dependent fields are left null.
	JoinMiss
	// ValuationUndefined is a row left without a JPY amount: unknown
	// currency, missing rate or missing amount.
	ValuationUndefined
)

func (k DiagnosticKind) String() string {
	switch k {
	case UnknownFormat:
		return "UnknownFormat"
	case ParseWarning:
		return "ParseWarning"
	case JoinMiss:
		return "JoinMiss"
	case ValuationUndefined:
		return "ValuationUndefined"
	default:
		return fmt.Sprintf("DiagnosticKind(%d)", int(k))
	}
}

// Kinds lists every diagnostic kind in display order.
var Kinds = []DiagnosticKind{UnknownFormat, ParseWarning, JoinMiss, ValuationUndefined}

// Diagnostic is a non fatal problem met while building the ledger, with enough
// context to find the offending value by hand.
type Diagnostic struct {
	Kind    DiagnosticKind
	File    string
	Row     int // 0 when the problem is about the whole file
	Field   string
	Value   string
	Message string
}

func (d Diagnostic) String() string {
	loc := d.File
	if d.Row > 0 {
		loc = fmt.Sprintf("%s:%d", d.File, d.Row)
	}
	if d.Field == "" {
		return fmt.Sprintf("%s %s: %s", d.Kind, loc, d.Message)
	}
	return fmt.Sprintf("%s %s: %s %q: %s", d.Kind, loc, d.Field, d.Value, d.Message)
}

// Diagnostics is the list of problems returned alongside a ledger.
type Diagnostics []Diagnostic

// Count returns the number of diagnostics of a kind.
func (ds Diagnostics) Count(kind DiagnosticKind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Log writes every diagnostic as a warning.
func (ds Diagnostics) Log(logger Logger) {
	for _, d := range ds {
		logger.Warn(d.Message, "kind", d.Kind, "file", d.File, "row", d.Row, "field", d.Field, "value", d.Value)
	}
}
