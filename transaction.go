package tradehistory

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/tradehistory/date"
	"github.com/shopspring/decimal"
)

// TransactionType is the canonical direction of a trade.
type TransactionType int

const (
	// Unknown is used when the export has no label at all.
	Unknown TransactionType = iota
	Buy
	Sell
	// Other is a label that matched no known vocabulary (dividends, transfers...).
	Other
)

func (t TransactionType) String() string {
	switch t {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	case Other:
		return "Other"
	default:
		return "Unknown"
	}
}

// ParseTransactionType reads back the canonical names written by String.
func ParseTransactionType(s string) (TransactionType, error) {
	switch s {
	case "Buy":
		return Buy, nil
	case "Sell":
		return Sell, nil
	case "Other":
		return Other, nil
	case "Unknown", "":
		return Unknown, nil
	}
	return Unknown, fmt.Errorf("unknown transaction type %q", s)
}

// Currency is the settlement currency of a transaction.
type Currency int

const (
	UnknownCurrency Currency = iota
	JPY
	USD
)

func (c Currency) String() string {
	switch c {
	case JPY:
		return "JPY"
	case USD:
		return "USD"
	default:
		return "Unknown"
	}
}

// ParseCurrency reads back the canonical names written by String.
func ParseCurrency(s string) (Currency, error) {
	switch s {
	case "JPY":
		return JPY, nil
	case "USD":
		return USD, nil
	case "Unknown", "":
		return UnknownCurrency, nil
	}
	return UnknownCurrency, fmt.Errorf("unknown currency %q", s)
}

// AccountType is the tax wrapper holding the security.
type AccountType int

const (
	OtherAccount AccountType = iota
	Specific
	General
	CumulativeNISA
)

func (a AccountType) String() string {
	switch a {
	case Specific:
		return "Specific"
	case General:
		return "General"
	case CumulativeNISA:
		return "Cumulative NISA"
	default:
		return "Other"
	}
}

// ParseAccountType reads back the canonical names written by String.
func ParseAccountType(s string) (AccountType, error) {
	switch s {
	case "Specific":
		return Specific, nil
	case "General":
		return General, nil
	case "Cumulative NISA":
		return CumulativeNISA, nil
	case "Other", "":
		return OtherAccount, nil
	}
	return OtherAccount, fmt.Errorf("unknown account type %q", s)
}

// Provenance points back to the raw export row a transaction was built from.
type Provenance struct {
	File   string            // file the row was read from
	Row    int               // 1-based data row index, after the skipped preamble and header
	Record map[string]string // native column name to raw text
	ID     string            // stable hash of file, row and raw content
}

// newProvenance builds the provenance of a raw row. header and record are the
// raw export header and row.
func newProvenance(file string, row int, header, record []string) Provenance {
	p := Provenance{File: file, Row: row, Record: make(map[string]string, len(header))}
	for i, name := range header {
		if i < len(record) {
			p.Record[name] = record[i]
		}
	}
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00%s", file, row, strings.Join(record, "\x1f"))
	p.ID = hex.EncodeToString(h.Sum(nil))[:16]
	return p
}

// Transaction is one normalized row of the trade history ledger.
type Transaction struct {
	TradeDate      date.Date
	SettlementDate date.Date
	SecurityCode   string
	SecurityName   string
	Type           TransactionType
	TypeLabel      string // native label that produced Type
	Quantity       decimal.NullDecimal
	Price          decimal.NullDecimal
	Settlement     decimal.NullDecimal
	Currency       Currency
	Account        AccountType
	DataSource     string
	Format         SourceFormat
	InvestmentType string

	// FX rates joined on the trade date.
	USDJPY decimal.NullDecimal
	EURJPY decimal.NullDecimal

	Valuation Valuation

	provenance Provenance
}

// Provenance returns the raw row this transaction was built from. It is set
// once by the adapter and has no setter.
func (t Transaction) Provenance() Provenance { return t.provenance }

// Columns is the canonical column set of the ledger CSV, in order.
var Columns = []string{
	"trade_date",
	"settlement_date",
	"security_code",
	"security_name",
	"transaction_type",
	"transaction_label",
	"quantity",
	"price",
	"settlement_amount",
	"currency",
	"account_type",
	"data_source",
	"source_format",
	"investment_type",
	"USDJPY",
	"EURJPY",
	"amount_jpy",
	"valuation_status",
	"source_row",
	"record_id",
}

// isColumn reports whether name is a canonical column.
func isColumn(name string) bool { return slices.Contains(Columns, name) }
