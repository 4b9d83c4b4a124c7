package tradehistory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/etnz/tradehistory/date"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// Record returns the canonical row of a transaction, in Columns order. Null
// values are empty strings.
func (t Transaction) Record() []string {
	amount := ""
	if v, ok := t.Valuation.Amount(); ok {
		amount = v.String()
	}
	row := ""
	if t.provenance.Row > 0 {
		row = strconv.Itoa(t.provenance.Row)
	}
	format := ""
	if t.Format != FormatAuto {
		format = t.Format.String()
	}
	return []string{
		t.TradeDate.String(),
		t.SettlementDate.String(),
		t.SecurityCode,
		t.SecurityName,
		t.Type.String(),
		t.TypeLabel,
		nullString(t.Quantity),
		nullString(t.Price),
		nullString(t.Settlement),
		t.Currency.String(),
		t.Account.String(),
		t.DataSource,
		format,
		t.InvestmentType,
		nullString(t.USDJPY),
		nullString(t.EURJPY),
		amount,
		t.Valuation.Status().String(),
		row,
		t.provenance.ID,
	}
}

// EncodeLedger writes the ledger as a UTF-8 CSV with the canonical columns.
func EncodeLedger(w io.Writer, l *Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, tx := range l.txs {
		if err := cw.Write(tx.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeLedger reads a canonical ledger CSV. Columns may be missing or in any
// order, missing columns are null. Unknown columns are ignored.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading ledger header: %w", err)
	}
	var txs []Transaction
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(column string) string {
			i := slices.Index(header, column)
			if i < 0 || i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		tx, err := decodeTransaction(get)
		if err != nil {
			return nil, fmt.Errorf("ledger line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	return NewLedger(txs...), nil
}

func decodeTransaction(get func(string) string) (tx Transaction, err error) {
	parseDate := func(column string) date.Date {
		s := get(column)
		if s == "" || err != nil {
			return date.Date{}
		}
		var d date.Date
		d, err = date.Parse(s)
		return d
	}
	parseDecimal := func(column string) decimal.NullDecimal {
		s := get(column)
		if s == "" || err != nil {
			return decimal.NullDecimal{}
		}
		var d decimal.Decimal
		d, err = decimal.NewFromString(s)
		return decimal.NullDecimal{Decimal: d, Valid: err == nil}
	}

	tx.TradeDate = parseDate("trade_date")
	tx.SettlementDate = parseDate("settlement_date")
	tx.SecurityCode = get("security_code")
	tx.SecurityName = get("security_name")
	tx.TypeLabel = get("transaction_label")
	tx.Quantity = parseDecimal("quantity")
	tx.Price = parseDecimal("price")
	tx.Settlement = parseDecimal("settlement_amount")
	tx.DataSource = get("data_source")
	tx.InvestmentType = get("investment_type")
	tx.USDJPY = parseDecimal("USDJPY")
	tx.EURJPY = parseDecimal("EURJPY")
	amount := parseDecimal("amount_jpy")
	if err != nil {
		return tx, err
	}

	if tx.Type, err = ParseTransactionType(get("transaction_type")); err != nil {
		return tx, err
	}
	if tx.Currency, err = ParseCurrency(get("currency")); err != nil {
		return tx, err
	}
	if tx.Account, err = ParseAccountType(get("account_type")); err != nil {
		return tx, err
	}
	if tx.Format, err = ParseSourceFormat(get("source_format")); err != nil {
		return tx, err
	}
	status, err := parseValuationStatus(get("valuation_status"))
	if err != nil {
		return tx, err
	}
	switch {
	case status == Valued && amount.Valid:
		tx.Valuation = ValuedAt(amount.Decimal)
	case status == NotValued && amount.Valid:
		// ledgers written by other tools carry only amount_jpy.
		tx.Valuation = ValuedAt(amount.Decimal)
	default:
		tx.Valuation = Unvalued(status)
	}

	tx.provenance.File = tx.DataSource
	tx.provenance.ID = get("record_id")
	if s := get("source_row"); s != "" {
		if tx.provenance.Row, err = strconv.Atoi(s); err != nil {
			return tx, fmt.Errorf("invalid source_row %q: %w", s, err)
		}
	}
	return tx, nil
}

// WriteLedgerFile writes the ledger to path atomically: the CSV is written to
// a temporary file in the same directory which is then renamed over path.
func WriteLedgerFile(path string, l *Ledger) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+strings.TrimSuffix(base, filepath.Ext(base))+"-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()
	if err = EncodeLedger(f, l); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	// temporary files are owner only
	if err = f.Chmod(0o644); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadLedgerFile decodes a ledger CSV file.
func ReadLedgerFile(path string) (*Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	l, err := DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}
