package tradehistory

import (
	"iter"
	"slices"
	"strings"

	"github.com/etnz/tradehistory/date"
	"github.com/shopspring/decimal"
)

// Ledger is the canonical, chronological sequence of transactions.
//
// Transactions with no trade date are kept at the end, in input order.
type Ledger struct {
	txs []Transaction
}

// NewLedger creates a ledger from transactions and sorts it.
func NewLedger(txs ...Transaction) *Ledger {
	l := &Ledger{txs: txs}
	l.sort()
	return l
}

// sort orders the ledger by trade date; the sort is stable and null dates go last.
func (l *Ledger) sort() {
	slices.SortStableFunc(l.txs, func(a, b Transaction) int {
		switch {
		case a.TradeDate.IsZero() && b.TradeDate.IsZero():
			return 0
		case a.TradeDate.IsZero():
			return 1
		case b.TradeDate.IsZero():
			return -1
		}
		return a.TradeDate.Compare(b.TradeDate)
	})
}

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.txs) }

// At returns the i-th transaction.
func (l *Ledger) At(i int) Transaction { return l.txs[i] }

// All iterates over the transactions in ledger order.
func (l *Ledger) All() iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
		for i, tx := range l.txs {
			if !yield(i, tx) {
				return
			}
		}
	}
}

// SecurityCodes returns the distinct non empty security codes, sorted.
func (l *Ledger) SecurityCodes() []string {
	var codes []string
	for _, tx := range l.txs {
		if tx.SecurityCode != "" {
			codes = append(codes, tx.SecurityCode)
		}
	}
	slices.Sort(codes)
	return slices.Compact(codes)
}

// DateRange returns the first and last trade dates, zero for an empty ledger.
func (l *Ledger) DateRange() date.Range {
	var r date.Range
	for _, tx := range l.txs {
		if tx.TradeDate.IsZero() {
			continue
		}
		if r.From.IsZero() || tx.TradeDate.Before(r.From) {
			r.From = tx.TradeDate
		}
		if tx.TradeDate.After(r.To) {
			r.To = tx.TradeDate
		}
	}
	return r
}

// Merge normalizes the records of every adapted table into one sorted ledger.
//
// Records may come from adapters with different column sets: a column a record
// does not carry is null. Fields that fail to parse are left null and reported
// as ParseWarning, the row is kept.
func Merge(tables ...[]Record) (*Ledger, Diagnostics) {
	var diags Diagnostics
	n := 0
	for _, t := range tables {
		n += len(t)
	}
	txs := make([]Transaction, 0, n)
	for _, t := range tables {
		for _, rec := range t {
			tx, d := normalize(rec)
			txs = append(txs, tx)
			diags = append(diags, d...)
		}
	}
	return NewLedger(txs...), diags
}

// normalize converts a record into a transaction.
func normalize(rec Record) (Transaction, Diagnostics) {
	var diags Diagnostics
	warn := func(field, value, msg string) {
		diags = append(diags, Diagnostic{
			Kind:    ParseWarning,
			File:    rec.Provenance.File,
			Row:     rec.Provenance.Row,
			Field:   field,
			Value:   value,
			Message: msg,
		})
	}
	day := func(field string) date.Date {
		text := strings.TrimSpace(rec.Get(field))
		d, ok := date.Standardize(text)
		if !ok && (text != "" || field == "trade_date") {
			warn(field, text, "unparseable date left null")
		}
		return d
	}
	number := func(field string) decimal.NullDecimal {
		text := strings.TrimSpace(rec.Get(field))
		d := CleanNumeric(text)
		if !d.Valid && text != "" && text != "-" {
			warn(field, text, "unparseable number left null")
		}
		return d
	}

	label := strings.TrimSpace(rec.Get("transaction_type"))
	tx := Transaction{
		TradeDate:      day("trade_date"),
		SettlementDate: day("settlement_date"),
		SecurityCode:   strings.TrimSpace(rec.Get("security_code")),
		SecurityName:   strings.TrimSpace(rec.Get("security_name")),
		Type:           StandardizeTransactionType(label),
		TypeLabel:      label,
		Quantity:       number("quantity"),
		Price:          number("price"),
		Settlement:     number("settlement_amount"),
		Currency:       StandardizeCurrency(rec.Get("currency")),
		Account:        StandardizeAccountType(rec.Get("account_type")),
		DataSource:     rec.Get("data_source"),
		Format:         rec.Format,
		provenance:     rec.Provenance,
	}
	if tx.DataSource == "" {
		tx.DataSource = rec.Provenance.File
	}
	return tx, diags
}
