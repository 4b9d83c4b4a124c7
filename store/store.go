// Package store exports ledgers to a SQLite database, one import batch per
// export, so that successive runs can be compared with SQL.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/tradehistory"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	id TEXT PRIMARY KEY,
	imported_at TEXT NOT NULL,
	transactions INTEGER NOT NULL,
	diagnostics INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS diagnostics (
	batch_id TEXT NOT NULL REFERENCES batches(id),
	kind TEXT NOT NULL,
	file TEXT,
	source_row INTEGER,
	field TEXT,
	value TEXT,
	message TEXT
);
`

// transactionsTable has one TEXT column per canonical column, decimals are
// kept as their exact string.
func transactionsTable() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS transactions (\n\tbatch_id TEXT NOT NULL REFERENCES batches(id)")
	for _, c := range tradehistory.Columns {
		fmt.Fprintf(&b, ",\n\t%q TEXT", c)
	}
	b.WriteString("\n);\nCREATE INDEX IF NOT EXISTS transactions_code ON transactions(batch_id, security_code);")
	return b.String()
}

// Batch is one export.
type Batch struct {
	ID           string
	ImportedAt   time.Time
	Transactions int
	Diagnostics  int
}

// Open opens or creates the database at path and makes sure the tables exist.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}
	for _, stmt := range []string{schema, transactionsTable()} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating tables in %s: %w", path, err)
		}
	}
	return db, nil
}

// Export writes the ledger and its diagnostics as a new batch, in a single
// database transaction.
func Export(ctx context.Context, path string, l *tradehistory.Ledger, diags tradehistory.Diagnostics) (Batch, error) {
	db, err := Open(ctx, path)
	if err != nil {
		return Batch{}, err
	}
	defer db.Close()

	b := Batch{
		ID:           uuid.NewString(),
		ImportedAt:   time.Now().UTC().Truncate(time.Second),
		Transactions: l.Len(),
		Diagnostics:  len(diags),
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Batch{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "INSERT INTO batches (id, imported_at, transactions, diagnostics) VALUES (?, ?, ?, ?)",
		b.ID, b.ImportedAt.Format(time.RFC3339), b.Transactions, b.Diagnostics); err != nil {
		return Batch{}, fmt.Errorf("inserting batch: %w", err)
	}

	quoted := make([]string, len(tradehistory.Columns))
	for i, c := range tradehistory.Columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	insert, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO transactions (batch_id, %s) VALUES (?%s)",
		strings.Join(quoted, ", "), strings.Repeat(", ?", len(quoted))))
	if err != nil {
		return Batch{}, err
	}
	defer insert.Close()
	for i, t := range l.All() {
		args := []any{b.ID}
		for _, v := range t.Record() {
			args = append(args, nullable(v))
		}
		if _, err := insert.ExecContext(ctx, args...); err != nil {
			return Batch{}, fmt.Errorf("inserting transaction %d: %w", i, err)
		}
	}

	for _, d := range diags {
		var row any
		if d.Row > 0 {
			row = d.Row
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO diagnostics (batch_id, kind, file, source_row, field, value, message) VALUES (?, ?, ?, ?, ?, ?, ?)",
			b.ID, d.Kind.String(), d.File, row, d.Field, d.Value, d.Message); err != nil {
			return Batch{}, fmt.Errorf("inserting diagnostic: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Batch{}, err
	}
	return b, nil
}

// Batches lists the batches of the database, oldest first.
func Batches(ctx context.Context, path string) ([]Batch, error) {
	db, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT id, imported_at, transactions, diagnostics FROM batches ORDER BY imported_at, rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var batches []Batch
	for rows.Next() {
		var b Batch
		var at string
		if err := rows.Scan(&b.ID, &at, &b.Transactions, &b.Diagnostics); err != nil {
			return nil, err
		}
		if b.ImportedAt, err = time.Parse(time.RFC3339, at); err != nil {
			return nil, fmt.Errorf("batch %s: %w", b.ID, err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// nullable turns empty values into SQL NULL.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
