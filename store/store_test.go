package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/etnz/tradehistory"
	"github.com/etnz/tradehistory/date"
	"github.com/shopspring/decimal"
)

func testLedger() *tradehistory.Ledger {
	return tradehistory.NewLedger(
		tradehistory.Transaction{
			TradeDate:    date.New(2024, 1, 5),
			SecurityCode: "7203",
			SecurityName: "トヨタ自動車",
			Type:         tradehistory.Buy,
			Quantity:     decimal.NewNullDecimal(decimal.RequireFromString("10")),
			Currency:     tradehistory.JPY,
			Valuation:    tradehistory.ValuedAt(decimal.RequireFromString("20000")),
		},
		tradehistory.Transaction{
			TradeDate:    date.New(2024, 3, 2),
			SecurityCode: "VOO",
			Type:         tradehistory.Sell,
			Currency:     tradehistory.USD,
			Valuation:    tradehistory.Unvalued(tradehistory.MissingRate),
		},
	)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trh.sqlite")
	diags := tradehistory.Diagnostics{{Kind: tradehistory.JoinMiss, File: "US.csv", Row: 2, Field: "USDJPY", Value: "2024-03-02"}}

	first, err := Export(ctx, path, testLedger(), diags)
	if err != nil {
		t.Fatalf("Export() unexpected error: %v", err)
	}
	if first.ID == "" || first.Transactions != 2 || first.Diagnostics != 1 {
		t.Errorf("Export() = %+v", first)
	}
	second, err := Export(ctx, path, testLedger(), nil)
	if err != nil {
		t.Fatalf("second Export() unexpected error: %v", err)
	}
	if second.ID == first.ID {
		t.Errorf("Export() reused batch id %s", first.ID)
	}

	batches, err := Batches(ctx, path)
	if err != nil {
		t.Fatalf("Batches() unexpected error: %v", err)
	}
	if len(batches) != 2 || batches[0].ID != first.ID || batches[1].ID != second.ID {
		t.Errorf("Batches() = %+v, want both exports in order", batches)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var amount sql.NullString
	var name string
	err = db.QueryRowContext(ctx, `SELECT amount_jpy, security_name FROM transactions WHERE batch_id = ? AND security_code = '7203'`, first.ID).Scan(&amount, &name)
	if err != nil {
		t.Fatal(err)
	}
	if !amount.Valid || amount.String != "20000" || name != "トヨタ自動車" {
		t.Errorf("7203 row = %v, %q", amount, name)
	}
	err = db.QueryRowContext(ctx, `SELECT amount_jpy FROM transactions WHERE batch_id = ? AND security_code = 'VOO'`, first.ID).Scan(&amount)
	if err != nil {
		t.Fatal(err)
	}
	if amount.Valid {
		t.Errorf("unvalued amount_jpy = %q, want NULL", amount.String)
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM diagnostics WHERE kind = 'JoinMiss' AND source_row = 2`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("diagnostics rows = %d, want 1", n)
	}
}
