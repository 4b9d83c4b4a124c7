package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradehistory/store"
	"github.com/google/subcommands"
)

type exportCmd struct {
	db   string
	list bool
}

func (*exportCmd) Name() string     { return "export-sqlite" }
func (*exportCmd) Synopsis() string { return "export the ledger to a SQLite database" }
func (*exportCmd) Usage() string {
	return `trh export-sqlite [-db <file>] [-list]

  Appends the ledger to a SQLite database as a new import batch. Every batch
  has its own id, so successive exports can be compared with SQL.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", env("TRH_DB", "trh.sqlite"), "SQLite database file (TRH_DB).")
	f.BoolVar(&c.list, "list", false, "List the batches of the database instead of exporting.")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.list {
		batches, err := store.Batches(ctx, c.db)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", c.db, err)
			return subcommands.ExitFailure
		}
		for _, b := range batches {
			fmt.Printf("%s  %s  %6d transactions  %6d diagnostics\n", b.ID, b.ImportedAt.Format("2006-01-02 15:04:05"), b.Transactions, b.Diagnostics)
		}
		return subcommands.ExitSuccess
	}

	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	b, err := store.Export(ctx, c.db, ledger, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting to %q: %v\n", c.db, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("batch %s: %d transactions exported to %s\n", b.ID, b.Transactions, c.db)
	return subcommands.ExitSuccess
}
