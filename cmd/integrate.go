package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradehistory"
	"github.com/etnz/tradehistory/renderer"
	"github.com/etnz/tradehistory/store"
	"github.com/google/subcommands"
)

type integrateCmd struct {
	output  string
	workers int
	sqlite  string
	report  bool
	limit   int
}

func (*integrateCmd) Name() string     { return "integrate" }
func (*integrateCmd) Synopsis() string { return "build the canonical trade history ledger from broker exports" }
func (*integrateCmd) Usage() string {
	return `trh integrate [-o <ledger>] [-workers <n>] [-sqlite <db>] [-report]

  Reads every export file listed by the manifest (-config), adapts each one
  from its source format, merges them into one ledger sorted by trade date,
  joins FX rates and security codes, values every transaction in JPY and
  writes the canonical ledger CSV.

  Problems that do not stop the run are logged as warnings. Use -report to
  print them as a table.
`
}

func (c *integrateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output ledger file. Defaults to the manifest output, then to -ledger.")
	f.IntVar(&c.workers, "workers", 0, "Number of files adapted concurrently. Defaults to the manifest value.")
	f.StringVar(&c.sqlite, "sqlite", "", "Also export the ledger to this SQLite database.")
	f.BoolVar(&c.report, "report", false, "Print the diagnostics report.")
	f.IntVar(&c.limit, "limit", 20, "Maximum rows per diagnostic kind in the report, 0 for all.")
}

func (c *integrateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := newLogger()
	cfg, err := tradehistory.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest %q: %v\n", *configFile, err)
		return subcommands.ExitUsageError
	}
	switch {
	case c.output != "":
		cfg.OutputFile = c.output
	case cfg.OutputFile == "":
		cfg.OutputFile = *ledgerFile
	}
	if cfg.FXFile == "" {
		cfg.FXFile = *fxFile
	}
	if c.workers > 0 {
		cfg.Workers = c.workers
	}

	res, err := tradehistory.Run(ctx, cfg, logger)
	if errors.Is(err, tradehistory.ErrNoInput) {
		fmt.Fprintf(os.Stderr, "Error: %v, check the sources of %q\n", err, *configFile)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.sqlite != "" {
		b, err := store.Export(ctx, c.sqlite, res.Ledger, res.Diagnostics)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting to %q: %v\n", c.sqlite, err)
			return subcommands.ExitFailure
		}
		logger.Info("exported", "db", c.sqlite, "batch", b.ID)
	}

	if c.report {
		printMarkdown(renderer.DiagnosticsMarkdown(res.Diagnostics, c.limit))
	}
	fmt.Printf("%d transactions from %d files written to %s, %d diagnostics\n", res.Ledger.Len(), res.Files, cfg.OutputFile, len(res.Diagnostics))
	return subcommands.ExitSuccess
}
