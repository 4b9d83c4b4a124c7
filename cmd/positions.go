package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradehistory"
	"github.com/etnz/tradehistory/renderer"
	"github.com/google/subcommands"
)

type positionsCmd struct {
	method string
	html   bool
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display positions and realized gains per security" }
func (*positionsCmd) Usage() string {
	return `trh positions [-method average|fifo] [-html]

  Walks the ledger in trade date order and displays, per security code, the
  shares held, their cost, the realized gains and, when the price table
  (-prices) has the code, the market value and unrealized gain in JPY.

  Transactions without a JPY amount are left out and counted.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.method, "method", "average", "The cost basis method (average, fifo) to use for calculating realized gains.")
	f.BoolVar(&c.html, "html", false, "Write HTML instead of rendering for the terminal.")
}

func (c *positionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	method, err := tradehistory.ParseCostBasisMethod(c.method)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	logger := newLogger()
	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	prices, err := decodeSeries(*pricesFile, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading prices %q: %v\n", *pricesFile, err)
		return subcommands.ExitFailure
	}
	fx, err := decodeFX(*fxFile, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading FX table %q: %v\n", *fxFile, err)
		return subcommands.ExitFailure
	}

	md := renderer.PositionsMarkdown(tradehistory.Positions(ledger, method, prices, fx), method)
	if err := output(md, c.html); err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering positions: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
