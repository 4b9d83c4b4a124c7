package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/etnz/tradehistory"
	"github.com/google/subcommands"
)

type chartDataCmd struct {
	code   string
	output string
}

func (*chartDataCmd) Name() string     { return "chart-data" }
func (*chartDataCmd) Synopsis() string { return "emit price series and trade markers as JSON" }
func (*chartDataCmd) Usage() string {
	return `trh chart-data [-code <code>] [-o <file>]

  Writes, for each security code of the ledger (or only -code), its adjusted
  close series from the price table and one marker per valued Buy or Sell
  trade. Drawing the chart is left to the consumer.
`
}

func (c *chartDataCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.code, "code", "", "Only this security code.")
	f.StringVar(&c.output, "o", "", "Output file. Defaults to stdout.")
}

func (c *chartDataCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	var charts []tradehistory.Chart
	if c.code != "" {
		if !slices.Contains(ledger.SecurityCodes(), c.code) {
			fmt.Fprintf(os.Stderr, "Error: no trade on %q in the ledger\n", c.code)
			return subcommands.ExitUsageError
		}
		charts = []tradehistory.Chart{tradehistory.ChartOf(ledger, prices, c.code)}
	} else {
		charts = tradehistory.Charts(ledger, prices)
	}

	var w io.Writer = os.Stdout
	if c.output != "" {
		file, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		w = file
	}
	if err := tradehistory.EncodeCharts(w, charts); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing charts: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
