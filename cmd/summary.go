package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradehistory"
	"github.com/etnz/tradehistory/date"
	"github.com/etnz/tradehistory/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	asOf string
	top  int
	html bool
	run  bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display a descriptive summary of the ledger" }
func (*summaryCmd) Usage() string {
	return `trh summary [-asof <day>] [-top <n>] [-html] [-run]

  Displays counts by type, account, currency, source and month, the missing
  values per column, the invested amount and the top securities by JPY
  amount.

  With -run the ledger is built from the manifest instead of read from
  -ledger, and the diagnostics of the run are counted too.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asOf, "asof", "", "Count invested amounts up to this day. Defaults to every trade.")
	f.IntVar(&c.top, "top", 10, "Number of top securities.")
	f.BoolVar(&c.html, "html", false, "Write HTML instead of rendering for the terminal.")
	f.BoolVar(&c.run, "run", false, "Build the ledger from the manifest, without writing it.")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var asOf date.Date
	if c.asOf != "" {
		var err error
		if asOf, err = date.Parse(c.asOf); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	var ledger *tradehistory.Ledger
	var diags tradehistory.Diagnostics
	if c.run {
		cfg, err := tradehistory.LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading manifest %q: %v\n", *configFile, err)
			return subcommands.ExitUsageError
		}
		cfg.OutputFile = ""
		res, err := tradehistory.Run(ctx, cfg, newLogger())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building ledger: %v\n", err)
			return subcommands.ExitFailure
		}
		ledger, diags = res.Ledger, res.Diagnostics
	} else {
		var err error
		if ledger, err = DecodeLedger(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	md := renderer.SummaryMarkdown(tradehistory.Summarize(ledger, diags, asOf, c.top))
	if err := output(md, c.html); err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering summary: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
