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

type formatsCmd struct {
	detect bool
}

func (*formatsCmd) Name() string     { return "formats" }
func (*formatsCmd) Synopsis() string { return "list the supported export formats" }
func (*formatsCmd) Usage() string {
	return `trh formats [-detect <file>...]

  Lists the export formats with their file name tags, encoding and preamble
  length. With -detect, prints the format each file name resolves to.
`
}

func (c *formatsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.detect, "detect", false, "Resolve the format of the file names given as arguments.")
}

func (c *formatsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.detect {
		status := subcommands.ExitSuccess
		for _, file := range f.Args() {
			format, err := tradehistory.DetectFormat(file)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				status = subcommands.ExitFailure
				continue
			}
			fmt.Printf("%s\t%s\n", format, file)
		}
		return status
	}

	var adapters []*tradehistory.Adapter
	for _, format := range tradehistory.Formats {
		a, err := tradehistory.AdapterFor(format)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		adapters = append(adapters, a)
	}
	printMarkdown(renderer.FormatsMarkdown(adapters))
	return subcommands.ExitSuccess
}
