package cmd

import (
	"flag"
	"strings"

	"github.com/etnz/tradehistory"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the registered commands. Flags
// are read from each command's flag set.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: make(map[string]complete.Predictor),
	}
	flag.CommandLine.VisitAll(func(f *flag.Flag) {
		root.Flags[f.Name] = predictor(f.Name)
	})
	for _, c := range commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		sub := &complete.Command{Flags: make(map[string]complete.Predictor)}
		fs.VisitAll(func(f *flag.Flag) {
			sub.Flags[f.Name] = predictor(f.Name)
		})
		root.Sub[c.Name()] = sub
	}
	return root
}

// predictor guesses the values of a flag from its name.
func predictor(name string) complete.Predictor {
	switch name {
	case "config":
		return predict.Files("*.yaml")
	case "ledger", "prices", "fx", "o":
		return predict.Files("*.csv")
	case "db", "sqlite":
		return predict.Files("*.sqlite")
	case "cache":
		return predict.Dirs("*")
	case "method":
		return predict.Set{tradehistory.AverageCost.String(), tradehistory.FIFO.String()}
	case "log-level":
		return predict.Set{"debug", "info", "warn", "error"}
	case "currencies":
		return predict.Set{"USD", "EUR", "USD,EUR"}
	}
	if strings.HasPrefix(name, "html") || name == "run" || name == "report" || name == "list" || name == "detect" {
		return predict.Nothing
	}
	return predict.Something
}
