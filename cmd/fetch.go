package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/etnz/tradehistory"
	"github.com/etnz/tradehistory/date"
	"github.com/etnz/tradehistory/yahoo"
	"github.com/google/subcommands"
	"golang.org/x/time/rate"
)

// yahooFlags are the flags shared by the commands hitting the chart API.
type yahooFlags struct {
	from     string
	to       string
	cacheDir string
	period   string
	workers  int
	retries  int
	interval time.Duration
	baseURL  string
}

func (y *yahooFlags) SetFlags(f *flag.FlagSet, from string) {
	f.StringVar(&y.from, "from", from, "First day to fetch.")
	f.StringVar(&y.to, "to", "", "Last day to fetch. Defaults to yesterday.")
	f.StringVar(&y.cacheDir, "cache", env("TRH_CACHE_DIR", ""), "Directory of the daily HTTP cache, the temp dir when empty (TRH_CACHE_DIR).")
	f.StringVar(&y.period, "cache-period", "daily", "How long a cached response is served: daily, monthly or yearly.")
	f.IntVar(&y.workers, "workers", 4, "Number of codes fetched concurrently.")
	f.IntVar(&y.retries, "retries", 3, "Retries of a failed request.")
	f.DurationVar(&y.interval, "interval", 500*time.Millisecond, "Minimum delay between two requests.")
	f.StringVar(&y.baseURL, "base-url", env("TRH_YAHOO_URL", yahoo.DefaultBaseURL), "Chart API host (TRH_YAHOO_URL).")
}

// client returns the chart API client and the range to fetch.
func (y *yahooFlags) client(logger tradehistory.Logger) (*yahoo.Client, date.Range, error) {
	var r date.Range
	var err error
	if r.From, err = date.Parse(y.from); err != nil {
		return nil, r, fmt.Errorf("invalid -from: %w", err)
	}
	r.To = date.Today().Add(-1)
	if y.to != "" {
		if r.To, err = date.Parse(y.to); err != nil {
			return nil, r, fmt.Errorf("invalid -to: %w", err)
		}
	}
	if r.To.Before(r.From) {
		return nil, r, fmt.Errorf("empty range %s to %s", r.From, r.To)
	}
	period, err := date.ParsePeriod(y.period)
	if err != nil {
		return nil, r, fmt.Errorf("invalid -cache-period: %w", err)
	}
	c := yahoo.New(yahoo.NewCachingClient(y.cacheDir, period, logger), logger)
	c.BaseURL = y.baseURL
	c.Workers = y.workers
	c.Retries = y.retries
	c.Limiter = rate.NewLimiter(rate.Every(y.interval), 1)
	return c, r, nil
}

// writeSeries writes a table atomically next to its destination.
func writeSeries(path string, s *tradehistory.Series) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()
	if err = tradehistory.EncodeSeries(tmp, s); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// reportFailures prints the codes that could not be fetched.
func reportFailures(errs map[string]error) {
	codes := make([]string, 0, len(errs))
	for code := range errs {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		fmt.Fprintf(os.Stderr, "failed %s: %v\n", code, errs[code])
	}
}

type fetchPricesCmd struct {
	yahooFlags
	output string
	codes  string
}

func (*fetchPricesCmd) Name() string     { return "fetch-prices" }
func (*fetchPricesCmd) Synopsis() string { return "download adjusted close prices of the ledger securities" }
func (*fetchPricesCmd) Usage() string {
	return `trh fetch-prices [-from <day>] [-to <day>] [-codes <c1,c2>] [-o <file>]

  Downloads the daily adjusted close prices of every security code of the
  ledger (or of -codes) and writes them as a wide CSV: a Date column and one
  column per code.

  Tokyo listed codes are looked up with the ".T" suffix. A code that cannot
  be fetched is reported and does not stop the others.
`
}

func (c *fetchPricesCmd) SetFlags(f *flag.FlagSet) {
	c.yahooFlags.SetFlags(f, date.Today().Add(-5*365).String())
	f.StringVar(&c.output, "o", "", "Output file. Defaults to -prices.")
	f.StringVar(&c.codes, "codes", "", "Comma separated codes to fetch instead of the ledger codes.")
}

func (c *fetchPricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := newLogger()
	client, r, err := c.client(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	var codes []string
	if c.codes != "" {
		for _, code := range strings.Split(c.codes, ",") {
			codes = append(codes, strings.TrimSpace(code))
		}
	} else {
		ledger, err := DecodeLedger()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		codes = ledger.SecurityCodes()
	}

	prices, errs, err := client.Prices(ctx, codes, r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching prices: %v\n", err)
		return subcommands.ExitFailure
	}
	reportFailures(errs)

	out := c.output
	if out == "" {
		out = *pricesFile
	}
	if err := writeSeries(out, prices); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", out, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%d of %d codes written to %s\n", len(prices.Names()), len(codes), out)
	if len(prices.Names()) == 0 && len(codes) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type fetchFXCmd struct {
	yahooFlags
	output     string
	currencies string
}

func (*fetchFXCmd) Name() string     { return "fetch-fx" }
func (*fetchFXCmd) Synopsis() string { return "download daily JPY exchange rates" }
func (*fetchFXCmd) Usage() string {
	return `trh fetch-fx [-from <day>] [-to <day>] [-currencies USD,EUR] [-o <file>]

  Downloads the daily close of each currency against JPY and writes the FX
  table read by 'trh integrate': a Date column and one column per pair
  (USDJPY, EURJPY).
`
}

func (c *fetchFXCmd) SetFlags(f *flag.FlagSet) {
	c.yahooFlags.SetFlags(f, "2018-01-01")
	f.StringVar(&c.output, "o", "", "Output file. Defaults to -fx.")
	f.StringVar(&c.currencies, "currencies", "USD,EUR", "Comma separated currencies.")
}

func (c *fetchFXCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := newLogger()
	client, r, err := c.client(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	var currencies []string
	for _, cur := range strings.Split(c.currencies, ",") {
		if cur = strings.TrimSpace(cur); cur != "" {
			currencies = append(currencies, cur)
		}
	}

	fx, errs, err := client.Rates(ctx, currencies, r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching rates: %v\n", err)
		return subcommands.ExitFailure
	}
	reportFailures(errs)
	if len(errs) > 0 {
		// a partial FX table would silently leave trades unvalued
		return subcommands.ExitFailure
	}

	out := c.output
	if out == "" {
		out = *fxFile
	}
	if err := writeSeries(out, fx.Series); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", out, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s written to %s\n", strings.Join(fx.Names(), ", "), out)
	return subcommands.ExitSuccess
}
