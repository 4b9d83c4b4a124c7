// Package cmd implements the trh command-line application: it builds the
// trade history ledger and reports on it.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/etnz/tradehistory"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range commands {
		c.Register(cmd.Command, cmd.group)
	}
}

type command struct {
	subcommands.Command
	group string
}

var commands = []command{
	{&integrateCmd{}, "ledger"},
	{&formatsCmd{}, "ledger"},
	{&exportCmd{}, "ledger"},
	{&fetchPricesCmd{}, "reference data"},
	{&fetchFXCmd{}, "reference data"},
	{&summaryCmd{}, "reports"},
	{&positionsCmd{}, "reports"},
	{&chartDataCmd{}, "reports"},
}

// dotenv loads a .env file once, before any flag default is computed.
var dotenv = sync.OnceValue(func() error { return godotenv.Load() })

// env returns the value of an environment variable, or def.
func env(key, def string) string {
	_ = dotenv()
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", env("TRH_CONFIG", "trh.yaml"), "Path to the YAML manifest listing the sources and reference tables (TRH_CONFIG)")
var ledgerFile = flag.String("ledger", env("TRH_LEDGER", "trade_history.csv"), "Path to the canonical ledger CSV (TRH_LEDGER)")
var pricesFile = flag.String("prices", env("TRH_PRICES", "DIC/charts.csv"), "Path to the adjusted close price table (TRH_PRICES)")
var fxFile = flag.String("fx", env("TRH_FX", "DIC/forex_data.csv"), "Path to the FX rate table (TRH_FX)")
var logLevel = flag.String("log-level", env("TRH_LOG_LEVEL", "info"), "Log level: debug, info, warn, error (TRH_LOG_LEVEL)")

// newLogger returns the application logger, writing to stderr.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "trh"})
	level, err := log.ParseLevel(strings.ToLower(*logLevel))
	if err != nil {
		logger.Warn("unknown log level, using info", "level", *logLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// DecodeLedger reads the app ledger file.
func DecodeLedger() (*tradehistory.Ledger, error) {
	l, err := tradehistory.ReadLedgerFile(*ledgerFile)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %q: %w", *ledgerFile, err)
	}
	return l, nil
}

// decodeSeries reads an optional wide table such as the price table. A
// missing file is not an error, it returns nil.
func decodeSeries(path string, logger tradehistory.Logger) (*tradehistory.Series, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("table not found, continuing without it", "file", path)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, diags, err := tradehistory.DecodeSeries(f, path)
	if err != nil {
		return nil, err
	}
	diags.Log(logger)
	return s, nil
}

// decodeFX reads the optional FX table.
func decodeFX(path string, logger tradehistory.Logger) (*tradehistory.FXTable, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("FX table not found, USD positions are not priced", "file", path)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fx, diags, err := tradehistory.DecodeFXTable(f, path)
	if err != nil {
		return nil, err
	}
	diags.Log(logger)
	return fx, nil
}
