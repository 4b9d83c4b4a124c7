package tradehistory

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of a pipeline run: the valued ledger and every non
// fatal problem met on the way.
type Result struct {
	Ledger      *Ledger
	Diagnostics Diagnostics
	Files       int // number of files adapted
}

// Run builds the canonical ledger: it loads the reference tables, adapts every
// input file, merges, joins and values the result, then writes it to
// cfg.OutputFile if set.
//
// Only two conditions are fatal: a reference table cannot be loaded
// (ErrReference) and no input file matched a source format (ErrNoInput).
// Everything else is returned as diagnostics.
func Run(ctx context.Context, cfg Config, logger Logger) (*Result, error) {
	refs, diags, err := LoadReferences(cfg.FXFile, cfg.CrosswalkFile, cfg.RemapFiles...)
	if err != nil {
		return nil, err
	}

	var ins []input
	for _, b := range cfg.Batches {
		in, d, err := b.inputs()
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", b.Root, err)
		}
		ins, diags = append(ins, in...), append(diags, d...)
	}
	if len(ins) == 0 {
		diags.Log(logger)
		return nil, ErrNoInput
	}

	tables, d, err := adaptAll(ctx, ins, cfg.Workers, logger)
	if err != nil {
		return nil, err
	}
	diags = append(diags, d...)

	ledger, d := Merge(tables...)
	diags = append(diags, d...)
	diags = append(diags, ledger.Join(refs, logger)...)
	diags = append(diags, ledger.Valuate(logger)...)
	diags.Log(logger)

	if cfg.OutputFile != "" {
		if err := WriteLedgerFile(cfg.OutputFile, ledger); err != nil {
			return nil, fmt.Errorf("writing ledger: %w", err)
		}
		logger.Info("ledger written", "file", cfg.OutputFile, "transactions", ledger.Len())
	}
	return &Result{Ledger: ledger, Diagnostics: diags, Files: len(ins)}, nil
}

// adaptAll adapts files concurrently. Tables are returned in input order so
// that the merged ledger does not depend on scheduling. A file that cannot be
// read is reported and skipped.
func adaptAll(ctx context.Context, ins []input, workers int, logger Logger) ([][]Record, Diagnostics, error) {
	if workers <= 0 {
		workers = 1
	}
	tables := make([][]Record, len(ins))
	perFile := make([]Diagnostics, len(ins))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range ins {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records, d, err := in.adapter.AdaptFile(in.path)
			if err != nil {
				perFile[i] = Diagnostics{{Kind: ParseWarning, File: in.path, Message: fmt.Sprintf("file skipped: %v", err)}}
				return nil
			}
			logger.Debug("adapted", "file", in.path, "format", in.adapter.Format, "records", len(records))
			tables[i], perFile[i] = records, d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	var diags Diagnostics
	for _, d := range perFile {
		diags = append(diags, d...)
	}
	return tables, diags, nil
}
