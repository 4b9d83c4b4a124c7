package tradehistory

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Batch is a set of export files sharing a source format.
type Batch struct {
	// Format of every file of the batch. FormatAuto resolves each file by its
	// parent directory name first ("…/JP/2024.csv"), then by DetectFormat.
	Format SourceFormat
	// Root is a directory walked recursively for files matching Glob.
	Root string
	// Glob filters file base names, "*.csv" when empty. Matching ignores case.
	Glob string
	// Files are explicit paths, used in addition to Root.
	Files []string
}

// Config is everything a pipeline run needs. Paths are used as given.
type Config struct {
	Batches       []Batch
	FXFile        string
	CrosswalkFile string
	RemapFiles    []string
	// OutputFile receives the ledger CSV, nothing is written when empty.
	OutputFile string
	// Workers bounds the number of files adapted concurrently, 1 when <= 0.
	Workers int
}

// manifest is the YAML form of a Config.
type manifest struct {
	FX        string   `yaml:"fx"`
	Crosswalk string   `yaml:"crosswalk"`
	Remap     []string `yaml:"remap"`
	Output    string   `yaml:"output"`
	Workers   int      `yaml:"workers"`
	Sources   []struct {
		Format string   `yaml:"format"`
		Root   string   `yaml:"root"`
		Glob   string   `yaml:"glob"`
		Files  []string `yaml:"files"`
	} `yaml:"sources"`
}

// LoadConfig reads a YAML manifest such as:
//
//	fx: DIC/forex_data.csv
//	crosswalk: DIC/securitycode.csv
//	remap: [DIC/securitycode2.csv, DIC/jpxcodesus.csv]
//	output: trade_history.csv
//	sources:
//	  - format: JP
//	    root: RAWDATA/rakuten/jp
//	  - root: RAWDATA/sbi
//
// Relative paths are resolved against the manifest directory.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	base := filepath.Dir(path)
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	cfg := Config{
		FXFile:        abs(m.FX),
		CrosswalkFile: abs(m.Crosswalk),
		OutputFile:    abs(m.Output),
		Workers:       m.Workers,
	}
	for _, r := range m.Remap {
		cfg.RemapFiles = append(cfg.RemapFiles, abs(r))
	}
	for i, s := range m.Sources {
		f, err := ParseSourceFormat(s.Format)
		if err != nil {
			return Config{}, fmt.Errorf("%s: source %d: %w", path, i+1, err)
		}
		b := Batch{Format: f, Root: abs(s.Root), Glob: s.Glob}
		for _, file := range s.Files {
			b.Files = append(b.Files, abs(file))
		}
		cfg.Batches = append(cfg.Batches, b)
	}
	return cfg, nil
}

// input is a file and the adapter chosen for it.
type input struct {
	path    string
	adapter *Adapter
}

// inputs lists the files of the batch with their adapter. Files with no
// format are reported as UnknownFormat and skipped.
func (b Batch) inputs() ([]input, Diagnostics, error) {
	glob := strings.ToLower(b.Glob)
	if glob == "" {
		glob = "*.csv"
	}
	paths := slices.Clone(b.Files)
	if b.Root != "" {
		err := filepath.WalkDir(b.Root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if ok, _ := filepath.Match(glob, strings.ToLower(d.Name())); ok {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}

	var ins []input
	var diags Diagnostics
	for _, path := range paths {
		f, err := b.formatOf(path)
		if err != nil {
			diags = append(diags, Diagnostic{Kind: UnknownFormat, File: path, Message: err.Error()})
			continue
		}
		a, err := AdapterFor(f)
		if err != nil {
			return nil, nil, err
		}
		ins = append(ins, input{path: path, adapter: a})
	}
	return ins, diags, nil
}

func (b Batch) formatOf(path string) (SourceFormat, error) {
	if b.Format != FormatAuto {
		return b.Format, nil
	}
	if f, err := ParseSourceFormat(filepath.Base(filepath.Dir(path))); err == nil && f != FormatAuto {
		return f, nil
	}
	return DetectFormat(path)
}
