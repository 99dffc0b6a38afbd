// Command salesstats ranks the sellers of a sales export and prints the
// leaderboard as JSON on stdout.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/noah-isme/sellerstats/internal/config"
	"github.com/noah-isme/sellerstats/internal/dataset"
	"github.com/noah-isme/sellerstats/internal/obs"
	"github.com/noah-isme/sellerstats/internal/salesstats"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	logger := obs.NewLoggerTo(stderr, cfg.LogFormat, cfg.LogLevel).With().Str("cmd", "salesstats").Logger()

	fs := flag.NewFlagSet("salesstats", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("input", dataset.Stdin, "path to the dataset JSON, - for stdin")
	top := fs.Int("top", cfg.TopN, "number of top products kept per seller")
	salesCount := fs.String("sales-count", string(cfg.SalesCount), "sales count mode: units or records")
	rounding := fs.String("rounding", cfg.Precision.String(), "money rounding: integer or cents")
	strict := fs.Bool("strict", cfg.StrictEmpty, "reject datasets with an empty collection")
	pretty := fs.Bool("pretty", false, "indent the JSON output")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	opts := cfg.SalesOptions()
	opts.TopN = *top
	opts.Strict = *strict
	if opts.SalesCount, err = salesstats.ParseSalesCountMode(*salesCount); err != nil {
		logger.Error().Err(err).Msg("parse -sales-count")
		return 1
	}
	if opts.Precision, err = salesstats.ParsePrecision(*rounding); err != nil {
		logger.Error().Err(err).Msg("parse -rounding")
		return 1
	}

	var in *salesstats.Input
	if *input == dataset.Stdin {
		in, err = dataset.Decode(stdin)
	} else {
		in, err = dataset.LoadFile(*input)
	}
	if err != nil {
		logger.Error().Err(err).Str("input", *input).Msg("load dataset")
		return 1
	}

	analyzer := &salesstats.Analyzer{Options: opts, Logger: logger}
	rep, err := analyzer.Run(in)
	if err != nil {
		logger.Error().Err(err).Msg("analyze sales")
		return 1
	}

	enc := json.NewEncoder(stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(rep); err != nil {
		logger.Error().Err(err).Msg("write leaderboard")
		return 1
	}
	return 0
}
