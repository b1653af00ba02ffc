package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"biopsycli/internal/app"
	"biopsycli/internal/batch"
	"biopsycli/internal/records"
	"biopsycli/internal/validation"
	"biopsycli/pkg/contracts"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("batch failed", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	configFile := fs.String("config", "", "YAML config file (defaults to config.yaml next to the executable)")
	dataFile := fs.String("data", "", "biopsy data file (overrides config)")
	outDir := fs.String("out", "", "output directory for PDFs (overrides config)")
	ids := fs.String("ids", "", "comma-separated biopsy numbers to export instead of every record")
	idsFile := fs.String("ids-file", "", "file of biopsy numbers, one per line or comma-separated")
	byYear := fs.Bool("by-year", false, "also copy each document into a Year_<year> folder")
	yearDir := fs.String("year-dir", "", "root of the per-year folders (overrides config)")
	progressEvery := fs.Int("progress", 0, "log progress every N records (overrides config)")
	jsonOut := fs.Bool("json", false, "print the run result as JSON")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return nil
	}
	if *ids != "" && *idsFile != "" {
		return errors.New("-ids and -ids-file are mutually exclusive")
	}

	rt, err := app.Bootstrap(*configFile)
	if err != nil {
		return err
	}
	defer rt.Close(context.WithoutCancel(ctx))

	cfg := rt.Config
	if *dataFile != "" {
		cfg.Data.File = *dataFile
	}
	if *outDir != "" {
		cfg.Output.PDFDir = *outDir
	}
	if *yearDir != "" {
		cfg.Output.YearDir = *yearDir
	}
	if *byYear {
		cfg.Output.GroupByYear = true
	}
	if *progressEvery > 0 {
		cfg.Batch.ProgressEvery = *progressEvery
	}

	logger := rt.Logger.With(slog.String("command", "batch"))
	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateDataFile(cfg.Data.File); err != nil {
		return err
	}
	if err := validator.ValidateOutputDirectory(cfg.Output.PDFDir); err != nil {
		return err
	}
	if cfg.Output.GroupByYear {
		if err := validator.ValidateOutputDirectory(cfg.Output.YearDir); err != nil {
			return err
		}
	}

	store := records.Load(cfg.Data.File, logger)
	if err := store.LoadErr(); err != nil {
		return err
	}

	selected, err := selectedIDs(*ids, *idsFile)
	if err != nil {
		return err
	}

	runner := batch.NewRunner(rt.NewRenderer(), batch.Options{
		GroupByYear:   cfg.Output.GroupByYear,
		YearDir:       cfg.Output.YearDir,
		ProgressEvery: cfg.Batch.ProgressEvery,
	}, rt.Metrics, logger)

	var res batch.Result
	if selected != nil {
		res = runner.RunIDs(ctx, store, selected, cfg.Output.PDFDir)
	} else {
		res = runner.Run(ctx, store.Records(), cfg.Output.PDFDir)
	}

	if *jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		count, err := validator.CountDocuments(cfg.Output.PDFDir)
		if err != nil {
			logger.WarnContext(ctx, "could not count documents", slog.String("error", err.Error()))
		}
		printSummary(stdout, res, cfg.Output.PDFDir, count)
	}

	if res.Canceled {
		return context.Cause(ctx)
	}
	return nil
}

// selectedIDs returns nil when no subset was requested
func selectedIDs(inline, path string) ([]string, error) {
	switch {
	case inline != "":
		return nonEmpty(batch.ParseIDList(strings.NewReader(inline)))
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open id list: %w", err)
		}
		defer f.Close()
		return nonEmpty(batch.ParseIDList(f))
	}
	return nil, nil
}

func nonEmpty(ids []string, err error) ([]string, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to read id list: %w", err)
	}
	if len(ids) == 0 {
		return nil, errors.New("id list contains no biopsy numbers")
	}
	return ids, nil
}

func printSummary(w io.Writer, res batch.Result, destDir string, documents int) {
	fmt.Fprintf(w, "Run %s: %d attempted, %d succeeded, %d failed\n",
		res.RunID, res.Attempted, res.Succeeded, res.Failed)
	if res.YearCopyFailures > 0 {
		fmt.Fprintf(w, "Year folder copies failed: %d\n", res.YearCopyFailures)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(w, "  %s: %s\n", f.ID, f.Error)
	}
	fmt.Fprintf(w, "%d documents in %s\n", documents, destDir)
}
