package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"biopsycli/internal/app"
	"biopsycli/internal/exporter"
	"biopsycli/internal/stats"
	"biopsycli/internal/validation"
	"biopsycli/pkg/contracts"
)

// ReportFileName is the dashboard written into the reports directory
const ReportFileName = "biopsy_statistics_report.html"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		slog.Error("statistics failed", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	configFile := fs.String("config", "", "YAML config file (defaults to config.yaml next to the executable)")
	dataFile := fs.String("data", "", "biopsy data file (overrides config)")
	htmlOut := fs.String("out", "", "HTML report path (defaults to <reports_dir>/"+ReportFileName+")")
	csvOut := fs.String("csv", "", "also write the tallies as CSV to this path")
	xlsxOut := fs.String("xlsx", "", "also write the tallies as an XLSX workbook to this path")
	topPhysicians := fs.Int("top-physicians", stats.DefaultHTMLOptions().TopPhysicians, "physicians shown in the report, 0 for all")
	topKeywords := fs.Int("top-keywords", stats.DefaultHTMLOptions().TopKeywords, "keywords shown in the report, 0 for all")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return nil
	}

	rt, err := app.Bootstrap(*configFile)
	if err != nil {
		return err
	}
	defer rt.Close(context.WithoutCancel(ctx))

	if *dataFile != "" {
		rt.Config.Data.File = *dataFile
	}
	if *htmlOut == "" {
		*htmlOut = filepath.Join(rt.Config.Output.ReportsDir, ReportFileName)
	}

	logger := rt.Logger.With(slog.String("command", "stats"))
	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateDataFile(rt.Config.Data.File); err != nil {
		return err
	}

	snap, headers, err := rt.NewRecordService().Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("no statistics for %s: %w", rt.Config.Data.File, err)
	}

	opts := stats.DefaultHTMLOptions()
	opts.Headers = headers
	opts.TopPhysicians = *topPhysicians
	opts.TopKeywords = *topKeywords
	if err := stats.WriteHTML(*htmlOut, snap, opts); err != nil {
		return err
	}
	logger.InfoContext(ctx, "statistics report written",
		slog.String("path", *htmlOut),
		slog.Int("rows", snap.TotalRows))

	if *csvOut != "" {
		if err := exporter.NewCSVWriter("").WriteStatistics(*csvOut, snap); err != nil {
			return fmt.Errorf("failed to write statistics CSV: %w", err)
		}
	}
	if *xlsxOut != "" {
		if err := exporter.WriteWorkbook(*xlsxOut, snap); err != nil {
			return fmt.Errorf("failed to write statistics workbook: %w", err)
		}
	}

	printSummary(stdout, snap)
	for _, p := range []string{*htmlOut, *csvOut, *xlsxOut} {
		if p != "" {
			fmt.Fprintln(stdout, "Wrote", p)
		}
	}
	return nil
}

// summaryLimit caps the entries printed per category
const summaryLimit = 5

func printSummary(w io.Writer, snap stats.Snapshot) {
	fmt.Fprintf(w, "Total reports: %d\n", snap.TotalRows)
	for _, c := range exporter.Categories(snap) {
		fmt.Fprintf(w, "%s:\n", c.Name)
		shown := 0
		for _, e := range c.Entries {
			if e.Count == 0 {
				continue
			}
			if shown == summaryLimit {
				fmt.Fprintln(w, "  ...")
				break
			}
			fmt.Fprintf(w, "  %s\n", e)
			shown++
		}
	}
}
