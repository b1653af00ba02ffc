package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"biopsycli/internal/app"
	"biopsycli/internal/files"
	"biopsycli/internal/form"
	"biopsycli/internal/services"
	"biopsycli/internal/validation"
	"biopsycli/pkg/contracts"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		slog.Error("render failed", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	configFile := fs.String("config", "", "YAML config file (defaults to config.yaml next to the executable)")
	dataFile := fs.String("data", "", "biopsy data file (overrides config)")
	outDir := fs.String("out", "", "output directory for the PDF (overrides config)")
	biopsyNo := fs.String("id", "", "biopsy number of the record to render")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return nil
	}
	if *biopsyNo == "" {
		return errors.New("-id is required")
	}

	rt, err := app.Bootstrap(*configFile)
	if err != nil {
		return err
	}
	defer rt.Close(context.WithoutCancel(ctx))

	if *dataFile != "" {
		rt.Config.Data.File = *dataFile
	}
	if *outDir != "" {
		rt.Config.Output.PDFDir = *outDir
	}

	logger := rt.Logger.With(slog.String("command", "render"))
	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateDataFile(rt.Config.Data.File); err != nil {
		return err
	}
	if err := validator.ValidateOutputDirectory(rt.Config.Output.PDFDir); err != nil {
		return err
	}

	svc := rt.NewRecordService()
	start := time.Now()
	doc, err := svc.GeneratePDF(ctx, *biopsyNo)
	var missing *form.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		return fmt.Errorf("record %s is incomplete: %w", *biopsyNo, err)
	case errors.Is(err, services.ErrRecordNotFound):
		return fmt.Errorf("biopsy number %s not found in %s", *biopsyNo, rt.Config.Data.File)
	case err != nil:
		return err
	}

	path := filepath.Join(rt.Config.Output.PDFDir, doc.Filename)
	if err := files.NewManager(logger).WriteFile(path, doc.Data); err != nil {
		return err
	}

	logger.InfoContext(ctx, "document written",
		slog.String("biopsy_no", *biopsyNo),
		slog.String("path", path),
		slog.Int("size_bytes", len(doc.Data)),
		slog.Duration("duration", time.Since(start)))
	fmt.Fprintln(stdout, path)
	return nil
}
