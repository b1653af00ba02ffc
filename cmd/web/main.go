package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"biopsycli/internal/app"
	"biopsycli/pkg/contracts"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	configFile := fs.String("config", "", "YAML config file (defaults to config.yaml next to the executable)")
	dataFile := fs.String("data", "", "biopsy data file (overrides config)")
	host := fs.String("host", "", "listen host (overrides config)")
	port := fs.Int("port", 0, "listen port (overrides config)")
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
	if *host != "" {
		rt.Config.Server.Host = *host
	}
	if *port != 0 {
		rt.Config.Server.Port = *port
	}
	rt.Config.LogPathResolution(rt.Logger)

	application, err := app.NewApplication(rt)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	fmt.Fprintf(stdout, "Record browser listening on http://%s\n", application.Addr())
	return application.Run(ctx)
}
