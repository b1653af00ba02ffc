package app

import (
	"context"
	"fmt"
	"log/slog"

	"biopsycli/internal/config"
	"biopsycli/internal/infrastructure"
	"biopsycli/internal/render"
	"biopsycli/internal/services"
	"biopsycli/internal/stats"
)

// Runtime is the ambient stack shared by every command: configuration,
// logger, telemetry providers and report instruments.
type Runtime struct {
	Config  *config.Config
	Logger  *slog.Logger
	OTel    *infrastructure.OTelProviders
	Metrics *infrastructure.ReportMetrics
}

// Bootstrap loads configuration from configFile (or the default search path
// when empty) and initializes logging and telemetry.
func Bootstrap(configFile string) (*Runtime, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewRuntime(cfg, logger)
}

// NewRuntime initializes telemetry for an already loaded configuration.
func NewRuntime(cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromTelemetry(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewReportMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create report metrics: %w", err)
	}

	return &Runtime{
		Config:  cfg,
		Logger:  logger,
		OTel:    providers,
		Metrics: metrics,
	}, nil
}

// RenderOptions maps the render section onto renderer options
func (rt *Runtime) RenderOptions() render.Options {
	return render.Options{
		Title:            rt.Config.Render.Title,
		Subtitle:         rt.Config.Render.Subtitle,
		SpecimenMaxChars: rt.Config.Render.SpecimenMaxChars,
		Compress:         rt.Config.Render.Compress,
	}
}

// NewRenderer builds the document renderer from configuration
func (rt *Runtime) NewRenderer() *render.Renderer {
	return render.New(rt.RenderOptions(), rt.Logger)
}

// NewRecordService loads the configured data file. A missing or unreadable
// file leaves the service empty rather than failing.
func (rt *Runtime) NewRecordService() *services.RecordService {
	return services.NewRecordService(
		rt.Config.Data.File,
		rt.NewRenderer(),
		stats.DefaultHTMLOptions(),
		rt.Metrics,
		rt.Logger,
	)
}

// ExportTarget maps the output and batch sections onto background export
// locations
func (rt *Runtime) ExportTarget() services.ExportTarget {
	return services.ExportTarget{
		PDFDir:        rt.Config.Output.PDFDir,
		YearDir:       rt.Config.Output.YearDir,
		ProgressEvery: rt.Config.Batch.ProgressEvery,
	}
}

// Close flushes telemetry and releases the log file
func (rt *Runtime) Close(ctx context.Context) error {
	var firstErr error
	if rt.OTel != nil {
		if err := rt.OTel.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
