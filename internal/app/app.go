package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	apierrors "biopsycli/internal/errors"
	customMiddleware "biopsycli/internal/middleware"
	"biopsycli/internal/operations"
	"biopsycli/internal/services"
	handlers "biopsycli/internal/transport/http"
	"biopsycli/pkg/contracts"
)

// Application is the record browser HTTP server
type Application struct {
	*Runtime
	Router       *chi.Mux
	Server       *http.Server
	Records      *services.RecordService
	Exports      *services.ExportService
	Jobs         *operations.JobQueue
	Health       *services.HealthService
	ErrorHandler *apierrors.ErrorHandler
}

// NewApplication wires services, routes and the HTTP server onto rt
func NewApplication(rt *Runtime) (*Application, error) {
	if rt == nil || rt.Config == nil {
		return nil, errors.New("runtime with configuration required")
	}

	a := &Application{
		Runtime:      rt,
		ErrorHandler: apierrors.NewErrorHandler(rt.Logger, false),
	}
	a.Records = rt.NewRecordService()
	a.Exports = services.NewExportService(a.Records, rt.ExportTarget(), rt.Logger)
	a.Jobs = operations.NewJobQueue(rt.Config.Batch.Workers, rt.Config.Batch.QueueSize,
		operations.NewMemoryJobStore(), a.Exports, rt.Logger)
	a.Health = services.NewHealthService(contracts.Version, a.Records, rt.Logger)

	a.Jobs.Start(context.Background())

	a.setupRouter()
	a.createServer()
	return a, nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if rl := a.Config.Server.RateLimit; rl.Enabled {
		r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger, a.ErrorHandler).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	health := handlers.NewHealthHandler(a.Health, a.Logger)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.HealthCheck)
		r.Get("/health/live", health.LivenessCheck)
		r.Get("/version", health.Version)
		r.Mount("/records", handlers.NewRecordsHandler(a.Records, a.Logger, a.ErrorHandler).Routes())
		r.Mount("/exports", handlers.NewExportsHandler(a.Jobs, a.Logger, a.ErrorHandler).Routes())
	})

	r.Get("/reports/statistics", handlers.StatisticsPage(a.Records, a.ErrorHandler, a.Logger))

	if metrics := handlers.NewMetricsHandler(a.OTel); metrics.Enabled() {
		r.Handle("/metrics", metrics)
	}

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Addr(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Addr is the configured listen address
func (a *Application) Addr() string {
	return net.JoinHostPort(a.Config.Server.Host, strconv.Itoa(a.Config.Server.Port))
}

// Run serves until ctx is canceled, then shuts the server down gracefully
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	records, loaded := a.Records.Count()
	a.Logger.InfoContext(ctx, "Starting record browser",
		slog.String("address", "http://"+ln.Addr().String()),
		slog.String("version", contracts.Version),
		slog.String("data_file", a.Config.Data.File),
		slog.Int("records", records),
		slog.Bool("data_loaded", loaded))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

// Stop gracefully stops the server and then the export workers, each
// within the configured shutdown timeout
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down record browser")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	if err := a.Jobs.Stop(a.shutdownTimeout()); err != nil {
		a.Logger.WarnContext(ctx, "Export workers did not stop in time", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Record browser shutdown complete")
	return nil
}

func (a *Application) shutdownTimeout() time.Duration {
	if d := a.Config.Server.ShutdownTimeout; d > 0 {
		return d
	}
	return 10 * time.Second
}
