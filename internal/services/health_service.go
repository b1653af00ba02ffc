package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// RecordCounter reports the size of the loaded data set.
type RecordCounter interface {
	Count() (records int, loaded bool)
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	records   RecordCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Records   int                    `json:"records"`
	DataReady bool                   `json:"data_loaded"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, records RecordCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		records:   records,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck reports liveness plus the record count. The service is "ok"
// even without data; "degraded" tells the caller the data file is missing
// or unreadable.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
	if hs.records != nil {
		status.Records, status.DataReady = hs.records.Count()
	}
	if !status.DataReady {
		status.Status = "degraded"
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed",
		slog.String("status", status.Status),
		slog.Int("records", status.Records))
	return status
}

// LivenessCheck returns liveness status with runtime details
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	status := hs.HealthCheck(ctx)
	status.Runtime = map[string]interface{}{
		"uptime":     time.Since(hs.startTime).Seconds(),
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
	}
	return status
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
	}
}
