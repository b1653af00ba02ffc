package http

import (
	"net/http"

	"biopsycli/internal/infrastructure"
)

// MetricsHandler serves the Prometheus exposition of the OpenTelemetry
// meter provider
type MetricsHandler struct {
	exposition http.Handler
}

// NewMetricsHandler creates a metrics handler. providers may be nil or have
// metrics disabled, in which case the endpoint answers 404.
func NewMetricsHandler(providers *infrastructure.OTelProviders) *MetricsHandler {
	h := &MetricsHandler{}
	if providers != nil {
		h.exposition = providers.PrometheusHTTP
	}
	return h
}

// Enabled reports whether an exporter is attached
func (h *MetricsHandler) Enabled() bool {
	return h.exposition != nil
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exposition == nil {
		http.NotFound(w, r)
		return
	}
	h.exposition.ServeHTTP(w, r)
}
