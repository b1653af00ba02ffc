package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ReportMetrics holds the instruments for document and statistics output.
// A nil *ReportMetrics is valid and records nothing.
type ReportMetrics struct {
	DocumentsRendered metric.Int64Counter
	RenderFailures    metric.Int64Counter
	RenderDuration    metric.Float64Histogram
	YearCopyFailures  metric.Int64Counter
	BatchRuns         metric.Int64Counter
	StatisticsRuns    metric.Int64Counter
	StatisticsRows    metric.Int64Counter
	HTTPRequestsTotal metric.Int64Counter
	HTTPDuration      metric.Float64Histogram
}

// NewReportMetrics creates the instruments on meter, or on the global meter
// provider when meter is nil.
func NewReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(MeterName)
	}

	var (
		m   ReportMetrics
		err error
	)

	if m.DocumentsRendered, err = meter.Int64Counter(
		"biopsy_documents_rendered_total",
		metric.WithDescription("Total number of PDF documents written"),
	); err != nil {
		return nil, err
	}
	if m.RenderFailures, err = meter.Int64Counter(
		"biopsy_render_failures_total",
		metric.WithDescription("Total number of records that failed to render"),
	); err != nil {
		return nil, err
	}
	if m.RenderDuration, err = meter.Float64Histogram(
		"biopsy_render_duration_seconds",
		metric.WithDescription("Time to render and write one document"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.YearCopyFailures, err = meter.Int64Counter(
		"biopsy_year_copy_failures_total",
		metric.WithDescription("Total number of failed year-folder copies"),
	); err != nil {
		return nil, err
	}
	if m.BatchRuns, err = meter.Int64Counter(
		"biopsy_batch_runs_total",
		metric.WithDescription("Total number of bulk export runs"),
	); err != nil {
		return nil, err
	}
	if m.StatisticsRuns, err = meter.Int64Counter(
		"biopsy_statistics_runs_total",
		metric.WithDescription("Total number of statistics aggregations"),
	); err != nil {
		return nil, err
	}
	if m.StatisticsRows, err = meter.Int64Counter(
		"biopsy_statistics_rows_total",
		metric.WithDescription("Total number of data rows aggregated"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.HTTPDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordRender records one document attempt
func (m *ReportMetrics) RecordRender(ctx context.Context, mode string, d time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("mode", mode))
	m.RenderDuration.Record(ctx, d.Seconds(), attrs)
	if err != nil {
		m.RenderFailures.Add(ctx, 1, attrs)
		return
	}
	m.DocumentsRendered.Add(ctx, 1, attrs)
}

// RecordYearCopyFailure counts one failed year-folder duplication
func (m *ReportMetrics) RecordYearCopyFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.YearCopyFailures.Add(ctx, 1)
}

// RecordBatchRun counts one completed bulk export
func (m *ReportMetrics) RecordBatchRun(ctx context.Context, attempted, failed int) {
	if m == nil {
		return
	}
	status := "success"
	if failed > 0 {
		status = "partial"
	}
	if attempted > 0 && failed == attempted {
		status = "failure"
	}
	m.BatchRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordStatistics counts one aggregation over rows data rows
func (m *ReportMetrics) RecordStatistics(ctx context.Context, rows int) {
	if m == nil {
		return
	}
	m.StatisticsRuns.Add(ctx, 1)
	m.StatisticsRows.Add(ctx, int64(rows))
}

// RecordHTTPRequest records one served request
func (m *ReportMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPDuration.Record(ctx, d.Seconds(), attrs)
}
