package services

import (
	"context"
	"fmt"
	"log/slog"

	"biopsycli/internal/batch"
	"biopsycli/internal/infrastructure"
	"biopsycli/internal/operations"
	"biopsycli/internal/validation"
)

// ExportTarget locates the output of background exports
type ExportTarget struct {
	PDFDir        string
	YearDir       string
	ProgressEvery int
}

// ExportService runs bulk exports over the record service's current store.
// It implements operations.Executor.
type ExportService struct {
	records   *RecordService
	target    ExportTarget
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewExportService creates an export service writing under target
func NewExportService(records *RecordService, target ExportTarget, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		records:   records,
		target:    target,
		validator: validation.NewFileValidator(logger),
		logger:    infrastructure.WithComponent(logger, "export_service"),
	}
}

// Export renders the requested records. The store is the one current when
// the export starts; a concurrent reload does not affect a running export.
func (s *ExportService) Export(ctx context.Context, req operations.ExportRequest, progress func(done, total int)) (batch.Result, error) {
	st := s.records.current()
	if st.LoadErr() != nil {
		return batch.Result{}, ErrNoData
	}

	if err := s.validator.ValidateOutputDirectory(s.target.PDFDir); err != nil {
		return batch.Result{}, fmt.Errorf("pdf directory: %w", err)
	}
	if req.GroupByYear {
		if err := s.validator.ValidateOutputDirectory(s.target.YearDir); err != nil {
			return batch.Result{}, fmt.Errorf("year directory: %w", err)
		}
	}

	runner := batch.NewRunner(s.records.renderer, batch.Options{
		GroupByYear:   req.GroupByYear,
		YearDir:       s.target.YearDir,
		ProgressEvery: s.target.ProgressEvery,
		OnProgress:    progress,
	}, s.records.metrics, s.logger)

	if len(req.IDs) > 0 {
		return runner.RunIDs(ctx, st, req.IDs, s.target.PDFDir), nil
	}
	return runner.Run(ctx, st.Records(), s.target.PDFDir), nil
}
