package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"biopsycli/internal/files"
	"biopsycli/internal/form"
	"biopsycli/internal/infrastructure"
	"biopsycli/internal/records"
	"biopsycli/internal/render"
	"biopsycli/internal/stats"
	"biopsycli/pkg/contracts/domain"
)

// RecordDetail is one record with its normalized fields and text preview.
type RecordDetail struct {
	Summary domain.RecordSummary `json:"summary"`
	Fields  domain.Normalized    `json:"fields"`
	Preview string               `json:"preview"`
}

// Document is a rendered case report.
type Document struct {
	Filename string
	Data     []byte
}

// RecordService serves lookups, documents and statistics from the current
// record store.
type RecordService struct {
	mu    sync.RWMutex
	store *records.Store

	dataFile string
	renderer *render.Renderer
	htmlOpts stats.HTMLOptions
	metrics  *infrastructure.ReportMetrics
	logger   *slog.Logger
}

// NewRecordService loads dataFile and returns a service over it. A load
// failure leaves the service empty; Reload can recover once the file is
// fixed. metrics may be nil.
func NewRecordService(dataFile string, renderer *render.Renderer, htmlOpts stats.HTMLOptions, metrics *infrastructure.ReportMetrics, logger *slog.Logger) *RecordService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "record_service")

	return &RecordService{
		store:    records.Load(dataFile, logger),
		dataFile: dataFile,
		renderer: renderer,
		htmlOpts: htmlOpts,
		metrics:  metrics,
		logger:   logger,
	}
}

func (s *RecordService) current() *records.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// Count returns the number of keyed records and whether data is loaded.
func (s *RecordService) Count() (int, bool) {
	st := s.current()
	return st.Len(), st.LoadErr() == nil
}

// Reload rebuilds the store from the data file. On failure the previous
// store stays in place.
func (s *RecordService) Reload(ctx context.Context) (int, error) {
	st := records.Load(s.dataFile, s.logger)
	if err := st.LoadErr(); err != nil {
		return 0, fmt.Errorf("reload %s: %w", s.dataFile, err)
	}

	s.mu.Lock()
	s.store = st
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "record store reloaded",
		slog.Int("records", st.Len()))
	return st.Len(), nil
}

// Search returns the summaries matching query; an empty query lists all.
func (s *RecordService) Search(ctx context.Context, query string) ([]domain.RecordSummary, error) {
	st := s.current()
	if st.LoadErr() != nil {
		return nil, ErrNoData
	}
	return st.Search(query), nil
}

// Get returns the record keyed by biopsyNo.
func (s *RecordService) Get(ctx context.Context, biopsyNo string) (*RecordDetail, error) {
	rec, err := s.lookup(biopsyNo)
	if err != nil {
		return nil, err
	}
	n := form.FromRecord(rec).Normalized()
	return &RecordDetail{
		Summary: records.Summarize(biopsyNo, rec),
		Fields:  n,
		Preview: s.renderer.Preview(n),
	}, nil
}

// GeneratePDF validates and renders the record keyed by biopsyNo. A record
// missing required fields returns *form.MissingFieldsError.
func (s *RecordService) GeneratePDF(ctx context.Context, biopsyNo string) (*Document, error) {
	rec, err := s.lookup(biopsyNo)
	if err != nil {
		return nil, err
	}

	state := form.FromRecord(rec)
	if err := state.Validate(); err != nil {
		s.logger.WarnContext(ctx, "document not generated",
			slog.String("biopsy_no", biopsyNo),
			slog.String("error", err.Error()))
		return nil, err
	}

	n := state.Normalized()
	start := time.Now()
	data, err := s.renderer.Render(n)
	s.metrics.RecordRender(ctx, "single", time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	return &Document{
		Filename: files.SafeFilename(n.Get(domain.FieldID), n.Get(domain.FieldName)),
		Data:     data,
	}, nil
}

// Snapshot aggregates every data row of the current store.
func (s *RecordService) Snapshot(ctx context.Context) (stats.Snapshot, []string, error) {
	st := s.current()
	if st.LoadErr() != nil {
		return stats.Snapshot{}, nil, ErrNoData
	}
	snap := stats.Aggregate(st.Rows())
	s.metrics.RecordStatistics(ctx, snap.TotalRows)
	return snap, st.Headers(), nil
}

// StatisticsHTML renders the statistics dashboard.
func (s *RecordService) StatisticsHTML(ctx context.Context) ([]byte, error) {
	snap, headers, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	opts := s.htmlOpts
	opts.Headers = headers
	return stats.RenderHTML(snap, opts)
}

func (s *RecordService) lookup(biopsyNo string) (domain.Record, error) {
	st := s.current()
	if st.LoadErr() != nil {
		return nil, ErrNoData
	}
	rec, ok := st.Get(biopsyNo)
	if !ok {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}
