package batch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"biopsycli/internal/fields"
	"biopsycli/internal/files"
	"biopsycli/internal/infrastructure"
	"biopsycli/internal/render"
	"biopsycli/pkg/contracts/domain"
)

// DefaultProgressEvery is the progress log interval in records.
const DefaultProgressEvery = 200

// Options controls a batch run.
type Options struct {
	GroupByYear   bool
	YearDir       string
	ProgressEvery int

	// OnProgress, when set, is called after every record.
	OnProgress func(done, total int)
}

// Failure describes one record that produced no document.
type Failure struct {
	ID    string `json:"id"`
	File  string `json:"file,omitempty"`
	Error string `json:"error"`
}

// Result summarizes a run. Attempted always equals Succeeded + Failed.
type Result struct {
	RunID            string        `json:"run_id"`
	Attempted        int           `json:"attempted"`
	Succeeded        int           `json:"succeeded"`
	Failed           int           `json:"failed"`
	YearCopyFailures int           `json:"year_copy_failures"`
	Canceled         bool          `json:"canceled,omitempty"`
	Failures         []Failure     `json:"failures,omitempty"`
	Duration         time.Duration `json:"duration"`
}

// Runner drives the renderer over a record sequence.
type Runner struct {
	renderer *render.Renderer
	files    *files.Manager
	metrics  *infrastructure.ReportMetrics
	opts     Options
	logger   *slog.Logger
}

// NewRunner creates a Runner. metrics may be nil.
func NewRunner(r *render.Renderer, opts Options, metrics *infrastructure.ReportMetrics, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ProgressEvery < 0 {
		opts.ProgressEvery = 0
	}
	return &Runner{
		renderer: r,
		files:    files.NewManager(logger),
		metrics:  metrics,
		opts:     opts,
		logger:   infrastructure.WithComponent(logger, "batch"),
	}
}

// Run renders every record in recs into destDir. A canceled context stops
// the run before the next record; records already written are kept.
func (b *Runner) Run(ctx context.Context, recs []domain.Record, destDir string) Result {
	ctx, res, finish := b.begin(ctx, len(recs), destDir)

	for _, rec := range recs {
		if ctx.Err() != nil {
			res.Canceled = true
			break
		}
		b.process(ctx, res, fields.Normalize(rec), destDir)
		b.progress(ctx, res, len(recs))
	}
	finish()
	return *res
}

// RunIDs renders the records named by ids. IDs missing from the store are
// counted as attempted and failed.
func (b *Runner) RunIDs(ctx context.Context, store Lookup, ids []string, destDir string) Result {
	ctx, res, finish := b.begin(ctx, len(ids), destDir)

	for _, id := range ids {
		if ctx.Err() != nil {
			res.Canceled = true
			break
		}
		rec, ok := store.Get(id)
		if !ok {
			b.fail(ctx, res, Failure{ID: id, Error: "record not found"})
			b.progress(ctx, res, len(ids))
			continue
		}
		b.process(ctx, res, fields.Normalize(rec), destDir)
		b.progress(ctx, res, len(ids))
	}
	finish()
	return *res
}

// Lookup resolves biopsy numbers to records.
type Lookup interface {
	Get(biopsyNo string) (domain.Record, bool)
}

func (b *Runner) begin(ctx context.Context, total int, destDir string) (context.Context, *Result, func()) {
	runID := infrastructure.GenerateTraceID()
	ctx = infrastructure.WithTraceID(ctx, runID)
	ctx, span := infrastructure.Tracer().Start(ctx, "batch.run",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.Int("records", total),
		))

	start := time.Now()
	res := &Result{RunID: runID}

	b.logger.InfoContext(ctx, "batch started",
		slog.Int("records", total),
		slog.String("dest_dir", destDir),
		slog.Bool("group_by_year", b.opts.GroupByYear))

	return ctx, res, func() {
		res.Duration = time.Since(start)
		b.metrics.RecordBatchRun(ctx, res.Attempted, res.Failed)
		span.SetAttributes(
			attribute.Int("attempted", res.Attempted),
			attribute.Int("failed", res.Failed))
		span.End()

		b.logger.InfoContext(ctx, "batch finished",
			slog.Int("attempted", res.Attempted),
			slog.Int("succeeded", res.Succeeded),
			slog.Int("failed", res.Failed),
			slog.Int("year_copy_failures", res.YearCopyFailures),
			slog.Bool("canceled", res.Canceled),
			slog.Duration("duration", res.Duration))
	}
}

func (b *Runner) process(ctx context.Context, res *Result, n domain.Normalized, destDir string) {
	id := n.Get(domain.FieldID)
	name := files.SafeFilename(id, n.Get(domain.FieldName))
	path := filepath.Join(destDir, name)

	start := time.Now()
	err := b.renderer.RenderToFile(n, path)
	b.metrics.RecordRender(ctx, "batch", time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		b.fail(ctx, res, Failure{ID: id, File: name, Error: err.Error()})
		return
	}

	res.Attempted++
	res.Succeeded++

	if b.opts.GroupByYear {
		b.copyToYear(ctx, res, path, name, n.Get(domain.FieldYear))
	}
}

func (b *Runner) copyToYear(ctx context.Context, res *Result, src, name, year string) {
	dst := filepath.Join(b.opts.YearDir, files.YearFolder(year), name)
	if err := b.files.CopyFile(src, dst); err != nil {
		res.YearCopyFailures++
		b.metrics.RecordYearCopyFailure(ctx)
		b.logger.WarnContext(ctx, "year copy failed",
			slog.String("src", src),
			slog.String("dst", dst),
			slog.String("error", err.Error()))
	}
}

func (b *Runner) fail(ctx context.Context, res *Result, f Failure) {
	res.Attempted++
	res.Failed++
	res.Failures = append(res.Failures, f)
	b.logger.WarnContext(ctx, "record failed",
		slog.String("id", f.ID),
		slog.String("file", f.File),
		slog.String("error", f.Error))
}

func (b *Runner) progress(ctx context.Context, res *Result, total int) {
	if b.opts.OnProgress != nil {
		b.opts.OnProgress(res.Attempted, total)
	}
	if b.opts.ProgressEvery == 0 || res.Attempted%b.opts.ProgressEvery != 0 {
		return
	}
	b.logger.InfoContext(ctx, "batch progress",
		slog.Int("processed", res.Attempted),
		slog.Int("total", total),
		slog.Int("failed", res.Failed))
}
