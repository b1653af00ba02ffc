package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"biopsycli/internal/batch"
	"biopsycli/internal/infrastructure"
)

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

var (
	// ErrJobNotFound is returned for an unknown job ID.
	ErrJobNotFound = errors.New("job not found")

	// ErrQueueFull is returned by Enqueue when no slot is free.
	ErrQueueFull = errors.New("export queue is full")

	// ErrJobFinished is returned when cancelling a job that already ended.
	ErrJobFinished = errors.New("job already finished")

	// ErrQueueStopped is returned by Enqueue after Stop.
	ErrQueueStopped = errors.New("export queue is stopped")
)

// ExportRequest selects the records of one bulk export. An empty IDs list
// exports every keyed record.
type ExportRequest struct {
	IDs         []string `json:"ids,omitempty"`
	GroupByYear bool     `json:"group_by_year"`
}

// Job is one queued bulk export
type Job struct {
	ID          string        `json:"id"`
	TraceID     string        `json:"trace_id,omitempty"`
	Status      JobStatus     `json:"status"`
	Progress    int           `json:"progress"`
	Message     string        `json:"message,omitempty"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Request     ExportRequest `json:"request"`
	Result      *batch.Result `json:"result,omitempty"`
}

// Executor performs the export described by req. progress may be called
// from the executing goroutine after each record.
type Executor interface {
	Export(ctx context.Context, req ExportRequest, progress func(done, total int)) (batch.Result, error)
}

// JobStore interface for job persistence
type JobStore interface {
	CreateJob(job *Job) error
	GetJob(id string) (*Job, error)
	UpdateJob(job *Job) error
	ListJobs(filter JobFilter) ([]*Job, error)
	DeleteJob(id string) error
}

// JobFilter for querying jobs
type JobFilter struct {
	Status JobStatus
	Since  time.Time
	Limit  int
}

// QueueStats is a point-in-time view of the queue
type QueueStats struct {
	Workers    int `json:"workers"`
	QueueSize  int `json:"queue_size"`
	QueueCap   int `json:"queue_cap"`
	ActiveJobs int `json:"active_jobs"`
}

// JobQueue runs exports on a fixed pool of workers
type JobQueue struct {
	mu       sync.Mutex
	jobs     chan string
	workers  int
	wg       sync.WaitGroup
	store    JobStore
	executor Executor
	logger   *slog.Logger
	shutdown chan struct{}
	stopped  bool
	cancel   context.CancelFunc
	active   map[string]context.CancelFunc
}

// NewJobQueue creates a new job queue. queueSize bounds the pending jobs;
// zero means twice the worker count.
func NewJobQueue(workers, queueSize int, store JobStore, executor Executor, logger *slog.Logger) *JobQueue {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers * 2
	}
	if store == nil {
		store = NewMemoryJobStore()
	}

	return &JobQueue{
		jobs:     make(chan string, queueSize),
		workers:  workers,
		store:    store,
		executor: executor,
		logger:   infrastructure.WithComponent(logger, "jobqueue"),
		shutdown: make(chan struct{}),
		active:   make(map[string]context.CancelFunc),
	}
}

// Start begins processing jobs. Running exports are canceled when ctx is.
func (q *JobQueue) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	q.mu.Lock()
	q.cancel = cancel
	q.mu.Unlock()

	q.logger.InfoContext(ctx, "starting job queue", slog.Int("workers", q.workers))

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

// Stop stops accepting jobs and waits for the workers. Exports still
// running after timeout are canceled.
func (q *JobQueue) Stop(timeout time.Duration) error {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return nil
	}
	q.stopped = true
	close(q.shutdown)
	cancel := q.cancel
	q.mu.Unlock()

	q.logger.Info("stopping job queue")

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("job queue stopped gracefully")
		if cancel != nil {
			cancel()
		}
		return nil
	case <-time.After(timeout):
		q.logger.Warn("job queue stop timeout exceeded, canceling running exports")
		if cancel != nil {
			cancel()
		}
		<-done
		return fmt.Errorf("timeout waiting for workers to finish")
	}
}

// Enqueue records a pending job for req and hands it to the workers
func (q *JobQueue) Enqueue(ctx context.Context, req ExportRequest) (*Job, error) {
	job := &Job{
		ID:        infrastructure.GenerateTraceID(),
		TraceID:   infrastructure.GetTraceID(ctx),
		Status:    JobStatusPending,
		CreatedAt: time.Now(),
		Request:   req,
		Message:   "Waiting for a worker",
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return nil, ErrQueueStopped
	}

	if err := q.store.CreateJob(job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	select {
	case q.jobs <- job.ID:
		q.logger.InfoContext(ctx, "job enqueued",
			slog.String("job_id", job.ID),
			slog.Int("ids", len(req.IDs)),
			slog.Bool("group_by_year", req.GroupByYear))
		return job, nil
	default:
		job.Status = JobStatusFailed
		job.Error = ErrQueueFull.Error()
		now := time.Now()
		job.CompletedAt = &now
		q.store.UpdateJob(job)
		q.logger.WarnContext(ctx, "job rejected, queue full", slog.String("job_id", job.ID))
		return nil, ErrQueueFull
	}
}

// GetJob retrieves a job by ID
func (q *JobQueue) GetJob(id string) (*Job, error) {
	return q.store.GetJob(id)
}

// ListJobs returns jobs matching the filter, newest first
func (q *JobQueue) ListJobs(filter JobFilter) ([]*Job, error) {
	return q.store.ListJobs(filter)
}

// CancelJob cancels a pending job or stops a running one before its next
// record. Documents already written are kept.
func (q *JobQueue) CancelJob(id string) (*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, err := q.store.GetJob(id)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		return job, ErrJobFinished
	}

	if cancel, ok := q.active[id]; ok {
		cancel()
		job.Message = "Cancellation requested"
		q.store.UpdateJob(job)
		return job, nil
	}

	job.Status = JobStatusCancelled
	job.Message = "Cancelled before start"
	now := time.Now()
	job.CompletedAt = &now
	if err := q.store.UpdateJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

// Stats returns queue statistics
func (q *JobQueue) Stats() QueueStats {
	q.mu.Lock()
	activeCount := len(q.active)
	q.mu.Unlock()

	return QueueStats{
		Workers:    q.workers,
		QueueSize:  len(q.jobs),
		QueueCap:   cap(q.jobs),
		ActiveJobs: activeCount,
	}
}

func (q *JobQueue) worker(ctx context.Context, workerID int) {
	defer q.wg.Done()

	logger := q.logger.With(slog.Int("worker_id", workerID))
	logger.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("worker stopped by context")
			return
		case <-q.shutdown:
			logger.Debug("worker stopped by shutdown")
			return
		case id := <-q.jobs:
			q.processJob(ctx, id, logger)
		}
	}
}

// begin moves a pending job to running. It returns nil when the job was
// cancelled while queued.
func (q *JobQueue) begin(ctx context.Context, id string) (*Job, context.Context, context.CancelFunc) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, err := q.store.GetJob(id)
	if err != nil || job.Status != JobStatusPending {
		return nil, nil, nil
	}

	now := time.Now()
	job.Status = JobStatusRunning
	job.StartedAt = &now
	job.Message = "Export started"
	q.store.UpdateJob(job)

	jobCtx, cancel := context.WithCancel(ctx)
	if job.TraceID != "" {
		jobCtx = infrastructure.WithTraceID(jobCtx, job.TraceID)
	}
	q.active[id] = cancel
	return job, jobCtx, cancel
}

func (q *JobQueue) processJob(ctx context.Context, id string, logger *slog.Logger) {
	job, jobCtx, cancel := q.begin(ctx, id)
	if job == nil {
		logger.Debug("skipping job no longer pending", slog.String("job_id", id))
		return
	}
	logger = logger.With(slog.String("job_id", job.ID))
	logger.InfoContext(jobCtx, "processing job started")

	defer func() {
		if r := recover(); r != nil {
			logger.Error("job processing panicked", slog.Any("panic", r))
			q.finish(job, nil, fmt.Errorf("job processing panicked: %v", r))
		}
		cancel()
		q.mu.Lock()
		delete(q.active, job.ID)
		q.mu.Unlock()
	}()

	res, err := q.executor.Export(jobCtx, job.Request, func(done, total int) {
		q.setProgress(job, done, total)
	})
	if err != nil {
		logger.ErrorContext(jobCtx, "job failed", slog.String("error", err.Error()))
		q.finish(job, nil, err)
		return
	}

	q.finish(job, &res, nil)
	logger.InfoContext(jobCtx, "processing job completed",
		slog.String("status", string(job.Status)),
		slog.Int("succeeded", res.Succeeded),
		slog.Int("failed", res.Failed))
}

func (q *JobQueue) setProgress(job *Job, done, total int) {
	if total <= 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	job.Progress = done * 100 / total
	job.Message = fmt.Sprintf("Exported %d of %d", done, total)
	q.store.UpdateJob(job)
}

func (q *JobQueue) finish(job *Job, res *batch.Result, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	job.CompletedAt = &now
	job.Result = res

	switch {
	case err != nil:
		job.Status = JobStatusFailed
		job.Error = err.Error()
		job.Message = "Export failed"
	case res.Canceled:
		job.Status = JobStatusCancelled
		job.Message = fmt.Sprintf("Cancelled after %d records", res.Attempted)
	default:
		job.Status = JobStatusCompleted
		job.Progress = 100
		job.Message = fmt.Sprintf("Exported %d documents, %d failed", res.Succeeded, res.Failed)
	}

	if err := q.store.UpdateJob(job); err != nil {
		q.logger.Error("failed to update job", slog.String("job_id", job.ID), slog.String("error", err.Error()))
	}
}
