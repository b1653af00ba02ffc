package operations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biopsycli/internal/batch"
	"biopsycli/internal/infrastructure"
	"biopsycli/internal/shared/testutil"
)

type exportFunc func(ctx context.Context, req ExportRequest, progress func(done, total int)) (batch.Result, error)

func (f exportFunc) Export(ctx context.Context, req ExportRequest, progress func(done, total int)) (batch.Result, error) {
	return f(ctx, req, progress)
}

// blockingExport reports started, then waits for release or cancellation.
func blockingExport(started chan<- string, release <-chan struct{}) exportFunc {
	return func(ctx context.Context, req ExportRequest, progress func(done, total int)) (batch.Result, error) {
		started <- req.IDs[0]
		select {
		case <-release:
			return batch.Result{Attempted: 1, Succeeded: 1}, nil
		case <-ctx.Done():
			return batch.Result{Canceled: true}, nil
		}
	}
}

func newTestQueue(t *testing.T, workers, size int, exec Executor) *JobQueue {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	q := NewJobQueue(workers, size, NewMemoryJobStore(), exec, logger)
	q.Start(context.Background())
	t.Cleanup(func() { q.Stop(5 * time.Second) })
	return q
}

func waitForStatus(t *testing.T, q *JobQueue, id string, want JobStatus) *Job {
	t.Helper()
	var job *Job
	require.Eventually(t, func() bool {
		var err error
		job, err = q.GetJob(id)
		return err == nil && job.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestJobQueue_CompletesJob(t *testing.T) {
	exec := exportFunc(func(ctx context.Context, req ExportRequest, progress func(done, total int)) (batch.Result, error) {
		progress(1, 2)
		progress(2, 2)
		return batch.Result{RunID: "run-1", Attempted: 2, Succeeded: 2}, nil
	})
	q := newTestQueue(t, 2, 0, exec)

	ctx := infrastructure.WithTraceID(context.Background(), "trace-abc")
	job, err := q.Enqueue(ctx, ExportRequest{IDs: []string{"KB-1/25", "KB-2/25"}})
	require.NoError(t, err)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, "trace-abc", job.TraceID)

	done := waitForStatus(t, q, job.ID, JobStatusCompleted)
	assert.Equal(t, 100, done.Progress)
	require.NotNil(t, done.Result)
	assert.Equal(t, "run-1", done.Result.RunID)
	assert.Equal(t, "Exported 2 documents, 0 failed", done.Message)
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.CompletedAt)
}

func TestJobQueue_ExecutorError(t *testing.T) {
	exec := exportFunc(func(context.Context, ExportRequest, func(int, int)) (batch.Result, error) {
		return batch.Result{}, errors.New("no biopsy data loaded")
	})
	q := newTestQueue(t, 1, 0, exec)

	job, err := q.Enqueue(context.Background(), ExportRequest{})
	require.NoError(t, err)

	failed := waitForStatus(t, q, job.ID, JobStatusFailed)
	assert.Equal(t, "no biopsy data loaded", failed.Error)
	assert.Nil(t, failed.Result)
}

func TestJobQueue_PanicMarksFailed(t *testing.T) {
	exec := exportFunc(func(context.Context, ExportRequest, func(int, int)) (batch.Result, error) {
		panic("boom")
	})
	q := newTestQueue(t, 1, 0, exec)

	job, err := q.Enqueue(context.Background(), ExportRequest{})
	require.NoError(t, err)

	failed := waitForStatus(t, q, job.ID, JobStatusFailed)
	assert.Contains(t, failed.Error, "boom")
	assert.Equal(t, 0, q.Stats().ActiveJobs)
}

func TestJobQueue_CancelRunning(t *testing.T) {
	started := make(chan string, 1)
	q := newTestQueue(t, 1, 0, blockingExport(started, make(chan struct{})))

	job, err := q.Enqueue(context.Background(), ExportRequest{IDs: []string{"A"}})
	require.NoError(t, err)
	<-started
	waitForStatus(t, q, job.ID, JobStatusRunning)

	_, err = q.CancelJob(job.ID)
	require.NoError(t, err)

	cancelled := waitForStatus(t, q, job.ID, JobStatusCancelled)
	require.NotNil(t, cancelled.Result)
	assert.True(t, cancelled.Result.Canceled)

	_, err = q.CancelJob(job.ID)
	assert.ErrorIs(t, err, ErrJobFinished)
}

func TestJobQueue_CancelPendingSkipsExecution(t *testing.T) {
	started := make(chan string, 2)
	release := make(chan struct{})
	q := newTestQueue(t, 1, 0, blockingExport(started, release))

	first, err := q.Enqueue(context.Background(), ExportRequest{IDs: []string{"first"}})
	require.NoError(t, err)
	assert.Equal(t, "first", <-started)

	second, err := q.Enqueue(context.Background(), ExportRequest{IDs: []string{"second"}})
	require.NoError(t, err)

	job, err := q.CancelJob(second.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusCancelled, job.Status)

	close(release)
	waitForStatus(t, q, first.ID, JobStatusCompleted)

	// The worker drains the cancelled job without running it.
	require.Eventually(t, func() bool { return q.Stats().QueueSize == 0 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, started)
	got, err := q.GetJob(second.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusCancelled, got.Status)
}

func TestJobQueue_QueueFull(t *testing.T) {
	started := make(chan string, 1)
	release := make(chan struct{})
	defer close(release)
	q := newTestQueue(t, 1, 1, blockingExport(started, release))

	_, err := q.Enqueue(context.Background(), ExportRequest{IDs: []string{"running"}})
	require.NoError(t, err)
	<-started

	_, err = q.Enqueue(context.Background(), ExportRequest{IDs: []string{"queued"}})
	require.NoError(t, err)

	_, err = q.Enqueue(context.Background(), ExportRequest{IDs: []string{"rejected"}})
	assert.ErrorIs(t, err, ErrQueueFull)

	failed, err := q.ListJobs(JobFilter{Status: JobStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, ErrQueueFull.Error(), failed[0].Error)
}

func TestJobQueue_StopRejectsNewJobs(t *testing.T) {
	q := newTestQueue(t, 1, 0, exportFunc(func(context.Context, ExportRequest, func(int, int)) (batch.Result, error) {
		return batch.Result{}, nil
	}))

	require.NoError(t, q.Stop(time.Second))
	require.NoError(t, q.Stop(time.Second))

	_, err := q.Enqueue(context.Background(), ExportRequest{})
	assert.ErrorIs(t, err, ErrQueueStopped)
}

func TestJobQueue_StopTimeoutCancelsRunning(t *testing.T) {
	started := make(chan string, 1)
	logger, _ := testutil.NewTestLogger(t)
	q := NewJobQueue(1, 0, nil, blockingExport(started, make(chan struct{})), logger)
	q.Start(context.Background())

	job, err := q.Enqueue(context.Background(), ExportRequest{IDs: []string{"slow"}})
	require.NoError(t, err)
	<-started

	err = q.Stop(20 * time.Millisecond)
	assert.Error(t, err)

	got, err := q.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusCancelled, got.Status)
}

func TestJobQueue_GetUnknown(t *testing.T) {
	q := newTestQueue(t, 1, 0, nil)

	_, err := q.GetJob("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = q.CancelJob("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
