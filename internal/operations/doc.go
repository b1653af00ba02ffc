// Package operations runs bulk PDF exports in the background.
//
// A JobQueue owns a fixed pool of workers. Enqueue stores a pending Job and
// returns immediately; a worker later hands the job's ExportRequest to an
// Executor and records progress and the final batch.Result on the job.
// Jobs can be cancelled while pending or running. A running export stops
// before its next record and keeps the documents already written.
//
// Job state lives in a JobStore. MemoryJobStore keeps it for the life of
// the process.
package operations
