// Package queue provides the job queue and worker pool behind bulk fetches.
//
// A Job asks for one target's latest snapshot to be fetched. Jobs move
// through pending → running → completed/failed; the queue records the
// transition history via Update so callers can poll job state.
//
// Two backends implement the Queue interface:
//   - [Memory]: in-process, used by the CLI's bulk command and tests
//   - [Redis]: shared, used when the HTTP API runs with external workers
//
// The worker [Pool] consumes a Queue with a bounded number of goroutines.
// Concurrency lives entirely here, on the caller side: each job's fetch
// still runs its own independent timeout and retry lifecycle.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Job states.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var (
	// ErrNotFound is returned when no job exists for the requested ID.
	ErrNotFound = errors.New("job not found")

	// ErrClosed is returned by operations on a closed queue.
	ErrClosed = errors.New("queue closed")

	// ErrFull is returned when the queue cannot accept more jobs.
	ErrFull = errors.New("queue full")
)

// Job is one unit of bulk-fetch work.
type Job struct {
	ID        string    `json:"id"`
	Target    string    `json:"target"`
	Status    string    `json:"status"`
	Result    string    `json:"result,omitempty"` // summary on success (snapshot URL, size)
	Error     string    `json:"error,omitempty"`  // failure reason when Status is failed
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Queue is the interface for job queue backends.
//
// Dequeue blocks until a job is ready, the context is cancelled, or the
// queue is closed. Enqueue assigns an ID, pending status, and timestamps
// when the job carries none.
type Queue interface {
	Enqueue(ctx context.Context, job *Job) error
	Dequeue(ctx context.Context) (*Job, error)
	Update(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	Close() error
}

// prepare fills in the bookkeeping fields of a freshly enqueued job.
func prepare(job *Job) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = StatusPending
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
}
