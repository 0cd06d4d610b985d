package queue

import (
	"context"
	"sync"
	"time"
)

// memoryCapacity bounds the ready channel; Enqueue fails with ErrFull
// beyond it rather than blocking the caller.
const memoryCapacity = 1024

// Memory is an in-process Queue for CLI bulk runs and tests.
// Safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	jobs   map[string]*Job
	ready  chan string
	closed bool
}

// NewMemory creates an empty in-process queue.
func NewMemory() *Memory {
	return &Memory{
		jobs:  make(map[string]*Job),
		ready: make(chan string, memoryCapacity),
	}
}

// Enqueue adds job to the ready queue, assigning ID and timestamps.
func (m *Memory) Enqueue(ctx context.Context, job *Job) error {
	prepare(job)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	cp := *job
	m.jobs[job.ID] = &cp
	m.mu.Unlock()

	select {
	case m.ready <- job.ID:
		return nil
	default:
		m.mu.Lock()
		delete(m.jobs, job.ID)
		m.mu.Unlock()
		return ErrFull
	}
}

// Dequeue blocks until a job is ready. The returned job has been moved to
// running; callers report the outcome with Update.
func (m *Memory) Dequeue(ctx context.Context) (*Job, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case id, ok := <-m.ready:
			if !ok {
				return nil, ErrClosed
			}

			m.mu.Lock()
			job, exists := m.jobs[id]
			if !exists {
				// Deleted between enqueue and dequeue; take the next one.
				m.mu.Unlock()
				continue
			}
			job.Status = StatusRunning
			job.UpdatedAt = time.Now().UTC()
			cp := *job
			m.mu.Unlock()
			return &cp, nil
		}
	}
}

// Update stores the job's current state, or returns ErrNotFound.
func (m *Memory) Update(ctx context.Context, job *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[job.ID]; !ok {
		return ErrNotFound
	}
	job.UpdatedAt = time.Now().UTC()
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

// Get returns the job for id, or ErrNotFound.
func (m *Memory) Get(ctx context.Context, id string) (*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *job
	return &cp, nil
}

// Close stops accepting jobs and unblocks pending Dequeue calls.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.ready)
	}
	return nil
}
