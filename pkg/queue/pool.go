package queue

import (
	"context"
	"errors"
	"sync"
)

// DefaultWorkers is the pool size when the caller does not choose one.
const DefaultWorkers = 4

// Handler executes one job and returns a result summary. A non-nil error
// marks the job failed; the pool never retries (the fetch inside already
// carries its own retry policy).
type Handler func(ctx context.Context, job *Job) (result string, err error)

// Pool consumes a Queue with a fixed number of worker goroutines.
type Pool struct {
	queue   Queue
	handler Handler
	workers int
	wg      sync.WaitGroup
}

// NewPool creates a pool of n workers around q. n <= 0 selects
// DefaultWorkers.
func NewPool(q Queue, n int, h Handler) *Pool {
	if n <= 0 {
		n = DefaultWorkers
	}
	return &Pool{queue: q, handler: h, workers: n}
}

// Start launches the workers. They run until ctx is cancelled or the queue
// is closed; use Wait to block until all of them have exited.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(ctx)
		}()
	}
}

// Wait blocks until every worker has exited.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context) {
	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			// Cancelled context or closed queue ends the worker; anything
			// else is a backend failure with nothing left to consume.
			return
		}

		result, err := p.handler(ctx, job)
		if err != nil {
			job.Status = StatusFailed
			job.Error = err.Error()
		} else {
			job.Status = StatusCompleted
			job.Result = result
		}

		// Report with a fresh context so a cancelled run still records
		// final job states where the backend allows it.
		updateCtx := ctx
		if errors.Is(ctx.Err(), context.Canceled) {
			updateCtx = context.Background()
		}
		_ = p.queue.Update(updateCtx, job)
	}
}
