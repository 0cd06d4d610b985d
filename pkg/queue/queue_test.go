package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryEnqueueAssignsBookkeeping(t *testing.T) {
	q := NewMemory()
	defer q.Close()

	job := &Job{Target: "example.com"}
	if err := q.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}
	if job.ID == "" {
		t.Error("Enqueue() did not assign an ID")
	}
	if job.Status != StatusPending {
		t.Errorf("Status = %q, want %q", job.Status, StatusPending)
	}
	if job.CreatedAt.IsZero() || job.UpdatedAt.IsZero() {
		t.Error("Enqueue() did not assign timestamps")
	}
}

func TestMemoryDequeueMarksRunning(t *testing.T) {
	q := NewMemory()
	defer q.Close()

	job := &Job{Target: "example.com"}
	if err := q.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}

	got, err := q.Dequeue(context.Background())
	if err != nil {
		t.Fatalf("Dequeue() error: %v", err)
	}
	if got.ID != job.ID {
		t.Errorf("Dequeue() ID = %q, want %q", got.ID, job.ID)
	}
	if got.Status != StatusRunning {
		t.Errorf("Status = %q, want %q", got.Status, StatusRunning)
	}

	stored, err := q.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if stored.Status != StatusRunning {
		t.Errorf("stored Status = %q, want %q", stored.Status, StatusRunning)
	}
}

func TestMemoryDequeueRespectsContext(t *testing.T) {
	q := NewMemory()
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := q.Dequeue(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Dequeue() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestMemoryDequeueAfterClose(t *testing.T) {
	q := NewMemory()
	q.Close()

	if _, err := q.Dequeue(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Dequeue() error = %v, want ErrClosed", err)
	}
	if err := q.Enqueue(context.Background(), &Job{Target: "x"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Enqueue() error = %v, want ErrClosed", err)
	}
}

func TestMemoryUpdateAndGet(t *testing.T) {
	q := NewMemory()
	defer q.Close()

	job := &Job{Target: "example.com"}
	if err := q.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}

	job.Status = StatusCompleted
	job.Result = "fetched 1234 bytes"
	if err := q.Update(context.Background(), job); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	got, err := q.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Status != StatusCompleted || got.Result != "fetched 1234 bytes" {
		t.Errorf("Get() = %+v, want updated job", got)
	}

	if err := q.Update(context.Background(), &Job{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := q.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestPoolProcessesAllJobs(t *testing.T) {
	q := NewMemory()
	defer q.Close()

	const jobs = 10
	for i := 0; i < jobs; i++ {
		if err := q.Enqueue(context.Background(), &Job{Target: fmt.Sprintf("site%d.com", i)}); err != nil {
			t.Fatalf("Enqueue() error: %v", err)
		}
	}

	var mu sync.Mutex
	seen := make(map[string]bool)
	done := make(chan struct{})

	pool := NewPool(q, 3, func(ctx context.Context, job *Job) (string, error) {
		mu.Lock()
		seen[job.Target] = true
		n := len(seen)
		mu.Unlock()
		if n == jobs {
			close(done)
		}
		return "ok", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pool did not process all jobs in time")
	}
	cancel()
	pool.Wait()

	if len(seen) != jobs {
		t.Errorf("processed %d jobs, want %d", len(seen), jobs)
	}
}

func TestPoolRecordsOutcome(t *testing.T) {
	q := NewMemory()
	defer q.Close()

	good := &Job{Target: "good.com"}
	bad := &Job{Target: "bad.com"}
	for _, job := range []*Job{good, bad} {
		if err := q.Enqueue(context.Background(), job); err != nil {
			t.Fatalf("Enqueue() error: %v", err)
		}
	}

	var handled sync.WaitGroup
	handled.Add(2)
	pool := NewPool(q, 1, func(ctx context.Context, job *Job) (string, error) {
		defer handled.Done()
		if job.Target == "bad.com" {
			return "", errors.New("fetch failed")
		}
		return "saved", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	handled.Wait()

	// Let the worker record the second job's outcome before stopping.
	deadline := time.Now().Add(2 * time.Second)
	for {
		b, err := q.Get(context.Background(), bad.ID)
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if b.Status == StatusFailed || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	pool.Wait()

	g, err := q.Get(context.Background(), good.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if g.Status != StatusCompleted || g.Result != "saved" {
		t.Errorf("good job = %+v, want completed with result", g)
	}

	b, err := q.Get(context.Background(), bad.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if b.Status != StatusFailed || b.Error != "fetch failed" {
		t.Errorf("bad job = %+v, want failed with error", b)
	}
}

func TestPoolStopsOnCancel(t *testing.T) {
	q := NewMemory()
	defer q.Close()

	pool := NewPool(q, 2, func(ctx context.Context, job *Job) (string, error) {
		return "", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	cancel()

	finished := make(chan struct{})
	go func() {
		pool.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop after context cancellation")
	}
}
