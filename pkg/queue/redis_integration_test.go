//go:build integration

package queue

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

// Requires a running Redis. Set WAYMARK_TEST_REDIS_ADDR to override the
// default localhost instance:
//
//	go test -tags integration ./pkg/queue/
func newTestRedis(t *testing.T) *Redis {
	t.Helper()

	addr := os.Getenv("WAYMARK_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r, err := NewRedis(ctx, addr)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() {
		r.rdb.Del(context.Background(), redisReadyKey)
		r.Close()
	})
	return r
}

func TestRedisRoundTrip(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	job := &Job{Target: "example.com"}
	if err := r.Enqueue(ctx, job); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}
	if job.ID == "" || job.Status != StatusPending {
		t.Fatalf("Enqueue() bookkeeping missing: %+v", job)
	}

	got, err := r.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue() error: %v", err)
	}
	if got.ID != job.ID || got.Status != StatusRunning {
		t.Errorf("Dequeue() = %+v, want running job %s", got, job.ID)
	}

	got.Status = StatusCompleted
	got.Result = "done"
	if err := r.Update(ctx, got); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	final, err := r.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if final.Status != StatusCompleted || final.Result != "done" {
		t.Errorf("Get() = %+v, want completed job", final)
	}
}

func TestRedisDequeueRespectsContext(t *testing.T) {
	r := newTestRedis(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if _, err := r.Dequeue(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Dequeue() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestRedisGetMissing(t *testing.T) {
	r := newTestRedis(t)

	if _, err := r.Get(context.Background(), "no-such-job"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}
