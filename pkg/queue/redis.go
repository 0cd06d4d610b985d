package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key layout.
const (
	redisReadyKey  = "waymark:jobs:ready" // list of job IDs awaiting a worker
	redisJobPrefix = "waymark:jobs:"      // per-job JSON document
	redisJobTTL    = 24 * time.Hour
)

// Redis is a shared Queue for server deployments: the API enqueues, any
// number of worker processes dequeue.
type Redis struct {
	rdb *redis.Client
}

// NewRedis connects to addr and verifies the connection with a ping.
func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

// Enqueue stores the job document and pushes its ID onto the ready list.
func (r *Redis) Enqueue(ctx context.Context, job *Job) error {
	prepare(job)

	if err := r.put(ctx, job); err != nil {
		return err
	}
	if err := r.rdb.RPush(ctx, redisReadyKey, job.ID).Err(); err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	return nil
}

// Dequeue blocks on the ready list until a job arrives or ctx is cancelled.
// The returned job has been moved to running.
func (r *Redis) Dequeue(ctx context.Context) (*Job, error) {
	for {
		res, err := r.rdb.BLPop(ctx, 0, redisReadyKey).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("dequeue job: %w", err)
		}
		// BLPop returns [key, value].
		job, err := r.Get(ctx, res[1])
		if errors.Is(err, ErrNotFound) {
			continue // expired between push and pop
		}
		if err != nil {
			return nil, err
		}

		job.Status = StatusRunning
		if err := r.Update(ctx, job); err != nil {
			return nil, err
		}
		return job, nil
	}
}

// Update rewrites the job document, or returns ErrNotFound.
func (r *Redis) Update(ctx context.Context, job *Job) error {
	exists, err := r.rdb.Exists(ctx, redisJobPrefix+job.ID).Result()
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}
	job.UpdatedAt = time.Now().UTC()
	return r.put(ctx, job)
}

// Get returns the job for id, or ErrNotFound.
func (r *Redis) Get(ctx context.Context, id string) (*Job, error) {
	data, err := r.rdb.Get(ctx, redisJobPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &job, nil
}

func (r *Redis) put(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := r.rdb.Set(ctx, redisJobPrefix+job.ID, data, redisJobTTL).Err(); err != nil {
		return fmt.Errorf("store job: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error { return r.rdb.Close() }
