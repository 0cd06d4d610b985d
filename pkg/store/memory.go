package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wbkit/waymark/pkg/observability"
)

// Memory is an in-memory Store for tests and throwaway sessions.
// Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*Record)}
}

// Save stores a copy of rec, assigning an ID and FetchedAt when missing.
func (m *Memory) Save(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = time.Now().UTC()
	}

	m.mu.Lock()
	cp := *rec
	m.records[rec.ID] = &cp
	m.mu.Unlock()

	observability.Store().OnSave(ctx, "memory", rec.Length)
	return nil
}

// Get returns the full record for id, or ErrNotFound.
func (m *Memory) Get(ctx context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// List returns matching records newest-first, HTML omitted.
func (m *Memory) List(ctx context.Context, f Filter) ([]*Record, error) {
	m.mu.RLock()
	out := make([]*Record, 0, len(m.records))
	for _, rec := range m.records {
		if f.Target != "" && rec.Target != f.Target {
			continue
		}
		out = append(out, summary(rec))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].FetchedAt.After(out[j].FetchedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Delete removes the record for id, or returns ErrNotFound.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.records[id]
	delete(m.records, id)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	observability.Store().OnDelete(ctx, "memory")
	return nil
}

// Close is a no-op for the memory backend.
func (m *Memory) Close() error { return nil }
