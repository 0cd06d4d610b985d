// Package store persists snapshots the user chose to keep.
//
// A Record is one saved capture: where it came from, when it was archived,
// and the fetched HTML. Stores are written to only on explicit user action
// (fetch --save, bulk --save, the API's job worker); they are never
// consulted before a fetch, so every fetch remains fresh.
//
// Three backends implement the Store interface:
//   - [SQLite]: the default for CLI use, a single file database
//   - [Memory]: for tests and throwaway sessions
//   - [Mongo]: for server deployments sharing a library across instances
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no record exists for the requested ID.
var ErrNotFound = errors.New("record not found")

// Record is one saved snapshot.
type Record struct {
	ID          string    `json:"id" bson:"_id"`
	Target      string    `json:"target" bson:"target"`
	Timestamp   string    `json:"timestamp" bson:"timestamp"`
	OriginalURL string    `json:"original_url" bson:"original_url"`
	SnapshotURL string    `json:"snapshot_url" bson:"snapshot_url"`
	StatusCode  int       `json:"status_code" bson:"status_code"`
	Title       string    `json:"title,omitempty" bson:"title,omitempty"`
	HTML        string    `json:"html,omitempty" bson:"html,omitempty"`
	Length      int       `json:"length" bson:"length"`
	FetchedAt   time.Time `json:"fetched_at" bson:"fetched_at"`
}

// Filter narrows a List call. The zero value lists everything.
type Filter struct {
	Target string // exact match on the normalized target
	Limit  int    // maximum records returned; 0 means no limit
}

// Store is the interface for snapshot library backends.
//
// List returns records newest-first with their HTML omitted; Get returns
// the full record including the body. Save assigns an ID and FetchedAt
// when the record carries none.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, f Filter) ([]*Record, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// summary returns a copy of rec without its HTML body, for List results.
func summary(rec *Record) *Record {
	s := *rec
	s.HTML = ""
	return &s
}
