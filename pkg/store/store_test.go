package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// backends returns one of each non-network Store implementation, freshly
// created, so every test runs against both.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("NewSQLite() error: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func testRecord(target string) *Record {
	return &Record{
		Target:      target,
		Timestamp:   "20200101000000",
		OriginalURL: "http://" + target,
		SnapshotURL: "https://web.archive.org/web/20200101000000/http://" + target,
		StatusCode:  200,
		Title:       "Example Domain",
		HTML:        "<html><body>hello</body></html>",
		Length:      30,
	}
}

func TestStoreSaveAssignsIDAndTime(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec := testRecord("example.com")
			if err := s.Save(context.Background(), rec); err != nil {
				t.Fatalf("Save() error: %v", err)
			}
			if rec.ID == "" {
				t.Error("Save() did not assign an ID")
			}
			if rec.FetchedAt.IsZero() {
				t.Error("Save() did not assign FetchedAt")
			}
		})
	}
}

func TestStoreGetRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec := testRecord("example.com")
			if err := s.Save(context.Background(), rec); err != nil {
				t.Fatalf("Save() error: %v", err)
			}

			got, err := s.Get(context.Background(), rec.ID)
			if err != nil {
				t.Fatalf("Get() error: %v", err)
			}
			if got.Target != rec.Target || got.HTML != rec.HTML || got.Title != rec.Title {
				t.Errorf("Get() = %+v, want saved record", got)
			}
			if got.StatusCode != 200 {
				t.Errorf("StatusCode = %d, want 200", got.StatusCode)
			}
		})
	}
}

func TestStoreGetMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(context.Background(), "no-such-id"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreListNewestFirstWithoutHTML(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			for i, target := range []string{"a.com", "b.com", "c.com"} {
				rec := testRecord(target)
				rec.FetchedAt = base.Add(time.Duration(i) * time.Hour)
				if err := s.Save(context.Background(), rec); err != nil {
					t.Fatalf("Save() error: %v", err)
				}
			}

			recs, err := s.List(context.Background(), Filter{})
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			if len(recs) != 3 {
				t.Fatalf("List() returned %d records, want 3", len(recs))
			}
			if recs[0].Target != "c.com" || recs[2].Target != "a.com" {
				t.Errorf("List() order = %s, %s, %s; want newest first",
					recs[0].Target, recs[1].Target, recs[2].Target)
			}
			for _, rec := range recs {
				if rec.HTML != "" {
					t.Errorf("List() record %s includes HTML body", rec.ID)
				}
			}
		})
	}
}

func TestStoreListFilters(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, target := range []string{"a.com", "b.com", "a.com"} {
				if err := s.Save(context.Background(), testRecord(target)); err != nil {
					t.Fatalf("Save() error: %v", err)
				}
			}

			recs, err := s.List(context.Background(), Filter{Target: "a.com"})
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			if len(recs) != 2 {
				t.Errorf("List(target=a.com) returned %d records, want 2", len(recs))
			}

			recs, err = s.List(context.Background(), Filter{Limit: 1})
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			if len(recs) != 1 {
				t.Errorf("List(limit=1) returned %d records, want 1", len(recs))
			}
		})
	}
}

func TestStoreDelete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec := testRecord("example.com")
			if err := s.Save(context.Background(), rec); err != nil {
				t.Fatalf("Save() error: %v", err)
			}

			if err := s.Delete(context.Background(), rec.ID); err != nil {
				t.Fatalf("Delete() error: %v", err)
			}
			if _, err := s.Get(context.Background(), rec.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
			}
			if err := s.Delete(context.Background(), rec.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("second Delete() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestSQLiteReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite() error: %v", err)
	}
	rec := testRecord("example.com")
	if err := s.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	s.Close()

	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite() reopen error: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Get() after reopen error: %v", err)
	}
	if got.HTML != rec.HTML {
		t.Error("record did not survive reopen")
	}
}
