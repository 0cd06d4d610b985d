package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/wbkit/waymark/pkg/errors"
	"github.com/wbkit/waymark/pkg/extract"
	"github.com/wbkit/waymark/pkg/queue"
	"github.com/wbkit/waymark/pkg/store"
	"github.com/wbkit/waymark/pkg/wayback"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/v1/snapshots?target=&limit=&all=
func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if err := apperrors.ValidateTarget(target); err != nil {
		s.respondError(w, r, err)
		return
	}

	limit := wayback.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid limit: %q", raw))
			return
		}
		limit = n
	}
	if err := apperrors.ValidateLimit(limit); err != nil {
		s.respondError(w, r, err)
		return
	}

	snaps, err := s.cfg.Client.Snapshots(r.Context(), target, wayback.SnapshotOptions{
		Limit:       limit,
		AllStatuses: r.URL.Query().Get("all") == "1",
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]any{
		"target":    wayback.NormalizeTarget(target),
		"snapshots": snaps,
	})
}

// GET /api/v1/content?target=&timestamp=&extract=&strip=
func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	target := q.Get("target")
	if err := apperrors.ValidateTarget(target); err != nil {
		s.respondError(w, r, err)
		return
	}
	timestamp := q.Get("timestamp")
	if timestamp != "" {
		if err := apperrors.ValidateTimestamp(timestamp); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	snap, err := s.cfg.Client.ResolveSnapshot(r.Context(), target, timestamp)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	content, err := s.cfg.Client.Content(r.Context(), *snap)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if q.Get("extract") == "1" {
		meta, err := extract.Metadata(content.HTML)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respond(w, http.StatusOK, map[string]any{
			"snapshot": snap,
			"metadata": meta,
		})
		return
	}

	if q.Get("strip") == "1" {
		stripped, err := extract.StripArchiveChrome(content.HTML)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		content = &wayback.Content{HTML: stripped, Length: len(stripped), URL: content.URL}
	}

	s.respond(w, http.StatusOK, map[string]any{
		"snapshot": snap,
		"content":  content,
	})
}

// GET /api/v1/library?target=&limit=
func (s *Server) handleLibraryList(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		s.respondError(w, r, apperrors.New(apperrors.ErrCodeUnsupported, "no library store configured"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid limit: %q", raw))
			return
		}
		limit = n
	}

	recs, err := s.cfg.Store.List(r.Context(), store.Filter{
		Target: r.URL.Query().Get("target"),
		Limit:  limit,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"records": recs})
}

// GET /api/v1/library/{id}
func (s *Server) handleLibraryGet(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		s.respondError(w, r, apperrors.New(apperrors.ErrCodeUnsupported, "no library store configured"))
		return
	}

	rec, err := s.cfg.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"record": rec})
}

// DELETE /api/v1/library/{id}
func (s *Server) handleLibraryDelete(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		s.respondError(w, r, apperrors.New(apperrors.ErrCodeUnsupported, "no library store configured"))
		return
	}

	if err := s.cfg.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/jobs with {"targets": ["example.com", ...]}
func (s *Server) handleJobCreate(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Queue == nil {
		s.respondError(w, r, apperrors.New(apperrors.ErrCodeUnsupported, "no job queue configured"))
		return
	}

	var req struct {
		Targets []string `json:"targets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	if len(req.Targets) == 0 {
		s.respondError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "no targets given"))
		return
	}
	for _, target := range req.Targets {
		if err := apperrors.ValidateTarget(target); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	jobs := make([]*queue.Job, 0, len(req.Targets))
	for _, target := range req.Targets {
		job := &queue.Job{Target: wayback.NormalizeTarget(target)}
		if err := s.cfg.Queue.Enqueue(r.Context(), job); err != nil {
			s.respondError(w, r, apperrors.Wrap(apperrors.ErrCodeQueue, err, "enqueue %s", target))
			return
		}
		jobs = append(jobs, job)
	}

	s.respond(w, http.StatusAccepted, map[string]any{"jobs": jobs})
}

// GET /api/v1/jobs/{id}
func (s *Server) handleJobGet(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Queue == nil {
		s.respondError(w, r, apperrors.New(apperrors.ErrCodeUnsupported, "no job queue configured"))
		return
	}

	job, err := s.cfg.Queue.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"job": job})
}
