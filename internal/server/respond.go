package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	apperrors "github.com/wbkit/waymark/pkg/errors"
	"github.com/wbkit/waymark/pkg/queue"
	"github.com/wbkit/waymark/pkg/store"
	"github.com/wbkit/waymark/pkg/wayback"
)

// envelope is the uniform JSON response shape.
type envelope struct {
	Data  any       `json:"data,omitempty"`
	Error *errorDoc `json:"error,omitempty"`
}

type errorDoc struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Data: data}); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

// respondError classifies err, logs it, and writes the error envelope.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := classify(err)
	status := statusFor(appErr.Code)

	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: &errorDoc{
		Code:    string(appErr.Code),
		Message: appErr.Message,
	}})
}

// classify maps transport and storage errors onto application error codes.
// Errors that already carry a code pass through unchanged.
func classify(err error) *apperrors.Error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var (
		timeoutErr *wayback.TimeoutError
		rateErr    *wayback.RateLimitError
		statusErr  *wayback.StatusError
	)
	switch {
	case errors.Is(err, wayback.ErrInvalidSnapshot):
		return apperrors.Wrap(apperrors.ErrCodeInvalidSnapshot, err, "invalid snapshot")
	case errors.Is(err, wayback.ErrNoSnapshots):
		return apperrors.Wrap(apperrors.ErrCodeSnapshotNotFound, err, "no snapshots found for target")
	case errors.As(err, &timeoutErr):
		return apperrors.Wrap(apperrors.ErrCodeTimeout, err, "archive request timed out after %s", timeoutErr.Limit)
	case errors.As(err, &rateErr):
		return apperrors.Wrap(apperrors.ErrCodeRateLimited, err, "rate limited by archive after %d retries", rateErr.Retries)
	case errors.As(err, &statusErr):
		return apperrors.Wrap(apperrors.ErrCodeUpstreamStatus, err, "archive answered status %d", statusErr.Code)
	case errors.Is(err, wayback.ErrNetwork):
		return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "archive unreachable")
	case errors.Is(err, store.ErrNotFound):
		return apperrors.Wrap(apperrors.ErrCodeRecordNotFound, err, "record not found")
	case errors.Is(err, queue.ErrNotFound):
		return apperrors.Wrap(apperrors.ErrCodeJobNotFound, err, "job not found")
	default:
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "internal error")
	}
}

// statusFor maps application error codes to HTTP statuses.
func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidTarget,
		apperrors.ErrCodeInvalidTimestamp, apperrors.ErrCodeInvalidSnapshot:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeSnapshotNotFound,
		apperrors.ErrCodeRecordNotFound, apperrors.ErrCodeJobNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeUpstreamStatus, apperrors.ErrCodeNetwork:
		return http.StatusBadGateway
	case apperrors.ErrCodeUnsupported:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// requestLogger logs one line per request with status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
