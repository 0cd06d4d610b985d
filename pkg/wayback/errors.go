package wayback

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidSnapshot is returned when content is requested for a snapshot
	// missing its timestamp or original URL. No network call is made.
	ErrInvalidSnapshot = errors.New("snapshot missing timestamp or original URL")

	// ErrNetwork is returned for transport failures (connection errors,
	// interrupted reads). The underlying cause is included in the message.
	ErrNetwork = errors.New("network error")

	// ErrNoSnapshots is returned by Latest when the index has no captures
	// for the target.
	ErrNoSnapshots = errors.New("no snapshots found")
)

// TimeoutError indicates a request did not complete within the configured
// timeout. The in-flight request is cancelled before this is returned.
type TimeoutError struct {
	Limit time.Duration // the configured per-request timeout
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("archive request timed out after %s", e.Limit)
}

// RateLimitError indicates the archive answered 429 on every attempt until
// the retry budget was exhausted.
type RateLimitError struct {
	Retries int // retries performed after the initial attempt
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by archive after %d retries", e.Retries)
}

// StatusError indicates a non-success HTTP status from the archive.
// A Code of 0 means the request produced no response at all.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	if e.Code == 0 {
		return "archive request failed with unknown status"
	}
	return fmt.Sprintf("archive request failed with status %d", e.Code)
}
