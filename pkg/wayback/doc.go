// Package wayback provides an HTTP client for a public web-archive service.
//
// # Overview
//
// The archive exposes two endpoints this package wraps:
//
//   - The capture index (CDX API): given a URL or domain, returns metadata
//     rows describing when the page was captured and with what status.
//   - The replay endpoint: given a capture timestamp and the original URL,
//     returns the archived HTML as it was served at that time.
//
// # Client Pattern
//
//	client := wayback.NewClient(wayback.Config{})
//	snaps, err := client.Snapshots(ctx, "example.com", wayback.SnapshotOptions{Limit: 10})
//	content, err := client.Content(ctx, snaps[0])
//
// The client handles:
//   - Target normalization (scheme stripping, host+path reduction)
//   - Per-request timeouts with guaranteed cancellation
//   - Bounded exponential backoff on HTTP 429
//   - Index response decoding and row filtering
//
// # Error Semantics
//
// Failures are typed so callers can react precisely:
//
//   - [ErrInvalidSnapshot]: content requested for a snapshot missing its
//     timestamp or original URL; returned before any network activity.
//   - [TimeoutError]: a request exceeded the configured timeout.
//   - [RateLimitError]: the archive kept answering 429 until retries ran out.
//   - [StatusError]: any other non-success HTTP status.
//   - [ErrNetwork]: transport or read failures, wrapping the cause.
//
// An index response with no captures is not an error; Snapshots returns an
// empty slice.
//
// Every call owns an independent timeout/retry lifecycle; the client keeps
// no state between calls and is safe for concurrent use.
package wayback
