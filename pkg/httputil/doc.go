// Package httputil provides HTTP retry infrastructure for archive clients.
//
// # Overview
//
// The archive index and replay endpoints rate-limit aggressively. This
// package provides the bounded retry loop used around every archive
// request:
//
//   - [RetryableError]: marks an error as worth retrying
//   - [Retry]: bounded attempts with exponential backoff
//
// # Retry
//
// [Retry] re-runs an operation while it fails with a [RetryableError].
// The delay doubles after each failed attempt; any other error aborts the
// loop immediately:
//
//	err := httputil.Retry(ctx, 4, 2*time.Second, func() error {
//	    return doRequest()
//	})
//
// Waits are interruptible: if ctx is cancelled during a backoff sleep,
// Retry returns ctx.Err() without issuing further attempts.
//
// Callers decide what is retryable. The archive client wraps only HTTP 429
// responses, so server errors and timeouts surface on the first attempt.
package httputil
