package wayback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/wbkit/waymark/pkg/httputil"
	"github.com/wbkit/waymark/pkg/observability"
)

// Default endpoints and request policy. The archive applies a global rate
// limit, so the retry schedule (2s, 4s, 8s for the default budget) is
// deliberately conservative.
const (
	DefaultIndexURL   = "https://web.archive.org/cdx/search/cdx"
	DefaultWebURL     = "https://web.archive.org/web"
	DefaultTimeout    = 2 * time.Minute
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
	DefaultLimit      = 10

	defaultUserAgent = "waymark/1.0 (https://github.com/wbkit/waymark)"

	acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Operation names reported through observability hooks.
const (
	opIndex   = "index"
	opContent = "content"
)

// Config holds the client's request policy. The zero value is usable; every
// field falls back to the package default.
type Config struct {
	IndexURL   string        // capture index endpoint
	WebURL     string        // replay endpoint base
	UserAgent  string        // sent on every request
	Timeout    time.Duration // per-request budget, cancellation enforced
	MaxRetries int           // 429 retries after the initial attempt; -1 disables retries
	RetryDelay time.Duration // first backoff wait, doubled per retry
	HTTPClient *http.Client  // injectable transport, primarily for tests
}

func (c Config) withDefaults() Config {
	if c.IndexURL == "" {
		c.IndexURL = DefaultIndexURL
	}
	if c.WebURL == "" {
		c.WebURL = DefaultWebURL
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	} else if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	return c
}

// Client queries the archive's capture index and replay endpoints.
//
// Configuration is instance-held; there is no global state. All methods are
// safe for concurrent use: each call runs its own timeout and retry
// lifecycle with no coordination across calls.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates an archive client. Zero-value Config fields take the
// package defaults (public archive endpoints, 2 minute timeout, 3 retries).
func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{cfg: cfg, http: cfg.HTTPClient}
}

// SnapshotOptions controls an index query. The zero value requests the
// default row limit filtered to status-200 captures.
type SnapshotOptions struct {
	Limit       int  // maximum index rows; DefaultLimit when <= 0
	AllStatuses bool // include captures with any HTTP status
}

// Snapshots lists archived captures of target, oldest first.
//
// The target is normalized with [NormalizeTarget] before querying, so full
// URLs, bare domains, and trailing slashes all address the same captures.
//
// Returns:
//   - the decoded snapshots, in index order; rows missing a timestamp or
//     original URL are dropped
//   - an empty slice (not an error) when the target has no captures
//   - [*TimeoutError], [*RateLimitError], [*StatusError], or an
//     [ErrNetwork]-wrapped error on failure
//
// Safe for concurrent use.
func (c *Client) Snapshots(ctx context.Context, target string, opts SnapshotOptions) ([]Snapshot, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	body, err := c.do(ctx, opIndex, c.indexURL(target, strconv.Itoa(limit), opts.AllStatuses), "")
	if err != nil {
		return nil, err
	}
	return decodeSnapshots(body), nil
}

// Latest returns the newest capture of target, or [ErrNoSnapshots] when the
// index has none. Only status-200 captures are considered.
func (c *Client) Latest(ctx context.Context, target string) (*Snapshot, error) {
	// A negative limit asks the index for rows counted from the end, so
	// "-1" yields the most recent capture without paging through history.
	body, err := c.do(ctx, opIndex, c.indexURL(target, "-1", false), "")
	if err != nil {
		return nil, err
	}

	snaps := decodeSnapshots(body)
	if len(snaps) == 0 {
		return nil, ErrNoSnapshots
	}
	return &snaps[len(snaps)-1], nil
}

// ResolveSnapshot picks the capture to fetch for target. With an empty
// timestamp it queries the index for the newest capture; with one, it
// addresses the capture directly (the replay endpoint resolves timestamp
// prefixes to the nearest capture, no index round trip needed).
func (c *Client) ResolveSnapshot(ctx context.Context, target, timestamp string) (*Snapshot, error) {
	if timestamp == "" {
		return c.Latest(ctx, target)
	}
	return &Snapshot{Timestamp: timestamp, OriginalURL: CaptureURL(target)}, nil
}

// Content fetches the archived HTML for snap.
//
// The snapshot must carry both a timestamp and an original URL; otherwise
// [ErrInvalidSnapshot] is returned before any network activity. The request
// sends an HTML-preferring Accept header and follows the same
// timeout/retry policy as Snapshots.
//
// The returned Content is never nil when err is nil, and Content.Length
// always equals len(Content.HTML). Safe for concurrent use.
func (c *Client) Content(ctx context.Context, snap Snapshot) (*Content, error) {
	if !snap.Valid() {
		return nil, ErrInvalidSnapshot
	}

	snapshotURL := c.SnapshotURL(snap.Timestamp, snap.OriginalURL)
	body, err := c.do(ctx, opContent, snapshotURL, acceptHTML)
	if err != nil {
		return nil, err
	}

	html := string(body)
	return &Content{HTML: html, Length: len(html), URL: snapshotURL}, nil
}

// SnapshotURL constructs the replay URL for a capture. The original URL is
// embedded as-is, scheme included; replay paths address captures by the
// full original URL, not its host+path reduction.
func (c *Client) SnapshotURL(timestamp, originalURL string) string {
	return fmt.Sprintf("%s/%s/%s", c.cfg.WebURL, timestamp, originalURL)
}

func (c *Client) indexURL(target, limit string, allStatuses bool) string {
	q := url.Values{}
	q.Set("url", NormalizeTarget(target))
	q.Set("output", "json")
	if !allStatuses {
		q.Set("filter", "statuscode:200")
	}
	q.Set("limit", limit)
	return c.cfg.IndexURL + "?" + q.Encode()
}

// do runs one logical archive request: up to MaxRetries+1 attempts, retrying
// only 429 responses, with the backoff wait doubling per retry.
func (c *Client) do(ctx context.Context, op, rawurl, accept string) ([]byte, error) {
	observability.Fetch().OnStart(ctx, op, rawurl)
	start := time.Now()

	var body []byte
	attempt := 0
	err := httputil.Retry(ctx, c.cfg.MaxRetries+1, c.cfg.RetryDelay, func() error {
		b, err := c.attempt(ctx, rawurl, accept)
		if err != nil {
			if httputil.IsRetryable(err) && attempt < c.cfg.MaxRetries {
				observability.Fetch().OnRetryWait(ctx, op, attempt, c.cfg.RetryDelay<<attempt)
			}
			attempt++
			return err
		}
		body = b
		return nil
	})

	observability.Fetch().OnDone(ctx, op, time.Since(start), err)

	if err != nil {
		if httputil.IsRetryable(err) {
			return nil, &RateLimitError{Retries: c.cfg.MaxRetries}
		}
		return nil, err
	}
	return body, nil
}

// attempt issues a single request under its own timeout. The deferred
// cancel releases the timer on every path.
func (c *Client) attempt(ctx context.Context, rawurl, accept string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	observability.HTTP().OnRequest(ctx, http.MethodGet, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, req.URL.Host, req.URL.Path, err)
		return nil, c.transportError(err)
	}
	defer resp.Body.Close()

	observability.HTTP().OnResponse(ctx, http.MethodGet, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(err)
	}
	return body, nil
}

// transportError classifies a failed request or body read. Timeouts from
// the per-attempt deadline become TimeoutError carrying the configured
// duration; caller cancellation propagates untouched so it stays matchable
// with context.Canceled.
func (c *Client) transportError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &TimeoutError{Limit: c.cfg.Timeout}
	case errors.Is(err, context.Canceled):
		return context.Canceled
	default:
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
}

// checkStatus maps an HTTP status to the error taxonomy. Only 429 is
// retryable; every other failure surfaces immediately.
func checkStatus(code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return &httputil.RetryableError{Err: &StatusError{Code: code}}
	case code >= 200 && code < 300:
		return nil
	default:
		return &StatusError{Code: code}
	}
}
