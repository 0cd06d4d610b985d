package wayback

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// newTestClient points a client at server with a fast retry schedule so
// backoff tests finish in milliseconds.
func newTestClient(server *httptest.Server, cfg Config) *Client {
	cfg.IndexURL = server.URL + "/cdx/search/cdx"
	cfg.WebURL = server.URL + "/web"
	cfg.HTTPClient = server.Client()
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Millisecond
	}
	return NewClient(cfg)
}

func TestSnapshotsDecodesIndexResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("url"); got != "example.com" {
			t.Errorf("url param = %q, want %q", got, "example.com")
		}
		if got := q.Get("output"); got != "json" {
			t.Errorf("output param = %q, want %q", got, "json")
		}
		if got := q.Get("filter"); got != "statuscode:200" {
			t.Errorf("filter param = %q, want %q", got, "statuscode:200")
		}
		if got := q.Get("limit"); got != "10" {
			t.Errorf("limit param = %q, want %q", got, "10")
		}
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("missing User-Agent header")
		}
		fmt.Fprint(w, `[["timestamp","original","mimetype","statuscode","digest","length"],
			["20200101000000","http://example.com","text/html","200","abc123","500"]]`)
	}))
	defer server.Close()

	client := newTestClient(server, Config{})
	snaps, err := client.Snapshots(context.Background(), "https://example.com/", SnapshotOptions{})
	if err != nil {
		t.Fatalf("Snapshots() error: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(snaps))
	}
	if snaps[0].Timestamp != "20200101000000" || snaps[0].OriginalURL != "http://example.com" {
		t.Errorf("unexpected snapshot: %+v", snaps[0])
	}
	if snaps[0].StatusCode == nil || *snaps[0].StatusCode != 200 {
		t.Errorf("StatusCode = %v, want 200", snaps[0].StatusCode)
	}
}

func TestSnapshotsAllStatusesDropsFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("filter") {
			t.Error("filter param should be absent with AllStatuses")
		}
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := newTestClient(server, Config{})
	if _, err := client.Snapshots(context.Background(), "example.com", SnapshotOptions{AllStatuses: true}); err != nil {
		t.Fatalf("Snapshots() error: %v", err)
	}
}

func TestSnapshotsEmptyIndexIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := newTestClient(server, Config{})
	snaps, err := client.Snapshots(context.Background(), "example.com", SnapshotOptions{})
	if err != nil {
		t.Fatalf("Snapshots() error: %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("got %d snapshots, want 0", len(snaps))
	}
}

func TestSnapshotsRateLimitExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server, Config{MaxRetries: 3})
	_, err := client.Snapshots(context.Background(), "example.com", SnapshotOptions{})

	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("error = %v, want *RateLimitError", err)
	}
	if rateErr.Retries != 3 {
		t.Errorf("Retries = %d, want 3", rateErr.Retries)
	}
	if got := attempts.Load(); got != 4 {
		t.Errorf("network attempts = %d, want maxRetries+1 = 4", got)
	}
}

func TestSnapshotsRecoversAfterRateLimit(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `[["timestamp","original"],["20200101000000","http://example.com"]]`)
	}))
	defer server.Close()

	client := newTestClient(server, Config{MaxRetries: 3})
	snaps, err := client.Snapshots(context.Background(), "example.com", SnapshotOptions{})
	if err != nil {
		t.Fatalf("Snapshots() error: %v", err)
	}
	if len(snaps) != 1 {
		t.Errorf("got %d snapshots, want 1", len(snaps))
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("network attempts = %d, want 3", got)
	}
}

func TestSnapshotsHTTPStatusError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server, Config{})
	_, err := client.Snapshots(context.Background(), "example.com", SnapshotOptions{})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusServiceUnavailable {
		t.Errorf("Code = %d, want %d", statusErr.Code, http.StatusServiceUnavailable)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("network attempts = %d, want 1 (non-429 failures are not retried)", got)
	}
}

func TestSnapshotsTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()

	timeout := 50 * time.Millisecond
	client := newTestClient(server, Config{Timeout: timeout})
	_, err := client.Snapshots(context.Background(), "example.com", SnapshotOptions{})

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("error = %v, want *TimeoutError", err)
	}
	if timeoutErr.Limit != timeout {
		t.Errorf("Limit = %s, want %s", timeoutErr.Limit, timeout)
	}
}

func TestSnapshotsCallerCancellation(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	client := newTestClient(server, Config{})
	_, err := client.Snapshots(ctx, "example.com", SnapshotOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestSnapshotsNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := newTestClient(server, Config{})
	_, err := client.Snapshots(context.Background(), "example.com", SnapshotOptions{})
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("error = %v, want ErrNetwork", err)
	}
}

func TestLatest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "-1" {
			t.Errorf("limit param = %q, want %q", got, "-1")
		}
		fmt.Fprint(w, `[["timestamp","original"],
			["20200101000000","http://example.com"],
			["20210101000000","http://example.com"]]`)
	}))
	defer server.Close()

	client := newTestClient(server, Config{})
	snap, err := client.Latest(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Latest() error: %v", err)
	}
	if snap.Timestamp != "20210101000000" {
		t.Errorf("Timestamp = %q, want newest capture", snap.Timestamp)
	}
}

func TestLatestNoSnapshots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := newTestClient(server, Config{})
	if _, err := client.Latest(context.Background(), "example.com"); !errors.Is(err, ErrNoSnapshots) {
		t.Fatalf("error = %v, want ErrNoSnapshots", err)
	}
}

func TestContent(t *testing.T) {
	const page = "<html><body>archived</body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/web/20200101000000/http://example.com" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if accept := r.Header.Get("Accept"); accept == "" {
			t.Error("missing Accept header")
		}
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	client := newTestClient(server, Config{})
	snap := Snapshot{Timestamp: "20200101000000", OriginalURL: "http://example.com"}

	content, err := client.Content(context.Background(), snap)
	if err != nil {
		t.Fatalf("Content() error: %v", err)
	}
	if content.HTML != page {
		t.Errorf("HTML = %q, want %q", content.HTML, page)
	}
	if content.Length != len(page) {
		t.Errorf("Length = %d, want %d", content.Length, len(page))
	}
	if content.URL != client.SnapshotURL(snap.Timestamp, snap.OriginalURL) {
		t.Errorf("URL = %q, want snapshot URL", content.URL)
	}
}

func TestContentInvalidSnapshotMakesNoRequest(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	client := newTestClient(server, Config{})

	for _, snap := range []Snapshot{
		{Timestamp: "", OriginalURL: "x"},
		{Timestamp: "20200101000000", OriginalURL: ""},
		{},
	} {
		if _, err := client.Content(context.Background(), snap); !errors.Is(err, ErrInvalidSnapshot) {
			t.Errorf("Content(%+v) error = %v, want ErrInvalidSnapshot", snap, err)
		}
	}
	if got := requests.Load(); got != 0 {
		t.Errorf("network requests = %d, want 0", got)
	}
}

func TestSnapshotURLEmbedsOriginalURL(t *testing.T) {
	client := NewClient(Config{WebURL: "https://archive.example/web"})

	got := client.SnapshotURL("20200101000000", "http://example.com/page")
	want := "https://archive.example/web/20200101000000/http://example.com/page"
	if got != want {
		t.Errorf("SnapshotURL = %q, want %q", got, want)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %s, want %s", cfg.Timeout, DefaultTimeout)
	}
	if cfg.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", cfg.MaxRetries, DefaultMaxRetries)
	}
	if cfg.RetryDelay != DefaultRetryDelay {
		t.Errorf("RetryDelay = %s, want %s", cfg.RetryDelay, DefaultRetryDelay)
	}
	if cfg.IndexURL != DefaultIndexURL || cfg.WebURL != DefaultWebURL {
		t.Error("endpoint defaults not applied")
	}

	disabled := Config{MaxRetries: -1}.withDefaults()
	if disabled.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0 when retries disabled", disabled.MaxRetries)
	}
}
