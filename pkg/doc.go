// Package pkg provides the core libraries for Waymark web-archive retrieval.
//
// # Overview
//
// Waymark discovers and retrieves archived snapshots of web pages from the
// Internet Archive's Wayback Machine. The pkg directory is organized into
// five main areas:
//
//  1. [wayback] - Archive client (target normalization, CDX index queries, content retrieval)
//  2. [extract] - HTML post-processing (metadata extraction, archive chrome stripping)
//  3. [store] - Snapshot library persistence (memory, SQLite, MongoDB)
//  4. [queue] - Bulk job queue and worker pool (memory, Redis)
//  5. [httputil] - HTTP retry helpers shared by the clients
//
// # Architecture
//
// The typical data flow through Waymark:
//
//	Target ("example.com/page")
//	         ↓
//	    [wayback] package (normalize → CDX index → snapshot content)
//	         ↓
//	    [extract] package (strip replay chrome, extract metadata)
//	         ↓
//	    [store] package (persist to the snapshot library)
//
// # Quick Start
//
// Discover snapshots and retrieve the latest capture:
//
//	client, _ := wayback.NewClient(wayback.Config{})
//
//	snaps, _ := client.Snapshots(ctx, "example.com", wayback.SnapshotOptions{Limit: 10})
//	for _, s := range snaps {
//	    fmt.Println(s.Timestamp, s.OriginalURL)
//	}
//
//	snap, _ := client.Latest(ctx, "example.com")
//	content, _ := client.Content(ctx, snap)
//	meta := extract.Metadata(content.HTML)
//
// # Main Packages
//
// [wayback] - The archive client. Normalizes user-supplied targets into
// capture URLs, queries the CDX index for snapshot listings, and retrieves
// archived HTML with bounded retry on rate limiting and per-request timeouts.
//
// [extract] - HTML post-processing with goquery: page metadata (title,
// description, canonical URL) and removal of the replay toolbar and rewritten
// asset URLs injected by the archive.
//
// [store] - Snapshot library persistence behind a common Store interface.
// Memory for testing, SQLite for the CLI, MongoDB for server deployments.
//
// [queue] - Job queue interface with memory and Redis implementations plus a
// worker pool for bulk retrieval. Supports job lifecycle (pending, running,
// completed, failed).
//
// [httputil] - Bounded exponential backoff retry for HTTP operations.
//
// [errors] - Application-level error codes and user-facing messages.
//
// [observability] - Hook registry for instrumenting fetch, HTTP, and store
// events without coupling the libraries to a logging backend.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/wayback/...            # Specific package
//	go test -tags integration ./pkg/...  # Include integration tests (Redis, MongoDB)
//
// [wayback]: https://pkg.go.dev/github.com/wbkit/waymark/pkg/wayback
// [extract]: https://pkg.go.dev/github.com/wbkit/waymark/pkg/extract
// [store]: https://pkg.go.dev/github.com/wbkit/waymark/pkg/store
// [queue]: https://pkg.go.dev/github.com/wbkit/waymark/pkg/queue
// [httputil]: https://pkg.go.dev/github.com/wbkit/waymark/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/wbkit/waymark/pkg/errors
// [observability]: https://pkg.go.dev/github.com/wbkit/waymark/pkg/observability
package pkg
