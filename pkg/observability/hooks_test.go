package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Fetch hooks
	f := NoopFetchHooks{}
	f.OnStart(ctx, "index", "example.com")
	f.OnRetryWait(ctx, "index", 0, 2*time.Second)
	f.OnDone(ctx, "index", time.Second, nil)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "web.archive.org", "/cdx/search/cdx")
	h.OnResponse(ctx, "GET", "web.archive.org", "/cdx/search/cdx", 200, time.Second)
	h.OnError(ctx, "GET", "web.archive.org", "/cdx/search/cdx", nil)

	// Store hooks
	s := NoopStoreHooks{}
	s.OnSave(ctx, "sqlite", 1024)
	s.OnDelete(ctx, "sqlite")
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Fetch().(NoopFetchHooks); !ok {
		t.Error("Fetch() should return NoopFetchHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}

	// Set custom hooks
	customFetch := &testFetchHooks{}
	SetFetchHooks(customFetch)
	if Fetch() != customFetch {
		t.Error("SetFetchHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Fetch().(NoopFetchHooks); !ok {
		t.Error("Reset() should restore NoopFetchHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testFetchHooks{}
	SetFetchHooks(custom)

	// Setting nil should be ignored
	SetFetchHooks(nil)

	if Fetch() != custom {
		t.Error("SetFetchHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testFetchHooks struct{ NoopFetchHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
type testStoreHooks struct{ NoopStoreHooks }
