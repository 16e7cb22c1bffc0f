package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thpox/caltimist/internal/cache"
)

const sampleBody = "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"

func TestFetchBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c := New(nil, "alice", "secret", nil)
	var buf bytes.Buffer
	if err := c.Fetch(context.Background(), srv.URL, &buf); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotUser != "alice" || gotPass != "secret" {
		t.Fatalf("credentials %q/%q", gotUser, gotPass)
	}
	if buf.String() != sampleBody {
		t.Fatalf("body %q", buf.String())
	}
}

func TestFetchURLCredentialsOverride(t *testing.T) {
	var gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _, _ = r.BasicAuth()
		w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c := New(nil, "alice", "secret", nil)
	u := "http://bob:hunter2@" + srv.Listener.Addr().String() + "/cal.ics"
	var buf bytes.Buffer
	if err := c.Fetch(context.Background(), u, &buf); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotUser != "bob" {
		t.Fatalf("expected URL credentials to win, got user %q", gotUser)
	}
}

func TestFetchConditionalReplay(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Etag", `"v1"`)
		w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	store, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer store.Close()

	c := New(store, "", "", nil)
	ctx := context.Background()

	var first bytes.Buffer
	if err := c.Fetch(ctx, srv.URL, &first); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	var second bytes.Buffer
	if err := c.Fetch(ctx, srv.URL, &second); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if hits != 2 {
		t.Fatalf("expected 2 requests, got %d", hits)
	}
	if first.String() != sampleBody || second.String() != sampleBody {
		t.Fatalf("body mismatch: %q / %q", first.String(), second.String())
	}
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(nil, "", "", nil)
	var buf bytes.Buffer
	if err := c.Fetch(context.Background(), srv.URL, &buf); err == nil {
		t.Fatal("expected error for 403 response")
	}
}
