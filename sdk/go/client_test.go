package caltimistsdk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v0/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/v0/report", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token123" {
			http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("y") != "2023" || r.URL.Query().Get("m") != "7" {
			http.Error(w, `{"error":"bad window"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<table><tr><td>08,00h</td></tr></table>"))
	})
	return httptest.NewServer(mux)
}

func TestHealth(t *testing.T) {
	srv := newFakeAPI(t)
	defer srv.Close()

	c := New(srv.URL, "")
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestReport(t *testing.T) {
	srv := newFakeAPI(t)
	defer srv.Close()

	c := New(srv.URL, "token123")
	html, err := c.Report(context.Background(), 2023, 7)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(html, "08,00h") {
		t.Fatalf("unexpected report body %q", html)
	}
}

func TestReportUnauthorized(t *testing.T) {
	srv := newFakeAPI(t)
	defer srv.Close()

	c := New(srv.URL, "wrong")
	_, err := c.Report(context.Background(), 2023, 7)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
}
