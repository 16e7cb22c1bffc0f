package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/thpox/caltimist/internal/app"
	"github.com/thpox/caltimist/internal/config"
	"github.com/thpox/caltimist/internal/fetch"
)

const testSecret = "test-secret"

func TestMain(m *testing.M) {
	time.Local = time.UTC
	os.Exit(m.Run())
}

const testICS = "BEGIN:VCALENDAR\r\n" +
	"BEGIN:VEVENT\r\n" +
	"SUMMARY:apollo\r\n" +
	"LOCATION:HQ\r\n" +
	"DTSTART:20230703T090000Z\r\n" +
	"DTEND:20230703T170000Z\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

type testServer struct {
	URL    string
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	cal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testICS))
	}))

	cfg := &config.Config{
		Users: []config.User{
			{Name: "alice", Cal: cal.URL, Vacation: 30, MonthHours: 160},
		},
	}
	runner := &app.Runner{Config: cfg, Fetch: fetch.New(nil, "", "", nil)}
	handler, err := New(Config{Runner: runner, BasePath: "/v0", Auth: AuthConfig{JWTSecret: testSecret}})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			cal.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

func get(t *testing.T, client *http.Client, url, token string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, string(data)
}

func TestHealthNeedsNoAuth(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	res, body := get(t, srv.Client(), srv.URL+"/v0/health", "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health status %d: %s", res.StatusCode, body)
	}
	if res.Header.Get("X-Request-Id") == "" {
		t.Fatal("missing request id header")
	}
}

func TestReportRequiresAuth(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	res, _ := get(t, srv.Client(), srv.URL+"/v0/report", "")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", res.StatusCode)
	}

	res, _ = get(t, srv.Client(), srv.URL+"/v0/report", "not-a-jwt")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token status %d, want 401", res.StatusCode)
	}
}

func TestReportForAuthenticatedUser(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	token, err := SignToken(testSecret, "alice")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	res, body := get(t, srv.Client(), srv.URL+"/v0/report?y=2023&m=7", token)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("report status %d: %s", res.StatusCode, body)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type %q", ct)
	}
	for _, want := range []string{"<table", "08,00h", "alice"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestReportUnknownSubject(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	token, err := SignToken(testSecret, "mallory")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	res, body := get(t, srv.Client(), srv.URL+"/v0/report?y=2023&m=7", token)
	if res.StatusCode != http.StatusBadGateway {
		t.Fatalf("status %d, want 502: %s", res.StatusCode, body)
	}
}

func TestReportRejectsBadWindow(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	token, err := SignToken(testSecret, "alice")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	res, body := get(t, srv.Client(), srv.URL+"/v0/report?y=2023&m=13", token)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400: %s", res.StatusCode, body)
	}
}
