package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/thpox/caltimist/internal/app"
	"github.com/thpox/caltimist/internal/config"
	"github.com/thpox/caltimist/internal/fetch"
	"github.com/thpox/caltimist/internal/server"
	caltimistsdk "github.com/thpox/caltimist/sdk/go"
)

const sampleICS = "BEGIN:VCALENDAR\r\n" +
	"BEGIN:VEVENT\r\n" +
	"SUMMARY:apollo\r\n" +
	"LOCATION:HQ\r\n" +
	"DTSTART:20230703T090000Z\r\n" +
	"DTEND:20230703T170000Z\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

// Smoke check: serve a canned calendar, run the API in front of it,
// and fetch a report through the SDK.
func main() {
	cal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleICS))
	}))
	defer cal.Close()

	cfg := &config.Config{
		Users: []config.User{
			{Name: "tester", Cal: cal.URL, Vacation: 30, MonthHours: 160},
		},
	}
	runner := &app.Runner{Config: cfg, Fetch: fetch.New(nil, "", "", nil)}

	jwtSecret := "test-secret"
	h, err := server.New(server.Config{Runner: runner, BasePath: "/v0", Auth: server.AuthConfig{JWTSecret: jwtSecret}})
	if err != nil {
		panic(err)
	}
	ts := httptest.NewServer(h)
	defer ts.Close()

	token, err := server.SignToken(jwtSecret, "tester")
	if err != nil {
		panic(err)
	}
	c := caltimistsdk.New(ts.URL, token)
	if err := c.Health(context.Background()); err != nil {
		panic(err)
	}
	html, err := c.Report(context.Background(), 2023, 7)
	if err != nil {
		panic(err)
	}
	fmt.Printf("report bytes=%d\n%s\n", len(html), html)
}
