// Package server exposes the report engine over HTTP. The
// authenticated subject takes the place of the calendar user, so every
// request reports on the caller's own calendar.
package server

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/thpox/caltimist/internal/app"
	"github.com/thpox/caltimist/internal/report"
)

// Config for the HTTP API handler.
type Config struct {
	Runner   *app.Runner
	BasePath string
	Auth     AuthConfig
	Logger   *log.Logger
}

func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

// New returns an HTTP handler exposing the Caltimist API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	router := chi.NewRouter()
	router.Use(requestLogger(cfg.logger()))
	router.Use(newAuthMiddleware(basePath, cfg.Auth))

	hcfg := huma.DefaultConfig("Caltimist API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerReport(group, cfg.Runner)

	return router, nil
}

// requestLogger tags every request with an id and writes one access
// log line.
func requestLogger(l *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			w.Header().Set("X-Request-Id", id)
			l.Printf("%s %s %s", id, r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

type reportOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

func registerReport(api huma.API, runner *app.Runner) {
	huma.Register(api, huma.Operation{
		OperationID: "report",
		Method:      http.MethodGet,
		Path:        "/report",
		Summary:     "Render the caller's work-hour report",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusBadGateway,
		},
	}, func(ctx context.Context, input *struct {
		Year  int `query:"y" default:"-1" doc:"Report year, -1 for the current one"`
		Month int `query:"m" default:"-1" doc:"Report month, -1 for the current one, 0 for the whole year"`
	}) (*reportOutput, error) {
		user, authErr := userFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		opts := app.Options{
			Year:  input.Year,
			Month: input.Month,
			User:  user,
		}
		if err := opts.Validate(); err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		var buf bytes.Buffer
		renderer, err := report.New("html", &buf)
		if err != nil {
			return nil, huma.Error500InternalServerError(err.Error())
		}
		if err := runner.Report(ctx, opts, renderer); err != nil {
			return nil, huma.Error502BadGateway("report failed", err)
		}
		return &reportOutput{
			ContentType: "text/html; charset=utf-8",
			Body:        buf.Bytes(),
		}, nil
	})
}
