// Package fetch downloads iCalendar documents over HTTP with basic
// auth and conditional requests backed by a local cache.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/thpox/caltimist/internal/cache"
)

// Client fetches calendar documents. Username and Password are the
// fallback credentials; a userinfo component embedded in the URL
// takes precedence. Cache may be nil, in which case every request is
// unconditional.
type Client struct {
	HTTP     *http.Client
	Cache    *cache.Store
	Username string
	Password string
	Log      *log.Logger
}

func New(cacheStore *cache.Store, username, password string, logger *log.Logger) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: 30 * time.Second},
		Cache:    cacheStore,
		Username: username,
		Password: password,
		Log:      logger,
	}
}

// Fetch retrieves rawURL and writes the document body to sink. When a
// cached copy exists the request carries If-None-Match and
// If-Modified-Since headers, and a 304 response replays the cached
// body instead.
func (c *Client) Fetch(ctx context.Context, rawURL string, sink io.Writer) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing calendar URL: %w", err)
	}

	user, pass := c.Username, c.Password
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
		u.User = nil
	}
	target := u.String()

	var cached cache.Entry
	var haveCached bool
	if c.Cache != nil {
		cached, haveCached, err = c.Cache.Get(ctx, target)
		if err != nil {
			return fmt.Errorf("reading calendar cache: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("building calendar request: %w", err)
	}
	if user != "" {
		req.SetBasicAuth(user, pass)
	}
	if haveCached {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", target, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading %s: %w", target, err)
		}
		if c.Cache != nil {
			entry := cache.Entry{
				URL:          target,
				ETag:         resp.Header.Get("Etag"),
				LastModified: resp.Header.Get("Last-Modified"),
				Body:         body,
			}
			if err := c.Cache.Put(ctx, entry); err != nil {
				return fmt.Errorf("caching %s: %w", target, err)
			}
		}
		if c.Log != nil {
			c.Log.Printf("fetched %s (%d bytes)", target, len(body))
		}
		_, err = sink.Write(body)
		return err
	case http.StatusNotModified:
		if !haveCached {
			return fmt.Errorf("fetching %s: 304 without cached copy", target)
		}
		if c.Log != nil {
			c.Log.Printf("cache hit for %s (%d bytes)", target, len(cached.Body))
		}
		_, err = sink.Write(cached.Body)
		return err
	default:
		return fmt.Errorf("fetching %s: unexpected status %s", target, resp.Status)
	}
}
