// Package fetcher downloads page HTML for extraction.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mtechzilla/sitetune/pkg/caching"
	"github.com/temoto/robotstxt"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/html/charset"
)

const UserAgent = "Mozilla/5.0 (compatible; AI-Training-Data-Scraper/1.0)"

var ErrDisallowed = errors.New("disallowed by robots.txt")

// Fetcher returns the HTML body of a page decoded as UTF-8.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type HTTPFetcher struct {
	client        *http.Client
	userAgent     string
	respectRobots bool
	cache         *caching.Cache
	logger        *slog.Logger

	// robots.txt groups by scheme://host. A nil group allows everything.
	robots map[string]*robotstxt.Group
}

var _ Fetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(options ...func(*HTTPFetcher)) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{
			Timeout:   300 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		userAgent: UserAgent,
		logger:    slog.Default(),
		robots:    map[string]*robotstxt.Group{},
	}
	for _, option := range options {
		option(f)
	}
	return f
}

func WithTimeout(d time.Duration) func(*HTTPFetcher) {
	return func(f *HTTPFetcher) {
		f.client.Timeout = d
	}
}

func WithRobots(respect bool) func(*HTTPFetcher) {
	return func(f *HTTPFetcher) {
		f.respectRobots = respect
	}
}

func WithCache(c *caching.Cache) func(*HTTPFetcher) {
	return func(f *HTTPFetcher) {
		f.cache = c
	}
}

func WithLogger(l *slog.Logger) func(*HTTPFetcher) {
	return func(f *HTTPFetcher) {
		f.logger = l
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if f.cache != nil {
		if body, ok := f.cache.Get(rawURL); ok {
			f.logger.Debug("Cache hit", "url", rawURL)
			return string(body), nil
		}
	}

	if f.respectRobots {
		allowed, err := f.allowed(ctx, rawURL)
		if err != nil {
			return "", err
		}
		if !allowed {
			return "", fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
	}

	body, err := f.get(ctx, rawURL)
	if err != nil {
		return "", err
	}

	if f.cache != nil {
		if err := f.cache.Set(rawURL, []byte(body)); err != nil {
			f.logger.Warn("Failed to cache page", "url", rawURL, "error", err)
		}
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch %s, status code: %d", rawURL, resp.StatusCode)
	}

	var r io.Reader = resp.Body
	if utf8Reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type")); err == nil {
		r = utf8Reader
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}

// allowed reports whether robots.txt of the URL's host permits the path.
// An unreachable or unparsable robots.txt allows everything.
func (f *HTTPFetcher) allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	origin := u.Scheme + "://" + u.Host

	group, ok := f.robots[origin]
	if !ok {
		group = f.loadRobots(ctx, origin)
		f.robots[origin] = group
	}
	if group == nil {
		return true, nil
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return group.Test(path), nil
}

func (f *HTTPFetcher) loadRobots(ctx context.Context, origin string) *robotstxt.Group {
	robotsURL := origin + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("Failed to load robots.txt, ignoring", "url", robotsURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		f.logger.Warn("Failed to parse robots.txt, ignoring", "url", robotsURL, "error", err)
		return nil
	}
	return data.FindGroup(f.userAgent)
}
