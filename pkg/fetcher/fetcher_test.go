package fetcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mtechzilla/sitetune/pkg/caching"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetch(t *testing.T) {
	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			io.WriteString(w, "<html><title>ok</title></html>")
		case "/latin1":
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			w.Write([]byte("<p>caf\xe9</p>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(WithTimeout(5*time.Second), WithLogger(quietLogger()))

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"ok", "/ok", "<html><title>ok</title></html>", false},
		{"decodes charset", "/latin1", "<p>café</p>", false},
		{"not found", "/missing", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Fetch(context.Background(), srv.URL+tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Fetch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Fetch() = %q, want %q", got, tt.want)
			}
			if ua, _ := gotUA.Load().(string); ua != UserAgent {
				t.Errorf("User-Agent = %q, want %q", ua, UserAgent)
			}
		})
	}
}

func TestFetch_Robots(t *testing.T) {
	var robotsHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsHits.Add(1)
			io.WriteString(w, "User-agent: *\nDisallow: /private\n")
			return
		}
		io.WriteString(w, "page")
	}))
	defer srv.Close()

	f := NewHTTPFetcher(WithRobots(true), WithLogger(quietLogger()))

	if _, err := f.Fetch(context.Background(), srv.URL+"/private/page"); !errors.Is(err, ErrDisallowed) {
		t.Errorf("Fetch() disallowed path error = %v, want ErrDisallowed", err)
	}
	got, err := f.Fetch(context.Background(), srv.URL+"/public")
	if err != nil {
		t.Fatalf("Fetch() allowed path error = %v", err)
	}
	if got != "page" {
		t.Errorf("Fetch() = %q, want %q", got, "page")
	}
	if n := robotsHits.Load(); n != 1 {
		t.Errorf("robots.txt fetched %d times, want 1", n)
	}
}

func TestFetch_RobotsMissingAllowsAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "page")
	}))
	defer srv.Close()

	f := NewHTTPFetcher(WithRobots(true), WithLogger(quietLogger()))
	if _, err := f.Fetch(context.Background(), srv.URL+"/anything"); err != nil {
		t.Errorf("Fetch() error = %v", err)
	}
}

func TestFetch_Cache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		io.WriteString(w, "cached body")
	}))
	defer srv.Close()

	cache, err := caching.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	f := NewHTTPFetcher(WithCache(cache), WithLogger(quietLogger()))

	for i := 0; i < 3; i++ {
		got, err := f.Fetch(context.Background(), srv.URL+"/page")
		if err != nil {
			t.Fatalf("Fetch() #%d error = %v", i, err)
		}
		if !strings.Contains(got, "cached body") {
			t.Errorf("Fetch() #%d = %q", i, got)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
}
