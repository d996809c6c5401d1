package scrape

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mtechzilla/sitetune/models"
	"github.com/mtechzilla/sitetune/pkg/extractor"
	"github.com/mtechzilla/sitetune/pkg/generator"
)

type fakeFetcher map[string]string

func (f fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	html, ok := f[url]
	if !ok {
		return "", errors.New("failed to fetch " + url + ", status code: 404")
	}
	return html, nil
}

type fakeGenerator struct {
	pages   []*models.PageSummary
	count   int
	calls   int
	records []models.TrainingRecord
	err     error
}

func (g *fakeGenerator) Generate(ctx context.Context, pages []*models.PageSummary, count int) ([]models.TrainingRecord, error) {
	g.calls++
	g.pages = pages
	g.count = count
	return g.records, g.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPipeline_SkipsFailedPages(t *testing.T) {
	fetch := fakeFetcher{
		"https://example.com/":      "<html><head><title>Home</title></head><body><p>We build software.</p></body></html>",
		"https://example.com/about": "<html><head><title>About</title></head><body><h1>Our team</h1></body></html>",
	}
	record := models.NewTrainingRecord(generator.RecordSystemPrompt, "What do you build?", "Software.")
	gen := &fakeGenerator{records: []models.TrainingRecord{record}}

	p := &Pipeline{
		Fetcher:   fetch,
		Extractor: &extractor.Extractor{},
		Generator: gen,
		Logger:    quietLogger(),
	}
	targets := []models.URLTarget{
		{URL: "https://example.com/", ContentType: "general"},
		{URL: "https://example.com/gone", ContentType: "general"},
		{URL: "https://example.com/about", ContentType: "company"},
	}

	out, err := p.Run(context.Background(), targets, 25)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantPages := []models.PageResult{
		{URL: "https://example.com/", ContentType: "general", Status: models.PageStatusOK, Title: "Home"},
		{URL: "https://example.com/gone", ContentType: "general", Status: models.PageStatusFailed, Error: "failed to fetch https://example.com/gone, status code: 404"},
		{URL: "https://example.com/about", ContentType: "company", Status: models.PageStatusOK, Title: "About"},
	}
	if diff := cmp.Diff(wantPages, out.Pages); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
	if len(out.Summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(out.Summaries))
	}
	if gen.calls != 1 || gen.count != 25 || len(gen.pages) != 2 {
		t.Errorf("generator called %d times with count %d and %d pages", gen.calls, gen.count, len(gen.pages))
	}
	if out.Summaries[1].ContentType != "company" {
		t.Errorf("content type = %q, want company", out.Summaries[1].ContentType)
	}
	if diff := cmp.Diff([]models.TrainingRecord{record}, out.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_NoPages(t *testing.T) {
	gen := &fakeGenerator{}
	p := &Pipeline{
		Fetcher:   fakeFetcher{},
		Extractor: &extractor.Extractor{},
		Generator: gen,
		Logger:    quietLogger(),
	}

	out, err := p.Run(context.Background(), []models.URLTarget{{URL: "https://example.com/"}}, 10)
	if !errors.Is(err, generator.ErrNoPages) {
		t.Fatalf("Run() error = %v, want ErrNoPages", err)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
	if out == nil || len(out.Pages) != 1 || out.Pages[0].Status != models.PageStatusFailed {
		t.Errorf("unexpected outcome: %+v", out)
	}
}

func TestPipeline_GeneratorError(t *testing.T) {
	gen := &fakeGenerator{err: generator.ErrNoContent}
	p := &Pipeline{
		Fetcher:   fakeFetcher{"https://example.com/": "<p>Hello there</p>"},
		Extractor: &extractor.Extractor{},
		Generator: gen,
		Logger:    quietLogger(),
	}

	out, err := p.Run(context.Background(), []models.URLTarget{{URL: "https://example.com/"}}, 10)
	if !errors.Is(err, generator.ErrNoContent) {
		t.Fatalf("Run() error = %v, want ErrNoContent", err)
	}
	if len(out.Summaries) != 1 {
		t.Errorf("got %d summaries, want 1", len(out.Summaries))
	}
}

func TestPipeline_DelaysAfterEveryURL(t *testing.T) {
	var slept []time.Duration
	p := &Pipeline{
		Fetcher:   fakeFetcher{"https://example.com/": "<p>Hello there</p>"},
		Extractor: &extractor.Extractor{},
		Generator: &fakeGenerator{},
		Delay:     250 * time.Millisecond,
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
		Logger: quietLogger(),
	}
	targets := []models.URLTarget{
		{URL: "https://example.com/"},
		{URL: "https://example.com/gone"},
		{URL: "https://example.com/"},
	}

	if _, err := p.Run(context.Background(), targets, 5); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []time.Duration{250 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond}
	if diff := cmp.Diff(want, slept); diff != "" {
		t.Errorf("sleeps mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_NoDelay(t *testing.T) {
	calls := 0
	p := &Pipeline{
		Fetcher:   fakeFetcher{"https://example.com/": "<p>Hello there</p>"},
		Extractor: &extractor.Extractor{},
		Generator: &fakeGenerator{},
		Sleep: func(ctx context.Context, d time.Duration) error {
			calls++
			return nil
		},
		Logger: quietLogger(),
	}
	if _, err := p.Run(context.Background(), []models.URLTarget{{URL: "https://example.com/"}, {URL: "https://example.com/"}}, 5); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls != 0 {
		t.Errorf("slept %d times, want 0", calls)
	}
}

// slowFetcher records when each fetch starts and ends.
type slowFetcher struct {
	took   time.Duration
	mu     sync.Mutex
	starts []time.Time
	ends   []time.Time
}

func (f *slowFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	f.starts = append(f.starts, time.Now())
	f.mu.Unlock()
	time.Sleep(f.took)
	f.mu.Lock()
	f.ends = append(f.ends, time.Now())
	f.mu.Unlock()
	return "<p>Hello there</p>", nil
}

func TestPipeline_DelayCountsFromFetchEnd(t *testing.T) {
	const delay = 60 * time.Millisecond
	fetch := &slowFetcher{took: 2 * delay}
	p := &Pipeline{
		Fetcher:   fetch,
		Extractor: &extractor.Extractor{},
		Generator: &fakeGenerator{},
		Delay:     delay,
		Logger:    quietLogger(),
	}
	targets := []models.URLTarget{{URL: "https://example.com/a"}, {URL: "https://example.com/b"}, {URL: "https://example.com/c"}}

	if _, err := p.Run(context.Background(), targets, 5); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(fetch.starts) != 3 {
		t.Fatalf("got %d fetches, want 3", len(fetch.starts))
	}
	for i := 1; i < len(fetch.starts); i++ {
		if gap := fetch.starts[i].Sub(fetch.ends[i-1]); gap < delay {
			t.Errorf("gap between fetch %d and %d = %v, want at least %v", i, i+1, gap, delay)
		}
	}
}

func TestPipeline_CancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &Pipeline{
		Fetcher:   fakeFetcher{},
		Extractor: &extractor.Extractor{},
		Generator: &fakeGenerator{},
		Delay:     time.Hour,
		Logger:    quietLogger(),
	}
	out, err := p.Run(ctx, []models.URLTarget{{URL: "https://example.com/"}, {URL: "https://example.com/next"}}, 10)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(out.Pages) != 1 {
		t.Errorf("got %d pages, want 1 before the wait was cancelled", len(out.Pages))
	}
}
