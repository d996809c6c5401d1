package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mtechzilla/sitetune/models"
	"github.com/mtechzilla/sitetune/pkg/fetcher"
	"github.com/mtechzilla/sitetune/pkg/generator"
)

type Extractor interface {
	Extract(html string, target models.URLTarget) (*models.PageSummary, error)
}

type Generator interface {
	Generate(ctx context.Context, pages []*models.PageSummary, count int) ([]models.TrainingRecord, error)
}

// Pipeline fetches and extracts every target in order, then generates
// training records from the pages it could read.
type Pipeline struct {
	Fetcher   fetcher.Fetcher
	Extractor Extractor
	Generator Generator
	// Delay is the pause after each URL, measured from when its fetch
	// finished. Zero disables it.
	Delay time.Duration
	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *slog.Logger
}

// Outcome is everything a run produced, including per-URL failures.
type Outcome struct {
	Summaries []*models.PageSummary
	Pages     []models.PageResult
	Records   []models.TrainingRecord
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run scrapes targets and generates count examples. A page that cannot be
// fetched or extracted is logged and skipped. The returned Outcome is
// non-nil even on error so callers can report what was scraped.
func (p *Pipeline) Run(ctx context.Context, targets []models.URLTarget, count int) (*Outcome, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	wait := p.Sleep
	if wait == nil {
		wait = sleep
	}
	out := &Outcome{}

	logger.Info("Starting scraper", "urls", len(targets))
	for _, target := range targets {
		summary, err := p.scrape(ctx, target)
		if err != nil {
			logger.Warn("Failed to scrape page", "url", target.URL, "error", err)
			out.Pages = append(out.Pages, models.PageResult{
				URL:         target.URL,
				ContentType: target.ContentType,
				Status:      models.PageStatusFailed,
				Error:       err.Error(),
			})
		} else {
			logger.Info("Scraped page", "url", target.URL, "title", summary.Title)
			out.Summaries = append(out.Summaries, summary)
			out.Pages = append(out.Pages, models.PageResult{
				URL:         target.URL,
				ContentType: target.ContentType,
				Status:      models.PageStatusOK,
				Title:       summary.Title,
			})
		}

		if p.Delay > 0 {
			if err := wait(ctx, p.Delay); err != nil {
				return out, fmt.Errorf("waiting after %s: %w", target.URL, err)
			}
		}
	}

	if len(out.Summaries) == 0 {
		return out, generator.ErrNoPages
	}

	records, err := p.Generator.Generate(ctx, out.Summaries, count)
	if err != nil {
		return out, err
	}
	out.Records = records
	logger.Info("Scrape finished", "pages", len(out.Summaries), "examples", len(records))
	return out, nil
}

func (p *Pipeline) scrape(ctx context.Context, target models.URLTarget) (*models.PageSummary, error) {
	html, err := p.Fetcher.Fetch(ctx, target.URL)
	if err != nil {
		return nil, err
	}
	return p.Extractor.Extract(html, target)
}
