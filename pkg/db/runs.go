package db

import (
	"fmt"

	"github.com/mtechzilla/sitetune/models"
)

// InsertScrapeRun stores a run and its page results in one transaction.
func (db *DB) InsertScrapeRun(run *models.ScrapeRun) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO scrape_runs (run_id, model, pages_scraped, pages_failed, examples,
			prompt_tokens, completion_tokens, cost, output_file, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.Model, run.PagesScraped, run.PagesFailed, run.Examples,
		run.PromptTokens, run.CompletionTokens, run.Cost, run.OutputFile,
		formatTime(run.StartedAt), formatTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("failed to insert scrape run: %w", err)
	}

	for _, p := range run.Pages {
		_, err = tx.Exec(`
			INSERT INTO scrape_pages (run_id, url, content_type, status, title, error)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.RunID, p.URL, p.ContentType, string(p.Status), p.Title, p.Error)
		if err != nil {
			return fmt.Errorf("failed to insert scrape page %s: %w", p.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scrape run: %w", err)
	}
	return nil
}

// ListScrapeRuns returns the most recent runs first, without their pages.
func (db *DB) ListScrapeRuns(limit int) ([]models.ScrapeRun, error) {
	rows, err := db.Query(`
		SELECT run_id, model, pages_scraped, pages_failed, examples,
			prompt_tokens, completion_tokens, cost, COALESCE(output_file, ''),
			started_at, finished_at
		FROM scrape_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scrape runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ScrapeRun
	for rows.Next() {
		var r models.ScrapeRun
		var started, finished string
		if err := rows.Scan(&r.RunID, &r.Model, &r.PagesScraped, &r.PagesFailed, &r.Examples,
			&r.PromptTokens, &r.CompletionTokens, &r.Cost, &r.OutputFile,
			&started, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan scrape run: %w", err)
		}
		if r.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if r.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetScrapePages returns the page results of a run in insertion order.
func (db *DB) GetScrapePages(runID string) ([]models.PageResult, error) {
	rows, err := db.Query(`
		SELECT url, COALESCE(content_type, ''), status, COALESCE(title, ''), COALESCE(error, '')
		FROM scrape_pages
		WHERE run_id = ?
		ORDER BY page_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scrape pages: %w", err)
	}
	defer rows.Close()

	var pages []models.PageResult
	for rows.Next() {
		var p models.PageResult
		var status string
		if err := rows.Scan(&p.URL, &p.ContentType, &status, &p.Title, &p.Error); err != nil {
			return nil, fmt.Errorf("failed to scan scrape page: %w", err)
		}
		p.Status = models.PageStatus(status)
		pages = append(pages, p)
	}
	return pages, rows.Err()
}
