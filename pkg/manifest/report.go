package manifest

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/mtechzilla/sitetune/models"
	"github.com/mtechzilla/sitetune/pkg/analytics"
	"github.com/mtechzilla/sitetune/pkg/storage"
	"gopkg.in/yaml.v3"
)

const (
	aggregateKeywordCount = 25
	pageKeywordCount      = 10
)

// Detector guesses the language of a text; an empty result means unknown.
type Detector interface {
	Detect(text string) string
}

// Build assembles the report of run from the extracted summaries. Summaries
// are matched to page results by URL.
func Build(run *models.ScrapeRun, summaries []*models.PageSummary, detector Detector) *Report {
	report := &Report{
		RunID:            run.RunID,
		GeneratedAt:      run.FinishedAt.UTC().Format(time.RFC3339),
		Model:            run.Model,
		TotalURLs:        len(run.Pages),
		Examples:         run.Examples,
		PromptTokens:     run.PromptTokens,
		CompletionTokens: run.CompletionTokens,
		Cost:             run.Cost,
		OutputFile:       run.OutputFile,
	}

	byURL := make(map[string]*models.PageSummary, len(summaries))
	for _, s := range summaries {
		byURL[s.URL] = s
	}

	var allText strings.Builder
	var counts []map[string]int
	for _, page := range run.Pages {
		entry := PageReport{
			URL:         page.URL,
			ContentType: page.ContentType,
			Status:      string(page.Status),
			Title:       page.Title,
			Error:       page.Error,
		}
		if page.Status == models.PageStatusFailed {
			report.Failed++
			report.Results = append(report.Results, entry)
			continue
		}
		report.Successful++

		if summary, ok := byURL[page.URL]; ok {
			text := summary.ToPlainText()
			freq := analytics.WordFrequency(text)
			counts = append(counts, freq)
			entry.WordCount = len(strings.Fields(text))
			entry.TopKeywords = analytics.TopKeywords(freq, pageKeywordCount)
			if detector != nil {
				entry.Language = detector.Detect(text)
			}
			allText.WriteString(text)
		}
		report.Results = append(report.Results, entry)
	}

	report.AggregateKeywords = analytics.TopKeywords(analytics.Merge(counts...), aggregateKeywordCount)
	if detector != nil {
		report.Language = detector.Detect(allText.String())
	}
	return report
}

// FileName derives a report file name from the first URL of the run and
// its finish date, for example "example-com-2025-03-01-1a2b3c4d.yaml".
func FileName(report *Report, format string) string {
	site := "scrape"
	if len(report.Results) > 0 {
		if u, err := url.Parse(report.Results[0].URL); err == nil && u.Host != "" {
			site = u.Host
		}
	}
	date := report.GeneratedAt
	if len(date) >= len("2006-01-02") {
		date = date[:len("2006-01-02")]
	}
	id := report.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	return slug.Make(strings.Join([]string{site, date, id}, " ")) + "." + format
}

// Write stores the report under dir as YAML or JSON and returns its path.
func Write(report *Report, dir, format string, s *storage.Storage) (string, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case "yaml", "yml":
		format = "yaml"
		data, err = yaml.Marshal(report)
	case "json":
		data, err = json.MarshalIndent(report, "", "  ")
	default:
		return "", fmt.Errorf("unsupported report format %q", format)
	}
	if err != nil {
		return "", fmt.Errorf("error marshalling report: %w", err)
	}

	path := filepath.Join(dir, FileName(report, format))
	if err := s.SaveFile(path, data); err != nil {
		return "", fmt.Errorf("error saving report: %w", err)
	}
	return path, nil
}
