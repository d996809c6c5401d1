// Package manifest writes the human-readable report of a scrape run.
package manifest

import "github.com/mtechzilla/sitetune/pkg/analytics"

// Report summarises one scrape run: what was fetched, what failed, what
// the generation cost and what the pages are about.
type Report struct {
	RunID             string              `json:"run_id" yaml:"run_id"`
	GeneratedAt       string              `json:"generated_at" yaml:"generated_at"`
	Model             string              `json:"model" yaml:"model"`
	TotalURLs         int                 `json:"total_urls" yaml:"total_urls"`
	Successful        int                 `json:"successful" yaml:"successful"`
	Failed            int                 `json:"failed" yaml:"failed"`
	Examples          int                 `json:"examples" yaml:"examples"`
	PromptTokens      int64               `json:"prompt_tokens" yaml:"prompt_tokens"`
	CompletionTokens  int64               `json:"completion_tokens" yaml:"completion_tokens"`
	Cost              float64             `json:"cost" yaml:"cost"`
	OutputFile        string              `json:"output_file,omitempty" yaml:"output_file,omitempty"`
	Language          string              `json:"language,omitempty" yaml:"language,omitempty"`
	AggregateKeywords []analytics.Keyword `json:"aggregate_keywords" yaml:"aggregate_keywords"`
	Results           []PageReport        `json:"results" yaml:"results"`
}

// PageReport is the report entry of a single URL.
type PageReport struct {
	URL         string              `json:"url" yaml:"url"`
	ContentType string              `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Status      string              `json:"status" yaml:"status"` // "ok" or "failed"
	Title       string              `json:"title,omitempty" yaml:"title,omitempty"`
	Error       string              `json:"error,omitempty" yaml:"error,omitempty"`
	WordCount   int                 `json:"word_count,omitempty" yaml:"word_count,omitempty"`
	Language    string              `json:"language,omitempty" yaml:"language,omitempty"`
	TopKeywords []analytics.Keyword `json:"top_keywords,omitempty" yaml:"top_keywords,omitempty"`
}
