package models

import "strings"

// URLTarget is one entry of the job file's url list.
type URLTarget struct {
	URL         string `yaml:"url" json:"url"`
	ContentType string `yaml:"content_type" json:"content_type"`
}

// PageSummary represents the textual content extracted from a single web page.
type PageSummary struct {
	URL             string   `json:"url" yaml:"url"`
	ContentType     string   `json:"content_type" yaml:"content_type"`
	Title           string   `json:"title" yaml:"title"`
	MetaDescription string   `json:"meta_description" yaml:"meta_description"`
	Headings        []string `json:"headings" yaml:"headings"`
	Paragraphs      []string `json:"paragraphs" yaml:"paragraphs"`
	ListItems       []string `json:"list_items" yaml:"list_items"`
}

// ToPlainText concatenates the readable text of the summary, one entry per line.
func (p *PageSummary) ToPlainText() string {
	var sb strings.Builder

	for _, s := range []string{p.Title, p.MetaDescription} {
		if s != "" {
			sb.WriteString(s)
			sb.WriteString("\n")
		}
	}
	for _, group := range [][]string{p.Headings, p.Paragraphs, p.ListItems} {
		for _, s := range group {
			sb.WriteString(s)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// PageStatus is the outcome of fetching and extracting a single URL.
type PageStatus string

const (
	PageStatusOK     PageStatus = "ok"
	PageStatusFailed PageStatus = "failed"
)

// PageResult records what happened to one URL during a scrape run.
type PageResult struct {
	URL         string     `json:"url" yaml:"url"`
	ContentType string     `json:"content_type" yaml:"content_type"`
	Status      PageStatus `json:"status" yaml:"status"`
	Title       string     `json:"title,omitempty" yaml:"title,omitempty"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
}
