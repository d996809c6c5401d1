// Package extractor turns raw HTML into a PageSummary.
package extractor

import (
	"bufio"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/mtechzilla/sitetune/models"
)

const (
	MinTextLength = 3
	MaxTextLength = 200

	MaxHeadings   = 10
	MaxParagraphs = 15
	MaxListItems  = 20
)

// Boilerplate selectors, removed in order before any text is read.
var removeSelectors = []string{
	"script, style, nav, header, footer",
	`[class*="cookie"], [class*="popup"], [class*="ad"]`,
	"button, .btn",
}

type Extractor struct{}

// Extract strips boilerplate nodes from html and collects the title, meta
// description, headings, paragraphs and list items of the page.
func (e *Extractor) Extract(html string, target models.URLTarget) (*models.PageSummary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	for _, sel := range removeSelectors {
		doc.Find(sel).Remove()
	}

	title := normalizeText(doc.Find("title").First().Text())
	if title == "" {
		title = readableTitle(html, target.URL)
	}
	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")

	return &models.PageSummary{
		URL:             target.URL,
		ContentType:     target.ContentType,
		Title:           title,
		MetaDescription: strings.TrimSpace(description),
		Headings:        collectText(doc, "h1, h2, h3, h4", MaxHeadings),
		Paragraphs:      collectText(doc, "p", MaxParagraphs),
		ListItems:       collectText(doc, "ul, li, ol", MaxListItems),
	}, nil
}

// collectText returns up to limit texts of the matched elements, in document
// order, that pass KeepText.
func collectText(doc *goquery.Document, selector string, limit int) []string {
	texts := []string{}
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := normalizeText(s.Text())
		if KeepText(text) {
			texts = append(texts, text)
		}
		return len(texts) < limit
	})
	return texts
}

// KeepText reports whether text is within the accepted length range.
func KeepText(text string) bool {
	n := utf8.RuneCountInString(text)
	return n >= MinTextLength && n <= MaxTextLength
}

// readableTitle asks go-readability for a title when the page has no <title>.
func readableTitle(html, rawURL string) string {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err != nil {
		return ""
	}
	return normalizeText(article.Title)
}

// normalizeText trims every line of input and joins the non-empty ones with
// a single space.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
