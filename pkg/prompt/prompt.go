// Package prompt renders page summaries into the text sent to the
// completion API.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mtechzilla/sitetune/models"
)

// PageSeparator separates page blocks inside the prompt.
var PageSeparator = "\n" + strings.Repeat("=", 50) + "\n"

const SystemPrompt = "You are an expert at creating training data for AI chatbots. Always return valid JSON. " +
	"Output your final JSON response directly without any reasoning or explanation."

// SchemaName is the name the response schema is registered under.
const SchemaName = "training_data_generation"

// FormatPage renders a single page summary as a plain-text block.
func FormatPage(p *models.PageSummary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "URL: %s\n", p.URL)
	fmt.Fprintf(&sb, "Content Type: %s\n", p.ContentType)
	fmt.Fprintf(&sb, "Title: %s\n", p.Title)

	if p.MetaDescription != "" {
		fmt.Fprintf(&sb, "Description: %s\n", p.MetaDescription)
	}
	if len(p.Headings) > 0 {
		fmt.Fprintf(&sb, "Headings: \n%s\n\n", bullets(p.Headings))
	}
	if len(p.Paragraphs) > 0 {
		fmt.Fprintf(&sb, "Content: \n%s\n\n", strings.Join(p.Paragraphs, "\n\n"))
	}
	if len(p.ListItems) > 0 {
		fmt.Fprintf(&sb, "Features/Services: \n%s\n\n", bullets(p.ListItems))
	}

	return sb.String()
}

// JoinPages formats every page and joins the blocks with PageSeparator.
func JoinPages(pages []*models.PageSummary) string {
	blocks := make([]string, len(pages))
	for i, p := range pages {
		blocks[i] = FormatPage(p)
	}
	return strings.Join(blocks, PageSeparator)
}

// Build returns the user prompt asking for count question/answer pairs
// about the given pages.
func Build(pages []*models.PageSummary, count int) string {
	return fmt.Sprintf(userPromptTemplate, count, JoinPages(pages))
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

const userPromptTemplate = `Based on the website content below, generate %d diverse, natural Q&A pairs for training a customer service chatbot.

Website Content:
%s

Create varied questions a real customer might ask, including:
- Company/business information
- Services or products offered
- Contact and support questions
- General greetings and conversational questions
- FAQ-style questions

Make questions natural and human-like. Generate accurate answers based ONLY on the provided website content. Keep answers concise but informative.
Return a JSON object with a "training_data" array containing the Q&A pairs.
`

// ResponseSchema returns a fresh copy of the JSON schema the completion
// response must follow.
func ResponseSchema() map[string]any {
	var schema map[string]any
	if err := json.Unmarshal([]byte(responseSchemaDocument), &schema); err != nil {
		panic(fmt.Sprintf("prompt: invalid response schema: %v", err))
	}
	return schema
}

const responseSchemaDocument = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["training_data"],
	"properties": {
		"training_data": {
			"type": "array",
			"items": {
				"type": "object",
				"additionalProperties": false,
				"required": ["question", "answer"],
				"properties": {
					"question": {
						"type": "string",
						"description": "A natural question a customer might ask"
					},
					"answer": {
						"type": "string",
						"description": "An accurate answer based on the website content"
					}
				}
			}
		}
	}
}`
