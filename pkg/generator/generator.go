// Package generator asks a chat-completion API for question/answer pairs
// about scraped pages and turns them into training records.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mtechzilla/sitetune/models"
	"github.com/mtechzilla/sitetune/pkg/prompt"
)

// RecordSystemPrompt is the system message of every generated training record.
const RecordSystemPrompt = "You are a helpful assistant. Answer questions accurately based on the website content."

// Token prices, in dollars per TokenPriceUnit tokens.
const (
	InputTokenPrice  = 1.25
	OutputTokenPrice = 10
	TokenPriceUnit   = 100000
)

var (
	ErrNoPages        = errors.New("no content scraped from any URL")
	ErrNoContent      = errors.New("no content generated in response")
	ErrNoTrainingData = errors.New("no training data generated")
)

// Usage accumulates token counts and cost across completion calls.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	Cost             float64
}

// Cost returns the dollar cost of a call with the given token counts.
func Cost(promptTokens, completionTokens int64) float64 {
	return float64(promptTokens)*InputTokenPrice/TokenPriceUnit +
		float64(completionTokens)*OutputTokenPrice/TokenPriceUnit
}

func (u *Usage) add(promptTokens, completionTokens int64) {
	u.PromptTokens += promptTokens
	u.CompletionTokens += completionTokens
	u.Cost += Cost(promptTokens, completionTokens)
}

type Generator struct {
	completer Completer
	model     string
	logger    *slog.Logger
	usage     Usage
}

func New(completer Completer, model string, options ...func(*Generator)) *Generator {
	g := &Generator{
		completer: completer,
		model:     model,
		logger:    slog.Default(),
	}
	for _, option := range options {
		option(g)
	}
	return g
}

func WithLogger(l *slog.Logger) func(*Generator) {
	return func(g *Generator) {
		g.logger = l
	}
}

// Usage returns the token usage accumulated so far.
func (g *Generator) Usage() Usage {
	return g.usage
}

// TotalCost returns the dollar cost accumulated so far.
func (g *Generator) TotalCost() float64 {
	return g.usage.Cost
}

// Generate makes one completion call for all pages and returns the
// training records built from the response. Cost is accounted for even when
// the response cannot be used.
func (g *Generator) Generate(
	ctx context.Context,
	pages []*models.PageSummary,
	count int,
) ([]models.TrainingRecord, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	completion, err := g.completer.Complete(ctx, CompletionRequest{
		Model:        g.model,
		SystemPrompt: prompt.SystemPrompt,
		UserPrompt:   prompt.Build(pages, count),
		SchemaName:   prompt.SchemaName,
		Schema:       prompt.ResponseSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("generating training data: %w", err)
	}

	g.usage.add(completion.PromptTokens, completion.CompletionTokens)
	g.logger.Info("Completion usage",
		"prompt_tokens", completion.PromptTokens,
		"completion_tokens", completion.CompletionTokens,
		"total_cost", g.usage.Cost,
	)

	records, err := ParseRecords(completion.Content)
	if err != nil {
		return nil, fmt.Errorf("generating training data: %w", err)
	}

	g.logger.Info("Generated training examples", "count", len(records))
	return records, nil
}

type rawPair struct {
	Question any `json:"question"`
	Answer   any `json:"answer"`
}

// ParsePairs decodes a completion's JSON content and returns every item that
// has both a question and an answer, trimmed. The items are read from
// "training_data", or from "trainingData" when the former is absent.
func ParsePairs(content string) ([]models.QAPair, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrNoContent
	}

	var payload struct {
		TrainingData       []rawPair `json:"training_data"`
		LegacyTrainingData []rawPair `json:"trainingData"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("parsing completion content: %w", err)
	}

	items := payload.TrainingData
	if items == nil {
		items = payload.LegacyTrainingData
	}

	pairs := []models.QAPair{}
	for _, item := range items {
		question, _ := item.Question.(string)
		answer, _ := item.Answer.(string)
		question, answer = strings.TrimSpace(question), strings.TrimSpace(answer)
		if question == "" || answer == "" {
			continue
		}
		pairs = append(pairs, models.QAPair{Question: question, Answer: answer})
	}
	return pairs, nil
}

// ParseRecords builds a training record for every pair ParsePairs finds.
func ParseRecords(content string) ([]models.TrainingRecord, error) {
	pairs, err := ParsePairs(content)
	if err != nil {
		return nil, err
	}
	records := make([]models.TrainingRecord, 0, len(pairs))
	for _, pair := range pairs {
		records = append(records, models.NewTrainingRecord(RecordSystemPrompt, pair.Question, pair.Answer))
	}
	return records, nil
}
