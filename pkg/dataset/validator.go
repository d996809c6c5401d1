package dataset

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kaptinlin/jsonschema"
	"github.com/mtechzilla/sitetune/models"
	"github.com/mtechzilla/sitetune/pkg/storage"
)

// LineError describes a dataset line that was skipped.
type LineError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Report summarizes a dataset validation.
type Report struct {
	SizeBytes     int64       `json:"size_bytes"`
	TotalLines    int         `json:"total_lines"`
	ValidExamples int         `json:"valid_examples"`
	Skipped       []LineError `json:"skipped,omitempty"`
}

type Validator struct {
	storage     *storage.Storage
	logger      *slog.Logger
	minExamples int
}

func NewValidator(s *storage.Storage, minExamples int, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{storage: s, logger: logger, minExamples: minExamples}
}

// Validate checks that path holds at least minExamples non-blank lines and
// at least minExamples valid training records. Invalid lines are logged and
// skipped.
func (v *Validator) Validate(path string) (*Report, error) {
	if !v.storage.HasFile(path) {
		return nil, fmt.Errorf("training file %s does not exist", path)
	}
	stats, err := v.storage.GetFileStats(path)
	if err != nil {
		return nil, err
	}

	data, err := v.storage.ReadFile(path)
	if err != nil {
		return nil, err
	}

	type line struct {
		number int
		text   string
	}
	var lines []line
	for i, text := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(text) != "" {
			lines = append(lines, line{number: i + 1, text: text})
		}
	}

	report := &Report{SizeBytes: stats.SizeBytes, TotalLines: len(lines)}
	if report.TotalLines < v.minExamples {
		return report, fmt.Errorf("training data must contain at least %d examples. Found: %d", v.minExamples, report.TotalLines)
	}

	for _, l := range lines {
		if err := ValidateLine([]byte(l.text)); err != nil {
			v.logger.Warn("Skipping invalid line", "line", l.number, "reason", err.Error())
			report.Skipped = append(report.Skipped, LineError{Line: l.number, Reason: err.Error()})
			continue
		}
		report.ValidExamples++
	}

	if report.ValidExamples < v.minExamples {
		return report, fmt.Errorf("at least %d valid examples are required. Found: %d", v.minExamples, report.ValidExamples)
	}

	v.logger.Info("Training data validation passed", "valid_examples", report.ValidExamples, "skipped", len(report.Skipped))
	return report, nil
}

// ValidateLine checks a single dataset line: it must be JSON with a messages
// array of at least two entries containing both a user and an assistant role.
func ValidateLine(data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON")
	}
	if result := lineSchema.ValidateJSON(data); !result.Valid {
		return fmt.Errorf("invalid message structure: %w", result)
	}

	var record struct {
		Messages []models.Message `json:"messages"`
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("invalid message structure: %w", err)
	}

	var hasUser, hasAssistant bool
	for _, m := range record.Messages {
		switch m.Role {
		case models.RoleUser:
			hasUser = true
		case models.RoleAssistant:
			hasAssistant = true
		}
	}
	if !hasUser || !hasAssistant {
		return fmt.Errorf("both 'user' and 'assistant' roles must be present")
	}
	return nil
}

var lineSchema = must(jsonschema.NewCompiler().Compile([]byte(lineSchemaDocument)))

func must[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}
	return t
}

const lineSchemaDocument = `{
	"$id": "training-line.json",
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["messages"],
	"properties": {
		"messages": {
			"type": "array",
			"minItems": 2,
			"items": {
				"type": "object",
				"required": ["role"],
				"properties": {
					"role": {"type": "string"},
					"content": {"type": "string"}
				}
			}
		}
	}
}`
