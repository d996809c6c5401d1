package generator

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// CompletionRequest is a single chat completion call. A nil Schema asks
// for plain text.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	Schema       map[string]any
}

// Completion is the part of a completion response the generator needs.
type Completion struct {
	Content          string
	PromptTokens     int64
	CompletionTokens int64
}

// Completer sends a completion request to a chat-completion API.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// OpenAICompleter implements Completer with the OpenAI chat completions API.
type OpenAICompleter struct {
	client openai.Client
}

var _ Completer = (*OpenAICompleter)(nil)

func NewOpenAICompleter(client openai.Client) *OpenAICompleter {
	return &OpenAICompleter{client: client}
}

func (c *OpenAICompleter) Complete(
	ctx context.Context,
	req CompletionRequest,
) (*Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
	}
	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.SchemaName,
					Schema: req.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	result := &Completion{
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
	}
	if len(completion.Choices) > 0 {
		result.Content = completion.Choices[0].Message.Content
	}
	return result, nil
}
