package generator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const completionResponse = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4o-mini",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "{\"training_data\": []}"}
	}],
	"usage": {"prompt_tokens": 120, "completion_tokens": 45, "total_tokens": 165}
}`

// completionServer answers chat completions and keeps the last request body.
func completionServer(t *testing.T, body *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading request body: %v", err)
		}
		if err := json.Unmarshal(raw, body); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionResponse)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(srv *httptest.Server) openai.Client {
	return openai.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(srv.URL+"/"),
		option.WithMaxRetries(0),
	)
}

func TestOpenAICompleter_StructuredOutput(t *testing.T) {
	var body map[string]any
	srv := completionServer(t, &body)
	c := NewOpenAICompleter(testClient(srv))

	schema := map[string]any{"type": "object"}
	got, err := c.Complete(context.Background(), CompletionRequest{
		Model:        "gpt-4o-mini",
		SystemPrompt: "system text",
		UserPrompt:   "user text",
		SchemaName:   "training_data_generation",
		Schema:       schema,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	want := &Completion{Content: `{"training_data": []}`, PromptTokens: 120, CompletionTokens: 45}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("completion mismatch (-want +got):\n%s", diff)
	}

	if body["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v, want gpt-4o-mini", body["model"])
	}
	wantMessages := []any{
		map[string]any{"role": "system", "content": "system text"},
		map[string]any{"role": "user", "content": "user text"},
	}
	if diff := cmp.Diff(wantMessages, body["messages"]); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	wantFormat := map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   "training_data_generation",
			"schema": map[string]any{"type": "object"},
			"strict": true,
		},
	}
	if diff := cmp.Diff(wantFormat, body["response_format"]); diff != "" {
		t.Errorf("response_format mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenAICompleter_PlainText(t *testing.T) {
	var body map[string]any
	srv := completionServer(t, &body)
	c := NewOpenAICompleter(testClient(srv))

	if _, err := c.Complete(context.Background(), CompletionRequest{
		Model:        "gpt-4o-mini",
		SystemPrompt: "system text",
		UserPrompt:   "hello",
	}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if _, ok := body["response_format"]; ok {
		t.Errorf("response_format sent without a schema: %v", body["response_format"])
	}
}

func TestOpenAICompleter_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`)
	}))
	defer srv.Close()

	c := NewOpenAICompleter(testClient(srv))
	_, err := c.Complete(context.Background(), CompletionRequest{Model: "gpt-4o-mini", UserPrompt: "hi"})
	if err == nil {
		t.Fatal("expected an error for a 401 response")
	}
	if !strings.HasPrefix(err.Error(), "chat completion: ") {
		t.Errorf("error = %q, want chat completion prefix", err)
	}
}
