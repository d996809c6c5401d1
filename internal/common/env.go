package common

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	ExitRuntime = 1
	ExitConfig  = 2
)

// Env is the process environment read by commands that call the API.
type Env struct {
	APIKey  string `envconfig:"OPENAI_API_KEY" required:"true"`
	OrgID   string `envconfig:"OPENAI_ORG_ID"`
	BaseURL string `envconfig:"OPENAI_BASE_URL"`
}

// LoadEnv loads .env files when present, then reads Env from the
// environment. Variables already set in the environment take precedence.
func LoadEnv(files ...string) (*Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &env, nil
}

// NewOpenAIClient builds an API client whose HTTP traffic is traced.
func NewOpenAIClient(env *Env) openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(env.APIKey),
		option.WithHTTPClient(&http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}),
	}
	if env.OrgID != "" {
		opts = append(opts, option.WithOrganization(env.OrgID))
	}
	if env.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(env.BaseURL))
	}
	return openai.NewClient(opts...)
}
