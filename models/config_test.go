package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sitetune.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
urls:
  - url: https://www.mtechzilla.com/
    content_type: general
  - url: https://www.mtechzilla.com/services
    content_type: services
model: gpt-5-mini
delay: 2s
finetune:
  poll_interval: 1m
`)

	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	want := &Config{
		URLs: []URLTarget{
			{URL: "https://www.mtechzilla.com/", ContentType: "general"},
			{URL: "https://www.mtechzilla.com/services", ContentType: "services"},
		},
		Model:            "gpt-5-mini",
		TrainingExamples: DefaultTrainingExamples,
		OutputFile:       DefaultOutputFile,
		Delay:            2 * time.Second,
		FetchTimeout:     DefaultFetchTimeout,
		CacheMaxAge:      DefaultCacheMaxAge,
		ReportFormat:     DefaultReportFormat,
		FineTune: FineTuneConfig{
			Model:        DefaultFineTuneModel,
			TrainingFile: DefaultTrainingFile,
			PollInterval: time.Minute,
			MinExamples:  DefaultMinExamples,
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	cfg, err := LoadConfig(missing, false)
	if err != nil {
		t.Fatalf("LoadConfig() optional error = %v", err)
	}
	if cfg.Model != DefaultGenerationModel || cfg.FineTune.PollInterval != DefaultPollInterval {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	if _, err := LoadConfig(missing, true); err == nil {
		t.Error("LoadConfig() of a required missing file should fail")
	}
}

func TestLoadConfig_Delay(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want time.Duration
	}{
		{"zero disables spacing", "urls:\n  - url: https://example.com/\ndelay: 0s\n", 0},
		{"explicit value", "urls:\n  - url: https://example.com/\ndelay: 500ms\n", 500 * time.Millisecond},
		{"absent uses default", "urls:\n  - url: https://example.com/\n", DefaultDelay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.yaml), true)
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.Delay != tt.want {
				t.Errorf("Delay = %v, want %v", cfg.Delay, tt.want)
			}
		})
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := writeConfig(t, "urls: [unterminated")
	if _, err := LoadConfig(path, true); err == nil {
		t.Error("LoadConfig() of malformed YAML should fail")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		c := &Config{URLs: []URLTarget{{URL: "https://example.com/"}}}
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"no urls", func(c *Config) { c.URLs = nil }, true},
		{"empty url", func(c *Config) { c.URLs = []URLTarget{{ContentType: "general"}} }, true},
		{"negative examples", func(c *Config) { c.TrainingExamples = -1 }, true},
		{"negative delay", func(c *Config) { c.Delay = -time.Second }, true},
		{"bad report format", func(c *Config) { c.ReportFormat = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateFineTune(t *testing.T) {
	c := &Config{}
	c.ApplyDefaults()
	if err := c.ValidateFineTune(); err != nil {
		t.Errorf("ValidateFineTune() with defaults error = %v", err)
	}

	c.FineTune.PollInterval = -time.Second
	if err := c.ValidateFineTune(); err == nil {
		t.Error("ValidateFineTune() with negative poll interval should fail")
	}
}
