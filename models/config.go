// Package models defines data structures for configuration, pages, training
// records and fine-tuning jobs.
package models

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile       = "sitetune.yaml"
	DefaultGenerationModel  = "gpt-5"
	DefaultTrainingExamples = 50
	DefaultOutputFile       = "training_data.jsonl"
	DefaultDelay            = time.Second
	DefaultFetchTimeout     = 300 * time.Second
	DefaultFineTuneModel    = "gpt-4.1-nano-2025-04-14"
	DefaultTrainingFile     = "fine_tune_data.jsonl"
	DefaultPollInterval     = 30 * time.Second
	DefaultMinExamples      = 10
	DefaultCacheMaxAge      = 24 * time.Hour
	DefaultReportFormat     = "yaml"
)

// Config is the job file consumed by the scrape and finetune commands.
// Flags set on the command line override values read from the file.
type Config struct {
	URLs             []URLTarget    `yaml:"urls"`
	Model            string         `yaml:"model"`
	TrainingExamples int            `yaml:"training_examples"`
	OutputFile       string         `yaml:"output_file"`
	Delay            time.Duration  `yaml:"delay"`
	FetchTimeout     time.Duration  `yaml:"fetch_timeout"`
	RespectRobots    bool           `yaml:"respect_robots"`
	CacheDir         string         `yaml:"cache_dir"`
	CacheMaxAge      time.Duration  `yaml:"cache_max_age"`
	ReportDir        string         `yaml:"report_dir"`
	ReportFormat     string         `yaml:"report_format"`
	FineTune         FineTuneConfig `yaml:"finetune"`
}

// FineTuneConfig holds the settings of the fine-tuning workflow.
type FineTuneConfig struct {
	Model        string        `yaml:"model"`
	TrainingFile string        `yaml:"training_file"`
	PollInterval time.Duration `yaml:"poll_interval"`
	MinExamples  int           `yaml:"min_examples"`
}

// ApplyDefaults fills every unset field with its default value.
func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = DefaultGenerationModel
	}
	if c.TrainingExamples == 0 {
		c.TrainingExamples = DefaultTrainingExamples
	}
	if c.OutputFile == "" {
		c.OutputFile = DefaultOutputFile
	}
	if c.Delay == 0 {
		c.Delay = DefaultDelay
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.CacheMaxAge == 0 {
		c.CacheMaxAge = DefaultCacheMaxAge
	}
	if c.ReportFormat == "" {
		c.ReportFormat = DefaultReportFormat
	}
	if c.FineTune.Model == "" {
		c.FineTune.Model = DefaultFineTuneModel
	}
	if c.FineTune.TrainingFile == "" {
		c.FineTune.TrainingFile = DefaultTrainingFile
	}
	if c.FineTune.PollInterval == 0 {
		c.FineTune.PollInterval = DefaultPollInterval
	}
	if c.FineTune.MinExamples == 0 {
		c.FineTune.MinExamples = DefaultMinExamples
	}
}

// Validate checks the fields needed by the scrape pipeline.
func (c *Config) Validate() error {
	if len(c.URLs) == 0 {
		return errors.New("missing required field: urls")
	}
	for i, u := range c.URLs {
		if u.URL == "" {
			return fmt.Errorf("urls[%d]: missing url", i)
		}
	}
	if c.TrainingExamples <= 0 {
		return errors.New("training_examples must be greater than 0")
	}
	if c.Delay < 0 {
		return errors.New("delay must not be negative")
	}
	switch c.ReportFormat {
	case "", "yaml", "yml", "json":
	default:
		return fmt.Errorf("unsupported report_format %q", c.ReportFormat)
	}
	return nil
}

// ValidateFineTune checks the fields needed by the finetune command.
func (c *Config) ValidateFineTune() error {
	if c.FineTune.TrainingFile == "" {
		return errors.New("missing required field: finetune.training_file")
	}
	if c.FineTune.PollInterval <= 0 {
		return errors.New("finetune.poll_interval must be greater than 0")
	}
	if c.FineTune.MinExamples <= 0 {
		return errors.New("finetune.min_examples must be greater than 0")
	}
	return nil
}

// LoadConfig reads a YAML job file and applies defaults. A missing file is
// only an error when required is set; otherwise the defaults are returned.
// A delay written in the file is kept even when it is zero.
func LoadConfig(path string, required bool) (*Config, error) {
	var cfg Config
	var explicit struct {
		Delay *time.Duration `yaml:"delay"`
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		_ = yaml.Unmarshal(data, &explicit)
	case errors.Is(err, os.ErrNotExist) && !required:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.ApplyDefaults()
	if explicit.Delay != nil {
		cfg.Delay = *explicit.Delay
	}
	return &cfg, nil
}
