// Package finetune implements the finetune command.
package finetune

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mtechzilla/sitetune/internal/common"
	"github.com/mtechzilla/sitetune/models"
	"github.com/mtechzilla/sitetune/pkg/dataset"
	"github.com/mtechzilla/sitetune/pkg/db"
	ft "github.com/mtechzilla/sitetune/pkg/finetune"
	"github.com/mtechzilla/sitetune/pkg/storage"
	"github.com/urfave/cli/v2"
)

func FineTuneAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := models.LoadConfig(c.String("config"), c.IsSet("config"))
	if err != nil {
		return cli.Exit(err.Error(), common.ExitConfig)
	}
	applyFlags(c, cfg)
	if err := cfg.ValidateFineTune(); err != nil {
		return cli.Exit(fmt.Sprintf("invalid config: %v", err), common.ExitConfig)
	}

	env, err := common.LoadEnv()
	if err != nil {
		if t := tip(err); t != "" {
			fmt.Fprintln(os.Stderr, t)
		}
		return cli.Exit(err.Error(), common.ExitConfig)
	}

	options := []func(*ft.Orchestrator){ft.WithLogger(logger)}
	if !c.Bool("no-history") {
		database, err := db.Open(c.String("db"))
		if err != nil {
			logger.Warn("Failed to open history database", "error", err)
		} else {
			defer database.Close()
			options = append(options, ft.WithRecorder(database))
		}
	}

	orchestrator := ft.New(
		ft.NewOpenAIClient(common.NewOpenAIClient(env)),
		dataset.NewValidator(&storage.Storage{}, cfg.FineTune.MinExamples, logger),
		cfg.FineTune.Model,
		cfg.FineTune.PollInterval,
		options...,
	)

	fmt.Println("Starting supervised fine-tuning process...")
	fmt.Printf("Using model: %s\n", cfg.FineTune.Model)
	fmt.Printf("Training file: %s\n\n", cfg.FineTune.TrainingFile)
	fmt.Println("This may take 10-30 minutes depending on the dataset size and model.")

	result, err := orchestrator.Run(context.Background(), cfg.FineTune.TrainingFile)
	if err != nil {
		logger.Error("Fine-tuning failed", "error", err)
		if t := tip(err); t != "" {
			fmt.Fprintln(os.Stderr, t)
		}
		return cli.Exit(fmt.Sprintf("Error during fine-tuning: %v", err), common.ExitRuntime)
	}

	printSuccess(os.Stdout, result)
	return nil
}

func applyFlags(c *cli.Context, cfg *models.Config) {
	if c.IsSet("file") {
		cfg.FineTune.TrainingFile = c.String("file")
	}
	if c.IsSet("model") {
		cfg.FineTune.Model = c.String("model")
	}
	if c.IsSet("poll-interval") {
		cfg.FineTune.PollInterval = c.Duration("poll-interval")
	}
	if c.IsSet("min-examples") {
		cfg.FineTune.MinExamples = c.Int("min-examples")
	}
}

// tip returns a hint for well-known failure messages, or "".
func tip(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "does not exist") || strings.Contains(msg, "not found"):
		return "Tip: make sure the training file exists, or pass its path with --file"
	case strings.Contains(msg, "API key") || strings.Contains(msg, "OPENAI_API_KEY"):
		return "Tip: ensure OPENAI_API_KEY is set correctly in the environment or the .env file"
	}
	return ""
}

func printSuccess(w io.Writer, result *ft.Result) {
	line := strings.Repeat("=", 60)
	fmt.Fprintln(w)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "SUCCESS! Your fine-tuned model is ready!")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "\nModel ID: %s\n", result.FineTunedModel)
	fmt.Fprintf(w, "Trained on %d examples (%s).\n", result.ValidExamples, humanize.Bytes(uint64(result.SizeBytes)))
	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintln(w, "1. Copy the model ID above.")
	fmt.Fprintf(w, "2. Try it with: sitetune chat --model %s\n", result.FineTunedModel)
}
