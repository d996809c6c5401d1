// Package scrape implements the scrape command: fetch pages, generate
// training examples and save them as a JSONL dataset.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mtechzilla/sitetune/internal/common"
	"github.com/mtechzilla/sitetune/models"
	"github.com/mtechzilla/sitetune/pkg/analytics"
	"github.com/mtechzilla/sitetune/pkg/caching"
	"github.com/mtechzilla/sitetune/pkg/dataset"
	"github.com/mtechzilla/sitetune/pkg/db"
	"github.com/mtechzilla/sitetune/pkg/extractor"
	"github.com/mtechzilla/sitetune/pkg/fetcher"
	"github.com/mtechzilla/sitetune/pkg/generator"
	"github.com/mtechzilla/sitetune/pkg/manifest"
	"github.com/mtechzilla/sitetune/pkg/storage"
	"github.com/urfave/cli/v2"
)

func ScrapeAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := models.LoadConfig(c.String("config"), c.IsSet("config"))
	if err != nil {
		return cli.Exit(err.Error(), common.ExitConfig)
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("invalid config: %v", err), common.ExitConfig)
	}

	env, err := common.LoadEnv()
	if err != nil {
		return cli.Exit("Please set OPENAI_API_KEY in the environment or a .env file: "+err.Error(), common.ExitConfig)
	}

	fetchOpts := []func(*fetcher.HTTPFetcher){
		fetcher.WithTimeout(cfg.FetchTimeout),
		fetcher.WithRobots(cfg.RespectRobots),
		fetcher.WithLogger(logger),
	}
	if cfg.CacheDir != "" {
		cache, err := caching.NewCache(cfg.CacheDir, cfg.CacheMaxAge)
		if err != nil {
			return cli.Exit(err.Error(), common.ExitConfig)
		}
		fetchOpts = append(fetchOpts, fetcher.WithCache(cache))
	}

	gen := generator.New(
		generator.NewOpenAICompleter(common.NewOpenAIClient(env)),
		cfg.Model,
		generator.WithLogger(logger),
	)
	pipeline := &Pipeline{
		Fetcher:   fetcher.NewHTTPFetcher(fetchOpts...),
		Extractor: &extractor.Extractor{},
		Generator: gen,
		Delay:     cfg.Delay,
		Logger:    logger,
	}

	run := &models.ScrapeRun{
		RunID:      uuid.NewString(),
		Model:      cfg.Model,
		OutputFile: cfg.OutputFile,
		StartedAt:  time.Now(),
	}
	fmt.Printf("Starting scraper for %d URLs\n", len(cfg.URLs))

	out, runErr := pipeline.Run(context.Background(), cfg.URLs, cfg.TrainingExamples)
	summarize(run, out, gen.Usage())

	if runErr == nil {
		s := &storage.Storage{}
		written, err := dataset.NewWriter(s, logger).Write(cfg.OutputFile, out.Records)
		switch {
		case err != nil:
			runErr = err
		case !written:
			runErr = generator.ErrNoTrainingData
		default:
			fmt.Printf("Saved %d training examples to %s\n", len(out.Records), cfg.OutputFile)
		}
	}
	if runErr != nil {
		run.OutputFile = ""
	}

	fmt.Printf("Scraped %d pages, generated %d examples\n", run.PagesScraped, run.Examples)
	fmt.Printf("Total cost: $%.4f\n", run.Cost)

	if !c.Bool("no-history") {
		recordRun(c.String("db"), run, logger)
	}
	if cfg.ReportDir != "" {
		report := manifest.Build(run, out.Summaries, analytics.NewLanguageDetector())
		path, err := manifest.Write(report, cfg.ReportDir, cfg.ReportFormat, &storage.Storage{})
		if err != nil {
			logger.Warn("Failed to write scrape report", "error", err)
		} else {
			fmt.Printf("Report: %s\n", path)
		}
	}

	if runErr != nil {
		if errors.Is(runErr, generator.ErrNoPages) {
			return cli.Exit("No content scraped. Check the URLs and your network connection.", common.ExitRuntime)
		}
		return cli.Exit(fmt.Sprintf("Error: %v", runErr), common.ExitRuntime)
	}
	fmt.Println("Scraping completed successfully.")
	return nil
}

// applyFlags overrides config file values with explicitly set flags.
func applyFlags(c *cli.Context, cfg *models.Config) {
	if c.IsSet("url") {
		cfg.URLs = nil
		for _, u := range c.StringSlice("url") {
			cfg.URLs = append(cfg.URLs, models.URLTarget{URL: u, ContentType: c.String("content-type")})
		}
	}
	if c.IsSet("model") {
		cfg.Model = c.String("model")
	}
	if c.IsSet("examples") {
		cfg.TrainingExamples = c.Int("examples")
	}
	if c.IsSet("output") {
		cfg.OutputFile = c.String("output")
	}
	if c.IsSet("delay") {
		cfg.Delay = c.Duration("delay")
	}
	if c.IsSet("timeout") {
		cfg.FetchTimeout = c.Duration("timeout")
	}
	if c.IsSet("robots") {
		cfg.RespectRobots = c.Bool("robots")
	}
	if c.IsSet("cache-dir") {
		cfg.CacheDir = c.String("cache-dir")
	}
	if c.IsSet("report-dir") {
		cfg.ReportDir = c.String("report-dir")
	}
	if c.IsSet("report-format") {
		cfg.ReportFormat = c.String("report-format")
	}
}

func summarize(run *models.ScrapeRun, out *Outcome, usage generator.Usage) {
	run.FinishedAt = time.Now()
	run.PromptTokens = usage.PromptTokens
	run.CompletionTokens = usage.CompletionTokens
	run.Cost = usage.Cost
	if out == nil {
		return
	}
	run.Pages = out.Pages
	run.PagesScraped = len(out.Summaries)
	run.PagesFailed = len(out.Pages) - len(out.Summaries)
	run.Examples = len(out.Records)
}

func recordRun(path string, run *models.ScrapeRun, logger *slog.Logger) {
	database, err := db.Open(path)
	if err != nil {
		logger.Warn("Failed to open history database", "error", err)
		return
	}
	defer database.Close()

	if err := database.InsertScrapeRun(run); err != nil {
		logger.Warn("Failed to record scrape run", "run_id", run.RunID, "error", err)
	}
}
