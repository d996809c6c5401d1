package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mtechzilla/sitetune/internal/chat"
	"github.com/mtechzilla/sitetune/internal/common"
	"github.com/mtechzilla/sitetune/internal/finetune"
	"github.com/mtechzilla/sitetune/internal/history"
	"github.com/mtechzilla/sitetune/internal/scrape"
	"github.com/mtechzilla/sitetune/models"
	"github.com/urfave/cli/v2"
)

func main() {
	shutdownTracing := func(context.Context) error { return nil }

	app := &cli.App{
		Name:  "sitetune",
		Usage: "turn a website into a fine-tuned chat model",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   models.DefaultConfigFile,
				Usage:   "YAML job file; optional unless set explicitly",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "history database path (default: sitetune.db next to the binary)",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "do not record runs and jobs in the history database",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only log errors",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debug details",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "write HTTP client spans as JSON to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			shutdown, err := common.SetupTracing(c.Bool("trace"), os.Stderr)
			if err != nil {
				return cli.Exit(err.Error(), common.ExitConfig)
			}
			shutdownTracing = shutdown
			return nil
		},
		After: func(c *cli.Context) error {
			return shutdownTracing(c.Context)
		},
		Commands: []*cli.Command{
			{
				Name:   "scrape",
				Usage:  "scrape pages and generate a training dataset",
				Action: scrape.ScrapeAction,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "url", Aliases: []string{"u"}, Usage: "URL to scrape (repeatable, replaces the job file list)"},
					&cli.StringFlag{Name: "content-type", Value: "general", Usage: "content type of URLs given with --url"},
					&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "generation model (default: " + models.DefaultGenerationModel + ")"},
					&cli.IntFlag{Name: "examples", Aliases: []string{"n"}, Usage: fmt.Sprintf("number of examples to request (default: %d)", models.DefaultTrainingExamples)},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "dataset output file (default: " + models.DefaultOutputFile + ")"},
					&cli.DurationFlag{Name: "delay", Usage: "pause between fetches (default: 1s)"},
					&cli.DurationFlag{Name: "timeout", Usage: "per-page fetch timeout (default: 5m)"},
					&cli.BoolFlag{Name: "robots", Usage: "skip pages disallowed by robots.txt"},
					&cli.StringFlag{Name: "cache-dir", Usage: "cache fetched pages in this directory"},
					&cli.StringFlag{Name: "report-dir", Usage: "write a scrape report to this directory"},
					&cli.StringFlag{Name: "report-format", Usage: "report format: yaml or json"},
				},
			},
			{
				Name:   "finetune",
				Usage:  "validate a dataset, upload it and run a fine-tuning job",
				Action: finetune.FineTuneAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "training file (default: " + models.DefaultTrainingFile + ")"},
					&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "base model (default: " + models.DefaultFineTuneModel + ")"},
					&cli.DurationFlag{Name: "poll-interval", Usage: fmt.Sprintf("job status poll interval (default: %s)", models.DefaultPollInterval)},
					&cli.IntFlag{Name: "min-examples", Usage: fmt.Sprintf("minimum valid examples (default: %d)", models.DefaultMinExamples)},
				},
			},
			{
				Name:   "chat",
				Usage:  "chat with a model from the terminal",
				Action: chat.ChatAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Required: true, Usage: "model id, usually the fine-tuned one"},
				},
			},
			{
				Name:   "history",
				Usage:  "list recent scrape runs and fine-tuning jobs",
				Action: history.HistoryAction,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum rows per table"},
					&cli.StringFlag{Name: "run", Usage: "show the pages of one scrape run"},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

