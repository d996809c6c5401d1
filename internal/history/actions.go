// Package history implements the history command.
package history

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mtechzilla/sitetune/internal/common"
	"github.com/mtechzilla/sitetune/models"
	"github.com/mtechzilla/sitetune/pkg/db"
	"github.com/urfave/cli/v2"
)

const timeLayout = "2006-01-02 15:04:05"

func HistoryAction(c *cli.Context) error {
	database, err := db.Open(c.String("db"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open database: %v", err), common.ExitRuntime)
	}
	defer database.Close()

	if runID := c.String("run"); runID != "" {
		pages, err := database.GetScrapePages(runID)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to list pages: %v", err), common.ExitRuntime)
		}
		printPages(os.Stdout, runID, pages)
		return nil
	}

	limit := c.Int("limit")
	runs, err := database.ListScrapeRuns(limit)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to list scrape runs: %v", err), common.ExitRuntime)
	}
	jobs, err := database.ListJobs(limit)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to list fine-tuning jobs: %v", err), common.ExitRuntime)
	}

	printRuns(os.Stdout, runs)
	fmt.Println()
	printJobs(os.Stdout, jobs)
	return nil
}

func printRuns(w io.Writer, runs []models.ScrapeRun) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No scrape runs found")
		return
	}
	fmt.Fprintf(w, "%-36s %-20s %-10s %-6s %-6s %-8s %-9s %s\n",
		"Run", "Started", "Model", "Pages", "Failed", "Examples", "Cost", "Output")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s %-20s %-10s %-6d %-6d %-8d $%-8.4f %s\n",
			r.RunID,
			r.StartedAt.Local().Format(timeLayout),
			r.Model,
			r.PagesScraped,
			r.PagesFailed,
			r.Examples,
			r.Cost,
			r.OutputFile,
		)
	}
	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
}

func printJobs(w io.Writer, jobs []models.JobRecord) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No fine-tuning jobs found")
		return
	}
	fmt.Fprintf(w, "%-30s %-20s %-18s %-26s %s\n",
		"Job", "Updated", "Status", "Base model", "Fine-tuned model")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, j := range jobs {
		result := j.FineTunedModel
		if j.Error != "" {
			result = "error: " + j.Error
		}
		fmt.Fprintf(w, "%-30s %-20s %-18s %-26s %s\n",
			j.JobID,
			j.UpdatedAt.Local().Format(timeLayout),
			j.Status,
			j.BaseModel,
			result,
		)
	}
	fmt.Fprintf(w, "\nTotal: %d jobs\n", len(jobs))
}

func printPages(w io.Writer, runID string, pages []models.PageResult) {
	if len(pages) == 0 {
		fmt.Fprintf(w, "Run %s has no pages\n", runID)
		return
	}
	for _, p := range pages {
		detail := p.Title
		if p.Status == models.PageStatusFailed {
			detail = p.Error
		}
		fmt.Fprintf(w, "%-7s %s  %s\n", p.Status, p.URL, detail)
	}
}
