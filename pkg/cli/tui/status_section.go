package tui

import (
	"fmt"
	"strings"
	"time"

	"scrape-dash-go/pkg/cli/format"
	"scrape-dash-go/pkg/cli/tui/dashboard"
	"scrape-dash-go/pkg/models"
)

// renderStatusSection renders the tracked job: status, progress, current
// query, completed results newest first and the pending queue.
func renderStatusSection(job *models.Job, now time.Time, width int, downloadURL func(string) string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Job Status") + "\n")

	if job == nil {
		b.WriteString(renderEmptyState(dashboard.EmptyStatus))
		return b.String()
	}

	if msg := job.ErrorMessage(); msg != "" {
		b.WriteString(renderError(msg) + "\n")
	}

	b.WriteString(renderField("Job:", fileMetaStyle.Render(format.ShortenID(job.JobID))))
	b.WriteString(renderField("Status:", statusStyle(job.Status).Render(format.StatusLabel(job.Status))))
	b.WriteString(renderField("Progress:", fmt.Sprintf("%d/%d queries  %s",
		job.CompletedQueries, job.TotalQueries, renderProgressBar(models.Progress(job), 20))))
	if job.StartedAt != nil {
		b.WriteString(renderField("Elapsed:", format.Elapsed(models.Elapsed(job, now))))
	}

	current := job.CurrentQueryText()
	if current == "" {
		current = "-"
	}
	b.WriteString(renderField("Current Query:", current))

	if len(job.Results) > 0 {
		b.WriteString("\n" + boldStyle.Render(fmt.Sprintf("Completed (%d)", len(job.Results))) + "\n")
		for i := len(job.Results) - 1; i >= 0; i-- {
			b.WriteString(renderResult(job.Results[i], width, downloadURL))
		}
	}

	if job.Status.ShowsPending() {
		pending := models.PendingQueries(job)
		if len(pending) > 0 {
			b.WriteString("\n" + boldStyle.Render(fmt.Sprintf("Pending Queries (%d)", len(pending))) + "\n")
			for _, q := range pending {
				b.WriteString("  " + mutedStyle.Render("• "+format.Truncate(q, width-6)) + "\n")
			}
		}
	}

	return b.String()
}

func renderResult(r models.QueryResult, width int, downloadURL func(string) string) string {
	var b strings.Builder

	outcome := format.ResultCount(r)
	if r.Error != nil && *r.Error != "" {
		outcome = errorStyle.Render(outcome)
	} else {
		outcome = successStyle.Render(outcome)
	}
	b.WriteString(fmt.Sprintf("  %s  %s\n", fileNameStyle.Render(format.Truncate(r.Query, width/2)), outcome))

	if r.CSVFile != nil && *r.CSVFile != "" && downloadURL != nil {
		b.WriteString("    " + urlStyle.Render(downloadURL(*r.CSVFile)) + "\n")
	}
	return b.String()
}

// renderProgressBar draws pct (0-100) as a fixed-width bar.
func renderProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return successStyle.Render(strings.Repeat("█", filled)) +
		dividerStyle.Render(strings.Repeat("░", width-filled))
}
