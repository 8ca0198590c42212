package format

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"scrape-dash-go/pkg/models"

	"github.com/dustin/go-humanize"
)

// FilesTable renders generated files as a table for CLI output.
func FilesTable(files []models.GeneratedFile, now time.Time) string {
	if len(files) == 0 {
		return "No files generated yet.\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "Filename\tSize\tStatus\tCreated")
	fmt.Fprintln(w, strings.Repeat("─", 40)+"\t"+strings.Repeat("─", 10)+"\t"+strings.Repeat("─", 10)+"\t"+strings.Repeat("─", 14))

	for _, f := range files {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			Truncate(f.Filename, 40),
			FileSize(f.Size),
			f.Status,
			RelativeTime(f.Created.Time, now),
		)
	}

	w.Flush()
	b.WriteString(fmt.Sprintf("\nTotal: %d file(s)\n", len(files)))
	return b.String()
}

// JobSummary renders a job the way the status panel does, as plain text.
func JobSummary(job *models.Job, now time.Time) string {
	if job == nil {
		return "No active query. Start a new scraping query to see status updates here.\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Job:       %s\n", job.JobID))
	b.WriteString(fmt.Sprintf("Status:    %s\n", StatusLabel(job.Status)))
	b.WriteString(fmt.Sprintf("Progress:  %d/%d queries (%.0f%%)\n", job.CompletedQueries, job.TotalQueries, models.Progress(job)))
	b.WriteString(fmt.Sprintf("Elapsed:   %s\n", Elapsed(models.Elapsed(job, now))))
	if job.StartedAt != nil && !job.StartedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Started:   %s\n", humanize.Time(job.StartedAt.Time)))
	}
	b.WriteString(fmt.Sprintf("Current:   %s\n", job.CurrentQueryText()))
	if msg := job.ErrorMessage(); msg != "" {
		b.WriteString(fmt.Sprintf("Error:     %s\n", msg))
	}

	if len(job.Results) > 0 {
		b.WriteString(fmt.Sprintf("\nCompleted (%d):\n", len(job.Results)))
		w := tabwriter.NewWriter(&b, 0, 0, 3, ' ', 0)
		for i := len(job.Results) - 1; i >= 0; i-- {
			r := job.Results[i]
			csv := ""
			if r.CSVFile != nil {
				csv = *r.CSVFile
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\n", r.Query, ResultCount(r), csv)
		}
		w.Flush()
	}

	if pending := models.PendingQueries(job); len(pending) > 0 {
		b.WriteString(fmt.Sprintf("\nPending Queries (%d):\n", len(pending)))
		for _, q := range pending {
			b.WriteString("  " + q + "\n")
		}
	}
	return b.String()
}

// ProgressLine is the one-line form used by watch.
func ProgressLine(job *models.Job, now time.Time) string {
	return fmt.Sprintf("[%s] %s %d/%d current=%s",
		Elapsed(models.Elapsed(job, now)),
		StatusLabel(job.Status),
		job.CompletedQueries,
		job.TotalQueries,
		job.CurrentQueryText(),
	)
}

// ErrorMessage formats an error message consistently.
func ErrorMessage(err error) string {
	return fmt.Sprintf("Error: %v\n", err)
}

// WriteTo writes content to w, defaulting to stdout.
func WriteTo(w io.Writer, content string) {
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprint(w, content)
}
