package format

import (
	"fmt"
	"strings"
	"time"

	"scrape-dash-go/pkg/models"

	"github.com/dustin/go-humanize"
)

// FileSize renders bytes in 1024 units, e.g. "1.5 KiB".
func FileSize(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(n))
}

// RelativeTime renders t relative to now: "Just now", "5 min ago",
// "2 hours ago", "3 days ago", then a plain date after a week.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	diff := now.Sub(t)
	mins := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))

	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%d min ago", mins)
	case hours < 24:
		return fmt.Sprintf("%d %s ago", hours, plural(hours, "hour"))
	case days < 7:
		return fmt.Sprintf("%d %s ago", days, plural(days, "day"))
	default:
		return t.Format("2006-01-02")
	}
}

// Elapsed renders a duration as MM:SS, or H:MM:SS from one hour up.
func Elapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// StatusLabel capitalizes a job status for display.
func StatusLabel(s models.JobStatus) string {
	if s == "" {
		return "-"
	}
	str := string(s)
	return strings.ToUpper(str[:1]) + str[1:]
}

// ResultCount renders a per-query outcome: "1,234 results" or the error.
func ResultCount(r models.QueryResult) string {
	if r.Error != nil && *r.Error != "" {
		return "Error: " + *r.Error
	}
	if r.TotalResults == nil {
		return "- results"
	}
	return humanize.Comma(int64(*r.TotalResults)) + " results"
}

// Truncate shortens s to maxLen runes with a trailing ellipsis.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 3 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// ShortenID returns the first 8 characters of a job id.
func ShortenID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
