package scraper

import (
	"fmt"
	"net/url"
)

// Backend routes. Job and file names are path-escaped by the helpers below.
const (
	pathHealth       = "/health"
	pathScrape       = "/api/scrape"
	pathActiveJob    = "/api/active-job"
	pathFiles        = "/api/files"
	pathDeleteAllCSV = "/api/delete-all-csv"
	pathDownloadZip  = "/api/download-all"
	pathDownloadCSV  = "/api/download-all-csv"
)

func statusPath(jobID string) string {
	return fmt.Sprintf("/api/status/%s", url.PathEscape(jobID))
}

func terminatePath(jobID string) string {
	return fmt.Sprintf("/api/terminate/%s", url.PathEscape(jobID))
}

func clearStatusPath(jobID string) string {
	return fmt.Sprintf("/api/clear-status/%s", url.PathEscape(jobID))
}

func deleteFilePath(filename string) string {
	return fmt.Sprintf("/api/delete/%s", url.PathEscape(filename))
}

func downloadPath(filename string) string {
	return fmt.Sprintf("/api/download/%s", url.PathEscape(filename))
}
