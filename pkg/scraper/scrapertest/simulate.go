package scrapertest

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"scrape-dash-go/pkg/models"
)

const csvHeader = "name,address,rating,query"

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// ResultsPerQuery is how many rows a simulated query writes.
const ResultsPerQuery = 3

// Advance moves the oldest unfinished job one step forward: queued jobs start
// their first query, processing jobs finish the current query, and
// terminating jobs become terminated. It reports whether a job changed.
func (s *Server) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		job := s.jobs[id]
		switch job.Status {
		case models.JobStatusTerminating:
			s.terminateLocked(job)
			return true
		case models.JobStatusQueued:
			s.beginQueryLocked(job, 0)
			return true
		case models.JobStatusProcessing:
			s.finishQueryLocked(job)
			return true
		}
	}
	return false
}

// Simulate calls Advance every step until ctx is done.
func (s *Server) Simulate(ctx context.Context, step time.Duration) {
	ticker := time.NewTicker(step)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Advance()
		}
	}
}

func (s *Server) beginQueryLocked(job *models.Job, idx int) {
	query := job.Queries[idx]
	name := CSVFileName(query)

	job.Status = models.JobStatusProcessing
	job.CurrentQuery = &query
	job.CurrentQueryIndex = &idx
	job.CurrentCSVFile = &name
	s.putFileLocked(name, []byte(csvHeader+"\n"), s.now())
}

func (s *Server) finishQueryLocked(job *models.Job) {
	idx := 0
	if job.CurrentQueryIndex != nil {
		idx = *job.CurrentQueryIndex
	}
	if idx >= len(job.Queries) {
		s.completeLocked(job)
		return
	}

	query := job.Queries[idx]
	name := CSVFileName(query)
	total := ResultsPerQuery
	s.putFileLocked(name, []byte(fakeRows(query, job.Location, total)), s.now())

	job.Results = append(job.Results, models.QueryResult{
		Query:        query,
		CSVFile:      &name,
		TotalResults: &total,
		CompletedAt:  models.NewTimestamp(s.now()),
	})
	job.CompletedQueries++

	if next := idx + 1; next < len(job.Queries) {
		s.beginQueryLocked(job, next)
		return
	}
	s.completeLocked(job)
}

func (s *Server) completeLocked(job *models.Job) {
	now := models.NewTimestamp(s.now())
	job.Status = models.JobStatusCompleted
	job.CompletedAt = &now
	job.CurrentQuery = nil
	job.CurrentQueryIndex = nil
	job.CurrentCSVFile = nil
}

func (s *Server) terminateLocked(job *models.Job) {
	now := models.NewTimestamp(s.now())
	msg := "Job terminated by user"
	job.Status = models.JobStatusTerminated
	job.Error = &msg
	job.CompletedAt = &now
	job.CurrentQuery = nil
	job.CurrentQueryIndex = nil
	job.CurrentCSVFile = nil
}

// CSVFileName is the file a simulated query writes to.
func CSVFileName(query string) string {
	slug := strings.Trim(nonWord.ReplaceAllString(strings.ToLower(query), "_"), "_")
	if slug == "" {
		slug = "query"
	}
	return slug + ".csv"
}

func fakeRows(query, location string, n int) string {
	if location == "" {
		location = "Main St"
	}
	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteByte('\n')
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%q,%q,%.1f,%q\n",
			fmt.Sprintf("%s #%d", query, i),
			fmt.Sprintf("%d %s", 100*i, location),
			3.5+float64(i)/2,
			query)
	}
	return b.String()
}
