package models

import (
	"time"
)

// JobStatus is the lifecycle state of a scrape job as reported by the backend.
type JobStatus string

const (
	JobStatusQueued      JobStatus = "queued"
	JobStatusProcessing  JobStatus = "processing"
	JobStatusTerminating JobStatus = "terminating"
	JobStatusTerminated  JobStatus = "terminated"
	JobStatusCompleted   JobStatus = "completed"
	JobStatusFailed      JobStatus = "failed"
)

// IsTerminal reports whether no further transitions are expected.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusTerminated:
		return true
	}
	return false
}

// IsActive reports whether the job is still being worked on by the scraper.
func (s JobStatus) IsActive() bool {
	return s == JobStatusQueued || s == JobStatusProcessing
}

// IsTerminable reports whether a terminate request makes sense for this status.
func (s JobStatus) IsTerminable() bool {
	switch s {
	case JobStatusTerminated, JobStatusTerminating, JobStatusCompleted, JobStatusFailed:
		return false
	}
	return true
}

// ShowsPending reports whether the pending-queries view applies.
func (s JobStatus) ShowsPending() bool {
	return s == JobStatusQueued || s == JobStatusProcessing || s == JobStatusTerminating
}

// QueryResult is the outcome of one query within a job.
type QueryResult struct {
	Query        string    `json:"query"`
	CSVFile      *string   `json:"csv_file,omitempty"`
	TotalResults *int      `json:"total_results,omitempty"`
	Error        *string   `json:"error,omitempty"`
	CompletedAt  Timestamp `json:"completed_at"`
}

// Job mirrors the server-side scrape job record.
type Job struct {
	JobID             string        `json:"job_id"`
	Status            JobStatus     `json:"status"`
	TotalQueries      int           `json:"total_queries"`
	CompletedQueries  int           `json:"completed_queries"`
	Queries           []string      `json:"queries"`
	Location          string        `json:"location,omitempty"`
	Results           []QueryResult `json:"results"`
	CurrentQuery      *string       `json:"current_query,omitempty"`
	CurrentQueryIndex *int          `json:"current_query_index,omitempty"`
	CurrentCSVFile    *string       `json:"current_csv_file,omitempty"`
	Error             *string       `json:"error,omitempty"`
	CreatedAt         *Timestamp    `json:"created_at,omitempty"`
	StartedAt         *Timestamp    `json:"started_at,omitempty"`
	CompletedAt       *Timestamp    `json:"completed_at,omitempty"`
}

// NewQueuedJob builds the local placeholder shown between a successful start
// request and the first status poll.
func NewQueuedJob(jobID string, queries []string, now time.Time) *Job {
	started := NewTimestamp(now)
	q := make([]string, len(queries))
	copy(q, queries)
	return &Job{
		JobID:            jobID,
		Status:           JobStatusQueued,
		TotalQueries:     len(queries),
		CompletedQueries: 0,
		Queries:          q,
		Results:          []QueryResult{},
		StartedAt:        &started,
	}
}

// Clone returns a deep copy so snapshots handed to readers never alias.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	if j.Queries != nil {
		c.Queries = make([]string, len(j.Queries))
		copy(c.Queries, j.Queries)
	}
	if j.Results != nil {
		c.Results = make([]QueryResult, len(j.Results))
		for i, r := range j.Results {
			c.Results[i] = QueryResult{
				Query:        r.Query,
				CSVFile:      cloneString(r.CSVFile),
				TotalResults: cloneInt(r.TotalResults),
				Error:        cloneString(r.Error),
				CompletedAt:  r.CompletedAt,
			}
		}
	}
	c.CurrentQuery = cloneString(j.CurrentQuery)
	c.CurrentQueryIndex = cloneInt(j.CurrentQueryIndex)
	c.CurrentCSVFile = cloneString(j.CurrentCSVFile)
	c.Error = cloneString(j.Error)
	c.CreatedAt = cloneTime(j.CreatedAt)
	c.StartedAt = cloneTime(j.StartedAt)
	c.CompletedAt = cloneTime(j.CompletedAt)
	return &c
}

// ErrorMessage returns the job-level error or "".
func (j *Job) ErrorMessage() string {
	if j == nil || j.Error == nil {
		return ""
	}
	return *j.Error
}

// CurrentQueryText returns the in-flight query or "-".
func (j *Job) CurrentQueryText() string {
	if j == nil || j.CurrentQuery == nil || *j.CurrentQuery == "" {
		return "-"
	}
	return *j.CurrentQuery
}

// PendingQueries returns the queries that have not been picked up yet.
//
// The cursor is current_query_index when the server reports one, otherwise
// completed_queries. This is a heuristic: it is wrong if the server reorders
// or skips queries.
func PendingQueries(j *Job) []string {
	if j == nil || len(j.Queries) == 0 || !j.Status.ShowsPending() {
		return nil
	}
	cursor := j.CompletedQueries
	if j.CurrentQueryIndex != nil {
		cursor = *j.CurrentQueryIndex
	}
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(j.Queries) {
		return nil
	}
	return j.Queries[cursor:]
}

// Progress returns completion as a percentage in [0, 100].
func Progress(j *Job) float64 {
	if j == nil || j.TotalQueries <= 0 {
		return 0
	}
	p := float64(j.CompletedQueries) / float64(j.TotalQueries) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Elapsed returns how long the job has been running, frozen at completed_at
// once the server reports one.
func Elapsed(j *Job, now time.Time) time.Duration {
	if j == nil || j.StartedAt == nil || j.StartedAt.IsZero() {
		return 0
	}
	end := now
	if j.CompletedAt != nil && !j.CompletedAt.IsZero() {
		end = j.CompletedAt.Time
	}
	d := end.Sub(j.StartedAt.Time)
	if d < 0 {
		return 0
	}
	return d
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func cloneTime(t *Timestamp) *Timestamp {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
