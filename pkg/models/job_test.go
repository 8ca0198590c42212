package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestJobStatusPredicates(t *testing.T) {
	tests := []struct {
		status     JobStatus
		terminal   bool
		active     bool
		terminable bool
	}{
		{JobStatusQueued, false, true, true},
		{JobStatusProcessing, false, true, true},
		{JobStatusTerminating, false, false, false},
		{JobStatusTerminated, true, false, false},
		{JobStatusCompleted, true, false, false},
		{JobStatusFailed, true, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			assert.Equal(t, tt.active, tt.status.IsActive())
			assert.Equal(t, tt.terminable, tt.status.IsTerminable())
		})
	}
}

func TestNewQueuedJob(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	queries := []string{"coffee shops", "gyms"}

	job := NewQueuedJob("job-1", queries, now)
	queries[0] = "mutated"

	assert.Equal(t, JobStatusQueued, job.Status)
	assert.Equal(t, 2, job.TotalQueries)
	assert.Equal(t, 0, job.CompletedQueries)
	assert.Empty(t, job.Results)
	assert.Equal(t, "coffee shops", job.Queries[0])
	require.NotNil(t, job.StartedAt)
	assert.True(t, job.StartedAt.Equal(now))
}

func TestJobCloneDoesNotAlias(t *testing.T) {
	errMsg := "boom"
	job := &Job{
		JobID:             "job-1",
		Queries:           []string{"a", "b"},
		Results:           []QueryResult{{Query: "a", Error: &errMsg}},
		CurrentQueryIndex: intPtr(1),
	}

	clone := job.Clone()
	clone.Queries[0] = "changed"
	*clone.Results[0].Error = "changed"
	*clone.CurrentQueryIndex = 5

	assert.Equal(t, "a", job.Queries[0])
	assert.Equal(t, "boom", *job.Results[0].Error)
	assert.Equal(t, 1, *job.CurrentQueryIndex)
	assert.Nil(t, (*Job)(nil).Clone())
}

func TestPendingQueries(t *testing.T) {
	queries := []string{"a", "b", "c"}

	tests := []struct {
		name string
		job  *Job
		want []string
	}{
		{"nil job", nil, nil},
		{"falls back to completed count", &Job{Status: JobStatusProcessing, Queries: queries, CompletedQueries: 1}, []string{"b", "c"}},
		{"uses current index", &Job{Status: JobStatusProcessing, Queries: queries, CompletedQueries: 0, CurrentQueryIndex: intPtr(2)}, []string{"c"}},
		{"index zero is honoured", &Job{Status: JobStatusQueued, Queries: queries, CompletedQueries: 2, CurrentQueryIndex: intPtr(0)}, queries},
		{"terminating still shows pending", &Job{Status: JobStatusTerminating, Queries: queries, CompletedQueries: 2}, []string{"c"}},
		{"completed hides pending", &Job{Status: JobStatusCompleted, Queries: queries}, nil},
		{"cursor past end", &Job{Status: JobStatusProcessing, Queries: queries, CompletedQueries: 7}, nil},
		{"negative cursor clamps", &Job{Status: JobStatusProcessing, Queries: queries, CurrentQueryIndex: intPtr(-1)}, queries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PendingQueries(tt.job))
		})
	}
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0.0, Progress(nil))
	assert.Equal(t, 0.0, Progress(&Job{TotalQueries: 0, CompletedQueries: 3}))
	assert.Equal(t, 50.0, Progress(&Job{TotalQueries: 2, CompletedQueries: 1}))
	assert.Equal(t, 100.0, Progress(&Job{TotalQueries: 2, CompletedQueries: 5}))
}

func TestElapsed(t *testing.T) {
	start := NewTimestamp(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	end := NewTimestamp(start.Add(90 * time.Second))
	now := start.Add(10 * time.Minute)

	assert.Equal(t, time.Duration(0), Elapsed(nil, now))
	assert.Equal(t, 10*time.Minute, Elapsed(&Job{StartedAt: &start}, now))
	assert.Equal(t, 90*time.Second, Elapsed(&Job{StartedAt: &start, CompletedAt: &end}, now))
	assert.Equal(t, time.Duration(0), Elapsed(&Job{StartedAt: &start}, start.Add(-time.Second)))
}

func TestJobDecodesBackendPayload(t *testing.T) {
	payload := `{
		"job_id": "0b9c",
		"status": "processing",
		"total_queries": 2,
		"completed_queries": 1,
		"queries": ["coffee shops", "gyms"],
		"location": "",
		"results": [{"query": "coffee shops", "csv_file": "coffee_shops.csv", "total_results": 42, "completed_at": "2026-03-01T09:01:02.123456"}],
		"created_at": "2026-03-01T09:00:00.000001",
		"started_at": "2026-03-01T09:00:00",
		"current_query": "gyms",
		"current_query_index": 1,
		"completed_at": null,
		"error": null
	}`

	var job Job
	require.NoError(t, json.Unmarshal([]byte(payload), &job))

	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.Equal(t, "gyms", job.CurrentQueryText())
	require.Len(t, job.Results, 1)
	require.NotNil(t, job.Results[0].TotalResults)
	assert.Equal(t, 42, *job.Results[0].TotalResults)
	assert.Equal(t, 2026, job.Results[0].CompletedAt.Year())
	require.NotNil(t, job.StartedAt)
	assert.Equal(t, 9, job.StartedAt.Hour())
	assert.Nil(t, job.CompletedAt)
	assert.Empty(t, job.ErrorMessage())
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2026-03-01T09:00:00Z", false},
		{"2026-03-01T09:00:00.5+02:00", false},
		{"2026-03-01T09:00:00.123456", false},
		{"2026-03-01 09:00:00", false},
		{"yesterday", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseTimestamp(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
