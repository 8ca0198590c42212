package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"scrape-dash-go/pkg/models"
)

// StartScrape submits queries and returns the server-assigned job.
func (c *Client) StartScrape(ctx context.Context, queries []string, location string) (*models.ScrapeStarted, error) {
	var started models.ScrapeStarted
	payload := models.ScrapeRequest{Queries: queries, Location: location}
	if err := c.doJSONRequest(ctx, http.MethodPost, pathScrape, payload, &started); err != nil {
		return nil, err
	}
	if started.JobID == "" {
		return nil, newInvalidResponseError("start response has no job_id", nil)
	}
	return &started, nil
}

// GetJobStatus fetches the current snapshot of a job. A job the server does
// not know yields an *APIError with Type ErrorTypeNotFound.
func (c *Client) GetJobStatus(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	if err := c.doGetRequest(ctx, statusPath(jobID), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetActiveJob returns the job the backend currently considers active, or nil.
func (c *Client) GetActiveJob(ctx context.Context) (*models.Job, error) {
	var raw json.RawMessage
	if err := c.doGetRequest(ctx, pathActiveJob, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var job models.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, newInvalidResponseError("failed to parse active job", err)
	}
	if job.JobID == "" {
		return nil, nil
	}
	return &job, nil
}

// TerminateJob asks the backend to stop a running job.
func (c *Client) TerminateJob(ctx context.Context, jobID string) (*models.Ack, error) {
	var ack models.Ack
	if err := c.doJSONRequest(ctx, http.MethodPost, terminatePath(jobID), nil, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// ClearJobStatus removes the job record from the backend.
func (c *Client) ClearJobStatus(ctx context.Context, jobID string) error {
	return c.doJSONRequest(ctx, http.MethodDelete, clearStatusPath(jobID), nil, nil)
}
