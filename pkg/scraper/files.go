package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"

	"scrape-dash-go/pkg/models"
)

// ListFiles returns generated CSV files, newest first.
func (c *Client) ListFiles(ctx context.Context) ([]models.GeneratedFile, error) {
	var files []models.GeneratedFile
	if err := c.doGetRequest(ctx, pathFiles, &files); err != nil {
		return nil, err
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Created.After(files[j].Created.Time)
	})
	return files, nil
}

// DeleteFile removes a single CSV file.
func (c *Client) DeleteFile(ctx context.Context, filename string) error {
	if filename == "" {
		return &APIError{Type: ErrorTypeBadRequest, Message: "filename is required"}
	}
	return c.doJSONRequest(ctx, http.MethodDelete, deleteFilePath(filename), nil, nil)
}

// DeleteAllFiles removes every CSV file that is not being written by a running job.
func (c *Client) DeleteAllFiles(ctx context.Context) (*models.Ack, error) {
	var ack models.Ack
	if err := c.doJSONRequest(ctx, http.MethodDelete, pathDeleteAllCSV, nil, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// DownloadURL is the browser-facing link for a single file.
func (c *Client) DownloadURL(filename string) string {
	return c.baseURL + downloadPath(filename)
}

// DownloadAllZipURL is the link for a zip of every finished file.
func (c *Client) DownloadAllZipURL() string {
	return c.baseURL + pathDownloadZip
}

// MergedCSVURL is the link for all finished results merged into one CSV.
func (c *Client) MergedCSVURL() string {
	return c.baseURL + pathDownloadCSV
}

// DownloadFile streams a single file into w and returns the number of bytes written.
func (c *Client) DownloadFile(ctx context.Context, filename string, w io.Writer) (int64, error) {
	return c.download(ctx, downloadPath(filename), w)
}

// DownloadAllZip streams the zip archive of all finished files into w.
func (c *Client) DownloadAllZip(ctx context.Context, w io.Writer) (int64, error) {
	return c.download(ctx, pathDownloadZip, w)
}

// DownloadMergedCSV streams the merged CSV into w.
func (c *Client) DownloadMergedCSV(ctx context.Context, w io.Writer) (int64, error) {
	return c.download(ctx, pathDownloadCSV, w)
}

func (c *Client) download(ctx context.Context, path string, w io.Writer) (int64, error) {
	req, err := c.buildRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.send(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to write download: %w", newTransportError(err))
	}
	return n, nil
}
