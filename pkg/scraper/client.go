package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client is an HTTP client for the scrape backend API
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger attaches a structured logger for request outcomes.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a new API client
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	// Remove trailing slash from base URL
	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// buildRequest creates an HTTP request with proper headers
func (c *Client) buildRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := fmt.Sprintf("%s%s", c.baseURL, path)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	return req, nil
}

// send performs the round trip and converts transport and status failures
// into *APIError. On success the caller owns resp.Body.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	reqID := req.Header.Get("X-Request-ID")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := newTransportError(err)
		c.log.Debug("backend request failed",
			zap.String("request_id", reqID),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(apiErr))
		return nil, apiErr
	}

	c.log.Debug("backend request",
		zap.String("request_id", reqID),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, newStatusError(resp.StatusCode, errorMessage(resp, body))
	}

	return resp, nil
}

// doRequest performs an HTTP request and decodes a JSON response into result
func (c *Client) doRequest(req *http.Request, result interface{}) error {
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return newTransportError(err)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return newInvalidResponseError("failed to parse response", err)
		}
	}

	return nil
}

// doJSONRequest performs a JSON request (POST, PUT, DELETE with body)
func (c *Client) doJSONRequest(ctx context.Context, method, path string, payload interface{}, result interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := c.buildRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	return c.doRequest(req, result)
}

// doGetRequest performs a GET request
func (c *Client) doGetRequest(ctx context.Context, path string, result interface{}) error {
	req, err := c.buildRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	return c.doRequest(req, result)
}

// errorMessage extracts the backend's error text. FastAPI uses {"detail": ...},
// other services use {"error": ...}.
func errorMessage(resp *http.Response, body []byte) string {
	var errorResp struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResp); err == nil {
		if len(errorResp.Detail) > 0 {
			var s string
			if json.Unmarshal(errorResp.Detail, &s) == nil && s != "" {
				return s
			}
			return string(errorResp.Detail)
		}
		if errorResp.Error != "" {
			return errorResp.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}
	return msg
}
