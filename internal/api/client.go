// Package api implements the REST client for the PLC AutoConfig
// backend. All retry and error normalization lives here so call sites
// stay free of transport concerns.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/logger"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/metrics"
)

// APIError is a non-2xx server response. The message is the server's
// detail field verbatim, falling back to the HTTP status text.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return e.Detail
}

// IsNotFound reports whether err is a server 404. The recovery layer
// treats these as "project lost to a cold start", not as terminal.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to the backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
	maxRetries int
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

func WithRetries(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryDelay = delay
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(baseURL string, timeout time.Duration, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:     log.WithFields(map[string]interface{}{"component": "api-client"}),
		maxRetries: 2,
		retryDelay: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doJSON issues a request with an optional JSON body and decodes the
// 2xx response into out. Transport failures are retried with a fixed
// delay; HTTP error responses are never retried here — the recovery and
// polling layers decide what a 404 or 503 means for their operation.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = data
	}

	build := func() (*http.Request, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	}

	return c.execute(method, path, build, out)
}

// doMultipart issues a multipart upload. The Content-Type header is set
// by the multipart writer so the transport keeps the boundary intact.
func (c *Client) doMultipart(ctx context.Context, method, path string, files []UploadFile, out interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Filename)
		if err != nil {
			return fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return fmt.Errorf("failed to write form file %s: %w", f.Filename, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	body := buf.Bytes()
	build := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req, nil
	}

	return c.execute(method, path, build, out)
}

func (c *Client) execute(method, path string, build func() (*http.Request, error), out interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying request", map[string]interface{}{
				"method":  method,
				"path":    path,
				"attempt": attempt,
			})
			time.Sleep(c.retryDelay)
		}

		req, err := build()
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		metrics.APIRequestDuration.WithLabelValues(path, method).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.APIRequestsTotal.WithLabelValues(path, method, "transport_error").Inc()
			lastErr = err
			if req.Context().Err() != nil {
				// caller cancelled or timed out; no point retrying
				return fmt.Errorf("request failed: %w", err)
			}
			continue
		}

		return c.handleResponse(resp, method, path, out)
	}

	return fmt.Errorf("request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) handleResponse(resp *http.Response, method, path string, out interface{}) error {
	defer resp.Body.Close()

	metrics.APIRequestsTotal.WithLabelValues(path, method, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Detail:     extractDetail(body, resp.StatusCode),
		}
	}

	if out == nil || len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// extractDetail pulls the server's {"detail": "..."} message. It is
// surfaced to the user unmodified.
func extractDetail(body []byte, statusCode int) string {
	var errBody struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Detail != "" {
		return errBody.Detail
	}
	return http.StatusText(statusCode)
}
