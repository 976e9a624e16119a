// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

const (
	// DefaultEndpoint is the fixed upscale endpoint of the Picsart API.
	DefaultEndpoint = "https://api.picsart.io/tools/1.0/upscale"

	// DefaultTimeout leaves room for large payloads on slow links.
	DefaultTimeout = 120 * time.Second

	// maxRetries is the number of additional attempts after the first one.
	maxRetries = 3

	defaultRetryDelay = time.Second

	apiKeyHeader = "X-Picsart-API-Key"
)

// Config carries the immutable request parameters for a Client.
type Config struct {
	Endpoint   string
	APIKey     string
	Quality    string // optional passthrough form field
	Model      string // optional passthrough form field
	Timeout    time.Duration
	RetryDelay time.Duration
}

// Client sends upscale requests to the remote service and persists the
// enlarged image bytes it gets back.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// UpscaleParams describes one upscale call.
type UpscaleParams struct {
	Image      []byte
	Filename   string
	Factor     int
	Format     string
	OutputPath string
}

// UpscaleToFile posts the image to the upscale endpoint and writes the
// response body to OutputPath. The whole send/receive/write sequence is
// retried on any failure, matching the reference client's behavior exactly;
// a classified non-200 response is terminal and never retried, and a 200
// ends the loop immediately.
func (c *Client) UpscaleToFile(ctx context.Context, p UpscaleParams) error {
	var last error
	for attempt := 1; attempt <= maxRetries+1; attempt++ {
		if attempt > 1 {
			c.logger.Warn("retrying upscale request",
				"attempt", attempt, "max_attempts", maxRetries+1, "err", last)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}

		err := c.attempt(ctx, p)
		if err == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return err
		}
		last = err
	}
	return &RetryExhaustedError{Attempts: maxRetries + 1, Last: last}
}

func (c *Client) attempt(ctx context.Context, p UpscaleParams) error {
	form, contentType, err := buildForm(p.Image, p.Filename, p.Factor, p.Format, formOptions{
		Quality: c.cfg.Quality,
		Model:   c.cfg.Model,
	})
	if err != nil {
		return fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, form)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyFailure(resp)
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := os.WriteFile(p.OutputPath, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// classifyFailure extracts a readable message from a non-200 response,
// preferring the JSON "message" field and falling back to the status text.
func classifyFailure(resp *http.Response) *APIError {
	msg := http.StatusText(resp.StatusCode)
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(bytes.TrimSpace(body)) > 0 {
		var payload struct {
			Message string `json:"message"`
		}
		if jerr := json.Unmarshal(body, &payload); jerr == nil && payload.Message != "" {
			msg = payload.Message
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
