// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package provider talks to the Gemini generateContent API, the one
// networked dependency of the tool.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.5-flash"

	// DefaultRequestsPerMinute is the client-side rate cap.
	DefaultRequestsPerMinute = 120

	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultTimeout = 60 * time.Second

	// maxRetries bounds the retry attempts after the first request.
	maxRetries = 3
)

var (
	errInvalidJSON      = errors.New("response contained invalid JSON")
	errAPIResponseError = errors.New("API response indicated error")
	errEmptyResponse    = errors.New("response contained no candidate text")
)

// backoffBase is the first retry delay; later attempts double it.
var backoffBase = time.Second

// APIError represents an error returned from the Gemini API.
type APIError struct {
	// StatusCode is the HTTP status code from the response.
	StatusCode int

	// Message contains the error message from the API response body,
	// falling back to the HTTP status text.
	Message string

	// Err is the underlying error cause.
	Err error
}

// Error returns a formatted error message including the status code and API message if available.
func (e *APIError) Error() string {
	var b strings.Builder

	b.WriteString(e.Err.Error())

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	b.WriteString(fmt.Sprintf(" (status code: %d)", e.StatusCode))

	return b.String()
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Client is a minimal Gemini REST client.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Model      string
	APIKey     string

	// Limiter paces outgoing requests. Nil disables pacing.
	Limiter *rate.Limiter
}

// Option adjusts a Client built by New.
type Option func(*Client)

// WithModel overrides the generation model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.Model = model
		}
	}
}

// WithBaseURL points the client at a different API host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = hc
	}
}

// WithRequestsPerMinute adjusts the rate cap. Zero or negative disables it.
func WithRequestsPerMinute(rpm int) Option {
	return func(c *Client) {
		if rpm <= 0 {
			c.Limiter = nil

			return
		}

		c.Limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
	}
}

// New builds a client with the default model, endpoint, timeout and rate
// cap. The API key is sent with every request.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		BaseURL:    defaultBaseURL,
		Model:      DefaultModel,
		APIKey:     apiKey,
		Limiter:    rate.NewLimiter(rate.Every(time.Minute/DefaultRequestsPerMinute), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type generatePayload struct {
	Contents []generateContent `json:"contents"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

// Generate sends one prompt and returns the first candidate's text.
// Rate-limit and server-side errors are retried with exponential backoff,
// honoring context cancellation between attempts.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generatePayload{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.BaseURL, c.Model)

	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffBase << (attempt - 1)

			log.Warn().
				Err(lastErr).
				Int("attempt", attempt).
				Dur("backoff", delay).
				Msg("Retrying provider request")

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()

				return "", ctx.Err()
			case <-timer.C:
			}
		}

		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		text, retryable, err := c.generateOnce(ctx, url, payload)
		if err == nil {
			return text, nil
		}

		lastErr = err

		if !retryable {
			return "", err
		}
	}

	return "", lastErr
}

func (c *Client) generateOnce(ctx context.Context, url string, payload []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		// Attempt to extract an error message from the JSON body.
		message := gjson.GetBytes(body, "error.message").String()

		// Fall back to the HTTP status text if no JSON message is found.
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}

		retryable := resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode >= http.StatusInternalServerError

		return "", retryable, &APIError{
			StatusCode: resp.StatusCode,
			Message:    message,
			Err:        errAPIResponseError,
		}
	}

	if !gjson.ValidBytes(body) {
		return "", false, fmt.Errorf("%w: %s", errInvalidJSON, string(body))
	}

	text := gjson.GetBytes(body, "candidates.0.content.parts.0.text").String()
	if text == "" {
		return "", false, errEmptyResponse
	}

	return text, false, nil
}
