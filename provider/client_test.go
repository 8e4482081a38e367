// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func candidateJSON(t *testing.T, text string) string {
	t.Helper()

	payload := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	return string(data)
}

func TestGenerate(t *testing.T) {
	var (
		calls  int
		path   string
		key    string
		prompt string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		path = r.URL.Path
		key = r.Header.Get("x-goog-api-key")

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		prompt = gjson.GetBytes(body, "contents.0.parts.0.text").String()

		fmt.Fprint(w, candidateJSON(t, "translated text"))
	}))
	defer srv.Close()

	c := New("test-key", WithBaseURL(srv.URL), WithRequestsPerMinute(0))

	got, err := c.Generate(context.Background(), "translate this")
	require.NoError(t, err)

	assert.Equal(t, "translated text", got)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "/models/gemini-2.5-flash:generateContent", path)
	assert.Equal(t, "test-key", key)
	assert.Equal(t, "translate this", prompt)
}

func TestGenerateModelOption(t *testing.T) {
	var path string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path

		fmt.Fprint(w, candidateJSON(t, "ok"))
	}))
	defer srv.Close()

	c := New("k", WithBaseURL(srv.URL), WithModel("gemini-2.5-pro"), WithRequestsPerMinute(0))

	_, err := c.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "/models/gemini-2.5-pro:generateContent", path)
}

func TestGenerateAPIError(t *testing.T) {
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "API key not valid"}}`)
	}))
	defer srv.Close()

	c := New("bad-key", WithBaseURL(srv.URL), WithRequestsPerMinute(0))

	_, err := c.Generate(context.Background(), "p")
	require.Error(t, err)

	var apiErr *APIError

	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "API key not valid", apiErr.Message)

	// Client errors are not retried.
	assert.Equal(t, 1, calls)
}

func TestGenerateRetriesRateLimit(t *testing.T) {
	old := backoffBase
	backoffBase = time.Millisecond

	defer func() { backoffBase = old }()

	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error": {"message": "quota exceeded"}}`)

			return
		}

		fmt.Fprint(w, candidateJSON(t, "eventually"))
	}))
	defer srv.Close()

	c := New("k", WithBaseURL(srv.URL), WithRequestsPerMinute(0))

	got, err := c.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "eventually", got)
	assert.Equal(t, 3, calls)
}

func TestGenerateRetriesExhausted(t *testing.T) {
	old := backoffBase
	backoffBase = time.Millisecond

	defer func() { backoffBase = old }()

	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New("k", WithBaseURL(srv.URL), WithRequestsPerMinute(0))

	_, err := c.Generate(context.Background(), "p")
	require.Error(t, err)

	var apiErr *APIError

	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)

	// HTTP status text stands in when the body has no error message.
	assert.Equal(t, http.StatusText(http.StatusServiceUnavailable), apiErr.Message)

	// One initial attempt plus three retries.
	assert.Equal(t, 4, calls)
}

func TestGenerateContextCancelled(t *testing.T) {
	old := backoffBase
	backoffBase = time.Minute

	defer func() { backoffBase = old }()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())

	c := New("k", WithBaseURL(srv.URL), WithRequestsPerMinute(0))

	done := make(chan error, 1)

	go func() {
		_, err := c.Generate(ctx, "p")
		done <- err
	}()

	// Cancel while the client sits in its first backoff window.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Generate did not return after cancellation")
	}
}

func TestGenerateEmptyCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates": []}`)
	}))
	defer srv.Close()

	c := New("k", WithBaseURL(srv.URL), WithRequestsPerMinute(0))

	_, err := c.Generate(context.Background(), "p")
	assert.True(t, errors.Is(err, errEmptyResponse), "got %v", err)
}
