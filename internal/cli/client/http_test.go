package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIClientWithConfig_RejectsBadURL(t *testing.T) {
	_, err := NewAPIClientWithConfig("", "localhost:8080")
	assert.ErrorContains(t, err, "invalid API URL")
}

func TestNewAPIClientWithCmd_EnvAndDefault(t *testing.T) {
	t.Setenv(envAPIKey, "")
	t.Setenv(envAPIURL, "")
	c, err := NewAPIClientWithCmd(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultAPIURL, c.baseURL)
	assert.Empty(t, c.apiKey)

	t.Setenv(envAPIKey, "tqa_env")
	t.Setenv(envAPIURL, "https://qa.example.org/")
	c, err = NewAPIClientWithCmd(nil)
	require.NoError(t, err)
	assert.Equal(t, "https://qa.example.org", c.baseURL)
	assert.Equal(t, "tqa_env", c.apiKey)
}

func TestAPIClient_Ask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/answer", r.URL.Path)
		assert.Equal(t, "Bearer tqa_key", r.Header.Get("Authorization"))
		assert.Equal(t, "cli:test", r.Header.Get(askerIDHeader))

		var req answerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "temple timings", req.Query)
		assert.Equal(t, "cli:test", req.AskerID)
		assert.Equal(t, "2026-10-16T10:00:00-04:00", req.ReferenceTime)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"answer":"OPEN until 12:00 PM","handler":"hours","state":"handled"}}`))
	}))
	defer srv.Close()

	c, err := NewAPIClientWithConfig("tqa_key", srv.URL)
	require.NoError(t, err)

	result, err := c.WithAskerID("cli:test").Ask(context.Background(), "temple timings", "2026-10-16T10:00:00-04:00")
	require.NoError(t, err)
	assert.Equal(t, "OPEN until 12:00 PM", result.Answer)
	assert.Equal(t, "hours", result.Handler)
	assert.Equal(t, "handled", result.State)
}

func TestAPIClient_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":{"status":"CLOSED, opens at 6:00 PM","time":"2026-10-16T13:00:00-04:00"}}`))
	}))
	defer srv.Close()

	c, err := NewAPIClientWithConfig("", srv.URL)
	require.NoError(t, err)

	result, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "CLOSED, opens at 6:00 PM", result.Status)
}

func TestAPIClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		code    string
	}{
		{name: "json error", status: http.StatusTooManyRequests, body: `{"error":"too many requests","code":"RATE_LIMITED"}`, message: "too many requests", code: "RATE_LIMITED"},
		{name: "plain text error", status: http.StatusBadGateway, body: "upstream down\n", message: "upstream down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewAPIClientWithConfig("", srv.URL)
			require.NoError(t, err)

			_, err = c.Ask(context.Background(), "hi", "")
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}
