package ai

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

func TestClaudeSummarizer_Success(t *testing.T) {
	var got apiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Focus on the Penguin."},{"type":"text","text":" Then the Batmobile."}]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClaudeSummarizer(ClaudeConfig{APIKey: "test-key", BaseURL: srv.URL + "/", MaxTokens: 256})
	resp, err := c.Summarize(context.Background(), SummaryRequest{OpenTasks: []OpenTask{
		{Name: "Investigate Penguin", Description: "Docks"},
		{Name: "Repair Batmobile", Description: "No description"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Focus on the Penguin. Then the Batmobile.", resp.Summary)

	assert.Equal(t, defaultModel, got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content[0].Text, "Open Tasks:\n- Investigate Penguin: Docks\n- Repair Batmobile: No description\n")
}

func TestClaudeSummarizer_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClaudeSummarizer(ClaudeConfig{BaseURL: srv.URL})
	_, err := c.Summarize(context.Background(), SummaryRequest{OpenTasks: []OpenTask{{Name: "a", Description: "b"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error (401): invalid x-api-key")
}

func TestClaudeSummarizer_EmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"  "}]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClaudeSummarizer(ClaudeConfig{BaseURL: srv.URL})
	_, err := c.Summarize(context.Background(), SummaryRequest{OpenTasks: []OpenTask{{Name: "a", Description: "b"}}})
	assert.Error(t, err)
}

func TestLookupAPIKey(t *testing.T) {
	env := func(v string) func(string) string {
		return func(string) string { return v }
	}
	ring := func(v string, err error) func(string) (string, error) {
		return func(key string) (string, error) {
			assert.Equal(t, APIKeyCredential, key)
			return v, err
		}
	}

	assert.Equal(t, "from-env", lookupAPIKey(env(" from-env "), ring("from-ring", nil)))
	assert.Equal(t, "from-ring", lookupAPIKey(env(""), ring("from-ring\n", nil)))
	assert.Empty(t, lookupAPIKey(env(""), ring("", errors.New("not found"))))
}
