package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaude_Chat(t *testing.T) {
	var got claudeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"quality_score\":80}"}]}`))
	}))
	defer server.Close()

	c := NewClaudeWithClient("test-key", "claude-test", server.URL, server.Client())
	out, err := c.Chat(context.Background(), Request{System: "review", Prompt: "p", Temperature: 0.3, JSON: true})
	require.NoError(t, err)

	assert.Equal(t, `{"quality_score":80}`, out)
	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, defaultClaudeMaxTokens, got.MaxTokens)
	assert.Equal(t, 0.3, got.Temperature)
	assert.Equal(t, "review\n"+claudeJSONInstruction, got.System)
	assert.Equal(t, []claudeMessage{{Role: "user", Content: "p"}}, got.Messages)
}

func TestClaude_Chat_MaxTokens(t *testing.T) {
	var got claudeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"text":"Feature: X"}]}`))
	}))
	defer server.Close()

	c := NewClaudeWithClient("k", "", server.URL, server.Client())
	_, err := c.Chat(context.Background(), Request{Prompt: "p", MaxTokens: 1500})
	require.NoError(t, err)

	assert.Equal(t, 1500, got.MaxTokens)
	assert.Equal(t, defaultClaudeModel, got.Model)
	assert.Empty(t, got.System)
}

func TestClaude_Chat_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http status", http.StatusTooManyRequests, `{}`, "Claude API error (status 429)"},
		{"api error body", http.StatusOK, `{"error":{"message":"overloaded"}}`, "Claude API error: overloaded"},
		{"no content", http.StatusOK, `{"content":[]}`, "empty response from Claude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClaudeWithClient("k", "m", server.URL, server.Client())
			_, err := c.Chat(context.Background(), Request{Prompt: "p"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
