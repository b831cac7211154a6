package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultClaudeModel     = "claude-sonnet-4-20250514"
	defaultClaudeBaseURL   = "https://api.anthropic.com/v1"
	defaultClaudeMaxTokens = 4000

	// Claude has no JSON response switch; the instruction rides on the system prompt.
	claudeJSONInstruction = "Respond with a single JSON object only, without markdown code fences."
)

type Claude struct {
	apiKey  string
	baseURL string
	client  *http.Client
	model   string
}

func NewClaude(apiKey string) *Claude {
	return NewClaudeWithModel(apiKey, defaultClaudeModel)
}

func NewClaudeWithModel(apiKey, model string) *Claude {
	return &Claude{
		apiKey:  apiKey,
		baseURL: defaultClaudeBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		model:   model,
	}
}

func NewClaudeWithClient(apiKey, model, baseURL string, client *http.Client) *Claude {
	c := NewClaudeWithModel(apiKey, model)
	if model == "" {
		c.model = defaultClaudeModel
	}
	if baseURL != "" {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
	if client != nil {
		c.client = client
	}
	return c
}

func (c *Claude) SetTimeout(d time.Duration) {
	c.client.Timeout = d
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model       string          `json:"model"`
	System      string          `json:"system,omitempty"`
	Messages    []claudeMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

func (c *Claude) Chat(ctx context.Context, req Request) (string, error) {
	system := req.System
	if req.JSON {
		system = strings.TrimSpace(system + "\n" + claudeJSONInstruction)
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	jsonBody, err := json.Marshal(claudeRequest{
		Model:       c.model,
		System:      system,
		Messages:    []claudeMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Claude API error (status %d): %s", resp.StatusCode, string(respBytes))
	}

	// Minimal struct to pull out the content text.
	var claudeResp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &claudeResp); err != nil {
		return "", err
	}
	if claudeResp.Error.Message != "" {
		return "", fmt.Errorf("Claude API error: %s", claudeResp.Error.Message)
	}
	if len(claudeResp.Content) == 0 {
		return "", fmt.Errorf("empty response from Claude")
	}
	return claudeResp.Content[0].Text, nil
}

func (c *Claude) GetModel() string {
	return c.model
}
