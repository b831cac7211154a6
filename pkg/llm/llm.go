// Package llm talks to generative language-model APIs. Providers implement
// LLM; Invoker fixes the per-call parameters used by the feature pipeline.
package llm

import "context"

// Request is one completion request.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	// MaxTokens of 0 leaves the provider default.
	MaxTokens int
	// JSON asks the provider for a single JSON object when it supports it.
	JSON bool
}

// LLM is a single-shot completion backend.
type LLM interface {
	Chat(ctx context.Context, req Request) (string, error)
	GetModel() string
}
