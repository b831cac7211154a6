package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider represents the LLM provider type
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
	ProviderGemini Provider = "gemini"
)

const defaultTimeout = 2 * time.Minute

// Options selects and tunes a provider. API keys always come from the
// environment.
type Options struct {
	Provider Provider
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// Factory creates LLM instances based on provider
type Factory struct {
	getenv func(string) string
}

// NewFactory creates a new LLM factory
func NewFactory() *Factory {
	return &Factory{getenv: os.Getenv}
}

// ParseProvider accepts the provider names used in config and flags.
func ParseProvider(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "openai", "":
		return ProviderOpenAI, nil
	case "claude", "anthropic":
		return ProviderClaude, nil
	case "gemini", "google":
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("unsupported LLM provider: %s (supported: openai, claude, gemini)", name)
	}
}

// CreateLLM creates an LLM instance based on provider and configuration
func (f *Factory) CreateLLM(ctx context.Context, provider Provider, config map[string]string) (LLM, error) {
	apiKey := config["api_key"]
	model := config["model"]
	baseURL := config["base_url"]

	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIWithClient(apiKey, model, baseURL, nil), nil

	case ProviderClaude:
		if apiKey == "" {
			return nil, fmt.Errorf("Claude API key is required")
		}
		return NewClaudeWithClient(apiKey, model, baseURL, nil), nil

	case ProviderGemini:
		return NewGemini(ctx, apiKey, model)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// Create resolves the API key and model for opts from the environment and
// builds the provider. An explicit opts.Model wins over the *_MODEL variable.
func (f *Factory) Create(ctx context.Context, opts Options) (LLM, error) {
	provider := opts.Provider
	if provider == "" {
		p, err := ParseProvider(f.getenv("LLM_PROVIDER"))
		if err != nil {
			return nil, err
		}
		provider = p
	}

	keyVar, modelVar := envVars(provider)
	if keyVar == "" {
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
	apiKey := f.getenv(keyVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable not set", keyVar)
	}
	model := opts.Model
	if model == "" {
		model = f.getenv(modelVar)
	}

	l, err := f.CreateLLM(ctx, provider, map[string]string{
		"api_key":  apiKey,
		"model":    model,
		"base_url": opts.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	if opts.Timeout > 0 {
		if t, ok := l.(interface{ SetTimeout(time.Duration) }); ok {
			t.SetTimeout(opts.Timeout)
		}
	}
	return l, nil
}

// GetAvailableProviders returns a list of available LLM providers
func (f *Factory) GetAvailableProviders() []Provider {
	return []Provider{ProviderOpenAI, ProviderClaude, ProviderGemini}
}

func envVars(p Provider) (key, model string) {
	switch p {
	case ProviderOpenAI:
		return "OPENAI_API_KEY", "OPENAI_MODEL"
	case ProviderClaude:
		return "ANTHROPIC_API_KEY", "CLAUDE_MODEL"
	case ProviderGemini:
		return "GEMINI_API_KEY", "GEMINI_MODEL"
	}
	return "", ""
}
