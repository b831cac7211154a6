package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    Provider
		wantErr bool
	}{
		{"", ProviderOpenAI, false},
		{"OpenAI", ProviderOpenAI, false},
		{"claude", ProviderClaude, false},
		{"anthropic", ProviderClaude, false},
		{" gemini ", ProviderGemini, false},
		{"google", ProviderGemini, false},
		{"llama", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseProvider(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFactory_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("openai from env", func(t *testing.T) {
		f := &Factory{getenv: fakeEnv(map[string]string{"OPENAI_API_KEY": "sk", "OPENAI_MODEL": "gpt-env"})}
		l, err := f.Create(ctx, Options{})
		require.NoError(t, err)
		require.IsType(t, &OpenAI{}, l)
		assert.Equal(t, "gpt-env", l.GetModel())
	})

	t.Run("explicit model wins over env", func(t *testing.T) {
		f := &Factory{getenv: fakeEnv(map[string]string{"OPENAI_API_KEY": "sk", "OPENAI_MODEL": "gpt-env"})}
		l, err := f.Create(ctx, Options{Provider: ProviderOpenAI, Model: "gpt-flag", Timeout: 5 * time.Second})
		require.NoError(t, err)
		assert.Equal(t, "gpt-flag", l.GetModel())
		assert.Equal(t, 5*time.Second, l.(*OpenAI).client.Timeout)
	})

	t.Run("claude via LLM_PROVIDER", func(t *testing.T) {
		f := &Factory{getenv: fakeEnv(map[string]string{"LLM_PROVIDER": "claude", "ANTHROPIC_API_KEY": "sk-ant"})}
		l, err := f.Create(ctx, Options{})
		require.NoError(t, err)
		require.IsType(t, &Claude{}, l)
		assert.Equal(t, defaultClaudeModel, l.GetModel())
	})

	t.Run("missing key", func(t *testing.T) {
		f := &Factory{getenv: fakeEnv(nil)}
		_, err := f.Create(ctx, Options{Provider: ProviderClaude})
		assert.EqualError(t, err, "ANTHROPIC_API_KEY environment variable not set")
	})

	t.Run("unknown provider in env", func(t *testing.T) {
		f := &Factory{getenv: fakeEnv(map[string]string{"LLM_PROVIDER": "llama"})}
		_, err := f.Create(ctx, Options{})
		assert.Error(t, err)
	})

	t.Run("unknown provider in options", func(t *testing.T) {
		f := &Factory{getenv: fakeEnv(nil)}
		_, err := f.Create(ctx, Options{Provider: "llama"})
		assert.EqualError(t, err, "unsupported LLM provider: llama")
	})
}

func TestFactory_CreateLLM(t *testing.T) {
	f := NewFactory()

	_, err := f.CreateLLM(context.Background(), ProviderOpenAI, map[string]string{})
	assert.EqualError(t, err, "OpenAI API key is required")

	_, err = f.CreateLLM(context.Background(), ProviderClaude, map[string]string{})
	assert.EqualError(t, err, "Claude API key is required")

	l, err := f.CreateLLM(context.Background(), ProviderOpenAI, map[string]string{"api_key": "k", "base_url": "http://proxy/v1/"})
	require.NoError(t, err)
	assert.Equal(t, "http://proxy/v1", l.(*OpenAI).baseURL)

	assert.Len(t, f.GetAvailableProviders(), 3)
}
