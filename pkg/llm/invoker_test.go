package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/gherkin-ai/pkg/metrics"
	"github.com/helmcode/gherkin-ai/pkg/prompts"
)

type recordingLLM struct {
	out   string
	err   error
	delay time.Duration
	reqs  []Request
}

func (r *recordingLLM) Chat(ctx context.Context, req Request) (string, error) {
	r.reqs = append(r.reqs, req)
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return r.out, r.err
}

func (r *recordingLLM) GetModel() string { return "fake" }

func TestInvoker_CallParameters(t *testing.T) {
	tests := []struct {
		name     string
		call     func(*Invoker) (string, error)
		system   string
		temp     float64
		max      int
		jsonMode bool
	}{
		{"generate", func(i *Invoker) (string, error) { return i.GenerateFeature(context.Background(), "p") }, prompts.FeatureSystem, 0.3, 1500, false},
		{"quality", func(i *Invoker) (string, error) { return i.AnalyzeQuality(context.Background(), "p") }, prompts.AnalysisSystem, 0.3, 0, true},
		{"complexity", func(i *Invoker) (string, error) { return i.AnalyzeComplexity(context.Background(), "p") }, prompts.AnalysisSystem, 0.3, 0, true},
		{"titles", func(i *Invoker) (string, error) { return i.SuggestTitles(context.Background(), "p") }, prompts.TitleSystem, 0.7, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &recordingLLM{out: "ok"}
			out, err := tt.call(NewInvoker(fake))
			require.NoError(t, err)
			assert.Equal(t, "ok", out)

			require.Len(t, fake.reqs, 1)
			req := fake.reqs[0]
			assert.Equal(t, "p", req.Prompt)
			assert.Equal(t, tt.system, req.System)
			assert.Equal(t, tt.temp, req.Temperature)
			assert.Equal(t, tt.max, req.MaxTokens)
			assert.Equal(t, tt.jsonMode, req.JSON)
		})
	}
}

func TestInvoker_WrapsFailures(t *testing.T) {
	cause := errors.New("connection reset")
	tests := []struct {
		name string
		call func(*Invoker) (string, error)
		want string
	}{
		{"generate", func(i *Invoker) (string, error) { return i.GenerateFeature(context.Background(), "p") }, "Failed to generate feature: connection reset"},
		{"quality", func(i *Invoker) (string, error) { return i.AnalyzeQuality(context.Background(), "p") }, "Failed to analyze feature: connection reset"},
		{"complexity", func(i *Invoker) (string, error) { return i.AnalyzeComplexity(context.Background(), "p") }, "Failed to analyze feature complexity: connection reset"},
		{"titles", func(i *Invoker) (string, error) { return i.SuggestTitles(context.Background(), "p") }, "Failed to suggest title: connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &recordingLLM{err: cause}
			_, err := tt.call(NewInvoker(fake))
			require.Error(t, err)
			assert.EqualError(t, err, tt.want)
			assert.ErrorIs(t, err, cause)
			assert.Len(t, fake.reqs, 1, "calls are never retried")
		})
	}
}

func TestInvoker_CallSettingsOverride(t *testing.T) {
	fake := &recordingLLM{out: "ok"}
	inv := NewInvoker(fake, WithCallSettings(CallTitles, CallSettings{Temperature: 1.1, MaxTokens: 200}))

	_, err := inv.SuggestTitles(context.Background(), "p")
	require.NoError(t, err)

	assert.Equal(t, 1.1, fake.reqs[0].Temperature)
	assert.Equal(t, 200, fake.reqs[0].MaxTokens)
	assert.Equal(t, DefaultCallSettings()[CallGenerate], inv.Settings(CallGenerate))
}

func TestInvoker_Timeout(t *testing.T) {
	fake := &recordingLLM{out: "late", delay: time.Second}
	inv := NewInvoker(fake, WithTimeout(20*time.Millisecond))

	_, err := inv.GenerateFeature(context.Background(), "p")
	require.Error(t, err)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, OpGenerateFeature, opErr.Op)
}

func TestInvoker_RecordsMetrics(t *testing.T) {
	m := metrics.New()
	inv := NewInvoker(&recordingLLM{out: "ok"}, WithMetrics(m))

	_, err := inv.AnalyzeComplexity(context.Background(), "p")
	require.NoError(t, err)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "gherkin_ai_model_calls_total" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, 1.0, f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}
