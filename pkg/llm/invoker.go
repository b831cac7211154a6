package llm

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"
	"go.uber.org/zap"

	"github.com/helmcode/gherkin-ai/pkg/metrics"
	"github.com/helmcode/gherkin-ai/pkg/prompts"
)

// CallType identifies one of the pipeline's model calls.
type CallType string

const (
	CallGenerate   CallType = "generate"
	CallQuality    CallType = "quality"
	CallComplexity CallType = "complexity"
	CallTitles     CallType = "titles"
)

// CallSettings are the sampling parameters of one call type.
type CallSettings struct {
	Temperature float64
	MaxTokens   int
}

// DefaultCallSettings returns the per-call parameters: feature generation
// is capped at 1500 tokens, title suggestion runs hotter.
func DefaultCallSettings() map[CallType]CallSettings {
	return map[CallType]CallSettings{
		CallGenerate:   {Temperature: 0.3, MaxTokens: 1500},
		CallQuality:    {Temperature: 0.3},
		CallComplexity: {Temperature: 0.3},
		CallTitles:     {Temperature: 0.7},
	}
}

type callSpec struct {
	op     string
	system string
	json   bool
}

var callSpecs = map[CallType]callSpec{
	CallGenerate:   {op: OpGenerateFeature, system: prompts.FeatureSystem},
	CallQuality:    {op: OpAnalyzeFeature, system: prompts.AnalysisSystem, json: true},
	CallComplexity: {op: OpAnalyzeComplexity, system: prompts.AnalysisSystem, json: true},
	CallTitles:     {op: OpSuggestTitle, system: prompts.TitleSystem, json: true},
}

// Invoker issues the pipeline's four model calls. Each call is a single
// attempt; failures come back as *OpError and are never retried.
type Invoker struct {
	llm     LLM
	calls   map[CallType]CallSettings
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

type InvokerOption func(*Invoker)

// WithCallSettings overrides the parameters of one call type.
func WithCallSettings(call CallType, s CallSettings) InvokerOption {
	return func(i *Invoker) {
		i.calls[call] = s
	}
}

// WithTimeout bounds every call. Zero disables the bound.
func WithTimeout(d time.Duration) InvokerOption {
	return func(i *Invoker) {
		i.timeout = d
	}
}

func WithLogger(logger *zap.Logger) InvokerOption {
	return func(i *Invoker) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) InvokerOption {
	return func(i *Invoker) {
		i.metrics = m
	}
}

func NewInvoker(l LLM, opts ...InvokerOption) *Invoker {
	i := &Invoker{
		llm:    l,
		calls:  DefaultCallSettings(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Settings returns the parameters used for a call type.
func (i *Invoker) Settings(call CallType) CallSettings {
	return i.calls[call]
}

func (i *Invoker) GenerateFeature(ctx context.Context, prompt string) (string, error) {
	return i.invoke(ctx, CallGenerate, prompt)
}

func (i *Invoker) AnalyzeQuality(ctx context.Context, prompt string) (string, error) {
	return i.invoke(ctx, CallQuality, prompt)
}

func (i *Invoker) AnalyzeComplexity(ctx context.Context, prompt string) (string, error) {
	return i.invoke(ctx, CallComplexity, prompt)
}

func (i *Invoker) SuggestTitles(ctx context.Context, prompt string) (string, error) {
	return i.invoke(ctx, CallTitles, prompt)
}

func (i *Invoker) invoke(ctx context.Context, call CallType, prompt string) (string, error) {
	spec := callSpecs[call]
	settings := i.calls[call]
	req := Request{
		System:      spec.system,
		Prompt:      prompt,
		Temperature: settings.Temperature,
		MaxTokens:   settings.MaxTokens,
		JSON:        spec.json,
	}

	i.logger.Debug("model call",
		zap.String("call", string(call)),
		zap.String("model", i.llm.GetModel()),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()
	out, err := i.chat(ctx, req)
	elapsed := time.Since(start)
	i.metrics.ObserveModelCall(string(call), elapsed, err)

	if err != nil {
		i.logger.Debug("model call failed", zap.String("call", string(call)), zap.Duration("elapsed", elapsed), zap.Error(err))
		return "", &OpError{Op: spec.op, Err: err}
	}
	i.logger.Debug("model call done", zap.String("call", string(call)), zap.Duration("elapsed", elapsed), zap.Int("output_len", len(out)))
	return out, nil
}

func (i *Invoker) chat(ctx context.Context, req Request) (string, error) {
	if i.timeout <= 0 {
		return i.llm.Chat(ctx, req)
	}
	t := timeout.New[string](timeout.Config{DefaultTimeout: i.timeout})
	return t.Execute(ctx, i.timeout, func(ctx context.Context) (string, error) {
		return i.llm.Chat(ctx, req)
	})
}
