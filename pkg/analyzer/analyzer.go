// Package analyzer runs the feature pipeline: prompt building, the model
// call, and normalization or parsing of what comes back.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/helmcode/gherkin-ai/pkg/gherkin"
	"github.com/helmcode/gherkin-ai/pkg/llm"
	"github.com/helmcode/gherkin-ai/pkg/model"
	"github.com/helmcode/gherkin-ai/pkg/parser"
	"github.com/helmcode/gherkin-ai/pkg/prompts"
)

// ErrInvalidInput marks caller mistakes detected before any model call.
var ErrInvalidInput = errors.New("invalid input")

// Model has one method per model call type. *llm.Invoker implements it.
type Model interface {
	GenerateFeature(ctx context.Context, prompt string) (string, error)
	AnalyzeQuality(ctx context.Context, prompt string) (string, error)
	AnalyzeComplexity(ctx context.Context, prompt string) (string, error)
	SuggestTitles(ctx context.Context, prompt string) (string, error)
}

type Analyzer struct {
	model  Model
	logger *zap.Logger
}

func New(m Model, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{model: m, logger: logger}
}

// NewWithLLM wraps a provider in an Invoker with the default call settings.
func NewWithLLM(l llm.LLM, logger *zap.Logger, opts ...llm.InvokerOption) *Analyzer {
	opts = append([]llm.InvokerOption{llm.WithLogger(logger)}, opts...)
	return New(llm.NewInvoker(l, opts...), logger)
}

// NewFromEnv picks the provider from LLM_PROVIDER and its API key variable.
func NewFromEnv(ctx context.Context, logger *zap.Logger) (*Analyzer, error) {
	l, err := llm.NewFactory().Create(ctx, llm.Options{})
	if err != nil {
		return nil, err
	}
	return NewWithLLM(l, logger), nil
}

// GenerateFeature produces a normalized feature file for the request.
func (a *Analyzer) GenerateFeature(ctx context.Context, req model.FeatureRequest) (*model.GeneratedFeature, error) {
	if err := ValidateFeatureRequest(req); err != nil {
		return nil, llm.WrapOp(llm.OpGenerateFeature, err)
	}

	prompt := prompts.BuildFeaturePrompt(req.Title, req.Story, req.ScenarioCount)
	raw, err := a.model.GenerateFeature(ctx, prompt)
	if err != nil {
		return nil, llm.WrapOp(llm.OpGenerateFeature, err)
	}

	content := gherkin.Normalize(raw, req.Title)
	if strings.TrimSpace(content) == gherkin.Tag(req.Title) {
		return nil, llm.WrapOp(llm.OpGenerateFeature, errors.New("model returned no feature content"))
	}
	n := gherkin.CountScenarios(content)
	if n != req.ScenarioCount {
		a.logger.Warn("scenario count differs from request",
			zap.String("title", req.Title),
			zap.Int("requested", req.ScenarioCount),
			zap.Int("generated", n))
	}
	a.logger.Debug("feature generated",
		zap.String("title", req.Title),
		zap.Int("scenarios", n),
		zap.Bool("background", gherkin.HasBackground(content)))

	return &model.GeneratedFeature{Content: content, Tag: gherkin.Tag(req.Title)}, nil
}

// AnalyzeFeature scores the quality of a feature file.
func (a *Analyzer) AnalyzeFeature(ctx context.Context, content, currentTitle string) (*model.QualityReport, error) {
	if strings.TrimSpace(content) == "" {
		return nil, llm.WrapOp(llm.OpAnalyzeFeature, fmt.Errorf("%w: content is required", ErrInvalidInput))
	}

	raw, err := a.model.AnalyzeQuality(ctx, prompts.BuildQualityPrompt(content, currentTitle))
	if err != nil {
		return nil, llm.WrapOp(llm.OpAnalyzeFeature, err)
	}
	report, err := parser.ParseQualityResponse(raw)
	if err != nil {
		return nil, llm.WrapOp(llm.OpAnalyzeFeature, err)
	}
	return report, nil
}

// AnalyzeFeatureComplexity scores every scenario of a feature file.
func (a *Analyzer) AnalyzeFeatureComplexity(ctx context.Context, content string) (*model.ComplexityReport, error) {
	if strings.TrimSpace(content) == "" {
		return nil, llm.WrapOp(llm.OpAnalyzeComplexity, fmt.Errorf("%w: content is required", ErrInvalidInput))
	}

	raw, err := a.model.AnalyzeComplexity(ctx, prompts.BuildComplexityPrompt(content))
	if err != nil {
		return nil, llm.WrapOp(llm.OpAnalyzeComplexity, err)
	}
	report, err := parser.ParseComplexityResponse(raw)
	if err != nil {
		return nil, llm.WrapOp(llm.OpAnalyzeComplexity, err)
	}
	return report, nil
}

// SuggestTitle asks for alternative titles for a story. The story length
// precondition belongs to the caller.
func (a *Analyzer) SuggestTitle(ctx context.Context, story string) (model.TitleSuggestions, error) {
	if strings.TrimSpace(story) == "" {
		return nil, llm.WrapOp(llm.OpSuggestTitle, fmt.Errorf("%w: story is required", ErrInvalidInput))
	}

	raw, err := a.model.SuggestTitles(ctx, prompts.BuildTitlePrompt(story))
	if err != nil {
		return nil, llm.WrapOp(llm.OpSuggestTitle, err)
	}
	titles, err := parser.ParseTitleResponse(raw)
	if err != nil {
		return nil, llm.WrapOp(llm.OpSuggestTitle, err)
	}
	return titles, nil
}

// ValidateFeatureRequest checks the fields a generation needs.
func ValidateFeatureRequest(req model.FeatureRequest) error {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case strings.TrimSpace(req.Story) == "":
		return fmt.Errorf("%w: story is required", ErrInvalidInput)
	case req.ScenarioCount < 1:
		return fmt.Errorf("%w: scenario count must be at least 1", ErrInvalidInput)
	}
	return nil
}
