// Package features is the create-feature workflow around the analyzer:
// it runs the model calls in order, persists the result and records
// analytics events.
package features

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/helmcode/gherkin-ai/pkg/analyzer"
	"github.com/helmcode/gherkin-ai/pkg/llm"
	"github.com/helmcode/gherkin-ai/pkg/metrics"
	"github.com/helmcode/gherkin-ai/pkg/model"
	"github.com/helmcode/gherkin-ai/pkg/store"
)

// DefaultMinStoryLength is the story length from which titles are suggested.
const DefaultMinStoryLength = 20

const (
	EventFeatureCreated  = "feature_created"
	EventFeatureAnalyzed = "feature_analyzed"
)

// Pipeline stages reported to metrics.
const (
	stageValidate   = "validate"
	stageGenerate   = "generate"
	stageComplexity = "complexity"
	stageQuality    = "quality"
	stagePersist    = "persist"
	stageDone       = "done"
)

// Pipeline is the analyzer surface the service drives.
type Pipeline interface {
	GenerateFeature(ctx context.Context, req model.FeatureRequest) (*model.GeneratedFeature, error)
	AnalyzeFeature(ctx context.Context, content, currentTitle string) (*model.QualityReport, error)
	AnalyzeFeatureComplexity(ctx context.Context, content string) (*model.ComplexityReport, error)
	SuggestTitle(ctx context.Context, story string) (model.TitleSuggestions, error)
}

// Repository is the persistence the service needs. *store.Store implements it.
type Repository interface {
	CreateFeature(ctx context.Context, in store.FeatureInput) (*model.Feature, error)
	GetFeature(ctx context.Context, id string) (*model.Feature, error)
	ListFeatures(ctx context.Context, limit int) ([]model.Feature, error)
	LogAnalyticsEvent(ctx context.Context, in store.EventInput) (*model.AnalyticsEvent, error)
}

// CreateResult is what a create-feature request answers with.
type CreateResult struct {
	Feature    *model.Feature          `json:"feature" yaml:"feature"`
	Complexity *model.ComplexityReport `json:"complexity" yaml:"complexity"`
	Analysis   *model.QualityReport    `json:"analysis" yaml:"analysis"`
}

type Service struct {
	pipeline       Pipeline
	repo           Repository
	logger         *zap.Logger
	metrics        *metrics.Metrics
	minStoryLength int
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithMinStoryLength sets the title suggestion threshold.
func WithMinStoryLength(n int) Option {
	return func(s *Service) {
		s.minStoryLength = n
	}
}

func NewService(p Pipeline, repo Repository, opts ...Option) *Service {
	s := &Service{
		pipeline:       p,
		repo:           repo,
		logger:         zap.NewNop(),
		minStoryLength: DefaultMinStoryLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateFeature generates a feature, scores its complexity and quality,
// then saves it. The three model calls run in sequence and nothing is
// saved unless all of them succeed.
func (s *Service) CreateFeature(ctx context.Context, req model.FeatureRequest) (*CreateResult, error) {
	if err := analyzer.ValidateFeatureRequest(req); err != nil {
		return nil, s.fail(stageValidate, req.Title, llm.WrapOp(llm.OpGenerateFeature, err))
	}

	generated, err := s.pipeline.GenerateFeature(ctx, req)
	if err != nil {
		return nil, s.fail(stageGenerate, req.Title, err)
	}

	complexity, err := s.pipeline.AnalyzeFeatureComplexity(ctx, generated.Content)
	if err != nil {
		return nil, s.fail(stageComplexity, req.Title, err)
	}

	quality, err := s.pipeline.AnalyzeFeature(ctx, generated.Content, req.Title)
	if err != nil {
		return nil, s.fail(stageQuality, req.Title, err)
	}

	feature, err := s.repo.CreateFeature(ctx, store.FeatureInput{
		Title:            req.Title,
		Story:            req.Story,
		GeneratedContent: generated.Content,
		ScenarioCount:    req.ScenarioCount,
	})
	if err != nil {
		return nil, s.fail(stagePersist, req.Title, err)
	}
	s.metrics.ObservePipeline(stageDone, nil)

	s.logEvent(ctx, store.EventInput{
		FeatureID: feature.ID,
		EventType: EventFeatureCreated,
		Payload: map[string]any{
			"scenarioCount":     req.ScenarioCount,
			"overallComplexity": complexity.OverallComplexity,
			"qualityScore":      quality.QualityScore,
		},
	})

	s.logger.Info("feature created",
		zap.String("id", feature.ID),
		zap.String("title", feature.Title),
		zap.Int("overall_complexity", complexity.OverallComplexity),
		zap.Int("quality_score", quality.QualityScore))

	return &CreateResult{Feature: feature, Complexity: complexity, Analysis: quality}, nil
}

// Reanalyze recomputes both reports for a saved feature.
func (s *Service) Reanalyze(ctx context.Context, id string) (*model.Analysis, error) {
	feature, err := s.repo.GetFeature(ctx, id)
	if err != nil {
		return nil, err
	}

	analysis, err := s.Analyze(ctx, feature.GeneratedContent, feature.Title)
	if err != nil {
		s.logger.Error("reanalyze failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logEvent(ctx, store.EventInput{
		FeatureID: feature.ID,
		EventType: EventFeatureAnalyzed,
		Payload: map[string]any{
			"overallComplexity": analysis.Complexity.OverallComplexity,
			"qualityScore":      analysis.Quality.QualityScore,
		},
	})
	s.logger.Info("feature reanalyzed", zap.String("id", feature.ID))
	return analysis, nil
}

// Analyze scores arbitrary content: complexity first, then quality.
func (s *Service) Analyze(ctx context.Context, content, title string) (*model.Analysis, error) {
	complexity, err := s.pipeline.AnalyzeFeatureComplexity(ctx, content)
	if err != nil {
		return nil, err
	}
	quality, err := s.pipeline.AnalyzeFeature(ctx, content, title)
	if err != nil {
		return nil, err
	}
	return &model.Analysis{Complexity: complexity, Quality: quality}, nil
}

// AnalyzeQuality scores ad-hoc content that is not saved.
func (s *Service) AnalyzeQuality(ctx context.Context, content, title string) (*model.QualityReport, error) {
	return s.pipeline.AnalyzeFeature(ctx, content, title)
}

// AnalyzeComplexity scores ad-hoc content that is not saved.
func (s *Service) AnalyzeComplexity(ctx context.Context, content string) (*model.ComplexityReport, error) {
	return s.pipeline.AnalyzeFeatureComplexity(ctx, content)
}

// SuggestTitles returns an empty list without calling the model when the
// story is too short.
func (s *Service) SuggestTitles(ctx context.Context, story string) (model.TitleSuggestions, error) {
	if !ShouldSuggestTitles(story, s.minStoryLength) {
		s.metrics.TitleSuggestionSkipped()
		return model.TitleSuggestions{}, nil
	}

	titles, err := s.pipeline.SuggestTitle(ctx, story)
	if err != nil {
		s.logger.Error("title suggestion failed", zap.Error(err))
		return nil, err
	}
	return titles, nil
}

func (s *Service) GetFeature(ctx context.Context, id string) (*model.Feature, error) {
	return s.repo.GetFeature(ctx, id)
}

func (s *Service) ListFeatures(ctx context.Context, limit int) ([]model.Feature, error) {
	return s.repo.ListFeatures(ctx, limit)
}

// ShouldSuggestTitles reports whether story is long enough for title
// suggestions. Length is counted in characters after trimming, and a
// story of exactly min characters qualifies.
func ShouldSuggestTitles(story string, min int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(story)) >= min
}

func (s *Service) fail(stage, title string, err error) error {
	s.metrics.ObservePipeline(stage, err)
	s.logger.Error("create feature failed",
		zap.String("stage", stage),
		zap.String("title", title),
		zap.Error(err))
	return err
}

// logEvent records an analytics event. The feature is already saved at
// this point, so a failure is logged and counted but not returned.
func (s *Service) logEvent(ctx context.Context, ev store.EventInput) {
	if _, err := s.repo.LogAnalyticsEvent(ctx, ev); err != nil {
		s.metrics.AnalyticsEventFailed()
		s.logger.Error("failed to log analytics event",
			zap.String("event", ev.EventType),
			zap.String("feature_id", ev.FeatureID),
			zap.Error(err))
	}
}
