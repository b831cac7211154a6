package features

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/gherkin-ai/pkg/analyzer"
	"github.com/helmcode/gherkin-ai/pkg/llm"
	"github.com/helmcode/gherkin-ai/pkg/metrics"
	"github.com/helmcode/gherkin-ai/pkg/model"
	"github.com/helmcode/gherkin-ai/pkg/store"
)

// scriptedModel answers each call type with fixed output and records the
// order of calls.
type scriptedModel struct {
	out   map[string]string
	errs  map[string]error
	calls []string
}

func (m *scriptedModel) answer(call string) (string, error) {
	m.calls = append(m.calls, call)
	return m.out[call], m.errs[call]
}

func (m *scriptedModel) GenerateFeature(context.Context, string) (string, error) {
	return m.answer("generate")
}

func (m *scriptedModel) AnalyzeQuality(context.Context, string) (string, error) {
	return m.answer("quality")
}

func (m *scriptedModel) AnalyzeComplexity(context.Context, string) (string, error) {
	return m.answer("complexity")
}

func (m *scriptedModel) SuggestTitles(context.Context, string) (string, error) {
	return m.answer("titles")
}

func newScriptedModel() *scriptedModel {
	return &scriptedModel{
		out: map[string]string{
			"generate": "@x\nFeature: Password Reset\n\nAs a user, I want to reset my password\n\n" +
				"Scenario: Link sent\n  When I ask\n  Then I get a link\n\n" +
				"Scenario: Link expired\n  When I wait\n  Then it fails",
			"complexity": `{"overallComplexity": 15, "scenarios": [{"name": "Link sent", "complexity": 3, "factors": {"stepCount": 2}}], "recommendations": ["split"]}`,
			"quality":    `{"quality_score": 120, "suggestions": ["be declarative"]}`,
			"titles":     `{"titles": ["Reset Password", "Account Recovery"]}`,
		},
		errs: map[string]error{},
	}
}

func newTestService(t *testing.T, m *scriptedModel) (*Service, *store.Store, *metrics.Metrics) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "features.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	met := metrics.New()
	return NewService(analyzer.New(m, nil), st, WithMetrics(met)), st, met
}

var passwordReset = model.FeatureRequest{
	Title:         "Password Reset",
	Story:         "As a user, I want to reset my password",
	ScenarioCount: 2,
}

func TestCreateFeature(t *testing.T) {
	m := newScriptedModel()
	svc, st, _ := newTestService(t, m)
	ctx := context.Background()

	res, err := svc.CreateFeature(ctx, passwordReset)
	require.NoError(t, err)

	assert.Equal(t, []string{"generate", "complexity", "quality"}, m.calls)
	assert.True(t, strings.HasPrefix(res.Feature.GeneratedContent, "@passwordReset\nFeature: Password Reset\nAs a user"))
	assert.Equal(t, 10, res.Complexity.OverallComplexity)
	assert.Equal(t, 100, res.Analysis.QualityScore)

	saved, err := st.GetFeature(ctx, res.Feature.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Feature.GeneratedContent, saved.GeneratedContent)
	assert.Equal(t, 2, saved.ScenarioCount)

	events, err := st.ListEvents(ctx, res.Feature.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventFeatureCreated, events[0].EventType)
	assert.Equal(t, float64(100), events[0].Payload["qualityScore"])
	assert.Equal(t, float64(10), events[0].Payload["overallComplexity"])
}

func TestCreateFeature_FailureSkipsPersistence(t *testing.T) {
	tests := []struct {
		name      string
		failCall  string
		wantCalls []string
		wantMsg   string
	}{
		{"generate", "generate", []string{"generate"}, "Failed to generate feature: quota exceeded"},
		{"complexity", "complexity", []string{"generate", "complexity"}, "Failed to analyze feature complexity: quota exceeded"},
		{"quality", "quality", []string{"generate", "complexity", "quality"}, "Failed to analyze feature: quota exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newScriptedModel()
			m.errs[tt.failCall] = errors.New("quota exceeded")
			svc, st, met := newTestService(t, m)

			_, err := svc.CreateFeature(context.Background(), passwordReset)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, tt.wantCalls, m.calls)

			features, err := st.ListFeatures(context.Background(), 0)
			require.NoError(t, err)
			assert.Empty(t, features)

			n, err := testutil.GatherAndCount(met.Registry(), "gherkin_ai_feature_pipeline_runs_total")
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}

func TestCreateFeature_MalformedComplexityJSON(t *testing.T) {
	m := newScriptedModel()
	m.out["complexity"] = "not json"
	svc, st, _ := newTestService(t, m)

	_, err := svc.CreateFeature(context.Background(), passwordReset)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to analyze feature complexity: "))

	features, err := st.ListFeatures(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, features)
}

func TestCreateFeature_Validation(t *testing.T) {
	m := newScriptedModel()
	svc, _, _ := newTestService(t, m)

	_, err := svc.CreateFeature(context.Background(), model.FeatureRequest{Title: "Login", ScenarioCount: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, analyzer.ErrInvalidInput)

	var opErr *llm.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, llm.OpGenerateFeature, opErr.Op)
	assert.Empty(t, m.calls)
}

func TestReanalyze(t *testing.T) {
	m := newScriptedModel()
	svc, st, _ := newTestService(t, m)
	ctx := context.Background()

	res, err := svc.CreateFeature(ctx, passwordReset)
	require.NoError(t, err)
	m.calls = nil
	m.out["quality"] = `{"quality_score": 72, "improved_title": "Reset a Forgotten Password"}`

	analysis, err := svc.Reanalyze(ctx, res.Feature.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"complexity", "quality"}, m.calls)
	assert.Equal(t, 72, analysis.Quality.QualityScore)
	require.NotNil(t, analysis.Quality.ImprovedTitle)
	assert.Equal(t, "Reset a Forgotten Password", *analysis.Quality.ImprovedTitle)

	events, err := st.ListEvents(ctx, res.Feature.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventFeatureAnalyzed, events[1].EventType)
}

func TestReanalyze_NotFound(t *testing.T) {
	m := newScriptedModel()
	svc, _, _ := newTestService(t, m)

	_, err := svc.Reanalyze(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, m.calls)
}

func TestSuggestTitles(t *testing.T) {
	tests := []struct {
		name      string
		story     string
		wantCall  bool
		wantCount int
	}{
		{"short story", "As a user I want", false, 0},
		{"19 characters", strings.Repeat("a", 19), false, 0},
		{"exactly 20 characters", strings.Repeat("a", 20), true, 2},
		{"padding does not count", "   " + strings.Repeat("a", 19) + "   ", false, 0},
		{"multibyte characters", strings.Repeat("é", 20), true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newScriptedModel()
			svc, _, met := newTestService(t, m)

			titles, err := svc.SuggestTitles(context.Background(), tt.story)
			require.NoError(t, err)
			assert.NotNil(t, titles)
			assert.Len(t, titles, tt.wantCount)
			assert.Equal(t, tt.wantCall, len(m.calls) == 1)

			skipped := 1
			if tt.wantCall {
				skipped = 0
			}
			assertCounter(t, met, "gherkin_ai_title_suggestions_skipped_total",
				"Title suggestion requests answered without a model call because the story was too short.", skipped)
		})
	}
}

func TestSuggestTitles_CustomThreshold(t *testing.T) {
	m := newScriptedModel()
	st, err := store.Open(filepath.Join(t.TempDir(), "features.db"))
	require.NoError(t, err)
	defer st.Close()

	svc := NewService(analyzer.New(m, nil), st, WithMinStoryLength(5))
	titles, err := svc.SuggestTitles(context.Background(), "Login")
	require.NoError(t, err)
	assert.Equal(t, model.TitleSuggestions{"Reset Password", "Account Recovery"}, titles)
}

func TestSuggestTitles_ModelFailure(t *testing.T) {
	m := newScriptedModel()
	m.errs["titles"] = errors.New("timeout")
	svc, _, _ := newTestService(t, m)

	_, err := svc.SuggestTitles(context.Background(), passwordReset.Story)
	require.Error(t, err)
	assert.Equal(t, "Failed to suggest title: timeout", err.Error())
}

func TestShouldSuggestTitles(t *testing.T) {
	assert.False(t, ShouldSuggestTitles("", DefaultMinStoryLength))
	assert.False(t, ShouldSuggestTitles(strings.Repeat("x", 19), DefaultMinStoryLength))
	assert.True(t, ShouldSuggestTitles(strings.Repeat("x", 20), DefaultMinStoryLength))
	assert.True(t, ShouldSuggestTitles("", 0))
}

func assertCounter(t *testing.T, met *metrics.Metrics, name, help string, value int) {
	t.Helper()
	expected := fmt.Sprintf("# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, help, name, name, value)
	require.NoError(t, testutil.GatherAndCompare(met.Registry(), strings.NewReader(expected), name))
}

// failingRepo saves features but cannot write events.
type failingRepo struct {
	*store.Store
}

func (failingRepo) LogAnalyticsEvent(context.Context, store.EventInput) (*model.AnalyticsEvent, error) {
	return nil, errors.New("disk full")
}

func TestCreateFeature_AnalyticsFailureIsNotFatal(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "features.db"))
	require.NoError(t, err)
	defer st.Close()

	met := metrics.New()
	svc := NewService(analyzer.New(newScriptedModel(), nil), failingRepo{st}, WithMetrics(met))

	res, err := svc.CreateFeature(context.Background(), passwordReset)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Feature.ID)
	assertCounter(t, met, "gherkin_ai_analytics_event_failures_total",
		"Analytics events that could not be written.", 1)
}
