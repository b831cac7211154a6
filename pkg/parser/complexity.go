package parser

import "github.com/helmcode/gherkin-ai/pkg/model"

const (
	minComplexity       = 1
	maxComplexity       = 10
	unnamedScenarioName = "Unnamed Scenario"
)

// ParseComplexityResponse parses the model's complexity JSON.
func ParseComplexityResponse(raw string) (*model.ComplexityReport, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	return NormalizeComplexity(obj), nil
}

// NormalizeComplexity applies the defaulting policy to a decoded complexity
// object: scores are clamped to [1,10] and default to 1, factors default to
// 0 and are not clamped.
func NormalizeComplexity(obj map[string]any) *model.ComplexityReport {
	report := &model.ComplexityReport{
		OverallComplexity: complexityScore(obj, "overallComplexity"),
		Scenarios:         []model.ScenarioComplexity{},
		Recommendations:   stringList(obj["recommendations"]),
	}

	items, _ := obj["scenarios"].([]any)
	for _, item := range items {
		s, ok := item.(map[string]any)
		if !ok {
			s = map[string]any{}
		}
		report.Scenarios = append(report.Scenarios, normalizeScenario(s))
	}
	return report
}

func normalizeScenario(s map[string]any) model.ScenarioComplexity {
	name, _ := stringField(s, "name")
	if name == "" {
		name = unnamedScenarioName
	}
	explanation, _ := stringField(s, "explanation")

	f := objectField(s, "factors")
	stepCount, _ := intField(f, "stepCount")
	dataDeps, _ := intField(f, "dataDependencies")
	conditional, _ := intField(f, "conditionalLogic")
	technical, _ := intField(f, "technicalDifficulty")

	return model.ScenarioComplexity{
		Name:       name,
		Complexity: complexityScore(s, "complexity"),
		Factors: model.ComplexityFactors{
			StepCount:           stepCount,
			DataDependencies:    dataDeps,
			ConditionalLogic:    conditional,
			TechnicalDifficulty: technical,
		},
		Explanation: explanation,
	}
}

func complexityScore(m map[string]any, key string) int {
	v, ok := intField(m, key)
	if !ok {
		return minComplexity
	}
	return clamp(v, minComplexity, maxComplexity)
}
