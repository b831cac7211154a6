package parser

import "github.com/helmcode/gherkin-ai/pkg/model"

const (
	minQuality = 0
	maxQuality = 100
)

func ParseQualityResponse(raw string) (*model.QualityReport, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	return NormalizeQuality(obj), nil
}

// NormalizeQuality clamps quality_score to [0,100] (default 0), defaults
// suggestions to empty and passes improved_title through when it is a string.
func NormalizeQuality(obj map[string]any) *model.QualityReport {
	score, _ := intField(obj, "quality_score")

	report := &model.QualityReport{
		QualityScore: clamp(score, minQuality, maxQuality),
		Suggestions:  stringList(obj["suggestions"]),
	}
	if title, ok := stringField(obj, "improved_title"); ok {
		report.ImprovedTitle = &title
	}
	return report
}
