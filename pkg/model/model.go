package model

import "time"

// FeatureRequest is the user input for one generation.
type FeatureRequest struct {
	Title         string `json:"title" yaml:"title"`
	Story         string `json:"story" yaml:"story"`
	ScenarioCount int    `json:"scenarioCount" yaml:"scenarioCount"`
}

// GeneratedFeature is normalized Gherkin text plus the tag it was normalized against.
type GeneratedFeature struct {
	Content string `json:"content" yaml:"content"`
	Tag     string `json:"tag" yaml:"tag"`
}

type ComplexityReport struct {
	OverallComplexity int                  `json:"overallComplexity" yaml:"overallComplexity"`
	Scenarios         []ScenarioComplexity `json:"scenarios" yaml:"scenarios"`
	Recommendations   []string             `json:"recommendations" yaml:"recommendations"`
}

type ScenarioComplexity struct {
	Name        string            `json:"name" yaml:"name"`
	Complexity  int               `json:"complexity" yaml:"complexity"`
	Factors     ComplexityFactors `json:"factors" yaml:"factors"`
	Explanation string            `json:"explanation" yaml:"explanation"`
}

// ComplexityFactors are passed through from the model without clamping.
type ComplexityFactors struct {
	StepCount           int `json:"stepCount" yaml:"stepCount"`
	DataDependencies    int `json:"dataDependencies" yaml:"dataDependencies"`
	ConditionalLogic    int `json:"conditionalLogic" yaml:"conditionalLogic"`
	TechnicalDifficulty int `json:"technicalDifficulty" yaml:"technicalDifficulty"`
}

type QualityReport struct {
	QualityScore  int      `json:"qualityScore" yaml:"qualityScore"`
	Suggestions   []string `json:"suggestions" yaml:"suggestions"`
	ImprovedTitle *string  `json:"improvedTitle,omitempty" yaml:"improvedTitle,omitempty"`
}

type TitleSuggestions []string

// Feature is the persisted entity. Reports are never stored on it.
type Feature struct {
	ID               string    `json:"id" yaml:"id"`
	Title            string    `json:"title" yaml:"title"`
	Story            string    `json:"story" yaml:"story"`
	GeneratedContent string    `json:"generatedContent" yaml:"generatedContent"`
	ScenarioCount    int       `json:"scenarioCount" yaml:"scenarioCount"`
	CreatedAt        time.Time `json:"createdAt" yaml:"createdAt"`
}

type AnalyticsEvent struct {
	ID        string         `json:"id" yaml:"id"`
	FeatureID string         `json:"featureId,omitempty" yaml:"featureId,omitempty"`
	EventType string         `json:"eventType" yaml:"eventType"`
	Payload   map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`
	CreatedAt time.Time      `json:"createdAt" yaml:"createdAt"`
}

// Analysis bundles both derived reports for one piece of content.
type Analysis struct {
	Complexity *ComplexityReport `json:"complexity" yaml:"complexity"`
	Quality    *QualityReport    `json:"analysis" yaml:"analysis"`
}
