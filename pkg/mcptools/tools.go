// Package mcptools exposes the feature pipeline as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/helmcode/gherkin-ai/pkg/features"
	"github.com/helmcode/gherkin-ai/pkg/model"
)

// Generator produces a feature without saving it. *analyzer.Analyzer
// implements it.
type Generator interface {
	GenerateFeature(ctx context.Context, req model.FeatureRequest) (*model.GeneratedFeature, error)
}

// Service is the subset of *features.Service the tools use.
type Service interface {
	CreateFeature(ctx context.Context, req model.FeatureRequest) (*features.CreateResult, error)
	AnalyzeQuality(ctx context.Context, content, title string) (*model.QualityReport, error)
	AnalyzeComplexity(ctx context.Context, content string) (*model.ComplexityReport, error)
	SuggestTitles(ctx context.Context, story string) (model.TitleSuggestions, error)
}

// GenerateFeatureTool handles the generate_feature MCP tool.
type GenerateFeatureTool struct {
	gen Generator
	svc Service
}

func NewGenerateFeatureTool(gen Generator, svc Service) *GenerateFeatureTool {
	return &GenerateFeatureTool{gen: gen, svc: svc}
}

func (t *GenerateFeatureTool) Definition() mcp.Tool {
	return mcp.NewTool("generate_feature",
		mcp.WithDescription(
			"Generate a Gherkin feature file from a title and a user story. "+
				"The result has a single camel-case tag, the Feature line followed directly by the story, "+
				"a Background for shared Given steps and the requested number of scenarios. "+
				"Set save=true to also score complexity and quality and store the feature.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Feature title, e.g. 'Password Reset'"),
		),
		mcp.WithString("story",
			mcp.Required(),
			mcp.Description("User story in natural language"),
		),
		mcp.WithNumber("scenario_count",
			mcp.Description("Number of scenarios to generate (default: 3)"),
		),
		mcp.WithBoolean("save",
			mcp.Description("Score and persist the feature (default: false)"),
		),
	)
}

func (t *GenerateFeatureTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fr := model.FeatureRequest{
		Title:         strings.TrimSpace(req.GetString("title", "")),
		Story:         strings.TrimSpace(req.GetString("story", "")),
		ScenarioCount: intArg(req, "scenario_count", 3),
	}
	if fr.Title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}
	if fr.Story == "" {
		return mcp.NewToolResultError("'story' is required"), nil
	}

	if boolArg(req, "save", false) {
		res, err := t.svc.CreateFeature(ctx, fr)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(res)
	}

	generated, err := t.gen.GenerateFeature(ctx, fr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(generated.Content), nil
}

// AnalyzeFeatureTool handles the analyze_feature MCP tool.
type AnalyzeFeatureTool struct {
	svc Service
}

func NewAnalyzeFeatureTool(svc Service) *AnalyzeFeatureTool {
	return &AnalyzeFeatureTool{svc: svc}
}

func (t *AnalyzeFeatureTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_feature",
		mcp.WithDescription("Score the quality of a Gherkin feature file from 0 to 100 with improvement suggestions and an optional better title."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Gherkin feature file text"),
		),
		mcp.WithString("title",
			mcp.Description("Current feature title"),
		),
	)
}

func (t *AnalyzeFeatureTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content := req.GetString("content", "")
	if strings.TrimSpace(content) == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}

	report, err := t.svc.AnalyzeQuality(ctx, content, req.GetString("title", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

// ComplexityTool handles the analyze_feature_complexity MCP tool.
type ComplexityTool struct {
	svc Service
}

func NewComplexityTool(svc Service) *ComplexityTool {
	return &ComplexityTool{svc: svc}
}

func (t *ComplexityTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_feature_complexity",
		mcp.WithDescription(
			"Rate the complexity of every scenario in a Gherkin feature file from 1 to 10, "+
				"with step count, data dependencies, conditional logic and technical difficulty factors.",
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Gherkin feature file text"),
		),
	)
}

func (t *ComplexityTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content := req.GetString("content", "")
	if strings.TrimSpace(content) == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}

	report, err := t.svc.AnalyzeComplexity(ctx, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

// SuggestTitlesTool handles the suggest_titles MCP tool.
type SuggestTitlesTool struct {
	svc Service
}

func NewSuggestTitlesTool(svc Service) *SuggestTitlesTool {
	return &SuggestTitlesTool{svc: svc}
}

func (t *SuggestTitlesTool) Definition() mcp.Tool {
	return mcp.NewTool("suggest_titles",
		mcp.WithDescription("Suggest up to three feature titles for a user story. Stories shorter than 20 characters get no suggestions."),
		mcp.WithString("story",
			mcp.Required(),
			mcp.Description("User story, possibly partial"),
		),
	)
}

func (t *SuggestTitlesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	titles, err := t.svc.SuggestTitles(ctx, req.GetString("story", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(titles) == 0 {
		return mcp.NewToolResultText("No title suggestions."), nil
	}

	var b strings.Builder
	for i, title := range titles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

// intArg extracts an integer argument. JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok || math.IsNaN(v) {
		return defaultVal
	}
	return int(math.Max(math.MinInt32, math.Min(math.MaxInt32, v)))
}

func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
