package mcptools

import (
	"github.com/mark3labs/mcp-go/server"
)

const serverInstructions = `gherkin-ai turns user stories into Gherkin feature files.
Use generate_feature to write a feature, analyze_feature and analyze_feature_complexity
to score one, and suggest_titles while a story is still being written.`

// NewServer registers the four pipeline tools on an MCP server.
func NewServer(version string, gen Generator, svc Service) *server.MCPServer {
	s := server.NewMCPServer(
		"gherkin-ai",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions),
	)

	generate := NewGenerateFeatureTool(gen, svc)
	s.AddTool(generate.Definition(), generate.Handle)

	analyze := NewAnalyzeFeatureTool(svc)
	s.AddTool(analyze.Definition(), analyze.Handle)

	complexity := NewComplexityTool(svc)
	s.AddTool(complexity.Definition(), complexity.Handle)

	titles := NewSuggestTitlesTool(svc)
	s.AddTool(titles.Definition(), titles.Handle)

	return s
}
