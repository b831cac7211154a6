package cmd

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/helmcode/gherkin-ai/pkg/mcptools"
)

func NewMCPCmd(app *App, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the pipeline as MCP tools over stdio",
		Long: `Run an MCP server on stdin/stdout exposing generate_feature,
analyze_feature, analyze_feature_complexity and suggest_titles.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, an, closeStore, err := app.NewService(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer closeStore()

			return server.ServeStdio(mcptools.NewServer(version, an, svc))
		},
	}
}
