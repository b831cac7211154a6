package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helmcode/gherkin-ai/cmd"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	app := &cmd.App{}

	rootCmd := &cobra.Command{
		Use:   "gherkin-ai",
		Short: "AI-generated Gherkin features with quality and complexity scoring",
		Long: `gherkin-ai turns a title and a user story into a Gherkin feature file,
scores its quality and the complexity of each scenario, and suggests titles.

Providers are selected with LLM_PROVIDER (openai, claude, gemini) and the
matching OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY variable.`,
		SilenceUsage:      true,
		PersistentPreRunE: app.Init,
		PersistentPostRun: app.Sync,
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	app.RegisterFlags(rootCmd)

	rootCmd.AddCommand(
		cmd.NewGenerateCmd(app),
		cmd.NewAnalyzeCmd(app),
		cmd.NewComplexityCmd(app),
		cmd.NewSuggestCmd(app),
		cmd.NewFeaturesCmd(app),
		cmd.NewServeCmd(app),
		cmd.NewMCPCmd(app, version),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// version needs neither config nor logger
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gherkin-ai version %s\n", version)
		},
	}
}
