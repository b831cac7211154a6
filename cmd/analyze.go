package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/helmcode/gherkin-ai/pkg/formatter"
)

func NewAnalyzeCmd(app *App) *cobra.Command {
	var (
		title  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Score the quality of a feature file",
		Long: `Score a Gherkin feature file from 0 to 100 and list improvement suggestions.
Use - to read the feature from stdin.

Examples:
  gherkin-ai analyze features/password_reset.feature --title "Password Reset"
  cat login.feature | gherkin-ai analyze - -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := formatter.ValidateFormat(output); err != nil {
				return err
			}
			content, err := readFeature(cmd, args[0])
			if err != nil {
				return err
			}
			an, err := app.NewAnalyzer(cmd.Context(), nil)
			if err != nil {
				return err
			}

			s := newSpinner(" Analyzing quality...")
			s.Start()
			report, err := an.AnalyzeFeature(cmd.Context(), content, title)
			s.Stop()
			if err != nil {
				return err
			}
			return formatter.Display(os.Stdout, report, output)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Current feature title")
	cmd.Flags().StringVarP(&output, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	return cmd
}

func NewComplexityCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "complexity FILE",
		Short: "Rate the complexity of every scenario in a feature file",
		Long: `Rate each scenario of a Gherkin feature file from 1 to 10 using step count,
data dependencies, conditional logic and technical difficulty.
Use - to read the feature from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := formatter.ValidateFormat(output); err != nil {
				return err
			}
			content, err := readFeature(cmd, args[0])
			if err != nil {
				return err
			}
			an, err := app.NewAnalyzer(cmd.Context(), nil)
			if err != nil {
				return err
			}

			s := newSpinner(" Analyzing complexity...")
			s.Start()
			report, err := an.AnalyzeFeatureComplexity(cmd.Context(), content)
			s.Stop()
			if err != nil {
				return err
			}
			return formatter.Display(os.Stdout, report, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	return cmd
}

func readFeature(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read feature file: %w", err)
	}
	return string(data), nil
}
