package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helmcode/gherkin-ai/pkg/analyzer"
	"github.com/helmcode/gherkin-ai/pkg/formatter"
	"github.com/helmcode/gherkin-ai/pkg/gherkin"
	"github.com/helmcode/gherkin-ai/pkg/llm"
	"github.com/helmcode/gherkin-ai/pkg/model"
)

type generateOptions struct {
	title     string
	story     string
	scenarios int
	save      bool
	output    string
}

func NewGenerateCmd(app *App) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a Gherkin feature file from a user story",
		Long: `Generate a Gherkin feature file with AI.

The result carries one camel-case tag derived from the title, the Feature
line directly followed by the story, a Background for shared Given steps and
the requested number of scenarios.

Examples:
  # Print a feature with three scenarios
  gherkin-ai generate --title "Password Reset" --story "As a user, I want to reset my password"

  # Score it and store it
  gherkin-ai generate --title "Password Reset" --story "As a user, I want to reset my password" --scenarios 2 --save

  # Machine-readable output
  gherkin-ai generate --title "Checkout" --story "As a shopper, I want to pay by card" -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, app, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Feature title")
	cmd.Flags().StringVarP(&opts.story, "story", "s", "", "User story")
	cmd.Flags().IntVarP(&opts.scenarios, "scenarios", "n", 3, "Number of scenarios")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Score complexity and quality, then store the feature")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("story")

	return cmd
}

func runGenerate(cmd *cobra.Command, app *App, opts *generateOptions) error {
	if err := formatter.ValidateFormat(opts.output); err != nil {
		return err
	}
	ctx := cmd.Context()
	req := model.FeatureRequest{Title: opts.title, Story: opts.story, ScenarioCount: opts.scenarios}

	s := newSpinner(" Analyzing input...")
	s.Start()
	if err := analyzer.ValidateFeatureRequest(req); err != nil {
		s.Stop()
		return llm.WrapOp(llm.OpGenerateFeature, err)
	}
	s.Stop()
	printSuccess("Input validated")

	s.Suffix = " Generating scenarios..."
	var (
		result  any
		content string
		savedID string
	)
	if opts.save {
		svc, _, closeStore, err := app.NewService(ctx, nil)
		if err != nil {
			return err
		}
		defer closeStore()

		s.Start()
		res, err := svc.CreateFeature(ctx, req)
		s.Stop()
		if err != nil {
			return err
		}
		result, content, savedID = res, res.Feature.GeneratedContent, res.Feature.ID
	} else {
		an, err := app.NewAnalyzer(ctx, nil)
		if err != nil {
			return err
		}

		s.Start()
		generated, err := an.GenerateFeature(ctx, req)
		s.Stop()
		if err != nil {
			return err
		}
		result, content = generated, generated.Content
	}
	printSuccess("Scenarios generated")

	s.Suffix = " Finalizing..."
	s.Start()
	n := gherkin.CountScenarios(content)
	s.Stop()
	if n != req.ScenarioCount {
		printWarning(fmt.Sprintf("Requested %d scenarios, model returned %d", req.ScenarioCount, n))
	}
	if savedID != "" {
		printSuccess("Saved feature " + savedID)
	}

	return formatter.Display(os.Stdout, result, opts.output)
}
