package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helmcode/gherkin-ai/pkg/features"
	"github.com/helmcode/gherkin-ai/pkg/formatter"
	"github.com/helmcode/gherkin-ai/pkg/model"
)

func NewSuggestCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "suggest STORY",
		Short: "Suggest feature titles for a user story",
		Long: `Suggest up to three feature titles for a user story.
Stories shorter than the configured minimum (20 characters by default) get
no suggestions and no model call is made.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := formatter.ValidateFormat(output); err != nil {
				return err
			}
			story := strings.Join(args, " ")
			minLen := app.Config.Titles.MinStoryLength

			if !features.ShouldSuggestTitles(story, minLen) {
				printWarning(fmt.Sprintf("Story is shorter than %d characters, no titles suggested", minLen))
				return formatter.Display(os.Stdout, model.TitleSuggestions{}, output)
			}

			an, err := app.NewAnalyzer(cmd.Context(), nil)
			if err != nil {
				return err
			}
			svc := features.NewService(an, nil,
				features.WithLogger(app.Logger),
				features.WithMinStoryLength(minLen))

			s := newSpinner(" Suggesting titles...")
			s.Start()
			titles, err := svc.SuggestTitles(cmd.Context(), story)
			s.Stop()
			if err != nil {
				return err
			}
			return formatter.Display(os.Stdout, titles, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	return cmd
}
