package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/helmcode/gherkin-ai/pkg/formatter"
)

func NewFeaturesCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "features",
		Short: "List, show and reanalyze stored features",
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		if err := app.Init(c, args); err != nil {
			return err
		}
		return formatter.ValidateFormat(output)
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored features, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			items, err := st.ListFeatures(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return formatter.Display(os.Stdout, items, output)
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "Maximum number of features")

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show a stored feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			f, err := st.GetFeature(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return formatter.Display(os.Stdout, f, output)
		},
	}

	reanalyze := &cobra.Command{
		Use:   "reanalyze ID",
		Short: "Recompute complexity and quality for a stored feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, closeStore, err := app.NewService(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer closeStore()

			s := newSpinner(" Analyzing feature...")
			s.Start()
			analysis, err := svc.Reanalyze(cmd.Context(), args[0])
			s.Stop()
			if err != nil {
				return err
			}
			return formatter.Display(os.Stdout, analysis, output)
		},
	}

	cmd.AddCommand(list, show, reanalyze)
	return cmd
}
