package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/helmcode/gherkin-ai/pkg/metrics"
	"github.com/helmcode/gherkin-ai/pkg/server"
)

func NewServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the feature API over HTTP",
		Long: `Serve the JSON API:

  POST /api/features                create a feature (generate, score, store)
  GET  /api/features                list stored features
  GET  /api/features/{id}           show a stored feature
  POST /api/features/{id}/analyze   recompute complexity and quality
  POST /api/features/analyze        score the quality of posted content
  POST /api/features/complexity     rate the complexity of posted content
  POST /api/titles/suggest          suggest titles for a story
  GET  /healthz, GET /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.Config.Server.Addr
			}

			m := metrics.New()
			svc, _, closeStore, err := app.NewService(cmd.Context(), m)
			if err != nil {
				return err
			}
			defer closeStore()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			printSuccess("Listening on " + addr)
			return server.New(svc, m, app.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}
