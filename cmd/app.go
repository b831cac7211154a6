package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/helmcode/gherkin-ai/pkg/analyzer"
	"github.com/helmcode/gherkin-ai/pkg/config"
	"github.com/helmcode/gherkin-ai/pkg/features"
	"github.com/helmcode/gherkin-ai/pkg/llm"
	"github.com/helmcode/gherkin-ai/pkg/metrics"
	"github.com/helmcode/gherkin-ai/pkg/store"
)

// App carries the global flags and what PersistentPreRunE builds from
// them. Subcommands share one App.
type App struct {
	ConfigPath string
	Provider   string
	Model      string
	DBPath     string
	Verbose    bool

	Config *config.Config
	Logger *zap.Logger
}

// RegisterFlags adds the global flags to the root command.
func (a *App) RegisterFlags(root *cobra.Command) {
	root.PersistentFlags().StringVarP(&a.ConfigPath, "config", "c", "", "Path to config file (default: gherkin-ai.yaml in the current or a parent directory)")
	providers := make([]string, 0, 3)
	for _, p := range llm.NewFactory().GetAvailableProviders() {
		providers = append(providers, string(p))
	}
	root.PersistentFlags().StringVarP(&a.Provider, "provider", "p", "", "LLM provider ("+strings.Join(providers, ", ")+")")
	root.PersistentFlags().StringVarP(&a.Model, "model", "m", "", "Model name (overrides the provider default)")
	root.PersistentFlags().StringVar(&a.DBPath, "db", "", "Path to the features database")
	root.PersistentFlags().BoolVarP(&a.Verbose, "verbose", "v", false, "Debug logging")
}

// Init loads configuration, applies flag overrides and builds the logger.
func (a *App) Init(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader(nil).Load(a.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.Provider != "" {
		if _, err := llm.ParseProvider(a.Provider); err != nil {
			return err
		}
		cfg.LLM.Provider = a.Provider
	}
	if a.Model != "" {
		cfg.LLM.Model = a.Model
	}
	if a.DBPath != "" {
		cfg.Store.Path = a.DBPath
	}
	a.Config = cfg

	zcfg := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if a.Verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	a.Logger, err = zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// Sync flushes the logger.
func (a *App) Sync(cmd *cobra.Command, args []string) {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

// NewAnalyzer builds the provider from config and environment. m may be nil.
func (a *App) NewAnalyzer(ctx context.Context, m *metrics.Metrics) (*analyzer.Analyzer, error) {
	opts, err := a.Config.LLMOptions()
	if err != nil {
		return nil, err
	}
	l, err := llm.NewFactory().Create(ctx, opts)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug("llm provider ready", zap.String("model", l.GetModel()))

	invokerOpts := append(a.Config.InvokerOptions(), llm.WithMetrics(m))
	return analyzer.NewWithLLM(l, a.Logger, invokerOpts...), nil
}

// NewService opens the store and wires the feature service. The returned
// function closes the store.
func (a *App) NewService(ctx context.Context, m *metrics.Metrics) (*features.Service, *analyzer.Analyzer, func(), error) {
	an, err := a.NewAnalyzer(ctx, m)
	if err != nil {
		return nil, nil, nil, err
	}
	st, err := a.OpenStore()
	if err != nil {
		return nil, nil, nil, err
	}
	svc := features.NewService(an, st,
		features.WithLogger(a.Logger),
		features.WithMetrics(m),
		features.WithMinStoryLength(a.Config.Titles.MinStoryLength))
	return svc, an, func() { st.Close() }, nil
}

func (a *App) OpenStore() (*store.Store, error) {
	st, err := store.Open(a.Config.Store.Path)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug("store opened", zap.String("path", a.Config.Store.Path))
	return st, nil
}

func newSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = suffix
	return s
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(os.Stderr, "✓ %s\n", msg)
}

func printWarning(msg string) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(os.Stderr, "! %s\n", msg)
}
