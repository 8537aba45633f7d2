package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/bestfit/internal/config"
)

var (
	logLevel   string
	configPath string
	logger     *slog.Logger

	// cfg is loaded before every command runs; flags a command sets
	// explicitly are applied on top of it.
	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "bestfit",
	Short: "Fit equation templates to data",
	Long: `bestfit finds the coefficients of an equation template such as "$x^2 + $x + $"
that minimise the squared residuals over a dataset, or picks the best template
from a built-in catalog.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}

		level := cfg.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}

		// Results go to stdout, logs to stderr
		opts := &slog.HandlerOptions{Level: parseLevel(level)}
		handler := slog.NewJSONHandler(os.Stderr, opts)
		logger = slog.New(handler)
		slog.SetDefault(logger)

		slog.Debug("Configuration loaded", "path", configPath, "strategy", cfg.Fit.Strategy)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (TOML or YAML)")
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// applyFitFlags copies the search flags the user set onto cfg and checks the
// result.
func applyFitFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}

	set("iterations", func() { cfg.Fit.Iterations = fitIterations })
	set("batch-size", func() { cfg.Fit.BatchSize = fitBatchSize })
	set("min-step-dp", func() { cfg.Fit.MinimumStepDp = fitMinStepDp })
	set("precision", func() { cfg.Fit.Precision = fitPrecision })
	set("format", func() { cfg.Fit.Format = fitFormat })
	set("round", func() { cfg.Fit.Round = fitRound })
	set("score", func() { cfg.Fit.Score = fitScore })
	set("strategy", func() { cfg.Fit.Strategy = fitStrategy })
	set("mayfly-iters", func() { cfg.Mayfly.Iterations = mayflyIters })
	set("pop", func() { cfg.Mayfly.PopSize = mayflyPop })
	set("seed", func() { cfg.Mayfly.Seed = mayflySeed })
	set("bound", func() { cfg.Mayfly.Bound = mayflyBound })
	set("max-evals", func() { cfg.NelderMead.MaxEvals = nmMaxEvals })

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

var (
	fitIterations int
	fitBatchSize  int
	fitMinStepDp  int
	fitPrecision  int
	fitFormat     bool
	fitRound      bool
	fitScore      bool
	fitStrategy   string
	mayflyIters   int
	mayflyPop     int
	mayflySeed    int64
	mayflyBound   float64
	nmMaxEvals    int
)

// addFitFlags registers the search flags shared by fit and auto. The
// defaults shown are those of an empty config.
func addFitFlags(cmd *cobra.Command) {
	def := config.Default()
	f := cmd.Flags()
	f.IntVar(&fitIterations, "iterations", def.Fit.Iterations, "Search batches per coefficient")
	f.IntVar(&fitBatchSize, "batch-size", def.Fit.BatchSize, "Trials per batch")
	f.IntVar(&fitMinStepDp, "min-step-dp", def.Fit.MinimumStepDp, "Smallest step as decimal places")
	f.IntVar(&fitPrecision, "precision", def.Fit.Precision, "Decimal places for rounding and convergence")
	f.BoolVar(&fitFormat, "format", def.Fit.Format, "Print the template with the values substituted")
	f.BoolVar(&fitRound, "round", def.Fit.Round, "Round values to --precision places")
	f.BoolVar(&fitScore, "score", def.Fit.Score, "Print the score and proportional flags")
	f.StringVar(&fitStrategy, "strategy", def.Fit.Strategy, "Optimizer: compass, mayfly or neldermead")
	f.IntVar(&mayflyIters, "mayfly-iters", def.Mayfly.Iterations, "Mayfly iterations")
	f.IntVar(&mayflyPop, "pop", def.Mayfly.PopSize, "Mayfly population size")
	f.Int64Var(&mayflySeed, "seed", def.Mayfly.Seed, "Mayfly random seed")
	f.Float64Var(&mayflyBound, "bound", def.Mayfly.Bound, "Mayfly search box half-width")
	f.IntVar(&nmMaxEvals, "max-evals", def.NelderMead.MaxEvals, "Nelder-Mead evaluation budget")
}
