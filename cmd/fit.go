package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/bestfit/internal/fit"
	"github.com/cwbudde/bestfit/internal/store"
)

var (
	dataPath  string
	template  string
	tracePath string
	outPath   string
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit one equation template to a dataset",
	Long: `Searches the coefficients of an equation template that minimise the sum of
squared residuals over a dataset. The template uses $ for each unknown
coefficient and x for the variable, for example "$x^2 + $x + $" or "#poly(2)".

The dataset is a CSV file of x,y rows (or a single y column), or a JSON or
YAML list of [x, y] pairs. Use --data - to read CSV from stdin.`,
	Example: `  bestfit fit --data points.csv --template '$x + $' --format
  bestfit fit --data points.json --template '#poly(3)' --strategy mayfly --score`,
	RunE: runFit,
}

func init() {
	fitCmd.Flags().StringVar(&dataPath, "data", "", "Dataset file: CSV, JSON or YAML (required)")
	fitCmd.Flags().StringVarP(&template, "template", "t", "", "Equation template (required)")
	fitCmd.Flags().StringVar(&tracePath, "trace", "", "Write every accepted improvement to this JSONL file")
	fitCmd.Flags().StringVar(&outPath, "out", "", "Write the result record to this JSON file")
	addFitFlags(fitCmd)

	fitCmd.MarkFlagRequired("data")
	fitCmd.MarkFlagRequired("template")
	rootCmd.AddCommand(fitCmd)
}

func runFit(cmd *cobra.Command, args []string) error {
	if err := applyFitFlags(cmd); err != nil {
		return err
	}

	data, err := store.LoadDataset(dataPath)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	slog.Info("Loaded dataset", "path", dataPath, "points", len(data))

	opts := cfg.Options()

	var trace *store.TraceWriter
	if tracePath != "" {
		trace, err = store.NewTraceWriter(tracePath, false)
		if err != nil {
			return err
		}
		defer trace.Close()
		opts.Observer = trace.Observe
	}

	start := time.Now()
	res, err := fit.FindBestFit(data, template, opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if trace != nil {
		if err := trace.Err(); err != nil {
			return fmt.Errorf("failed to write trace: %w", err)
		}
		if err := trace.Flush(); err != nil {
			return err
		}
	}

	f, err := fit.BuildEvalFunc(res.Template, res.Values)
	if err != nil {
		return err
	}
	summary := fit.Summarize(data, f)

	slog.Info("Fit complete",
		"strategy", cfg.Fit.Strategy,
		"elapsed", elapsed,
		"score", res.Score,
		"trials", res.Trials,
		"converged", res.Converged,
	)

	printFitResult(cmd.OutOrStdout(), res, summary, opts.ReturnScore)

	if outPath != "" {
		rec := store.NewFitRecord(res, len(data), opts.ReturnScore)
		if err := store.WriteRecordFile(outPath, rec); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
	}
	return nil
}
