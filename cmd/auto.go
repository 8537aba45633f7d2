package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cwbudde/bestfit/internal/fit"
	"github.com/cwbudde/bestfit/internal/store"
)

var autoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Pick the best template from the built-in catalog",
	Long: `Fits every template of the built-in catalog to the dataset, re-scores each
with its rounded coefficients and reports the lowest. The full ranking is
printed; with --format the winner is also shown with its values substituted
at two decimal places.`,
	RunE: runAuto,
}

func init() {
	autoCmd.Flags().StringVar(&dataPath, "data", "", "Dataset file: CSV, JSON or YAML (required)")
	autoCmd.Flags().StringVar(&outPath, "out", "", "Write the result record to this JSON file")
	addFitFlags(autoCmd)

	autoCmd.MarkFlagRequired("data")
	rootCmd.AddCommand(autoCmd)
}

func runAuto(cmd *cobra.Command, args []string) error {
	if err := applyFitFlags(cmd); err != nil {
		return err
	}

	data, err := store.LoadDataset(dataPath)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	res, err := fit.AutoFindBestFit(data, cfg.Options())
	if err != nil {
		return err
	}
	slog.Debug("Auto fit finished", "candidates", len(res.Candidates), "template", res.Template)

	printRanking(cmd.OutOrStdout(), res)

	if outPath != "" {
		if err := store.WriteRecordFile(outPath, store.NewAutoRecord(res, len(data))); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
	}
	return nil
}
