package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cwbudde/bestfit/internal/fit"
)

var evalCoeffs []float64

var evalCmd = &cobra.Command{
	Use:   "eval x...",
	Short: "Evaluate a template with fixed coefficients",
	Long: `Prints x and f(x) for every argument. Separate negative x values from the
flags with --.`,
	Example: `  bestfit eval --template '$x^2 + $' --coeffs 2,1 0 1 2.5
  bestfit eval -t '$/x' --coeffs 1 -- -2 -1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVarP(&template, "template", "t", "", "Equation template (required)")
	evalCmd.Flags().Float64SliceVar(&evalCoeffs, "coeffs", nil, "Coefficients in placeholder order, comma separated")

	evalCmd.MarkFlagRequired("template")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	xs, err := parseFloats(args)
	if err != nil {
		return err
	}

	f, err := fit.BuildEvalFunc(template, evalCoeffs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, x := range xs {
		fmt.Fprintf(out, "%s\t%s\n", strconv.FormatFloat(x, 'g', -1, 64), strconv.FormatFloat(f(x), 'g', -1, 64))
	}
	return nil
}

func parseFloats(args []string) ([]float64, error) {
	xs := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid x value %q", a)
		}
		xs[i] = v
	}
	return xs, nil
}
