package fit

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/bestfit/internal/equation"
	"github.com/cwbudde/bestfit/internal/opt"
)

// Options controls a fit.
type Options struct {
	// Iterations is the number of search batches per coefficient.
	Iterations int `json:"iterations"`

	// BatchSize is the number of trials per batch.
	BatchSize int `json:"batchSize"`

	// MinimumStepDp is the smallest step as decimal places.
	MinimumStepDp int `json:"minimumStepDp"`

	// Precision is the number of decimal places for rounding and the
	// convergence threshold.
	Precision int `json:"precision"`

	// Format fills Result.Formatted with the template and values substituted.
	Format bool `json:"format"`

	// Round rounds Result.Values to Precision places.
	Round bool `json:"round"`

	// ReturnScore asks presentation layers to show the score and the
	// proportional flags. Result always carries them.
	ReturnScore bool `json:"returnScore"`

	// Optimizer overrides the default compass search built from the fields above.
	Optimizer opt.Optimizer `json:"-"`

	// Observer receives every accepted improvement.
	Observer func(opt.Step) `json:"-"`
}

// MaxTrials bounds Iterations*BatchSize*coefficients, the compass search
// trial budget. The search cannot be interrupted, so the budget is the only
// limit on how long a fit runs.
const MaxTrials = 20_000_000

// DefaultOptions returns the standard search settings.
func DefaultOptions() Options {
	return Options{
		Iterations:    100,
		BatchSize:     500,
		MinimumStepDp: 5,
		Precision:     4,
		Round:         true,
	}
}

// Validate rejects settings the search cannot run with.
func (o Options) Validate() error {
	if o.Iterations < 1 {
		return &ValidationError{Field: "iterations", Reason: "must be at least 1"}
	}
	if o.BatchSize < 1 {
		return &ValidationError{Field: "batchSize", Reason: "must be at least 1"}
	}
	if o.MinimumStepDp < 0 {
		return &ValidationError{Field: "minimumStepDp", Reason: "cannot be negative"}
	}
	if o.Precision < 0 {
		return &ValidationError{Field: "precision", Reason: "cannot be negative"}
	}
	return o.checkBudget(1)
}

// checkBudget rejects a trial budget above MaxTrials for n coefficients.
// The division keeps the comparison free of overflow.
func (o Options) checkBudget(n int) error {
	if n < 1 {
		return nil
	}
	if o.Iterations > MaxTrials/o.BatchSize/n {
		return &ValidationError{
			Field:  "iterations",
			Reason: fmt.Sprintf("times batchSize times %d coefficient(s) exceeds the limit of %d trials", n, MaxTrials),
		}
	}
	return nil
}

func (o Options) optimizer() opt.Optimizer {
	if o.Optimizer != nil {
		return o.Optimizer
	}
	return opt.NewCompass(opt.CompassConfig{
		Iterations:    o.Iterations,
		BatchSize:     o.BatchSize,
		MinimumStepDp: o.MinimumStepDp,
		Precision:     o.Precision,
	})
}

// Result holds the outcome of a fit.
type Result struct {
	// Template is the expanded template that was fitted.
	Template string

	// Values are the fitted coefficients in placeholder order, rounded when
	// Options.Round is set.
	Values []float64

	// Score is the residual sum of the unrounded coefficients.
	Score float64

	// Proportional reports per coefficient whether its steps stayed scaled to
	// the residual. Nil for optimizers without step weighting.
	Proportional []bool

	// Formatted is the template with values substituted, set when
	// Options.Format is set.
	Formatted string

	Trials    int
	Converged bool
}

// FindBestFit expands and parses template, then searches for the
// coefficients that minimise the squared residuals over data.
func FindBestFit(data Dataset, template string, opts Options) (*Result, error) {
	formula, err := equation.Compile(template)
	if err != nil {
		return nil, fmt.Errorf("compile template %q: %w", template, err)
	}
	return Fit(data, formula, opts)
}

// Fit searches coefficients for an already compiled formula.
func Fit(data Dataset, formula *equation.Formula, opts Options) (*Result, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := opts.checkBudget(formula.NumCoefficients()); err != nil {
		return nil, err
	}

	slog.Debug("Starting fit",
		"template", formula.Template(),
		"coefficients", formula.NumCoefficients(),
		"points", len(data),
	)

	run := opts.optimizer().Run(opt.Problem{
		Cost:     NewCostFunc(data, formula),
		Dim:      formula.NumCoefficients(),
		Samples:  len(data),
		Observer: opts.Observer,
	})

	res := &Result{
		Template:     formula.Template(),
		Values:       append([]float64(nil), run.Params...),
		Score:        run.Cost,
		Proportional: run.Proportional,
		Trials:       run.Trials,
		Converged:    run.Converged,
	}
	if opts.Format {
		res.Formatted = Format(formula.Template(), opts.Precision, run.Params)
	}
	if opts.Round {
		res.Values = RoundAll(run.Params, opts.Precision)
	}

	slog.Debug("Fit complete",
		"template", formula.Template(),
		"score", res.Score,
		"trials", res.Trials,
		"converged", res.Converged,
	)
	return res, nil
}
