package opt

// Problem describes a minimisation over a coefficient vector.
type Problem struct {
	// Cost is the objective to minimise. It must not retain the slice.
	Cost func([]float64) float64

	// Dim is the number of coefficients.
	Dim int

	// Samples is the number of data points behind Cost. Compass search uses it
	// to scale steps to the mean residual.
	Samples int

	// Observer, if set, is called after every accepted improvement.
	Observer func(Step)
}

// Step reports one accepted improvement.
type Step struct {
	Trial  int
	Index  int
	Cost   float64
	Params []float64
}

// Result holds the output of an optimizer run
type Result struct {
	Params       []float64
	Cost         float64
	Proportional []bool // nil for optimizers without step weighting
	Trials       int
	Converged    bool // stopped by its own convergence test before the trial budget
}

// Optimizer defines an optimization algorithm interface
type Optimizer interface {
	// Run minimises p.Cost and returns the best parameters found.
	Run(p Problem) *Result
}
