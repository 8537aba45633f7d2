package opt

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// NelderMead wraps gonum's downhill simplex method. Like Compass it starts
// from the all-ones vector and needs no bounds or gradients.
type NelderMead struct {
	maxEvals    int
	simplexSize float64
}

// NewNelderMead creates a simplex optimizer limited to maxEvals cost
// evaluations. A simplexSize of 0 uses gonum's default.
func NewNelderMead(maxEvals int, simplexSize float64) *NelderMead {
	return &NelderMead{maxEvals: maxEvals, simplexSize: simplexSize}
}

// Run minimises p.Cost with the simplex method.
func (nm *NelderMead) Run(p Problem) *Result {
	start := make([]float64, p.Dim)
	for i := range start {
		start[i] = 1
	}
	if p.Dim == 0 {
		return &Result{Params: start, Cost: p.Cost(start), Converged: true}
	}

	// gonum does not report progress, so improvements are detected here
	best := math.Inf(1)
	evals := 0
	cost := func(x []float64) float64 {
		evals++
		c := p.Cost(x)
		if c < best {
			best = c
			if p.Observer != nil {
				p.Observer(Step{Trial: evals - 1, Index: -1, Cost: c, Params: append([]float64(nil), x...)})
			}
		}
		return c
	}

	settings := &optimize.Settings{FuncEvaluations: nm.maxEvals}
	result, err := optimize.Minimize(optimize.Problem{Func: cost}, start, settings, &optimize.NelderMead{SimplexSize: nm.simplexSize})
	if err != nil {
		slog.Warn("Nelder-Mead stopped with an error", "error", err)
	}
	if result == nil {
		return &Result{Params: start, Cost: p.Cost(start), Trials: evals}
	}

	slog.Debug("Nelder-Mead finished", "dim", p.Dim, "evaluations", result.Stats.FuncEvaluations, "status", result.Status.String(), "cost", result.F)
	return &Result{
		Params:    append([]float64(nil), result.X...),
		Cost:      result.F,
		Trials:    evals,
		Converged: !result.Status.Early(),
	}
}
