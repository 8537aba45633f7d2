package opt

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MayflyAdapter wraps the external Mayfly library to conform to our Optimizer interface.
// Mayfly is a population-based global search, so unlike Compass it needs a
// box to sample from: every coefficient is searched in [Lower, Upper].
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
	lower    float64
	upper    float64
}

// NewMayfly creates a new Mayfly optimizer adapter searching every
// coefficient in [-bound, bound].
func NewMayfly(maxIters, popSize int, seed int64, bound float64) *MayflyAdapter {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
		lower:    -math.Abs(bound),
		upper:    math.Abs(bound),
	}
}

// Run executes the Mayfly optimization using the external library
func (m *MayflyAdapter) Run(p Problem) *Result {
	if p.Dim == 0 {
		params := []float64{}
		return &Result{Params: params, Cost: p.Cost(params), Converged: true}
	}

	config := mayfly.NewDefaultConfig()

	config.ObjectiveFunc = p.Cost
	config.ProblemSize = p.Dim
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = m.lower
	config.UpperBound = m.upper

	// Set random seed for reproducibility
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		// Fall back to the compass search starting point
		slog.Warn("Mayfly optimization failed, returning initial vector", "error", err)
		ones := make([]float64, p.Dim)
		for i := range ones {
			ones[i] = 1
		}
		return &Result{Params: ones, Cost: p.Cost(ones)}
	}

	best := append([]float64(nil), result.GlobalBest.Position...)
	if p.Observer != nil {
		p.Observer(Step{Trial: m.maxIters * m.popSize, Index: -1, Cost: result.GlobalBest.Cost, Params: best})
	}

	return &Result{
		Params: best,
		Cost:   result.GlobalBest.Cost,
		Trials: m.maxIters * m.popSize,
	}
}
