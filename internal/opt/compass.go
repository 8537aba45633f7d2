package opt

import (
	"log/slog"
	"math"
)

// InitialStep is the step size every batch starts from.
const InitialStep = 0.1

// CompassConfig controls the coordinate search.
type CompassConfig struct {
	// Iterations is the number of batches each coefficient may receive.
	Iterations int

	// BatchSize is the number of trials per batch.
	BatchSize int

	// MinimumStepDp is the step floor as decimal places: 10^-MinimumStepDp.
	MinimumStepDp int

	// Precision is the number of decimal places the caller cares about. The
	// search stops once the proportional weight falls below 10^-(Precision+1).
	Precision int
}

// Compass is a coordinate-wise adaptive local search. It perturbs one
// coefficient at a time, keeps improving moves, reverses direction on
// failure and shrinks the step when both directions fail.
type Compass struct {
	config CompassConfig
}

// NewCompass creates a compass search optimizer
func NewCompass(config CompassConfig) *Compass {
	return &Compass{config: config}
}

// Run executes the search from the all-ones vector.
func (cs *Compass) Run(p Problem) *Result {
	cfg := cs.config
	n := p.Dim

	params := make([]float64, n)
	proportional := make([]bool, n)
	for i := range params {
		params[i] = 1
		proportional[i] = true
	}

	samples := float64(p.Samples)
	if samples <= 0 {
		samples = 1
	}
	minStep := math.Pow(10, -float64(cfg.MinimumStepDp))
	minWeight := math.Pow(10, -float64(cfg.Precision+1))

	best := p.Cost(params)
	result := &Result{Params: params, Proportional: proportional}
	if n == 0 {
		result.Cost = best
		result.Converged = true
		return result
	}

	vi := 0 // active coefficient
	batchIters, wrongDirection, wrongStep := 0, 0, 0
	step, weight, direction := InitialStep, 1.0, 1.0

	limit := trialLimit(cfg.Iterations, cfg.BatchSize, n)
	trial := 0
	for ; trial < limit; trial++ {
		batchIters++
		if batchIters >= cfg.BatchSize {
			vi = (vi + 1) % n
			batchIters = 0
			step = InitialStep
		}

		original := params[vi]
		params[vi] += direction * step * weight

		score := p.Cost(params)

		weight = 1
		if proportional[vi] && !math.IsInf(score, 0) && !math.IsNaN(score) {
			weight = math.Sqrt(score / samples)
		}

		if score < best {
			best = score
			wrongDirection = 0
			if p.Observer != nil {
				p.Observer(Step{Trial: trial, Index: vi, Cost: best, Params: append([]float64(nil), params...)})
			}
			continue
		}

		direction = -direction
		params[vi] = original

		// the weight tracks the residual, so once it is this small further
		// trials cannot change the displayed digits
		if weight < minWeight {
			result.Converged = true
			trial++
			break
		}

		wrongDirection++
		if wrongDirection != 2 {
			continue
		}

		step /= 10
		wrongDirection = 0
		wrongStep++
		// the floor itself is still tried; the batch ends once the step
		// has shrunk past it
		if step >= minStep {
			continue
		}

		if wrongStep >= cfg.BatchSize-1 {
			proportional[vi] = false
			slog.Debug("Coefficient marked non-proportional", "index", vi, "trial", trial)
		}

		wrongStep = 0
		vi = (vi + 1) % n
		batchIters = 0
		step = InitialStep
	}

	result.Cost = best
	result.Trials = trial
	slog.Debug("Compass search finished",
		"dim", n,
		"trials", trial,
		"limit", limit,
		"cost", best,
		"converged", result.Converged,
	)
	return result
}

// trialLimit returns iterations*batchSize*n, saturating at math.MaxInt
// instead of wrapping.
func trialLimit(iterations, batchSize, n int) int {
	if iterations <= 0 || batchSize <= 0 || n <= 0 {
		return 0
	}
	if iterations > math.MaxInt/batchSize/n {
		return math.MaxInt
	}
	return iterations * batchSize * n
}
