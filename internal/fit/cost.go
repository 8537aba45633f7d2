package fit

import (
	"math"

	"github.com/cwbudde/bestfit/internal/equation"
)

// ResidualScore returns the sum of squared residuals of formula with coeffs
// over data. A NaN or infinite sum is reported as +Inf.
func ResidualScore(data Dataset, formula *equation.Formula, coeffs []float64) float64 {
	var sum float64
	for _, p := range data {
		d := p.Y - formula.Eval(p.X, coeffs)
		sum += d * d
	}
	if !isFinite(sum) {
		return math.Inf(1)
	}
	return sum
}

// NewCostFunc binds data and formula into an objective for opt.Problem.
func NewCostFunc(data Dataset, formula *equation.Formula) func([]float64) float64 {
	return func(coeffs []float64) float64 {
		return ResidualScore(data, formula, coeffs)
	}
}
