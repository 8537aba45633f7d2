package fit

import (
	"errors"
	"fmt"

	"github.com/cwbudde/bestfit/internal/equation"
)

// ErrCoefficientCount is returned when a coefficient vector does not match the
// number of placeholders in a template.
var ErrCoefficientCount = errors.New("coefficient count does not match template")

// BuildEvalFunc compiles template and binds coeffs into a single-variable
// function. The coefficients are copied, so later changes to the caller's
// slice do not affect the returned function.
func BuildEvalFunc(template string, coeffs []float64) (func(x float64) float64, error) {
	formula, err := equation.Compile(template)
	if err != nil {
		return nil, err
	}
	return Bind(formula, coeffs)
}

// Bind is BuildEvalFunc for an already compiled formula.
func Bind(formula *equation.Formula, coeffs []float64) (func(x float64) float64, error) {
	if len(coeffs) != formula.NumCoefficients() {
		return nil, fmt.Errorf("%w: %q has %d placeholders, got %d values",
			ErrCoefficientCount, formula.Template(), formula.NumCoefficients(), len(coeffs))
	}
	c := append([]float64(nil), coeffs...)
	return func(x float64) float64 {
		return formula.Eval(x, c)
	}, nil
}
