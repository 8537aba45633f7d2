package fit

import (
	"fmt"
	"math"
)

// Point is one (x, y) observation.
type Point struct {
	X, Y float64
}

// Dataset is an ordered list of observations. Order only matters for
// reproducibility: the residual sum is accumulated in this order.
type Dataset []Point

// ValidationError reports input that cannot be fitted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

// Validate checks that the dataset is non-empty and every coordinate is finite.
func (d Dataset) Validate() error {
	if len(d) == 0 {
		return &ValidationError{Field: "data", Reason: "cannot be empty"}
	}
	for i, p := range d {
		if !isFinite(p.X) {
			return &ValidationError{Field: fmt.Sprintf("data[%d].x", i), Reason: "must be finite"}
		}
		if !isFinite(p.Y) {
			return &ValidationError{Field: fmt.Sprintf("data[%d].y", i), Reason: "must be finite"}
		}
	}
	return nil
}

// Xs returns the x coordinates in order.
func (d Dataset) Xs() []float64 {
	xs := make([]float64, len(d))
	for i, p := range d {
		xs[i] = p.X
	}
	return xs
}

// Ys returns the y coordinates in order.
func (d Dataset) Ys() []float64 {
	ys := make([]float64, len(d))
	for i, p := range d {
		ys[i] = p.Y
	}
	return ys
}

// Sequential pairs each value with an ascending integer x beginning at start.
func Sequential(values []float64, start int) Dataset {
	data := make(Dataset, len(values))
	for i, v := range values {
		data[i] = Point{X: float64(start + i), Y: v}
	}
	return data
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
