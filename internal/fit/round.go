package fit

import "math"

// roundingBias is the machine epsilon nudged onto every value before rounding
// so that decimal halves stored just below .5 still round up.
const roundingBias = 0x1p-52

// Round rounds v half-up to precision decimal places.
func Round(v float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	return math.Floor((v+roundingBias)*scale+0.5) / scale
}

// RoundAll returns a rounded copy of values.
func RoundAll(values []float64, precision int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = Round(v, precision)
	}
	return out
}
