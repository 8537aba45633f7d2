package fit

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes how well a fitted function explains a dataset.
type Summary struct {
	N    int
	SSE  float64 // sum of squared residuals
	RMSE float64
	// RSquared is the coefficient of determination. It is not finite when
	// every y is the same.
	RSquared float64
}

// Summarize evaluates predict at every x of data and compares it with y.
func Summarize(data Dataset, predict func(x float64) float64) Summary {
	if len(data) == 0 {
		return Summary{RMSE: math.NaN(), RSquared: math.NaN()}
	}

	ys := data.Ys()
	estimates := make([]float64, len(data))
	squared := make([]float64, len(data))
	for i, p := range data {
		estimates[i] = predict(p.X)
		d := ys[i] - estimates[i]
		squared[i] = d * d
	}

	sse := floats.Sum(squared)
	return Summary{
		N:        len(data),
		SSE:      sse,
		RMSE:     math.Sqrt(sse / float64(len(data))),
		RSquared: stat.RSquaredFrom(estimates, ys, nil),
	}
}
