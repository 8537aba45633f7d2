package opt

import (
	"math"
	"testing"
)

func defaultCompass() *Compass {
	return NewCompass(CompassConfig{Iterations: 100, BatchSize: 500, MinimumStepDp: 5, Precision: 4})
}

// residuals builds a sum-of-squares cost for model over the given points.
func residuals(xs, ys []float64, model func(x float64, c []float64) float64) func([]float64) float64 {
	return func(c []float64) float64 {
		var sum float64
		for i, x := range xs {
			d := ys[i] - model(x, c)
			sum += d * d
		}
		return sum
	}
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func TestCompassLinear(t *testing.T) {
	xs := []float64{1, 2, 3}
	ys := []float64{5, 7, 9}
	cost := residuals(xs, ys, func(x float64, c []float64) float64 { return c[0]*x + c[1] })

	result := defaultCompass().Run(Problem{Cost: cost, Dim: 2, Samples: len(xs)})

	if got := []float64{round4(result.Params[0]), round4(result.Params[1])}; got[0] != 2 || got[1] != 3 {
		t.Errorf("Expected [2 3], got %v (raw %v)", got, result.Params)
	}
	if !result.Converged {
		t.Errorf("Expected convergence before the trial budget, used %d trials", result.Trials)
	}
	if result.Trials >= 100*500*2 {
		t.Errorf("Trials = %d, expected fewer than the budget", result.Trials)
	}
	for i, p := range result.Proportional {
		if !p {
			t.Errorf("Proportional[%d] = false, expected true", i)
		}
	}
}

func TestCompassQuadratic(t *testing.T) {
	var xs, ys []float64
	for x := -3.0; x <= 4; x++ {
		xs = append(xs, x)
		ys = append(ys, 0.5*x*x-2*x+1.5)
	}
	cost := residuals(xs, ys, func(x float64, c []float64) float64 { return c[0]*x*x + c[1]*x + c[2] })

	result := defaultCompass().Run(Problem{Cost: cost, Dim: 3, Samples: len(xs)})

	want := []float64{0.5, -2, 1.5}
	for i, w := range want {
		if got := round4(result.Params[i]); got != w {
			t.Errorf("Params[%d] = %v, expected %v", i, got, w)
		}
	}
}

func TestCompassDeterministic(t *testing.T) {
	cost := residuals([]float64{0, 1, 2, 3}, []float64{1, 2.7, 7.4, 20.1}, func(x float64, c []float64) float64 {
		return c[0] * math.Exp(c[1]*x)
	})

	r1 := defaultCompass().Run(Problem{Cost: cost, Dim: 2, Samples: 4})
	r2 := defaultCompass().Run(Problem{Cost: cost, Dim: 2, Samples: 4})

	if r1.Cost != r2.Cost || r1.Trials != r2.Trials {
		t.Fatalf("Non-deterministic: (%v, %d) vs (%v, %d)", r1.Cost, r1.Trials, r2.Cost, r2.Trials)
	}
	for i := range r1.Params {
		if r1.Params[i] != r2.Params[i] {
			t.Errorf("Params[%d] differ: %v vs %v", i, r1.Params[i], r2.Params[i])
		}
	}
}

func TestCompassZeroDim(t *testing.T) {
	calls := 0
	result := defaultCompass().Run(Problem{
		Cost: func([]float64) float64 { calls++; return 4 },
		Dim:  0,
	})

	if len(result.Params) != 0 {
		t.Errorf("Expected no params, got %v", result.Params)
	}
	if result.Cost != 4 || calls != 1 {
		t.Errorf("Expected a single evaluation with cost 4, got cost %v after %d calls", result.Cost, calls)
	}
	if result.Trials != 0 {
		t.Errorf("Trials = %d, expected 0", result.Trials)
	}
	if !result.Converged {
		t.Error("Expected a search with nothing to vary to be converged")
	}
}

func TestCompassObserverImproves(t *testing.T) {
	cost := residuals([]float64{1, 2, 3}, []float64{5, 7, 9}, func(x float64, c []float64) float64 { return c[0]*x + c[1] })

	var steps []Step
	result := defaultCompass().Run(Problem{
		Cost:     cost,
		Dim:      2,
		Samples:  3,
		Observer: func(s Step) { steps = append(steps, s) },
	})

	if len(steps) == 0 {
		t.Fatal("Observer was never called")
	}
	for i := 1; i < len(steps); i++ {
		if steps[i].Cost >= steps[i-1].Cost {
			t.Fatalf("Step %d cost %v does not improve on %v", i, steps[i].Cost, steps[i-1].Cost)
		}
		if steps[i].Trial <= steps[i-1].Trial {
			t.Fatalf("Step %d trial %d is not after %d", i, steps[i].Trial, steps[i-1].Trial)
		}
	}
	last := steps[len(steps)-1]
	if last.Cost != result.Cost {
		t.Errorf("Last observed cost %v != result cost %v", last.Cost, result.Cost)
	}

	// Observed params must be copies
	last.Params[0] = 1000
	if result.Params[0] == 1000 {
		t.Error("Observer params alias the optimizer state")
	}
}

func TestCompassRecoversFromInfiniteStart(t *testing.T) {
	cost := func(c []float64) float64 {
		if c[0] < 1.05 {
			return math.Inf(1)
		}
		return (c[0] - 3) * (c[0] - 3)
	}

	result := defaultCompass().Run(Problem{Cost: cost, Dim: 1, Samples: 1})

	if math.Abs(result.Params[0]-3) > 1e-6 {
		t.Errorf("Params[0] = %v, expected 3", result.Params[0])
	}
	if !result.Converged {
		t.Error("Expected convergence")
	}
}

func TestCompassAllInfinite(t *testing.T) {
	c := NewCompass(CompassConfig{Iterations: 2, BatchSize: 10, MinimumStepDp: 5, Precision: 4})
	result := c.Run(Problem{Cost: func([]float64) float64 { return math.Inf(1) }, Dim: 2, Samples: 1})

	if result.Params[0] != 1 || result.Params[1] != 1 {
		t.Errorf("Expected the initial vector, got %v", result.Params)
	}
	if !math.IsInf(result.Cost, 1) {
		t.Errorf("Cost = %v, expected +Inf", result.Cost)
	}
	if result.Converged {
		t.Error("An infinite cost never converges")
	}
	if result.Trials != 40 {
		t.Errorf("Trials = %d, expected the full budget of 40", result.Trials)
	}
}

func TestCompassMarksNonProportional(t *testing.T) {
	flat := func([]float64) float64 { return 1 }

	tests := []struct {
		batch        int
		proportional bool
	}{
		{batch: 5, proportional: true},
		{batch: 8, proportional: true},
		{batch: 10, proportional: false},
		{batch: 11, proportional: true},
	}

	for _, tt := range tests {
		c := NewCompass(CompassConfig{Iterations: 10, BatchSize: tt.batch, MinimumStepDp: 5, Precision: 4})
		result := c.Run(Problem{Cost: flat, Dim: 1, Samples: 1})

		if result.Proportional[0] != tt.proportional {
			t.Errorf("batch %d: Proportional[0] = %v, expected %v", tt.batch, result.Proportional[0], tt.proportional)
		}
		if result.Trials != 10*tt.batch {
			t.Errorf("batch %d: Trials = %d, expected %d", tt.batch, result.Trials, 10*tt.batch)
		}
		if result.Params[0] != 1 {
			t.Errorf("batch %d: Params[0] = %v, expected 1", tt.batch, result.Params[0])
		}
	}
}

// The step floor is tried before a batch ends. Stopping one shrink early
// lands #poly(3) on [1.0734 -0.9547 1.6683 1.1035] instead.
func TestCompassTriesStepFloor(t *testing.T) {
	tests := []struct {
		name  string
		xs    []float64
		ys    []float64
		model func(x float64, c []float64) float64
		want  []float64
	}{
		{
			name:  "linear",
			xs:    []float64{1, 2, 3, 4, 5, 6},
			ys:    []float64{2.1, 3.9, 6.2, 7.8, 10.1, 12.2},
			model: func(x float64, c []float64) float64 { return c[0]*x + c[1] },
			want:  []float64{2.02, -0.02},
		},
		{
			name: "cubic",
			xs:   []float64{0, 1, 2, 3},
			ys:   []float64{1.1, 2.9, 9.2, 26.5},
			model: func(x float64, c []float64) float64 {
				return c[0]*x*x*x + c[1]*x*x + c[2]*x + c[3]
			},
			want: []float64{1.0657, -0.9197, 1.6311, 1.1062},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := defaultCompass().Run(Problem{
				Cost:    residuals(tt.xs, tt.ys, tt.model),
				Dim:     len(tt.want),
				Samples: len(tt.xs),
			})

			for i, w := range tt.want {
				if got := round4(result.Params[i]); got != w {
					t.Errorf("Params[%d] = %v, expected %v (raw %v)", i, got, w, result.Params)
				}
			}
			if result.Trials != 100*500*len(tt.want) {
				t.Errorf("Trials = %d, expected the full budget", result.Trials)
			}
		})
	}
}

func TestCompassHugeBudgetDoesNotWrap(t *testing.T) {
	c := NewCompass(CompassConfig{Iterations: math.MaxInt / 2, BatchSize: 500, MinimumStepDp: 5, Precision: 4})
	cost := residuals([]float64{1, 2, 3}, []float64{5, 7, 9}, func(x float64, c []float64) float64 { return c[0]*x + c[1] })

	result := c.Run(Problem{Cost: cost, Dim: 2, Samples: 3})

	if result.Trials == 0 {
		t.Fatal("Search did not run")
	}
	if !result.Converged {
		t.Errorf("Expected convergence, used %d trials", result.Trials)
	}
	if got := []float64{round4(result.Params[0]), round4(result.Params[1])}; got[0] != 2 || got[1] != 3 {
		t.Errorf("Expected [2 3], got %v", got)
	}
}

func TestTrialLimit(t *testing.T) {
	tests := []struct {
		iterations, batch, n int
		want                 int
	}{
		{100, 500, 2, 100000},
		{0, 500, 2, 0},
		{100, 500, 0, 0},
		{math.MaxInt / 2, 500, 2, math.MaxInt},
		{math.MaxInt, math.MaxInt, math.MaxInt, math.MaxInt},
	}

	for _, tt := range tests {
		if got := trialLimit(tt.iterations, tt.batch, tt.n); got != tt.want {
			t.Errorf("trialLimit(%d, %d, %d) = %d, want %d", tt.iterations, tt.batch, tt.n, got, tt.want)
		}
	}
}
