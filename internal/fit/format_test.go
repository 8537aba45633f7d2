package fit

import (
	"math"
	"testing"

	"github.com/cwbudde/bestfit/internal/equation"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name      string
		template  string
		precision int
		coeffs    []float64
		want      string
	}{
		{"linear", "$x + $", 4, []float64{2.00001, 2.99997}, "2x + 3"},
		{"unit slope dropped", "$x + $", 2, []float64{1, -0.5}, "x + -0.5"},
		{"unit base kept", "$^x", 2, []float64{1}, "1^x"},
		{"negative unit kept", "$x^2 + $x + $", 1, []float64{0.25, -1.04, 0}, "0.3x^2 + -1x + 0"},
		{"unit inside call", "$*sin($x) + $", 2, []float64{2, 1, 0.5}, "2*sin(x) + 0.5"},
		{"missing values", "$x + $", 2, []float64{3}, "3x + $"},
		{"tiny negative", "$", 2, []float64{-0.001}, "0"},
		{"no placeholders", "sin(x)", 2, nil, "sin(x)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.template, tt.precision, tt.coeffs); got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	xs := []float64{-2, -0.5, 0.5, 1, 3}

	tests := []struct {
		template string
		coeffs   []float64
	}{
		{"$x + $", []float64{2.5, -1.25}},
		{"$x + $", []float64{1, 3}},
		{"$x^2 + $x + $", []float64{-0.123456, 1.00004, 7}},
		{"$*sin($x) + $", []float64{2, 1, -0.5}},
		{"$*cos($x) + $", []float64{-1, 0.3333, 2}},
		{"x^$ + $", []float64{-2, 1}},
		{"$^x", []float64{2.71828}},
		{"#poly(3)", []float64{0.1, -0.2, 0.3, -0.4}},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			f := mustCompile(t, tt.template)
			rounded := RoundAll(tt.coeffs, 4)

			text := Format(f.Template(), 4, tt.coeffs)
			reparsed, err := equation.Compile(text)
			if err != nil {
				t.Fatalf("Formatted text %q does not parse: %v", text, err)
			}
			if reparsed.NumCoefficients() != 0 {
				t.Fatalf("Formatted text %q still has placeholders", text)
			}

			for _, x := range xs {
				want := f.Eval(x, rounded)
				got := reparsed.Eval(x, nil)
				if math.Abs(got-want) > 1e-9*math.Max(1, math.Abs(want)) {
					t.Errorf("x=%v: %q gives %v, template gives %v", x, text, got, want)
				}
			}
		})
	}
}
