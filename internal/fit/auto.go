package fit

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/bestfit/internal/equation"
)

// Catalog is the fixed list of templates AutoFindBestFit tries, in order.
var Catalog = []string{
	"$/x + $",
	"$x + $",
	"$x^2 + $x + $",
	"$x^3 + $x^2 + $x + $",
	"$*sin($x) + $",
	"$*cos($x) + $",
	"$*tan($x) + $",
	"$^x",
}

// AutoDisplayPrecision is the precision of AutoResult.Formatted.
const AutoDisplayPrecision = 2

// ErrNoFiniteFit is returned by AutoFindBestFit when every catalog template
// scores NaN or infinity on the data.
var ErrNoFiniteFit = errors.New("no catalog template produced a finite fit")

// Candidate is one catalog template fitted to the data.
type Candidate struct {
	Template string
	Values   []float64
	// Score is the residual sum of the rounded Values.
	Score     float64
	Trials    int
	Converged bool
}

// AutoResult is the best candidate plus every candidate tried.
type AutoResult struct {
	Template  string
	Values    []float64
	Score     float64
	Formatted string

	Candidates []Candidate
}

// AutoFindBestFit fits every catalog template and returns the one whose
// rounded coefficients score lowest. Ties keep the earlier template.
// opts.Round and opts.Format are ignored for the individual fits.
func AutoFindBestFit(data Dataset, opts Options) (*AutoResult, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	formulas := make([]*equation.Formula, len(Catalog))
	widest := 0
	for i, template := range Catalog {
		formula, err := equation.Compile(template)
		if err != nil {
			return nil, fmt.Errorf("compile catalog template %q: %w", template, err)
		}
		formulas[i] = formula
		widest = max(widest, formula.NumCoefficients())
	}
	if err := opts.checkBudget(widest); err != nil {
		return nil, err
	}

	each := opts
	each.Round = true
	each.Format = false

	out := &AutoResult{Candidates: make([]Candidate, 0, len(Catalog))}
	best := -1
	bestScore := math.Inf(1)

	for _, formula := range formulas {
		res, err := Fit(data, formula, each)
		if err != nil {
			return nil, fmt.Errorf("fit %q: %w", formula.Template(), err)
		}

		score := ResidualScore(data, formula, res.Values)
		out.Candidates = append(out.Candidates, Candidate{
			Template:  res.Template,
			Values:    res.Values,
			Score:     score,
			Trials:    res.Trials,
			Converged: res.Converged,
		})
		if score < bestScore {
			best, bestScore = len(out.Candidates)-1, score
		}
	}

	if best < 0 {
		return nil, ErrNoFiniteFit
	}

	winner := out.Candidates[best]
	out.Template = winner.Template
	out.Values = winner.Values
	out.Score = winner.Score
	if opts.Format {
		out.Formatted = Format(winner.Template, AutoDisplayPrecision, winner.Values)
	}

	slog.Info("Auto fit complete", "template", out.Template, "score", out.Score, "candidates", len(out.Candidates))
	return out, nil
}
