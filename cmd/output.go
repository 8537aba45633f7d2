package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/bestfit/internal/fit"
)

func formatValues(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}

func formatScore(score float64) string {
	switch {
	case math.IsNaN(score):
		return "nan"
	case math.IsInf(score, 1):
		return "inf"
	default:
		return strconv.FormatFloat(score, 'g', 6, 64)
	}
}

func formatFlags(flags []bool) string {
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = strconv.FormatBool(f)
	}
	return strings.Join(parts, ", ")
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintln(w, labelStyle.Render(label)+valueStyle.Render(value))
}

// printFitResult writes a fit result and its goodness-of-fit summary.
func printFitResult(w io.Writer, res *fit.Result, summary fit.Summary, withScore bool) {
	fmt.Fprintln(w, titleStyle.Render("Best fit"))
	printField(w, "Template", res.Template)
	printField(w, "Values", formatValues(res.Values))
	if res.Formatted != "" {
		printField(w, "Formatted", res.Formatted)
	}
	if withScore {
		printField(w, "Score", formatScore(res.Score))
		if res.Proportional != nil {
			printField(w, "Proportional", formatFlags(res.Proportional))
		}
	}

	trials := strconv.Itoa(res.Trials)
	if !res.Converged {
		trials += " " + warnStyle.Render("(budget exhausted)")
	}
	printField(w, "Trials", trials)
	printField(w, "RMSE", formatScore(summary.RMSE))
	printField(w, "R²", formatScore(summary.RSquared))
}

// rankCandidates orders candidates by score, keeping catalog order for ties.
func rankCandidates(candidates []fit.Candidate) []fit.Candidate {
	ranked := append([]fit.Candidate(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Score, ranked[j].Score
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		return a < b
	})
	return ranked
}

// printRanking writes every auto-fit candidate, best first.
func printRanking(w io.Writer, res *fit.AutoResult) {
	rank := lipgloss.NewStyle().Width(4)
	tmpl := lipgloss.NewStyle().Width(24)
	score := lipgloss.NewStyle().Width(14)

	fmt.Fprintln(w, titleStyle.Render("Catalog ranking"))
	fmt.Fprintln(w, headerStyle.Render(rank.Render("#")+tmpl.Render("TEMPLATE")+score.Render("SCORE")+"VALUES"))

	for i, c := range rankCandidates(res.Candidates) {
		row := rank.Render(strconv.Itoa(i+1)) +
			tmpl.Render(c.Template) +
			score.Render(formatScore(c.Score)) +
			formatValues(c.Values)
		switch {
		case c.Template == res.Template:
			row = winnerStyle.Render(row)
		case math.IsInf(c.Score, 1) || math.IsNaN(c.Score):
			row = mutedStyle.Render(row)
		}
		fmt.Fprintln(w, row)
	}

	fmt.Fprintln(w)
	printField(w, "Best", res.Template)
	printField(w, "Values", formatValues(res.Values))
	if res.Formatted != "" {
		printField(w, "Formatted", res.Formatted)
	}
	printField(w, "Score", formatScore(res.Score))
}
