package fit

import (
	"strconv"
	"strings"

	"github.com/cwbudde/bestfit/internal/equation"
)

// Format substitutes coeffs into the placeholders of template, in order,
// each rounded to precision places. A value of exactly 1 directly in front of
// the variable is dropped, so "$x" renders as "x" rather than "1x".
// Placeholders without a matching value are left as "$".
func Format(template string, precision int, coeffs []float64) string {
	var b strings.Builder
	b.Grow(len(template) + 8*len(coeffs))

	next := 0
	for i := 0; i < len(template); i++ {
		ch := template[i]
		if ch != equation.Placeholder {
			b.WriteByte(ch)
			continue
		}
		if next >= len(coeffs) {
			b.WriteByte(ch)
			continue
		}

		v := Round(coeffs[next], precision)
		next++
		if v == 1 && i+1 < len(template) && template[i+1] == equation.VariableName[0] {
			continue
		}
		b.WriteString(formatValue(v))
	}
	return b.String()
}

// formatValue renders v in the shortest plain decimal form.
func formatValue(v float64) string {
	if v == 0 {
		// drops the sign of -0
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
