package equation

import (
	"strconv"
	"strings"
)

// MacroMarker introduces a macro invocation such as #poly(3).
const MacroMarker = '#'

// MacroFunc generates template text from the trimmed macro arguments.
type MacroFunc func(args []string) (string, error)

// Macros maps macro names to their generators. A Macros value is treated as
// read-only once handed to Expand.
type Macros map[string]MacroFunc

// DefaultMacros returns a fresh registry holding the built-in macros.
func DefaultMacros() Macros {
	return Macros{
		"poly": polynomial,
	}
}

// polynomial expands #poly(N) into $x^N + ... + $x^2 + $x + $.
func polynomial(args []string) (string, error) {
	if len(args) != 1 {
		return "", &MacroError{Reason: ReasonBadMacroArgument, Name: "poly", Msg: "expected exactly one argument (degree)"}
	}
	degree, err := strconv.Atoi(args[0])
	if err != nil {
		return "", &MacroError{Reason: ReasonBadMacroArgument, Name: "poly", Msg: "invalid degree '" + args[0] + "'"}
	}
	if degree < 1 {
		return "", &MacroError{Reason: ReasonBadMacroArgument, Name: "poly", Msg: "degree must be at least 1"}
	}

	var b strings.Builder
	for i := degree; i >= 2; i-- {
		b.WriteString("$x^")
		b.WriteString(strconv.Itoa(i))
		b.WriteString(" + ")
	}
	b.WriteString("$x + $")
	return b.String(), nil
}

// Expand replaces every macro invocation in template with the output of its
// generator. The output of a generator is not expanded again.
func Expand(template string, macros Macros) (string, error) {
	if strings.IndexByte(template, MacroMarker) < 0 {
		return template, nil
	}

	var out strings.Builder
	for i := 0; i < len(template); i++ {
		if template[i] != MacroMarker {
			out.WriteByte(template[i])
			continue
		}
		start := i
		i++

		nameStart := i
		for i < len(template) && isLetter(template[i]) {
			i++
		}
		name := template[nameStart:i]
		if name == "" || i >= len(template) || template[i] != '(' {
			return "", &MacroError{Reason: ReasonExpectedParen, Name: name, Pos: start, Msg: "expected identifier and '(' after '#'"}
		}

		argStart := i + 1
		depth := 1
		for depth > 0 {
			i++
			if i >= len(template) {
				return "", &MacroError{Reason: ReasonUnterminated, Name: name, Pos: start}
			}
			switch template[i] {
			case '(':
				depth++
			case ')':
				depth--
			}
		}

		gen, ok := macros[name]
		if !ok {
			return "", &MacroError{Reason: ReasonUnknownMacro, Name: name, Pos: start}
		}
		text, err := gen(splitArgs(template[argStart:i]))
		if err != nil {
			if me, ok := err.(*MacroError); ok {
				me.Pos = start
				return "", me
			}
			return "", &MacroError{Reason: ReasonBadMacroArgument, Name: name, Pos: start, Msg: err.Error()}
		}
		out.WriteString(text)
	}
	return out.String(), nil
}

// splitArgs splits s on commas that are not nested inside parentheses.
func splitArgs(s string) []string {
	var args []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(s[last:]))
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
