package equation

import (
	"math"
	"strconv"
	"strings"
)

// Node is one element of a parsed formula.
type Node interface {
	// Eval computes the node for variable x and coefficient vector c.
	Eval(x float64, c []float64) float64
	String() string
}

// Number is a numeric literal.
type Number struct{ Value float64 }

func (n Number) Eval(float64, []float64) float64 { return n.Value }
func (n Number) String() string                  { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

// Variable is the independent variable x.
type Variable struct{}

func (Variable) Eval(x float64, _ []float64) float64 { return x }
func (Variable) String() string                      { return "x" }

// Coefficient is the placeholder with the given scan-order index.
type Coefficient struct{ Index int }

func (c Coefficient) Eval(_ float64, coeffs []float64) float64 { return coeffs[c.Index] }
func (c Coefficient) String() string                           { return "c" + strconv.Itoa(c.Index) }

// Constant is a named library constant such as PI.
type Constant struct {
	Name  string
	Value float64
}

func (c Constant) Eval(float64, []float64) float64 { return c.Value }
func (c Constant) String() string                  { return c.Name }

// Binary applies one of + * / to two operands.
type Binary struct {
	Op          byte
	Left, Right Node
}

func (b Binary) Eval(x float64, c []float64) float64 {
	l, r := b.Left.Eval(x, c), b.Right.Eval(x, c)
	switch b.Op {
	case '+':
		return l + r
	case '*':
		return l * r
	case '/':
		return l / r
	}
	return math.NaN()
}

func (b Binary) String() string {
	return "(" + b.Left.String() + string(b.Op) + b.Right.String() + ")"
}

// Power raises Base to Exp.
type Power struct {
	Base, Exp Node
}

func (p Power) Eval(x float64, c []float64) float64 {
	return math.Pow(p.Base.Eval(x, c), p.Exp.Eval(x, c))
}

func (p Power) String() string {
	return "(" + p.Base.String() + "^" + p.Exp.String() + ")"
}

// Call invokes a library function.
type Call struct {
	Func Func
	Args []Node
}

func (f Call) Eval(x float64, c []float64) float64 {
	args := make([]float64, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.Eval(x, c)
	}
	return f.Func.Call(args)
}

func (f Call) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	return f.Func.Name + "(" + strings.Join(parts, ",") + ")"
}

// Formula is a compiled equation template.
type Formula struct {
	root     Node
	template string
	coeffs   int
}

// Eval computes f(x) with the given coefficients. It panics if c holds
// fewer values than NumCoefficients.
func (f *Formula) Eval(x float64, c []float64) float64 {
	return f.root.Eval(x, c)
}

// NumCoefficients is the number of placeholders in the template.
func (f *Formula) NumCoefficients() int { return f.coeffs }

// Template returns the expanded template text the formula was parsed from.
func (f *Formula) Template() string { return f.template }

// Root returns the expression tree.
func (f *Formula) Root() Node { return f.root }

// String renders the formula fully parenthesised, with placeholders as
// c0, c1, ... Two templates that parse to the same tree render identically.
func (f *Formula) String() string { return f.root.String() }
