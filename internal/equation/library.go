package equation

import "math"

// Variadic marks a function that accepts one or more arguments.
const Variadic = -1

// Func is a named math function callable from a template.
type Func struct {
	Name  string
	Arity int
	Call  func(args []float64) float64
}

// Library is the read-only set of functions and constants a template may
// reference by name.
type Library struct {
	funcs  map[string]Func
	consts map[string]float64
}

// NewLibrary builds a library from explicit function and constant tables.
// The tables are copied.
func NewLibrary(funcs []Func, consts map[string]float64) *Library {
	lib := &Library{
		funcs:  make(map[string]Func, len(funcs)),
		consts: make(map[string]float64, len(consts)),
	}
	for _, f := range funcs {
		lib.funcs[f.Name] = f
	}
	for name, v := range consts {
		lib.consts[name] = v
	}
	return lib
}

// Func looks up a function by name.
func (l *Library) Func(name string) (Func, bool) {
	f, ok := l.funcs[name]
	return f, ok
}

// Const looks up a constant by name.
func (l *Library) Const(name string) (float64, bool) {
	v, ok := l.consts[name]
	return v, ok
}

func unary(name string, fn func(float64) float64) Func {
	return Func{Name: name, Arity: 1, Call: func(a []float64) float64 { return fn(a[0]) }}
}

func binary(name string, fn func(float64, float64) float64) Func {
	return Func{Name: name, Arity: 2, Call: func(a []float64) float64 { return fn(a[0], a[1]) }}
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return v
	}
}

var defaultLibrary = NewLibrary([]Func{
	unary("abs", math.Abs),
	unary("acos", math.Acos),
	unary("acosh", math.Acosh),
	unary("asin", math.Asin),
	unary("asinh", math.Asinh),
	unary("atan", math.Atan),
	unary("atanh", math.Atanh),
	unary("cbrt", math.Cbrt),
	unary("ceil", math.Ceil),
	unary("cos", math.Cos),
	unary("cosh", math.Cosh),
	unary("exp", math.Exp),
	unary("floor", math.Floor),
	unary("log", math.Log),
	binary("pow", math.Pow),
	unary("round", roundHalfUp),
	unary("sign", sign),
	unary("sin", math.Sin),
	unary("sinh", math.Sinh),
	unary("sqrt", math.Sqrt),
	unary("tan", math.Tan),
	unary("tanh", math.Tanh),
	unary("trunc", math.Trunc),
	{Name: "hypot", Arity: Variadic, Call: func(a []float64) float64 {
		h := 0.0
		for _, v := range a {
			h = math.Hypot(h, v)
		}
		return h
	}},
	{Name: "max", Arity: Variadic, Call: func(a []float64) float64 {
		m := math.Inf(-1)
		for _, v := range a {
			m = math.Max(m, v)
		}
		return m
	}},
	{Name: "min", Arity: Variadic, Call: func(a []float64) float64 {
		m := math.Inf(1)
		for _, v := range a {
			m = math.Min(m, v)
		}
		return m
	}},
}, map[string]float64{
	"E":  math.E,
	"PI": math.Pi,
})

// DefaultLibrary returns the standard math library: trigonometric,
// hyperbolic, exponential and rounding functions plus the constants E and PI.
func DefaultLibrary() *Library {
	return defaultLibrary
}
