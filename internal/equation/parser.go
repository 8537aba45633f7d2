package equation

import (
	"strconv"
	"strings"
	"unicode"
)

// VariableName is the reserved identifier for the independent variable.
const VariableName = "x"

// Placeholder marks an unknown coefficient in a template.
const Placeholder = '$'

// cursor is the parser position. It is passed by value into every rule and
// the advanced copy is returned alongside the parsed node.
type cursor struct {
	pos   int // byte offset into the stripped source
	coeff int // index the next placeholder receives
}

func (c cursor) advance(n int) cursor {
	c.pos += n
	return c
}

type parser struct {
	src string
	lib *Library
}

// Compile expands template with the default macros and parses it against the
// default library.
func Compile(template string) (*Formula, error) {
	return CompileWith(template, DefaultMacros(), DefaultLibrary())
}

// CompileWith expands template with macros and parses it against lib.
func CompileWith(template string, macros Macros, lib *Library) (*Formula, error) {
	expanded, err := Expand(template, macros)
	if err != nil {
		return nil, err
	}
	return Parse(expanded, lib)
}

// Parse builds a formula from an already expanded template. Whitespace is
// ignored. A nil lib means DefaultLibrary.
func Parse(template string, lib *Library) (*Formula, error) {
	if lib == nil {
		lib = DefaultLibrary()
	}
	p := &parser{src: stripSpace(template), lib: lib}

	root, c, err := p.sum(cursor{})
	if err != nil {
		return nil, err
	}
	if c.pos < len(p.src) {
		return nil, p.unexpected(c)
	}
	return &Formula{root: root, template: template, coeffs: c.coeff}, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// peek returns the byte at the cursor, or 0 at the end of input.
func (p *parser) peek(c cursor) byte {
	if c.pos >= len(p.src) {
		return 0
	}
	return p.src[c.pos]
}

// sum := product ('+' product)*
func (p *parser) sum(c cursor) (Node, cursor, error) {
	left, c, err := p.product(c)
	if err != nil {
		return nil, c, err
	}
	for p.peek(c) == '+' {
		right, next, err := p.product(c.advance(1))
		if err != nil {
			return nil, next, err
		}
		left, c = Binary{Op: '+', Left: left, Right: right}, next
	}
	return left, c, nil
}

// product := power (('*' | '/') power | power)*
//
// An operand that starts with '$', a letter or '(' directly after another
// operand is an implicit multiplication.
func (p *parser) product(c cursor) (Node, cursor, error) {
	left, c, err := p.power(c)
	if err != nil {
		return nil, c, err
	}
	for {
		op := p.peek(c)
		from := c
		switch {
		case op == '*' || op == '/':
			from = c.advance(1)
		case op == Placeholder || op == '(' || isLetter(op):
			op = '*'
		default:
			return left, c, nil
		}
		right, next, err := p.power(from)
		if err != nil {
			return nil, next, err
		}
		left, c = Binary{Op: op, Left: left, Right: right}, next
	}
}

// power := primary ('^' exponent)*, right associative.
func (p *parser) power(c cursor) (Node, cursor, error) {
	base, c, err := p.primary(c)
	if err != nil {
		return nil, c, err
	}
	var exps []Node
	for p.peek(c) == '^' {
		exp, next, err := p.exponent(c.advance(1))
		if err != nil {
			return nil, next, err
		}
		exps = append(exps, exp)
		c = next
	}
	for i := len(exps) - 1; i > 0; i-- {
		exps[i-1] = Power{Base: exps[i-1], Exp: exps[i]}
	}
	if len(exps) > 0 {
		base = Power{Base: base, Exp: exps[0]}
	}
	return base, c, nil
}

// exponent := 'x' | '$' | number
func (p *parser) exponent(c cursor) (Node, cursor, error) {
	switch ch := p.peek(c); {
	case ch == VariableName[0]:
		return Variable{}, c.advance(1), nil
	case ch == Placeholder:
		return Coefficient{Index: c.coeff}, cursor{pos: c.pos + 1, coeff: c.coeff + 1}, nil
	}

	end, dots := c.pos, 0
	if p.peek(c) == '-' {
		end++
	}
	for end < len(p.src) && (isDigit(p.src[end]) || p.src[end] == '.') {
		if p.src[end] == '.' {
			dots++
			if dots > 1 {
				return nil, c, parseErr(ReasonBadExponent, end, "a number must contain at most one decimal point")
			}
		}
		end++
	}
	lit := p.src[c.pos:end]
	if lit == "" || lit == "-" {
		return nil, c, parseErr(ReasonBadExponent, c.pos, "expected x, $ or a number after '^'")
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, c, parseErr(ReasonBadExponent, c.pos, "%q is not a number", lit)
	}
	return Number{Value: v}, cursor{pos: end, coeff: c.coeff}, nil
}

func (p *parser) primary(c cursor) (Node, cursor, error) {
	ch := p.peek(c)
	switch {
	case c.pos >= len(p.src):
		return nil, c, parseErr(ReasonUnexpectedEnd, c.pos, "expected an operand")
	case ch == Placeholder:
		return Coefficient{Index: c.coeff}, cursor{pos: c.pos + 1, coeff: c.coeff + 1}, nil
	case isLetter(ch):
		return p.identifier(c)
	case isDigit(ch) || ch == '.':
		return p.number(c)
	case ch == '-' && c.pos+1 < len(p.src) && (isDigit(p.src[c.pos+1]) || p.src[c.pos+1] == '.'):
		return p.number(c)
	case ch == '(':
		inner, next, err := p.sum(c.advance(1))
		if err != nil {
			return nil, next, err
		}
		switch p.peek(next) {
		case ')':
			return inner, next.advance(1), nil
		case 0:
			return nil, next, parseErr(ReasonUnterminated, c.pos, "'(' is never closed")
		default:
			return nil, next, p.unexpected(next)
		}
	case ch == '+' || ch == '*' || ch == '/':
		return nil, c, parseErr(ReasonInvalidOperator, c.pos, "'%c' must follow an operand", ch)
	default:
		return nil, c, p.unexpected(c)
	}
}

// number scans an optionally negative literal of digits and '.'.
func (p *parser) number(c cursor) (Node, cursor, error) {
	end := c.pos
	if p.src[end] == '-' {
		end++
	}
	for end < len(p.src) && (isDigit(p.src[end]) || p.src[end] == '.') {
		end++
	}
	lit := p.src[c.pos:end]
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, c, parseErr(ReasonBadNumber, c.pos, "%q", lit)
	}
	return Number{Value: v}, cursor{pos: end, coeff: c.coeff}, nil
}

func (p *parser) identifier(c cursor) (Node, cursor, error) {
	end := c.pos
	for end < len(p.src) && isLetter(p.src[end]) {
		end++
	}
	name := p.src[c.pos:end]
	after := cursor{pos: end, coeff: c.coeff}

	if name == VariableName {
		return Variable{}, after, nil
	}
	if v, ok := p.lib.Const(name); ok {
		return Constant{Name: name, Value: v}, after, nil
	}
	fn, ok := p.lib.Func(name)
	if !ok {
		return nil, c, parseErr(ReasonUnknownIdentifier, c.pos, "%q", name)
	}
	if p.peek(after) != '(' {
		return nil, after, parseErr(ReasonExpectedParen, after.pos, "after function %s", name)
	}
	return p.call(fn, after)
}

// call parses the argument list of fn; open points at the '('.
func (p *parser) call(fn Func, open cursor) (Node, cursor, error) {
	var args []Node
	c := open.advance(1)
	if p.peek(c) == ')' {
		c = c.advance(1)
	} else {
	loop:
		for {
			arg, next, err := p.sum(c)
			if err != nil {
				return nil, next, err
			}
			args = append(args, arg)
			switch p.peek(next) {
			case ',':
				c = next.advance(1)
			case ')':
				c = next.advance(1)
				break loop
			case 0:
				return nil, next, parseErr(ReasonUnterminated, open.pos, "call to %s is never closed", fn.Name)
			default:
				return nil, next, p.unexpected(next)
			}
		}
	}

	if (fn.Arity == Variadic && len(args) == 0) || (fn.Arity != Variadic && len(args) != fn.Arity) {
		want := strconv.Itoa(fn.Arity)
		if fn.Arity == Variadic {
			want = "at least 1"
		}
		return nil, c, parseErr(ReasonArity, open.pos, "%s takes %s, got %d", fn.Name, want, len(args))
	}
	return Call{Func: fn, Args: args}, c, nil
}

// unexpected reports the character at c that no rule could consume.
func (p *parser) unexpected(c cursor) error {
	switch ch := p.peek(c); ch {
	case 0:
		return parseErr(ReasonUnexpectedEnd, c.pos, "")
	case ',':
		return parseErr(ReasonMisplacedComma, c.pos, "',' is only allowed between function arguments")
	case ')':
		return parseErr(ReasonUnexpectedChar, c.pos, "unmatched ')'")
	default:
		if isDigit(ch) || ch == '.' {
			return parseErr(ReasonUnexpectedChar, c.pos, "number %q cannot follow an operand", ch)
		}
		return parseErr(ReasonUnexpectedChar, c.pos, "%q", ch)
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
