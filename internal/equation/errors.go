package equation

import "fmt"

// Reason classifies why a template was rejected.
type Reason int

const (
	reasonAny Reason = iota
	ReasonUnexpectedChar
	ReasonUnexpectedEnd
	ReasonUnterminated
	ReasonExpectedParen
	ReasonUnknownIdentifier
	ReasonInvalidOperator
	ReasonBadNumber
	ReasonBadExponent
	ReasonMisplacedComma
	ReasonArity
	ReasonUnknownMacro
	ReasonBadMacroArgument
)

var reasonNames = map[Reason]string{
	ReasonUnexpectedChar:    "unexpected character",
	ReasonUnexpectedEnd:     "unexpected end of input",
	ReasonUnterminated:      "unterminated parenthesis",
	ReasonExpectedParen:     "expected '('",
	ReasonUnknownIdentifier: "unknown identifier",
	ReasonInvalidOperator:   "invalid operator",
	ReasonBadNumber:         "malformed number",
	ReasonBadExponent:       "invalid exponent",
	ReasonMisplacedComma:    "misplaced comma",
	ReasonArity:             "wrong number of arguments",
	ReasonUnknownMacro:      "unknown macro",
	ReasonBadMacroArgument:  "invalid macro argument",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "error"
}

// ParseError is returned when an expanded template cannot be parsed.
// Pos is the byte offset in the whitespace-stripped template.
//
// Use errors.Is(err, ErrParse) to match any parse error, or one of the
// reason sentinels (ErrUnknownIdentifier, ErrInvalidOperator, ...) to
// match a specific failure.
type ParseError struct {
	Reason Reason
	Pos    int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("parse error at %d: %s", e.Pos, e.Reason)
	}
	return fmt.Sprintf("parse error at %d: %s: %s", e.Pos, e.Reason, e.Msg)
}

func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	if !ok {
		return false
	}
	return t.Reason == reasonAny || t.Reason == e.Reason
}

// MacroError is returned when macro expansion fails.
type MacroError struct {
	Reason Reason
	Name   string
	Pos    int
	Msg    string
}

func (e *MacroError) Error() string {
	s := fmt.Sprintf("macro error at %d: %s", e.Pos, e.Reason)
	if e.Name != "" {
		s += " '" + e.Name + "'"
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *MacroError) Is(target error) bool {
	t, ok := target.(*MacroError)
	if !ok {
		return false
	}
	return t.Reason == reasonAny || t.Reason == e.Reason
}

var (
	ErrParse = &ParseError{}
	ErrMacro = &MacroError{}

	ErrUnknownIdentifier = &ParseError{Reason: ReasonUnknownIdentifier}
	ErrInvalidOperator   = &ParseError{Reason: ReasonInvalidOperator}
	ErrUnexpectedChar    = &ParseError{Reason: ReasonUnexpectedChar}
	ErrUnterminated      = &ParseError{Reason: ReasonUnterminated}
	ErrBadExponent       = &ParseError{Reason: ReasonBadExponent}
	ErrMisplacedComma    = &ParseError{Reason: ReasonMisplacedComma}

	ErrUnknownMacro      = &MacroError{Reason: ReasonUnknownMacro}
	ErrBadMacroArgument  = &MacroError{Reason: ReasonBadMacroArgument}
	ErrUnterminatedMacro = &MacroError{Reason: ReasonUnterminated}
)

func parseErr(reason Reason, pos int, format string, args ...any) *ParseError {
	return &ParseError{Reason: reason, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
