package lang

import "fmt"

// Kind classifies interpreter errors, per spec.md §7.
type Kind int

const (
	SyntaxError Kind = iota
	UnboundSymbol
	TypeError
	ArityError
	AssertionFailed
	IoError
	MacroError
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case UnboundSymbol:
		return "UnboundSymbol"
	case TypeError:
		return "TypeError"
	case ArityError:
		return "ArityError"
	case AssertionFailed:
		return "AssertionFailed"
	case IoError:
		return "IoError"
	case MacroError:
		return "MacroError"
	default:
		return "Error"
	}
}

// Error is the interpreter's error type. It carries a Kind, a short
// message, and optionally the printed form of the offending expression
// for diagnostics (per spec.md §7's "user-visible behavior").
type Error struct {
	Kind    Kind
	Message string
	Expr    *Value
	Wrapped error
}

func (e *Error) Error() string {
	msg := e.Kind.String() + ": " + e.Message
	if e.Expr != nil {
		msg += " in " + e.Expr.String()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Wrapped }

// NewError constructs an Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithExpr attaches the offending expression to an error for diagnostics
// and returns the same *Error for chaining.
func (e *Error) WithExpr(expr Value) *Error {
	e.Expr = &expr
	return e
}

// Errorf builds an *Error carrying kind and a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
