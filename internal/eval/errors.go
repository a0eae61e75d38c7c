package eval

import (
	"errors"
	"strconv"

	"github.com/simp-lang/simp/internal/diag"
	"github.com/simp-lang/simp/internal/lexer"
)

type ErrorKind int

const (
	ErrUnboundIdentifier ErrorKind = iota
	ErrNestingTooDeep
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnboundIdentifier:
		return "UnboundIdentifier"
	case ErrNestingTooDeep:
		return "NestingTooDeep"
	default:
		return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// EvalError reports why evaluation stopped.
type EvalError struct {
	Kind ErrorKind
	// Name is the unbound identifier, for ErrUnboundIdentifier.
	Name    string
	Message string
	Span    lexer.Span
}

func (e *EvalError) Error() string {
	return e.Span.String() + ": " + e.Message
}

// ToDiagnostic converts an evaluation error into a shared diagnostic structure.
func (e *EvalError) ToDiagnostic() diag.Diagnostic {
	span := diag.Span{
		Filename: e.Span.Filename,
		Line:     e.Span.Line,
		Column:   e.Span.Column,
		Start:    e.Span.Start,
		End:      e.Span.End,
	}
	d := diag.Diagnostic{
		Stage:    diag.StageEval,
		Severity: diag.SeverityError,
		Message:  e.Message,
		Span:     span,
	}

	switch e.Kind {
	case ErrUnboundIdentifier:
		d.Code = diag.CodeEvalUnboundIdentifier
		d = d.WithPrimarySpan(span, "not bound in this scope").
			WithNote("bindings of the same let are not visible to each other's values")
	case ErrNestingTooDeep:
		d.Code = diag.CodeEvalNestingTooDeep
		d = d.WithNote("the nesting limit can be raised with --max-depth or limits.max_depth")
	}
	return d
}

// AsEvalError unwraps err into an *EvalError.
func AsEvalError(err error) (*EvalError, bool) {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}
