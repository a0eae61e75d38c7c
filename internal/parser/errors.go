package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/simp-lang/simp/internal/diag"
	"github.com/simp-lang/simp/internal/lexer"
)

// ErrorKind classifies parse failures.
type ErrorKind int

const (
	ErrUnexpectedToken ErrorKind = iota
	ErrExpectedConstruct
	ErrUnexpectedEndOfInput
	ErrEmptyBindingList
	ErrDuplicateBinding
	ErrNestingTooDeep
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnexpectedToken:
		return "UnexpectedToken"
	case ErrExpectedConstruct:
		return "ExpectedConstruct"
	case ErrUnexpectedEndOfInput:
		return "UnexpectedEndOfInput"
	case ErrEmptyBindingList:
		return "EmptyBindingList"
	case ErrDuplicateBinding:
		return "DuplicateBinding"
	case ErrNestingTooDeep:
		return "NestingTooDeep"
	default:
		return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

func (k ErrorKind) diagnosticCode() diag.Code {
	switch k {
	case ErrUnexpectedToken:
		return diag.CodeParseUnexpectedToken
	case ErrExpectedConstruct:
		return diag.CodeParseExpectedConstruct
	case ErrUnexpectedEndOfInput:
		return diag.CodeParseUnexpectedEndOfInput
	case ErrEmptyBindingList:
		return diag.CodeParseEmptyBindingList
	case ErrDuplicateBinding:
		return diag.CodeParseDuplicateBinding
	case ErrNestingTooDeep:
		return diag.CodeParseNestingTooDeep
	default:
		return diag.Code("PARSE_UNKNOWN_ERROR")
	}
}

// ParseError captures the first syntax error with location context.
type ParseError struct {
	Kind    ErrorKind
	Message string
	// Expected names the construct the parser required, when there was one.
	Expected string
	// Found describes the offending token, or "end of input".
	Found string
	Span  lexer.Span
	// Related points at an earlier construct involved in the error, such as
	// the first binding of a duplicated name.
	Related *lexer.Span
}

func (e *ParseError) Error() string {
	return e.Span.String() + ": " + e.Message
}

// ToDiagnostic converts a parse error into a shared diagnostic structure.
func (e *ParseError) ToDiagnostic() diag.Diagnostic {
	d := diag.Diagnostic{
		Stage:    diag.StageParser,
		Severity: diag.SeverityError,
		Code:     e.Kind.diagnosticCode(),
		Message:  e.Message,
		Span:     toDiagSpan(e.Span),
	}

	switch e.Kind {
	case ErrExpectedConstruct:
		d = d.WithPrimarySpan(d.Span, "expected "+e.Expected)
	case ErrEmptyBindingList:
		d = d.WithPrimarySpan(d.Span, "no bindings before `in`").
			WithHelp("a let expression needs at least one `name = value` binding")
	case ErrDuplicateBinding:
		d = d.WithPrimarySpan(d.Span, "bound again here")
		if e.Related != nil {
			d = d.WithSecondarySpan(toDiagSpan(*e.Related), "first bound here")
		}
	case ErrNestingTooDeep:
		d = d.WithNote("the nesting limit can be raised with --max-depth or limits.max_depth")
	default:
		if e.Found != "" {
			d = d.WithPrimarySpan(d.Span, "unexpected "+e.Found)
		}
	}
	return d
}

// AsParseError unwraps err into a *ParseError.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func toDiagSpan(s lexer.Span) diag.Span {
	return diag.Span{
		Filename: s.Filename,
		Line:     s.Line,
		Column:   s.Column,
		Start:    s.Start,
		End:      s.End,
	}
}

const (
	endOfInput          = "end of input"
	constructIdentifier = "identifier"
)

// describe renders a token for error messages.
func describe(tok lexer.Token) string {
	switch tok.Kind {
	case lexer.INTEGER:
		return fmt.Sprintf("integer `%s`", tok.Lexeme())
	case lexer.IDENTIFIER:
		return fmt.Sprintf("identifier `%s`", tok.Text)
	default:
		return fmt.Sprintf("`%s`", tok.Lexeme())
	}
}

func (p *Parser) errorAt(kind ErrorKind, span lexer.Span, msg string) *ParseError {
	if span.Filename == "" {
		span.Filename = p.filename
	}
	return &ParseError{Kind: kind, Message: msg, Span: span}
}

// unexpected reports tok where context could not use it.
func (p *Parser) unexpected(tok lexer.Token, context string) *ParseError {
	found := describe(tok)
	msg := "unexpected token " + found
	if context != "" {
		msg += ": " + context
	}
	err := p.errorAt(ErrUnexpectedToken, tok.Span, msg)
	err.Found = found
	return err
}

// unexpectedEnd reports that input ran out while context still needed more.
func (p *Parser) unexpectedEnd(context string) *ParseError {
	msg := "unexpected end of input"
	if context != "" {
		msg += ": " + context
	}
	err := p.errorAt(ErrUnexpectedEndOfInput, p.stream.EndSpan(), msg)
	err.Found = endOfInput
	return err
}

// expected reports that a mandatory construct was missing. tok is only
// consulted when ok is true.
func (p *Parser) expected(what string, tok lexer.Token, ok bool) *ParseError {
	found, span := endOfInput, p.stream.EndSpan()
	if ok {
		found, span = describe(tok), tok.Span
	}
	shown := "`" + what + "`"
	if what == constructIdentifier {
		shown = what
	}
	err := p.errorAt(ErrExpectedConstruct, span, fmt.Sprintf("expected %s, found %s", shown, found))
	err.Expected = what
	err.Found = found
	return err
}
