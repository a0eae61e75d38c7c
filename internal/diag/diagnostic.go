package diag

import "fmt"

// Stage identifies which interpreter phase produced the diagnostic.
type Stage string

const (
	StageLexer  Stage = "lexer"
	StageParser Stage = "parser"
	StageEval   Stage = "eval"
	StageCheck  Stage = "check"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// LabeledSpan represents a span with an optional label.
type LabeledSpan struct {
	Span  Span
	Label string // Optional label (e.g., "expected `end`")
	Style string // "primary" or "secondary" - primary spans are emphasized
}

// Code is a stable identifier for a diagnostic.
type Code string

const (
	// Lexer errors
	CodeLexerIncompleteOperator    Code = "LEXER_INCOMPLETE_OPERATOR"
	CodeLexerIntegerOverflow       Code = "LEXER_INTEGER_OVERFLOW"
	CodeLexerMalformedIdentifier   Code = "LEXER_MALFORMED_IDENTIFIER"
	CodeLexerUnrecognizedCharacter Code = "LEXER_UNRECOGNIZED_CHARACTER"

	// Parser errors
	CodeParseUnexpectedToken      Code = "PARSE_UNEXPECTED_TOKEN"
	CodeParseExpectedConstruct    Code = "PARSE_EXPECTED_CONSTRUCT"
	CodeParseUnexpectedEndOfInput Code = "PARSE_UNEXPECTED_END_OF_INPUT"
	CodeParseEmptyBindingList     Code = "PARSE_EMPTY_BINDING_LIST"
	CodeParseDuplicateBinding     Code = "PARSE_DUPLICATE_BINDING"
	CodeParseNestingTooDeep       Code = "PARSE_NESTING_TOO_DEEP"

	// Evaluation errors
	CodeEvalUnboundIdentifier Code = "EVAL_UNBOUND_IDENTIFIER"
	CodeEvalNestingTooDeep    Code = "EVAL_NESTING_TOO_DEEP"

	// Static checks
	CodeCheckFreeIdentifier Code = "CHECK_FREE_IDENTIFIER"
)

// Span represents a location in source code.
type Span struct {
	Filename string
	Line     int
	Column   int
	Start    int
	End      int
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsValid returns true if the span has valid location information.
func (s Span) IsValid() bool {
	return s.Line > 0 && s.Column > 0
}

// Diagnostic is an interpreter diagnostic surfaced to end-users.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Code     Code
	Message  string
	Span     Span // Primary span
	// LabeledSpans allows multiple spans with labels.
	// The first span is treated as primary, others as secondary.
	LabeledSpans []LabeledSpan
	Notes        []string
	Help         string
}

// Diagnosable is implemented by every phase error so callers can render it
// without knowing which phase failed.
type Diagnosable interface {
	error
	ToDiagnostic() Diagnostic
}

// Error renders the diagnostic as a single position-qualified line.
func (d Diagnostic) Error() string {
	if d.Span.IsValid() {
		return fmt.Sprintf("%s: %s", d.Span, d.Message)
	}
	return d.Message
}

// WithLabeledSpan adds a labeled span to the diagnostic.
func (d Diagnostic) WithLabeledSpan(span Span, label string, style string) Diagnostic {
	if style == "" {
		style = "primary"
	}
	d.LabeledSpans = append(d.LabeledSpans, LabeledSpan{
		Span:  span,
		Label: label,
		Style: style,
	})
	return d
}

// WithPrimarySpan adds a primary labeled span.
func (d Diagnostic) WithPrimarySpan(span Span, label string) Diagnostic {
	return d.WithLabeledSpan(span, label, "primary")
}

// WithSecondarySpan adds a secondary labeled span.
func (d Diagnostic) WithSecondarySpan(span Span, label string) Diagnostic {
	return d.WithLabeledSpan(span, label, "secondary")
}

// WithNote adds a note to the diagnostic.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// WithHelp adds help text to the diagnostic.
func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	return d
}
