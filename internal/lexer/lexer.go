package lexer

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/simp-lang/simp/internal/diag"
)

type LexErrorKind int

const (
	ErrIncompleteOperator LexErrorKind = iota
	ErrIntegerOverflow
	ErrMalformedIdentifier
	ErrUnrecognizedCharacter
)

func (k LexErrorKind) String() string {
	switch k {
	case ErrIncompleteOperator:
		return "IncompleteOperator"
	case ErrIntegerOverflow:
		return "IntegerOverflow"
	case ErrMalformedIdentifier:
		return "MalformedIdentifier"
	case ErrUnrecognizedCharacter:
		return "UnrecognizedCharacter"
	default:
		return "LexErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

func (k LexErrorKind) diagnosticCode() diag.Code {
	switch k {
	case ErrIncompleteOperator:
		return diag.CodeLexerIncompleteOperator
	case ErrIntegerOverflow:
		return diag.CodeLexerIntegerOverflow
	case ErrMalformedIdentifier:
		return diag.CodeLexerMalformedIdentifier
	case ErrUnrecognizedCharacter:
		return diag.CodeLexerUnrecognizedCharacter
	default:
		return diag.Code("LEXER_UNKNOWN_ERROR")
	}
}

// LexError reports the first malformed character sequence in the input.
type LexError struct {
	Kind    LexErrorKind
	Message string
	// Expected holds the operator the scanner wanted to complete, for
	// ErrIncompleteOperator.
	Expected string
	Span     Span
}

func (e *LexError) Error() string {
	return e.Span.String() + ": " + e.Message
}

// ToDiagnostic converts a lexer error into a shared diagnostic structure.
func (e *LexError) ToDiagnostic() diag.Diagnostic {
	d := diag.Diagnostic{
		Stage:    diag.StageLexer,
		Severity: diag.SeverityError,
		Code:     e.Kind.diagnosticCode(),
		Message:  e.Message,
		Span:     toDiagSpan(e.Span),
	}
	if e.Expected != "" {
		d = d.WithPrimarySpan(d.Span, fmt.Sprintf("expected `%s`", e.Expected))
	}
	return d
}

func toDiagSpan(s Span) diag.Span {
	return diag.Span{
		Filename: s.Filename,
		Line:     s.Line,
		Column:   s.Column,
		Start:    s.Start,
		End:      s.End,
	}
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithFilename attributes every emitted span to name.
func WithFilename(name string) Option {
	return func(l *Lexer) {
		l.filename = name
	}
}

// WithLogger routes per-token debug records to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Lexer) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Lexer represents the lexer state
type Lexer struct {
	input    []rune
	pos      int  // index of the current rune
	ch       rune // current rune (0 at EOF)
	line     int  // current line number (1-based)
	column   int  // current column number (1-based)
	filename string
	logger   *zap.Logger

	err *LexError
}

// New creates a new lexer for the given input.
func New(input string, opts ...Option) *Lexer {
	l := &Lexer{
		input:  []rune(input),
		pos:    -1, // start before first rune
		line:   1,
		column: 0, // will be 1 after first read()
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.read() // move to first character
	return l
}

// Tokenize scans source in full. It stops at the first malformed sequence and
// returns a *LexError describing it.
func Tokenize(source, sourceName string, opts ...Option) ([]Token, error) {
	opts = append([]Option{WithFilename(sourceName)}, opts...)
	l := New(source, opts...)

	var tokens []Token
	for {
		tok, ok := l.NextToken()
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}
	if err := l.Err(); err != nil {
		return nil, err
	}
	l.logger.Debug("tokenized source",
		zap.String("source", sourceName),
		zap.Int("tokens", len(tokens)))
	return tokens, nil
}

// Err returns the error that stopped scanning, if any.
func (l *Lexer) Err() error {
	if l.err == nil {
		return nil
	}
	return l.err
}

// AsLexError unwraps err into a *LexError.
func AsLexError(err error) (*LexError, bool) {
	var le *LexError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// read advances the lexer to the next character. line/column always reflect
// the position of the character at pos.
func (l *Lexer) read() {
	l.pos++
	prevPos := l.pos - 1
	inputLen := len(l.input)

	if l.pos >= inputLen {
		// Normalize position to a virtual EOF one column past the last rune.
		l.pos = inputLen
		if prevPos >= 0 && prevPos < inputLen {
			if l.input[prevPos] == '\n' {
				l.line++
				l.column = 1
			} else {
				l.column++
			}
		} else if prevPos < 0 {
			l.column = 1
		}
		l.ch = 0
		return
	}

	l.ch = l.input[l.pos]

	if prevPos >= 0 && l.input[prevPos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
}

// peek returns the next character without advancing
func (l *Lexer) peek() rune {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

// currentSpanStart returns the position of the character about to be tokenized.
func (l *Lexer) currentSpanStart() (line, column, pos int) {
	return l.line, l.column, l.pos
}

func (l *Lexer) span(startLine, startColumn, startPos, endPos int) Span {
	return Span{
		Filename: l.filename,
		Line:     startLine,
		Column:   startColumn,
		Start:    startPos,
		End:      endPos,
	}
}

func (l *Lexer) fail(kind LexErrorKind, msg, expected string, span Span) {
	if l.err != nil {
		return
	}
	l.err = &LexError{
		Kind:     kind,
		Message:  msg,
		Expected: expected,
		Span:     span,
	}
	l.logger.Debug("lex error", zap.Stringer("kind", kind), zap.Stringer("pos", span), zap.String("msg", msg))
}

func (l *Lexer) skipWhitespace() {
	for !l.atEOF() && isSpace(l.ch) {
		l.read()
	}
}

func (l *Lexer) operator(op Operator, width int) Token {
	startLine, startColumn, startPos := l.currentSpanStart()
	for i := 0; i < width; i++ {
		l.read()
	}
	return Token{
		Kind: OPERATOR,
		Op:   op,
		Raw:  string(l.input[startPos:l.pos]),
		Span: l.span(startLine, startColumn, startPos, l.pos),
	}
}

// pairedOperator scans an operator spelled as the same character twice
// ("&&", "||"). A lone character is an incomplete operator.
func (l *Lexer) pairedOperator(op Operator) (Token, bool) {
	if l.peek() == l.ch {
		return l.operator(op, 2), true
	}
	startLine, startColumn, startPos := l.currentSpanStart()
	pair := op.String()
	l.fail(ErrIncompleteOperator,
		fmt.Sprintf("incomplete operator %q: expected %q", string(l.ch), pair),
		pair,
		l.span(startLine, startColumn, startPos, startPos+1))
	return Token{}, false
}

// NextToken returns the next token. It reports false at end of input or after
// an error; Err distinguishes the two.
func (l *Lexer) NextToken() (Token, bool) {
	tok, ok := l.scan()
	if ok {
		l.logger.Debug("token", zap.Stringer("token", tok), zap.Stringer("pos", tok.Span))
	}
	return tok, ok
}

func (l *Lexer) scan() (Token, bool) {
	if l.err != nil {
		return Token{}, false
	}

	l.skipWhitespace()
	if l.atEOF() {
		return Token{}, false
	}

	switch l.ch {
	case '(':
		return l.operator(OPEN_PAREN, 1), true
	case ')':
		return l.operator(CLOSE_PAREN, 1), true
	case '+':
		return l.operator(PLUS, 1), true
	case '*':
		return l.operator(TIMES, 1), true
	case '!':
		return l.operator(NOT, 1), true
	case '<':
		return l.operator(LESS_THAN, 1), true
	case '-':
		return l.operator(UNARY_MINUS, 1), true
	case '=':
		if l.peek() == '=' {
			return l.operator(EQUALS, 2), true
		}
		return l.operator(ASSIGN, 1), true
	case '&':
		return l.pairedOperator(LOGICAL_AND)
	case '|':
		return l.pairedOperator(LOGICAL_OR)
	case '_':
		if !isLetter(l.peek()) {
			startLine, startColumn, startPos := l.currentSpanStart()
			l.fail(ErrMalformedIdentifier,
				"malformed identifier: '_' must be followed by a letter",
				"",
				l.span(startLine, startColumn, startPos, startPos+1))
			return Token{}, false
		}
		return l.readIdentifier(), true
	}

	switch {
	case isLetter(l.ch):
		return l.readIdentifier(), true
	case isDigit(l.ch):
		return l.readNumber()
	default:
		startLine, startColumn, startPos := l.currentSpanStart()
		l.fail(ErrUnrecognizedCharacter,
			"unrecognized character "+strconv.QuoteRune(l.ch),
			"",
			l.span(startLine, startColumn, startPos, startPos+1))
		return Token{}, false
	}
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() Token {
	startLine, startColumn, startPos := l.currentSpanStart()
	for !l.atEOF() && (isLetter(l.ch) || isDigit(l.ch) || l.ch == '_') {
		l.read()
	}
	literal := string(l.input[startPos:l.pos])
	span := l.span(startLine, startColumn, startPos, l.pos)

	if kw, ok := LookupKeyword(literal); ok {
		return Token{Kind: KEYWORD, Keyword: kw, Raw: literal, Span: span}
	}
	return Token{Kind: IDENTIFIER, Text: literal, Raw: literal, Span: span}
}

// readNumber reads a decimal integer literal.
func (l *Lexer) readNumber() (Token, bool) {
	startLine, startColumn, startPos := l.currentSpanStart()
	for !l.atEOF() && isDigit(l.ch) {
		l.read()
	}
	literal := string(l.input[startPos:l.pos])
	span := l.span(startLine, startColumn, startPos, l.pos)

	value, err := strconv.ParseInt(literal, 10, 64)
	if err != nil {
		l.fail(ErrIntegerOverflow,
			fmt.Sprintf("integer literal %s does not fit in 64 bits", literal),
			"",
			span)
		return Token{}, false
	}
	return Token{Kind: INTEGER, Int: value, Raw: literal, Span: span}, true
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

// isLetter accepts ASCII letters only; identifiers are [A-Za-z0-9_].
func isLetter(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
