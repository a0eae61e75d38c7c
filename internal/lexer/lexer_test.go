package lexer

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func tokenize(t *testing.T, src string) []Token {
	t.Helper()

	toks, err := Tokenize(src, "test.sl")
	require.NoError(t, err)
	return toks
}

func tokenStrings(toks []Token) []string {
	out := make([]string, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.String())
	}
	return out
}

func TestSingleOperators(t *testing.T) {
	tests := []struct {
		input string
		op    Operator
		name  string
	}{
		{"(", OPEN_PAREN, "open-paren-operator"},
		{")", CLOSE_PAREN, "close-paren-operator"},
		{"+", PLUS, "plus-operator"},
		{"*", TIMES, "times-operator"},
		{"!", NOT, "not-operator"},
		{"<", LESS_THAN, "less-than-operator"},
		{"-", UNARY_MINUS, "unary-minus-operator"},
		{"=", ASSIGN, "assign-operator"},
		{"==", EQUALS, "equals-operator"},
		{"||", LOGICAL_OR, "logical-or-operator"},
		{"&&", LOGICAL_AND, "logical-and-operator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := tokenize(t, tt.input)
			require.Len(t, toks, 1)
			assert.Equal(t, OPERATOR, toks[0].Kind)
			assert.Equal(t, tt.op, toks[0].Op)
			assert.Equal(t, tt.name, toks[0].String())
			assert.Equal(t, tt.input, toks[0].Lexeme())
			assert.Equal(t, len(tt.input), toks[0].Span.End-toks[0].Span.Start)
		})
	}
}

func TestKeywords(t *testing.T) {
	words := []struct {
		src string
		kw  Keyword
	}{
		{"let", LET}, {"end", END}, {"recur", RECUR}, {"if", IF}, {"then", THEN},
		{"else", ELSE}, {"in", IN}, {"and", AND}, {"loop", LOOP},
	}

	for _, w := range words {
		toks := tokenize(t, w.src)
		require.Len(t, toks, 1, w.src)
		assert.True(t, toks[0].IsKeyword(w.kw), w.src)
		assert.Equal(t, w.src+"-keyword", toks[0].String())
	}
}

func TestIdentifiers(t *testing.T) {
	toks := tokenize(t, "x lets _tmp1 if2 a_b_c Z9")
	require.Len(t, toks, 6)

	want := []string{"x", "lets", "_tmp1", "if2", "a_b_c", "Z9"}
	for i, tok := range toks {
		assert.Equal(t, IDENTIFIER, tok.Kind, "token %d", i)
		assert.Equal(t, want[i], tok.Text)
	}
}

func TestIntegerLiteralsRoundTrip(t *testing.T) {
	values := []int64{0, 1, 7, 42, 1234567890, 9223372036854775807}
	for _, v := range values {
		digits := strconv.FormatInt(v, 10)
		toks := tokenize(t, digits)
		require.Len(t, toks, 1)
		assert.Equal(t, INTEGER, toks[0].Kind)
		assert.Equal(t, v, toks[0].Int)
		assert.Equal(t, digits, toks[0].String())
	}
}

func TestIntegerKeepsSourceDigits(t *testing.T) {
	toks := tokenize(t, "007")
	require.Len(t, toks, 1)
	assert.Equal(t, int64(7), toks[0].Int)
	assert.Equal(t, "007", toks[0].String())
}

func TestMaximalMunch(t *testing.T) {
	toks := tokenize(t, "a==b=c&&d||!e<-1")
	assert.Equal(t, []string{
		"a", "equals-operator", "b", "assign-operator", "c",
		"logical-and-operator", "d", "logical-or-operator",
		"not-operator", "e", "less-than-operator", "unary-minus-operator", "1",
	}, tokenStrings(toks))
}

func TestDigitsThenLetters(t *testing.T) {
	toks := tokenize(t, "12ab")
	require.Len(t, toks, 2)
	assert.Equal(t, INTEGER, toks[0].Kind)
	assert.Equal(t, IDENTIFIER, toks[1].Kind)
	assert.Equal(t, "ab", toks[1].Text)
}

func TestLetExpressionTokens(t *testing.T) {
	toks := tokenize(t, "let x = 1 and y = 2 in x + y end")
	assert.Equal(t, []string{
		"let-keyword", "x", "assign-operator", "1", "and-keyword", "y",
		"assign-operator", "2", "in-keyword", "x", "plus-operator", "y", "end-keyword",
	}, tokenStrings(toks))
}

func TestEmptyAndWhitespaceInput(t *testing.T) {
	for _, src := range []string{"", "   ", "\n\n\t\r\n"} {
		toks, err := Tokenize(src, "")
		require.NoError(t, err)
		assert.Empty(t, toks)
	}
}

func TestSpans(t *testing.T) {
	toks := tokenize(t, "let x = 10\n  in\nx end")
	require.Len(t, toks, 7)

	type pos struct{ line, col, start, end int }
	want := []pos{
		{1, 1, 0, 3},   // let
		{1, 5, 4, 5},   // x
		{1, 7, 6, 7},   // =
		{1, 9, 8, 10},  // 10
		{2, 3, 13, 15}, // in
		{3, 1, 16, 17}, // x
		{3, 3, 18, 21}, // end
	}
	for i, tok := range toks {
		got := pos{tok.Span.Line, tok.Span.Column, tok.Span.Start, tok.Span.End}
		assert.Equal(t, want[i], got, "token %d (%s)", i, tok)
		assert.Equal(t, "test.sl", tok.Span.Filename)
	}
}

func TestLocation(t *testing.T) {
	toks := tokenize(t, "\n  foo")
	require.Len(t, toks, 1)
	assert.Equal(t, " in file:\"test.sl\"\ton line:2\tat position:3", toks[0].Location())
	assert.Equal(t, "test.sl:2:3", toks[0].Span.String())
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     LexErrorKind
		line     int
		column   int
		expected string
	}{
		{"lone ampersand", "&", ErrIncompleteOperator, 1, 1, "&&"},
		{"lone pipe", "|", ErrIncompleteOperator, 1, 1, "||"},
		{"ampersand then other", "a & b", ErrIncompleteOperator, 1, 3, "&&"},
		{"pipe at end of line", "1 |\n2", ErrIncompleteOperator, 1, 3, "||"},
		{"overflow", "9223372036854775808", ErrIntegerOverflow, 1, 1, ""},
		{"overflow after newline", "1 +\n 99999999999999999999", ErrIntegerOverflow, 2, 2, ""},
		{"underscore digit", "_1", ErrMalformedIdentifier, 1, 1, ""},
		{"lone underscore", "x + _", ErrMalformedIdentifier, 1, 5, ""},
		{"double underscore", "__x", ErrMalformedIdentifier, 1, 1, ""},
		{"slash", "1 / 2", ErrUnrecognizedCharacter, 1, 3, ""},
		{"non ascii letter", "é", ErrUnrecognizedCharacter, 1, 1, ""},
		{"greater than", "a > b", ErrUnrecognizedCharacter, 1, 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokenize(tt.input, "bad.sl")
			require.Error(t, err)
			assert.Nil(t, toks)

			lexErr, ok := AsLexError(err)
			require.True(t, ok, "expected *LexError, got %T", err)
			assert.Equal(t, tt.kind, lexErr.Kind)
			assert.Equal(t, tt.line, lexErr.Span.Line)
			assert.Equal(t, tt.column, lexErr.Span.Column)
			assert.Equal(t, tt.expected, lexErr.Expected)
			assert.Contains(t, err.Error(), "bad.sl:")
		})
	}
}

func TestLexerStopsAfterError(t *testing.T) {
	l := New("1 & 2")

	tok, ok := l.NextToken()
	require.True(t, ok)
	assert.Equal(t, int64(1), tok.Int)

	_, ok = l.NextToken()
	assert.False(t, ok)
	_, ok = l.NextToken()
	assert.False(t, ok)
	require.Error(t, l.Err())
}

func TestLexErrorDiagnostic(t *testing.T) {
	_, err := Tokenize("1 | 2", "d.sl")
	lexErr, ok := AsLexError(err)
	require.True(t, ok)

	d := lexErr.ToDiagnostic()
	assert.Equal(t, "lexer", string(d.Stage))
	assert.Equal(t, "LEXER_INCOMPLETE_OPERATOR", string(d.Code))
	assert.Equal(t, "d.sl", d.Span.Filename)
	assert.Equal(t, 3, d.Span.Column)
	require.Len(t, d.LabeledSpans, 1)
	assert.Equal(t, "expected `||`", d.LabeledSpans[0].Label)
}

func TestLoggerReceivesTokens(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	_, err := Tokenize("1 + 2", "log.sl", WithLogger(zap.New(core)))
	require.NoError(t, err)

	assert.Equal(t, 3, logs.FilterMessage("token").Len())
	assert.Equal(t, 1, logs.FilterMessage("tokenized source").Len())
}
