package parser_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/simp-lang/simp/internal/ast"
	"github.com/simp-lang/simp/internal/diag"
	"github.com/simp-lang/simp/internal/lexer"
	"github.com/simp-lang/simp/internal/parser"
)

var ignoreSpans = cmpopts.IgnoreUnexported(
	ast.IntLit{}, ast.Ident{}, ast.NotExpr{}, ast.NegExpr{}, ast.GroupExpr{},
	ast.BinaryExpr{}, ast.IfExpr{}, ast.Binding{}, ast.LetExpr{},
)

var nowhere lexer.Span

func num(v int64) ast.Expr { return ast.NewIntLit(v, nowhere) }
func ident(name string) ast.Expr { return ast.NewIdent(name, nowhere) }
func bin(l ast.Expr, op ast.BinaryOp, r ast.Expr) ast.Expr {
	return ast.NewBinaryExpr(l, op, r, nowhere)
}

func parseSource(t *testing.T, src string, opts ...parser.Option) ast.Expr {
	t.Helper()
	expr, err := parser.ParseSource(src, "test.simp", opts...)
	require.NoError(t, err, "source: %s", src)
	require.NotNil(t, expr)
	return expr
}

func parseError(t *testing.T, src string, opts ...parser.Option) *parser.ParseError {
	t.Helper()
	expr, err := parser.ParseSource(src, "test.simp", opts...)
	require.Error(t, err, "source: %s", src)
	assert.Nil(t, expr)
	perr, ok := parser.AsParseError(err)
	require.True(t, ok, "expected *ParseError, got %T: %v", err, err)
	return perr
}

func assertTree(t *testing.T, want, got ast.Expr) {
	t.Helper()
	if diff := cmp.Diff(want, got, ignoreSpans); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want ast.Expr
	}{
		{"1 + 2 * 3", bin(num(1), ast.OpPlus, bin(num(2), ast.OpTimes, num(3)))},
		{"1 * 2 + 3", bin(bin(num(1), ast.OpTimes, num(2)), ast.OpPlus, num(3))},
		{"(1 + 2) * 3", bin(ast.NewGroupExpr(bin(num(1), ast.OpPlus, num(2)), nowhere), ast.OpTimes, num(3))},
		{"a < b + 1", bin(ident("a"), ast.OpLessThan, bin(ident("b"), ast.OpPlus, num(1)))},
		{"a == b < c", bin(ident("a"), ast.OpEquals, bin(ident("b"), ast.OpLessThan, ident("c")))},
		{"a || b && c", bin(ident("a"), ast.OpLogicalOr, bin(ident("b"), ast.OpLogicalAnd, ident("c")))},
		{"a && b == c", bin(ident("a"), ast.OpLogicalAnd, bin(ident("b"), ast.OpEquals, ident("c")))},
		{"-a * b", bin(ast.NewNegExpr(ident("a"), nowhere), ast.OpTimes, ident("b"))},
		{"!a || b", bin(ast.NewNotExpr(ident("a"), nowhere), ast.OpLogicalOr, ident("b"))},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assertTree(t, tt.want, parseSource(t, tt.src))
		})
	}
}

func TestParseLeftAssociativity(t *testing.T) {
	tests := []struct {
		src string
		op  ast.BinaryOp
	}{
		{"a + b + c", ast.OpPlus},
		{"a * b * c", ast.OpTimes},
		{"a < b < c", ast.OpLessThan},
		{"a == b == c", ast.OpEquals},
		{"a && b && c", ast.OpLogicalAnd},
		{"a || b || c", ast.OpLogicalOr},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			want := bin(bin(ident("a"), tt.op, ident("b")), tt.op, ident("c"))
			assertTree(t, want, parseSource(t, tt.src))
		})
	}
}

func TestParseUnaryNests(t *testing.T) {
	want := ast.NewNegExpr(ast.NewNotExpr(ast.NewNegExpr(num(4), nowhere), nowhere), nowhere)
	assertTree(t, want, parseSource(t, "-!-4"))
}

func TestParseIf(t *testing.T) {
	want := ast.NewIfExpr(
		bin(ident("x"), ast.OpLessThan, num(3)),
		num(1),
		ast.NewIfExpr(ident("y"), num(2), num(3), nowhere),
		nowhere,
	)
	assertTree(t, want, parseSource(t, "if x < 3 then 1 else if y then 2 else 3 end end"))
}

func TestParseLet(t *testing.T) {
	want := ast.NewLetExpr([]*ast.Binding{
		ast.NewBinding("x", num(1), nowhere),
		ast.NewBinding("y", bin(num(2), ast.OpPlus, num(3)), nowhere),
	}, bin(ident("x"), ast.OpTimes, ident("y")), nowhere)

	assertTree(t, want, parseSource(t, "let x = 1 and y = 2 + 3 in x * y end"))
}

func TestParseSpans(t *testing.T) {
	expr := parseSource(t, "let x = 1 in\n  x + 2\nend")
	let, ok := expr.(*ast.LetExpr)
	require.True(t, ok)

	assert.Equal(t, "test.simp:1:1", let.Span().String())
	assert.Equal(t, "test.simp:1:5", let.Bindings[0].Span().String())

	body, ok := let.Body.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, 2, body.Span().Line)
	assert.Equal(t, 3, body.Span().Column)
}

func TestParseRoundTrip(t *testing.T) {
	sources := []string{
		"1",
		"-42",
		"!!x",
		"(1 + 2) * (3 + 4)",
		"a || b && c == d < e + f * -g",
		"((a))",
		"if a then b else c end",
		"let x = 1 and y = (x + 2) in if x < y then x else y end end",
		"let a = let b = 1 in b end in a end",
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			first := parseSource(t, src)
			printed := ast.Print(first)
			second := parseSource(t, printed)
			assert.True(t, ast.Equal(first, second), "printed: %s", printed)
			assert.Equal(t, printed, ast.Print(second))
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		kind     parser.ErrorKind
		expected string
		line     int
		col      int
		contains string
	}{
		{name: "empty input", src: "", kind: parser.ErrUnexpectedEndOfInput, line: 1, col: 1},
		{name: "dangling operator", src: "1 +", kind: parser.ErrUnexpectedEndOfInput, line: 1, col: 4},
		{name: "missing operand", src: "1 + * 2", kind: parser.ErrUnexpectedToken, line: 1, col: 5, contains: "`*`"},
		{name: "trailing token", src: "1 2", kind: parser.ErrUnexpectedToken, line: 1, col: 3, contains: "integer `2`"},
		{name: "stray close paren", src: ")", kind: parser.ErrUnexpectedToken, line: 1, col: 1},
		{name: "unclosed group", src: "(1 + 2", kind: parser.ErrExpectedConstruct, expected: ")", line: 1, col: 7, contains: "end of input"},
		{name: "missing let end", src: "let x = 1 in x", kind: parser.ErrExpectedConstruct, expected: "end", line: 1, col: 15, contains: "expected `end`, found end of input"},
		{name: "missing then", src: "if 1 else 2 end", kind: parser.ErrExpectedConstruct, expected: "then", line: 1, col: 6, contains: "found `else`"},
		{name: "missing else", src: "if 1 then 2 end", kind: parser.ErrExpectedConstruct, expected: "else", line: 1, col: 13},
		{name: "missing assign", src: "let x 1 in x end", kind: parser.ErrExpectedConstruct, expected: "=", line: 1, col: 7},
		{name: "binding needs name", src: "let 1 = 2 in 1 end", kind: parser.ErrExpectedConstruct, expected: "identifier", line: 1, col: 5, contains: "expected identifier"},
		{name: "dangling and", src: "let x = 1 and in x end", kind: parser.ErrExpectedConstruct, expected: "identifier", line: 1, col: 15},
		{name: "empty bindings", src: "let in 1 end", kind: parser.ErrEmptyBindingList, line: 1, col: 5},
		{name: "duplicate binding", src: "let x = 1 and x = 2 in x end", kind: parser.ErrDuplicateBinding, line: 1, col: 15, contains: "`x`"},
		{name: "reserved recur", src: "recur", kind: parser.ErrUnexpectedToken, line: 1, col: 1, contains: "reserved"},
		{name: "reserved loop", src: "1 + loop", kind: parser.ErrUnexpectedToken, line: 1, col: 5, contains: "reserved"},
		{name: "keyword as operand", src: "then", kind: parser.ErrUnexpectedToken, line: 1, col: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := parseError(t, tt.src)
			assert.Equal(t, tt.kind, perr.Kind, "message: %s", perr.Message)
			assert.Equal(t, tt.expected, perr.Expected)
			assert.Equal(t, tt.line, perr.Span.Line)
			assert.Equal(t, tt.col, perr.Span.Column)
			assert.Equal(t, "test.simp", perr.Span.Filename)
			if tt.contains != "" {
				assert.Contains(t, perr.Message, tt.contains)
			}
		})
	}
}

func TestParseLexErrorPassesThrough(t *testing.T) {
	_, err := parser.ParseSource("1 & 2", "test.simp")
	require.Error(t, err)

	_, isParse := parser.AsParseError(err)
	assert.False(t, isParse)
	lexErr, ok := lexer.AsLexError(err)
	require.True(t, ok)
	assert.Equal(t, lexer.ErrIncompleteOperator, lexErr.Kind)
}

func TestParseNestingLimit(t *testing.T) {
	deep := strings.Repeat("(", 40) + "1" + strings.Repeat(")", 40)

	parseSource(t, deep, parser.WithMaxDepth(100))

	perr := parseError(t, deep, parser.WithMaxDepth(10))
	assert.Equal(t, parser.ErrNestingTooDeep, perr.Kind)

	perr = parseError(t, strings.Repeat("-", 50)+"1", parser.WithMaxDepth(10))
	assert.Equal(t, parser.ErrNestingTooDeep, perr.Kind)

	// Disabled limit.
	parseSource(t, strings.Repeat("!", 5000)+"1", parser.WithMaxDepth(0))
}

func TestParseDefaultLimitAcceptsLongChains(t *testing.T) {
	// Binary chains are folded iteratively and do not count as nesting.
	src := "1" + strings.Repeat(" + 1", 5000)
	expr := parseSource(t, src)
	assert.Equal(t, 5001, ast.Depth(expr))
}

func TestParseErrorDiagnostic(t *testing.T) {
	perr := parseError(t, "let x = 1 and x = 2 in x end")
	d := perr.ToDiagnostic()

	assert.Equal(t, diag.StageParser, d.Stage)
	assert.Equal(t, diag.CodeParseDuplicateBinding, d.Code)
	require.Len(t, d.LabeledSpans, 2)
	assert.Equal(t, "primary", d.LabeledSpans[0].Style)
	assert.Equal(t, 15, d.LabeledSpans[0].Span.Column)
	assert.Equal(t, "secondary", d.LabeledSpans[1].Style)
	assert.Equal(t, 5, d.LabeledSpans[1].Span.Column)

	expected := parseError(t, "(1").ToDiagnostic()
	assert.Equal(t, diag.CodeParseExpectedConstruct, expected.Code)
	require.Len(t, expected.LabeledSpans, 1)
	assert.Equal(t, "expected )", expected.LabeledSpans[0].Label)
}

func TestParseLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	_, err := parser.ParseSource("let in 1 end", "test.simp", parser.WithLogger(zap.New(core)))
	require.Error(t, err)

	assert.Equal(t, 1, logs.FilterMessage("parse start").Len())
	assert.Equal(t, 1, logs.FilterMessage("parse failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("tokenized source").Len())
}

func TestStreamBackup(t *testing.T) {
	tokens, err := lexer.Tokenize("a b", "s")
	require.NoError(t, err)

	s := parser.NewStream(tokens)
	assert.ErrorIs(t, s.Backup(), parser.ErrInvalidBackup)

	first, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, "a", first.Text)
	require.NoError(t, s.Backup())
	assert.ErrorIs(t, s.Backup(), parser.ErrInvalidBackup)
	assert.Equal(t, 2, s.Len())

	again, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, "a", again.Text)

	s.Next()
	second, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, "b", second.Text)
	assert.True(t, s.Done())

	_, ok = s.Next()
	assert.False(t, ok)
	assert.Equal(t, 4, s.EndSpan().Column)
}
