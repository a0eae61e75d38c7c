package parser

import (
	"go.uber.org/zap"

	"github.com/simp-lang/simp/internal/ast"
	"github.com/simp-lang/simp/internal/lexer"
)

// DefaultMaxDepth bounds how deeply expressions may nest before the parser
// gives up with ErrNestingTooDeep.
const DefaultMaxDepth = 1000

type Option func(*options)

type options struct {
	filename string
	maxDepth int
	logger   *zap.Logger
}

// WithFilename attributes spans that carry no filename, such as the end of
// input position for an empty stream, to name.
func WithFilename(name string) Option {
	return func(o *options) {
		o.filename = name
	}
}

// WithMaxDepth sets the nesting limit. A value <= 0 disables the check.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithLogger routes parser debug records to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Parser is a recursive-descent parser over a token Stream. Each precedence
// tier has its own production; every binary tier is left-associative.
//
// Productions return (node, nil) on success and (nil, err) on failure. The
// first error aborts the parse: there is no recovery.
type Parser struct {
	stream *Stream

	filename string
	maxDepth int
	depth    int

	logger *zap.Logger
}

// New returns a parser that owns tokens.
func New(tokens []lexer.Token, opts ...Option) *Parser {
	cfg := options{
		maxDepth: DefaultMaxDepth,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Parser{
		stream:   NewStream(tokens),
		filename: cfg.filename,
		maxDepth: cfg.maxDepth,
		logger:   cfg.logger,
	}
}

// Parse parses exactly one expression and requires the stream to be fully
// consumed afterwards.
func Parse(tokens []lexer.Token, opts ...Option) (ast.Expr, error) {
	return New(tokens, opts...).Parse()
}

// ParseSource tokenizes and parses src. Lexing failures are returned as
// *lexer.LexError.
func ParseSource(src, sourceName string, opts ...Option) (ast.Expr, error) {
	cfg := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	tokens, err := lexer.Tokenize(src, sourceName, lexer.WithLogger(cfg.logger))
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithFilename(sourceName)}, opts...)
	return Parse(tokens, opts...)
}

// Parse runs the expression production and checks for trailing tokens.
func (p *Parser) Parse() (ast.Expr, error) {
	p.logger.Debug("parse start", zap.Int("tokens", p.stream.Len()))

	if p.stream.Done() {
		err := p.unexpectedEnd("expected an expression")
		p.logger.Debug("parse failed", zap.Error(err))
		return nil, err
	}

	expr, err := p.parseExpression()
	if err != nil {
		p.logger.Debug("parse failed", zap.Error(err))
		return nil, err
	}

	if tok, ok := p.stream.Peek(); ok {
		perr := p.unexpected(tok, "expected end of input after expression")
		p.logger.Debug("parse failed", zap.Error(perr))
		return nil, perr
	}

	p.logger.Debug("parse done", zap.Int("depth", ast.Depth(expr)))
	return expr, nil
}

// enter records one level of nesting. The returned function undoes it.
func (p *Parser) enter() (func(), error) {
	p.depth++
	leave := func() { p.depth-- }
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		span := p.stream.EndSpan()
		if tok, ok := p.stream.Peek(); ok {
			span = tok.Span
		}
		leave()
		return nil, p.errorAt(ErrNestingTooDeep, span, "expression nests too deeply")
	}
	return leave, nil
}

// expectKeyword consumes kw or reports ErrExpectedConstruct.
func (p *Parser) expectKeyword(kw lexer.Keyword) (lexer.Token, error) {
	tok, ok := p.stream.Next()
	if ok && tok.IsKeyword(kw) {
		return tok, nil
	}
	return lexer.Token{}, p.expected(kw.String(), tok, ok)
}

// expectOperator consumes op or reports ErrExpectedConstruct.
func (p *Parser) expectOperator(op lexer.Operator) (lexer.Token, error) {
	tok, ok := p.stream.Next()
	if ok && tok.IsOperator(op) {
		return tok, nil
	}
	return lexer.Token{}, p.expected(op.String(), tok, ok)
}

// expectIdentifier consumes an identifier or reports ErrExpectedConstruct.
func (p *Parser) expectIdentifier() (lexer.Token, error) {
	tok, ok := p.stream.Next()
	if ok && tok.Kind == lexer.IDENTIFIER {
		return tok, nil
	}
	return lexer.Token{}, p.expected(constructIdentifier, tok, ok)
}

// mergeSpan returns a span covering start through end.
func mergeSpan(start, end lexer.Span) lexer.Span {
	span := start

	if span.Filename == "" {
		span.Filename = end.Filename
	}

	if end.End > span.End {
		span.End = end.End
	}

	return span
}
