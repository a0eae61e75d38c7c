// Package interp runs source text through the lexer, parser and evaluator
// with one shared configuration.
package interp

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/segmentio/fasthash/fnv1a"
	"go.uber.org/zap"

	"github.com/simp-lang/simp/internal/ast"
	"github.com/simp-lang/simp/internal/config"
	"github.com/simp-lang/simp/internal/diag"
	"github.com/simp-lang/simp/internal/eval"
	"github.com/simp-lang/simp/internal/lexer"
	"github.com/simp-lang/simp/internal/parser"
)

type Option func(*Interpreter)

// WithMaxDepth sets the nesting limit for both the parser and the evaluator.
func WithMaxDepth(depth int) Option {
	return func(in *Interpreter) {
		in.maxDepth = depth
	}
}

// WithLogger routes every stage's debug records to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(in *Interpreter) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// WithConfig applies the limits section of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(in *Interpreter) {
		if cfg != nil {
			in.maxDepth = cfg.Limits.MaxDepth
		}
	}
}

// WithParseCache keeps up to size successfully parsed programs, keyed by
// source name and text. Parsed trees are never mutated, so cached trees are
// shared between calls.
func WithParseCache(size int) Option {
	return func(in *Interpreter) {
		in.cacheSize = size
	}
}

// Interpreter holds the settings shared by all stages. Each call builds fresh
// stage state, so an Interpreter may be reused.
type Interpreter struct {
	maxDepth  int
	logger    *zap.Logger
	cacheSize int
	cache     *lru.Cache
}

type cacheEntry struct {
	name string
	src  string
	expr ast.Expr
}

// New returns an Interpreter configured by opts.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		maxDepth: eval.DefaultMaxDepth,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.cacheSize > 0 {
		// lru.New only fails for a non-positive size.
		in.cache, _ = lru.New(in.cacheSize)
	}
	return in
}

// Tokenize scans src. Errors are *lexer.LexError.
func (in *Interpreter) Tokenize(src, sourceName string) ([]lexer.Token, error) {
	return lexer.Tokenize(src, sourceName, lexer.WithLogger(in.logger.Named("lexer")))
}

// Parse tokenizes and parses src. Errors are *lexer.LexError or
// *parser.ParseError.
func (in *Interpreter) Parse(src, sourceName string) (ast.Expr, error) {
	key := cacheKey(src, sourceName)
	if expr, ok := in.cached(key, src, sourceName); ok {
		in.logger.Debug("parse cache hit", zap.String("source", sourceName))
		return expr, nil
	}

	tokens, err := in.Tokenize(src, sourceName)
	if err != nil {
		return nil, err
	}
	expr, err := parser.Parse(tokens,
		parser.WithFilename(sourceName),
		parser.WithMaxDepth(in.maxDepth),
		parser.WithLogger(in.logger.Named("parser")))
	if err != nil {
		return nil, err
	}

	if in.cache != nil {
		in.cache.Add(key, cacheEntry{name: sourceName, src: src, expr: expr})
	}
	return expr, nil
}

func cacheKey(src, sourceName string) uint64 {
	h := fnv1a.Init64
	h = fnv1a.AddString64(h, sourceName)
	h = fnv1a.AddUint64(h, uint64(len(sourceName)))
	return fnv1a.AddString64(h, src)
}

// cached returns the tree stored under key if it was parsed from exactly
// src and sourceName.
func (in *Interpreter) cached(key uint64, src, sourceName string) (ast.Expr, bool) {
	if in.cache == nil {
		return nil, false
	}
	v, ok := in.cache.Get(key)
	if !ok {
		return nil, false
	}
	entry := v.(cacheEntry)
	if entry.name != sourceName || entry.src != src {
		return nil, false
	}
	return entry.expr, true
}

// Eval runs every stage over src with env as the global frame, which may be
// nil. Errors are the failing stage's error type.
func (in *Interpreter) Eval(src, sourceName string, env *eval.Environment) (int64, error) {
	expr, err := in.Parse(src, sourceName)
	if err != nil {
		return 0, err
	}
	return in.EvalExpr(expr, env)
}

// EvalExpr evaluates an already parsed expression.
func (in *Interpreter) EvalExpr(expr ast.Expr, env *eval.Environment) (int64, error) {
	ev := eval.New(
		eval.WithMaxDepth(in.maxDepth),
		eval.WithLogger(in.logger.Named("eval")))
	return ev.Eval(expr, env)
}

// Check parses src and returns one warning per identifier that is free in
// the expression and not bound in env. Evaluating such an expression fails
// unless the identifier sits on a branch that is never taken.
func (in *Interpreter) Check(src, sourceName string, env *eval.Environment) ([]diag.Diagnostic, error) {
	expr, err := in.Parse(src, sourceName)
	if err != nil {
		return nil, err
	}

	var warnings []diag.Diagnostic
	for _, id := range ast.FreeIdents(expr) {
		if _, ok := env.Lookup(id.Name); ok {
			continue
		}
		s := id.Span()
		span := diag.Span{Filename: s.Filename, Line: s.Line, Column: s.Column, Start: s.Start, End: s.End}
		warnings = append(warnings, diag.Diagnostic{
			Stage:    diag.StageCheck,
			Severity: diag.SeverityWarning,
			Code:     diag.CodeCheckFreeIdentifier,
			Message:  fmt.Sprintf("identifier `%s` is never bound", id.Name),
			Span:     span,
		}.WithPrimarySpan(span, "free here"))
	}
	in.logger.Debug("checked", zap.String("source", sourceName), zap.Int("warnings", len(warnings)))
	return warnings, nil
}

// Diagnose extracts the structured diagnostic carried by a stage error.
func Diagnose(err error) (diag.Diagnostic, bool) {
	var d diag.Diagnosable
	if errors.As(err, &d) {
		return d.ToDiagnostic(), true
	}
	return diag.Diagnostic{}, false
}
