// Package eval computes the integer value of a parsed expression.
//
// Booleans are integers: comparisons and logical operators produce 1 or 0,
// and any non-zero value is true. Arithmetic wraps at 64 bits.
package eval

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/simp-lang/simp/internal/ast"
)

// DefaultMaxDepth bounds how deeply Eval recurses. Left-folded operator
// chains do not count toward it.
const DefaultMaxDepth = 1000

type Option func(*Evaluator)

// WithMaxDepth sets the nesting limit. A value <= 0 disables the check.
func WithMaxDepth(depth int) Option {
	return func(ev *Evaluator) {
		ev.maxDepth = depth
	}
}

// WithLogger routes evaluation debug records to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(ev *Evaluator) {
		if logger != nil {
			ev.logger = logger
		}
	}
}

// Evaluator is a tree-walking evaluator. It is not safe for concurrent use.
type Evaluator struct {
	maxDepth int
	depth    int
	logger   *zap.Logger
}

// New returns an Evaluator configured by opts.
func New(opts ...Option) *Evaluator {
	ev := &Evaluator{
		maxDepth: DefaultMaxDepth,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

// Eval evaluates expr in env. A nil env is an empty global frame. Failures
// are returned as *EvalError.
func (ev *Evaluator) Eval(expr ast.Expr, env *Environment) (int64, error) {
	if env == nil {
		env = NewEnvironment(nil)
	}
	ev.depth = 0

	v, err := ev.eval(expr, env)
	if err != nil {
		ev.logger.Debug("evaluation failed", zap.Error(err))
		return 0, err
	}
	ev.logger.Debug("evaluated", zap.Int64("value", v))
	return v, nil
}

func (ev *Evaluator) eval(expr ast.Expr, env *Environment) (int64, error) {
	ev.depth++
	defer func() { ev.depth-- }()
	if ev.maxDepth > 0 && ev.depth > ev.maxDepth {
		return 0, &EvalError{
			Kind:    ErrNestingTooDeep,
			Message: "expression nests too deeply to evaluate",
			Span:    expr.Span(),
		}
	}

	switch n := expr.(type) {
	case *ast.IntLit:
		return n.Value, nil

	case *ast.Ident:
		v, ok := env.Lookup(n.Name)
		if !ok {
			return 0, &EvalError{
				Kind:    ErrUnboundIdentifier,
				Name:    n.Name,
				Message: fmt.Sprintf("unbound identifier `%s`", n.Name),
				Span:    n.Span(),
			}
		}
		return v, nil

	case *ast.NotExpr:
		v, err := ev.eval(n.Operand, env)
		if err != nil {
			return 0, err
		}
		return truth(v == 0), nil

	case *ast.NegExpr:
		v, err := ev.eval(n.Operand, env)
		if err != nil {
			return 0, err
		}
		return -v, nil

	case *ast.GroupExpr:
		return ev.eval(n.Inner, env)

	case *ast.BinaryExpr:
		return ev.evalBinary(n, env)

	case *ast.IfExpr:
		cond, err := ev.eval(n.Cond, env)
		if err != nil {
			return 0, err
		}
		if cond != 0 {
			return ev.eval(n.Then, env)
		}
		return ev.eval(n.Else, env)

	case *ast.LetExpr:
		return ev.evalLet(n, env)

	default:
		panic(fmt.Sprintf("eval: unexpected expression %T", expr))
	}
}

// evalBinary folds the left spine of a chain such as 1 + 2 + 3 in a loop, so
// only right operands and the innermost left operand add to the depth. This
// matches how the parser builds chains.
func (ev *Evaluator) evalBinary(n *ast.BinaryExpr, env *Environment) (int64, error) {
	spine := []*ast.BinaryExpr{n}
	for {
		inner, ok := spine[len(spine)-1].Left.(*ast.BinaryExpr)
		if !ok {
			break
		}
		spine = append(spine, inner)
	}

	acc, err := ev.eval(spine[len(spine)-1].Left, env)
	if err != nil {
		return 0, err
	}
	for i := len(spine) - 1; i >= 0; i-- {
		acc, err = ev.applyBinary(spine[i], acc, env)
		if err != nil {
			return 0, err
		}
	}
	return acc, nil
}

// applyBinary combines an already evaluated left operand with n's right
// operand.
func (ev *Evaluator) applyBinary(n *ast.BinaryExpr, left int64, env *Environment) (int64, error) {
	// The right operand of && and || is only evaluated when it decides the
	// result.
	switch n.Op {
	case ast.OpLogicalAnd:
		if left == 0 {
			return 0, nil
		}
	case ast.OpLogicalOr:
		if left != 0 {
			return 1, nil
		}
	}

	right, err := ev.eval(n.Right, env)
	if err != nil {
		return 0, err
	}

	switch n.Op {
	case ast.OpPlus:
		return left + right, nil
	case ast.OpTimes:
		return left * right, nil
	case ast.OpLessThan:
		return truth(left < right), nil
	case ast.OpEquals:
		return truth(left == right), nil
	case ast.OpLogicalAnd, ast.OpLogicalOr:
		return truth(right != 0), nil
	default:
		panic(fmt.Sprintf("eval: unexpected operator %s", n.Op))
	}
}

// evalLet evaluates every binding in the enclosing frame, then the body in a
// single child frame holding all of them.
func (ev *Evaluator) evalLet(n *ast.LetExpr, env *Environment) (int64, error) {
	vars := make(map[string]int64, len(n.Bindings))
	for _, b := range n.Bindings {
		v, err := ev.eval(b.Value, env)
		if err != nil {
			return 0, err
		}
		vars[b.Name] = v
		ev.logger.Debug("bind",
			zap.String("name", b.Name),
			zap.Int64("value", v),
			zap.Stringer("at", b.Span()))
	}
	return ev.eval(n.Body, env.Extend(vars))
}

func truth(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
