package ast

import (
	"strconv"

	"github.com/simp-lang/simp/internal/lexer"
)

// Node represents any AST node with an associated source span.
type Node interface {
	Span() lexer.Span
}

// Expr represents an expression node. The set of implementations is closed:
// IntLit, Ident, NotExpr, NegExpr, GroupExpr, BinaryExpr, IfExpr and LetExpr.
type Expr interface {
	Node
	exprNode()
}

// IntLit represents an integer literal.
type IntLit struct {
	Value int64
	span  lexer.Span
}

// Span returns the literal span.
func (e *IntLit) Span() lexer.Span { return e.span }

// NewIntLit constructs an integer literal node.
func NewIntLit(value int64, span lexer.Span) *IntLit {
	return &IntLit{Value: value, span: span}
}

func (*IntLit) exprNode() {}

// Ident represents a reference to a bound name.
type Ident struct {
	Name string
	span lexer.Span
}

// Span returns the identifier span.
func (e *Ident) Span() lexer.Span { return e.span }

// NewIdent constructs an identifier node.
func NewIdent(name string, span lexer.Span) *Ident {
	return &Ident{Name: name, span: span}
}

func (*Ident) exprNode() {}

// NotExpr represents logical negation (!operand).
type NotExpr struct {
	Operand Expr
	span    lexer.Span
}

// Span returns the span of the '!' operator.
func (e *NotExpr) Span() lexer.Span { return e.span }

// NewNotExpr constructs a logical negation node.
func NewNotExpr(operand Expr, span lexer.Span) *NotExpr {
	return &NotExpr{Operand: operand, span: span}
}

func (*NotExpr) exprNode() {}

// NegExpr represents arithmetic negation (-operand).
type NegExpr struct {
	Operand Expr
	span    lexer.Span
}

// Span returns the span of the '-' operator.
func (e *NegExpr) Span() lexer.Span { return e.span }

// NewNegExpr constructs an arithmetic negation node.
func NewNegExpr(operand Expr, span lexer.Span) *NegExpr {
	return &NegExpr{Operand: operand, span: span}
}

func (*NegExpr) exprNode() {}

// GroupExpr records source parentheses. It has no semantic effect.
type GroupExpr struct {
	Inner Expr
	span  lexer.Span
}

// Span returns the span of the opening parenthesis.
func (e *GroupExpr) Span() lexer.Span { return e.span }

// NewGroupExpr constructs a parenthesized expression node.
func NewGroupExpr(inner Expr, span lexer.Span) *GroupExpr {
	return &GroupExpr{Inner: inner, span: span}
}

func (*GroupExpr) exprNode() {}

// BinaryOp enumerates the infix operators.
type BinaryOp int

const (
	OpPlus BinaryOp = iota
	OpTimes
	OpLessThan
	OpEquals
	OpLogicalAnd
	OpLogicalOr
)

var binaryOpSymbols = [...]string{
	OpPlus:       "+",
	OpTimes:      "*",
	OpLessThan:   "<",
	OpEquals:     "==",
	OpLogicalAnd: "&&",
	OpLogicalOr:  "||",
}

// String returns the operator's source symbol.
func (op BinaryOp) String() string {
	if op < 0 || int(op) >= len(binaryOpSymbols) {
		return "BinaryOp(" + strconv.Itoa(int(op)) + ")"
	}
	return binaryOpSymbols[op]
}

// BinaryOpFor maps an operator token to its infix operator.
func BinaryOpFor(op lexer.Operator) (BinaryOp, bool) {
	switch op {
	case lexer.PLUS:
		return OpPlus, true
	case lexer.TIMES:
		return OpTimes, true
	case lexer.LESS_THAN:
		return OpLessThan, true
	case lexer.EQUALS:
		return OpEquals, true
	case lexer.LOGICAL_AND:
		return OpLogicalAnd, true
	case lexer.LOGICAL_OR:
		return OpLogicalOr, true
	default:
		return 0, false
	}
}

// BinaryExpr represents an infix operation.
type BinaryExpr struct {
	Left  Expr
	Op    BinaryOp
	Right Expr
	span  lexer.Span
}

// Span returns the span of the operator token.
func (e *BinaryExpr) Span() lexer.Span { return e.span }

// NewBinaryExpr constructs an infix expression node.
func NewBinaryExpr(left Expr, op BinaryOp, right Expr, span lexer.Span) *BinaryExpr {
	return &BinaryExpr{Left: left, Op: op, Right: right, span: span}
}

func (*BinaryExpr) exprNode() {}

// IfExpr represents if/then/else/end. Both branches are always present.
type IfExpr struct {
	Cond Expr
	Then Expr
	Else Expr
	span lexer.Span
}

// Span returns the span of the 'if' keyword.
func (e *IfExpr) Span() lexer.Span { return e.span }

// NewIfExpr constructs a conditional node.
func NewIfExpr(cond, then, els Expr, span lexer.Span) *IfExpr {
	return &IfExpr{Cond: cond, Then: then, Else: els, span: span}
}

func (*IfExpr) exprNode() {}

// Binding is one name = value pair of a let block.
type Binding struct {
	Name  string
	Value Expr
	span  lexer.Span
}

// Span returns the span of the bound name.
func (b *Binding) Span() lexer.Span { return b.span }

// NewBinding constructs a let binding.
func NewBinding(name string, value Expr, span lexer.Span) *Binding {
	return &Binding{Name: name, Value: value, span: span}
}

// LetExpr represents let bindings in body end. Bindings are simultaneous:
// no value expression sees a sibling binding.
type LetExpr struct {
	Bindings []*Binding
	Body     Expr
	span     lexer.Span
}

// Span returns the span of the 'let' keyword.
func (e *LetExpr) Span() lexer.Span { return e.span }

// NewLetExpr constructs a let node.
func NewLetExpr(bindings []*Binding, body Expr, span lexer.Span) *LetExpr {
	return &LetExpr{Bindings: bindings, Body: body, span: span}
}

func (*LetExpr) exprNode() {}
