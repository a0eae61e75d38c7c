package parser

import (
	"github.com/simp-lang/simp/internal/ast"
	"github.com/simp-lang/simp/internal/lexer"
)

// parseExpression is the entry to the precedence ladder and the only place,
// besides unary operators, where the parser recurses.
func (p *Parser) parseExpression() (ast.Expr, error) {
	leave, err := p.enter()
	if err != nil {
		return nil, err
	}
	defer leave()

	return p.parseLogicalOr()
}

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	return p.parseLeftAssoc(lexer.LOGICAL_OR, p.parseLogicalAnd)
}

func (p *Parser) parseLogicalAnd() (ast.Expr, error) {
	return p.parseLeftAssoc(lexer.LOGICAL_AND, p.parseEquality)
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.parseLeftAssoc(lexer.EQUALS, p.parseComparison)
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	return p.parseLeftAssoc(lexer.LESS_THAN, p.parseSum)
}

func (p *Parser) parseSum() (ast.Expr, error) {
	return p.parseLeftAssoc(lexer.PLUS, p.parseProduct)
}

func (p *Parser) parseProduct() (ast.Expr, error) {
	return p.parseLeftAssoc(lexer.TIMES, p.parseUnary)
}

// parseLeftAssoc parses operand (op operand)* and folds it to the left.
func (p *Parser) parseLeftAssoc(op lexer.Operator, operand func() (ast.Expr, error)) (ast.Expr, error) {
	binop, ok := ast.BinaryOpFor(op)
	if !ok {
		panic("parser: " + op.Name() + " is not a binary operator")
	}

	left, err := operand()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.stream.Next()
		if !ok {
			return left, nil
		}
		if !tok.IsOperator(op) {
			if err := p.stream.Backup(); err != nil {
				panic(err)
			}
			return left, nil
		}

		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(left, binop, right, mergeSpan(left.Span(), right.Span()))
	}
}

// parseUnary handles prefix `!` and `-`, which nest to the right.
func (p *Parser) parseUnary() (ast.Expr, error) {
	tok, ok := p.stream.Peek()
	if !ok || !(tok.IsOperator(lexer.NOT) || tok.IsOperator(lexer.UNARY_MINUS)) {
		return p.parsePrimary()
	}
	p.stream.Next()

	leave, err := p.enter()
	if err != nil {
		return nil, err
	}
	defer leave()

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	span := mergeSpan(tok.Span, operand.Span())
	if tok.Op == lexer.NOT {
		return ast.NewNotExpr(operand, span), nil
	}
	return ast.NewNegExpr(operand, span), nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok, ok := p.stream.Next()
	if !ok {
		return nil, p.unexpectedEnd("expected an expression")
	}

	switch tok.Kind {
	case lexer.INTEGER:
		return ast.NewIntLit(tok.Int, tok.Span), nil

	case lexer.IDENTIFIER:
		return ast.NewIdent(tok.Text, tok.Span), nil

	case lexer.OPERATOR:
		if tok.Op == lexer.OPEN_PAREN {
			return p.parseGroup(tok)
		}

	case lexer.KEYWORD:
		switch tok.Keyword {
		case lexer.IF:
			return p.parseIf(tok)
		case lexer.LET:
			return p.parseLet(tok)
		case lexer.RECUR, lexer.LOOP:
			return nil, p.unexpected(tok, "`"+tok.Keyword.String()+"` is reserved")
		}
	}

	return nil, p.unexpected(tok, "expected an expression")
}

func (p *Parser) parseGroup(open lexer.Token) (ast.Expr, error) {
	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	closeTok, err := p.expectOperator(lexer.CLOSE_PAREN)
	if err != nil {
		return nil, err
	}
	return ast.NewGroupExpr(inner, mergeSpan(open.Span, closeTok.Span)), nil
}
