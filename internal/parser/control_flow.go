package parser

import (
	"fmt"

	"github.com/simp-lang/simp/internal/ast"
	"github.com/simp-lang/simp/internal/lexer"
)

// parseIf parses `if cond then a else b end`; the `if` keyword is consumed.
func (p *Parser) parseIf(ifTok lexer.Token) (ast.Expr, error) {
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword(lexer.THEN); err != nil {
		return nil, err
	}

	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword(lexer.ELSE); err != nil {
		return nil, err
	}

	els, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	endTok, err := p.expectKeyword(lexer.END)
	if err != nil {
		return nil, err
	}

	return ast.NewIfExpr(cond, then, els, mergeSpan(ifTok.Span, endTok.Span)), nil
}

// parseLet parses `let b1 and b2 ... in body end`; the `let` keyword is
// consumed.
func (p *Parser) parseLet(letTok lexer.Token) (ast.Expr, error) {
	if tok, ok := p.stream.Peek(); ok && tok.IsKeyword(lexer.IN) {
		return nil, p.errorAt(ErrEmptyBindingList, tok.Span, "let expression has no bindings")
	}

	var bindings []*ast.Binding
	seen := make(map[string]lexer.Span)
	for {
		binding, err := p.parseBinding()
		if err != nil {
			return nil, err
		}
		if first, dup := seen[binding.Name]; dup {
			perr := p.errorAt(ErrDuplicateBinding, binding.Span(),
				fmt.Sprintf("`%s` is bound more than once in the same let", binding.Name))
			perr.Related = &first
			return nil, perr
		}
		seen[binding.Name] = binding.Span()
		bindings = append(bindings, binding)

		tok, ok := p.stream.Next()
		if ok && tok.IsKeyword(lexer.AND) {
			continue
		}
		if ok {
			if err := p.stream.Backup(); err != nil {
				panic(err)
			}
		}
		break
	}

	if _, err := p.expectKeyword(lexer.IN); err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	endTok, err := p.expectKeyword(lexer.END)
	if err != nil {
		return nil, err
	}

	return ast.NewLetExpr(bindings, body, mergeSpan(letTok.Span, endTok.Span)), nil
}

// parseBinding parses `name = value`.
func (p *Parser) parseBinding() (*ast.Binding, error) {
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOperator(lexer.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.NewBinding(name.Text, value, mergeSpan(name.Span, value.Span())), nil
}
