package parser

import (
	"strings"

	"github.com/sable-lang/sable/internal/lexer"
)

// parseExpression parses a primary expression followed by any binary
// operator chain
func (p *Parser) parseExpression() (Expr, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	return p.parseBinOpRHS(0, lhs)
}

// parseBinOpRHS implements precedence climbing. It folds operators whose
// precedence is at least minPrec into lhs. Operators of equal precedence
// associate to the left.
func (p *Parser) parseBinOpRHS(minPrec int, lhs Expr) (Expr, error) {
	for {
		op, ok := BinOpFromToken(p.curr.Type)
		if !ok || op.Precedence() < minPrec {
			return lhs, nil
		}

		p.advance()

		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}

		if next, ok := BinOpFromToken(p.curr.Type); ok && op.Precedence() < next.Precedence() {
			if rhs, err = p.parseBinOpRHS(op.Precedence()+1, rhs); err != nil {
				return nil, err
			}
		}

		lhs = &BinaryExpr{
			Span: lhs.GetSpan().Join(rhs.GetSpan()),
			Lhs:  lhs,
			Rhs:  rhs,
			Op:   op,
		}
	}
}

// parsePrimary parses literals, names, calls, struct literals, arrays,
// parenthesized expressions and blocks
func (p *Parser) parsePrimary() (Expr, error) {
	start := p.curr.Span

	switch p.curr.Type {
	case lexer.TokenNumber:
		raw := p.curr.Literal
		p.advance()

		return &NumberLit{Span: start, Raw: raw, IsFloat: strings.Contains(raw, ".")}, nil
	case lexer.TokenIdentifier, lexer.TokenSelfValue:
		switch {
		case p.peekIs(1, lexer.TokenLParen):
			return p.parseCall()
		case p.currIs(lexer.TokenIdentifier) && p.structLitAhead():
			return p.parseStructLit()
		}

		name := p.curr.Literal
		p.advance()

		return &Ident{Span: start, Name: name}, nil
	case lexer.TokenLParen:
		p.advance()

		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(lexer.TokenRParen, "to close parenthesized expression"); err != nil {
			return nil, err
		}

		return inner, nil
	case lexer.TokenLBracket:
		return p.parseArray()
	case lexer.TokenLBrace:
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}

		return &BlockExpr{Block: block}, nil
	default:
		return nil, p.errorf("expected expression, found %s", describe(p.curr))
	}
}

// structLitAhead reports whether `Name {` opens a struct literal rather
// than a following block: the brace must be followed by `}` or `field:`.
func (p *Parser) structLitAhead() bool {
	if !p.peekIs(1, lexer.TokenLBrace) {
		return false
	}

	if p.peekIs(2, lexer.TokenRBrace) {
		return true
	}

	return p.peekIs(2, lexer.TokenIdentifier) && p.peekIs(3, lexer.TokenColon)
}

func (p *Parser) parseCall() (Expr, error) {
	start := p.curr.Span
	callee := &Ident{Span: start, Name: p.curr.Literal}

	p.advance()
	p.advance()

	args := make([]Expr, 0)

	for !p.currIs(lexer.TokenRParen) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		if !p.eat(lexer.TokenComma) {
			break
		}
	}

	if _, err := p.expect(lexer.TokenRParen, "to close argument list"); err != nil {
		return nil, err
	}

	return &CallExpr{Span: p.spanFrom(start), Callee: callee, Args: args}, nil
}

func (p *Parser) parseStructLit() (Expr, error) {
	start := p.curr.Span
	lit := &StructLit{Name: p.curr.Literal, Fields: make([]*FieldInit, 0)}

	p.advance()
	p.advance()

	for !p.currIs(lexer.TokenRBrace) {
		fieldStart := p.curr.Span

		name, err := p.expectIdent("as field name in struct literal")
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(lexer.TokenColon, "after field name in struct literal"); err != nil {
			return nil, err
		}

		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		lit.Fields = append(lit.Fields, &FieldInit{Span: p.spanFrom(fieldStart), Name: name.Literal, Value: value})

		if !p.eat(lexer.TokenComma) {
			break
		}
	}

	if _, err := p.expect(lexer.TokenRBrace, "to close struct literal"); err != nil {
		return nil, err
	}

	lit.Span = p.spanFrom(start)

	return lit, nil
}

// parseArray parses `[a, b, c]` or `[value; count]`
func (p *Parser) parseArray() (Expr, error) {
	start := p.curr.Span
	p.advance()

	if p.eat(lexer.TokenRBracket) {
		return &ArrayList{Span: p.spanFrom(start), Values: make([]Expr, 0)}, nil
	}

	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.eat(lexer.TokenSemicolon) {
		count, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(lexer.TokenRBracket, "to close array"); err != nil {
			return nil, err
		}

		return &ArrayRepeat{Span: p.spanFrom(start), Value: first, Count: count}, nil
	}

	values := []Expr{first}

	for p.eat(lexer.TokenComma) {
		if p.currIs(lexer.TokenRBracket) {
			break
		}

		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		values = append(values, v)
	}

	if _, err := p.expect(lexer.TokenRBracket, "to close array"); err != nil {
		return nil, err
	}

	return &ArrayList{Span: p.spanFrom(start), Values: values}, nil
}
