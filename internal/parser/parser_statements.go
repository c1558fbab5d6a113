package parser

import "github.com/sable-lang/sable/internal/lexer"

// parseBlock parses `{ stmt* }`
func (p *Parser) parseBlock() (*Block, error) {
	start := p.curr.Span

	if _, err := p.expect(lexer.TokenLBrace, "to open block"); err != nil {
		return nil, err
	}

	block := &Block{Stmts: make([]Stmt, 0)}

	for !p.currIs(lexer.TokenRBrace) {
		if p.currIs(lexer.TokenEOF) {
			return nil, p.errorf("unclosed block")
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		block.Stmts = append(block.Stmts, stmt)

		if _, isValue := stmt.(*ExprStmt); isValue && !p.currIs(lexer.TokenRBrace) {
			return nil, p.errorf("expected ';' or '}' after expression, found %s", describe(p.curr))
		}
	}

	p.advance()
	block.Span = p.spanFrom(start)

	return block, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	start := p.curr.Span

	switch {
	case p.currIs(lexer.TokenSemicolon):
		p.advance()

		return &EmptyStmt{Span: start}, nil
	case p.currIs(lexer.TokenLet):
		return p.parseLet()
	case isItemStart(p.curr.Type):
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}

		return &ItemStmt{Item: item}, nil
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.eat(lexer.TokenSemicolon) {
		return &SemiStmt{Span: p.spanFrom(start), Expr: expr}, nil
	}

	if _, isBlock := expr.(*BlockExpr); isBlock && !p.currIs(lexer.TokenRBrace) {
		return &SemiStmt{Span: p.spanFrom(start), Expr: expr}, nil
	}

	return &ExprStmt{Expr: expr}, nil
}

// let [mut] NAME [: TYPE] = EXPR;
func (p *Parser) parseLet() (Stmt, error) {
	start := p.curr.Span
	p.advance()

	local := &LocalStmt{}

	if p.eat(lexer.TokenMut) {
		local.Mutability = Mut
	}

	name, err := p.expectIdent("after 'let'")
	if err != nil {
		return nil, err
	}

	local.Name = name.Literal

	if p.eat(lexer.TokenColon) {
		if local.Ty, err = p.parseType(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(lexer.TokenAssign, "in let binding"); err != nil {
		return nil, err
	}

	if local.Value, err = p.parseExpression(); err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.TokenSemicolon, "after let binding"); err != nil {
		return nil, err
	}

	local.Span = p.spanFrom(start)

	return local, nil
}
