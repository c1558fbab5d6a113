package parser

import "github.com/sable-lang/sable/internal/lexer"

// parseItem parses one item including its visibility prefix
func (p *Parser) parseItem() (Item, error) {
	start := p.curr.Span
	vis := p.parseVisibility()

	switch p.curr.Type {
	case lexer.TokenStatic:
		return p.parseStatic(start, vis)
	case lexer.TokenConst:
		if p.peekIs(1, lexer.TokenFn) {
			p.advance()

			return p.parseFunction(start, FunctionModifiers{Constness: Const, Visibility: vis}, false)
		}

		return p.parseConst(start, vis)
	case lexer.TokenFn:
		return p.parseFunction(start, FunctionModifiers{Visibility: vis}, false)
	case lexer.TokenStruct:
		return p.parseStruct(start, vis)
	case lexer.TokenTrait:
		return p.parseTrait(start, vis)
	case lexer.TokenImpl:
		if vis != Private {
			return nil, p.errorf("visibility qualifiers are not permitted on impl blocks")
		}

		return p.parseImpl(start)
	default:
		return nil, p.errorf("expected item, found %s", describe(p.curr))
	}
}

// parseVisibility consumes `pub` or `pub(crate)`
func (p *Parser) parseVisibility() Visibility {
	if !p.eat(lexer.TokenPub) {
		return Private
	}

	if p.currIs(lexer.TokenLParen) &&
		p.stream.LookAhead(1, func(tok lexer.Token) bool {
			return tok.Type == lexer.TokenIdentifier && tok.Literal == "crate"
		}) &&
		p.peekIs(2, lexer.TokenRParen) {
		p.advance()
		p.advance()
		p.advance()

		return PubCrate
	}

	return Public
}

// static [mut] NAME: TYPE = EXPR;
func (p *Parser) parseStatic(start lexer.Span, vis Visibility) (Item, error) {
	p.advance()

	mut := Immut
	if p.eat(lexer.TokenMut) {
		mut = Mut
	}

	name, ty, value, err := p.parseValueDecl("static")
	if err != nil {
		return nil, err
	}

	return &StaticVal{
		Span:       p.spanFrom(start),
		Visibility: vis,
		Mutability: mut,
		Name:       name,
		Ty:         ty,
		Value:      value,
	}, nil
}

// const NAME: TYPE = EXPR;
func (p *Parser) parseConst(start lexer.Span, vis Visibility) (Item, error) {
	p.advance()

	name, ty, value, err := p.parseValueDecl("const")
	if err != nil {
		return nil, err
	}

	return &ConstVal{
		Span:       p.spanFrom(start),
		Visibility: vis,
		Name:       name,
		Ty:         ty,
		Value:      value,
	}, nil
}

// parseValueDecl parses the `NAME: TYPE = EXPR;` tail shared by static and const
func (p *Parser) parseValueDecl(kind string) (string, Ty, Expr, error) {
	name, err := p.expectIdent("after " + kind)
	if err != nil {
		return "", nil, nil, err
	}

	if _, err := p.expect(lexer.TokenColon, "after "+kind+" name"); err != nil {
		return "", nil, nil, err
	}

	ty, err := p.parseType()
	if err != nil {
		return "", nil, nil, err
	}

	if _, err := p.expect(lexer.TokenAssign, "in "+kind+" declaration"); err != nil {
		return "", nil, nil, err
	}

	value, err := p.parseExpression()
	if err != nil {
		return "", nil, nil, err
	}

	if _, err := p.expect(lexer.TokenSemicolon, "after "+kind+" declaration"); err != nil {
		return "", nil, nil, err
	}

	return name.Literal, ty, value, nil
}

// parseFunction parses a header and a body. curr is `fn`.
func (p *Parser) parseFunction(start lexer.Span, mods FunctionModifiers, allowReceiver bool) (*FunctionDef, error) {
	header, err := p.parseFunctionHeader(allowReceiver)
	if err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &FunctionDef{
		Span:      p.spanFrom(start),
		Modifiers: mods,
		Header:    header,
		Body:      body,
	}, nil
}

// fn NAME<GENERICS>(PARAMS) [-> TYPE]
func (p *Parser) parseFunctionHeader(allowReceiver bool) (*FunctionHeader, error) {
	start := p.curr.Span

	if _, err := p.expect(lexer.TokenFn, "to start a function"); err != nil {
		return nil, err
	}

	name, err := p.expectIdent("after 'fn'")
	if err != nil {
		return nil, err
	}

	header := &FunctionHeader{Name: name.Literal}

	if p.currIs(lexer.TokenLAngle) {
		if header.Generics, err = p.parseGenericsDef(); err != nil {
			return nil, err
		}
	}

	if header.Params, err = p.parseParams(allowReceiver); err != nil {
		return nil, err
	}

	if p.eat(lexer.TokenArrow) {
		if header.Ret, err = p.parseType(); err != nil {
			return nil, err
		}
	}

	header.Span = p.spanFrom(start)

	return header, nil
}

func (p *Parser) parseParams(allowReceiver bool) ([]*Param, error) {
	if _, err := p.expect(lexer.TokenLParen, "to open the parameter list"); err != nil {
		return nil, err
	}

	params := make([]*Param, 0)

	if allowReceiver && p.receiverAhead() {
		recv, err := p.parseReceiver()
		if err != nil {
			return nil, err
		}

		params = append(params, recv)

		if !p.currIs(lexer.TokenRParen) {
			if _, err := p.expect(lexer.TokenComma, "after receiver"); err != nil {
				return nil, err
			}
		}
	}

	for !p.currIs(lexer.TokenRParen) {
		start := p.curr.Span

		name, err := p.expectIdent("as parameter name")
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(lexer.TokenColon, "after parameter name"); err != nil {
			return nil, err
		}

		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}

		params = append(params, &Param{Span: p.spanFrom(start), Name: name.Literal, Ty: ty})

		if !p.eat(lexer.TokenComma) {
			break
		}
	}

	if _, err := p.expect(lexer.TokenRParen, "to close the parameter list"); err != nil {
		return nil, err
	}

	return params, nil
}

// receiverAhead reports whether curr starts `self`, `&self`, `&mut self` or `&'a self`
func (p *Parser) receiverAhead() bool {
	if p.currIs(lexer.TokenSelfValue) {
		return true
	}

	if !p.currIs(lexer.TokenAmpersand) {
		return false
	}

	dist := 1
	if p.peekIs(dist, lexer.TokenApostrophe) {
		dist += 2
	}

	if p.peekIs(dist, lexer.TokenMut) {
		dist++
	}

	return p.peekIs(dist, lexer.TokenSelfValue)
}

func (p *Parser) parseReceiver() (*Param, error) {
	start := p.curr.Span
	selfTy := func(span lexer.Span) Ty { return &OwnedTy{Span: span, Name: "Self"} }

	if p.currIs(lexer.TokenSelfValue) {
		p.advance()

		return &Param{Span: start, Name: "self", Ty: selfTy(start)}, nil
	}

	p.advance()

	ref := &RefTy{}

	if p.currIs(lexer.TokenApostrophe) {
		lt, err := p.parseLifetime()
		if err != nil {
			return nil, err
		}

		ref.Lifetime = lt
	}

	if p.eat(lexer.TokenMut) {
		ref.Mutability = Mut
	}

	selfTok, err := p.expect(lexer.TokenSelfValue, "in receiver")
	if err != nil {
		return nil, err
	}

	ref.Inner = selfTy(selfTok.Span)
	ref.Span = p.spanFrom(start)

	return &Param{Span: ref.Span, Name: "self", Ty: ref}, nil
}

// struct NAME<GENERICS> { [pub] name: Ty, ... } or struct NAME<GENERICS>;
func (p *Parser) parseStruct(start lexer.Span, vis Visibility) (Item, error) {
	p.advance()

	name, err := p.expectIdent("after 'struct'")
	if err != nil {
		return nil, err
	}

	def := &StructDef{Visibility: vis, Name: name.Literal, Fields: make([]*StructField, 0)}

	if p.currIs(lexer.TokenLAngle) {
		if def.Generics, err = p.parseGenericsDef(); err != nil {
			return nil, err
		}
	}

	if p.eat(lexer.TokenSemicolon) {
		def.Span = p.spanFrom(start)

		return def, nil
	}

	if _, err := p.expect(lexer.TokenLBrace, "to open struct body"); err != nil {
		return nil, err
	}

	for !p.currIs(lexer.TokenRBrace) {
		fieldStart := p.curr.Span
		fieldVis := p.parseVisibility()

		fieldName, err := p.expectIdent("as field name")
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(lexer.TokenColon, "after field name"); err != nil {
			return nil, err
		}

		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}

		def.Fields = append(def.Fields, &StructField{
			Span:       p.spanFrom(fieldStart),
			Visibility: fieldVis,
			Name:       fieldName.Literal,
			Ty:         ty,
		})

		if !p.eat(lexer.TokenComma) {
			break
		}
	}

	if _, err := p.expect(lexer.TokenRBrace, "to close struct body"); err != nil {
		return nil, err
	}

	def.Span = p.spanFrom(start)

	return def, nil
}

// trait NAME<GENERICS> [: Bound + Bound] { (fn header;)* }
func (p *Parser) parseTrait(start lexer.Span, vis Visibility) (Item, error) {
	p.advance()

	name, err := p.expectIdent("after 'trait'")
	if err != nil {
		return nil, err
	}

	def := &TraitDef{Visibility: vis, Name: name.Literal}

	if p.currIs(lexer.TokenLAngle) {
		if def.Generics, err = p.parseGenericsDef(); err != nil {
			return nil, err
		}
	}

	if p.eat(lexer.TokenColon) {
		if def.SuperTraits, err = p.parseBounds(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(lexer.TokenLBrace, "to open trait body"); err != nil {
		return nil, err
	}

	for !p.currIs(lexer.TokenRBrace) && !p.currIs(lexer.TokenEOF) {
		header, err := p.parseFunctionHeader(true)
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(lexer.TokenSemicolon, "after trait method signature"); err != nil {
			return nil, err
		}

		def.Methods = append(def.Methods, header)
	}

	if _, err := p.expect(lexer.TokenRBrace, "to close trait body"); err != nil {
		return nil, err
	}

	def.Span = p.spanFrom(start)

	return def, nil
}

// impl<GENERICS> TYPE [for TYPE] { ([pub] [const] fn ...)* }
func (p *Parser) parseImpl(start lexer.Span) (Item, error) {
	p.advance()

	def := &ImplDef{}

	var err error

	if p.currIs(lexer.TokenLAngle) {
		if def.Generics, err = p.parseGenericsDef(); err != nil {
			return nil, err
		}
	}

	first, err := p.parseType()
	if err != nil {
		return nil, err
	}

	def.Ty = first

	if p.eat(lexer.TokenFor) {
		target, err := p.parseType()
		if err != nil {
			return nil, err
		}

		def.Trait = first
		def.Ty = target
	}

	if _, err := p.expect(lexer.TokenLBrace, "to open impl body"); err != nil {
		return nil, err
	}

	for !p.currIs(lexer.TokenRBrace) && !p.currIs(lexer.TokenEOF) {
		methodStart := p.curr.Span
		mods := FunctionModifiers{Visibility: p.parseVisibility()}

		if p.eat(lexer.TokenConst) {
			mods.Constness = Const
		}

		method, err := p.parseFunction(methodStart, mods, true)
		if err != nil {
			return nil, err
		}

		def.Methods = append(def.Methods, method)
	}

	if _, err := p.expect(lexer.TokenRBrace, "to close impl body"); err != nil {
		return nil, err
	}

	def.Span = p.spanFrom(start)

	return def, nil
}
