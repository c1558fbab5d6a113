package parser

import "github.com/sable-lang/sable/internal/lexer"

// parseType parses a reference, array or named type
func (p *Parser) parseType() (Ty, error) {
	start := p.curr.Span

	switch p.curr.Type {
	case lexer.TokenAmpersand:
		p.advance()

		return p.parseRefRest(start)
	case lexer.TokenAndAnd:
		// `&&T` is a reference to a reference
		p.advance()

		inner, err := p.parseRefRest(start)
		if err != nil {
			return nil, err
		}

		return &RefTy{Span: p.spanFrom(start), Inner: inner}, nil
	case lexer.TokenLBracket:
		p.advance()

		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}

		arr := &ArrayTy{Elem: elem}

		if p.eat(lexer.TokenSemicolon) {
			if arr.Len, err = p.parseExpression(); err != nil {
				return nil, err
			}
		}

		if _, err := p.expect(lexer.TokenRBracket, "to close array type"); err != nil {
			return nil, err
		}

		arr.Span = p.spanFrom(start)

		return arr, nil
	case lexer.TokenIdentifier, lexer.TokenSelfType:
		name := p.curr.Literal
		p.advance()

		owned := &OwnedTy{Name: name}

		if p.currIs(lexer.TokenLAngle) {
			args, err := p.parseGenericArgs()
			if err != nil {
				return nil, err
			}

			owned.Generics = args
		}

		owned.Span = p.spanFrom(start)

		return owned, nil
	default:
		return nil, p.errorf("expected type, found %s", describe(p.curr))
	}
}

// parseRefRest parses `['a] [mut] T` after the reference marker
func (p *Parser) parseRefRest(start lexer.Span) (Ty, error) {
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

	inner, err := p.parseType()
	if err != nil {
		return nil, err
	}

	ref.Inner = inner
	ref.Span = p.spanFrom(start)

	return ref, nil
}

// parseGenericArgs parses `<arg, ...>` where each arg is a lifetime, a type
// or a constant expression. One token of look-ahead decides: a reference or
// array marker, or a name followed by `,` `>` or `<`, starts a type.
func (p *Parser) parseGenericArgs() ([]GenericArg, error) {
	p.advance()

	args := make([]GenericArg, 0)

	for !p.currIs(lexer.TokenRAngle) {
		arg, err := p.parseGenericArg()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		if !p.eat(lexer.TokenComma) {
			break
		}
	}

	if _, err := p.expect(lexer.TokenRAngle, "to close generic arguments"); err != nil {
		return nil, err
	}

	return args, nil
}

func (p *Parser) parseGenericArg() (GenericArg, error) {
	if p.currIs(lexer.TokenApostrophe) {
		lt, err := p.parseLifetime()
		if err != nil {
			return nil, err
		}

		return &LifetimeArg{Lifetime: lt}, nil
	}

	if p.genericArgIsType() {
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}

		return &TyArg{Ty: ty}, nil
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &ConstArg{Value: value}, nil
}

func (p *Parser) genericArgIsType() bool {
	switch p.curr.Type {
	case lexer.TokenAmpersand, lexer.TokenAndAnd, lexer.TokenLBracket, lexer.TokenSelfType:
		return true
	case lexer.TokenIdentifier:
		return p.peekIs(1, lexer.TokenComma) ||
			p.peekIs(1, lexer.TokenRAngle) ||
			p.peekIs(1, lexer.TokenLAngle)
	default:
		return false
	}
}

// parseGenericsDef parses a generics definition list. curr is `<`.
// The list must contain at least one entry.
func (p *Parser) parseGenericsDef() ([]Generic, error) {
	p.advance()

	if p.currIs(lexer.TokenRAngle) {
		return nil, p.errorf("generic parameter list must not be empty")
	}

	generics := make([]Generic, 0, 2)

	for {
		g, err := p.parseGenericParam()
		if err != nil {
			return nil, err
		}

		generics = append(generics, g)

		if p.eat(lexer.TokenComma) {
			continue
		}

		if _, err := p.expect(lexer.TokenRAngle, "to close generic parameters"); err != nil {
			return nil, err
		}

		return generics, nil
	}
}

func (p *Parser) parseGenericParam() (Generic, error) {
	start := p.curr.Span

	switch p.curr.Type {
	case lexer.TokenConst:
		p.advance()

		name, err := p.expectIdent("after 'const' in generic parameters")
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(lexer.TokenColon, "after const generic name"); err != nil {
			return nil, err
		}

		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}

		return &ConstGeneric{Span: p.spanFrom(start), Name: name.Literal, Ty: ty}, nil
	case lexer.TokenApostrophe:
		lt, err := p.parseLifetime()
		if err != nil {
			return nil, err
		}

		return &LifetimeGeneric{Lifetime: lt}, nil
	case lexer.TokenIdentifier:
		name := p.curr.Literal
		p.advance()

		tg := &TypeGeneric{Name: name}

		if p.eat(lexer.TokenColon) {
			bounds, err := p.parseBounds()
			if err != nil {
				return nil, err
			}

			tg.RequiredTraits = bounds
		}

		tg.Span = p.spanFrom(start)

		return tg, nil
	default:
		return nil, p.errorf("expected generic parameter, found %s", describe(p.curr))
	}
}

// parseBounds parses `Ty (+ Ty)*`
func (p *Parser) parseBounds() ([]Ty, error) {
	bounds := make([]Ty, 0, 1)

	for {
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}

		bounds = append(bounds, ty)

		if !p.eat(lexer.TokenPlus) {
			return bounds, nil
		}
	}
}

// parseLifetime parses `'name`, `'static` or `'_`. curr is the apostrophe.
func (p *Parser) parseLifetime() (*Lifetime, error) {
	start := p.curr.Span
	p.advance()

	switch {
	case p.currIs(lexer.TokenStatic):
		p.advance()

		return &Lifetime{Span: p.spanFrom(start), Kind: LifetimeStatic}, nil
	case p.currIs(lexer.TokenIdentifier) && p.curr.Literal == "_":
		p.advance()

		return &Lifetime{Span: p.spanFrom(start), Kind: LifetimeInferred}, nil
	case p.currIs(lexer.TokenIdentifier):
		name := p.curr.Literal
		p.advance()

		return &Lifetime{Span: p.spanFrom(start), Kind: LifetimeCustom, Name: name}, nil
	default:
		return nil, p.errorf("expected lifetime name, found %s", describe(p.curr))
	}
}
