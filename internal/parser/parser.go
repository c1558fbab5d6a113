package parser

import (
	"fmt"

	"github.com/sable-lang/sable/internal/lexer"
)

// Parser is a recursive descent parser over a TokenStream.
// curr is always one token ahead of the stream cursor.
type Parser struct {
	stream *TokenStream
	curr   lexer.Token
	prev   lexer.Token
	errors []error

	filename string
}

// ParseError represents a parsing error with its location
type ParseError struct {
	Position lexer.Position
	Span     lexer.Span // span of the offending token
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse error at %s: %s", e.Position, e.Message)
}

// GetSpan returns the span of the offending token
func (e *ParseError) GetSpan() lexer.Span {
	return e.Span
}

// Code returns the diagnostic code shared by all syntax errors
func (e *ParseError) Code() string {
	return "E0001"
}

// NewParser creates a parser over an already lexed token sequence
func NewParser(tokens []lexer.Token, filename string) *Parser {
	p := &Parser{
		stream:   NewTokenStream(tokens),
		filename: filename,
		errors:   make([]error, 0),
	}
	p.advance()

	return p
}

// ParseSource lexes and parses src in one step
func ParseSource(src, filename string) (*Crate, []error) {
	return NewParser(lexer.NewWithFilename(src, filename).Tokenize(), filename).ParseCrate()
}

// Errors returns the errors recorded so far
func (p *Parser) Errors() []error {
	return p.errors
}

// ParseCrate parses items until EOF. A failed item is recorded and the
// parser resynchronizes on the next item keyword, so one crate can report
// several syntax errors.
func (p *Parser) ParseCrate() (*Crate, []error) {
	crate := &Crate{Span: lexer.Span{Start: p.curr.Span.Start}}

	for !p.currIs(lexer.TokenEOF) {
		item, err := p.parseItem()
		if err != nil {
			p.errors = append(p.errors, err)
			p.synchronize()

			continue
		}

		crate.Items = append(crate.Items, item)
	}

	crate.Span.End = p.curr.Span.End

	return crate, p.errors
}

// synchronize drops at least one token, then everything up to the next
// item-start keyword or EOF.
func (p *Parser) synchronize() {
	if p.currIs(lexer.TokenEOF) {
		return
	}

	p.advance()

	for !p.currIs(lexer.TokenEOF) && !isItemStart(p.curr.Type) {
		p.advance()
	}
}

func isItemStart(tt lexer.TokenType) bool {
	switch tt {
	case lexer.TokenPub, lexer.TokenStatic, lexer.TokenConst, lexer.TokenFn,
		lexer.TokenStruct, lexer.TokenTrait, lexer.TokenImpl:
		return true
	default:
		return false
	}
}

// advance moves curr to the next token of the stream
func (p *Parser) advance() {
	p.prev = p.curr

	if !p.stream.CanAdvance() {
		end := p.prev.Span.End
		p.curr = lexer.Token{Type: lexer.TokenEOF, Span: lexer.Span{Start: end, End: end}}

		return
	}

	p.curr, _ = p.stream.NextAndAdvance()
}

func (p *Parser) currIs(tt lexer.TokenType) bool {
	return p.curr.Type == tt
}

// peekIs checks the token dist positions after curr
func (p *Parser) peekIs(dist int, tt lexer.TokenType) bool {
	return p.stream.LookAhead(dist, func(tok lexer.Token) bool {
		return tok.Type == tt
	})
}

// eat consumes curr if it has the given type
func (p *Parser) eat(tt lexer.TokenType) bool {
	if p.currIs(tt) {
		p.advance()

		return true
	}

	return false
}

// expect consumes curr if it has the given type and reports an error otherwise
func (p *Parser) expect(tt lexer.TokenType, context string) (lexer.Token, error) {
	if !p.currIs(tt) {
		return p.curr, p.errorf("expected '%s' %s, found %s", tt, context, describe(p.curr))
	}

	tok := p.curr
	p.advance()

	return tok, nil
}

func (p *Parser) expectIdent(context string) (lexer.Token, error) {
	return p.expect(lexer.TokenIdentifier, context)
}

func (p *Parser) errorf(format string, args ...interface{}) *ParseError {
	return &ParseError{
		Position: p.curr.Span.Start,
		Span:     p.curr.Span,
		Message:  fmt.Sprintf(format, args...),
	}
}

// spanFrom returns the span from start to the end of the last consumed token
func (p *Parser) spanFrom(start lexer.Span) lexer.Span {
	return lexer.Span{Start: start.Start, End: p.prev.Span.End}
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokenEOF:
		return "end of file"
	case lexer.TokenIdentifier, lexer.TokenNumber:
		return fmt.Sprintf("'%s'", tok.Literal)
	case lexer.TokenString:
		return fmt.Sprintf("string %q", tok.Literal)
	default:
		return fmt.Sprintf("'%s'", tok.Type)
	}
}

// Filename returns the name of the file being parsed
func (p *Parser) Filename() string {
	return p.filename
}
