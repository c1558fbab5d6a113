package parser

import "github.com/sable-lang/sable/internal/lexer"

// TokenStream is a cursor over a comment-free token sequence.
// The sequence always ends with an EOF token.
type TokenStream struct {
	tokens []lexer.Token
	cursor int
}

// NewTokenStream filters comments out of tokens and appends an EOF
// sentinel when the input does not already end with one.
func NewTokenStream(tokens []lexer.Token) *TokenStream {
	filtered := make([]lexer.Token, 0, len(tokens)+1)
	for _, tok := range tokens {
		if tok.Type == lexer.TokenComment {
			continue
		}

		filtered = append(filtered, tok)
	}

	if len(filtered) == 0 || filtered[len(filtered)-1].Type != lexer.TokenEOF {
		var end lexer.Position
		if len(filtered) > 0 {
			end = filtered[len(filtered)-1].Span.End
		}

		filtered = append(filtered, lexer.Token{
			Type: lexer.TokenEOF,
			Span: lexer.Span{Start: end, End: end},
		})
	}

	return &TokenStream{tokens: filtered}
}

// Len returns the number of tokens in the stream including EOF
func (s *TokenStream) Len() int {
	return len(s.tokens)
}

// Next returns the token under the cursor without consuming it
func (s *TokenStream) Next() (lexer.Token, bool) {
	if s.cursor >= len(s.tokens) {
		return lexer.Token{}, false
	}

	return s.tokens[s.cursor], true
}

// NextAndAdvance returns the token under the cursor and moves past it
func (s *TokenStream) NextAndAdvance() (lexer.Token, bool) {
	tok, ok := s.Next()
	if ok {
		s.cursor++
	}

	return tok, ok
}

// Advance moves the cursor forward by one token
func (s *TokenStream) Advance() {
	if s.cursor < len(s.tokens) {
		s.cursor++
	}
}

// CanAdvance reports whether a token remains under the cursor
func (s *TokenStream) CanAdvance() bool {
	return s.cursor < len(s.tokens)
}

// Eat consumes the next token if it has the given type
func (s *TokenStream) Eat(tt lexer.TokenType) bool {
	tok, ok := s.Next()
	if !ok || tok.Type != tt {
		return false
	}

	s.cursor++

	return true
}

// LookAhead applies pred to the token dist positions ahead. A distance
// of 0 or 1 both mean the token under the cursor.
func (s *TokenStream) LookAhead(dist int, pred func(lexer.Token) bool) bool {
	if dist < 1 {
		dist = 1
	}

	idx := s.cursor + dist - 1
	if idx >= len(s.tokens) {
		return false
	}

	return pred(s.tokens[idx])
}

// Peek returns the type of the token dist positions ahead, or EOF
func (s *TokenStream) Peek(dist int) lexer.TokenType {
	var tt lexer.TokenType = lexer.TokenEOF

	s.LookAhead(dist, func(tok lexer.Token) bool {
		tt = tok.Type

		return true
	})

	return tt
}
