package lexer

import "testing"

func TestBasicTokens(t *testing.T) {
	input := `fn add(a: i32, b: i32) -> i32 {
	a + b
}`

	tests := []struct {
		expectedType  TokenType
		expectedValue string
	}{
		{TokenFn, "fn"},
		{TokenIdentifier, "add"},
		{TokenLParen, "("},
		{TokenIdentifier, "a"},
		{TokenColon, ":"},
		{TokenIdentifier, "i32"},
		{TokenComma, ","},
		{TokenIdentifier, "b"},
		{TokenColon, ":"},
		{TokenIdentifier, "i32"},
		{TokenRParen, ")"},
		{TokenArrow, "->"},
		{TokenIdentifier, "i32"},
		{TokenLBrace, "{"},
		{TokenIdentifier, "a"},
		{TokenPlus, "+"},
		{TokenIdentifier, "b"},
		{TokenRBrace, "}"},
		{TokenEOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedValue {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedValue, tok.Literal)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `pub static const let fn mut struct trait impl for Self self`

	expected := []TokenType{
		TokenPub, TokenStatic, TokenConst, TokenLet, TokenFn, TokenMut,
		TokenStruct, TokenTrait, TokenImpl, TokenFor, TokenSelfType, TokenSelfValue,
		TokenEOF,
	}

	tokens := Tokenize(input)
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}

	for i, tt := range expected {
		if tokens[i].Type != tt {
			t.Errorf("tokens[%d]: expected %s, got %s", i, tt, tokens[i].Type)
		}

		if tt != TokenEOF && !tokens[i].Type.IsKeyword() {
			t.Errorf("tokens[%d]: %s should be a keyword", i, tokens[i].Type)
		}
	}
}

func TestOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"+", TokenPlus},
		{"-", TokenMinus},
		{"*", TokenStar},
		{"/", TokenSlash},
		{"%", TokenPercent},
		{"=", TokenAssign},
		{"+=", TokenPlusAssign},
		{"-=", TokenMinusAssign},
		{"*=", TokenMulAssign},
		{"/=", TokenDivAssign},
		{"&=", TokenAndAssign},
		{"|=", TokenOrAssign},
		{"&&", TokenAndAnd},
		{"||", TokenOrOr},
		{"&", TokenAmpersand},
		{"|", TokenPipe},
		{"->", TokenArrow},
		{"'", TokenApostrophe},
		{"<", TokenLAngle},
		{">", TokenRAngle},
		{"#", TokenHash},
		{"?", TokenQuestion},
		{"$", TokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			if tok.Type != tt.expected {
				t.Fatalf("expected %s, got %s", tt.expected, tok.Type)
			}

			if tok.Literal != tt.input {
				t.Fatalf("expected literal %q, got %q", tt.input, tok.Literal)
			}
		})
	}
}

func TestNestedAngleBrackets(t *testing.T) {
	tokens := Tokenize("Vec<Vec<i32>>")

	closing := 0
	for _, tok := range tokens {
		if tok.Type == TokenRAngle {
			closing++
		}
	}

	if closing != 2 {
		t.Fatalf("expected two closing angle tokens, got %d", closing)
	}
}

func TestCommentsAndLiterals(t *testing.T) {
	input := "// line\nlet x = 12.5; /* block */ \"hi\\\"there\" 1_000"

	expected := []struct {
		tt  TokenType
		lit string
	}{
		{TokenComment, "// line"},
		{TokenLet, "let"},
		{TokenIdentifier, "x"},
		{TokenAssign, "="},
		{TokenNumber, "12.5"},
		{TokenSemicolon, ";"},
		{TokenComment, "/* block */"},
		{TokenString, "hi\\\"there"},
		{TokenNumber, "1_000"},
		{TokenEOF, ""},
	}

	tokens := Tokenize(input)
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}

	for i, e := range expected {
		if tokens[i].Type != e.tt || tokens[i].Literal != e.lit {
			t.Errorf("tokens[%d]: expected %s %q, got %s %q", i, e.tt, e.lit, tokens[i].Type, tokens[i].Literal)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	tok := New(`"open`).NextToken()
	if tok.Type != TokenInvalid {
		t.Fatalf("expected INVALID, got %s", tok.Type)
	}
}

func TestSpans(t *testing.T) {
	tokens := Tokenize("let x\n  = 5")

	tests := []struct {
		index                  int
		line, column           int
		startOffset, endOffset int
	}{
		{0, 1, 1, 0, 3},
		{1, 1, 5, 4, 5},
		{2, 2, 3, 8, 9},
		{3, 2, 5, 10, 11},
	}

	for _, tt := range tests {
		tok := tokens[tt.index]
		if tok.Span.Start.Line != tt.line || tok.Span.Start.Column != tt.column {
			t.Errorf("token %q: expected %d:%d, got %s", tok.Literal, tt.line, tt.column, tok.Span.Start)
		}

		if tok.Span.Start.Offset != tt.startOffset || tok.Span.End.Offset != tt.endOffset {
			t.Errorf("token %q: expected offsets [%d,%d), got [%d,%d)",
				tok.Literal, tt.startOffset, tt.endOffset, tok.Span.Start.Offset, tok.Span.End.Offset)
		}
	}

	last := tokens[len(tokens)-1]
	if last.Type != TokenEOF || last.Span.Start.Offset != 11 {
		t.Fatalf("expected EOF at offset 11, got %v", last)
	}
}

func TestSpanJoin(t *testing.T) {
	a := Span{Start: Position{Offset: 4}, End: Position{Offset: 6}}
	b := Span{Start: Position{Offset: 1}, End: Position{Offset: 5}}

	j := a.Join(b)
	if j.Start.Offset != 1 || j.End.Offset != 6 || j.Len() != 5 {
		t.Fatalf("unexpected join: %+v", j)
	}
}
