// Package lexer implements the Sable lexical analyzer.
package lexer

import "fmt"

// TokenType represents the type of a token
type TokenType int

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

// Token types
const (
	TokenEOF TokenType = iota
	TokenInvalid
	TokenComment

	// Literals
	TokenIdentifier
	TokenNumber
	TokenString

	// Keywords
	TokenPub
	TokenStatic
	TokenConst
	TokenLet
	TokenFn
	TokenMut
	TokenEnum
	TokenStruct
	TokenMod
	TokenSelfType
	TokenSelfValue
	TokenImpl
	TokenIf
	TokenElse
	TokenMatch
	TokenFor
	TokenWhile
	TokenLoop
	TokenIn
	TokenTrait
	TokenType_
	TokenUnsafe
	TokenExtern
	TokenAsync

	// Operators
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenAssign
	TokenPlusAssign
	TokenMinusAssign
	TokenMulAssign
	TokenDivAssign
	TokenAndAssign
	TokenOrAssign
	TokenAndAnd
	TokenOrOr
	TokenAmpersand
	TokenPipe

	// Delimiters
	TokenComma
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenColon
	TokenSemicolon
	TokenApostrophe
	TokenLAngle
	TokenRAngle
	TokenHash
	TokenDot
	TokenQuestion
	TokenArrow
)

var tokenNames = map[TokenType]string{
	TokenEOF:     "EOF",
	TokenInvalid: "INVALID",
	TokenComment: "COMMENT",

	TokenIdentifier: "IDENTIFIER",
	TokenNumber:     "NUMBER",
	TokenString:     "STRING",

	TokenPub:       "pub",
	TokenStatic:    "static",
	TokenConst:     "const",
	TokenLet:       "let",
	TokenFn:        "fn",
	TokenMut:       "mut",
	TokenEnum:      "enum",
	TokenStruct:    "struct",
	TokenMod:       "mod",
	TokenSelfType:  "Self",
	TokenSelfValue: "self",
	TokenImpl:      "impl",
	TokenIf:        "if",
	TokenElse:      "else",
	TokenMatch:     "match",
	TokenFor:       "for",
	TokenWhile:     "while",
	TokenLoop:      "loop",
	TokenIn:        "in",
	TokenTrait:     "trait",
	TokenType_:     "type",
	TokenUnsafe:    "unsafe",
	TokenExtern:    "extern",
	TokenAsync:     "async",

	TokenPlus:        "+",
	TokenMinus:       "-",
	TokenStar:        "*",
	TokenSlash:       "/",
	TokenPercent:     "%",
	TokenAssign:      "=",
	TokenPlusAssign:  "+=",
	TokenMinusAssign: "-=",
	TokenMulAssign:   "*=",
	TokenDivAssign:   "/=",
	TokenAndAssign:   "&=",
	TokenOrAssign:    "|=",
	TokenAndAnd:      "&&",
	TokenOrOr:        "||",
	TokenAmpersand:   "&",
	TokenPipe:        "|",

	TokenComma:      ",",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenLBrace:     "{",
	TokenRBrace:     "}",
	TokenLBracket:   "[",
	TokenRBracket:   "]",
	TokenColon:      ":",
	TokenSemicolon:  ";",
	TokenApostrophe: "'",
	TokenLAngle:     "<",
	TokenRAngle:     ">",
	TokenHash:       "#",
	TokenDot:        ".",
	TokenQuestion:   "?",
	TokenArrow:      "->",
}

// keywords maps reserved words to their token types
var keywords = map[string]TokenType{
	"pub":    TokenPub,
	"static": TokenStatic,
	"const":  TokenConst,
	"let":    TokenLet,
	"fn":     TokenFn,
	"mut":    TokenMut,
	"enum":   TokenEnum,
	"struct": TokenStruct,
	"mod":    TokenMod,
	"Self":   TokenSelfType,
	"self":   TokenSelfValue,
	"impl":   TokenImpl,
	"if":     TokenIf,
	"else":   TokenElse,
	"match":  TokenMatch,
	"for":    TokenFor,
	"while":  TokenWhile,
	"loop":   TokenLoop,
	"in":     TokenIn,
	"trait":  TokenTrait,
	"type":   TokenType_,
	"unsafe": TokenUnsafe,
	"extern": TokenExtern,
	"async":  TokenAsync,
}

// IsKeyword reports whether the token type is a reserved word
func (tt TokenType) IsKeyword() bool {
	return tt >= TokenPub && tt <= TokenAsync
}

// Position represents a position in the source code
type Position struct {
	File   string
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset in source
}

// String returns "file:line:column", or "line:column" without a file
func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}

	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open range [Start, End) in the source code
type Span struct {
	Start Position
	End   Position
}

// Len returns the number of bytes covered by the span
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

// Join returns the smallest span covering both s and other
func (s Span) Join(other Span) Span {
	out := s
	if other.Start.Offset < out.Start.Offset {
		out.Start = other.Start
	}

	if other.End.Offset > out.End.Offset {
		out.End = other.End
	}

	return out
}

// Token represents a lexical token with position information
type Token struct {
	Type    TokenType
	Literal string
	Span    Span
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %q, Pos: %s}", t.Type, t.Literal, t.Span.Start)
}

// Is reports whether the token has the given type
func (t Token) Is(tt TokenType) bool {
	return t.Type == tt
}
