package lexer

// Lexer turns source text into tokens
type Lexer struct {
	input        string
	filename     string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // line of ch
	column       int  // column of ch
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithFilename(input, "")
}

// NewWithFilename creates a new lexer instance with filename for error reporting
func NewWithFilename(input, filename string) *Lexer {
	l := &Lexer{
		input:    input,
		filename: filename,
		line:     1,
		column:   0,
	}
	l.readChar()

	return l
}

// Filename returns the name the lexer was created with
func (l *Lexer) Filename() string {
	return l.filename
}

// Tokenize scans the whole input. The result always ends with an EOF token.
func Tokenize(input string) []Token {
	return New(input).Tokenize()
}

// Tokenize scans the remaining input. The result always ends with an EOF token.
func (l *Lexer) Tokenize() []Token {
	tokens := make([]Token, 0, len(l.input)/4+1)

	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)

		if tok.Type == TokenEOF {
			return tokens
		}
	}
}

// readChar reads the next character and advances position
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}

	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}

	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) getCurrentPosition() Position {
	offset := l.position
	if offset > len(l.input) {
		offset = len(l.input)
	}

	return Position{File: l.filename, Line: l.line, Column: l.column, Offset: offset}
}

// NextToken scans the input and returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	start := l.getCurrentPosition()

	if l.atEnd() {
		return Token{Type: TokenEOF, Span: Span{Start: start, End: start}}
	}

	switch l.ch {
	case '/':
		switch l.peekChar() {
		case '/', '*':
			text := l.readComment()

			return l.newTokenFromPosition(TokenComment, text, start)
		case '=':
			return l.twoCharToken(TokenDivAssign, start)
		}

		return l.oneCharToken(TokenSlash, start)
	case '+':
		if l.peekChar() == '=' {
			return l.twoCharToken(TokenPlusAssign, start)
		}

		return l.oneCharToken(TokenPlus, start)
	case '-':
		switch l.peekChar() {
		case '=':
			return l.twoCharToken(TokenMinusAssign, start)
		case '>':
			return l.twoCharToken(TokenArrow, start)
		}

		return l.oneCharToken(TokenMinus, start)
	case '*':
		if l.peekChar() == '=' {
			return l.twoCharToken(TokenMulAssign, start)
		}

		return l.oneCharToken(TokenStar, start)
	case '%':
		return l.oneCharToken(TokenPercent, start)
	case '&':
		switch l.peekChar() {
		case '&':
			return l.twoCharToken(TokenAndAnd, start)
		case '=':
			return l.twoCharToken(TokenAndAssign, start)
		}

		return l.oneCharToken(TokenAmpersand, start)
	case '|':
		switch l.peekChar() {
		case '|':
			return l.twoCharToken(TokenOrOr, start)
		case '=':
			return l.twoCharToken(TokenOrAssign, start)
		}

		return l.oneCharToken(TokenPipe, start)
	case '=':
		return l.oneCharToken(TokenAssign, start)
	case ',':
		return l.oneCharToken(TokenComma, start)
	case '(':
		return l.oneCharToken(TokenLParen, start)
	case ')':
		return l.oneCharToken(TokenRParen, start)
	case '{':
		return l.oneCharToken(TokenLBrace, start)
	case '}':
		return l.oneCharToken(TokenRBrace, start)
	case '[':
		return l.oneCharToken(TokenLBracket, start)
	case ']':
		return l.oneCharToken(TokenRBracket, start)
	case ':':
		return l.oneCharToken(TokenColon, start)
	case ';':
		return l.oneCharToken(TokenSemicolon, start)
	case '\'':
		return l.oneCharToken(TokenApostrophe, start)
	case '<':
		return l.oneCharToken(TokenLAngle, start)
	case '>':
		// Always a single token so `Vec<Vec<T>>` closes twice.
		return l.oneCharToken(TokenRAngle, start)
	case '#':
		return l.oneCharToken(TokenHash, start)
	case '.':
		return l.oneCharToken(TokenDot, start)
	case '?':
		return l.oneCharToken(TokenQuestion, start)
	case '"':
		text, ok := l.readString()
		if !ok {
			return l.newTokenFromPosition(TokenInvalid, text, start)
		}

		return l.newTokenFromPosition(TokenString, text, start)
	}

	switch {
	case isLetter(l.ch) || l.ch == '_':
		ident := l.readIdentifier()

		return l.newTokenFromPosition(lookupIdent(ident), ident, start)
	case isDigit(l.ch):
		num := l.readNumber()

		return l.newTokenFromPosition(TokenNumber, num, start)
	}

	return l.oneCharToken(TokenInvalid, start)
}

func (l *Lexer) oneCharToken(tokenType TokenType, start Position) Token {
	lit := string(l.ch)
	l.readChar()

	return l.newTokenFromPosition(tokenType, lit, start)
}

func (l *Lexer) twoCharToken(tokenType TokenType, start Position) Token {
	lit := string(l.ch) + string(l.peekChar())
	l.readChar()
	l.readChar()

	return l.newTokenFromPosition(tokenType, lit, start)
}

// newTokenFromPosition creates a token spanning from start to the current position
func (l *Lexer) newTokenFromPosition(tokenType TokenType, literal string, start Position) Token {
	return Token{
		Type:    tokenType,
		Literal: literal,
		Span: Span{
			Start: start,
			End:   l.getCurrentPosition(),
		},
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	return l.input[position:l.position]
}

func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()

		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}

	return l.input[position:l.position]
}

// readString consumes a double-quoted literal and returns its body.
// ok is false when the input ends before the closing quote.
func (l *Lexer) readString() (string, bool) {
	l.readChar()
	position := l.position

	for l.ch != '"' {
		if l.atEnd() {
			return l.input[position:], false
		}

		if l.ch == '\\' {
			l.readChar()
		}

		l.readChar()
	}

	text := l.input[position:l.position]
	l.readChar()

	return text, true
}

func (l *Lexer) readComment() string {
	position := l.position
	if l.peekChar() == '/' {
		for l.ch != '\n' && !l.atEnd() {
			l.readChar()
		}

		return l.input[position:l.position]
	}

	l.readChar()
	l.readChar()

	for !l.atEnd() {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()

			break
		}

		l.readChar()
	}

	end := l.position
	if end > len(l.input) {
		end = len(l.input)
	}

	return l.input[position:end]
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// lookupIdent checks if identifier is keyword
func lookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}

	return TokenIdentifier
}
