package parser

import (
	"strings"

	"github.com/sable-lang/sable/internal/lexer"
)

// Expr represents all expression nodes
type Expr interface {
	Node
	exprNode()
}

// Stmt represents all statement nodes
type Stmt interface {
	Node
	stmtNode()
}

// BinOp is a binary operator
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpAssign
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpAndAssign
	OpOrAssign
)

var binOpSymbols = [...]string{
	OpAdd:       "+",
	OpSub:       "-",
	OpMul:       "*",
	OpDiv:       "/",
	OpMod:       "%",
	OpAnd:       "&&",
	OpOr:        "||",
	OpAssign:    "=",
	OpAddAssign: "+=",
	OpSubAssign: "-=",
	OpMulAssign: "*=",
	OpDivAssign: "/=",
	OpAndAssign: "&=",
	OpOrAssign:  "|=",
}

func (op BinOp) String() string {
	if int(op) < len(binOpSymbols) {
		return binOpSymbols[op]
	}

	return "?"
}

// Precedence returns the binding power of the operator. Higher binds tighter.
func (op BinOp) Precedence() int {
	switch op {
	case OpMul, OpDiv, OpMod:
		return 10
	case OpAdd, OpSub:
		return 5
	case OpAnd, OpOr:
		return 2
	default:
		return 1
	}
}

// IsAssignment reports whether the operator writes to its left operand
func (op BinOp) IsAssignment() bool {
	return op >= OpAssign
}

var tokenBinOps = map[lexer.TokenType]BinOp{
	lexer.TokenPlus:        OpAdd,
	lexer.TokenMinus:       OpSub,
	lexer.TokenStar:        OpMul,
	lexer.TokenSlash:       OpDiv,
	lexer.TokenPercent:     OpMod,
	lexer.TokenAndAnd:      OpAnd,
	lexer.TokenOrOr:        OpOr,
	lexer.TokenAssign:      OpAssign,
	lexer.TokenPlusAssign:  OpAddAssign,
	lexer.TokenMinusAssign: OpSubAssign,
	lexer.TokenMulAssign:   OpMulAssign,
	lexer.TokenDivAssign:   OpDivAssign,
	lexer.TokenAndAssign:   OpAndAssign,
	lexer.TokenOrAssign:    OpOrAssign,
}

// BinOpFromToken maps a token to its binary operator
func BinOpFromToken(tt lexer.TokenType) (BinOp, bool) {
	op, ok := tokenBinOps[tt]

	return op, ok
}

// ====== Expressions ======

// NumberLit is a numeric literal kept in its source spelling
type NumberLit struct {
	Span    lexer.Span
	Raw     string
	IsFloat bool
}

func (n *NumberLit) GetSpan() lexer.Span { return n.Span }
func (n *NumberLit) String() string      { return n.Raw }
func (n *NumberLit) exprNode()           {}

// Ident is a bare name reference
type Ident struct {
	Span lexer.Span
	Name string
}

func (i *Ident) GetSpan() lexer.Span { return i.Span }
func (i *Ident) String() string      { return i.Name }
func (i *Ident) exprNode()           {}

// BinaryExpr is `lhs op rhs`
type BinaryExpr struct {
	Span lexer.Span
	Lhs  Expr
	Rhs  Expr
	Op   BinOp
}

func (b *BinaryExpr) GetSpan() lexer.Span { return b.Span }
func (b *BinaryExpr) String() string {
	return "(" + b.Lhs.String() + " " + b.Op.String() + " " + b.Rhs.String() + ")"
}
func (b *BinaryExpr) exprNode() {}

// CallExpr is `callee(args...)`
type CallExpr struct {
	Span   lexer.Span
	Callee Expr
	Args   []Expr
}

func (c *CallExpr) GetSpan() lexer.Span { return c.Span }
func (c *CallExpr) String() string {
	return c.Callee.String() + "(" + joinExprs(c.Args, ", ") + ")"
}
func (c *CallExpr) exprNode() {}

// BlockExpr is a block used in expression position
type BlockExpr struct {
	Block *Block
}

func (b *BlockExpr) GetSpan() lexer.Span { return b.Block.Span }
func (b *BlockExpr) String() string      { return b.Block.String() }
func (b *BlockExpr) exprNode()           {}

// FieldInit is `name: value` inside a struct literal
type FieldInit struct {
	Span  lexer.Span
	Name  string
	Value Expr
}

// StructLit is `Name { field: value, ... }`
type StructLit struct {
	Span   lexer.Span
	Name   string
	Fields []*FieldInit
}

func (s *StructLit) GetSpan() lexer.Span { return s.Span }
func (s *StructLit) String() string {
	if len(s.Fields) == 0 {
		return s.Name + " {}"
	}

	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.Name + ": " + f.Value.String()
	}

	return s.Name + " { " + strings.Join(parts, ", ") + " }"
}
func (s *StructLit) exprNode() {}

// ArrayList is `[a, b, c]`
type ArrayList struct {
	Span   lexer.Span
	Values []Expr
}

func (a *ArrayList) GetSpan() lexer.Span { return a.Span }
func (a *ArrayList) String() string      { return "[" + joinExprs(a.Values, ", ") + "]" }
func (a *ArrayList) exprNode()           {}

// ArrayRepeat is `[value; count]`
type ArrayRepeat struct {
	Span  lexer.Span
	Value Expr
	Count Expr
}

func (a *ArrayRepeat) GetSpan() lexer.Span { return a.Span }
func (a *ArrayRepeat) String() string {
	return "[" + a.Value.String() + "; " + a.Count.String() + "]"
}
func (a *ArrayRepeat) exprNode() {}

func joinExprs(exprs []Expr, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}

	return strings.Join(parts, sep)
}

// ====== Blocks and statements ======

// Block is `{ stmts }`. A trailing ExprStmt is the block's value.
type Block struct {
	Span  lexer.Span
	Stmts []Stmt
}

func (b *Block) GetSpan() lexer.Span { return b.Span }
func (b *Block) String() string {
	if len(b.Stmts) == 0 {
		return "{ }"
	}

	parts := make([]string, len(b.Stmts))
	for i, s := range b.Stmts {
		parts[i] = s.String()
	}

	return "{ " + strings.Join(parts, " ") + " }"
}

// Value returns the trailing value expression, or nil
func (b *Block) Value() Expr {
	if len(b.Stmts) == 0 {
		return nil
	}

	if es, ok := b.Stmts[len(b.Stmts)-1].(*ExprStmt); ok {
		return es.Expr
	}

	return nil
}

// ItemStmt is an item declared inside a block
type ItemStmt struct {
	Item Item
}

func (s *ItemStmt) GetSpan() lexer.Span { return s.Item.GetSpan() }
func (s *ItemStmt) String() string      { return s.Item.String() }
func (s *ItemStmt) stmtNode()           {}

// LocalStmt is `let [mut] name [: Ty] = value;`
type LocalStmt struct {
	Span       lexer.Span
	Mutability Mutability
	Name       string
	Ty         Ty // nil when not annotated
	Value      Expr
}

func (s *LocalStmt) GetSpan() lexer.Span { return s.Span }
func (s *LocalStmt) String() string {
	out := "let " + s.Mutability.String() + s.Name
	if s.Ty != nil {
		out += ": " + s.Ty.String()
	}

	return out + " = " + s.Value.String() + ";"
}
func (s *LocalStmt) stmtNode() {}

// ExprStmt is the unterminated final expression of a block
type ExprStmt struct {
	Expr Expr
}

func (s *ExprStmt) GetSpan() lexer.Span { return s.Expr.GetSpan() }
func (s *ExprStmt) String() string      { return s.Expr.String() }
func (s *ExprStmt) stmtNode()           {}

// SemiStmt is an expression whose value is discarded
type SemiStmt struct {
	Span lexer.Span
	Expr Expr
}

func (s *SemiStmt) GetSpan() lexer.Span { return s.Span }
func (s *SemiStmt) String() string      { return s.Expr.String() + ";" }
func (s *SemiStmt) stmtNode()           {}

// EmptyStmt is a lone `;`
type EmptyStmt struct {
	Span lexer.Span
}

func (s *EmptyStmt) GetSpan() lexer.Span { return s.Span }
func (s *EmptyStmt) String() string      { return ";" }
func (s *EmptyStmt) stmtNode()           {}
