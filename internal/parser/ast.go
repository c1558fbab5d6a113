// Package parser implements the Sable parser and AST definitions
package parser

import (
	"fmt"
	"strings"

	"github.com/sable-lang/sable/internal/lexer"
)

// Node represents the base interface for all AST nodes
type Node interface {
	// GetSpan returns the source span for this node
	GetSpan() lexer.Span
	// String returns a string representation of the node
	String() string
}

// Item is a top-level or block-nested declaration
type Item interface {
	Node
	itemNode()
	ItemName() string
}

// Visibility of an item or field
type Visibility int

const (
	Private Visibility = iota
	Public
	PubCrate
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "pub "
	case PubCrate:
		return "pub(crate) "
	default:
		return ""
	}
}

// Mutability of a binding or reference
type Mutability int

const (
	Immut Mutability = iota
	Mut
)

func (m Mutability) String() string {
	if m == Mut {
		return "mut "
	}

	return ""
}

// Constness of a function
type Constness int

const (
	Undefined Constness = iota
	Const
)

// ====== Crate ======

// Crate is the root of the AST for one compilation unit
type Crate struct {
	Span  lexer.Span
	Items []Item
}

func (c *Crate) GetSpan() lexer.Span { return c.Span }
func (c *Crate) String() string {
	parts := make([]string, len(c.Items))
	for i, item := range c.Items {
		parts[i] = item.String()
	}

	return strings.Join(parts, "\n")
}

// ====== Items ======

// StaticVal is `static [mut] NAME: TYPE = EXPR;`
type StaticVal struct {
	Span       lexer.Span
	Visibility Visibility
	Mutability Mutability
	Name       string
	Ty         Ty
	Value      Expr
}

func (s *StaticVal) GetSpan() lexer.Span { return s.Span }
func (s *StaticVal) ItemName() string    { return s.Name }
func (s *StaticVal) itemNode()           {}
func (s *StaticVal) String() string {
	return fmt.Sprintf("%sstatic %s%s: %s = %s;", s.Visibility, s.Mutability, s.Name, s.Ty, s.Value)
}

// ConstVal is `const NAME: TYPE = EXPR;`
type ConstVal struct {
	Span       lexer.Span
	Visibility Visibility
	Name       string
	Ty         Ty
	Value      Expr
}

func (c *ConstVal) GetSpan() lexer.Span { return c.Span }
func (c *ConstVal) ItemName() string    { return c.Name }
func (c *ConstVal) itemNode()           {}
func (c *ConstVal) String() string {
	return fmt.Sprintf("%sconst %s: %s = %s;", c.Visibility, c.Name, c.Ty, c.Value)
}

// FunctionModifiers hold the qualifiers written before `fn`
type FunctionModifiers struct {
	Constness  Constness
	Visibility Visibility
}

// Param is a single `name: Type` function parameter
type Param struct {
	Span lexer.Span
	Name string
	Ty   Ty
}

func (p *Param) String() string { return p.Name + ": " + p.Ty.String() }

// FunctionHeader is the signature part of a function
type FunctionHeader struct {
	Span     lexer.Span
	Name     string
	Generics []Generic
	Params   []*Param
	Ret      Ty // nil when no return type is written
}

func (h *FunctionHeader) String() string {
	var out strings.Builder

	out.WriteString("fn ")
	out.WriteString(h.Name)
	out.WriteString(genericsString(h.Generics))
	out.WriteString("(")

	for i, p := range h.Params {
		if i > 0 {
			out.WriteString(", ")
		}

		out.WriteString(p.String())
	}

	out.WriteString(")")

	if h.Ret != nil {
		out.WriteString(" -> ")
		out.WriteString(h.Ret.String())
	}

	return out.String()
}

// HasReceiver reports whether the first parameter is `self`
func (h *FunctionHeader) HasReceiver() bool {
	return len(h.Params) > 0 && h.Params[0].Name == "self"
}

// FunctionDef is a function with a body
type FunctionDef struct {
	Span      lexer.Span
	Modifiers FunctionModifiers
	Header    *FunctionHeader
	Body      *Block
}

func (f *FunctionDef) GetSpan() lexer.Span { return f.Span }
func (f *FunctionDef) ItemName() string    { return f.Header.Name }
func (f *FunctionDef) itemNode()           {}
func (f *FunctionDef) String() string {
	prefix := f.Modifiers.Visibility.String()
	if f.Modifiers.Constness == Const {
		prefix += "const "
	}

	return prefix + f.Header.String() + " " + f.Body.String()
}

// StructField is one field declaration of a struct
type StructField struct {
	Span       lexer.Span
	Visibility Visibility
	Name       string
	Ty         Ty
}

func (f *StructField) String() string {
	return fmt.Sprintf("%s%s: %s", f.Visibility, f.Name, f.Ty)
}

// StructDef is `struct NAME<GENERICS> { fields }`
type StructDef struct {
	Span       lexer.Span
	Visibility Visibility
	Name       string
	Generics   []Generic
	Fields     []*StructField
}

func (s *StructDef) GetSpan() lexer.Span { return s.Span }
func (s *StructDef) ItemName() string    { return s.Name }
func (s *StructDef) itemNode()           {}
func (s *StructDef) String() string {
	fields := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = f.String()
	}

	return fmt.Sprintf("%sstruct %s%s { %s }", s.Visibility, s.Name, genericsString(s.Generics), strings.Join(fields, ", "))
}

// TraitDef is `trait NAME<GENERICS>: BOUNDS { fn headers; }`
type TraitDef struct {
	Span        lexer.Span
	Visibility  Visibility
	Name        string
	Generics    []Generic
	SuperTraits []Ty
	Methods     []*FunctionHeader
}

func (t *TraitDef) GetSpan() lexer.Span { return t.Span }
func (t *TraitDef) ItemName() string    { return t.Name }
func (t *TraitDef) itemNode()           {}
func (t *TraitDef) String() string {
	var out strings.Builder

	out.WriteString(t.Visibility.String())
	out.WriteString("trait ")
	out.WriteString(t.Name)
	out.WriteString(genericsString(t.Generics))

	if len(t.SuperTraits) > 0 {
		out.WriteString(": ")
		out.WriteString(joinTys(t.SuperTraits, " + "))
	}

	out.WriteString(" {")

	for _, m := range t.Methods {
		out.WriteString(" ")
		out.WriteString(m.String())
		out.WriteString(";")
	}

	out.WriteString(" }")

	return out.String()
}

// ImplDef is `impl<GENERICS> TYPE [for TYPE] { methods }`.
// For `impl Tr for T`, Trait is Tr and Ty is T.
type ImplDef struct {
	Span     lexer.Span
	Generics []Generic
	Ty       Ty
	Trait    Ty // nil for inherent impls
	Methods  []*FunctionDef
}

func (i *ImplDef) GetSpan() lexer.Span { return i.Span }
func (i *ImplDef) itemNode()           {}

// ItemName returns the name of the implementing type
func (i *ImplDef) ItemName() string {
	if o, ok := i.Ty.(*OwnedTy); ok {
		return o.Name
	}

	return i.Ty.String()
}

func (i *ImplDef) String() string {
	var out strings.Builder

	out.WriteString("impl")
	out.WriteString(genericsString(i.Generics))
	out.WriteString(" ")

	if i.Trait != nil {
		out.WriteString(i.Trait.String())
		out.WriteString(" for ")
	}

	out.WriteString(i.Ty.String())
	out.WriteString(" {")

	for _, m := range i.Methods {
		out.WriteString(" ")
		out.WriteString(m.String())
	}

	out.WriteString(" }")

	return out.String()
}

// GenericParam returns the type generic named name, if declared
func (i *ImplDef) GenericParam(name string) (*TypeGeneric, bool) {
	return FindTypeGeneric(i.Generics, name)
}

// FindTypeGeneric looks up a type parameter by name in a generics list
func FindTypeGeneric(generics []Generic, name string) (*TypeGeneric, bool) {
	for _, g := range generics {
		if tg, ok := g.(*TypeGeneric); ok && tg.Name == name {
			return tg, true
		}
	}

	return nil, false
}
