package parser

import (
	"strings"

	"github.com/sable-lang/sable/internal/lexer"
)

// Ty is a syntactic type
type Ty interface {
	Node
	tyNode()
}

// LifetimeKind distinguishes named, 'static and '_ lifetimes
type LifetimeKind int

const (
	LifetimeCustom LifetimeKind = iota
	LifetimeStatic
	LifetimeInferred
)

// Lifetime is a `'name` annotation
type Lifetime struct {
	Span lexer.Span
	Kind LifetimeKind
	Name string // set for LifetimeCustom
}

func (l *Lifetime) String() string {
	switch l.Kind {
	case LifetimeStatic:
		return "'static"
	case LifetimeInferred:
		return "'_"
	default:
		return "'" + l.Name
	}
}

// Equal reports whether two lifetimes denote the same annotation
func (l *Lifetime) Equal(other *Lifetime) bool {
	if l == nil || other == nil {
		return l == other
	}

	return l.Kind == other.Kind && l.Name == other.Name
}

// RefTy is `&['a] [mut] T`
type RefTy struct {
	Span       lexer.Span
	Lifetime   *Lifetime
	Mutability Mutability
	Inner      Ty
}

func (r *RefTy) GetSpan() lexer.Span { return r.Span }
func (r *RefTy) tyNode()             {}
func (r *RefTy) String() string {
	var out strings.Builder

	out.WriteString("&")

	if r.Lifetime != nil {
		out.WriteString(r.Lifetime.String())
		out.WriteString(" ")
	}

	out.WriteString(r.Mutability.String())
	out.WriteString(r.Inner.String())

	return out.String()
}

// ArrayTy is `[T]` or `[T; N]`
type ArrayTy struct {
	Span lexer.Span
	Elem Ty
	Len  Expr // nil when no length is written
}

func (a *ArrayTy) GetSpan() lexer.Span { return a.Span }
func (a *ArrayTy) tyNode()             {}
func (a *ArrayTy) String() string {
	if a.Len == nil {
		return "[" + a.Elem.String() + "]"
	}

	return "[" + a.Elem.String() + "; " + a.Len.String() + "]"
}

// OwnedTy is a named type with optional generic arguments, `Name<A, B>`
type OwnedTy struct {
	Span     lexer.Span
	Name     string
	Generics []GenericArg
}

func (o *OwnedTy) GetSpan() lexer.Span { return o.Span }
func (o *OwnedTy) tyNode()             {}
func (o *OwnedTy) String() string {
	if len(o.Generics) == 0 {
		return o.Name
	}

	args := make([]string, len(o.Generics))
	for i, g := range o.Generics {
		args[i] = g.String()
	}

	return o.Name + "<" + strings.Join(args, ", ") + ">"
}

// GenericArg is a type, a lifetime or a constant expression inside `<...>`
type GenericArg interface {
	Node
	genericArgNode()
}

// TyArg is a type generic argument
type TyArg struct {
	Ty Ty
}

func (t *TyArg) GetSpan() lexer.Span { return t.Ty.GetSpan() }
func (t *TyArg) String() string      { return t.Ty.String() }
func (t *TyArg) genericArgNode()     {}

// ConstArg is a constant-expression generic argument
type ConstArg struct {
	Value Expr
}

func (c *ConstArg) GetSpan() lexer.Span { return c.Value.GetSpan() }
func (c *ConstArg) String() string      { return c.Value.String() }
func (c *ConstArg) genericArgNode()     {}

// LifetimeArg is a lifetime generic argument such as `'a`
type LifetimeArg struct {
	Lifetime *Lifetime
}

func (l *LifetimeArg) GetSpan() lexer.Span { return l.Lifetime.Span }
func (l *LifetimeArg) String() string      { return l.Lifetime.String() }
func (l *LifetimeArg) genericArgNode()     {}

// Generic is one entry of a generics definition list
type Generic interface {
	Node
	genericNode()
}

// TypeGeneric is `T: Bound + Bound`
type TypeGeneric struct {
	Span           lexer.Span
	Name           string
	RequiredTraits []Ty
}

func (t *TypeGeneric) GetSpan() lexer.Span { return t.Span }
func (t *TypeGeneric) genericNode()        {}
func (t *TypeGeneric) String() string {
	if len(t.RequiredTraits) == 0 {
		return t.Name
	}

	return t.Name + ": " + joinTys(t.RequiredTraits, " + ")
}

// ConstGeneric is `const N: Ty`
type ConstGeneric struct {
	Span lexer.Span
	Name string
	Ty   Ty
}

func (c *ConstGeneric) GetSpan() lexer.Span { return c.Span }
func (c *ConstGeneric) genericNode()        {}
func (c *ConstGeneric) String() string      { return "const " + c.Name + ": " + c.Ty.String() }

// LifetimeGeneric is a lifetime parameter such as `'a`
type LifetimeGeneric struct {
	Lifetime *Lifetime
}

func (l *LifetimeGeneric) GetSpan() lexer.Span { return l.Lifetime.Span }
func (l *LifetimeGeneric) genericNode()        {}
func (l *LifetimeGeneric) String() string      { return l.Lifetime.String() }

func genericsString(generics []Generic) string {
	if len(generics) == 0 {
		return ""
	}

	parts := make([]string, len(generics))
	for i, g := range generics {
		parts[i] = g.String()
	}

	return "<" + strings.Join(parts, ", ") + ">"
}

func joinTys(tys []Ty, sep string) string {
	parts := make([]string, len(tys))
	for i, t := range tys {
		parts[i] = t.String()
	}

	return strings.Join(parts, sep)
}

// TyName returns the bare name of an owned type, or "" for references and arrays
func TyName(ty Ty) string {
	if o, ok := ty.(*OwnedTy); ok {
		return o.Name
	}

	return ""
}
