// Package types resolves names and types of a parsed crate.
package types

import (
	"fmt"
	"strings"

	"github.com/sable-lang/sable/internal/parser"
)

// SemTy represents a semantic type produced by resolution
type SemTy interface {
	semTy()
	String() string
	Equal(other SemTy) bool
}

// ====== Empty ======

// EmptyTy is the unit type `()`
type EmptyTy struct{}

// Empty is the single EmptyTy value
var Empty SemTy = EmptyTy{}

func (EmptyTy) semTy()         {}
func (EmptyTy) String() string { return "()" }
func (EmptyTy) Equal(other SemTy) bool {
	_, ok := other.(EmptyTy)

	return ok
}

// ====== Primitives ======

// PrimitiveKind classifies primitive types
type PrimitiveKind int

const (
	Bool PrimitiveKind = iota
	Char
	Str
	MachineInt // isize / usize
	SizedInt   // i8..i128 / u8..u128
	UnsizedInt // integer literal of undetermined width
	Float      // f32 / f64
)

// Primitive is a builtin scalar type
type Primitive struct {
	Kind     PrimitiveKind
	Bits     int
	Unsigned bool
}

func (Primitive) semTy() {}

func (p Primitive) String() string {
	switch p.Kind {
	case Bool:
		return "bool"
	case Char:
		return "char"
	case Str:
		return "str"
	case MachineInt:
		if p.Unsigned {
			return "usize"
		}

		return "isize"
	case SizedInt:
		if p.Unsigned {
			return fmt.Sprintf("u%d", p.Bits)
		}

		return fmt.Sprintf("i%d", p.Bits)
	case UnsizedInt:
		return "{integer}"
	case Float:
		return fmt.Sprintf("f%d", p.Bits)
	default:
		return "?"
	}
}

func (p Primitive) Equal(other SemTy) bool {
	o, ok := other.(Primitive)

	return ok && o == p
}

// IsInteger reports whether the primitive is an integer of any width
func (p Primitive) IsInteger() bool {
	return p.Kind == MachineInt || p.Kind == SizedInt || p.Kind == UnsizedInt
}

var primitives = map[string]Primitive{
	"bool":  {Kind: Bool},
	"char":  {Kind: Char},
	"str":   {Kind: Str},
	"isize": {Kind: MachineInt},
	"usize": {Kind: MachineInt, Unsigned: true},
	"i8":    {Kind: SizedInt, Bits: 8},
	"i16":   {Kind: SizedInt, Bits: 16},
	"i32":   {Kind: SizedInt, Bits: 32},
	"i64":   {Kind: SizedInt, Bits: 64},
	"i128":  {Kind: SizedInt, Bits: 128},
	"u8":    {Kind: SizedInt, Bits: 8, Unsigned: true},
	"u16":   {Kind: SizedInt, Bits: 16, Unsigned: true},
	"u32":   {Kind: SizedInt, Bits: 32, Unsigned: true},
	"u64":   {Kind: SizedInt, Bits: 64, Unsigned: true},
	"u128":  {Kind: SizedInt, Bits: 128, Unsigned: true},
	"f32":   {Kind: Float, Bits: 32},
	"f64":   {Kind: Float, Bits: 64},
}

// LookupPrimitive returns the primitive spelled name
func LookupPrimitive(name string) (Primitive, bool) {
	p, ok := primitives[name]

	return p, ok
}

// ====== Algebraic data types ======

// StructField is a resolved struct field
type StructField struct {
	Visibility parser.Visibility
	Name       string
	Ty         SemTy
}

// StructTy is the type derived from a struct declaration
type StructTy struct {
	Visibility parser.Visibility
	Name       string
	Fields     []StructField
}

func (*StructTy) semTy()           {}
func (s *StructTy) String() string { return s.Name }
func (s *StructTy) Equal(other SemTy) bool {
	o, ok := other.(*StructTy)
	if !ok || o.Name != s.Name || len(o.Fields) != len(s.Fields) {
		return false
	}

	if o == s {
		return true
	}

	// field types compare by spelling; linked structs may refer to each other
	for i, f := range s.Fields {
		g := o.Fields[i]
		if f.Name != g.Name || f.Visibility != g.Visibility || f.Ty.String() != g.Ty.String() {
			return false
		}
	}

	return true
}

// Field returns the field named name
func (s *StructTy) Field(name string) (StructField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return StructField{}, false
}

// EnumTy is a tagged union of named variants. No syntax produces it yet.
type EnumTy struct {
	Visibility parser.Visibility
	Name       string
	Variants   []StructField
}

func (*EnumTy) semTy()           {}
func (e *EnumTy) String() string { return e.Name }
func (e *EnumTy) Equal(other SemTy) bool {
	o, ok := other.(*EnumTy)

	return ok && o.Name == e.Name && fieldsEqual(o.Variants, e.Variants)
}

// UnionTy is an untagged union. No syntax produces it yet.
type UnionTy struct {
	Visibility parser.Visibility
	Name       string
	Fields     []StructField
}

func (*UnionTy) semTy()           {}
func (u *UnionTy) String() string { return u.Name }
func (u *UnionTy) Equal(other SemTy) bool {
	o, ok := other.(*UnionTy)

	return ok && o.Name == u.Name && fieldsEqual(o.Fields, u.Fields)
}

// TupleTy is an anonymous product type
type TupleTy struct {
	Fields []StructField
}

func (*TupleTy) semTy() {}
func (t *TupleTy) String() string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}

	return strings.Join(names, "")
}
func (t *TupleTy) Equal(other SemTy) bool {
	o, ok := other.(*TupleTy)

	return ok && fieldsEqual(o.Fields, t.Fields)
}

func fieldsEqual(a, b []StructField) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i].Name != b[i].Name || !a[i].Ty.Equal(b[i].Ty) {
			return false
		}
	}

	return true
}

// ====== Compound types ======

// ArrayTy is an array of Elem. Lengths are not tracked.
type ArrayTy struct {
	Elem SemTy
}

func (*ArrayTy) semTy()           {}
func (a *ArrayTy) String() string { return "[" + a.Elem.String() + "]" }
func (a *ArrayTy) Equal(other SemTy) bool {
	o, ok := other.(*ArrayTy)

	return ok && a.Elem.Equal(o.Elem)
}

// RefTy is a reference to Inner
type RefTy struct {
	Lifetime   *parser.Lifetime
	Mutability parser.Mutability
	Inner      SemTy
}

func (*RefTy) semTy() {}
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
func (r *RefTy) Equal(other SemTy) bool {
	o, ok := other.(*RefTy)

	return ok && r.Mutability == o.Mutability && r.Lifetime.Equal(o.Lifetime) && r.Inner.Equal(o.Inner)
}

// ParamTy is a type parameter of the enclosing declaration
type ParamTy struct {
	Name string
}

func (*ParamTy) semTy()           {}
func (p *ParamTy) String() string { return p.Name }
func (p *ParamTy) Equal(other SemTy) bool {
	o, ok := other.(*ParamTy)

	return ok && o.Name == p.Name
}

// UnresolvedTy is a named type whose declaration has not been looked up
type UnresolvedTy struct {
	Name     string
	Generics []parser.GenericArg
}

func (*UnresolvedTy) semTy() {}
func (u *UnresolvedTy) String() string {
	if len(u.Generics) == 0 {
		return u.Name
	}

	args := make([]string, len(u.Generics))
	for i, g := range u.Generics {
		args[i] = g.String()
	}

	return u.Name + "<" + strings.Join(args, ", ") + ">"
}
func (u *UnresolvedTy) Equal(other SemTy) bool {
	o, ok := other.(*UnresolvedTy)

	return ok && o.String() == u.String()
}

// ContainsUnresolved reports whether ty still mentions an unresolved name
func ContainsUnresolved(ty SemTy) bool {
	return containsUnresolved(ty, make(map[*StructTy]bool))
}

func containsUnresolved(ty SemTy, seen map[*StructTy]bool) bool {
	switch t := ty.(type) {
	case *UnresolvedTy:
		return true
	case *ArrayTy:
		return containsUnresolved(t.Elem, seen)
	case *RefTy:
		return containsUnresolved(t.Inner, seen)
	case *StructTy:
		if seen[t] {
			return false
		}

		seen[t] = true

		return fieldsContainUnresolved(t.Fields, seen)
	case *EnumTy:
		return fieldsContainUnresolved(t.Variants, seen)
	case *UnionTy:
		return fieldsContainUnresolved(t.Fields, seen)
	case *TupleTy:
		return fieldsContainUnresolved(t.Fields, seen)
	default:
		return false
	}
}

func fieldsContainUnresolved(fields []StructField, seen map[*StructTy]bool) bool {
	for _, f := range fields {
		if containsUnresolved(f.Ty, seen) {
			return true
		}
	}

	return false
}
