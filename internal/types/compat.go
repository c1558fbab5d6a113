package types

import "strings"

// CouldBe reports whether a and b may denote the same type. It is
// symmetric and name based: an Unresolved side matches any type whose
// canonical name equals its own.
func CouldBe(a, b SemTy) bool {
	if a.Equal(b) {
		return true
	}

	ua, aUnresolved := a.(*UnresolvedTy)
	ub, bUnresolved := b.(*UnresolvedTy)

	switch {
	case aUnresolved && bUnresolved:
		return false
	case aUnresolved:
		return nameCouldBe(ua, b)
	case bUnresolved:
		return nameCouldBe(ub, a)
	}

	switch x := a.(type) {
	case Primitive:
		y, ok := b.(Primitive)
		if !ok {
			return false
		}

		// integer literals adopt the width of whatever they meet
		return x.IsInteger() && y.IsInteger() && (x.Kind == UnsizedInt || y.Kind == UnsizedInt)
	case *ArrayTy:
		y, ok := b.(*ArrayTy)

		return ok && CouldBe(x.Elem, y.Elem)
	case *RefTy:
		y, ok := b.(*RefTy)

		return ok && x.Mutability == y.Mutability && CouldBe(x.Inner, y.Inner)
	default:
		return false
	}
}

func nameCouldBe(u *UnresolvedTy, other SemTy) bool {
	if ref, ok := other.(*RefTy); ok {
		if !strings.HasPrefix(u.Name, "&") {
			return false
		}

		inner := &UnresolvedTy{Name: strings.TrimPrefix(u.Name, "&"), Generics: u.Generics}

		return CouldBe(inner, ref.Inner)
	}

	return u.Name == CanonicalName(other)
}

// CanonicalName is the name an unresolved reference must carry to match ty
func CanonicalName(ty SemTy) string {
	switch t := ty.(type) {
	case *StructTy:
		return t.Name
	case *EnumTy:
		return t.Name
	case *UnionTy:
		return t.Name
	case *UnresolvedTy:
		return t.Name
	default:
		return ty.String()
	}
}
