package types

import "github.com/sable-lang/sable/internal/parser"

// FromAstTy converts a syntactic type without consulting any registry.
// Named types other than primitives stay Unresolved.
func FromAstTy(ty parser.Ty) SemTy {
	switch t := ty.(type) {
	case *parser.RefTy:
		return &RefTy{Lifetime: t.Lifetime, Mutability: t.Mutability, Inner: FromAstTy(t.Inner)}
	case *parser.ArrayTy:
		return &ArrayTy{Elem: FromAstTy(t.Elem)}
	case *parser.OwnedTy:
		if len(t.Generics) == 0 {
			if p, ok := LookupPrimitive(t.Name); ok {
				return p
			}
		}

		return &UnresolvedTy{Name: t.Name, Generics: t.Generics}
	default:
		return Empty
	}
}

// deriveStruct builds the semantic type of a struct declaration
func deriveStruct(def *parser.StructDef) *StructTy {
	st := &StructTy{
		Visibility: def.Visibility,
		Name:       def.Name,
		Fields:     make([]StructField, len(def.Fields)),
	}

	for i, f := range def.Fields {
		st.Fields[i] = StructField{Visibility: f.Visibility, Name: f.Name, Ty: FromAstTy(f.Ty)}
	}

	return st
}
