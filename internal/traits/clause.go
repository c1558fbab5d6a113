package traits

import "github.com/sable-lang/sable/internal/parser"

// ClauseFromImpl converts an impl block into a clause.
//
//	impl<T: A + B> Tr for T      => Obligation{A, B}
//	impl<T: A> Tr for Wrap<T>    => Val{Wrap<T>, [T]} with context {T: [A]}
//	impl Tr for Point            => Val{Point}
func ClauseFromImpl(impl *parser.ImplDef) (GoalTarget, GenericContext) {
	ctx := make(GenericContext)

	for _, g := range impl.Generics {
		if tg, ok := g.(*parser.TypeGeneric); ok {
			ctx[tg.Name] = tg.RequiredTraits
		}
	}

	if param, ok := blanketParam(impl); ok {
		return &Obligation{RequiredTraits: param.RequiredTraits}, ctx
	}

	goals := make([]string, 0)

	for _, arg := range genericArgs(impl.Ty) {
		goals = append(goals, paramName(impl, arg))
	}

	return &Val{Ty: impl.Ty, GenericGoals: goals}, ctx
}

// IsBlanket reports whether the impl targets one of its own type parameters
func IsBlanket(impl *parser.ImplDef) bool {
	_, ok := blanketParam(impl)

	return ok
}

func blanketParam(impl *parser.ImplDef) (*parser.TypeGeneric, bool) {
	owned, ok := impl.Ty.(*parser.OwnedTy)
	if !ok || len(owned.Generics) > 0 {
		return nil, false
	}

	return impl.GenericParam(owned.Name)
}

func paramName(impl *parser.ImplDef, arg parser.GenericArg) string {
	tyArg, ok := arg.(*parser.TyArg)
	if !ok {
		return ""
	}

	owned, ok := tyArg.Ty.(*parser.OwnedTy)
	if !ok || len(owned.Generics) > 0 {
		return ""
	}

	if _, ok := impl.GenericParam(owned.Name); ok {
		return owned.Name
	}

	return ""
}
