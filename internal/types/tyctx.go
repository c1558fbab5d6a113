package types

import (
	"fmt"

	"github.com/sable-lang/sable/internal/parser"
	"github.com/sable-lang/sable/internal/traits"
)

// TyCtx is the type checking context of one crate
type TyCtx struct {
	Env    *Environment
	Traits *traits.TraitManager

	path     string
	generics []traits.GenericContext // type parameters in scope, innermost last
	consts   []map[string]bool       // const parameters in scope, innermost last
	selfTys  []SemTy                 // what `Self` denotes, innermost last
}

// NewTyCtx creates an empty context for the default path
func NewTyCtx() *TyCtx {
	return &TyCtx{
		Env:    NewEnvironment(),
		Traits: traits.NewTraitManager(),
		path:   DefaultPath,
	}
}

// Path returns the path items are registered under
func (ctx *TyCtx) Path() string {
	return ctx.path
}

// ResolveNamedTy returns the derived type of a registered struct
func (ctx *TyCtx) ResolveNamedTy(path, name string) (SemTy, bool) {
	return ctx.Env.ResolveNamedTy(path, name)
}

// DefineAdt registers a struct declaration under the context's path
func (ctx *TyCtx) DefineAdt(def *parser.StructDef) error {
	if !ctx.Env.DefineAdt(ctx.path, def) {
		return newError(Redefinition, def.Span, def.Name)
	}

	return nil
}

func (ctx *TyCtx) pushGenerics(generics []parser.Generic) {
	scope := make(traits.GenericContext)
	consts := make(map[string]bool)

	for _, g := range generics {
		switch g := g.(type) {
		case *parser.TypeGeneric:
			scope[g.Name] = g.RequiredTraits
		case *parser.ConstGeneric:
			consts[g.Name] = true
		}
	}

	ctx.generics = append(ctx.generics, scope)
	ctx.consts = append(ctx.consts, consts)
}

func (ctx *TyCtx) popGenerics() {
	ctx.generics = ctx.generics[:len(ctx.generics)-1]
	ctx.consts = ctx.consts[:len(ctx.consts)-1]
}

// isConstValue reports whether name denotes a const parameter in scope or a variable
func (ctx *TyCtx) isConstValue(name string) bool {
	for i := len(ctx.consts) - 1; i >= 0; i-- {
		if ctx.consts[i][name] {
			return true
		}
	}

	_, ok := ctx.Env.ResolveVar(name)

	return ok
}

func (ctx *TyCtx) isGeneric(name string) bool {
	for i := len(ctx.generics) - 1; i >= 0; i-- {
		if _, ok := ctx.generics[i][name]; ok {
			return true
		}
	}

	return false
}

// assumed merges the generic scopes, inner declarations winning
func (ctx *TyCtx) assumed() traits.GenericContext {
	merged := make(traits.GenericContext)

	for _, scope := range ctx.generics {
		for name, bounds := range scope {
			merged[name] = bounds
		}
	}

	return merged
}

func (ctx *TyCtx) satisfies(ty, trait parser.Ty) bool {
	return ctx.Traits.HasImplAssuming(ty, trait, ctx.assumed())
}

// fromAstTy is FromAstTy with `Self` replaced by the enclosing impl target
func (ctx *TyCtx) fromAstTy(ty parser.Ty) SemTy {
	switch t := ty.(type) {
	case *parser.OwnedTy:
		if t.Name == "Self" && len(t.Generics) == 0 && len(ctx.selfTys) > 0 {
			return ctx.selfTys[len(ctx.selfTys)-1]
		}
	case *parser.RefTy:
		return &RefTy{Lifetime: t.Lifetime, Mutability: t.Mutability, Inner: ctx.fromAstTy(t.Inner)}
	case *parser.ArrayTy:
		return &ArrayTy{Elem: ctx.fromAstTy(t.Elem)}
	}

	return FromAstTy(ty)
}

// ResolveTy computes the type of an expression in the current scope
func (ctx *TyCtx) ResolveTy(expr parser.Expr) (SemTy, error) {
	switch e := expr.(type) {
	case *parser.NumberLit:
		if e.IsFloat {
			return Primitive{Kind: Float, Bits: 64}, nil
		}

		return Primitive{Kind: UnsizedInt}, nil
	case *parser.Ident:
		ty, ok := ctx.Env.ResolveVar(e.Name)
		if !ok {
			return nil, newError(UnresolvedName, e.Span, e.Name)
		}

		return ty, nil
	case *parser.BinaryExpr:
		return ctx.resolveBinary(e)
	case *parser.CallExpr:
		return ctx.resolveCall(e)
	case *parser.BlockExpr:
		return ctx.checkBlock(e.Block)
	case *parser.StructLit:
		ty, ok := ctx.Env.ResolveNamedTy(ctx.path, e.Name)
		if !ok {
			return nil, newError(UnresolvedType, e.Span, e.Name)
		}

		return ty, nil
	case *parser.ArrayList:
		return ctx.resolveArrayList(e)
	case *parser.ArrayRepeat:
		elem, err := ctx.ResolveTy(e.Value)
		if err != nil {
			return nil, err
		}

		return &ArrayTy{Elem: elem}, nil
	default:
		return nil, &ResolutionError{Kind: UnresolvedName, Detail: fmt.Sprintf("unsupported expression %T", expr)}
	}
}

func (ctx *TyCtx) resolveBinary(e *parser.BinaryExpr) (SemTy, error) {
	lhs, err := ctx.ResolveTy(e.Lhs)
	if err != nil {
		return nil, err
	}

	rhs, err := ctx.ResolveTy(e.Rhs)
	if err != nil {
		return nil, err
	}

	if !CouldBe(lhs, rhs) {
		return nil, mismatch(e.Rhs.GetSpan(), lhs, rhs)
	}

	return lhs, nil
}

func (ctx *TyCtx) resolveCall(e *parser.CallExpr) (SemTy, error) {
	callee, ok := e.Callee.(*parser.Ident)
	if !ok {
		return nil, newError(InvalidCallee, e.Callee.GetSpan(), e.Callee.String())
	}

	fn, ok := ctx.Env.ResolveFunc(ctx.path, callee.Name)
	if !ok {
		return nil, newError(UnresolvedFunc, callee.Span, callee.Name)
	}

	params := fn.Header.Params
	if len(params) != len(e.Args) {
		err := newError(Arity, e.Span, callee.Name)
		err.Detail = fmt.Sprintf("expected %d arguments, found %d", len(params), len(e.Args))

		return nil, err
	}

	bound := make(map[string]SemTy)

	for i, arg := range e.Args {
		argTy, err := ctx.ResolveTy(arg)
		if err != nil {
			return nil, err
		}

		if mentionsGeneric(params[i].Ty, fn.Header.Generics) {
			if name := bareGeneric(params[i].Ty, fn.Header.Generics); name != "" {
				if _, ok := bound[name]; !ok {
					bound[name] = argTy
				}
			}

			continue
		}

		paramTy := FromAstTy(params[i].Ty)
		if !CouldBe(paramTy, argTy) {
			return nil, mismatch(arg.GetSpan(), paramTy, argTy)
		}
	}

	if fn.Header.Ret == nil {
		return Empty, nil
	}

	if name := bareGeneric(fn.Header.Ret, fn.Header.Generics); name != "" {
		if ty, ok := bound[name]; ok {
			return ty, nil
		}
	}

	return FromAstTy(fn.Header.Ret), nil
}

// bareGeneric returns the parameter name when ty is exactly a type parameter
func bareGeneric(ty parser.Ty, generics []parser.Generic) string {
	o, ok := ty.(*parser.OwnedTy)
	if !ok || len(o.Generics) > 0 {
		return ""
	}

	if _, ok := parser.FindTypeGeneric(generics, o.Name); ok {
		return o.Name
	}

	return ""
}

func (ctx *TyCtx) resolveArrayList(e *parser.ArrayList) (SemTy, error) {
	if len(e.Values) == 0 {
		return &ArrayTy{Elem: Empty}, nil
	}

	var first error

	for _, v := range e.Values {
		elem, err := ctx.ResolveTy(v)
		if err == nil {
			return &ArrayTy{Elem: elem}, nil
		}

		if first == nil {
			first = err
		}
	}

	return nil, first
}

// mentionsGeneric reports whether ty names one of the type parameters
func mentionsGeneric(ty parser.Ty, generics []parser.Generic) bool {
	switch t := ty.(type) {
	case *parser.RefTy:
		return mentionsGeneric(t.Inner, generics)
	case *parser.ArrayTy:
		return mentionsGeneric(t.Elem, generics)
	case *parser.OwnedTy:
		if _, ok := parser.FindTypeGeneric(generics, t.Name); ok {
			return true
		}

		for _, arg := range t.Generics {
			if tyArg, ok := arg.(*parser.TyArg); ok && mentionsGeneric(tyArg.Ty, generics) {
				return true
			}
		}
	}

	return false
}

// checkBlock checks a block in a fresh scope and returns its value type
func (ctx *TyCtx) checkBlock(block *parser.Block) (SemTy, error) {
	ctx.Env.PushScope()
	defer ctx.Env.PopScope()

	for _, stmt := range block.Stmts {
		if is, ok := stmt.(*parser.ItemStmt); ok {
			if err := ctx.InsertItemLocal(is.Item); err != nil {
				return nil, err
			}
		}
	}

	ctx.linkAdts(ctx.Env.LocalAdts())

	value := Empty

	for i, stmt := range block.Stmts {
		ty, err := ctx.checkStmt(stmt)
		if err != nil {
			return nil, err
		}

		if _, ok := stmt.(*parser.ExprStmt); ok && i == len(block.Stmts)-1 {
			value = ty
		}
	}

	return value, nil
}

func (ctx *TyCtx) checkStmt(stmt parser.Stmt) (SemTy, error) {
	switch s := stmt.(type) {
	case *parser.ItemStmt:
		_, err := ctx.TyckItem(s.Item)

		return Empty, err
	case *parser.LocalStmt:
		return Empty, ctx.checkLocal(s)
	case *parser.ExprStmt:
		return ctx.ResolveTy(s.Expr)
	case *parser.SemiStmt:
		if _, err := ctx.ResolveTy(s.Expr); err != nil {
			return nil, err
		}

		return Empty, nil
	default:
		return Empty, nil
	}
}

func (ctx *TyCtx) checkLocal(s *parser.LocalStmt) error {
	valueTy, err := ctx.ResolveTy(s.Value)
	if err != nil {
		return err
	}

	bound := valueTy

	if s.Ty != nil {
		if err := ctx.checkTyNames(s.Ty); err != nil {
			return err
		}

		declared := ctx.fromAstTy(s.Ty)
		if !CouldBe(declared, valueTy) {
			return mismatch(s.Value.GetSpan(), declared, valueTy)
		}

		bound = declared
	}

	if !ctx.Env.DefineVar(s.Name, bound) {
		return newError(Redefinition, s.Span, s.Name)
	}

	return nil
}

// checkTyNames verifies that every name in ty denotes a primitive, Self,
// a type parameter in scope or a registered struct whose bounds hold.
func (ctx *TyCtx) checkTyNames(ty parser.Ty) error {
	switch t := ty.(type) {
	case *parser.RefTy:
		return ctx.checkTyNames(t.Inner)
	case *parser.ArrayTy:
		return ctx.checkTyNames(t.Elem)
	case *parser.OwnedTy:
		return ctx.checkOwnedNames(t)
	default:
		return nil
	}
}

func (ctx *TyCtx) checkOwnedNames(t *parser.OwnedTy) error {
	if len(t.Generics) == 0 {
		if _, ok := LookupPrimitive(t.Name); ok {
			return nil
		}

		if t.Name == "Self" && len(ctx.selfTys) > 0 {
			return nil
		}

		if ctx.isGeneric(t.Name) {
			return nil
		}
	}

	entry, ok := ctx.Env.ResolveAdt(ctx.path, t.Name)
	if !ok {
		return newError(UnresolvedType, t.Span, t.Name)
	}

	declared, lifetimes := splitLifetimes(entry.Decl.Generics)
	args, lifetimeArgs := splitLifetimeArgs(t.Generics)

	// lifetimes may be elided entirely
	if len(lifetimeArgs) != 0 && len(lifetimeArgs) != lifetimes {
		err := newError(Arity, t.Span, t.Name)
		err.Detail = fmt.Sprintf("expected %d lifetime arguments, found %d", lifetimes, len(lifetimeArgs))

		return err
	}

	if len(args) != len(declared) {
		err := newError(Arity, t.Span, t.Name)
		err.Detail = fmt.Sprintf("expected %d generic arguments, found %d", len(declared), len(args))

		return err
	}

	for i, arg := range args {
		tyArg, ok := arg.(*parser.TyArg)
		if !ok {
			continue
		}

		if _, ok := declared[i].(*parser.ConstGeneric); ok {
			if err := ctx.checkConstArg(tyArg); err != nil {
				return err
			}

			continue
		}

		if err := ctx.checkTyNames(tyArg.Ty); err != nil {
			return err
		}

		param, ok := declared[i].(*parser.TypeGeneric)
		if !ok {
			continue
		}

		for _, bound := range param.RequiredTraits {
			if !ctx.satisfies(tyArg.Ty, bound) {
				return &ResolutionError{
					Kind:   UnsatisfiedBound,
					Path:   ctx.path,
					Name:   tyArg.Ty.String(),
					Detail: fmt.Sprintf("`%s` does not implement `%s`", tyArg.Ty, bound),
					Span:   tyArg.GetSpan(),
				}
			}
		}
	}

	return nil
}

// checkConstArg accepts a bare name passed for a const parameter. Such
// names parse as types, so they are looked up as values instead.
func (ctx *TyCtx) checkConstArg(arg *parser.TyArg) error {
	owned, ok := arg.Ty.(*parser.OwnedTy)
	if ok && len(owned.Generics) == 0 {
		if ctx.isConstValue(owned.Name) {
			return nil
		}

		if !ctx.namesType(owned.Name) {
			return newError(UnresolvedName, owned.Span, owned.Name)
		}
	}

	err := newError(Mismatch, arg.GetSpan(), arg.Ty.String())
	err.Detail = "expected a constant, found a type"

	return err
}

// namesType reports whether a bare name denotes a type in scope
func (ctx *TyCtx) namesType(name string) bool {
	if _, ok := LookupPrimitive(name); ok {
		return true
	}

	if ctx.isGeneric(name) || (name == "Self" && len(ctx.selfTys) > 0) {
		return true
	}

	_, ok := ctx.Env.ResolveAdt(ctx.path, name)

	return ok
}

// splitLifetimes drops lifetime parameters and counts them
func splitLifetimes(generics []parser.Generic) ([]parser.Generic, int) {
	rest := make([]parser.Generic, 0, len(generics))

	for _, g := range generics {
		if _, ok := g.(*parser.LifetimeGeneric); !ok {
			rest = append(rest, g)
		}
	}

	return rest, len(generics) - len(rest)
}

func splitLifetimeArgs(args []parser.GenericArg) ([]parser.GenericArg, []parser.GenericArg) {
	var rest, lifetimes []parser.GenericArg

	for _, a := range args {
		if _, ok := a.(*parser.LifetimeArg); ok {
			lifetimes = append(lifetimes, a)
		} else {
			rest = append(rest, a)
		}
	}

	return rest, lifetimes
}

// linkAdts resolves the field types of registered structs in place. Struct
// names become the registry's own *StructTy, so structs referring to each
// other share one graph. Type parameters become ParamTy. Unknown names stay
// unresolved and are reported when the struct is checked.
func (ctx *TyCtx) linkAdts(entries []AdtEntry) {
	for _, entry := range entries {
		params := make(map[string]bool)

		for _, g := range entry.Decl.Generics {
			if tg, ok := g.(*parser.TypeGeneric); ok {
				params[tg.Name] = true
			}
		}

		for i := range entry.Ty.Fields {
			entry.Ty.Fields[i].Ty = ctx.linkTy(entry.Ty.Fields[i].Ty, params)
		}
	}
}

func (ctx *TyCtx) linkTy(ty SemTy, params map[string]bool) SemTy {
	switch t := ty.(type) {
	case *UnresolvedTy:
		if len(t.Generics) == 0 && params[t.Name] {
			return &ParamTy{Name: t.Name}
		}

		if entry, ok := ctx.Env.ResolveAdt(ctx.path, t.Name); ok {
			return entry.Ty
		}

		return t
	case *ArrayTy:
		return &ArrayTy{Elem: ctx.linkTy(t.Elem, params)}
	case *RefTy:
		return &RefTy{Lifetime: t.Lifetime, Mutability: t.Mutability, Inner: ctx.linkTy(t.Inner, params)}
	default:
		return ty
	}
}
