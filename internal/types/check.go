package types

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/sable-lang/sable/internal/parser"
	"github.com/sable-lang/sable/internal/traits"
)

// Reporter receives recoverable errors
type Reporter interface {
	Report(err error)
}

// ItemResult is the outcome of checking one crate level item
type ItemResult struct {
	Item parser.Item
	Ty   SemTy // nil when Err is set
	Err  error
}

// InsertItemGlob registers the signature of a crate level item
func (ctx *TyCtx) InsertItemGlob(item parser.Item) error {
	switch it := item.(type) {
	case *parser.StaticVal:
		if !ctx.Env.DefineStaticVar(it.Name, ctx.fromAstTy(it.Ty)) {
			return newError(Redefinition, it.Span, it.Name)
		}
	case *parser.ConstVal:
		if !ctx.Env.DefineStaticVar(it.Name, ctx.fromAstTy(it.Ty)) {
			return newError(Redefinition, it.Span, it.Name)
		}
	case *parser.FunctionDef:
		if !ctx.Env.DefineStaticFunc(ctx.path, it) {
			return newError(Redefinition, it.Span, it.Header.Name)
		}
	default:
		return ctx.insertTypeItem(item)
	}

	return nil
}

// InsertItemLocal registers the signature of an item declared in a block.
// Structs and traits are scoped to the block; impls join the crate wide
// registries like crate level ones.
func (ctx *TyCtx) InsertItemLocal(item parser.Item) error {
	switch it := item.(type) {
	case *parser.StaticVal:
		if !ctx.Env.DefineVar(it.Name, ctx.fromAstTy(it.Ty)) {
			return newError(Redefinition, it.Span, it.Name)
		}
	case *parser.ConstVal:
		if !ctx.Env.DefineVar(it.Name, ctx.fromAstTy(it.Ty)) {
			return newError(Redefinition, it.Span, it.Name)
		}
	case *parser.FunctionDef:
		if !ctx.Env.DefineFunc(it) {
			return newError(Redefinition, it.Span, it.Header.Name)
		}
	case *parser.StructDef:
		if !ctx.Env.DefineLocalAdt(it) {
			return newError(Redefinition, it.Span, it.Name)
		}
	case *parser.TraitDef:
		if !ctx.Env.DefineLocalTrait(it) {
			return newError(Redefinition, it.Span, it.Name)
		}
	default:
		return ctx.insertTypeItem(item)
	}

	return nil
}

// insertTypeItem registers structs, traits and impls. Trait impls also
// become clauses of the trait manager.
func (ctx *TyCtx) insertTypeItem(item parser.Item) error {
	switch it := item.(type) {
	case *parser.StructDef:
		return ctx.DefineAdt(it)
	case *parser.TraitDef:
		if !ctx.Env.DefineTrait(ctx.path, it) {
			return newError(Redefinition, it.Span, it.Name)
		}
	case *parser.ImplDef:
		ctx.Env.DefineImpl(ctx.path, it)

		if it.Trait != nil {
			goal, gctx := traits.ClauseFromImpl(it)
			ctx.Traits.InsertImpl(it.Trait, goal, gctx)
		}
	}

	return nil
}

// BuildCtx creates a context and registers every item of the crate.
// Registration errors are returned; the context is usable regardless.
func BuildCtx(crate *parser.Crate) (*TyCtx, []error) {
	ctx := NewTyCtx()

	var errs []error

	for _, item := range crate.Items {
		if err := ctx.InsertItemGlob(item); err != nil {
			errs = append(errs, wrapItem(err, item))
		}
	}

	ctx.linkAdts(ctx.Env.Adts(ctx.path))

	return ctx, errs
}

// CheckCrate registers and checks every item. Failures are reported and
// checking moves on to the next item. ok is false if anything failed.
func CheckCrate(crate *parser.Crate, reporter Reporter) (*TyCtx, []ItemResult, bool) {
	ctx, errs := BuildCtx(crate)

	ok := len(errs) == 0

	for _, err := range errs {
		report(reporter, err)
	}

	results := make([]ItemResult, 0, len(crate.Items))

	for _, item := range crate.Items {
		ty, err := ctx.TyckItem(item)
		if err != nil {
			err = wrapItem(err, item)
			report(reporter, err)

			ok = false
		}

		results = append(results, ItemResult{Item: item, Ty: ty, Err: err})
	}

	return ctx, results, ok
}

func report(reporter Reporter, err error) {
	if reporter != nil {
		reporter.Report(err)
	}
}

func wrapItem(err error, item parser.Item) error {
	return errors.Wrapf(err, "in %s `%s`", itemKind(item), item.ItemName())
}

func itemKind(item parser.Item) string {
	switch item.(type) {
	case *parser.StaticVal:
		return "static"
	case *parser.ConstVal:
		return "const"
	case *parser.FunctionDef:
		return "function"
	case *parser.StructDef:
		return "struct"
	case *parser.TraitDef:
		return "trait"
	case *parser.ImplDef:
		return "impl"
	default:
		return "item"
	}
}

// AsResolutionError unwraps err to the underlying resolution error
func AsResolutionError(err error) (*ResolutionError, bool) {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re, true
	}

	return nil, false
}

// TyckItem checks one item whose signature is already registered and
// returns its type. Within an item the first failure is returned.
func (ctx *TyCtx) TyckItem(item parser.Item) (SemTy, error) {
	switch it := item.(type) {
	case *parser.StaticVal:
		return ctx.checkValue(it.Ty, it.Value)
	case *parser.ConstVal:
		return ctx.checkValue(it.Ty, it.Value)
	case *parser.FunctionDef:
		if err := ctx.checkFunction(it); err != nil {
			return nil, err
		}

		return Empty, nil
	case *parser.StructDef:
		return ctx.checkStruct(it)
	case *parser.TraitDef:
		if err := ctx.checkTrait(it); err != nil {
			return nil, err
		}

		return Empty, nil
	case *parser.ImplDef:
		if err := ctx.checkImpl(it); err != nil {
			return nil, err
		}

		return Empty, nil
	default:
		return nil, &ResolutionError{Kind: UnresolvedName, Detail: fmt.Sprintf("unsupported item %T", item)}
	}
}

func (ctx *TyCtx) checkValue(declared parser.Ty, value parser.Expr) (SemTy, error) {
	if err := ctx.checkTyNames(declared); err != nil {
		return nil, err
	}

	ty, err := ctx.ResolveTy(value)
	if err != nil {
		return nil, err
	}

	ty, err = ctx.finalize(ty, value)
	if err != nil {
		return nil, err
	}

	want := ctx.fromAstTy(declared)
	if !CouldBe(want, ty) {
		return nil, mismatch(value.GetSpan(), want, ty)
	}

	return ty, nil
}

// finalize replaces unresolved names with registered struct types
func (ctx *TyCtx) finalize(ty SemTy, at parser.Expr) (SemTy, error) {
	switch t := ty.(type) {
	case *UnresolvedTy:
		resolved, ok := ctx.Env.ResolveNamedTy(ctx.path, t.Name)
		if !ok {
			return nil, newError(UnresolvedType, at.GetSpan(), t.Name)
		}

		return resolved, nil
	case *ArrayTy:
		elem, err := ctx.finalize(t.Elem, at)
		if err != nil {
			return nil, err
		}

		return &ArrayTy{Elem: elem}, nil
	case *RefTy:
		inner, err := ctx.finalize(t.Inner, at)
		if err != nil {
			return nil, err
		}

		return &RefTy{Lifetime: t.Lifetime, Mutability: t.Mutability, Inner: inner}, nil
	default:
		return ty, nil
	}
}

func (ctx *TyCtx) checkHeader(header *parser.FunctionHeader) error {
	for _, p := range header.Params {
		if err := ctx.checkTyNames(p.Ty); err != nil {
			return err
		}
	}

	if header.Ret != nil {
		return ctx.checkTyNames(header.Ret)
	}

	return nil
}

func (ctx *TyCtx) checkFunction(fn *parser.FunctionDef) error {
	header := fn.Header

	ctx.pushGenerics(header.Generics)
	defer ctx.popGenerics()

	if err := ctx.checkHeader(header); err != nil {
		return err
	}

	ctx.Env.PushScope()
	defer ctx.Env.PopScope()

	for _, g := range header.Generics {
		if cg, ok := g.(*parser.ConstGeneric); ok {
			ctx.Env.DefineVar(cg.Name, ctx.fromAstTy(cg.Ty))
		}
	}

	seen := make(map[string]bool, len(header.Params))

	for _, p := range header.Params {
		if seen[p.Name] {
			return newError(Redefinition, p.Span, p.Name)
		}

		seen[p.Name] = true
		ctx.Env.DefineVar(p.Name, ctx.fromAstTy(p.Ty))
	}

	body, err := ctx.checkBlock(fn.Body)
	if err != nil {
		return err
	}

	if header.Ret == nil {
		return nil
	}

	want := ctx.fromAstTy(header.Ret)
	if !CouldBe(want, body) {
		span := fn.Body.Span
		if v := fn.Body.Value(); v != nil {
			span = v.GetSpan()
		}

		return mismatch(span, want, body)
	}

	return nil
}

func (ctx *TyCtx) checkStruct(def *parser.StructDef) (SemTy, error) {
	ctx.pushGenerics(def.Generics)
	defer ctx.popGenerics()

	for _, f := range def.Fields {
		if err := ctx.checkTyNames(f.Ty); err != nil {
			return nil, err
		}
	}

	ty, ok := ctx.Env.ResolveNamedTy(ctx.path, def.Name)
	if !ok || ContainsUnresolved(ty) {
		return nil, newError(UnresolvedType, def.Span, def.Name)
	}

	return ty, nil
}

func (ctx *TyCtx) checkTrait(def *parser.TraitDef) error {
	for _, super := range def.SuperTraits {
		if _, ok := ctx.Env.ResolveTrait(ctx.path, traits.TypeName(super)); !ok {
			return newError(UnknownTrait, super.GetSpan(), super.String())
		}
	}

	ctx.pushGenerics(def.Generics)
	defer ctx.popGenerics()

	ctx.selfTys = append(ctx.selfTys, &UnresolvedTy{Name: "Self"})
	defer ctx.popSelf()

	for _, m := range def.Methods {
		ctx.pushGenerics(m.Generics)
		err := ctx.checkHeader(m)
		ctx.popGenerics()

		if err != nil {
			return err
		}
	}

	return nil
}

func (ctx *TyCtx) popSelf() {
	ctx.selfTys = ctx.selfTys[:len(ctx.selfTys)-1]
}

func (ctx *TyCtx) checkImpl(impl *parser.ImplDef) error {
	ctx.pushGenerics(impl.Generics)
	defer ctx.popGenerics()

	var trait *parser.TraitDef

	if impl.Trait != nil {
		def, ok := ctx.Env.ResolveTrait(ctx.path, traits.TypeName(impl.Trait))
		if !ok {
			return newError(UnknownTrait, impl.Trait.GetSpan(), impl.Trait.String())
		}

		trait = def
	}

	if !traits.IsBlanket(impl) {
		if err := ctx.checkTyNames(impl.Ty); err != nil {
			return err
		}

		if trait != nil {
			if err := ctx.checkSuperTraits(impl, trait); err != nil {
				return err
			}
		}
	}

	if trait != nil {
		if err := checkMethodSet(impl, trait); err != nil {
			return err
		}
	}

	ctx.selfTys = append(ctx.selfTys, ctx.fromAstTy(impl.Ty))
	defer ctx.popSelf()

	for _, m := range impl.Methods {
		if err := ctx.checkFunction(m); err != nil {
			return err
		}
	}

	return nil
}

func (ctx *TyCtx) checkSuperTraits(impl *parser.ImplDef, trait *parser.TraitDef) error {
	for _, super := range trait.SuperTraits {
		if !ctx.satisfies(impl.Ty, super) {
			return &ResolutionError{
				Kind:   UnsatisfiedBound,
				Path:   ctx.path,
				Name:   impl.Ty.String(),
				Detail: fmt.Sprintf("`%s` requires `%s`, which `%s` does not implement", trait.Name, super, impl.Ty),
				Span:   impl.Ty.GetSpan(),
			}
		}
	}

	return nil
}

// checkMethodSet compares impl methods with the trait's declarations by
// name and parameter count
func checkMethodSet(impl *parser.ImplDef, trait *parser.TraitDef) error {
	declared := make(map[string]*parser.FunctionHeader, len(trait.Methods))
	for _, m := range trait.Methods {
		declared[m.Name] = m
	}

	implemented := make(map[string]bool, len(impl.Methods))

	for _, m := range impl.Methods {
		want, ok := declared[m.Header.Name]
		if !ok {
			err := newError(TraitMethod, m.Header.Span, m.Header.Name)
			err.Detail = fmt.Sprintf("not a member of trait `%s`", trait.Name)

			return err
		}

		if len(want.Params) != len(m.Header.Params) {
			err := newError(TraitMethod, m.Header.Span, m.Header.Name)
			err.Detail = fmt.Sprintf("trait declares %d parameters, impl has %d", len(want.Params), len(m.Header.Params))

			return err
		}

		if want.HasReceiver() != m.Header.HasReceiver() {
			err := newError(TraitMethod, m.Header.Span, m.Header.Name)
			if want.HasReceiver() {
				err.Detail = "trait declares a `self` receiver, impl does not"
			} else {
				err.Detail = "impl has a `self` receiver the trait does not declare"
			}

			return err
		}

		implemented[m.Header.Name] = true
	}

	for _, m := range trait.Methods {
		if !implemented[m.Name] {
			err := newError(TraitMethod, impl.Span, m.Name)
			err.Detail = fmt.Sprintf("missing in impl of `%s` for `%s`", trait.Name, impl.Ty)

			return err
		}
	}

	return nil
}
