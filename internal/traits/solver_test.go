package traits

import (
	"testing"

	"github.com/sable-lang/sable/internal/parser"
)

func named(name string, args ...parser.Ty) parser.Ty {
	owned := &parser.OwnedTy{Name: name}
	for _, a := range args {
		owned.Generics = append(owned.Generics, &parser.TyArg{Ty: a})
	}

	return owned
}

// loadImpls registers every impl block of src in a fresh manager
func loadImpls(t *testing.T, src string) *TraitManager {
	t.Helper()

	crate, errs := parser.ParseSource(src, "impls.sb")
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}

	tm := NewTraitManager()

	for _, item := range crate.Items {
		impl, ok := item.(*parser.ImplDef)
		if !ok || impl.Trait == nil {
			continue
		}

		goal, ctx := ClauseFromImpl(impl)
		tm.InsertImpl(impl.Trait, goal, ctx)
	}

	return tm
}

func TestBlanketObligation(t *testing.T) {
	tm := NewTraitManager()
	tm.InsertImpl(named("Trait"), &Obligation{RequiredTraits: []parser.Ty{named("Show")}}, nil)
	tm.InsertImpl(named("Show"), &Val{Ty: named("i32")}, nil)

	if !tm.HasImpl(named("i32"), named("Trait")) {
		t.Errorf("i32 implements Show, so it should implement Trait")
	}

	if tm.HasImpl(named("bool"), named("Trait")) {
		t.Errorf("bool does not implement Show, so it must not implement Trait")
	}
}

func TestHasImplCases(t *testing.T) {
	tm := loadImpls(t, `
impl Show for i32 { }
impl Show for Point { }
impl Eq for Point { }
impl<T: Show> Show for Wrapper<T> { }
impl<K: Eq, V: Show> Show for Map<K, V> { }
impl Show for Pair<i32> { }
impl<T: Show + Eq> Debug for T { }
impl<T: Show> Show for &T { }
`)

	tests := []struct {
		name     string
		ty       parser.Ty
		trait    string
		expected bool
	}{
		{"direct", named("i32"), "Show", true},
		{"direct miss", named("bool"), "Show", false},
		{"unknown trait", named("i32"), "Hash", false},
		{"generic arg satisfied", named("Wrapper", named("Point")), "Show", true},
		{"generic arg unsatisfied", named("Wrapper", named("bool")), "Show", false},
		{"nested generic", named("Wrapper", named("Wrapper", named("i32"))), "Show", true},
		{"arity mismatch", named("Wrapper", named("i32"), named("i32")), "Show", false},
		{"two params", named("Map", named("Point"), named("i32")), "Show", true},
		{"two params first fails", named("Map", named("i32"), named("i32")), "Show", false},
		{"concrete arg match", named("Pair", named("i32")), "Show", true},
		{"concrete arg mismatch", named("Pair", named("bool")), "Show", false},
		{"blanket all bounds", named("Point"), "Debug", true},
		{"blanket missing bound", named("i32"), "Debug", false},
		{"name mismatch", named("Other", named("i32")), "Show", false},
		{"ref to satisfied param", &parser.RefTy{Inner: named("Point")}, "Show", true},
		{"ref to unsatisfied param", &parser.RefTy{Inner: named("bool")}, "Show", false},
		{"mutable ref shape differs", &parser.RefTy{Mutability: parser.Mut, Inner: named("i32")}, "Show", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tm.HasImpl(tt.ty, named(tt.trait)); got != tt.expected {
				t.Errorf("HasImpl(%s, %s) = %v, want %v", tt.ty, tt.trait, got, tt.expected)
			}
		})
	}
}

func TestClausesInRegistrationOrder(t *testing.T) {
	tm := loadImpls(t, `
impl Show for A { }
impl<T: Eq> Show for T { }
impl Show for B { }
`)

	clauses := tm.Clauses("Show")
	if len(clauses) != 3 {
		t.Fatalf("expected 3 clauses, got %d", len(clauses))
	}

	if _, ok := clauses[1].Goal.(*Obligation); !ok {
		t.Errorf("expected the blanket impl to be the second clause, got %s", clauses[1].Goal)
	}

	if tm.Traits() != 1 {
		t.Errorf("expected clauses for 1 trait, got %d", tm.Traits())
	}
}

func TestRecursiveBlanketTerminates(t *testing.T) {
	tm := loadImpls(t, `
impl<T: Show> Show for T { }
impl<T: Loop> Loop for T { }
impl Show for i32 { }
`)

	if !tm.HasImpl(named("i32"), named("Show")) {
		t.Errorf("i32 should implement Show through its direct clause")
	}

	if tm.HasImpl(named("i32"), named("Loop")) {
		t.Errorf("a self-referential blanket must not prove itself")
	}
}

func TestHasImplAssuming(t *testing.T) {
	tm := loadImpls(t, "impl<T: Show> Show for Wrapper<T> { }")

	assumed := GenericContext{"U": []parser.Ty{named("Show")}}

	if !tm.HasImplAssuming(named("U"), named("Show"), assumed) {
		t.Errorf("U is assumed to implement Show")
	}

	if tm.HasImplAssuming(named("U"), named("Eq"), assumed) {
		t.Errorf("U is not assumed to implement Eq")
	}

	if !tm.HasImplAssuming(named("Wrapper", named("U")), named("Show"), assumed) {
		t.Errorf("Wrapper<U> should implement Show when U does")
	}
}

func TestBlanketImplAppliesToAssumedParam(t *testing.T) {
	tm := loadImpls(t, "impl<T: A> B for T { }")

	if !tm.HasImplAssuming(named("U"), named("B"), GenericContext{"U": []parser.Ty{named("A")}}) {
		t.Errorf("U: A should implement B through the blanket impl")
	}

	if tm.HasImplAssuming(named("U"), named("B"), GenericContext{"U": []parser.Ty{named("C")}}) {
		t.Errorf("U: C should not implement B")
	}
}

func TestLifetimeArgsIgnoredInMatching(t *testing.T) {
	tm := loadImpls(t, "impl<'a, T: Show> Show for View<'a, T> { } impl Show for i32 { }")

	view := &parser.OwnedTy{Name: "View", Generics: []parser.GenericArg{
		&parser.LifetimeArg{Lifetime: &parser.Lifetime{Name: "b"}},
		&parser.TyArg{Ty: named("i32")},
	}}

	if !tm.HasImpl(view, named("Show")) {
		t.Errorf("View<'b, i32> should implement Show")
	}

	if !tm.HasImpl(named("View", named("i32")), named("Show")) {
		t.Errorf("View<i32> with an elided lifetime should implement Show")
	}
}

func TestClauseFromImpl(t *testing.T) {
	crate, errs := parser.ParseSource("impl<K: Eq, V> Show for Map<K, V, i32> { }", "impl.sb")
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}

	impl := crate.Items[0].(*parser.ImplDef)

	goal, ctx := ClauseFromImpl(impl)

	val, ok := goal.(*Val)
	if !ok {
		t.Fatalf("expected *Val, got %T", goal)
	}

	expected := []string{"K", "V", ""}
	if len(val.GenericGoals) != len(expected) {
		t.Fatalf("expected goals %v, got %v", expected, val.GenericGoals)
	}

	for i := range expected {
		if val.GenericGoals[i] != expected[i] {
			t.Errorf("goal %d: expected %q, got %q", i, expected[i], val.GenericGoals[i])
		}
	}

	if len(ctx["K"]) != 1 || len(ctx["V"]) != 0 {
		t.Errorf("unexpected context %v", ctx)
	}

	if IsBlanket(impl) {
		t.Errorf("impl for Map<...> is not a blanket impl")
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		ty       parser.Ty
		expected string
	}{
		{named("Vec", named("i32")), "Vec"},
		{&parser.RefTy{Inner: named("str")}, "&str"},
		{&parser.ArrayTy{Elem: named("u8")}, "[u8]"},
	}

	for _, tt := range tests {
		if got := TypeName(tt.ty); got != tt.expected {
			t.Errorf("TypeName(%s) = %q, want %q", tt.ty, got, tt.expected)
		}
	}
}
