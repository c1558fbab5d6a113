package types

import (
	"strings"
	"testing"

	"github.com/sable-lang/sable/internal/parser"
)

type collectingReporter struct {
	errs []error
}

func (r *collectingReporter) Report(err error) {
	r.errs = append(r.errs, err)
}

func checkSource(t *testing.T, src string) (*TyCtx, []ItemResult, []error) {
	t.Helper()

	crate, errs := parser.ParseSource(src, "check.sb")
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}

	reporter := &collectingReporter{}

	ctx, results, ok := CheckCrate(crate, reporter)
	if ok != (len(reporter.errs) == 0) {
		t.Fatalf("ok = %v but %d errors were reported", ok, len(reporter.errs))
	}

	return ctx, results, reporter.errs
}

func errorKinds(t *testing.T, errs []error) []ErrorKind {
	t.Helper()

	kinds := make([]ErrorKind, len(errs))

	for i, err := range errs {
		re, ok := AsResolutionError(err)
		if !ok {
			t.Fatalf("error %d is not a resolution error: %v", i, err)
		}

		kinds[i] = re.Kind
	}

	return kinds
}

func TestStructResolvesToPrimitiveFields(t *testing.T) {
	ctx, _, errs := checkSource(t, "struct Point { x: i32, y: i32 }")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	ty, ok := ctx.ResolveNamedTy("", "Point")
	if !ok {
		t.Fatalf("Point is not registered")
	}

	st, ok := ty.(*StructTy)
	if !ok {
		t.Fatalf("expected *StructTy, got %T", ty)
	}

	if st.Name != "Point" || len(st.Fields) != 2 {
		t.Fatalf("unexpected struct %s with %d fields", st.Name, len(st.Fields))
	}

	for i, name := range []string{"x", "y"} {
		f := st.Fields[i]
		if f.Name != name {
			t.Errorf("field %d: expected %s, got %s", i, name, f.Name)
		}

		if !f.Ty.Equal(i32) {
			t.Errorf("field %s: expected i32, got %s", f.Name, f.Ty)
		}
	}
}

func TestConstResolvesToUnsizedInt(t *testing.T) {
	_, results, errs := checkSource(t, "const X: i32 = 5;")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if !results[0].Ty.Equal(Primitive{Kind: UnsizedInt}) {
		t.Errorf("expected {integer}, got %s", results[0].Ty)
	}
}

func TestArrayLiteralsResolveToArrays(t *testing.T) {
	_, results, errs := checkSource(t, `
const LIST: [i32; 3] = [1, 2, 3];
const REPEAT: [i32; 5] = [1; 5];
`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	want := &ArrayTy{Elem: Primitive{Kind: UnsizedInt}}

	for _, r := range results {
		if !r.Ty.Equal(want) {
			t.Errorf("%s: expected %s, got %s", r.Item.ItemName(), want, r.Ty)
		}
	}
}

func TestWellTypedCrate(t *testing.T) {
	_, results, errs := checkSource(t, `
struct Point { x: i32, y: i32 }

trait Show {
    fn show(&self) -> i32;
}

impl Show for Point {
    fn show(&self) -> i32 { 1 }
}

impl Point {
    fn make() -> Self { Point { x: 0, y: 0 } }
}

fn origin() -> Point { Point { x: 0, y: 0 } }

const O: Point = origin();

fn add(a: i32, b: i32) -> i32 { a + b }

static TOTAL: i32 = add(1, 2);

fn id<T>(x: T) -> T { x }

fn twice(flag: bool) -> bool { let x = 1; let x = flag; id(x) }

fn size<const N: usize>() -> usize { N }

fn nested() -> i32 {
    let v = helper();
    fn helper() -> i32 { 2 }
    v
}

fn blocks() -> i32 {
    let y = { let inner = 1; inner };
    y * 2
}

fn unit() { }
`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	for _, r := range results {
		if r.Err != nil || r.Ty == nil {
			t.Errorf("%s: expected a type, got error %v", r.Item.ItemName(), r.Err)
		}
	}

	for _, r := range results {
		if r.Ty != nil && ContainsUnresolved(r.Ty) {
			t.Errorf("%s: reported type %s is not fully resolved", r.Item.ItemName(), r.Ty)
		}
	}

	if st, ok := results[5].Ty.(*StructTy); !ok || st.Name != "Point" {
		t.Errorf("const O: expected struct Point, got %s", results[5].Ty)
	}

	if !results[7].Ty.Equal(i32) {
		t.Errorf("static TOTAL: expected i32, got %s", results[7].Ty)
	}
}

func TestResolutionErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected []ErrorKind
	}{
		{"unresolved name", "fn f() -> i32 { y }", []ErrorKind{UnresolvedName}},
		{"return mismatch", "struct P { x: i32 } fn f() -> i32 { P { x: 1 } }", []ErrorKind{Mismatch}},
		{"binary mismatch", "struct P { } fn f() { let p = P {}; let q = p + 1; }", []ErrorKind{Mismatch}},
		{"static mismatch", "static S: bool = 1;", []ErrorKind{Mismatch}},
		{"let annotation mismatch", "fn f(flag: bool) { let x: i32 = flag; }", []ErrorKind{Mismatch}},
		{"shadowed local type", "fn h(flag: bool) -> i32 { let x = 1; let x = flag; x }", []ErrorKind{Mismatch}},
		{"arity", "fn g(a: i32) -> i32 { a } fn f() -> i32 { g(1, 2) }", []ErrorKind{Arity}},
		{"argument mismatch", "fn g(a: bool) { } fn f() { g(1); }", []ErrorKind{Mismatch}},
		{"unresolved function", "fn f() { h(); }", []ErrorKind{UnresolvedFunc}},
		{"redefinition", "const A: i32 = 1; const A: i32 = 2;", []ErrorKind{Redefinition}},
		{"duplicate parameter", "fn f(a: i32, a: i32) { }", []ErrorKind{Redefinition}},
		{"unresolved field type", "struct S { p: Missing }", []ErrorKind{UnresolvedType}},
		{"unresolved struct literal", "fn f() { let s = Missing {}; }", []ErrorKind{UnresolvedType}},
		{"unresolved initializer type", "fn mk() -> Ghost { mk() } const G: Ghost = mk();", []ErrorKind{UnresolvedType, UnresolvedType}},
		{"generic arity", "struct W<T> { v: T } struct H { w: W<i32, i32> }", []ErrorKind{Arity}},
		{"unknown trait impl", "impl Missing for i32 { }", []ErrorKind{UnknownTrait}},
		{"unknown supertrait", "trait Ord: Missing { }", []ErrorKind{UnknownTrait}},
		{"unsatisfied field bound", "trait Show { } struct Box<T: Show> { v: T } struct Holder { b: Box<bool> }", []ErrorKind{UnsatisfiedBound}},
		{"unsatisfied generic bound", "trait Show { } struct W<T: Show> { v: T } fn g<U>(w: W<U>) { }", []ErrorKind{UnsatisfiedBound}},
		{"unsatisfied supertrait", "trait Eq { } trait Ord: Eq { } impl Ord for i32 { }", []ErrorKind{UnsatisfiedBound}},
		{"missing trait method", "trait Show { fn show(&self); } impl Show for i32 { }", []ErrorKind{TraitMethod}},
		{"extra trait method", "trait Show { } impl Show for i32 { fn show(&self) { } }", []ErrorKind{TraitMethod}},
		{"receiver dropped in impl", "trait Show { fn show(&self); } impl Show for i32 { fn show(x: i32) { } }", []ErrorKind{TraitMethod}},
		{"receiver added in impl", "trait New { fn new(v: i32); } impl New for i32 { fn new(self) { } }", []ErrorKind{TraitMethod}},
		{"block scope ends", "fn f() -> i32 { let y = { let inner = 1; inner }; inner }", []ErrorKind{UnresolvedName}},
		{"nested function is local", "fn f() { fn g() { } } fn h() { g(); }", []ErrorKind{UnresolvedFunc}},
		{"local struct is scoped", "fn a() { struct S { } } fn b() -> S { S {} }", []ErrorKind{UnresolvedType}},
		{"lifetime arity", "struct Foo<'a> { x: &'a i32 } fn f<'a, 'b>(v: Foo<'a, 'b>) { }", []ErrorKind{Arity}},
		{"type for const parameter", "struct Arr<const N: usize> { v: [i32; N] } fn f(a: Arr<i32>) { }", []ErrorKind{Mismatch}},
		{"unknown const argument", "struct Arr<const N: usize> { v: [i32; N] } fn f(a: Arr<M>) { }", []ErrorKind{UnresolvedName}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, errs := checkSource(t, tt.src)
			kinds := errorKinds(t, errs)

			if len(kinds) != len(tt.expected) {
				t.Fatalf("expected %v, got %v (%v)", tt.expected, kinds, errs)
			}

			for i := range kinds {
				if kinds[i] != tt.expected[i] {
					t.Errorf("error %d: expected %s, got %s (%v)", i, tt.expected[i], kinds[i], errs[i])
				}
			}
		})
	}
}

func TestBoundsHoldWithImpls(t *testing.T) {
	_, _, errs := checkSource(t, `
trait Show { }
trait Eq { }
trait Ord: Eq { }
struct Box<T: Show> { v: T }
struct Point { x: i32 }
impl Show for Point { }
impl Eq for i32 { }
impl Ord for i32 { }
struct Holder { b: Box<Point> }
fn g<U: Show>(w: Box<U>) { }
impl<T: Show> Show for Box<T> { }
struct Nested { b: Box<Box<Point>> }
impl<T: Show> Eq for T { }
impl Ord for Point { }
`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestCheckingContinuesAfterFailure(t *testing.T) {
	_, results, errs := checkSource(t, `
fn a() -> i32 { missing }
fn b() -> i32 { 1 }
fn c() -> bool { 2 }
struct S { f: Nope }
fn d() -> i32 { b() }
`)

	kinds := errorKinds(t, errs)
	expected := []ErrorKind{UnresolvedName, Mismatch, UnresolvedType}

	if len(kinds) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, kinds)
	}

	for i := range expected {
		if kinds[i] != expected[i] {
			t.Errorf("error %d: expected %s, got %s", i, expected[i], kinds[i])
		}
	}

	for _, i := range []int{1, 4} {
		if results[i].Err != nil {
			t.Errorf("%s should check cleanly, got %v", results[i].Item.ItemName(), results[i].Err)
		}
	}
}

func TestErrorsCarryItemContext(t *testing.T) {
	_, _, errs := checkSource(t, "fn broken() -> i32 { nope }")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}

	msg := errs[0].Error()
	if !strings.HasPrefix(msg, "in function `broken`: ") {
		t.Errorf("expected the item context prefix, got %q", msg)
	}

	if !strings.Contains(msg, "unresolved name `nope`") {
		t.Errorf("expected the resolution message, got %q", msg)
	}

	re, _ := AsResolutionError(errs[0])
	if re.Span.Start.Line != 1 || re.Span.Start.Column != 22 {
		t.Errorf("expected the error at 1:22, got %s", re.Span.Start)
	}
}

func TestImplClausesReachTraitManager(t *testing.T) {
	ctx, _, errs := checkSource(t, `
trait Show { }
struct Point { x: i32 }
impl Show for Point { }
impl<T: Show> Show for &T { }
`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if got := len(ctx.Traits.Clauses("Show")); got != 2 {
		t.Fatalf("expected 2 Show clauses, got %d", got)
	}

	point := &parser.OwnedTy{Name: "Point"}
	show := &parser.OwnedTy{Name: "Show"}

	if !ctx.Traits.HasImpl(point, show) {
		t.Errorf("Point should implement Show")
	}

	if !ctx.Traits.HasImpl(&parser.RefTy{Inner: point}, show) {
		t.Errorf("&Point should implement Show")
	}

	if len(ctx.Env.ResolveImpls(DefaultPath, "Point")) != 1 {
		t.Errorf("expected one impl registered for Point")
	}
}

func TestGenericArgumentForms(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"elided lifetime", "struct Foo<'a> { x: &'a i32 } fn f(v: Foo) { }"},
		{"explicit lifetime", "struct Foo<'a> { x: &'a i32 } fn g<'a>(v: Foo<'a>) { }"},
		{"lifetime and type", "struct View<'a, T> { v: &'a T } fn h<'a>(v: View<'a, i32>) { }"},
		{"const parameter by name", "struct Arr<const N: usize> { v: [i32; N] } fn f<const N: usize>(a: Arr<N>) { }"},
		{"const item as argument", "const LEN: usize = 4; struct Arr<const N: usize> { v: [i32; N] } fn f(a: Arr<LEN>) { }"},
		{"literal const argument", "struct Arr<const N: usize> { v: [i32; N] } fn f(a: Arr<3>) { }"},
		{"blanket impl proves bound on parameter",
			"trait A { } trait B { } impl<T: A> B for T { } struct W<T: B> { v: T } fn f<U: A>(w: W<U>) { }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, errs := checkSource(t, tt.src); len(errs) > 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
		})
	}
}

func TestStructFieldsAreLinked(t *testing.T) {
	ctx, results, errs := checkSource(t, `
struct P { x: i32 }
struct L { p: P, next: &L, w: W<P>, all: [P] }
struct W<T> { v: T }
`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	for _, r := range results {
		if ContainsUnresolved(r.Ty) {
			t.Errorf("%s: reported type is not fully resolved", r.Item.ItemName())
		}
	}

	pTy, _ := ctx.ResolveNamedTy(DefaultPath, "P")
	lTy, _ := ctx.ResolveNamedTy(DefaultPath, "L")
	l := lTy.(*StructTy)

	if p, ok := l.Fields[0].Ty.(*StructTy); !ok || p != pTy {
		t.Errorf("L.p: expected the registered struct P, got %T", l.Fields[0].Ty)
	}

	next, ok := l.Fields[1].Ty.(*RefTy)
	if !ok || next.Inner != lTy {
		t.Errorf("L.next: expected a reference to L itself, got %s", l.Fields[1].Ty)
	}

	if w, ok := l.Fields[2].Ty.(*StructTy); !ok || w.Name != "W" {
		t.Errorf("L.w: expected struct W, got %s", l.Fields[2].Ty)
	}

	if arr, ok := l.Fields[3].Ty.(*ArrayTy); !ok || arr.Elem != pTy {
		t.Errorf("L.all: expected [P], got %s", l.Fields[3].Ty)
	}

	wTy, _ := ctx.ResolveNamedTy(DefaultPath, "W")
	if param, ok := wTy.(*StructTy).Fields[0].Ty.(*ParamTy); !ok || param.Name != "T" {
		t.Errorf("W.v: expected type parameter T, got %s", wTy.(*StructTy).Fields[0].Ty)
	}
}

func TestContainsUnresolved(t *testing.T) {
	self := &StructTy{Name: "Node"}
	self.Fields = []StructField{{Name: "next", Ty: &RefTy{Inner: self}}}

	broken := &StructTy{Name: "Bad", Fields: []StructField{{Name: "p", Ty: &UnresolvedTy{Name: "Missing"}}}}

	tests := []struct {
		name     string
		ty       SemTy
		expected bool
	}{
		{"primitive", i32, false},
		{"unresolved", &UnresolvedTy{Name: "X"}, true},
		{"array of unresolved", &ArrayTy{Elem: &UnresolvedTy{Name: "X"}}, true},
		{"cyclic struct", self, false},
		{"struct field", broken, true},
		{"reference to broken struct", &RefTy{Inner: broken}, true},
		{"type parameter", &ParamTy{Name: "T"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsUnresolved(tt.ty); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestLocalStructsAreScoped(t *testing.T) {
	ctx, _, errs := checkSource(t, `
fn a() -> i32 { struct S { x: i32 } let s = S { x: 1 }; 1 }
fn b() { struct S { } }
`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if _, ok := ctx.ResolveNamedTy(DefaultPath, "S"); ok {
		t.Errorf("S declared in a function body leaked to the crate registry")
	}
}
