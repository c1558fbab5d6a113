// Package traits answers "does type T implement trait Tr" from clauses
// registered by impl blocks. Matching is nominal: no unification or
// substitution is performed.
package traits

import (
	"strings"

	"github.com/sable-lang/sable/internal/parser"
)

// GoalTarget is what a clause proves
type GoalTarget interface {
	goalTarget()
	String() string
}

// Obligation holds for any type that implements every required trait
type Obligation struct {
	RequiredTraits []parser.Ty
}

func (o *Obligation) goalTarget() {}
func (o *Obligation) String() string {
	names := make([]string, len(o.RequiredTraits))
	for i, t := range o.RequiredTraits {
		names[i] = t.String()
	}

	return "T: " + strings.Join(names, " + ")
}

// Val holds for types named like Ty. GenericGoals names, per generic
// argument position of Ty, the impl parameter whose bounds the queried
// argument must satisfy. An empty entry marks a concrete argument that
// must match by name.
type Val struct {
	Ty           parser.Ty
	GenericGoals []string
}

func (v *Val) goalTarget()    {}
func (v *Val) String() string { return v.Ty.String() }

// GenericContext maps a generic parameter name to its required traits
type GenericContext map[string][]parser.Ty

// Clause is one way of proving a trait
type Clause struct {
	Goal    GoalTarget
	Context GenericContext
}

// TraitEntry is the ordered clause list of one trait
type TraitEntry struct {
	TraitTy parser.Ty
	Clauses []Clause
}

// TraitManager stores clauses per trait, keyed by the trait's unqualified name
type TraitManager struct {
	impls map[string]*TraitEntry
}

// NewTraitManager creates an empty trait manager
func NewTraitManager() *TraitManager {
	return &TraitManager{impls: make(map[string]*TraitEntry)}
}

// InsertImpl appends a clause to the trait's list. Clauses are tried in
// insertion order.
func (tm *TraitManager) InsertImpl(traitTy parser.Ty, goal GoalTarget, ctx GenericContext) {
	name := TypeName(traitTy)

	entry, ok := tm.impls[name]
	if !ok {
		entry = &TraitEntry{TraitTy: traitTy}
		tm.impls[name] = entry
	}

	entry.Clauses = append(entry.Clauses, Clause{Goal: goal, Context: ctx})
}

// Clauses returns the clauses registered for a trait name
func (tm *TraitManager) Clauses(traitName string) []Clause {
	if entry, ok := tm.impls[traitName]; ok {
		return entry.Clauses
	}

	return nil
}

// Traits returns the number of traits with at least one clause
func (tm *TraitManager) Traits() int {
	return len(tm.impls)
}

// HasImpl reports whether some clause proves that ty implements trait.
// A false result is an answer, not an error.
func (tm *TraitManager) HasImpl(ty, trait parser.Ty) bool {
	return tm.HasImplAssuming(ty, trait, nil)
}

// HasImplAssuming is HasImpl where bare names listed in assumed are
// generic parameters implementing their listed traits. Registered clauses
// may prove further traits for them, e.g. through blanket impls.
func (tm *TraitManager) HasImplAssuming(ty, trait parser.Ty, assumed GenericContext) bool {
	s := &solver{
		tm:      tm,
		assumed: assumed,
		active:  make(map[string]bool),
	}

	return s.holds(ty, trait)
}

type solver struct {
	tm      *TraitManager
	assumed GenericContext
	active  map[string]bool // goals currently being proven
}

func (s *solver) holds(ty, trait parser.Ty) bool {
	traitName := TypeName(trait)

	if o, ok := ty.(*parser.OwnedTy); ok && len(o.Generics) == 0 {
		if bounds, ok := s.assumed[o.Name]; ok && containsTrait(bounds, traitName) {
			return true
		}
	}

	key := ty.String() + ": " + traitName
	if s.active[key] {
		return false
	}

	s.active[key] = true
	defer delete(s.active, key)

	for _, clause := range s.tm.Clauses(traitName) {
		if s.satisfies(ty, clause) {
			return true
		}
	}

	return false
}

func (s *solver) satisfies(ty parser.Ty, clause Clause) bool {
	switch goal := clause.Goal.(type) {
	case *Obligation:
		for _, req := range goal.RequiredTraits {
			if !s.holds(ty, req) {
				return false
			}
		}

		return true
	case *Val:
		return s.matchVal(ty, goal, clause.Context)
	default:
		return false
	}
}

func (s *solver) matchVal(ty parser.Ty, goal *Val, ctx GenericContext) bool {
	if inner, param, ok := wrappedParam(ty, goal.Ty, ctx); ok {
		return s.allHold(inner, ctx[param])
	}

	if TypeName(ty) != TypeName(goal.Ty) {
		return false
	}

	queried := genericArgs(ty)
	declared := genericArgs(goal.Ty)

	if len(queried) != len(declared) {
		return false
	}

	for i, arg := range queried {
		param := ""
		if i < len(goal.GenericGoals) {
			param = goal.GenericGoals[i]
		}

		if param == "" {
			if arg.String() != declared[i].String() {
				return false
			}

			continue
		}

		tyArg, ok := arg.(*parser.TyArg)
		if !ok {
			continue
		}

		if !s.allHold(tyArg.Ty, ctx[param]) {
			return false
		}
	}

	return true
}

func (s *solver) allHold(ty parser.Ty, required []parser.Ty) bool {
	for _, req := range required {
		if !s.holds(ty, req) {
			return false
		}
	}

	return true
}

// wrappedParam matches `&T`, `&mut T` and `[T]` clause targets whose
// element is an impl parameter against the same shape in ty
func wrappedParam(ty, target parser.Ty, ctx GenericContext) (parser.Ty, string, bool) {
	switch t := target.(type) {
	case *parser.RefTy:
		q, ok := ty.(*parser.RefTy)
		if !ok || q.Mutability != t.Mutability {
			return nil, "", false
		}

		if param, ok := bareParam(t.Inner, ctx); ok {
			return q.Inner, param, true
		}
	case *parser.ArrayTy:
		q, ok := ty.(*parser.ArrayTy)
		if !ok {
			return nil, "", false
		}

		if param, ok := bareParam(t.Elem, ctx); ok {
			return q.Elem, param, true
		}
	}

	return nil, "", false
}

func bareParam(ty parser.Ty, ctx GenericContext) (string, bool) {
	o, ok := ty.(*parser.OwnedTy)
	if !ok || len(o.Generics) > 0 {
		return "", false
	}

	_, declared := ctx[o.Name]

	return o.Name, declared
}

// genericArgs returns the type and const arguments of ty; lifetimes do not
// take part in matching
func genericArgs(ty parser.Ty) []parser.GenericArg {
	o, ok := ty.(*parser.OwnedTy)
	if !ok {
		return nil
	}

	args := make([]parser.GenericArg, 0, len(o.Generics))

	for _, arg := range o.Generics {
		if _, ok := arg.(*parser.LifetimeArg); !ok {
			args = append(args, arg)
		}
	}

	return args
}

func containsTrait(bounds []parser.Ty, name string) bool {
	for _, b := range bounds {
		if TypeName(b) == name {
			return true
		}
	}

	return false
}

// TypeName is the name used to match types and key traits: the bare name
// of an owned type, `&` plus the inner name for references and the
// bracketed element name for arrays.
func TypeName(ty parser.Ty) string {
	switch t := ty.(type) {
	case *parser.OwnedTy:
		return t.Name
	case *parser.RefTy:
		return "&" + TypeName(t.Inner)
	case *parser.ArrayTy:
		return "[" + TypeName(t.Elem) + "]"
	default:
		return ""
	}
}
