package types

import "github.com/sable-lang/sable/internal/parser"

// DefaultPath is the path every item of a single crate is registered under
const DefaultPath = ""

// Dest is where a variable name points to
type Dest interface {
	dest()
	// Ty returns the type currently visible under the name
	Ty() SemTy
}

// StaticDest is a crate level static or const. Only the outermost frame holds these.
type StaticDest struct {
	Type SemTy
}

func (StaticDest) dest()       {}
func (d StaticDest) Ty() SemTy { return d.Type }

// LocalDest stacks the types of a name shadowed within one frame
type LocalDest struct {
	Tys []SemTy
}

func (*LocalDest) dest()       {}
func (d *LocalDest) Ty() SemTy { return d.Tys[len(d.Tys)-1] }

type scope struct {
	vars   map[string]Dest
	funcs  map[string]*parser.FunctionDef
	adts   map[string]AdtEntry
	traits map[string]*parser.TraitDef
}

func newScope() *scope {
	return &scope{
		vars:   make(map[string]Dest),
		funcs:  make(map[string]*parser.FunctionDef),
		adts:   make(map[string]AdtEntry),
		traits: make(map[string]*parser.TraitDef),
	}
}

// AdtEntry is a registered struct declaration and its derived type
type AdtEntry struct {
	Decl *parser.StructDef
	Ty   *StructTy
}

type pathItems struct {
	adts   map[string]AdtEntry
	impls  map[string][]*parser.ImplDef
	funcs  map[string]*parser.FunctionDef
	traits map[string]*parser.TraitDef
}

func newPathItems() *pathItems {
	return &pathItems{
		adts:   make(map[string]AdtEntry),
		impls:  make(map[string][]*parser.ImplDef),
		funcs:  make(map[string]*parser.FunctionDef),
		traits: make(map[string]*parser.TraitDef),
	}
}

// Environment holds scope frames and per-path item registries.
// Frame 0 is permanent.
type Environment struct {
	scopes []*scope
	paths  map[string]*pathItems
}

// NewEnvironment creates an environment with only the outermost frame
func NewEnvironment() *Environment {
	return &Environment{
		scopes: []*scope{newScope()},
		paths:  make(map[string]*pathItems),
	}
}

func (e *Environment) path(p string) *pathItems {
	items, ok := e.paths[p]
	if !ok {
		items = newPathItems()
		e.paths[p] = items
	}

	return items
}

func (e *Environment) current() *scope {
	return e.scopes[len(e.scopes)-1]
}

// Depth returns the number of live frames
func (e *Environment) Depth() int {
	return len(e.scopes)
}

// PushScope opens a new innermost frame
func (e *Environment) PushScope() {
	e.scopes = append(e.scopes, newScope())
}

// PopScope drops the innermost frame. It returns false when only the
// outermost frame is left.
func (e *Environment) PopScope() bool {
	if len(e.scopes) == 1 {
		return false
	}

	e.scopes = e.scopes[:len(e.scopes)-1]

	return true
}

// ResolveVar searches frames from innermost to outermost
func (e *Environment) ResolveVar(name string) (SemTy, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if d, ok := e.scopes[i].vars[name]; ok {
			return d.Ty(), true
		}
	}

	return nil, false
}

// DefineVar binds name in the innermost frame, shadowing earlier
// bindings of the same frame. It fails only when name is a static of
// that frame.
func (e *Environment) DefineVar(name string, ty SemTy) bool {
	frame := e.current()

	switch d := frame.vars[name].(type) {
	case StaticDest:
		return false
	case *LocalDest:
		d.Tys = append(d.Tys, ty)
	default:
		frame.vars[name] = &LocalDest{Tys: []SemTy{ty}}
	}

	return true
}

// DefineStaticVar binds name in the outermost frame once
func (e *Environment) DefineStaticVar(name string, ty SemTy) bool {
	frame := e.scopes[0]
	if _, ok := frame.vars[name]; ok {
		return false
	}

	frame.vars[name] = StaticDest{Type: ty}

	return true
}

// DefineFunc registers a function in the innermost frame once
func (e *Environment) DefineFunc(fn *parser.FunctionDef) bool {
	frame := e.current()
	if _, ok := frame.funcs[fn.Header.Name]; ok {
		return false
	}

	frame.funcs[fn.Header.Name] = fn

	return true
}

// DefineStaticFunc registers a crate level function under path once
func (e *Environment) DefineStaticFunc(path string, fn *parser.FunctionDef) bool {
	items := e.path(path)
	if _, ok := items.funcs[fn.Header.Name]; ok {
		return false
	}

	items.funcs[fn.Header.Name] = fn

	return true
}

// ResolveFunc searches frames innermost first, then the path registry
func (e *Environment) ResolveFunc(path, name string) (*parser.FunctionDef, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if fn, ok := e.scopes[i].funcs[name]; ok {
			return fn, true
		}
	}

	fn, ok := e.path(path).funcs[name]

	return fn, ok
}

// DefineAdt registers a struct under path once and derives its type
func (e *Environment) DefineAdt(path string, def *parser.StructDef) bool {
	items := e.path(path)
	if _, ok := items.adts[def.Name]; ok {
		return false
	}

	items.adts[def.Name] = AdtEntry{Decl: def, Ty: deriveStruct(def)}

	return true
}

// DefineLocalAdt registers a struct declared in a block in the innermost frame once
func (e *Environment) DefineLocalAdt(def *parser.StructDef) bool {
	frame := e.current()
	if _, ok := frame.adts[def.Name]; ok {
		return false
	}

	frame.adts[def.Name] = AdtEntry{Decl: def, Ty: deriveStruct(def)}

	return true
}

// ResolveAdt returns the struct named name, searching frames innermost
// first, then the path registry
func (e *Environment) ResolveAdt(path, name string) (AdtEntry, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if entry, ok := e.scopes[i].adts[name]; ok {
			return entry, true
		}
	}

	entry, ok := e.path(path).adts[name]

	return entry, ok
}

// Adts returns the structs registered under path
func (e *Environment) Adts(path string) []AdtEntry {
	items := e.path(path)
	entries := make([]AdtEntry, 0, len(items.adts))

	for _, entry := range items.adts {
		entries = append(entries, entry)
	}

	return entries
}

// LocalAdts returns the structs declared in the innermost frame
func (e *Environment) LocalAdts() []AdtEntry {
	frame := e.current()
	entries := make([]AdtEntry, 0, len(frame.adts))

	for _, entry := range frame.adts {
		entries = append(entries, entry)
	}

	return entries
}

// ResolveNamedTy returns the derived type of the struct named name
func (e *Environment) ResolveNamedTy(path, name string) (SemTy, bool) {
	entry, ok := e.ResolveAdt(path, name)
	if !ok {
		return nil, false
	}

	return entry.Ty, true
}

// DefineImpl appends an impl block to the list of its target type
func (e *Environment) DefineImpl(path string, impl *parser.ImplDef) {
	items := e.path(path)
	name := impl.ItemName()
	items.impls[name] = append(items.impls[name], impl)
}

// ResolveImpls returns the impl blocks of a type in registration order
func (e *Environment) ResolveImpls(path, name string) []*parser.ImplDef {
	return e.path(path).impls[name]
}

// DefineTrait registers a trait under path once
func (e *Environment) DefineTrait(path string, def *parser.TraitDef) bool {
	items := e.path(path)
	if _, ok := items.traits[def.Name]; ok {
		return false
	}

	items.traits[def.Name] = def

	return true
}

// DefineLocalTrait registers a trait declared in a block in the innermost frame once
func (e *Environment) DefineLocalTrait(def *parser.TraitDef) bool {
	frame := e.current()
	if _, ok := frame.traits[def.Name]; ok {
		return false
	}

	frame.traits[def.Name] = def

	return true
}

// ResolveTrait returns the trait named name, searching frames innermost
// first, then the path registry
func (e *Environment) ResolveTrait(path, name string) (*parser.TraitDef, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if def, ok := e.scopes[i].traits[name]; ok {
			return def, true
		}
	}

	def, ok := e.path(path).traits[name]

	return def, ok
}
