package semantic

import "github.com/tablang/tabc/internal/types"

// Symbol is one name binding in a Scope.
type Symbol struct {
	Name string
	Type types.Type
}

// Scope is a name-to-Type chain with a parent link (spec.md §3's Scope
// entity), stacked during the semantic walk and discarded on exit.
type Scope struct {
	symbols map[string]*Symbol
	outer   *Scope
}

// NewScope creates a root scope with no parent.
func NewScope() *Scope {
	return &Scope{symbols: make(map[string]*Symbol)}
}

// NewEnclosedScope creates a scope nested inside outer.
func NewEnclosedScope(outer *Scope) *Scope {
	return &Scope{symbols: make(map[string]*Symbol), outer: outer}
}

// Define binds name to typ in this scope, shadowing any outer binding.
func (s *Scope) Define(name string, typ types.Type) {
	s.symbols[name] = &Symbol{Name: name, Type: typ}
}

// Lookup walks this scope and its ancestors for name.
func (s *Scope) Lookup(name string) (types.Type, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if sym, ok := sc.symbols[name]; ok {
			return sym.Type, true
		}
	}
	return types.Type{}, false
}

// LocalNames returns the names defined directly in this scope, for
// "did you mean?" suggestion candidates.
func (s *Scope) LocalNames() []string {
	names := make([]string, 0, len(s.symbols))
	for n := range s.symbols {
		names = append(names, n)
	}
	return names
}

// AllNames returns every name visible from this scope, innermost first.
func (s *Scope) AllNames() []string {
	var names []string
	for sc := s; sc != nil; sc = sc.outer {
		names = append(names, sc.LocalNames()...)
	}
	return names
}

// ClassTable maps class_name -> class entry (base name, field types,
// method signatures) for the whole program (spec.md §3's ClassTable
// entity), built in the pre-pass and consulted throughout the rest of
// analysis. Codegen builds its own class layout table and does not read it.
type ClassTable struct {
	classes map[string]*classEntry
}

type classEntry struct {
	name      string
	baseName  string
	fields    map[string]types.Type
	methods   map[string]*methodEntry
}

type methodEntry struct {
	params []types.Type
	ret    types.Type
}

func newClassTable() *ClassTable {
	return &ClassTable{classes: make(map[string]*classEntry)}
}

func (ct *ClassTable) has(name string) bool {
	_, ok := ct.classes[name]
	return ok
}

// FieldType looks up name on class cls, walking the inheritance chain.
func (ct *ClassTable) FieldType(cls, name string) (types.Type, bool) {
	for c := ct.classes[cls]; c != nil; c = ct.classes[c.baseName] {
		if t, ok := c.fields[name]; ok {
			return t, true
		}
	}
	return types.Type{}, false
}

// Method looks up method name on class cls, walking the inheritance chain.
func (ct *ClassTable) Method(cls, name string) (*methodEntry, bool) {
	for c := ct.classes[cls]; c != nil; c = ct.classes[c.baseName] {
		if m, ok := c.methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// IsDescendantOf reports whether cls is base or inherits from base,
// transitively.
func (ct *ClassTable) IsDescendantOf(cls, base string) bool {
	for c := ct.classes[cls]; c != nil; c = ct.classes[c.baseName] {
		if c.name == base {
			return true
		}
	}
	return false
}
