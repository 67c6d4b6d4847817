// Package semantic implements spec.md §4.3: it walks a parsed Program,
// builds scopes, resolves identifiers, infers and checks types, validates
// inheritance and member access, and annotates every expression with its
// resolved Type so codegen can trust it without re-deriving anything.
package semantic

import (
	"fmt"

	"github.com/tablang/tabc/internal/ast"
	cerrors "github.com/tablang/tabc/internal/errors"
	"github.com/tablang/tabc/internal/types"
)

// Analyzer performs semantic analysis on a Tab program. Grounded on the
// teacher's Analyzer: one struct carrying the class/function tables plus
// per-walk state, organized as a pass per concern rather than one giant
// recursive function.
type Analyzer struct {
	classes         *ClassTable
	functions       map[string]*ast.Function // first declaration, for name-only lookups
	overloads       map[string][]*ast.Function
	source          string
	errs            []*cerrors.CompilerError
	currentClass    string
	currentFunction *ast.Function
}

// NewAnalyzer creates an Analyzer ready to run Analyze.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		classes:   newClassTable(),
		functions: make(map[string]*ast.Function),
		overloads: make(map[string][]*ast.Function),
	}
}

// SetSource attaches source text so diagnostics can render a caret line.
func (a *Analyzer) SetSource(src string) { a.source = src }

// Errors returns every diagnostic collected by Analyze.
func (a *Analyzer) Errors() []*cerrors.CompilerError { return a.errs }

// Analyze runs every pass over prog. It always returns as many diagnostics
// as it can collect rather than stopping at the first error, mirroring the
// teacher's "accumulate then report" analyzer loop.
func (a *Analyzer) Analyze(prog *ast.Program) []*cerrors.CompilerError {
	a.prePass(prog)
	a.classCheckPass(prog)
	a.functionCheckPass(prog)
	return a.errs
}

func (a *Analyzer) addError(kind cerrors.Kind, pos ast.SourceLocation, format string, args ...any) *cerrors.CompilerError {
	e := cerrors.New(kind, pos, fmt.Sprintf(format, args...))
	if a.source != "" {
		e = e.WithSource(a.source)
	}
	a.errs = append(a.errs, e)
	return e
}

// prePass collects every class into the ClassTable and rejects inheritance
// cycles via a visited-set DFS from each class along base_class links
// (spec.md §4.3).
func (a *Analyzer) prePass(prog *ast.Program) {
	for _, fn := range prog.Functions {
		sig := fn.SignatureKey()
		dupSignature := false
		for _, existing := range a.overloads[fn.Name] {
			if existing.SignatureKey() == sig {
				a.addError(cerrors.DuplicateDefinition, fn.Pos(), "function %s is already defined", sig)
				dupSignature = true
				break
			}
		}
		if dupSignature {
			continue
		}

		if _, dup := a.functions[fn.Name]; dup {
			a.overloads[fn.Name] = append(a.overloads[fn.Name], fn)
			continue
		}
		a.functions[fn.Name] = fn
		a.overloads[fn.Name] = []*ast.Function{fn}
	}

	for _, cls := range prog.Classes {
		if a.classes.has(cls.Name) {
			a.addError(cerrors.DuplicateDefinition, cls.Pos(), "class %q is already defined", cls.Name)
			continue
		}
		entry := &classEntry{
			name:     cls.Name,
			baseName: cls.BaseClass,
			fields:   make(map[string]types.Type),
			methods:  make(map[string]*methodEntry),
		}
		seen := map[string]bool{}
		for _, f := range cls.Fields {
			if seen[f.Name] {
				a.addError(cerrors.DuplicateDefinition, f.Pos(), "field %q is already defined on class %q", f.Name, cls.Name)
				continue
			}
			seen[f.Name] = true
			entry.fields[f.Name] = f.Type
		}
		for _, m := range cls.Methods {
			params := make([]types.Type, len(m.Parameters))
			for i, p := range m.Parameters {
				params[i] = p.Type
			}
			entry.methods[m.Name] = &methodEntry{params: params, ret: m.ReturnType}
		}
		a.classes.classes[cls.Name] = entry
	}

	for _, cls := range prog.Classes {
		if cls.BaseClass == "" {
			continue
		}
		if !a.classes.has(cls.BaseClass) {
			a.addError(cerrors.InheritanceError, cls.Pos(), "class %q extends unknown base class %q", cls.Name, cls.BaseClass)
			continue
		}
		if a.hasInheritanceCycle(cls.Name) {
			a.addError(cerrors.InheritanceError, cls.Pos(), "inheritance cycle detected starting at class %q", cls.Name)
		}
	}
}

func (a *Analyzer) hasInheritanceCycle(start string) bool {
	visited := map[string]bool{}
	name := start
	for {
		entry, ok := a.classes.classes[name]
		if !ok || entry.baseName == "" {
			return false
		}
		if visited[entry.baseName] || entry.baseName == start {
			return true
		}
		visited[entry.baseName] = true
		name = entry.baseName
	}
}

// classCheckPass validates each class's constructor and method bodies with
// `this` bound to the class type and the parameters as locals; fields are
// reached through `this`, not as bare names (spec.md §4.3).
func (a *Analyzer) classCheckPass(prog *ast.Program) {
	for _, cls := range prog.Classes {
		a.currentClass = cls.Name
		classType := types.NewObject(cls.Name)

		if cls.Constructor != nil {
			scope := NewScope()
			scope.Define("this", classType)
			for _, p := range cls.Constructor.Parameters {
				scope.Define(p.Name, p.Type)
			}
			a.checkBody(cls.Constructor.Body, scope, types.NewUnit())
		}

		for _, m := range cls.Methods {
			scope := NewScope()
			scope.Define("this", classType)
			for _, p := range m.Parameters {
				scope.Define(p.Name, p.Type)
			}
			a.currentFunction = m
			a.checkBody(m.Body, scope, m.ReturnType)
		}
	}
	a.currentClass = ""
	a.currentFunction = nil
}

// functionCheckPass enters a fresh scope carrying parameters for every
// top-level function and walks its body (spec.md §4.3).
func (a *Analyzer) functionCheckPass(prog *ast.Program) {
	for _, fn := range prog.Functions {
		scope := NewScope()
		for _, p := range fn.Parameters {
			scope.Define(p.Name, p.Type)
		}
		a.currentFunction = fn
		a.checkBody(fn.Body, scope, fn.ReturnType)
	}
	a.currentFunction = nil
}

func (a *Analyzer) checkBody(body []ast.Statement, scope *Scope, expectedReturn types.Type) {
	for _, stmt := range body {
		a.checkStatement(stmt, scope, expectedReturn)
	}
}
