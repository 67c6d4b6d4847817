// Package resolver implements spec.md §4.2: locating, parsing, and caching
// the modules named by import declarations, and validating single-symbol
// imports against the target module's public exports.
package resolver

import (
	"os"
	"path/filepath"

	"github.com/tablang/tabc/internal/ast"
	cerrors "github.com/tablang/tabc/internal/errors"
	"github.com/tablang/tabc/internal/parser"
	"github.com/tablang/tabc/internal/token"
)

// extensions lists the accepted source file extensions, tried in order,
// grounded on the teacher's internal/units file-resolution pattern.
var extensions = []string{".tab", ".tabmod"}

// Module is a fully parsed import target plus the symbols it exports.
type Module struct {
	Name    string
	Path    string
	Program *ast.Program
	Public  map[string]bool // declared name -> is-public (spec.md §4.2)
}

// ImportResolution is the {imported_name -> Module} and {alias -> (module,
// symbol)} mapping spec.md §4.2 requires the resolver to build.
type ImportResolution struct {
	Modules map[string]*Module
	Aliases map[string]AliasTarget
}

// AliasTarget names one symbol exported by a resolved module.
type AliasTarget struct {
	Module *Module
	Symbol string
}

// Resolver searches an ordered list of directories for import targets,
// parsing and caching each resolved module by name.
type Resolver struct {
	searchPaths []string
	cache       map[string]*Module
	resolving   map[string]bool // modules mid-parse, for circular-import tolerance
}

// New creates a Resolver that searches dirs in order.
func New(dirs []string) *Resolver {
	return &Resolver{searchPaths: dirs, cache: map[string]*Module{}, resolving: map[string]bool{}}
}

// Resolve resolves every import in prog and returns the combined mapping.
func (r *Resolver) Resolve(prog *ast.Program) (*ImportResolution, []*cerrors.CompilerError) {
	res := &ImportResolution{Modules: map[string]*Module{}, Aliases: map[string]AliasTarget{}}
	var errs []*cerrors.CompilerError

	for _, imp := range prog.Imports {
		mod, err := r.resolveModule(imp.Module, imp.Pos())
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if imp.Symbol == "" {
			name := imp.Module
			if imp.Alias != "" {
				name = imp.Alias
			}
			res.Modules[name] = mod
			continue
		}

		if !mod.Public[imp.Symbol] {
			errs = append(errs, cerrors.New(cerrors.SymbolError, imp.Pos(),
				"symbol \""+imp.Symbol+"\" is not exported by module \""+imp.Module+"\""))
			continue
		}

		alias := imp.Symbol
		if imp.Alias != "" {
			alias = imp.Alias
		}
		res.Aliases[alias] = AliasTarget{Module: mod, Symbol: imp.Symbol}
	}

	return res, errs
}

func (r *Resolver) resolveModule(name string, pos token.Position) (*Module, *cerrors.CompilerError) {
	if m, ok := r.cache[name]; ok {
		return m, nil
	}
	if r.resolving[name] {
		// Circular import tolerated as long as no symbol is consumed before
		// the module finishes parsing (spec.md §4.2); the caller sees an
		// empty-but-present module and any symbol lookup fails naturally.
		return &Module{Name: name, Public: map[string]bool{}}, nil
	}

	path, found := r.findFile(name)
	if !found {
		return nil, cerrors.New(cerrors.ImportError, pos,
			"could not resolve module \""+name+"\" in: "+joinPaths(r.searchPaths)).
			WithHelp("searched extensions: " + joinPaths(extensions))
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.NewUnlocated(cerrors.IOError, "failed to read module \""+name+"\": "+err.Error())
	}

	r.resolving[name] = true
	prog, perr := parser.Parse(string(src), path)
	delete(r.resolving, name)
	if perr != nil {
		return nil, perr
	}

	mod := &Module{Name: name, Path: path, Program: prog, Public: publicSymbols(prog)}
	r.cache[name] = mod
	return mod, nil
}

func (r *Resolver) findFile(name string) (string, bool) {
	for _, dir := range r.searchPaths {
		for _, ext := range extensions {
			candidate := filepath.Join(dir, name+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true
			}
		}
	}
	return "", false
}

// publicSymbols collects every function and class name not marked private
// — public by default per spec.md §4.2.
func publicSymbols(prog *ast.Program) map[string]bool {
	syms := map[string]bool{}
	for _, fn := range prog.Functions {
		syms[fn.Name] = fn.Visibility != privateVisibility(fn)
	}
	for _, cls := range prog.Classes {
		syms[cls.Name] = true
	}
	return syms
}

func privateVisibility(fn *ast.Function) ast.Visibility { return ast.Private }

func joinPaths(paths []string) string {
	s := ""
	for i, p := range paths {
		if i > 0 {
			s += ", "
		}
		s += p
	}
	return s
}
