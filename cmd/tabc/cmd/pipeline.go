package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tablang/tabc/internal/ast"
	"github.com/tablang/tabc/internal/codegen"
	cerrors "github.com/tablang/tabc/internal/errors"
	"github.com/tablang/tabc/internal/parser"
	"github.com/tablang/tabc/internal/resolver"
	"github.com/tablang/tabc/internal/semantic"
	"github.com/tablang/tabc/internal/wasmbin"
)

// frontend runs every stage short of code generation over one source
// file: parsing (with recovery, so a single run reports every syntax
// error it finds), import resolution, and semantic analysis. It is the
// shared first half of check/compile/run, the same staged pipeline the
// teacher's compileScript runs, minus the unit/bytecode split this
// language has no equivalent of.
func frontend(filename string) (*ast.Program, string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	src := string(content)

	prog, errs := parser.ParseWithRecovery(src, filename)
	if len(errs) > 0 {
		fmt.Fprint(os.Stderr, cerrors.FormatErrors(errs, true))
		return nil, src, fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	dirs := append(append([]string{}, importPaths...), filepath.Dir(filename))
	res, errs := resolver.New(dirs).Resolve(prog)
	if len(errs) > 0 {
		fmt.Fprint(os.Stderr, cerrors.FormatErrors(errs, true))
		return nil, src, fmt.Errorf("import resolution failed with %d error(s)", len(errs))
	}
	mergeResolved(prog, res)

	analyzer := semantic.NewAnalyzer()
	analyzer.SetSource(src)
	if errs := analyzer.Analyze(prog); len(errs) > 0 {
		fmt.Fprint(os.Stderr, cerrors.FormatErrors(errs, true))
		return nil, src, fmt.Errorf("semantic analysis failed with %d error(s)", len(errs))
	}

	return prog, src, nil
}

// mergeResolved flattens every bare-module import's functions and classes
// into the compiling program's own declaration lists. Neither
// internal/semantic nor internal/codegen has a notion of a qualified
// module namespace (spec.md §4.2 leaves that to a later revision), so a
// resolved module's public surface becomes, in effect, part of the
// compiling program once resolution succeeds.
func mergeResolved(prog *ast.Program, res *resolver.ImportResolution) {
	for _, mod := range res.Modules {
		if mod.Program == nil {
			continue
		}
		prog.Functions = append(prog.Functions, mod.Program.Functions...)
		prog.Classes = append(prog.Classes, mod.Program.Classes...)
	}
}

// compileToModule runs frontend and then code generation, returning the
// encodable module plus the original source (for any diagnostic a later
// stage, such as validation, needs to render against).
func compileToModule(filename string) (*wasmbin.Module, string, error) {
	prog, src, err := frontend(filename)
	if err != nil {
		return nil, src, err
	}

	gen := codegen.New()
	gen.SetSource(src)
	mod, errs := gen.Generate(prog)
	if len(errs) > 0 {
		fmt.Fprint(os.Stderr, cerrors.FormatErrors(errs, true))
		return nil, src, fmt.Errorf("code generation failed with %d error(s)", len(errs))
	}
	return mod, src, nil
}
