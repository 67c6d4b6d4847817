package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tablang/tabc/internal/ast"
	"github.com/tablang/tabc/internal/resolver"
)

const helloSource = "function start()\n\tinteger x = 1\n\tfloat y = 2.0\n\tfloat z = x + y\n\tprint(z.toString())\n"

func writeTabFile(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestFrontend_ValidProgram(t *testing.T) {
	path := writeTabFile(t, "hello.tab", helloSource)

	prog, src, err := frontend(path)
	if err != nil {
		t.Fatalf("frontend failed: %v", err)
	}
	if prog.StartFunction == nil {
		t.Fatal("expected a start function")
	}
	if src != helloSource {
		t.Errorf("returned source = %q, want %q", src, helloSource)
	}
}

func TestFrontend_SyntaxError(t *testing.T) {
	path := writeTabFile(t, "broken.tab", "function start(\n\tprint(1)\n")

	if _, _, err := frontend(path); err == nil {
		t.Fatal("expected a parse error for an unterminated parameter list")
	}
}

func TestFrontend_SemanticError(t *testing.T) {
	src := "function start()\n\tinteger x = 1\n\tx = \"oops\"\n"
	path := writeTabFile(t, "mismatch.tab", src)

	if _, _, err := frontend(path); err == nil {
		t.Fatal("expected a semantic error assigning a string to an integer variable")
	}
}

func TestFrontend_MissingFile(t *testing.T) {
	if _, _, err := frontend(filepath.Join(t.TempDir(), "missing.tab")); err == nil {
		t.Fatal("expected an error reading a nonexistent file")
	}
}

func TestCompileToModule_ValidProgram(t *testing.T) {
	path := writeTabFile(t, "hello.tab", helloSource)

	mod, _, err := compileToModule(path)
	if err != nil {
		t.Fatalf("compileToModule failed: %v", err)
	}

	var hasStart bool
	for _, e := range mod.Exports {
		if e.Field == "start" {
			hasStart = true
		}
	}
	if !hasStart {
		t.Error("expected a \"start\" export in the generated module")
	}
}

func TestMergeResolved_AppendsModuleDeclarations(t *testing.T) {
	start := &ast.Function{Name: "start"}
	prog := &ast.Program{Functions: []*ast.Function{start}, StartFunction: start}

	helper := &ast.Function{Name: "helper"}
	cls := &ast.Class{Name: "Widget"}
	res := &resolver.ImportResolution{
		Modules: map[string]*resolver.Module{
			"mathutils": {
				Name:    "mathutils",
				Program: &ast.Program{Functions: []*ast.Function{helper}, Classes: []*ast.Class{cls}},
			},
		},
	}

	mergeResolved(prog, res)

	if len(prog.Functions) != 2 {
		t.Fatalf("expected 2 functions after merge, got %d", len(prog.Functions))
	}
	if len(prog.Classes) != 1 || prog.Classes[0].Name != "Widget" {
		t.Fatalf("expected Widget class to be merged in, got %#v", prog.Classes)
	}
	if prog.StartFunction != start {
		t.Error("mergeResolved must not disturb the existing start function")
	}
}

func TestMergeResolved_SkipsModulesWithoutProgram(t *testing.T) {
	prog := &ast.Program{}
	res := &resolver.ImportResolution{
		Modules: map[string]*resolver.Module{"empty": {Name: "empty"}},
	}

	mergeResolved(prog, res)

	if len(prog.Functions) != 0 || len(prog.Classes) != 0 {
		t.Fatalf("expected no declarations merged from a module with a nil Program, got %#v", prog)
	}
}
