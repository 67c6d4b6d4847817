package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tablang/tabc/internal/ast"
	cerrors "github.com/tablang/tabc/internal/errors"
	"github.com/tablang/tabc/internal/parser"
)

func writeModule(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".tab"), []byte(src), 0o644); err != nil {
		t.Fatalf("writing fixture module: %v", err)
	}
}

func parseFixture(t *testing.T, src string) (*ast.Program, *cerrors.CompilerError) {
	t.Helper()
	return parser.Parse(src, "t.tab")
}

func TestResolveWholeModuleImport(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mathutil", "function square(integer n)\n\treturn n * n\n")

	src := "import: mathutil\nfunction start()\n\tprint(\"ok\")\n"
	prog, err := parseFixture(t, src)
	if err != nil {
		t.Fatalf("parse: %s", err.Error())
	}

	r := New([]string{dir})
	res, errs := r.Resolve(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := res.Modules["mathutil"]; !ok {
		t.Fatalf("expected mathutil to be resolved as a whole module")
	}
}

func TestResolveWholeModuleImportWithAlias(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mathutil", "function square(integer n)\n\treturn n * n\n")

	src := "import: mathutil as mu\nfunction start()\n\tprint(\"ok\")\n"
	prog, _ := parseFixture(t, src)

	r := New([]string{dir})
	res, errs := r.Resolve(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := res.Modules["mu"]; !ok {
		t.Fatalf("expected alias \"mu\" to be registered")
	}
}

func TestResolveSingleSymbolImport(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mathutil", "function square(integer n)\n\treturn n * n\n")

	src := "import: mathutil.square\nfunction start()\n\tprint(\"ok\")\n"
	prog, _ := parseFixture(t, src)

	r := New([]string{dir})
	res, errs := r.Resolve(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	target, ok := res.Aliases["square"]
	if !ok || target.Symbol != "square" {
		t.Fatalf("expected \"square\" to resolve as a symbol alias, got %#v", res.Aliases)
	}
}

func TestResolveSingleSymbolImportWithAlias(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mathutil", "function square(integer n)\n\treturn n * n\n")

	src := "import: mathutil.square as sq\nfunction start()\n\tprint(\"ok\")\n"
	prog, _ := parseFixture(t, src)

	r := New([]string{dir})
	res, errs := r.Resolve(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := res.Aliases["sq"]; !ok {
		t.Fatalf("expected alias \"sq\" to be registered")
	}
}

func TestResolveMissingModuleProducesImportError(t *testing.T) {
	dir := t.TempDir()
	src := "import: nosuchmodule\nfunction start()\n\tprint(\"ok\")\n"
	prog, _ := parseFixture(t, src)

	r := New([]string{dir})
	_, errs := r.Resolve(prog)
	if len(errs) != 1 || errs[0].Kind != cerrors.ImportError {
		t.Fatalf("expected a single ImportError, got %v", errs)
	}
}

func TestResolveMissingSymbolProducesSymbolError(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mathutil", "function square(integer n)\n\treturn n * n\n")

	src := "import: mathutil.cube\nfunction start()\n\tprint(\"ok\")\n"
	prog, _ := parseFixture(t, src)

	r := New([]string{dir})
	_, errs := r.Resolve(prog)
	if len(errs) != 1 || errs[0].Kind != cerrors.SymbolError {
		t.Fatalf("expected a single SymbolError, got %v", errs)
	}
}

func TestResolveCachesParsedModules(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mathutil", "function square(integer n)\n\treturn n * n\n")

	src := "import: mathutil.square\nimport: mathutil.square as sq2\nfunction start()\n\tprint(\"ok\")\n"
	prog, _ := parseFixture(t, src)

	r := New([]string{dir})
	res, errs := r.Resolve(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if res.Aliases["square"].Module != res.Aliases["sq2"].Module {
		t.Fatalf("expected both imports to share the same cached *Module")
	}
}

func TestResolveToleratesCircularImport(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a", "import: b\nfunction fromA()\n\treturn 1\n")
	writeModule(t, dir, "b", "import: a\nfunction fromB()\n\treturn 2\n")

	src := "import: a\nfunction start()\n\tprint(\"ok\")\n"
	prog, _ := parseFixture(t, src)

	r := New([]string{dir})
	if _, errs := r.Resolve(prog); len(errs) != 0 {
		t.Fatalf("unexpected errors resolving entrypoint: %v", errs)
	}
}
