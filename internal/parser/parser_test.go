package parser

import (
	"testing"

	"github.com/tablang/tabc/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse(src, "t.tab")
	if err != nil {
		t.Fatalf("parse error: %s", err.Error())
	}
	return prog
}

func TestHelloInteger(t *testing.T) {
	src := "function start()\n\tinteger x = 42\n\tprint(x.toString())\n"
	prog := mustParse(t, src)
	if prog.StartFunction == nil {
		t.Fatalf("expected a start function")
	}
	if len(prog.StartFunction.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.StartFunction.Body))
	}
	decl, ok := prog.StartFunction.Body[0].(*ast.VarDeclStatement)
	if !ok || decl.Name != "x" {
		t.Fatalf("expected var decl for x, got %#v", prog.StartFunction.Body[0])
	}
}

func TestConditionalBranches(t *testing.T) {
	src := "function start()\n\tinteger x = 10\n\tif x > 5:\n\t\tprint(\"big\")\n\telse:\n\t\tprint(\"small\")\n"
	prog := mustParse(t, src)
	ifs, ok := prog.StartFunction.Body[1].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected if statement, got %#v", prog.StartFunction.Body[1])
	}
	if len(ifs.Then) != 1 || len(ifs.Else) != 1 {
		t.Fatalf("expected 1 then/else statement each, got %d/%d", len(ifs.Then), len(ifs.Else))
	}
}

func TestRangeIteration(t *testing.T) {
	src := "function start()\n\tinteger s = 0\n\tfrom 1 to 5:\n\t\ts = s + 1\n\tprint(s.toString())\n"
	prog := mustParse(t, src)
	rng, ok := prog.StartFunction.Body[1].(*ast.RangeIterateStatement)
	if !ok {
		t.Fatalf("expected range-iterate statement, got %#v", prog.StartFunction.Body[1])
	}
	if rng.Step != nil {
		t.Fatalf("expected default step (nil), got %#v", rng.Step)
	}
}

func TestArrayWalk(t *testing.T) {
	src := "function start()\n\tArray<integer> xs = [1, 2, 3]\n\titerate v in xs:\n\t\tprint(v.toString())\n"
	prog := mustParse(t, src)
	decl, ok := prog.StartFunction.Body[0].(*ast.VarDeclStatement)
	if !ok {
		t.Fatalf("expected var decl, got %#v", prog.StartFunction.Body[0])
	}
	if decl.DeclaredType.Kind != decl.DeclaredType.Kind { // sanity: Kind is comparable
		t.Fatal("unreachable")
	}
	it, ok := prog.StartFunction.Body[1].(*ast.IterateStatement)
	if !ok || it.VarName != "v" {
		t.Fatalf("expected iterate over v, got %#v", prog.StartFunction.Body[1])
	}
}

func TestStringInterpolationSplitsParts(t *testing.T) {
	src := "function start()\n\tstring name = \"world\"\n\tprint(\"hello {name}!\")\n"
	prog := mustParse(t, src)
	printStmt, ok := prog.StartFunction.Body[1].(*ast.PrintStatement)
	if !ok {
		t.Fatalf("expected print statement")
	}
	interp, ok := printStmt.Value.(*ast.StringInterpolation)
	if !ok {
		t.Fatalf("expected StringInterpolation, got %#v", printStmt.Value)
	}
	if len(interp.Parts) != 3 {
		t.Fatalf("expected 3 parts (text, expr, text), got %d", len(interp.Parts))
	}
}

func TestOverloadedFunctionsCoexist(t *testing.T) {
	src := "function add(integer a, integer b)\n\treturn a + b\nfunction add(float a, float b)\n\treturn a + b\n"
	prog := mustParse(t, src)
	if len(prog.Functions) != 2 {
		t.Fatalf("expected 2 function declarations, got %d", len(prog.Functions))
	}
	if prog.Functions[0].SignatureKey() == prog.Functions[1].SignatureKey() {
		t.Fatalf("expected distinct signature keys, got %q for both", prog.Functions[0].SignatureKey())
	}
}

func TestClassWithConstructorAndInheritance(t *testing.T) {
	src := "class Animal\n\tstring name\n\tconstructor(string n):\n\t\tthis.name = n\n\tfunction speak(): string\n\t\treturn \"...\"\n" +
		"class Dog: Animal\n\tfunction speak(): string\n\t\treturn \"Woof\"\n"
	prog := mustParse(t, src)
	if len(prog.Classes) != 2 {
		t.Fatalf("expected 2 classes, got %d", len(prog.Classes))
	}
	if prog.Classes[1].BaseClass != "Animal" {
		t.Fatalf("expected Dog to extend Animal, got %q", prog.Classes[1].BaseClass)
	}
}

func TestImportShapes(t *testing.T) {
	cases := []string{
		"import: mathutil\n",
		"import: mathutil as mu\n",
		"import: mathutil.square\n",
		"import: mathutil.square as sq\n",
	}
	for _, src := range cases {
		prog := mustParse(t, src)
		if len(prog.Imports) != 1 {
			t.Fatalf("%q: expected 1 import, got %d", src, len(prog.Imports))
		}
	}
}

func TestApplyBlockForms(t *testing.T) {
	src := "function start()\n\tinteger:\n\t\ta = 1\n\t\tb = 2\n"
	prog := mustParse(t, src)
	ab, ok := prog.StartFunction.Body[0].(*ast.ApplyBlockStatement)
	if !ok || ab.Kind != ast.TypeApply {
		t.Fatalf("expected type-apply block, got %#v", prog.StartFunction.Body[0])
	}
	if len(ab.Lines) != 2 {
		t.Fatalf("expected 2 apply lines, got %d", len(ab.Lines))
	}
}

func TestOnErrorInlineAndBlockForms(t *testing.T) {
	src := "function start()\n\tinteger x = risky() onError 0\n\tinteger y = risky() onError:\n\t\tprint(error.toString())\n"
	prog := mustParse(t, src)
	d0 := prog.StartFunction.Body[0].(*ast.VarDeclStatement)
	oe, ok := d0.Init.(*ast.OnError)
	if !ok || oe.Fallback == nil {
		t.Fatalf("expected inline onError form, got %#v", d0.Init)
	}
	d1 := prog.StartFunction.Body[1].(*ast.VarDeclStatement)
	oe2, ok := d1.Init.(*ast.OnError)
	if !ok || oe2.HandlerBody == nil {
		t.Fatalf("expected block onError form, got %#v", d1.Init)
	}
}

func TestParseWithRecoveryCollectsMultipleErrors(t *testing.T) {
	src := "function f(\nfunction g(\n"
	_, errs := ParseWithRecovery(src, "t.tab")
	if len(errs) == 0 {
		t.Fatalf("expected at least one recovered error")
	}
}
