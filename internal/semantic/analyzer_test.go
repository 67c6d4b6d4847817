package semantic

import (
	"strings"
	"testing"

	"github.com/tablang/tabc/internal/ast"
	"github.com/tablang/tabc/internal/parser"
	"github.com/tablang/tabc/internal/types"
)

func analyzeSource(t *testing.T, src string) *Analyzer {
	t.Helper()
	prog, perr := parser.Parse(src, "t.tab")
	if perr != nil {
		t.Fatalf("parse error: %s", perr.Error())
	}
	a := NewAnalyzer()
	a.SetSource(src)
	a.Analyze(prog)
	return a
}

func expectNoErrors(t *testing.T, src string) {
	t.Helper()
	a := analyzeSource(t, src)
	if len(a.Errors()) != 0 {
		t.Fatalf("expected no errors, got: %v", a.Errors())
	}
}

func expectErrorContaining(t *testing.T, src, substr string) {
	t.Helper()
	a := analyzeSource(t, src)
	for _, e := range a.Errors() {
		if strings.Contains(e.Error(), substr) {
			return
		}
	}
	t.Fatalf("expected an error containing %q, got: %v", substr, a.Errors())
}

func TestWellTypedProgramHasNoErrors(t *testing.T) {
	expectNoErrors(t, "function start()\n\tinteger x = 1\n\tfloat y = 2.0\n\tfloat z = x + y\n\tprint(z.toString())\n")
}

func TestUndefinedVariableIsUnknownSymbol(t *testing.T) {
	expectErrorContaining(t, "function start()\n\tprint(missing.toString())\n", "undefined variable")
}

func TestMismatchedAssignmentIsTypeError(t *testing.T) {
	src := "function start()\n\tinteger x = 1\n\tx = \"oops\"\n"
	expectErrorContaining(t, src, "cannot assign")
}

func TestLogicalOperatorRequiresBoolean(t *testing.T) {
	src := "function start()\n\tinteger x = 1\n\tboolean y = x and true\n"
	expectErrorContaining(t, src, "requires boolean operands")
}

func TestInheritanceCycleIsDetected(t *testing.T) {
	src := "class A: B\n\tfunction f(): integer\n\t\treturn 1\n" +
		"class B: A\n\tfunction g(): integer\n\t\treturn 2\n"
	expectErrorContaining(t, src, "inheritance cycle")
}

func TestUnknownBaseClassIsInheritanceError(t *testing.T) {
	src := "class Dog: Nonexistent\n\tfunction speak(): string\n\t\treturn \"woof\"\n"
	expectErrorContaining(t, src, "unknown base class")
}

func TestDuplicateFieldIsDuplicateDefinition(t *testing.T) {
	src := "class Point\n\tinteger x\n\tinteger x\n"
	expectErrorContaining(t, src, "already defined")
}

func TestOverloadedCallsResolveByArgumentTypes(t *testing.T) {
	src := "function add(integer a, integer b): integer\n\treturn a + b\n" +
		"function add(float a, float b): float\n\treturn a + b\n" +
		"function start()\n\tinteger x = add(1, 2)\n\tfloat y = add(1.0, 2.0)\n"
	expectNoErrors(t, src)
}

func TestDuplicateSignatureIsDuplicateDefinition(t *testing.T) {
	src := "function add(integer a, integer b): integer\n\treturn a + b\n" +
		"function add(integer a, integer b): integer\n\treturn a - b\n"
	expectErrorContaining(t, src, "already defined")
}

func TestCallWithNoMatchingOverloadIsTypeError(t *testing.T) {
	src := "function add(integer a, integer b): integer\n\treturn a + b\n" +
		"function start()\n\tinteger x = add(\"a\", \"b\")\n"
	expectErrorContaining(t, src, "no overload")
}

func TestInheritedMethodCallResolves(t *testing.T) {
	src := "class Animal\n\tstring name\n\tfunction speak(): string\n\t\treturn \"...\"\n" +
		"class Dog: Animal\n\tfunction bark(): string\n\t\treturn this.speak()\n"
	expectNoErrors(t, src)
}

func TestUnresolvedFieldIsUnknownSymbol(t *testing.T) {
	src := "class Animal\n\tstring name\n" +
		"class Dog: Animal\n\tfunction bark(): string\n\t\treturn this.nickname\n"
	expectErrorContaining(t, src, "has no field")
}

func TestOnErrorHandlerBodyBindsErrorVariable(t *testing.T) {
	src := "function risky(): integer\n\treturn 1\n" +
		"function start()\n\tinteger x = risky() onError:\n\t\tprint(error.toString())\n"
	expectNoErrors(t, src)
}

func TestTypeAnnotationsAreRecordedOnExpressions(t *testing.T) {
	prog, perr := parser.Parse("function start()\n\tinteger x = 1 + 2\n", "t.tab")
	if perr != nil {
		t.Fatalf("parse error: %s", perr.Error())
	}
	a := NewAnalyzer()
	a.Analyze(prog)
	decl := prog.StartFunction.Body[0].(*ast.VarDeclStatement)
	if decl.Init.Type().Kind != types.Integer {
		t.Fatalf("expected Init expression to carry a resolved integer type, got %s", decl.Init.Type().String())
	}
}
