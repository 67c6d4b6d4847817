package codegen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/tablang/tabc/internal/ast"
	"github.com/tablang/tabc/internal/types"
	"github.com/tablang/tabc/pkg/host"
)

func lit(v types.Value, t types.Type) *ast.Literal {
	l := ast.NewLiteral(ast.SourceLocation{}, v)
	l.SetType(t)
	return l
}

func TestGenerateHelloWorldExportsStartAndMemory(t *testing.T) {
	start := &ast.Function{
		Name:       "start",
		ReturnType: types.NewUnit(),
		Body: []ast.Statement{
			ast.NewPrint(ast.SourceLocation{}, lit(types.StringValue("hello"), types.NewString()), true),
		},
	}
	prog := &ast.Program{Functions: []*ast.Function{start}, StartFunction: start}

	gen := New()
	mod, errs := gen.Generate(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	var hasStart, hasMemory bool
	for _, e := range mod.Exports {
		if e.Field == "start" {
			hasStart = true
		}
		if e.Field == "memory" {
			hasMemory = true
		}
	}
	if !hasStart {
		t.Error("expected a \"start\" export")
	}
	if !hasMemory {
		t.Error("expected a \"memory\" export")
	}
	if len(mod.Imports) != len(host.Catalog) {
		t.Errorf("expected %d host imports, got %d", len(host.Catalog), len(mod.Imports))
	}
	if len(mod.Code) != 1 {
		t.Fatalf("expected exactly one compiled function, got %d", len(mod.Code))
	}
}

func TestArithmeticPromotionConvertsIntegerSideToFloat(t *testing.T) {
	left := lit(types.IntValue(1), types.NewInteger())
	right := lit(types.FloatValue(2.5), types.NewFloat())
	add := ast.NewBinaryOp(ast.SourceLocation{}, "+", left, right)
	add.SetType(types.NewFloat())

	start := &ast.Function{
		Name:       "start",
		ReturnType: types.NewFloat(),
		Body: []ast.Statement{
			ast.NewReturn(ast.SourceLocation{}, add),
		},
	}
	prog := &ast.Program{Functions: []*ast.Function{start}, StartFunction: start}

	gen := New()
	mod, errs := gen.Generate(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	dis := Disassemble(mod.Code[0].Code)
	if !strings.Contains(dis, "f64.convert_i32_s") {
		t.Errorf("expected the integer operand to be converted to f64:\n%s", dis)
	}
	if !strings.Contains(dis, "f64.add") {
		t.Errorf("expected a float add, got:\n%s", dis)
	}
}

func TestGuardedDivisionSetsErrorStatusOnZeroDivisor(t *testing.T) {
	left := lit(types.IntValue(10), types.NewInteger())
	right := lit(types.IntValue(0), types.NewInteger())
	div := ast.NewBinaryOp(ast.SourceLocation{}, "/", left, right)
	div.SetType(types.NewInteger())

	start := &ast.Function{
		Name:       "start",
		ReturnType: types.NewInteger(),
		Body: []ast.Statement{
			ast.NewReturn(ast.SourceLocation{}, div),
		},
	}
	prog := &ast.Program{Functions: []*ast.Function{start}, StartFunction: start}

	gen := New()
	mod, errs := gen.Generate(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	dis := Disassemble(mod.Code[0].Code)
	if !strings.Contains(dis, "global.set") {
		t.Errorf("expected the division guard to set errStatusGlobalIndex:\n%s", dis)
	}
	if strings.Count(dis, "i32.div_s") != 1 {
		t.Errorf("expected exactly one guarded i32.div_s:\n%s", dis)
	}
}

func TestPowerOperatorRoutesThroughHostImport(t *testing.T) {
	left := lit(types.IntValue(2), types.NewInteger())
	right := lit(types.IntValue(10), types.NewInteger())
	pow := ast.NewBinaryOp(ast.SourceLocation{}, "^", left, right)
	pow.SetType(types.NewInteger())

	start := &ast.Function{
		Name:       "start",
		ReturnType: types.NewInteger(),
		Body: []ast.Statement{
			ast.NewReturn(ast.SourceLocation{}, pow),
		},
	}
	prog := &ast.Program{Functions: []*ast.Function{start}, StartFunction: start}

	gen := New()
	mod, errs := gen.Generate(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	idx, ok := host.IndexOf("f64_pow")
	if !ok {
		t.Fatal("expected \"f64_pow\" to be in the host catalog")
	}

	dis := Disassemble(mod.Code[0].Code)
	if strings.Count(dis, "f64.convert_i32_s") != 2 {
		t.Errorf("expected both integer operands widened to f64:\n%s", dis)
	}
	if !strings.Contains(dis, fmt.Sprintf("call %d", idx)) {
		t.Errorf("expected a call to the f64_pow host import (index %d):\n%s", idx, dis)
	}
	if !strings.Contains(dis, "i32.trunc_f64_s") {
		t.Errorf("expected the f64 result narrowed back to integer:\n%s", dis)
	}
}

func TestRangeIterateDisassembly(t *testing.T) {
	body := []ast.Statement{
		ast.NewExpressionStatement(ast.SourceLocation{}, ast.NewCall(ast.SourceLocation{}, "noop", nil)),
	}
	rangeStmt := ast.NewRangeIterateStatement(
		ast.SourceLocation{}, "i",
		lit(types.IntValue(0), types.NewInteger()),
		lit(types.IntValue(9), types.NewInteger()),
		nil,
		body,
	)

	noop := &ast.Function{Name: "noop", ReturnType: types.NewUnit()}
	start := &ast.Function{
		Name:       "start",
		ReturnType: types.NewUnit(),
		Body:       []ast.Statement{rangeStmt},
	}
	prog := &ast.Program{Functions: []*ast.Function{noop, start}, StartFunction: start}

	gen := New()
	mod, errs := gen.Generate(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	dis := DisassembleModule(mod)
	snaps.MatchSnapshot(t, "range_iterate_disassembly", dis)
}

func TestRangeIterateDescendingStepPicksLessThanExitTest(t *testing.T) {
	body := []ast.Statement{
		ast.NewExpressionStatement(ast.SourceLocation{}, ast.NewCall(ast.SourceLocation{}, "noop", nil)),
	}
	rangeStmt := ast.NewRangeIterateStatement(
		ast.SourceLocation{}, "i",
		lit(types.IntValue(9), types.NewInteger()),
		lit(types.IntValue(0), types.NewInteger()),
		lit(types.IntValue(-1), types.NewInteger()),
		body,
	)

	noop := &ast.Function{Name: "noop", ReturnType: types.NewUnit()}
	start := &ast.Function{
		Name:       "start",
		ReturnType: types.NewUnit(),
		Body:       []ast.Statement{rangeStmt},
	}
	prog := &ast.Program{Functions: []*ast.Function{noop, start}, StartFunction: start}

	gen := New()
	mod, errs := gen.Generate(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	dis := Disassemble(mod.Code[1].Code) // Code[0] is noop, declared first
	if !strings.Contains(dis, "if") || !strings.Contains(dis, "else") {
		t.Errorf("expected the exit test to branch on the step's sign:\n%s", dis)
	}
	if !strings.Contains(dis, "i32.lt_s") {
		t.Errorf("expected a descending-branch i32.lt_s exit test:\n%s", dis)
	}
	if !strings.Contains(dis, "i32.gt_s") {
		t.Errorf("expected the ascending-branch i32.gt_s exit test still present:\n%s", dis)
	}
}
