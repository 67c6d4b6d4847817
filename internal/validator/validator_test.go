package validator

import (
	"testing"

	"github.com/tablang/tabc/internal/ast"
	"github.com/tablang/tabc/internal/codegen"
	"github.com/tablang/tabc/internal/types"
	"github.com/tablang/tabc/internal/wasmbin"
)

func compileMinimalProgram(t *testing.T) []byte {
	t.Helper()
	start := &ast.Function{Name: "start", ReturnType: types.NewUnit()}
	prog := &ast.Program{Functions: []*ast.Function{start}, StartFunction: start}

	gen := codegen.New()
	mod, errs := gen.Generate(prog)
	if len(errs) != 0 {
		t.Fatalf("codegen failed: %v", errs)
	}
	return mod.Encode()
}

func TestValidateAcceptsACleanModule(t *testing.T) {
	b := compileMinimalProgram(t)
	if errs := Validate(b); len(errs) != 0 {
		t.Fatalf("expected no violations, got: %v", errs)
	}
}

func TestValidateRejectsTruncatedInput(t *testing.T) {
	errs := Validate([]byte{0x00, 0x61, 0x73})
	if len(errs) == 0 {
		t.Fatal("expected a malformed-module error")
	}
}

func TestValidateRejectsMissingStartExport(t *testing.T) {
	b := compileMinimalProgram(t)
	mod, err := wasmbin.Decode(b)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	var noStart []wasmbin.Export
	for _, e := range mod.Exports {
		if e.Field != "start" {
			noStart = append(noStart, e)
		}
	}
	errs := checkStartExport(&wasmbin.Decoded{Exports: noStart})
	if len(errs) == 0 {
		t.Fatal("expected a missing-start-export violation")
	}
}
