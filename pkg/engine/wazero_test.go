package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/tablang/tabc/internal/wasmbin"
)

// bufConsole is a host.Console over an in-memory buffer, the same role
// NativeConsole's output/input fields play in the teacher's platform tests.
type bufConsole struct {
	out bytes.Buffer
}

func (c *bufConsole) Print(s string)            { c.out.WriteString(s) }
func (c *bufConsole) PrintLn(s string)          { c.out.WriteString(s + "\n") }
func (c *bufConsole) ReadLine() (string, error) { return "", nil }

func TestConsole_PrintAndReadLine(t *testing.T) {
	var buf bytes.Buffer
	c := &Console{out: bufio.NewWriter(&buf), in: bufio.NewReader(strings.NewReader("42\n"))}

	c.Print("hello ")
	c.PrintLn("world")

	if got := buf.String(); got != "hello world\n" {
		t.Errorf("console output = %q, want %q", got, "hello world\n")
	}

	line, err := c.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if line != "42" {
		t.Errorf("ReadLine = %q, want %q", line, "42")
	}
}

// buildPrintModule hand-assembles a module that imports print_simple and
// calls it once from start with a pooled string baked into a data segment,
// the same [u32 length][bytes] layout internal/codegen's string pool uses.
func buildPrintModule(t *testing.T, message string) []byte {
	t.Helper()

	mod := &wasmbin.Module{MemoryMin: 1}

	printType := mod.AddType(wasmbin.FuncType{Params: []wasmbin.ValType{wasmbin.I32}})
	mod.Imports = append(mod.Imports, wasmbin.Import{
		Module: "env", Field: "print_simple", Kind: wasmbin.ExternalFunction, Type: printType,
	})

	startType := mod.AddType(wasmbin.FuncType{})
	mod.FuncTypes = append(mod.FuncTypes, startType)

	const strOffset = 8
	data := make([]byte, 4+len(message))
	binary.LittleEndian.PutUint32(data, uint32(len(message)))
	copy(data[4:], message)
	mod.Data = append(mod.Data, wasmbin.DataSegment{Offset: strOffset, Bytes: data})

	var code []byte
	code = append(code, 0x41) // i32.const
	code = wasmbin.PutVarint(code, strOffset)
	code = append(code, 0x10) // call print_simple (import index 0)
	code = wasmbin.PutUvarint(code, 0)
	mod.Code = append(mod.Code, wasmbin.FunctionBody{Code: code})

	mod.Exports = append(mod.Exports, wasmbin.Export{Field: "start", Kind: wasmbin.ExternalFunction, Index: 1})

	return mod.Encode()
}

func TestRuntime_Run_PrintSimple(t *testing.T) {
	data := buildPrintModule(t, "hello from wasm")
	console := &bufConsole{}
	rt := New(console)

	if err := rt.Run(context.Background(), data); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := console.out.String(); got != "hello from wasm" {
		t.Errorf("console output = %q, want %q", got, "hello from wasm")
	}
}

// buildIntToStringModule calls the host's int_to_string, which bump-allocates
// a pooled string into memory env.alloc itself grows, and feeds the result to
// printl_simple — exercising the host-side allocator path end to end.
func buildIntToStringModule(t *testing.T) []byte {
	t.Helper()

	mod := &wasmbin.Module{MemoryMin: 1}

	intToStringType := mod.AddType(wasmbin.FuncType{
		Params: []wasmbin.ValType{wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32},
	})
	mod.Imports = append(mod.Imports, wasmbin.Import{
		Module: "env", Field: "int_to_string", Kind: wasmbin.ExternalFunction, Type: intToStringType,
	})

	printlType := mod.AddType(wasmbin.FuncType{Params: []wasmbin.ValType{wasmbin.I32}})
	mod.Imports = append(mod.Imports, wasmbin.Import{
		Module: "env", Field: "printl_simple", Kind: wasmbin.ExternalFunction, Type: printlType,
	})

	startType := mod.AddType(wasmbin.FuncType{})
	mod.FuncTypes = append(mod.FuncTypes, startType)

	var code []byte
	code = append(code, 0x41) // i32.const 42
	code = wasmbin.PutVarint(code, 42)
	code = append(code, 0x10) // call int_to_string (import index 0)
	code = wasmbin.PutUvarint(code, 0)
	code = append(code, 0x10) // call printl_simple (import index 1)
	code = wasmbin.PutUvarint(code, 1)
	mod.Code = append(mod.Code, wasmbin.FunctionBody{Code: code})

	mod.Exports = append(mod.Exports, wasmbin.Export{Field: "start", Kind: wasmbin.ExternalFunction, Index: 2})

	return mod.Encode()
}

func TestRuntime_Run_IntToString(t *testing.T) {
	data := buildIntToStringModule(t)
	console := &bufConsole{}
	rt := New(console)

	if err := rt.Run(context.Background(), data); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := console.out.String(); got != "42\n" {
		t.Errorf("console output = %q, want %q", got, "42\n")
	}
}

func TestRuntime_Run_MissingStart(t *testing.T) {
	mod := &wasmbin.Module{}
	rt := New(&bufConsole{})

	if err := rt.Run(context.Background(), mod.Encode()); err == nil {
		t.Fatal("expected error for a module with no exported \"start\" function")
	}
}
