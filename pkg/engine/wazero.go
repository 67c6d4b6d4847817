// Package engine implements pkg/host.Executor against wazero
// (github.com/tetratelabs/wazero), a pure-Go WASM runtime. It plays the
// role the teacher's pkg/platform.NativePlatform plays for DWScript: the
// concrete thing that turns the compiler's abstract host contract
// (pkg/host.Catalog) into real syscalls — wired here to wazero's
// host-module builder instead of directly into an AST-walking
// interpreter's builtin table.
package engine

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/tablang/tabc/pkg/host"
)

// wasmPageSize is fixed by the spec (64KiB per WASM 1.0 memory page).
const wasmPageSize = 65536

// Runtime is a host.Executor. One Runtime can run many modules; each Run
// call gets its own isolated wazero runtime and env state, so two
// concurrent Run calls never share a string-builder table or heap cursor.
type Runtime struct {
	console host.Console
}

// New creates a Runtime that routes print/printl/input* through console.
func New(console host.Console) *Runtime {
	return &Runtime{console: console}
}

var _ host.Executor = (*Runtime)(nil)

// Run instantiates module, wires pkg/host.Catalog to env's implementation,
// and calls its exported "start" function.
func (rt *Runtime) Run(ctx context.Context, module []byte) error {
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	e := &env{console: rt.console, builders: map[uint32]*strings.Builder{}}
	if err := e.register(ctx, r); err != nil {
		return fmt.Errorf("failed to register host imports: %w", err)
	}

	compiled, err := r.CompileModule(ctx, module)
	if err != nil {
		return fmt.Errorf("invalid module: %w", err)
	}

	mod, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		return fmt.Errorf("failed to instantiate module: %w", err)
	}
	defer mod.Close(ctx)

	start := mod.ExportedFunction("start")
	if start == nil {
		return fmt.Errorf("module has no exported \"start\" function")
	}
	_, err = start.Call(ctx)
	return err
}

// env backs one Run call's worth of pkg/host.Catalog state: the
// string-builder table string_builder_* needs, and a bump cursor for
// host-initiated allocations (int_to_string and friends hand the guest a
// pooled string it never itself allocated). The guest's own bump allocator
// (internal/codegen's errStatusGlobalIndex's sibling global) never grows
// memory, so every page env.alloc grows the module into is otherwise
// unreachable to the guest — the two heaps can't collide.
type env struct {
	console     host.Console
	builders    map[uint32]*strings.Builder
	nextBuilder uint32
	heap        uint32
	heapSet     bool
}

func (e *env) register(ctx context.Context, r wazero.Runtime) error {
	b := r.NewHostModuleBuilder("env")

	b.NewFunctionBuilder().WithFunc(e.print).Export("print")
	b.NewFunctionBuilder().WithFunc(e.printl).Export("printl")
	b.NewFunctionBuilder().WithFunc(e.printSimple).Export("print_simple")
	b.NewFunctionBuilder().WithFunc(e.printlSimple).Export("printl_simple")

	b.NewFunctionBuilder().WithFunc(e.intToString).Export("int_to_string")
	b.NewFunctionBuilder().WithFunc(e.floatToString).Export("float_to_string")
	b.NewFunctionBuilder().WithFunc(e.boolToString).Export("bool_to_string")
	b.NewFunctionBuilder().WithFunc(e.stringToInt).Export("string_to_int")
	b.NewFunctionBuilder().WithFunc(e.stringToFloat).Export("string_to_float")

	b.NewFunctionBuilder().WithFunc(e.f64Pow).Export("f64_pow")

	b.NewFunctionBuilder().WithFunc(e.stringConcat).Export("string_concat")
	b.NewFunctionBuilder().WithFunc(e.stringCompare).Export("string_compare")
	b.NewFunctionBuilder().WithFunc(e.builderInit).Export("string_builder_init")
	b.NewFunctionBuilder().WithFunc(e.builderAppend).Export("string_builder_append")
	b.NewFunctionBuilder().WithFunc(e.builderFinish).Export("string_builder_finish")

	b.NewFunctionBuilder().WithFunc(e.arrayGet).Export("array_get")
	b.NewFunctionBuilder().WithFunc(e.arrayLength).Export("array_length")
	b.NewFunctionBuilder().WithFunc(e.matrixGet).Export("matrix_get")

	b.NewFunctionBuilder().WithFunc(e.fileRead).Export("file_read")
	b.NewFunctionBuilder().WithFunc(e.fileWrite).Export("file_write")
	b.NewFunctionBuilder().WithFunc(e.fileExists).Export("file_exists")
	b.NewFunctionBuilder().WithFunc(e.fileDelete).Export("file_delete")
	b.NewFunctionBuilder().WithFunc(e.fileAppend).Export("file_append")

	// The CLI executor has no network sandboxing policy, so the http_*
	// quartet always reports failure rather than silently reaching the
	// network; an embedder that wants them supplies its own Executor.
	b.NewFunctionBuilder().WithFunc(e.httpUnsupported1).Export("http_get")
	b.NewFunctionBuilder().WithFunc(e.httpUnsupported2).Export("http_post")
	b.NewFunctionBuilder().WithFunc(e.httpUnsupported2).Export("http_put")
	b.NewFunctionBuilder().WithFunc(e.httpUnsupported2).Export("http_patch")
	b.NewFunctionBuilder().WithFunc(e.httpUnsupported1).Export("http_delete")

	b.NewFunctionBuilder().WithFunc(e.input).Export("input")
	b.NewFunctionBuilder().WithFunc(e.inputInt).Export("input_int")
	b.NewFunctionBuilder().WithFunc(e.inputFloat).Export("input_float")

	// Background tasks and futures need a scheduler this synchronous CLI
	// runner doesn't have; start_background_task/execute_background run
	// their argument inline instead of concurrently, and futures resolve
	// immediately — correct for single-threaded scripts, not a faithful
	// async implementation.
	b.NewFunctionBuilder().WithFunc(e.runInline).Export("start_background_task")
	b.NewFunctionBuilder().WithFunc(e.runInline).Export("execute_background")
	b.NewFunctionBuilder().WithFunc(e.createFuture).Export("create_future")
	b.NewFunctionBuilder().WithFunc(e.resolveFuture).Export("resolve_future")

	_, err := b.Instantiate(ctx)
	return err
}

// readPooledString reads the [u32 length][UTF-8 bytes] layout
// internal/codegen's string pool and string builder both produce.
func readPooledString(ctx context.Context, m api.Module, ptr uint32) string {
	length, ok := m.Memory().ReadUint32Le(ctx, ptr)
	if !ok {
		return ""
	}
	b, ok := m.Memory().Read(ctx, ptr+4, length)
	if !ok {
		return ""
	}
	return string(b)
}

// alloc bump-allocates len(data)+4 bytes beyond the module's current
// memory size, growing it by whole pages as needed, and writes data as a
// pooled string ([u32 length][bytes]) there.
func (e *env) alloc(ctx context.Context, m api.Module, data []byte) uint32 {
	mem := m.Memory()
	if !e.heapSet {
		e.heap = mem.Size(ctx)
		e.heapSet = true
	}
	need := uint32(4 + len(data))
	for e.heap+need > mem.Size(ctx) {
		pages := (need + wasmPageSize - 1) / wasmPageSize
		if _, ok := mem.Grow(ctx, pages); !ok {
			return 0
		}
	}
	ptr := e.heap
	mem.WriteUint32Le(ctx, ptr, uint32(len(data)))
	mem.Write(ctx, ptr+4, data)
	e.heap += need
	return ptr
}

func (e *env) print(ctx context.Context, m api.Module, ptr, length uint32) {
	b, _ := m.Memory().Read(ctx, ptr, length)
	e.console.Print(string(b))
}

func (e *env) printl(ctx context.Context, m api.Module, ptr, length uint32) {
	b, _ := m.Memory().Read(ctx, ptr, length)
	e.console.PrintLn(string(b))
}

func (e *env) printSimple(ctx context.Context, m api.Module, ptr uint32) {
	e.console.Print(readPooledString(ctx, m, ptr))
}

func (e *env) printlSimple(ctx context.Context, m api.Module, ptr uint32) {
	e.console.PrintLn(readPooledString(ctx, m, ptr))
}

func (e *env) intToString(ctx context.Context, m api.Module, v int32) uint32 {
	return e.alloc(ctx, m, []byte(strconv.FormatInt(int64(v), 10)))
}

func (e *env) floatToString(ctx context.Context, m api.Module, v float64) uint32 {
	return e.alloc(ctx, m, []byte(strconv.FormatFloat(v, 'g', -1, 64)))
}

func (e *env) boolToString(ctx context.Context, m api.Module, v uint32) uint32 {
	if v != 0 {
		return e.alloc(ctx, m, []byte("true"))
	}
	return e.alloc(ctx, m, []byte("false"))
}

func (e *env) stringToInt(ctx context.Context, m api.Module, ptr uint32) int32 {
	n, _ := strconv.ParseInt(strings.TrimSpace(readPooledString(ctx, m, ptr)), 10, 32)
	return int32(n)
}

func (e *env) stringToFloat(ctx context.Context, m api.Module, ptr uint32) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(readPooledString(ctx, m, ptr)), 64)
	return f
}

func (e *env) f64Pow(_ context.Context, _ api.Module, base, exp float64) float64 {
	return math.Pow(base, exp)
}

func (e *env) stringConcat(ctx context.Context, m api.Module, aPtr, bPtr uint32) uint32 {
	s := readPooledString(ctx, m, aPtr) + readPooledString(ctx, m, bPtr)
	return e.alloc(ctx, m, []byte(s))
}

func (e *env) stringCompare(ctx context.Context, m api.Module, aPtr, bPtr uint32) int32 {
	return int32(strings.Compare(readPooledString(ctx, m, aPtr), readPooledString(ctx, m, bPtr)))
}

func (e *env) builderInit(context.Context, api.Module) uint32 {
	id := e.nextBuilder
	e.nextBuilder++
	e.builders[id] = &strings.Builder{}
	return id
}

func (e *env) builderAppend(ctx context.Context, m api.Module, id, strPtr uint32) {
	if sb, ok := e.builders[id]; ok {
		sb.WriteString(readPooledString(ctx, m, strPtr))
	}
}

func (e *env) builderFinish(ctx context.Context, m api.Module, id uint32) uint32 {
	sb, ok := e.builders[id]
	if !ok {
		return e.alloc(ctx, m, nil)
	}
	delete(e.builders, id)
	return e.alloc(ctx, m, []byte(sb.String()))
}

// arrayGet returns the address of element index within the [u32
// length][u32 elemSize][elements] layout internal/codegen's array
// literals produce; the caller loads the value itself (spec.md §4.4.4's
// array representation leaves element access untyped at the host seam).
func (e *env) arrayGet(ctx context.Context, m api.Module, arrayPtr, index uint32) uint32 {
	elemSize, _ := m.Memory().ReadUint32Le(ctx, arrayPtr+4)
	return arrayPtr + 8 + index*elemSize
}

func (e *env) arrayLength(ctx context.Context, m api.Module, arrayPtr uint32) uint32 {
	n, _ := m.Memory().ReadUint32Le(ctx, arrayPtr)
	return n
}

// matrixGet returns the f64 element at (row, col) in the [u32 rows][u32
// cols][f64 elements] layout internal/codegen's matrix literals produce.
func (e *env) matrixGet(ctx context.Context, m api.Module, matrixPtr, row, col uint32) float64 {
	cols, _ := m.Memory().ReadUint32Le(ctx, matrixPtr+4)
	offset := matrixPtr + 8 + (row*cols+col)*8
	v, _ := m.Memory().ReadFloat64Le(ctx, offset)
	return v
}

func (e *env) fileRead(ctx context.Context, m api.Module, pathPtr uint32) uint32 {
	data, err := os.ReadFile(readPooledString(ctx, m, pathPtr))
	if err != nil {
		return 0
	}
	return e.alloc(ctx, m, data)
}

func (e *env) fileWrite(ctx context.Context, m api.Module, pathPtr, dataPtr uint32) uint32 {
	path := readPooledString(ctx, m, pathPtr)
	data := readPooledString(ctx, m, dataPtr)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return 0
	}
	return 1
}

func (e *env) fileExists(ctx context.Context, m api.Module, pathPtr uint32) uint32 {
	if _, err := os.Stat(readPooledString(ctx, m, pathPtr)); err != nil {
		return 0
	}
	return 1
}

func (e *env) fileDelete(ctx context.Context, m api.Module, pathPtr uint32) uint32 {
	if err := os.Remove(readPooledString(ctx, m, pathPtr)); err != nil {
		return 0
	}
	return 1
}

func (e *env) fileAppend(ctx context.Context, m api.Module, pathPtr, dataPtr uint32) uint32 {
	path := readPooledString(ctx, m, pathPtr)
	data := readPooledString(ctx, m, dataPtr)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0
	}
	defer f.Close()
	if _, err := f.WriteString(data); err != nil {
		return 0
	}
	return 1
}

func (e *env) httpUnsupported1(ctx context.Context, m api.Module, _ uint32) uint32 {
	return e.alloc(ctx, m, nil)
}

func (e *env) httpUnsupported2(ctx context.Context, m api.Module, _, _ uint32) uint32 {
	return e.alloc(ctx, m, nil)
}

func (e *env) input(ctx context.Context, m api.Module) uint32 {
	line, err := e.console.ReadLine()
	if err != nil {
		return e.alloc(ctx, m, nil)
	}
	return e.alloc(ctx, m, []byte(line))
}

func (e *env) inputInt(_ context.Context, _ api.Module) int32 {
	line, err := e.console.ReadLine()
	if err != nil {
		return 0
	}
	n, _ := strconv.ParseInt(strings.TrimSpace(line), 10, 32)
	return int32(n)
}

func (e *env) inputFloat(_ context.Context, _ api.Module) float64 {
	line, err := e.console.ReadLine()
	if err != nil {
		return math.NaN()
	}
	f, _ := strconv.ParseFloat(strings.TrimSpace(line), 64)
	return f
}

func (e *env) runInline(_ context.Context, _ api.Module, handle uint32) uint32 {
	return handle
}

func (e *env) createFuture(_ context.Context, _ api.Module) uint32 {
	e.nextBuilder++
	return e.nextBuilder
}

func (e *env) resolveFuture(_ context.Context, _ api.Module, _, _ uint32) {}

// Console is a thin host.Console over stdio, the Runtime default.
type Console struct {
	out *bufio.Writer
	in  *bufio.Reader
}

// NewConsole wires a Console to the process's own stdout/stdin.
func NewConsole() *Console {
	return &Console{out: bufio.NewWriter(os.Stdout), in: bufio.NewReader(os.Stdin)}
}

func (c *Console) Print(s string) { fmt.Fprint(c.out, s); c.out.Flush() }

func (c *Console) PrintLn(s string) { fmt.Fprintln(c.out, s); c.out.Flush() }

func (c *Console) ReadLine() (string, error) {
	line, err := c.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

var _ host.Console = (*Console)(nil)
