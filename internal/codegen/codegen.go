// Package codegen lowers a semantically-checked ast.Program into a
// byte-exact WASM 1.0 module (spec.md §4.4). The shape is the teacher's:
// an AST-walk that emits into a growing, owned structure — here a
// wasmbin.Module instead of the teacher's bytecode Chunk — grounded on
// internal/bytecode/{compiler.go,compiler_core.go,compiler_expressions.go,
// compiler_statements.go,compiler_functions.go}.
package codegen

import (
	"fmt"

	"github.com/tablang/tabc/internal/ast"
	cerrors "github.com/tablang/tabc/internal/errors"
	"github.com/tablang/tabc/internal/types"
	"github.com/tablang/tabc/internal/wasmbin"
	"github.com/tablang/tabc/pkg/host"
)

// classInfo is the memory layout and method table for one user class,
// built once up front the way the teacher's HelperInfo is built once per
// compilation (compiler_core.go).
type classInfo struct {
	name       string
	base       string
	fieldOrder []string
	fieldOff   map[string]uint32
	fieldType  map[string]types.Type
	size       uint32 // total object size, including the 8-byte header

	tag uint32 // runtime class-tag stored at object offset 0, used by `is`

	ctorIndex   uint32
	hasCtor     bool
	methodIndex map[string]uint32
}

// Generator accumulates the WASM module across one compilation. It owns no
// state that outlives Generate (spec.md §9: "there is no global mutable
// state in the compiler").
type Generator struct {
	mod    *wasmbin.Module
	errs   []*cerrors.CompilerError
	source string

	importBase uint32 // function index of the first user-defined function

	classes map[string]*classInfo

	funcByName map[string]uint32 // free function name -> first index
	funcBySig  map[string]uint32 // free function "name(T1,T2)" -> index

	strings    *stringPool
	bumpGlobal uint32

	funcReturnType map[uint32]types.Type
}

// errStatusGlobalIndex is the mutable i32 global this build uses as the
// onError failure channel (SPEC_FULL.md open-question resolution): nonzero
// after a guarded division means "the last evaluated fallible operation
// failed." Index 0 is the bump-allocator cursor (spec.md §4.4.1).
const errStatusGlobalIndex = 1

// New creates a Generator.
func New() *Generator {
	return &Generator{
		classes:        map[string]*classInfo{},
		funcByName:     map[string]uint32{},
		funcBySig:      map[string]uint32{},
		funcReturnType: map[uint32]types.Type{},
	}
}

// SetSource attaches the original source text so emitted diagnostics can
// render a caret-annotated line, matching the other compiler stages.
func (g *Generator) SetSource(src string) { g.source = src }

func (g *Generator) addError(pos ast.SourceLocation, format string, args ...any) {
	e := cerrors.New(cerrors.CodegenError, pos, fmt.Sprintf(format, args...))
	if g.source != "" {
		e = e.WithSource(g.source)
	}
	g.errs = append(g.errs, e)
}

// Generate compiles a fully type-checked Program into a WASM 1.0 module.
// Codegen trusts the semantic pass completely (spec.md §4.4.9: "non-fatal
// conditions are impossible"); the errors it can still raise are internal
// invariant violations — an unresolved call, a missing start function, a
// static-data overflow.
func (g *Generator) Generate(prog *ast.Program) (*wasmbin.Module, []*cerrors.CompilerError) {
	g.mod = &wasmbin.Module{MemoryMin: 1}
	g.strings = newStringPool()

	g.registerHostImports()
	g.registerClasses(prog)

	userFuncs := g.collectFunctions(prog)
	if prog.StartFunction == nil {
		g.addError(ast.SourceLocation{}, "program has no start function")
		return nil, g.errs
	}

	g.assignSignatures(userFuncs)
	g.strings.collectProgram(prog)
	bumpInit := g.strings.finalize(g.mod)
	if limit := uint64(g.mod.MemoryMin) * 65536; uint64(bumpInit) > limit {
		g.addError(ast.SourceLocation{}, "static data (%d bytes) exceeds the initial memory of %d bytes", bumpInit, limit)
		return nil, g.errs
	}
	g.mod.Globals = []wasmbin.Global{
		{Type: wasmbin.I32, Mutable: true, InitI32: int32(bumpInit)},
		{Type: wasmbin.I32, Mutable: true, InitI32: 0},
	}
	g.bumpGlobal = 0

	startIndex, ok := g.funcBySig[prog.StartFunction.SignatureKey()]
	if !ok {
		g.addError(prog.StartFunction.Pos(), "internal: start function not registered")
		return nil, g.errs
	}

	g.mod.Exports = []wasmbin.Export{
		{Field: "memory", Kind: wasmbin.ExternalMemory, Index: 0},
		{Field: "start", Kind: wasmbin.ExternalFunction, Index: startIndex},
	}
	for _, uf := range userFuncs {
		if uf.testName == "" {
			continue
		}
		idx, ok := g.funcByName[uf.fn.Name]
		if !ok {
			continue
		}
		g.mod.Exports = append(g.mod.Exports, wasmbin.Export{
			Field: "test:" + uf.testName, Kind: wasmbin.ExternalFunction, Index: idx,
		})
	}

	for _, uf := range userFuncs {
		body := g.emitFunction(uf)
		g.mod.Code = append(g.mod.Code, body)
	}

	if len(g.errs) > 0 {
		return nil, g.errs
	}
	return g.mod, nil
}

func (g *Generator) registerHostImports() {
	for _, spec := range host.Catalog {
		ft := wasmbin.FuncType{Params: spec.Params, Results: spec.Results}
		idx := g.mod.AddType(ft)
		g.mod.Imports = append(g.mod.Imports, wasmbin.Import{
			Module: "env", Field: spec.Name, Kind: wasmbin.ExternalFunction, Type: idx,
		})
	}
	g.importBase = uint32(len(host.Catalog))
}

// hostFuncIndex returns the function index of a Catalog entry by name.
func (g *Generator) hostFuncIndex(name string) uint32 {
	idx, ok := host.IndexOf(name)
	if !ok {
		panic("codegen: unknown host import " + name)
	}
	return uint32(idx)
}

// registerClasses computes field layout (base fields first, own fields
// after) and a method name table for every class. Single inheritance only
// (spec.md §3), so the base chain is a simple walk, not a DAG merge.
func (g *Generator) registerClasses(prog *ast.Program) {
	byName := map[string]*ast.Class{}
	for _, c := range prog.Classes {
		byName[c.Name] = c
	}
	for i, c := range prog.Classes {
		ci := g.layoutClass(c, byName)
		ci.tag = uint32(i + 1) // 0 is reserved as "no object"
	}
}

func (g *Generator) layoutClass(c *ast.Class, byName map[string]*ast.Class) *classInfo {
	if ci, ok := g.classes[c.Name]; ok {
		return ci
	}
	ci := &classInfo{
		name:        c.Name,
		base:        c.BaseClass,
		fieldOff:    map[string]uint32{},
		fieldType:   map[string]types.Type{},
		methodIndex: map[string]uint32{},
	}
	offset := uint32(8) // 8-byte header (class tag)
	if c.BaseClass != "" {
		if base, ok := byName[c.BaseClass]; ok {
			baseInfo := g.layoutClass(base, byName)
			ci.fieldOrder = append(ci.fieldOrder, baseInfo.fieldOrder...)
			for k, v := range baseInfo.fieldOff {
				ci.fieldOff[k] = v
			}
			for k, v := range baseInfo.fieldType {
				ci.fieldType[k] = v
			}
			offset = baseInfo.size
		}
	}
	for _, f := range c.Fields {
		ci.fieldOrder = append(ci.fieldOrder, f.Name)
		ci.fieldOff[f.Name] = offset
		ci.fieldType[f.Name] = f.Type
		offset += 8
	}
	ci.size = offset
	g.classes[c.Name] = ci
	return ci
}

// userFunction bundles a *ast.Function with the receiver class it belongs
// to (empty for free functions), so one ordered list can drive both
// signature registration and code emission.
type userFunction struct {
	fn        *ast.Function
	className string
	isCtor    bool
	testName  string // set when this slot is a compiled `test "name":` block
}

// collectFunctions builds the ordered function-index space: free functions
// in declaration order, then every class's constructor and methods, then
// one zero-argument Unit function per test block (spec.md §4.4.2, §4.1).
func (g *Generator) collectFunctions(prog *ast.Program) []userFunction {
	var out []userFunction
	for _, fn := range prog.Functions {
		out = append(out, userFunction{fn: fn})
	}
	for _, c := range prog.Classes {
		if c.Constructor != nil {
			ctorFn := &ast.Function{
				Name:       "new",
				Parameters: c.Constructor.Parameters,
				ReturnType: types.NewUnit(),
				Body:       c.Constructor.Body,
			}
			out = append(out, userFunction{fn: ctorFn, className: c.Name, isCtor: true})
		}
		for _, m := range c.Methods {
			out = append(out, userFunction{fn: m, className: c.Name})
		}
	}
	for i, t := range prog.Tests {
		testFn := &ast.Function{
			Name:       fmt.Sprintf("test$%d", i),
			ReturnType: types.NewUnit(),
			Body:       t.Body,
		}
		out = append(out, userFunction{fn: testFn, testName: t.Name})
	}
	return out
}

func (g *Generator) assignSignatures(funcs []userFunction) {
	for i, uf := range funcs {
		idx := g.importBase + uint32(i)
		params := uf.fn.Parameters
		var wasmParams []wasmbin.ValType
		if uf.className != "" {
			wasmParams = append(wasmParams, wasmbin.I32) // implicit this
		}
		for _, p := range params {
			wasmParams = append(wasmParams, wasmType(p.Type))
		}
		var results []wasmbin.ValType
		if uf.fn.ReturnType.Kind != types.Unit {
			results = []wasmbin.ValType{wasmType(uf.fn.ReturnType)}
		}
		typeIdx := g.mod.AddType(wasmbin.FuncType{Params: wasmParams, Results: results})
		g.mod.FuncTypes = append(g.mod.FuncTypes, typeIdx)

		if uf.className == "" {
			sig := uf.fn.SignatureKey()
			g.funcBySig[sig] = idx
			if _, ok := g.funcByName[uf.fn.Name]; !ok {
				g.funcByName[uf.fn.Name] = idx
			}
		} else {
			ci := g.classes[uf.className]
			if uf.isCtor {
				ci.ctorIndex = idx
				ci.hasCtor = true
			} else {
				ci.methodIndex[uf.fn.Name] = idx
			}
		}
		g.funcReturnType[idx] = uf.fn.ReturnType
	}
}

// resolveFreeCall implements spec.md §4.4.5's call lookup order: exact
// signature match first, then name-only fallback.
func (g *Generator) resolveFreeCall(sigKey, name string) (uint32, types.Type, bool) {
	if idx, ok := g.funcBySig[sigKey]; ok {
		return idx, g.funcReturnType[idx], true
	}
	if idx, ok := g.funcByName[name]; ok {
		return idx, g.funcReturnType[idx], true
	}
	return 0, types.Type{}, false
}

func hostCallIndex(name string) (uint32, bool) {
	idx, ok := host.IndexOf(name)
	if !ok {
		return 0, false
	}
	return uint32(idx), true
}

// resolveMethod walks the base-class chain looking for name, since
// methodIndex only ever holds a class's own methods (spec.md §3's single
// inheritance: overriding replaces the looked-up entry, not merges it).
func (g *Generator) resolveMethod(className, name string) (uint32, types.Type, bool) {
	for cn := className; cn != ""; {
		ci, ok := g.classes[cn]
		if !ok {
			break
		}
		if idx, ok := ci.methodIndex[name]; ok {
			return idx, g.funcReturnType[idx], true
		}
		cn = ci.base
	}
	return 0, types.Type{}, false
}

func hostReturnStackType(name string) stackType {
	idx, ok := host.IndexOf(name)
	if !ok || len(host.Catalog[idx].Results) == 0 {
		return stNone
	}
	switch host.Catalog[idx].Results[0] {
	case wasmbin.I64:
		return stI64
	case wasmbin.F64:
		return stF64
	default:
		return stI32
	}
}

// wasmType implements spec.md §4.4.4's value-type mapping table. This
// language's type system has a single Float kind (no separate 32/64-bit
// Number), so Float maps to f64 throughout.
func wasmType(t types.Type) wasmbin.ValType {
	switch t.Kind {
	case types.Long, types.ULong:
		return wasmbin.I64
	case types.Float:
		return wasmbin.F64
	default:
		return wasmbin.I32
	}
}
