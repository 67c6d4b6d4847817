package codegen

import (
	"bytes"

	"github.com/tablang/tabc/internal/ast"
	"github.com/tablang/tabc/internal/types"
	"github.com/tablang/tabc/internal/wasmbin"
)

// funcGen is the per-function codegen state: local slots, their types, and
// the growing instruction buffer. It is discarded once the function is
// finalized (spec.md §4.4.8's Start→LocalsDeclared→BodyEmitted→Finalized
// state machine — states are implicit in which fields are populated when).
type funcGen struct {
	gen       *Generator
	className string
	funcName  string
	isCtor    bool
	code      bytes.Buffer

	localIndex map[string]uint32
	localType  map[string]types.Type
	nextLocal  uint32
	extraTypes []wasmbin.ValType // local declarations beyond the parameters
	tmpCounter int

	returnType types.Type
}

func (g *Generator) emitFunction(uf userFunction) wasmbin.FunctionBody {
	fg := &funcGen{
		gen:        g,
		className:  uf.className,
		funcName:   uf.fn.Name,
		isCtor:     uf.isCtor,
		localIndex: map[string]uint32{},
		localType:  map[string]types.Type{},
		returnType: uf.fn.ReturnType,
	}

	if uf.className != "" {
		fg.declareLocal("this", types.NewObject(uf.className))
	}
	for _, p := range uf.fn.Parameters {
		fg.declareLocal(p.Name, p.Type)
	}

	fg.emitStatements(uf.fn.Body)

	// A function whose static return type is non-Unit but whose body falls
	// off the end without an explicit `return` would leave the WASM
	// validator's block-result check unsatisfied; codegen trusts the
	// semantic pass to have rejected that program already (spec.md §4.4.9),
	// so no synthetic trailing return is emitted here beyond Unit's own
	// no-value convention.

	return wasmbin.FunctionBody{
		Locals: groupLocals(fg.extraTypes),
		Code:   fg.code.Bytes(),
	}
}

func groupLocals(types []wasmbin.ValType) []wasmbin.LocalGroup {
	var groups []wasmbin.LocalGroup
	for _, t := range types {
		if n := len(groups); n > 0 && groups[n-1].Type == t {
			groups[n-1].Count++
			continue
		}
		groups = append(groups, wasmbin.LocalGroup{Count: 1, Type: t})
	}
	return groups
}

// declareLocal allocates a new local slot for name, shadowing any previous
// binding of the same name in this function (this language has no nested
// block-scoped shadowing to preserve — every name in a function body
// resolves to its most recent declaration).
func (fg *funcGen) declareLocal(name string, t types.Type) uint32 {
	idx := fg.nextLocal
	fg.nextLocal++
	fg.localIndex[name] = idx
	fg.localType[name] = t
	return idx
}

// declareBodyLocal is declareLocal for a local introduced inside the body
// (not a parameter/this) — these contribute to the code section's local
// vector.
func (fg *funcGen) declareBodyLocal(name string, t types.Type) uint32 {
	idx := fg.declareLocal(name, t)
	fg.extraTypes = append(fg.extraTypes, wasmType(t))
	return idx
}

func (fg *funcGen) emit(b ...byte) { fg.code.Write(b) }

func (fg *funcGen) emitUvarint(v uint64) { fg.code.Write(wasmbin.PutUvarint(nil, v)) }
func (fg *funcGen) emitVarint(v int64)   { fg.code.Write(wasmbin.PutVarint(nil, v)) }

func (fg *funcGen) emitLocalGet(idx uint32) {
	fg.emit(opLocalGet)
	fg.emitUvarint(uint64(idx))
}

func (fg *funcGen) emitLocalSet(idx uint32) {
	fg.emit(opLocalSet)
	fg.emitUvarint(uint64(idx))
}

func (fg *funcGen) emitCallIndex(funcIndex uint32) {
	fg.emit(opCall)
	fg.emitUvarint(uint64(funcIndex))
}

func (fg *funcGen) addError(pos ast.SourceLocation, format string, args ...any) {
	fg.gen.addError(pos, format, args...)
}
