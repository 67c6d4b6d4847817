package wasmbin

// ValType is a WASM 1.0 value type byte.
type ValType byte

const (
	I32 ValType = 0x7f
	I64 ValType = 0x7e
	F32 ValType = 0x7d
	F64 ValType = 0x7c
)

// SectionID identifies one of the fixed WASM 1.0 module sections, in their
// required emission order (spec.md §4.4.1).
type SectionID byte

const (
	SectionCustom   SectionID = 0
	SectionType     SectionID = 1
	SectionImport   SectionID = 2
	SectionFunction SectionID = 3
	SectionTable    SectionID = 4
	SectionMemory   SectionID = 5
	SectionGlobal   SectionID = 6
	SectionExport   SectionID = 7
	SectionStart    SectionID = 8
	SectionElement  SectionID = 9
	SectionCode     SectionID = 10
	SectionData     SectionID = 11
)

// ExternalKind discriminates what an import or export entry refers to.
type ExternalKind byte

const (
	ExternalFunction ExternalKind = 0
	ExternalTable    ExternalKind = 1
	ExternalMemory   ExternalKind = 2
	ExternalGlobal   ExternalKind = 3
)

// Magic and Version are the fixed 8-byte module header.
var Magic = [4]byte{0x00, 0x61, 0x73, 0x6d}

const Version uint32 = 1

// FuncType is one entry of the type section: a (params, results) pair.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (f FuncType) equal(o FuncType) bool {
	if len(f.Params) != len(o.Params) || len(f.Results) != len(o.Results) {
		return false
	}
	for i := range f.Params {
		if f.Params[i] != o.Params[i] {
			return false
		}
	}
	for i := range f.Results {
		if f.Results[i] != o.Results[i] {
			return false
		}
	}
	return true
}

// Import is one entry of the import section.
type Import struct {
	Module string
	Field  string
	Kind   ExternalKind
	Type   uint32 // type-section index, for function imports
}

// Export is one entry of the export section.
type Export struct {
	Field string
	Kind  ExternalKind
	Index uint32
}

// Global is one entry of the global section.
type Global struct {
	Type    ValType
	Mutable bool
	InitI32 int32
}

// DataSegment is one passive-free (memory-index-0) data section entry.
type DataSegment struct {
	Offset uint32
	Bytes  []byte
}

// FunctionBody is one entry of the code section: the function's own locals
// (grouped by type, as spec.md §4.4.3 requires) plus its instruction bytes.
type FunctionBody struct {
	Locals []LocalGroup
	Code   []byte
}

// LocalGroup is a run of consecutive locals sharing one ValType, the
// grouping spec.md §4.4.3 calls for to shrink the emitted code section.
type LocalGroup struct {
	Count uint32
	Type  ValType
}

// Module accumulates the growing section contents during code generation;
// Encode serializes it to a byte-exact WASM 1.0 binary.
type Module struct {
	Types      []FuncType
	Imports    []Import
	FuncTypes  []uint32 // function section: type index per non-imported function
	MemoryMin  uint32
	Globals    []Global
	Exports    []Export
	Data       []DataSegment
	Code       []FunctionBody
}

// AddType interns ft into the type section, returning its index; identical
// signatures are deduplicated.
func (m *Module) AddType(ft FuncType) uint32 {
	for i, existing := range m.Types {
		if existing.equal(ft) {
			return uint32(i)
		}
	}
	m.Types = append(m.Types, ft)
	return uint32(len(m.Types) - 1)
}
