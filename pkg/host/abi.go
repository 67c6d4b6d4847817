// Package host describes the fixed WASM import catalog (spec.md §6.2) that
// every module produced by internal/codegen depends on, and the interfaces
// a runtime embedder implements to actually run one. It plays the role the
// teacher's pkg/platform/{wasm,native} split plays for DWScript: a seam
// between "what the compiler assumes the world provides" and "how this
// particular process provides it."
package host

import "github.com/tablang/tabc/internal/wasmbin"

// ImportSpec is one entry of the fixed `env` import catalog a compiled
// module requires. Order here is the order import indices are assigned in
// (spec.md §4.4.2: "Imports occupy low function indices in declaration
// order, fixed per build").
type ImportSpec struct {
	Name    string
	Params  []wasmbin.ValType
	Results []wasmbin.ValType
}

// Catalog is the full §6.2 import table. Every module codegen emits
// imports the whole catalog, whether or not a given program exercises
// every entry — this keeps function indices stable across builds.
var Catalog = []ImportSpec{
	{Name: "print", Params: []wasmbin.ValType{wasmbin.I32, wasmbin.I32}},
	{Name: "printl", Params: []wasmbin.ValType{wasmbin.I32, wasmbin.I32}},
	{Name: "print_simple", Params: []wasmbin.ValType{wasmbin.I32}},
	{Name: "printl_simple", Params: []wasmbin.ValType{wasmbin.I32}},

	{Name: "int_to_string", Params: []wasmbin.ValType{wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "float_to_string", Params: []wasmbin.ValType{wasmbin.F64}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "bool_to_string", Params: []wasmbin.ValType{wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "string_to_int", Params: []wasmbin.ValType{wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "string_to_float", Params: []wasmbin.ValType{wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.F64}},

	// f64_pow backs the "^" operator: WASM 1.0 has no exponentiation
	// opcode, so codegen widens both operands to f64, calls this, and
	// narrows the result back if "^"'s own result type is integral.
	{Name: "f64_pow", Params: []wasmbin.ValType{wasmbin.F64, wasmbin.F64}, Results: []wasmbin.ValType{wasmbin.F64}},

	// string_concat/string_compare/string_builder_* are not named in §6.2's
	// table but are required by the "+", relational, and interpolation
	// lowerings §4.4.5 describes; they live in the same `env` module as the
	// rest of the catalog so the import section stays one vector.
	{Name: "string_concat", Params: []wasmbin.ValType{wasmbin.I32, wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "string_compare", Params: []wasmbin.ValType{wasmbin.I32, wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "string_builder_init", Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "string_builder_append", Params: []wasmbin.ValType{wasmbin.I32, wasmbin.I32}},
	{Name: "string_builder_finish", Params: []wasmbin.ValType{wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},

	{Name: "array_get", Params: []wasmbin.ValType{wasmbin.I32, wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "array_length", Params: []wasmbin.ValType{wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "matrix_get", Params: []wasmbin.ValType{wasmbin.I32, wasmbin.I32, wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.F64}},

	{Name: "file_read", Params: []wasmbin.ValType{wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "file_write", Params: []wasmbin.ValType{wasmbin.I32, wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "file_exists", Params: []wasmbin.ValType{wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "file_delete", Params: []wasmbin.ValType{wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "file_append", Params: []wasmbin.ValType{wasmbin.I32, wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},

	{Name: "http_get", Params: []wasmbin.ValType{wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "http_post", Params: []wasmbin.ValType{wasmbin.I32, wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "http_put", Params: []wasmbin.ValType{wasmbin.I32, wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "http_patch", Params: []wasmbin.ValType{wasmbin.I32, wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "http_delete", Params: []wasmbin.ValType{wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},

	{Name: "input", Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "input_int", Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "input_float", Results: []wasmbin.ValType{wasmbin.F64}},

	{Name: "start_background_task", Params: []wasmbin.ValType{wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "execute_background", Params: []wasmbin.ValType{wasmbin.I32}, Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "create_future", Results: []wasmbin.ValType{wasmbin.I32}},
	{Name: "resolve_future", Params: []wasmbin.ValType{wasmbin.I32, wasmbin.I32}},
}

// IndexOf returns Catalog's position for a given import name, and whether
// it exists. Codegen uses this to translate a host-builtin call into the
// matching function index (imports occupy indices 0..len(Catalog)-1).
func IndexOf(name string) (int, bool) {
	for i, spec := range Catalog {
		if spec.Name == name {
			return i, true
		}
	}
	return 0, false
}
