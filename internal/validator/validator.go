// Package validator re-decodes a module internal/codegen just produced and
// checks the structural and ABI invariants SPEC_FULL.md requires of every
// compiled output (spec.md §4.5): a memory section, a `start` export, and
// an import vector that matches pkg/host.Catalog in count, order, module
// name, field name and kind (the imports' type signatures are not
// compared). It is deliberately not a correctness oracle — it
// does not re-derive instruction-level validity, only the framing a
// conforming embedder depends on, grounded on internal/wasmbin's own
// decoder run back over the encoder's output (DESIGN.md: no teacher
// equivalent, since the teacher's bytecode format has no independent
// re-validation pass).
package validator

import (
	"fmt"

	"github.com/tablang/tabc/internal/wasmbin"
	"github.com/tablang/tabc/pkg/host"
)

// Error reports one violated invariant. Multiple violations accumulate
// rather than aborting at the first, so a single Validate call surfaces
// everything wrong with a module in one pass.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Validate decodes b and checks it against every invariant this build
// requires. It returns every violation found, or nil if b is a conforming
// module.
func Validate(b []byte) []*Error {
	d, err := wasmbin.Decode(b)
	if err != nil {
		return []*Error{newError("malformed module: %v", err)}
	}

	var errs []*Error
	errs = append(errs, checkMemory(d)...)
	errs = append(errs, checkStartExport(d)...)
	errs = append(errs, checkImportCatalog(d)...)
	return errs
}

func checkMemory(d *wasmbin.Decoded) []*Error {
	if !d.HasMemorySection {
		return []*Error{newError("module has no memory section")}
	}
	if d.MemoryMin < 1 {
		return []*Error{newError("memory section declares zero initial pages")}
	}
	return nil
}

func checkStartExport(d *wasmbin.Decoded) []*Error {
	var errs []*Error
	var hasStart, hasMemory bool
	for _, e := range d.Exports {
		switch {
		case e.Field == "start" && e.Kind == wasmbin.ExternalFunction:
			hasStart = true
		case e.Field == "memory" && e.Kind == wasmbin.ExternalMemory:
			hasMemory = true
		}
	}
	if !hasStart {
		errs = append(errs, newError("module has no \"start\" function export"))
	}
	if !hasMemory {
		errs = append(errs, newError("module has no \"memory\" export"))
	}
	return errs
}

// checkImportCatalog requires the module's import vector to be exactly
// pkg/host.Catalog, in order (spec.md §4.4.2: "fixed per build"). A
// mismatch here means the embedder's host functions and the module's call
// sites would disagree about which function index means what.
func checkImportCatalog(d *wasmbin.Decoded) []*Error {
	var errs []*Error
	if len(d.Imports) != len(host.Catalog) {
		errs = append(errs, newError(
			"expected %d host imports, found %d", len(host.Catalog), len(d.Imports)))
	}
	n := len(d.Imports)
	if len(host.Catalog) < n {
		n = len(host.Catalog)
	}
	for i := 0; i < n; i++ {
		imp := d.Imports[i]
		spec := host.Catalog[i]
		if imp.Module != "env" {
			errs = append(errs, newError("import %d: expected module \"env\", got %q", i, imp.Module))
		}
		if imp.Field != spec.Name {
			errs = append(errs, newError("import %d: expected name %q, got %q", i, spec.Name, imp.Field))
		}
		if imp.Kind != wasmbin.ExternalFunction {
			errs = append(errs, newError("import %d (%s): expected a function import", i, spec.Name))
		}
	}
	return errs
}
