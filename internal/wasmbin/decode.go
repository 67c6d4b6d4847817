package wasmbin

import (
	"encoding/binary"
	"fmt"
)

// Decoded is the structural facts the validator needs back out of an
// emitted binary: it does not reconstruct instruction semantics, only
// section framing, names, and counts (spec.md §4.5 "not a correctness
// oracle — a belt-and-braces gate").
type Decoded struct {
	HasMemorySection bool
	MemoryMin        uint32
	Imports          []Import
	Exports          []Export
	FuncTypeCount    int
	CodeBodyCount    int
}

// Decode parses the section framing of a WASM binary produced by Encode.
// It returns an error for a malformed header or a truncated section, but
// does not validate instruction bytes.
func Decode(b []byte) (*Decoded, error) {
	if len(b) < 8 {
		return nil, fmt.Errorf("wasmbin: input too short for a module header")
	}
	if !bytesEqual(b[0:4], Magic[:]) {
		return nil, fmt.Errorf("wasmbin: bad magic bytes")
	}
	if binary.LittleEndian.Uint32(b[4:8]) != Version {
		return nil, fmt.Errorf("wasmbin: unsupported version")
	}

	d := &Decoded{}
	pos := 8
	for pos < len(b) {
		id := SectionID(b[pos])
		pos++
		size, n := Uvarint(b[pos:])
		if n == 0 {
			return nil, fmt.Errorf("wasmbin: truncated section length at byte %d", pos)
		}
		pos += n
		if pos+int(size) > len(b) {
			return nil, fmt.Errorf("wasmbin: section %d overruns module (declared %d bytes)", id, size)
		}
		payload := b[pos : pos+int(size)]
		pos += int(size)

		switch id {
		case SectionMemory:
			d.HasMemorySection = true
			if len(payload) >= 2 {
				min, _ := Uvarint(payload[2:])
				d.MemoryMin = uint32(min)
			}
		case SectionImport:
			imports, err := decodeImports(payload)
			if err != nil {
				return nil, err
			}
			d.Imports = imports
		case SectionExport:
			exports, err := decodeExports(payload)
			if err != nil {
				return nil, err
			}
			d.Exports = exports
		case SectionType:
			count, _ := Uvarint(payload)
			d.FuncTypeCount = int(count)
		case SectionCode:
			count, _ := Uvarint(payload)
			d.CodeBodyCount = int(count)
		}
	}
	return d, nil
}

func decodeImports(payload []byte) ([]Import, error) {
	count, n := Uvarint(payload)
	pos := n
	imports := make([]Import, 0, count)
	for i := uint64(0); i < count; i++ {
		mod, adv, err := decodeName(payload[pos:])
		if err != nil {
			return nil, err
		}
		pos += adv
		field, adv, err := decodeName(payload[pos:])
		if err != nil {
			return nil, err
		}
		pos += adv
		if pos >= len(payload) {
			return nil, fmt.Errorf("wasmbin: truncated import entry")
		}
		kind := ExternalKind(payload[pos])
		pos++
		var typeIdx uint64
		if kind == ExternalFunction {
			typeIdx, adv = Uvarint(payload[pos:])
			pos += adv
		}
		imports = append(imports, Import{Module: mod, Field: field, Kind: kind, Type: uint32(typeIdx)})
	}
	return imports, nil
}

func decodeExports(payload []byte) ([]Export, error) {
	count, n := Uvarint(payload)
	pos := n
	exports := make([]Export, 0, count)
	for i := uint64(0); i < count; i++ {
		field, adv, err := decodeName(payload[pos:])
		if err != nil {
			return nil, err
		}
		pos += adv
		if pos >= len(payload) {
			return nil, fmt.Errorf("wasmbin: truncated export entry")
		}
		kind := ExternalKind(payload[pos])
		pos++
		idx, adv := Uvarint(payload[pos:])
		pos += adv
		exports = append(exports, Export{Field: field, Kind: kind, Index: uint32(idx)})
	}
	return exports, nil
}

func decodeName(b []byte) (string, int, error) {
	length, n := Uvarint(b)
	if n == 0 || n+int(length) > len(b) {
		return "", 0, fmt.Errorf("wasmbin: truncated name")
	}
	return string(b[n : n+int(length)]), n + int(length), nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
