package wasmbin

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Encode serializes m to a byte-exact WASM 1.0 binary: magic, version, then
// every non-empty section in the fixed order spec.md §4.4.1 requires.
func (m *Module) Encode() []byte {
	var out bytes.Buffer
	out.Write(Magic[:])
	var versionBytes [4]byte
	binary.LittleEndian.PutUint32(versionBytes[:], Version)
	out.Write(versionBytes[:])

	writeSection(&out, SectionType, m.encodeTypeSection())
	writeSection(&out, SectionImport, m.encodeImportSection())
	writeSection(&out, SectionFunction, m.encodeFunctionSection())
	writeSection(&out, SectionMemory, m.encodeMemorySection())
	writeSection(&out, SectionGlobal, m.encodeGlobalSection())
	writeSection(&out, SectionExport, m.encodeExportSection())
	writeSection(&out, SectionData, m.encodeDataSection())
	writeSection(&out, SectionCode, m.encodeCodeSection())

	return out.Bytes()
}

func writeSection(out *bytes.Buffer, id SectionID, payload []byte) {
	if len(payload) == 0 {
		return
	}
	out.WriteByte(byte(id))
	out.Write(vecLen(len(payload)))
	out.Write(payload)
}

func vecLen(n int) []byte { return PutUvarint(nil, uint64(n)) }

func (m *Module) encodeTypeSection() []byte {
	if len(m.Types) == 0 {
		return nil
	}
	var b bytes.Buffer
	b.Write(vecLen(len(m.Types)))
	for _, ft := range m.Types {
		b.WriteByte(0x60) // func type tag
		b.Write(vecLen(len(ft.Params)))
		for _, p := range ft.Params {
			b.WriteByte(byte(p))
		}
		b.Write(vecLen(len(ft.Results)))
		for _, r := range ft.Results {
			b.WriteByte(byte(r))
		}
	}
	return b.Bytes()
}

func (m *Module) encodeImportSection() []byte {
	if len(m.Imports) == 0 {
		return nil
	}
	var b bytes.Buffer
	b.Write(vecLen(len(m.Imports)))
	for _, imp := range m.Imports {
		writeName(&b, imp.Module)
		writeName(&b, imp.Field)
		b.WriteByte(byte(imp.Kind))
		if imp.Kind == ExternalFunction {
			b.Write(PutUvarint(nil, uint64(imp.Type)))
		}
	}
	return b.Bytes()
}

func (m *Module) encodeFunctionSection() []byte {
	if len(m.FuncTypes) == 0 {
		return nil
	}
	var b bytes.Buffer
	b.Write(vecLen(len(m.FuncTypes)))
	for _, t := range m.FuncTypes {
		b.Write(PutUvarint(nil, uint64(t)))
	}
	return b.Bytes()
}

func (m *Module) encodeMemorySection() []byte {
	if m.MemoryMin == 0 {
		return nil
	}
	var b bytes.Buffer
	b.Write(vecLen(1))
	b.WriteByte(0x00) // flags: no maximum
	b.Write(PutUvarint(nil, uint64(m.MemoryMin)))
	return b.Bytes()
}

func (m *Module) encodeGlobalSection() []byte {
	if len(m.Globals) == 0 {
		return nil
	}
	var b bytes.Buffer
	b.Write(vecLen(len(m.Globals)))
	for _, g := range m.Globals {
		b.WriteByte(byte(g.Type))
		if g.Mutable {
			b.WriteByte(0x01)
		} else {
			b.WriteByte(0x00)
		}
		b.WriteByte(0x41) // i32.const
		b.Write(PutVarint(nil, int64(g.InitI32)))
		b.WriteByte(0x0b) // end
	}
	return b.Bytes()
}

func (m *Module) encodeExportSection() []byte {
	if len(m.Exports) == 0 {
		return nil
	}
	var b bytes.Buffer
	b.Write(vecLen(len(m.Exports)))
	for _, e := range m.Exports {
		writeName(&b, e.Field)
		b.WriteByte(byte(e.Kind))
		b.Write(PutUvarint(nil, uint64(e.Index)))
	}
	return b.Bytes()
}

func (m *Module) encodeDataSection() []byte {
	if len(m.Data) == 0 {
		return nil
	}
	var b bytes.Buffer
	b.Write(vecLen(len(m.Data)))
	for _, d := range m.Data {
		b.Write(PutUvarint(nil, 0)) // memory index 0
		b.WriteByte(0x41)           // i32.const
		b.Write(PutVarint(nil, int64(d.Offset)))
		b.WriteByte(0x0b) // end
		b.Write(vecLen(len(d.Bytes)))
		b.Write(d.Bytes)
	}
	return b.Bytes()
}

func (m *Module) encodeCodeSection() []byte {
	if len(m.Code) == 0 {
		return nil
	}
	var b bytes.Buffer
	b.Write(vecLen(len(m.Code)))
	for _, fb := range m.Code {
		var body bytes.Buffer
		body.Write(vecLen(len(fb.Locals)))
		for _, lg := range fb.Locals {
			body.Write(PutUvarint(nil, uint64(lg.Count)))
			body.WriteByte(byte(lg.Type))
		}
		body.Write(fb.Code)
		body.WriteByte(0x0b) // end
		b.Write(vecLen(body.Len()))
		b.Write(body.Bytes())
	}
	return b.Bytes()
}

func writeName(b *bytes.Buffer, s string) {
	b.Write(vecLen(len(s)))
	b.WriteString(s)
}

// EncodeF64 little-endian-encodes an f64 constant for instruction operands.
func EncodeF64(f float64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
	return buf[:]
}
