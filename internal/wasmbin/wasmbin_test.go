package wasmbin

import "testing"

func TestUvarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20, 1<<32 - 1}
	for _, v := range cases {
		enc := PutUvarint(nil, v)
		got, n := Uvarint(enc)
		if got != v || n != len(enc) {
			t.Fatalf("Uvarint(%d): got (%d,%d), want (%d,%d)", v, got, n, v, len(enc))
		}
	}
}

func TestVarintRoundTrip(t *testing.T) {
	cases := []int64{0, -1, 1, 63, -64, 64, -65, 1 << 30, -(1 << 30)}
	for _, v := range cases {
		enc := PutVarint(nil, v)
		got, n := Varint(enc)
		if got != v || n != len(enc) {
			t.Fatalf("Varint(%d): got (%d,%d), want (%d,%d)", v, got, n, v, len(enc))
		}
	}
}

func TestModuleEncodeDecodeRoundTrip(t *testing.T) {
	m := &Module{MemoryMin: 1}
	startType := m.AddType(FuncType{})
	m.FuncTypes = []uint32{startType}
	m.Exports = []Export{
		{Field: "memory", Kind: ExternalMemory, Index: 0},
		{Field: "start", Kind: ExternalFunction, Index: 0},
	}
	m.Code = []FunctionBody{{Code: []byte{0x0b}}}

	encoded := m.Encode()
	if string(encoded[0:4]) != string(Magic[:]) {
		t.Fatalf("expected magic bytes at the start of the module")
	}

	d, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !d.HasMemorySection || d.MemoryMin != 1 {
		t.Fatalf("expected a 1-page memory section, got %+v", d)
	}
	if len(d.Exports) != 2 || d.Exports[1].Field != "start" {
		t.Fatalf("expected start export, got %+v", d.Exports)
	}
	if d.CodeBodyCount != 1 {
		t.Fatalf("expected 1 code body, got %d", d.CodeBodyCount)
	}
}

func TestAddTypeDeduplicates(t *testing.T) {
	m := &Module{}
	a := m.AddType(FuncType{Params: []ValType{I32}, Results: []ValType{I32}})
	b := m.AddType(FuncType{Params: []ValType{I32}, Results: []ValType{I32}})
	if a != b {
		t.Fatalf("expected identical signatures to share a type index, got %d and %d", a, b)
	}
	if len(m.Types) != 1 {
		t.Fatalf("expected 1 deduplicated type entry, got %d", len(m.Types))
	}
}

func TestImportSectionRoundTrips(t *testing.T) {
	m := &Module{MemoryMin: 1}
	printType := m.AddType(FuncType{Params: []ValType{I32, I32}})
	m.Imports = []Import{{Module: "env", Field: "print", Kind: ExternalFunction, Type: printType}}
	startType := m.AddType(FuncType{})
	m.FuncTypes = []uint32{startType}
	m.Code = []FunctionBody{{Code: []byte{0x0b}}}

	d, err := Decode(m.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(d.Imports) != 1 || d.Imports[0].Field != "print" {
		t.Fatalf("expected 1 import named print, got %+v", d.Imports)
	}
}
