// Package wasmbin implements the WASM 1.0 binary primitives SPEC_FULL.md's
// codegen and validator share: LEB128 varint/varuint encoding, section
// framing, and the value-type/section-id vocabulary — grounded on the shape
// of tetratelabs-wazero's internal leb128/binary split (unimportable, so
// reimplemented here) and encoded with the teacher's own plain
// encoding/binary + bytes.Buffer idiom (internal/bytecode/serializer.go).
package wasmbin

// PutUvarint appends the unsigned LEB128 encoding of v to buf and returns
// the result.
func PutUvarint(buf []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf = append(buf, b|0x80)
			continue
		}
		return append(buf, b)
	}
}

// PutVarint appends the signed LEB128 encoding of v to buf and returns the
// result.
func PutVarint(buf []byte, v int64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			return append(buf, b)
		}
		buf = append(buf, b|0x80)
	}
}

// Uvarint decodes an unsigned LEB128 value starting at buf[0], returning the
// value and the number of bytes consumed.
func Uvarint(buf []byte) (uint64, int) {
	var result uint64
	var shift uint
	for i, b := range buf {
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1
		}
		shift += 7
	}
	return 0, 0
}

// Varint decodes a signed LEB128 value starting at buf[0], returning the
// value and the number of bytes consumed.
func Varint(buf []byte) (int64, int) {
	var result int64
	var shift uint
	var b byte
	i := 0
	for {
		b = buf[i]
		result |= int64(b&0x7f) << shift
		shift += 7
		i++
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, i
}
