package codegen

// WASM 1.0 opcode bytes the expression/statement lowerings in this package
// emit. Not exhaustive — only the subset spec.md §4.4.5/§4.4.6 requires.
const (
	opUnreachable byte = 0x00
	opBlock       byte = 0x02
	opLoop        byte = 0x03
	opIf          byte = 0x04
	opElse        byte = 0x05
	opEnd         byte = 0x0b
	opBr          byte = 0x0c
	opBrIf        byte = 0x0d
	opReturn      byte = 0x0f
	opCall        byte = 0x10
	opDrop        byte = 0x1a

	opLocalGet  byte = 0x20
	opLocalSet  byte = 0x21
	opGlobalGet byte = 0x23
	opGlobalSet byte = 0x24

	opI32Load  byte = 0x28
	opI64Load  byte = 0x29
	opF64Load  byte = 0x2b
	opI32Store byte = 0x36
	opI64Store byte = 0x37
	opF64Store byte = 0x39

	opI32Const byte = 0x41
	opI64Const byte = 0x42
	opF64Const byte = 0x44

	opI32Eqz byte = 0x45
	opI32Eq  byte = 0x46
	opI32Ne  byte = 0x47
	opI32LtS byte = 0x48
	opI32GtS byte = 0x4a
	opI32LeS byte = 0x4c
	opI32GeS byte = 0x4e

	opI64Eqz byte = 0x50
	opI64Eq  byte = 0x51
	opI64Ne  byte = 0x52
	opI64LtS byte = 0x53
	opI64GtS byte = 0x55
	opI64LeS byte = 0x57
	opI64GeS byte = 0x59

	opF64Eq byte = 0x61
	opF64Ne byte = 0x62
	opF64Lt byte = 0x63
	opF64Gt byte = 0x64
	opF64Le byte = 0x65
	opF64Ge byte = 0x66

	opI32Sub byte = 0x6b
	opI32Mul byte = 0x6c
	opI32DivS byte = 0x6d
	opI32RemS byte = 0x6f
	opI32And  byte = 0x71
	opI32Or   byte = 0x72
	opI32Xor  byte = 0x73
	opI32Add  byte = 0x6a

	opI64Add byte = 0x7c
	opI64Sub byte = 0x7d
	opI64Mul byte = 0x7e
	opI64DivS byte = 0x7f
	opI64RemS byte = 0x81

	opF64Neg byte = 0x9a
	opF64Add byte = 0xa0
	opF64Sub byte = 0xa1
	opF64Mul byte = 0xa2
	opF64Div byte = 0xa3

	opI32WrapI64     byte = 0xa7
	opI32TruncF64S   byte = 0xaa
	opI64TruncF64S   byte = 0xb0
	opF64ConvertI32S byte = 0xb7
	opF64ConvertI64S byte = 0xb9
	opVoidBlockType  byte = 0x40
)
