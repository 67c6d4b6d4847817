package codegen

import (
	"fmt"
	"math"
	"strings"

	"github.com/tablang/tabc/internal/wasmbin"
)

// opName maps the opcode bytes this package emits back to their mnemonic,
// grounded on the teacher's disassembler dispatch-table style
// (internal/bytecode/disasm.go) applied here to a raw WASM instruction
// stream instead of a bytecode Chunk.
var opName = map[byte]string{
	opUnreachable: "unreachable",
	opBlock:       "block",
	opLoop:        "loop",
	opIf:          "if",
	opElse:        "else",
	opEnd:         "end",
	opBr:          "br",
	opBrIf:        "br_if",
	opReturn:      "return",
	opCall:        "call",
	opDrop:        "drop",

	opLocalGet:  "local.get",
	opLocalSet:  "local.set",
	opGlobalGet: "global.get",
	opGlobalSet: "global.set",

	opI32Load:  "i32.load",
	opI64Load:  "i64.load",
	opF64Load:  "f64.load",
	opI32Store: "i32.store",
	opI64Store: "i64.store",
	opF64Store: "f64.store",

	opI32Const: "i32.const",
	opI64Const: "i64.const",
	opF64Const: "f64.const",

	opI32Eqz: "i32.eqz",
	opI32Eq:  "i32.eq",
	opI32Ne:  "i32.ne",
	opI32LtS: "i32.lt_s",
	opI32GtS: "i32.gt_s",
	opI32LeS: "i32.le_s",
	opI32GeS: "i32.ge_s",

	opI64Eqz: "i64.eqz",
	opI64Eq:  "i64.eq",
	opI64Ne:  "i64.ne",
	opI64LtS: "i64.lt_s",
	opI64GtS: "i64.gt_s",
	opI64LeS: "i64.le_s",
	opI64GeS: "i64.ge_s",

	opF64Eq: "f64.eq",
	opF64Ne: "f64.ne",
	opF64Lt: "f64.lt",
	opF64Gt: "f64.gt",
	opF64Le: "f64.le",
	opF64Ge: "f64.ge",

	opI32Add:  "i32.add",
	opI32Sub:  "i32.sub",
	opI32Mul:  "i32.mul",
	opI32DivS: "i32.div_s",
	opI32RemS: "i32.rem_s",
	opI32And:  "i32.and",
	opI32Or:   "i32.or",
	opI32Xor:  "i32.xor",

	opI64Add:  "i64.add",
	opI64Sub:  "i64.sub",
	opI64Mul:  "i64.mul",
	opI64DivS: "i64.div_s",
	opI64RemS: "i64.rem_s",

	opF64Neg: "f64.neg",
	opF64Add: "f64.add",
	opF64Sub: "f64.sub",
	opF64Mul: "f64.mul",
	opF64Div: "f64.div",

	opI32WrapI64:     "i32.wrap_i64",
	opI32TruncF64S:   "i32.trunc_f64_s",
	opI64TruncF64S:   "i64.trunc_f64_s",
	opF64ConvertI32S: "f64.convert_i32_s",
	opF64ConvertI64S: "f64.convert_i64_s",
}

// noOperandOps are instructions with no encoded operand bytes.
var noOperandOps = map[byte]bool{
	opUnreachable: true, opElse: true, opEnd: true, opReturn: true, opDrop: true,
	opI32Eqz: true, opI32Eq: true, opI32Ne: true, opI32LtS: true, opI32GtS: true, opI32LeS: true, opI32GeS: true,
	opI64Eqz: true, opI64Eq: true, opI64Ne: true, opI64LtS: true, opI64GtS: true, opI64LeS: true, opI64GeS: true,
	opF64Eq: true, opF64Ne: true, opF64Lt: true, opF64Gt: true, opF64Le: true, opF64Ge: true,
	opI32Add: true, opI32Sub: true, opI32Mul: true, opI32DivS: true, opI32RemS: true,
	opI32And: true, opI32Or: true, opI32Xor: true,
	opI64Add: true, opI64Sub: true, opI64Mul: true, opI64DivS: true, opI64RemS: true,
	opF64Neg: true, opF64Add: true, opF64Sub: true, opF64Mul: true, opF64Div: true,
	opI32WrapI64: true, opI32TruncF64S: true, opI64TruncF64S: true, opF64ConvertI32S: true, opF64ConvertI64S: true,
}

// Disassemble renders a function body's raw instruction stream as one
// mnemonic per line, the way the teacher's bytecode disassembler renders a
// Chunk (internal/bytecode/disasm.go), adapted to WASM's LEB128-encoded
// operand shapes instead of fixed-width instruction words.
func Disassemble(code []byte) string {
	var sb strings.Builder
	offset := 0
	for offset < len(code) {
		start := offset
		op := code[offset]
		offset++

		name, known := opName[op]
		if !known {
			fmt.Fprintf(&sb, "%04d UNKNOWN_OP 0x%02x\n", start, op)
			continue
		}

		switch {
		case noOperandOps[op]:
			fmt.Fprintf(&sb, "%04d %s\n", start, name)

		case op == opBlock || op == opLoop || op == opIf:
			bt := code[offset]
			offset++
			fmt.Fprintf(&sb, "%04d %-16s %s\n", start, name, blockTypeName(bt))

		case op == opBr || op == opBrIf || op == opCall || op == opLocalGet || op == opLocalSet ||
			op == opGlobalGet || op == opGlobalSet:
			v, n := wasmbin.Uvarint(code[offset:])
			offset += n
			fmt.Fprintf(&sb, "%04d %-16s %d\n", start, name, v)

		case op == opI32Const:
			v, n := wasmbin.Varint(code[offset:])
			offset += n
			fmt.Fprintf(&sb, "%04d %-16s %d\n", start, name, v)

		case op == opI64Const:
			v, n := wasmbin.Varint(code[offset:])
			offset += n
			fmt.Fprintf(&sb, "%04d %-16s %d\n", start, name, v)

		case op == opF64Const:
			bits := uint64(0)
			for i := 0; i < 8; i++ {
				bits |= uint64(code[offset+i]) << (8 * i)
			}
			offset += 8
			fmt.Fprintf(&sb, "%04d %-16s %g\n", start, name, math.Float64frombits(bits))

		case op == opI32Load || op == opI64Load || op == opF64Load ||
			op == opI32Store || op == opI64Store || op == opF64Store:
			_, n1 := wasmbin.Uvarint(code[offset:])
			offset += n1
			memOffset, n2 := wasmbin.Uvarint(code[offset:])
			offset += n2
			fmt.Fprintf(&sb, "%04d %-16s offset=%d\n", start, name, memOffset)

		default:
			fmt.Fprintf(&sb, "%04d %s\n", start, name)
		}
	}
	return sb.String()
}

func blockTypeName(b byte) string {
	switch b {
	case opVoidBlockType:
		return "void"
	case byte(wasmbin.I32):
		return "i32"
	case byte(wasmbin.I64):
		return "i64"
	case byte(wasmbin.F64):
		return "f64"
	default:
		return fmt.Sprintf("0x%02x", b)
	}
}

// DisassembleModule renders every function body in mod in declaration order,
// prefixed with its function index.
func DisassembleModule(mod *wasmbin.Module) string {
	var sb strings.Builder
	for i, body := range mod.Code {
		fmt.Fprintf(&sb, "== func %d ==\n", i)
		sb.WriteString(Disassemble(body.Code))
		sb.WriteString("\n")
	}
	return sb.String()
}
