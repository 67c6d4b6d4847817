package codegen

import (
	"github.com/tablang/tabc/internal/ast"
	"github.com/tablang/tabc/internal/types"
	"github.com/tablang/tabc/internal/wasmbin"
)

// stackType is the WASM value the most recent emission left on the
// operand stack, with an extra "none" case for Unit (spec.md §4.4.4: "no
// value; callers must not drop").
type stackType int

const (
	stNone stackType = iota
	stI32
	stI64
	stF64
)

func toStackType(t types.Type) stackType {
	if t.Kind == types.Unit {
		return stNone
	}
	switch wasmType(t) {
	case wasmbin.I64:
		return stI64
	case wasmbin.F64:
		return stF64
	default:
		return stI32
	}
}

func blockTypeByte(st stackType) byte {
	switch st {
	case stI64:
		return byte(wasmbin.I64)
	case stF64:
		return byte(wasmbin.F64)
	case stI32:
		return byte(wasmbin.I32)
	default:
		return opVoidBlockType
	}
}

func (fg *funcGen) emitMemOp(op byte) {
	fg.emit(op)
	fg.emitUvarint(0) // align hint
	fg.emitUvarint(0) // offset; address is fully computed on the stack already
}

func (fg *funcGen) emitLoadFor(t types.Type) {
	switch wasmType(t) {
	case wasmbin.I64:
		fg.emitMemOp(opI64Load)
	case wasmbin.F64:
		fg.emitMemOp(opF64Load)
	default:
		fg.emitMemOp(opI32Load)
	}
}

func (fg *funcGen) emitStoreFor(t types.Type) {
	switch wasmType(t) {
	case wasmbin.I64:
		fg.emitMemOp(opI64Store)
	case wasmbin.F64:
		fg.emitMemOp(opF64Store)
	default:
		fg.emitMemOp(opI32Store)
	}
}

func (fg *funcGen) emitZeroValue(t types.Type) {
	switch wasmType(t) {
	case wasmbin.I64:
		fg.emit(opI64Const)
		fg.emitVarint(0)
	case wasmbin.F64:
		fg.emit(opF64Const)
		fg.code.Write(wasmbin.EncodeF64(0))
	default:
		fg.emit(opI32Const)
		fg.emitVarint(0)
	}
}

// emitExpression lowers e and returns the stack type of the value it left
// behind (spec.md §4.4.5).
func (fg *funcGen) emitExpression(e ast.Expression) stackType {
	switch ex := e.(type) {
	case *ast.Literal:
		return fg.emitLiteral(ex)
	case *ast.Variable:
		return fg.emitVariable(ex)
	case *ast.BinaryOp:
		return fg.emitBinaryOp(ex)
	case *ast.UnaryOp:
		return fg.emitUnaryOp(ex)
	case *ast.Call:
		return fg.emitCallExpr(ex)
	case *ast.FieldAccess:
		return fg.emitFieldAccess(ex)
	case *ast.MethodCall:
		return fg.emitMethodCall(ex)
	case *ast.ObjectCreation:
		return fg.emitObjectCreation(ex)
	case *ast.ArrayAccess:
		return fg.emitArrayAccess(ex)
	case *ast.MatrixAccess:
		return fg.emitMatrixAccess(ex)
	case *ast.StringInterpolation:
		return fg.emitStringInterpolation(ex)
	case *ast.Conditional:
		return fg.emitConditional(ex)
	case *ast.BaseCall:
		return fg.emitBaseCall(ex)
	case *ast.OnError:
		return fg.emitOnError(ex)
	case *ast.ArrayLiteral:
		return fg.emitArrayLiteral(ex)
	case *ast.MatrixLiteral:
		return fg.emitMatrixLiteral(ex)
	case *ast.ThisExpr:
		return fg.emitThis()
	case *ast.ErrorVarRef:
		return fg.emitErrorVarRef(ex)
	default:
		fg.addError(e.Pos(), "internal: unhandled expression kind %T in codegen", e)
		return stNone
	}
}

func (fg *funcGen) emitLiteral(ex *ast.Literal) stackType {
	v := ex.Value
	switch v.Kind {
	case types.VInteger, types.VByte, types.VUnsigned:
		fg.emit(opI32Const)
		fg.emitVarint(v.Int)
		return stI32
	case types.VLong, types.VULong:
		fg.emit(opI64Const)
		fg.emitVarint(v.Int)
		return stI64
	case types.VFloat:
		fg.emit(opF64Const)
		fg.code.Write(wasmbin.EncodeF64(v.Float))
		return stF64
	case types.VBoolean:
		fg.emit(opI32Const)
		if v.Bool {
			fg.emitVarint(1)
		} else {
			fg.emitVarint(0)
		}
		return stI32
	case types.VString:
		addr, _ := fg.gen.strings.addrOf(v.Str)
		fg.emit(opI32Const)
		fg.emitVarint(int64(addr))
		return stI32
	default:
		fg.addError(ex.Pos(), "internal: unsupported literal kind in codegen")
		return stNone
	}
}

func (fg *funcGen) emitVariable(ex *ast.Variable) stackType {
	idx, ok := fg.localIndex[ex.Name]
	if !ok {
		fg.addError(ex.Pos(), "internal: undeclared local %q reached codegen", ex.Name)
		return stNone
	}
	fg.emitLocalGet(idx)
	return toStackType(fg.localType[ex.Name])
}

func (fg *funcGen) emitThis() stackType {
	idx, ok := fg.localIndex["this"]
	if !ok {
		return stNone
	}
	fg.emitLocalGet(idx)
	return stI32
}

func (fg *funcGen) emitUnaryOp(ex *ast.UnaryOp) stackType {
	st := fg.emitExpression(ex.Operand)
	switch ex.Op {
	case "-":
		switch st {
		case stF64:
			fg.emit(opF64Neg)
		case stI64:
			// 0 - x: push 0 ahead of the already-emitted operand is illegal
			// (can't insert below an already-pushed value), so re-emit the
			// pattern as operand negation via i64.const -1 * x is avoided;
			// instead use i64.sub with a zero pushed first requires the
			// operand after it — recompute by re-emitting is not an option
			// for side-effecting operands, so store operand then subtract.
			tmp := fg.declareBodyLocal(fg.newTempName("$neg"), types.NewLong())
			fg.emitLocalSet(tmp)
			fg.emit(opI64Const)
			fg.emitVarint(0)
			fg.emitLocalGet(tmp)
			fg.emit(opI64Sub)
		default:
			tmp := fg.declareBodyLocal(fg.newTempName("$neg"), types.NewInteger())
			fg.emitLocalSet(tmp)
			fg.emit(opI32Const)
			fg.emitVarint(0)
			fg.emitLocalGet(tmp)
			fg.emit(opI32Sub)
		}
		return st
	case "not":
		fg.emit(opI32Eqz)
		return stI32
	default:
		fg.addError(ex.Pos(), "internal: unsupported unary operator %q", ex.Op)
		return st
	}
}

func (fg *funcGen) newTempName(prefix string) string {
	fg.tmpCounter++
	return prefix + "$" + itoa(fg.tmpCounter)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}

func (fg *funcGen) emitBinaryOp(ex *ast.BinaryOp) stackType {
	leftType := ex.Left.Type()
	rightType := ex.Right.Type()

	if leftType.Kind == types.String || rightType.Kind == types.String {
		return fg.emitStringBinaryOp(ex)
	}

	switch ex.Op {
	case "/", "%":
		return fg.emitGuardedDivision(ex)
	case "^":
		return fg.emitPower(ex)
	}

	lst := fg.emitExpression(ex.Left)
	// mixed integer/float promotion: convert the i32 side in place.
	wantF64 := leftType.Kind == types.Float || rightType.Kind == types.Float
	if wantF64 && lst == stI32 {
		fg.emit(opF64ConvertI32S)
		lst = stF64
	}
	rst := fg.emitExpression(ex.Right)
	if wantF64 && rst == stI32 {
		fg.emit(opF64ConvertI32S)
		rst = stF64
	}

	return fg.emitArithOrCompare(ex.Op, lst)
}

func (fg *funcGen) emitArithOrCompare(op string, st stackType) stackType {
	switch op {
	case "+":
		fg.emit(pick(st, opI32Add, opI64Add, opF64Add))
		return st
	case "-":
		fg.emit(pick(st, opI32Sub, opI64Sub, opF64Sub))
		return st
	case "*":
		fg.emit(pick(st, opI32Mul, opI64Mul, opF64Mul))
		return st
	case "/":
		fg.emit(pick(st, opI32DivS, opI64DivS, opF64Div))
		return st
	case "%":
		fg.emit(pick(st, opI32RemS, opI64RemS, opI32RemS))
		return st
	case "==":
		fg.emit(pick(st, opI32Eq, opI64Eq, opF64Eq))
		return stI32
	case "!=":
		fg.emit(pick(st, opI32Ne, opI64Ne, opF64Ne))
		return stI32
	case "<":
		fg.emit(pick(st, opI32LtS, opI64LtS, opF64Lt))
		return stI32
	case ">":
		fg.emit(pick(st, opI32GtS, opI64GtS, opF64Gt))
		return stI32
	case "<=":
		fg.emit(pick(st, opI32LeS, opI64LeS, opF64Le))
		return stI32
	case ">=":
		fg.emit(pick(st, opI32GeS, opI64GeS, opF64Ge))
		return stI32
	case "and":
		fg.emit(opI32And)
		return stI32
	case "or":
		fg.emit(opI32Or)
		return stI32
	default:
		fg.addError(ast.SourceLocation{}, "internal: unsupported arithmetic/comparison operator %q", op)
		return st
	}
}

func pick(st stackType, i32op, i64op, f64op byte) byte {
	switch st {
	case stI64:
		return i64op
	case stF64:
		return f64op
	default:
		return i32op
	}
}

// emitGuardedDivision implements the `onError`-observable failure channel
// this build chose for division (SPEC_FULL.md): divide-by-zero sets the
// errorStatus global instead of trapping, so an enclosing onError can
// observe and recover from it.
func (fg *funcGen) emitGuardedDivision(ex *ast.BinaryOp) stackType {
	st := fg.emitExpression(ex.Left)
	lt := fg.declareBodyLocal(fg.newTempName("$divl"), stackTypeToTmpType(st))
	fg.emitLocalSet(lt)
	rst := fg.emitExpression(ex.Right)
	rt := fg.declareBodyLocal(fg.newTempName("$divr"), stackTypeToTmpType(rst))
	fg.emitLocalSet(rt)

	fg.emitLocalGet(rt)
	if rst == stI64 {
		fg.emit(opI64Eqz)
	} else {
		fg.emit(opI32Eqz)
	}
	fg.emit(opIf)
	fg.emit(blockTypeByte(st))
	fg.emit(opI32Const)
	fg.emitVarint(1)
	fg.emit(opGlobalSet)
	fg.emitUvarint(uint64(errStatusGlobalIndex))
	fg.emitZeroValue(stackTypeToTmpType(st))
	fg.emit(opElse)
	fg.emit(opI32Const)
	fg.emitVarint(0)
	fg.emit(opGlobalSet)
	fg.emitUvarint(uint64(errStatusGlobalIndex))
	fg.emitLocalGet(lt)
	fg.emitLocalGet(rt)
	fg.emit(pick(st, pickDivOrRem(ex.Op, false), pickDivOrRem(ex.Op, true), opF64Div))
	fg.emit(opEnd)
	return st
}

// emitPower lowers "^": WASM 1.0 has no exponentiation opcode, so both
// operands are widened to f64 and raised via the host's f64_pow import,
// then narrowed back to "^"'s own result type (integer promotion rules are
// the same as "+"/"-"/"*", per the semantic analyzer's inferBinaryOp).
func (fg *funcGen) emitPower(ex *ast.BinaryOp) stackType {
	resultType := toStackType(ex.Type())

	lst := fg.emitExpression(ex.Left)
	fg.emitWidenToF64(lst)
	rst := fg.emitExpression(ex.Right)
	fg.emitWidenToF64(rst)
	fg.emitCallIndex(fg.gen.hostFuncIndex("f64_pow"))

	switch resultType {
	case stI64:
		fg.emit(opI64TruncF64S)
	case stI32:
		fg.emit(opI32TruncF64S)
	}
	return resultType
}

// emitWidenToF64 converts the top-of-stack value of the given type to f64
// in place; a no-op if it already is one.
func (fg *funcGen) emitWidenToF64(st stackType) {
	switch st {
	case stI32:
		fg.emit(opF64ConvertI32S)
	case stI64:
		fg.emit(opF64ConvertI64S)
	}
}

func pickDivOrRem(op string, is64 bool) byte {
	if op == "%" {
		if is64 {
			return opI64RemS
		}
		return opI32RemS
	}
	if is64 {
		return opI64DivS
	}
	return opI32DivS
}

func stackTypeToTmpType(st stackType) types.Type {
	switch st {
	case stI64:
		return types.NewLong()
	case stF64:
		return types.NewFloat()
	default:
		return types.NewInteger()
	}
}

func (fg *funcGen) emitStringBinaryOp(ex *ast.BinaryOp) stackType {
	fg.emitExpression(ex.Left)
	fg.emitExpression(ex.Right)
	switch ex.Op {
	case "+":
		fg.emitCallIndex(fg.gen.hostFuncIndex("string_concat"))
		return stI32
	case "==", "!=", "<", ">", "<=", ">=":
		fg.emitCallIndex(fg.gen.hostFuncIndex("string_compare"))
		fg.emit(opI32Const)
		fg.emitVarint(0)
		fg.emit(map[string]byte{
			"==": opI32Eq, "!=": opI32Ne, "<": opI32LtS, ">": opI32GtS, "<=": opI32LeS, ">=": opI32GeS,
		}[ex.Op])
		return stI32
	default:
		fg.addError(ex.Pos(), "internal: unsupported string operator %q", ex.Op)
		return stI32
	}
}

func (fg *funcGen) emitCallExpr(call *ast.Call) stackType {
	argTypes := make([]types.Type, len(call.Args))
	for i, a := range call.Args {
		argTypes[i] = a.Type()
	}
	sig := call.Name + "("
	for i, t := range argTypes {
		if i > 0 {
			sig += ","
		}
		sig += t.String()
	}
	sig += ")"

	idx, ret, found := fg.gen.resolveFreeCall(sig, call.Name)
	if !found {
		if hidx, ok := hostCallIndex(call.Name); ok {
			for _, a := range call.Args {
				fg.emitExpression(a)
			}
			fg.emitCallIndex(hidx)
			return hostReturnStackType(call.Name)
		}
		fg.addError(call.Pos(), "internal: unresolved function reference %q reached codegen", call.Name)
		return stNone
	}
	for _, a := range call.Args {
		fg.emitExpression(a)
	}
	fg.emitCallIndex(idx)
	return toStackType(ret)
}

// builtinPrimitiveMethods mirrors the semantic analyzer's table: `.toString()`
// on a non-object receiver lowers directly to the matching host conversion
// import rather than a user-defined method (spec.md §4.4.5's "x.toString()"
// scenarios).
func (fg *funcGen) emitMethodCall(ex *ast.MethodCall) stackType {
	objType := ex.Object.Type()
	if objType.Kind != types.ObjectKind {
		if ex.Method == "toString" && len(ex.Args) == 0 {
			st := fg.emitExpression(ex.Object)
			switch {
			case objType.Kind == types.Boolean:
				fg.emitCallIndex(fg.gen.hostFuncIndex("bool_to_string"))
			case st == stF64:
				fg.emitCallIndex(fg.gen.hostFuncIndex("float_to_string"))
			case st == stI64:
				fg.emit(opI32WrapI64)
				fg.emitCallIndex(fg.gen.hostFuncIndex("int_to_string"))
			default:
				fg.emitCallIndex(fg.gen.hostFuncIndex("int_to_string"))
			}
			return stI32
		}
		fg.addError(ex.Pos(), "internal: method call on non-object reached codegen")
		return stNone
	}

	idx, ret, ok := fg.gen.resolveMethod(objType.ObjectName, ex.Method)
	if !ok {
		fg.addError(ex.Pos(), "internal: unresolved method %q reached codegen", ex.Method)
		return stNone
	}
	fg.emitExpression(ex.Object)
	for _, a := range ex.Args {
		fg.emitExpression(a)
	}
	fg.emitCallIndex(idx)
	return toStackType(ret)
}

func (fg *funcGen) emitFieldAccess(ex *ast.FieldAccess) stackType {
	objType := ex.Object.Type()
	ci, ok := fg.gen.classes[objType.ObjectName]
	if !ok {
		fg.addError(ex.Pos(), "internal: field access on unknown class %q", objType.ObjectName)
		return stNone
	}
	off, ok := ci.fieldOff[ex.Field]
	if !ok {
		fg.addError(ex.Pos(), "internal: unknown field %q on %q", ex.Field, objType.ObjectName)
		return stNone
	}
	fg.emitExpression(ex.Object)
	fg.emit(opI32Const)
	fg.emitVarint(int64(off))
	fg.emit(opI32Add)
	ft := ci.fieldType[ex.Field]
	fg.emitLoadFor(ft)
	return toStackType(ft)
}

// emitObjectCreation bump-allocates an object block and invokes its
// constructor, leaving the new pointer on the stack (spec.md §4.4.5).
func (fg *funcGen) emitObjectCreation(ex *ast.ObjectCreation) stackType {
	ci, ok := fg.gen.classes[ex.ClassName]
	if !ok {
		fg.addError(ex.Pos(), "internal: unknown class %q reached codegen", ex.ClassName)
		return stNone
	}
	objLocal := fg.declareBodyLocal(fg.newTempName("$obj"), types.NewObject(ex.ClassName))

	fg.emit(opGlobalGet)
	fg.emitUvarint(uint64(fg.gen.bumpGlobal))
	fg.emitLocalSet(objLocal)

	fg.emitLocalGet(objLocal)
	fg.emit(opI32Const)
	fg.emitVarint(int64(ci.size))
	fg.emit(opI32Add)
	fg.emit(opGlobalSet)
	fg.emitUvarint(uint64(fg.gen.bumpGlobal))

	fg.emitLocalGet(objLocal)
	fg.emit(opI32Const)
	fg.emitVarint(int64(ci.tag))
	fg.emitMemOp(opI32Store)

	if ci.hasCtor {
		fg.emitLocalGet(objLocal)
		for _, a := range ex.Args {
			fg.emitExpression(a)
		}
		fg.emitCallIndex(ci.ctorIndex)
	}

	fg.emitLocalGet(objLocal)
	return stI32
}

func (fg *funcGen) emitArrayAccess(ex *ast.ArrayAccess) stackType {
	elemType := *ex.Array.Type().Elem
	fg.emitExpression(ex.Array)
	fg.emitExpression(ex.Index)
	fg.emitCallIndex(fg.gen.hostFuncIndex("array_get"))
	fg.emitLoadFor(elemType)
	return toStackType(elemType)
}

func (fg *funcGen) emitMatrixAccess(ex *ast.MatrixAccess) stackType {
	fg.emitExpression(ex.Matrix)
	fg.emitExpression(ex.Row)
	fg.emitExpression(ex.Col)
	fg.emitCallIndex(fg.gen.hostFuncIndex("matrix_get"))
	return stF64
}

// emitStringInterpolation lowers a `{Text|Interpolation}*` sequence. The
// corpus's `string_builder_append_value` (dispatching on an embedded
// value's runtime type) has no WASM-typed equivalent without a variant
// parameter; this build converts each embedded expression to a string up
// front and appends it through the one `string_builder_append` signature
// instead.
func (fg *funcGen) emitStringInterpolation(ex *ast.StringInterpolation) stackType {
	builder := fg.declareBodyLocal(fg.newTempName("$sb"), types.NewInteger())
	fg.emitCallIndex(fg.gen.hostFuncIndex("string_builder_init"))
	fg.emitLocalSet(builder)

	for _, part := range ex.Parts {
		fg.emitLocalGet(builder)
		if part.Interp == nil {
			addr, _ := fg.gen.strings.addrOf(part.Text)
			fg.emit(opI32Const)
			fg.emitVarint(int64(addr))
		} else {
			fg.emitStringifiedValue(part.Interp)
		}
		fg.emitCallIndex(fg.gen.hostFuncIndex("string_builder_append"))
	}

	fg.emitLocalGet(builder)
	fg.emitCallIndex(fg.gen.hostFuncIndex("string_builder_finish"))
	return stI32
}

// emitStringifiedValue emits e and, if it isn't already a String, converts
// it to one via the matching host conversion import.
func (fg *funcGen) emitStringifiedValue(e ast.Expression) {
	t := e.Type()
	st := fg.emitExpression(e)
	switch {
	case t.Kind == types.String:
		return
	case t.Kind == types.Boolean:
		fg.emitCallIndex(fg.gen.hostFuncIndex("bool_to_string"))
	case st == stF64:
		fg.emitCallIndex(fg.gen.hostFuncIndex("float_to_string"))
	case st == stI64:
		fg.emit(opI32WrapI64)
		fg.emitCallIndex(fg.gen.hostFuncIndex("int_to_string"))
	default:
		fg.emitCallIndex(fg.gen.hostFuncIndex("int_to_string"))
	}
}

func (fg *funcGen) emitConditional(ex *ast.Conditional) stackType {
	st := toStackType(ex.Type())
	fg.emitExpression(ex.Cond)
	fg.emit(opIf)
	fg.emit(blockTypeByte(st))
	fg.emitExpression(ex.Then)
	fg.emit(opElse)
	fg.emitExpression(ex.Else)
	fg.emit(opEnd)
	return st
}

// emitBaseCall dispatches to the base class's constructor (inside a
// constructor) or same-named method (inside a method override).
func (fg *funcGen) emitBaseCall(ex *ast.BaseCall) stackType {
	ci, ok := fg.gen.classes[fg.className]
	if !ok || ci.base == "" {
		fg.addError(ex.Pos(), "internal: base() used outside a derived class body")
		return stNone
	}
	baseInfo := fg.gen.classes[ci.base]
	this, _ := fg.localIndex["this"]

	if fg.isCtor {
		if !baseInfo.hasCtor {
			return stNone
		}
		fg.emitLocalGet(this)
		for _, a := range ex.Args {
			fg.emitExpression(a)
		}
		fg.emitCallIndex(baseInfo.ctorIndex)
		return stNone
	}

	idx, ret, ok := fg.gen.resolveMethod(ci.base, fg.funcName)
	if !ok {
		fg.addError(ex.Pos(), "internal: base method %q not found", fg.funcName)
		return stNone
	}
	fg.emitLocalGet(this)
	for _, a := range ex.Args {
		fg.emitExpression(a)
	}
	fg.emitCallIndex(idx)
	return toStackType(ret)
}

// emitOnError implements this build's chosen failure channel (SPEC_FULL.md):
// the protected expression always runs; a guarded division along the way
// sets errStatusGlobalIndex; onError observes it afterward and substitutes
// the fallback (or, for the block form, runs the handler for effect and
// yields the protected type's zero value).
func (fg *funcGen) emitOnError(ex *ast.OnError) stackType {
	t := ex.Type()
	st := toStackType(t)

	protectedLocal := fg.declareBodyLocal(fg.newTempName("$protected"), t)
	fg.emitExpression(ex.Protected)
	fg.emitLocalSet(protectedLocal)

	fg.emit(opGlobalGet)
	fg.emitUvarint(uint64(errStatusGlobalIndex))
	fg.emit(opIf)
	fg.emit(blockTypeByte(st))
	if ex.Fallback != nil {
		fg.emitExpression(ex.Fallback)
	} else {
		errName := ex.ErrorVarName
		if errName == "" {
			errName = "error"
		}
		errVar := fg.declareBodyLocal(errName, types.NewInteger())
		fg.emit(opGlobalGet)
		fg.emitUvarint(uint64(errStatusGlobalIndex))
		fg.emitLocalSet(errVar)
		fg.emitStatements(ex.HandlerBody)
		fg.emitZeroValue(t)
	}
	fg.emit(opElse)
	fg.emitLocalGet(protectedLocal)
	fg.emit(opEnd)
	return st
}

func (fg *funcGen) emitErrorVarRef(ex *ast.ErrorVarRef) stackType {
	idx, ok := fg.localIndex[ex.Name]
	if !ok {
		fg.addError(ex.Pos(), "internal: error variable %q not bound", ex.Name)
		return stNone
	}
	fg.emitLocalGet(idx)
	return stI32
}

// emitArrayLiteral allocates `u32 length, u32 elemSize` followed by the
// elements (spec.md §4.4.7, elemSize added so array_get stays a pure
// function of the pointer rather than needing compile-time type info).
func (fg *funcGen) emitArrayLiteral(ex *ast.ArrayLiteral) stackType {
	elemType := *ex.Type().Elem
	elemSize := elemSizeOf(elemType)
	total := uint32(8 + len(ex.Elements)*int(elemSize))
	aligned := (total + 7) &^ 7

	arrLocal := fg.declareBodyLocal(fg.newTempName("$arr"), types.NewInteger())
	fg.emit(opGlobalGet)
	fg.emitUvarint(uint64(fg.gen.bumpGlobal))
	fg.emitLocalSet(arrLocal)

	fg.emitLocalGet(arrLocal)
	fg.emit(opI32Const)
	fg.emitVarint(int64(aligned))
	fg.emit(opI32Add)
	fg.emit(opGlobalSet)
	fg.emitUvarint(uint64(fg.gen.bumpGlobal))

	fg.emitLocalGet(arrLocal)
	fg.emit(opI32Const)
	fg.emitVarint(int64(len(ex.Elements)))
	fg.emitMemOp(opI32Store)

	fg.emitLocalGet(arrLocal)
	fg.emit(opI32Const)
	fg.emitVarint(4)
	fg.emit(opI32Add)
	fg.emit(opI32Const)
	fg.emitVarint(int64(elemSize))
	fg.emitMemOp(opI32Store)

	for i, el := range ex.Elements {
		fg.emitLocalGet(arrLocal)
		fg.emit(opI32Const)
		fg.emitVarint(int64(8 + uint32(i)*elemSize))
		fg.emit(opI32Add)
		fg.emitExpression(el)
		fg.emitStoreFor(elemType)
	}

	fg.emitLocalGet(arrLocal)
	return stI32
}

func elemSizeOf(t types.Type) uint32 {
	switch wasmType(t) {
	case wasmbin.I32:
		return 4
	default:
		return 8
	}
}

// emitMatrixLiteral allocates `u32 rows, u32 cols` followed by rows*cols
// f64 values (spec.md §4.4.7).
func (fg *funcGen) emitMatrixLiteral(ex *ast.MatrixLiteral) stackType {
	rows := len(ex.Rows)
	cols := 0
	if rows > 0 {
		cols = len(ex.Rows[0])
	}
	total := uint32(8 + rows*cols*8)
	aligned := (total + 7) &^ 7

	matLocal := fg.declareBodyLocal(fg.newTempName("$mat"), types.NewInteger())
	fg.emit(opGlobalGet)
	fg.emitUvarint(uint64(fg.gen.bumpGlobal))
	fg.emitLocalSet(matLocal)

	fg.emitLocalGet(matLocal)
	fg.emit(opI32Const)
	fg.emitVarint(int64(aligned))
	fg.emit(opI32Add)
	fg.emit(opGlobalSet)
	fg.emitUvarint(uint64(fg.gen.bumpGlobal))

	fg.emitLocalGet(matLocal)
	fg.emit(opI32Const)
	fg.emitVarint(int64(rows))
	fg.emitMemOp(opI32Store)

	fg.emitLocalGet(matLocal)
	fg.emit(opI32Const)
	fg.emitVarint(4)
	fg.emit(opI32Add)
	fg.emit(opI32Const)
	fg.emitVarint(int64(cols))
	fg.emitMemOp(opI32Store)

	for r, row := range ex.Rows {
		for c, el := range row {
			fg.emitLocalGet(matLocal)
			fg.emit(opI32Const)
			fg.emitVarint(int64(8 + (r*cols+c)*8))
			fg.emit(opI32Add)
			fg.emitExpression(el)
			fg.emitMemOp(opF64Store)
		}
	}

	fg.emitLocalGet(matLocal)
	return stI32
}
