package codegen

import (
	"github.com/tablang/tabc/internal/ast"
	"github.com/tablang/tabc/internal/types"
	"github.com/tablang/tabc/internal/wasmbin"
)

func (fg *funcGen) emitStatements(stmts []ast.Statement) {
	for _, s := range stmts {
		fg.emitStatement(s)
	}
}

// emitStatement lowers one statement, discarding any expression result left
// behind that the statement itself doesn't consume (spec.md §4.4.6).
func (fg *funcGen) emitStatement(s ast.Statement) {
	switch st := s.(type) {
	case *ast.VarDeclStatement:
		fg.emitVarDecl(st)
	case *ast.AssignmentStatement:
		fg.emitAssignment(st)
	case *ast.PropertyAssignStatement:
		fg.emitPropertyAssign(st.Object, st.Field, st.Value)
	case *ast.ConstructorInitStatement:
		fg.emitPropertyAssign(ast.NewThisExpr(st.Pos()), st.Field, st.Value)
	case *ast.PrintStatement:
		fg.emitPrint(st)
	case *ast.ReturnStatement:
		fg.emitReturn(st)
	case *ast.ExpressionStatement:
		if fg.emitExpression(st.Expr) != stNone {
			fg.emit(opDrop)
		}
	case *ast.ErrorStatement:
		fg.emitErrorStatement(st)
	case *ast.ImportStatement:
		// resolved entirely by the module resolver; nothing to emit.
	case *ast.IfStatement:
		fg.emitIf(st)
	case *ast.IterateStatement:
		fg.emitIterate(st)
	case *ast.RangeIterateStatement:
		fg.emitRangeIterate(st)
	case *ast.ErrorHandlerStatement:
		fg.emitErrorHandler(st)
	case *ast.ApplyBlockStatement:
		fg.emitApplyBlock(st)
	case *ast.TestStatement:
		fg.addError(st.Pos(), "internal: test statement reached function-body codegen")
	default:
		fg.addError(s.Pos(), "internal: unhandled statement kind %T in codegen", s)
	}
}

func (fg *funcGen) emitVarDecl(st *ast.VarDeclStatement) {
	t := st.DeclaredType
	if !st.HasType {
		t = st.Init.Type()
	}
	idx := fg.declareBodyLocal(st.Name, t)
	if st.Init != nil {
		fg.emitExpression(st.Init)
		fg.emitLocalSet(idx)
	}
}

func (fg *funcGen) emitAssignment(st *ast.AssignmentStatement) {
	idx, ok := fg.localIndex[st.Name]
	if !ok {
		fg.addError(st.Pos(), "internal: assignment to undeclared local %q reached codegen", st.Name)
		return
	}
	fg.emitExpression(st.Value)
	fg.emitLocalSet(idx)
}

func (fg *funcGen) emitPropertyAssign(obj ast.Expression, field string, value ast.Expression) {
	objType := obj.Type()
	ci, ok := fg.gen.classes[objType.ObjectName]
	if !ok {
		fg.addError(obj.Pos(), "internal: property assignment on unknown class %q", objType.ObjectName)
		return
	}
	off, ok := ci.fieldOff[field]
	if !ok {
		fg.addError(obj.Pos(), "internal: unknown field %q on %q", field, objType.ObjectName)
		return
	}
	fg.emitExpression(obj)
	fg.emit(opI32Const)
	fg.emitVarint(int64(off))
	fg.emit(opI32Add)
	fg.emitExpression(value)
	fg.emitStoreFor(ci.fieldType[field])
}

// emitPrint lowers print/printl. The value is stringified the same way as
// interpolation parts, then decomposed into the (dataAddr, length) pair the
// host `print`/`printl` imports expect, per the `[u32 length][bytes]`
// pooled-string layout (spec.md §4.4.7).
func (fg *funcGen) emitPrint(st *ast.PrintStatement) {
	strLocal := fg.declareBodyLocal(fg.newTempName("$pr"), types.NewInteger())
	fg.emitStringifiedValue(st.Value)
	fg.emitLocalSet(strLocal)

	fg.emitLocalGet(strLocal)
	fg.emit(opI32Const)
	fg.emitVarint(4)
	fg.emit(opI32Add)

	fg.emitLocalGet(strLocal)
	fg.emitMemOp(opI32Load)

	name := "print"
	if st.Newline {
		name = "printl"
	}
	fg.emitCallIndex(fg.gen.hostFuncIndex(name))
}

func (fg *funcGen) emitReturn(st *ast.ReturnStatement) {
	if st.Value != nil {
		fg.emitExpression(st.Value)
	}
	fg.emit(opReturn)
}

// emitErrorStatement raises a runtime error: the errStatus global is set so
// an enclosing onError/try-handler could in principle observe it, then
// execution halts via `unreachable` since there is no enclosing recovery
// scope to resume into at this point in the instruction stream.
func (fg *funcGen) emitErrorStatement(st *ast.ErrorStatement) {
	if st.Message != nil {
		if fg.emitExpression(st.Message) != stNone {
			fg.emit(opDrop)
		}
	}
	fg.emit(opI32Const)
	fg.emitVarint(1)
	fg.emit(opGlobalSet)
	fg.emitUvarint(uint64(errStatusGlobalIndex))
	fg.emit(opUnreachable)
}

func (fg *funcGen) emitIf(st *ast.IfStatement) {
	fg.emitExpression(st.Cond)
	fg.emit(opIf)
	fg.emit(opVoidBlockType)
	fg.emitStatements(st.Then)
	if len(st.Else) > 0 {
		fg.emit(opElse)
		fg.emitStatements(st.Else)
	}
	fg.emit(opEnd)
}

// emitIterate lowers `iterate var in collection: body` over an array
// (spec.md §4.4.6). Collection pointer, length, and the running index are
// all stored to locals before the block/loop begins, since instructions
// inside cannot reference values pushed to the stack beforehand.
func (fg *funcGen) emitIterate(st *ast.IterateStatement) {
	collType := st.Collection.Type()
	elemType := types.NewAny()
	if collType.Elem != nil {
		elemType = *collType.Elem
	}

	arrLocal := fg.declareBodyLocal(fg.newTempName("$coll"), types.NewInteger())
	fg.emitExpression(st.Collection)
	fg.emitLocalSet(arrLocal)

	lenLocal := fg.declareBodyLocal(fg.newTempName("$len"), types.NewInteger())
	fg.emitLocalGet(arrLocal)
	fg.emitCallIndex(fg.gen.hostFuncIndex("array_length"))
	fg.emitLocalSet(lenLocal)

	idxLocal := fg.declareBodyLocal(fg.newTempName("$idx"), types.NewInteger())
	fg.emit(opI32Const)
	fg.emitVarint(0)
	fg.emitLocalSet(idxLocal)

	elemLocal := fg.declareBodyLocal(st.VarName, elemType)

	fg.emit(opBlock)
	fg.emit(opVoidBlockType)
	fg.emit(opLoop)
	fg.emit(opVoidBlockType)

	fg.emitLocalGet(idxLocal)
	fg.emitLocalGet(lenLocal)
	fg.emit(opI32GeS)
	fg.emit(opBrIf)
	fg.emitUvarint(1)

	fg.emitLocalGet(arrLocal)
	fg.emitLocalGet(idxLocal)
	fg.emitCallIndex(fg.gen.hostFuncIndex("array_get"))
	fg.emitLoadFor(elemType)
	fg.emitLocalSet(elemLocal)

	fg.emitStatements(st.Body)

	fg.emitLocalGet(idxLocal)
	fg.emit(opI32Const)
	fg.emitVarint(1)
	fg.emit(opI32Add)
	fg.emitLocalSet(idxLocal)

	fg.emit(opBr)
	fg.emitUvarint(0)

	fg.emit(opEnd) // loop
	fg.emit(opEnd) // block
}

// emitRangeIterate lowers `from start to end [step k]: body`, an inclusive
// numeric loop (spec.md §4.4.6). Bounds and step are snapshotted to locals
// up front for the same stack-height reason as emitIterate. The step's sign
// is captured once before the loop and used to pick the exit test on every
// iteration, since "to" is ascending for a positive step and descending for
// a negative one.
func (fg *funcGen) emitRangeIterate(st *ast.RangeIterateStatement) {
	counterType := st.Start.Type()
	cst := toStackType(counterType)

	counterLocal := fg.declareBodyLocal(st.VarName, counterType)
	fg.emitExpression(st.Start)
	fg.emitLocalSet(counterLocal)

	endLocal := fg.declareBodyLocal(fg.newTempName("$end"), counterType)
	fg.emitExpression(st.End)
	fg.emitLocalSet(endLocal)

	stepLocal := fg.declareBodyLocal(fg.newTempName("$step"), counterType)
	if st.Step != nil {
		fg.emitExpression(st.Step)
	} else {
		fg.emitOne(cst)
	}
	fg.emitLocalSet(stepLocal)

	descendingLocal := fg.declareBodyLocal(fg.newTempName("$desc"), types.NewBoolean())
	fg.emitLocalGet(stepLocal)
	fg.emitZeroValue(counterType)
	fg.emit(pick(cst, opI32LtS, opI64LtS, opF64Lt))
	fg.emitLocalSet(descendingLocal)

	fg.emit(opBlock)
	fg.emit(opVoidBlockType)
	fg.emit(opLoop)
	fg.emit(opVoidBlockType)

	fg.emitLocalGet(descendingLocal)
	fg.emit(opIf)
	fg.emit(byte(wasmbin.I32))
	fg.emitLocalGet(counterLocal)
	fg.emitLocalGet(endLocal)
	fg.emit(pick(cst, opI32LtS, opI64LtS, opF64Lt))
	fg.emit(opElse)
	fg.emitLocalGet(counterLocal)
	fg.emitLocalGet(endLocal)
	fg.emit(pick(cst, opI32GtS, opI64GtS, opF64Gt))
	fg.emit(opEnd) // if
	fg.emit(opBrIf)
	fg.emitUvarint(1)

	fg.emitStatements(st.Body)

	fg.emitLocalGet(counterLocal)
	fg.emitLocalGet(stepLocal)
	fg.emit(pick(cst, opI32Add, opI64Add, opF64Add))
	fg.emitLocalSet(counterLocal)

	fg.emit(opBr)
	fg.emitUvarint(0)

	fg.emit(opEnd) // loop
	fg.emit(opEnd) // block
}

func (fg *funcGen) emitOne(st stackType) {
	switch st {
	case stI64:
		fg.emit(opI64Const)
		fg.emitVarint(1)
	case stF64:
		fg.emit(opF64Const)
		fg.code.Write(wasmbin.EncodeF64(1))
	default:
		fg.emit(opI32Const)
		fg.emitVarint(1)
	}
}

// emitErrorHandler lowers the statement-level `try: ... handler: ...` form,
// the block-statement analog of onError's handler clause: the protected
// statements always run, and the handler runs only when errStatusGlobalIndex
// was set by something inside them.
func (fg *funcGen) emitErrorHandler(st *ast.ErrorHandlerStatement) {
	fg.emitStatements(st.Protected)

	fg.emit(opGlobalGet)
	fg.emitUvarint(uint64(errStatusGlobalIndex))
	fg.emit(opIf)
	fg.emit(opVoidBlockType)

	errName := st.ErrorVarName
	if errName == "" {
		errName = "error"
	}
	errVar := fg.declareBodyLocal(errName, types.NewInteger())
	fg.emit(opGlobalGet)
	fg.emitUvarint(uint64(errStatusGlobalIndex))
	fg.emitLocalSet(errVar)

	fg.emit(opI32Const)
	fg.emitVarint(0)
	fg.emit(opGlobalSet)
	fg.emitUvarint(uint64(errStatusGlobalIndex))

	fg.emitStatements(st.Handler)
	fg.emit(opEnd)
}

// emitApplyBlock desugars all four apply-block forms (spec.md §3,
// GLOSSARY "Apply-block") into the equivalent sequence of ordinary
// statements/expressions. The MethodApply open question is resolved as:
// invoke the terminal method once per line with that line's own arguments,
// not as a chained call (SPEC_FULL.md).
func (fg *funcGen) emitApplyBlock(st *ast.ApplyBlockStatement) {
	switch st.Kind {
	case ast.TypeApply:
		for _, line := range st.Lines {
			idx := fg.declareBodyLocal(line.Name, st.DeclaredType)
			if len(line.Args) > 0 {
				fg.emitExpression(line.Args[0])
				fg.emitLocalSet(idx)
			}
		}
	case ast.ConstantApply:
		for _, line := range st.Lines {
			t := types.NewAny()
			if len(line.Args) > 0 {
				t = line.Args[0].Type()
			}
			idx := fg.declareBodyLocal(line.Name, t)
			if len(line.Args) > 0 {
				fg.emitExpression(line.Args[0])
				fg.emitLocalSet(idx)
			}
		}
	case ast.FunctionApply:
		for _, line := range st.Lines {
			call := ast.NewCall(line.Loc, st.FunctionName, line.Args)
			if fg.emitExpression(call) != stNone {
				fg.emit(opDrop)
			}
		}
	case ast.MethodApply:
		for _, line := range st.Lines {
			if len(st.MethodChain) == 0 {
				continue
			}
			var recv ast.Expression = ast.NewVariable(line.Loc, st.MethodChain[0])
			for _, field := range st.MethodChain[1 : len(st.MethodChain)-1] {
				recv = ast.NewFieldAccess(line.Loc, recv, field)
			}
			method := st.MethodChain[len(st.MethodChain)-1]
			call := ast.NewMethodCall(line.Loc, recv, method, line.Args)
			if fg.emitExpression(call) != stNone {
				fg.emit(opDrop)
			}
		}
	}
}
