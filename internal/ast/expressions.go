package ast

import "github.com/tablang/tabc/internal/types"

// Literal is a number, boolean, string (non-interpolated), or array/matrix
// literal value embedded directly in the tree.
type Literal struct {
	baseExpr
	Value types.Value
}

func NewLiteral(pos SourceLocation, v types.Value) *Literal {
	return &Literal{baseExpr: baseExpr{Loc: pos}, Value: v}
}

// Variable references a previously declared identifier.
type Variable struct {
	baseExpr
	Name string
}

func NewVariable(pos SourceLocation, name string) *Variable {
	return &Variable{baseExpr: baseExpr{Loc: pos}, Name: name}
}

// BinaryOp is a binary operator application; Op is one of the token
// spellings ("+","-","*","/","%","^","==","!=","<",">","<=",">=","and","or","is").
type BinaryOp struct {
	baseExpr
	Op    string
	Left  Expression
	Right Expression
}

func NewBinaryOp(pos SourceLocation, op string, l, r Expression) *BinaryOp {
	return &BinaryOp{baseExpr: baseExpr{Loc: pos}, Op: op, Left: l, Right: r}
}

// UnaryOp is "-" or "not" applied to one operand.
type UnaryOp struct {
	baseExpr
	Op      string
	Operand Expression
}

func NewUnaryOp(pos SourceLocation, op string, e Expression) *UnaryOp {
	return &UnaryOp{baseExpr: baseExpr{Loc: pos}, Op: op, Operand: e}
}

// Call is a free-function invocation, resolved by (Name, argument types)
// first and by name alone as a fallback (spec.md §4.4.5).
type Call struct {
	baseExpr
	Name string
	Args []Expression
}

func NewCall(pos SourceLocation, name string, args []Expression) *Call {
	return &Call{baseExpr: baseExpr{Loc: pos}, Name: name, Args: args}
}

// FieldAccess is `obj.field`.
type FieldAccess struct {
	baseExpr
	Object Expression
	Field  string
}

func NewFieldAccess(pos SourceLocation, obj Expression, field string) *FieldAccess {
	return &FieldAccess{baseExpr: baseExpr{Loc: pos}, Object: obj, Field: field}
}

// MethodCall is `obj.method(args)`.
type MethodCall struct {
	baseExpr
	Object Expression
	Method string
	Args   []Expression
}

func NewMethodCall(pos SourceLocation, obj Expression, method string, args []Expression) *MethodCall {
	return &MethodCall{baseExpr: baseExpr{Loc: pos}, Object: obj, Method: method, Args: args}
}

// ObjectCreation is `new ClassName(args)`.
type ObjectCreation struct {
	baseExpr
	ClassName string
	Args      []Expression
}

func NewObjectCreation(pos SourceLocation, class string, args []Expression) *ObjectCreation {
	return &ObjectCreation{baseExpr: baseExpr{Loc: pos}, ClassName: class, Args: args}
}

// ArrayAccess is `arr[index]`.
type ArrayAccess struct {
	baseExpr
	Array Expression
	Index Expression
}

func NewArrayAccess(pos SourceLocation, arr, idx Expression) *ArrayAccess {
	return &ArrayAccess{baseExpr: baseExpr{Loc: pos}, Array: arr, Index: idx}
}

// MatrixAccess is `m[row][col]` surfaced as one node with two indices.
type MatrixAccess struct {
	baseExpr
	Matrix Expression
	Row    Expression
	Col    Expression
}

func NewMatrixAccess(pos SourceLocation, m, row, col Expression) *MatrixAccess {
	return &MatrixAccess{baseExpr: baseExpr{Loc: pos}, Matrix: m, Row: row, Col: col}
}

// StringPart is one element of a StringInterpolation sequence.
type StringPart struct {
	Text          string     // set when Interp == nil
	Interp        Expression // set for {expr} parts
}

// StringInterpolation is a `{Text|Interpolation}*` sequence; spec.md §9: a
// single-element Text sequence is canonicalized to a Literal at parse time,
// so this node only appears when at least one Interp part is present.
type StringInterpolation struct {
	baseExpr
	Parts []StringPart
}

func NewStringInterpolation(pos SourceLocation, parts []StringPart) *StringInterpolation {
	return &StringInterpolation{baseExpr: baseExpr{Loc: pos}, Parts: parts}
}

// Conditional is `if cond then a else b` used as an expression.
type Conditional struct {
	baseExpr
	Cond Expression
	Then Expression
	Else Expression
}

func NewConditional(pos SourceLocation, cond, then, els Expression) *Conditional {
	return &Conditional{baseExpr: baseExpr{Loc: pos}, Cond: cond, Then: then, Else: els}
}

// BaseCall is `base(args)`, a call to the immediate base class's
// constructor or overridden method from within a method body.
type BaseCall struct {
	baseExpr
	Args []Expression
}

func NewBaseCall(pos SourceLocation, args []Expression) *BaseCall {
	return &BaseCall{baseExpr: baseExpr{Loc: pos}, Args: args}
}

// OnError is the expression-level error-recovery form (spec.md §9): either
// an inline fallback (`protected onError fallback`) or a block handler
// binding `error` (`protected onError: <stmts>`).
type OnError struct {
	baseExpr
	Protected    Expression
	Fallback     Expression // set for the inline form
	HandlerBody  []Statement // set for the block form
	ErrorVarName string      // name bound in HandlerBody's scope, default "error"
}

func NewOnError(pos SourceLocation, protected, fallback Expression, handler []Statement, errVar string) *OnError {
	return &OnError{baseExpr: baseExpr{Loc: pos}, Protected: protected, Fallback: fallback, HandlerBody: handler, ErrorVarName: errVar}
}

// ErrorVarRef references the `error` binding inside an onError: handler.
type ErrorVarRef struct {
	baseExpr
	Name string
}

func NewErrorVarRef(pos SourceLocation, name string) *ErrorVarRef {
	return &ErrorVarRef{baseExpr: baseExpr{Loc: pos}, Name: name}
}

// ArrayLiteral is `[e1, e2, ...]`.
type ArrayLiteral struct {
	baseExpr
	Elements []Expression
}

func NewArrayLiteral(pos SourceLocation, elems []Expression) *ArrayLiteral {
	return &ArrayLiteral{baseExpr: baseExpr{Loc: pos}, Elements: elems}
}

// MatrixLiteral is `[[...],[...]]`.
type MatrixLiteral struct {
	baseExpr
	Rows [][]Expression
}

func NewMatrixLiteral(pos SourceLocation, rows [][]Expression) *MatrixLiteral {
	return &MatrixLiteral{baseExpr: baseExpr{Loc: pos}, Rows: rows}
}

// ThisExpr references the implicit receiver inside a method/constructor body.
type ThisExpr struct {
	baseExpr
}

func NewThisExpr(pos SourceLocation) *ThisExpr { return &ThisExpr{baseExpr: baseExpr{Loc: pos}} }
