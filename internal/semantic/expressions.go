package semantic

import (
	"github.com/tablang/tabc/internal/ast"
	cerrors "github.com/tablang/tabc/internal/errors"
	"github.com/tablang/tabc/internal/types"
)

// inferExpression computes e's type, records it via SetType, and reports any
// TypeError/UnknownSymbol encountered along the way (spec.md §4.3's "Type
// inference" algorithm).
func (a *Analyzer) inferExpression(e ast.Expression, scope *Scope) types.Type {
	t := a.inferExpressionUncached(e, scope)
	e.SetType(t)
	return t
}

func (a *Analyzer) inferExpressionUncached(e ast.Expression, scope *Scope) types.Type {
	switch expr := e.(type) {
	case *ast.Literal:
		return expr.Value.TypeOf()

	case *ast.Variable:
		if t, ok := scope.Lookup(expr.Name); ok {
			return t
		}
		a.addError(cerrors.UnknownSymbol, expr.Pos(), "undefined variable %q", expr.Name).
			WithSuggestions(cerrors.Suggest(expr.Name, scope.AllNames()))
		return types.NewAny()

	case *ast.BinaryOp:
		return a.inferBinaryOp(expr, scope)

	case *ast.UnaryOp:
		t := a.inferExpression(expr.Operand, scope)
		switch expr.Op {
		case "not":
			if t.Kind != types.Boolean {
				a.addError(cerrors.TypeError, expr.Pos(), "operator \"not\" requires boolean, got %s", t.String())
			}
			return types.NewBoolean()
		case "-":
			if !t.IsNumeric() {
				a.addError(cerrors.TypeError, expr.Pos(), "unary \"-\" requires a numeric operand, got %s", t.String())
			}
			return t
		}
		return t

	case *ast.Call:
		return a.inferCall(expr, scope)

	case *ast.FieldAccess:
		objType := a.inferExpression(expr.Object, scope)
		if objType.Kind != types.ObjectKind {
			a.addError(cerrors.TypeError, expr.Pos(), "field access requires an object, got %s", objType.String())
			return types.NewAny()
		}
		t, ok := a.classes.FieldType(objType.ObjectName, expr.Field)
		if !ok {
			a.addError(cerrors.UnknownSymbol, expr.Pos(), "class %q has no field %q", objType.ObjectName, expr.Field)
			return types.NewAny()
		}
		return t

	case *ast.MethodCall:
		return a.inferMethodCall(expr, scope)

	case *ast.ObjectCreation:
		if !a.classes.has(expr.ClassName) {
			a.addError(cerrors.UnknownSymbol, expr.Pos(), "unknown class %q", expr.ClassName)
			return types.NewObject(expr.ClassName)
		}
		for _, arg := range expr.Args {
			a.inferExpression(arg, scope)
		}
		return types.NewObject(expr.ClassName)

	case *ast.ArrayAccess:
		arrType := a.inferExpression(expr.Array, scope)
		idxType := a.inferExpression(expr.Index, scope)
		if idxType.Kind != types.Integer {
			a.addError(cerrors.TypeError, expr.Pos(), "array index must be integer, got %s", idxType.String())
		}
		if arrType.Kind != types.ArrayKind {
			a.addError(cerrors.TypeError, expr.Pos(), "indexing requires an Array, got %s", arrType.String())
			return types.NewAny()
		}
		return *arrType.Elem

	case *ast.MatrixAccess:
		mType := a.inferExpression(expr.Matrix, scope)
		rowType := a.inferExpression(expr.Row, scope)
		colType := a.inferExpression(expr.Col, scope)
		if rowType.Kind != types.Integer || colType.Kind != types.Integer {
			a.addError(cerrors.TypeError, expr.Pos(), "matrix indices must be integer")
		}
		if mType.Kind != types.MatrixKind {
			a.addError(cerrors.TypeError, expr.Pos(), "indexing requires a Matrix, got %s", mType.String())
			return types.NewAny()
		}
		return *mType.Elem

	case *ast.StringInterpolation:
		for _, part := range expr.Parts {
			if part.Interp != nil {
				a.inferExpression(part.Interp, scope)
			}
		}
		return types.NewString()

	case *ast.Conditional:
		condType := a.inferExpression(expr.Cond, scope)
		if condType.Kind != types.Boolean {
			a.addError(cerrors.TypeError, expr.Pos(), "conditional condition must be boolean, got %s", condType.String())
		}
		thenType := a.inferExpression(expr.Then, scope)
		elseType := a.inferExpression(expr.Else, scope)
		if !thenType.Equals(elseType) {
			if promoted, ok := types.Promote(thenType, elseType); ok {
				return promoted
			}
			a.addError(cerrors.TypeError, expr.Pos(), "conditional branches have incompatible types %s and %s", thenType.String(), elseType.String())
		}
		return thenType

	case *ast.BaseCall:
		for _, arg := range expr.Args {
			a.inferExpression(arg, scope)
		}
		return types.NewUnit()

	case *ast.OnError:
		protType := a.inferExpression(expr.Protected, scope)
		if expr.Fallback != nil {
			fbType := a.inferExpression(expr.Fallback, scope)
			if !assignable(fbType, protType) {
				a.addError(cerrors.TypeError, expr.Pos(), "onError fallback type %s does not match protected expression type %s", fbType.String(), protType.String())
			}
		}
		if expr.HandlerBody != nil {
			handlerScope := NewEnclosedScope(scope)
			handlerScope.Define(errorVarName(expr.ErrorVarName), types.NewInteger())
			a.checkBody(expr.HandlerBody, handlerScope, protType)
		}
		return protType

	case *ast.ErrorVarRef:
		if t, ok := scope.Lookup(expr.Name); ok {
			return t
		}
		return types.NewInteger()

	case *ast.ArrayLiteral:
		if len(expr.Elements) == 0 {
			return types.NewArray(types.NewAny())
		}
		elem := a.inferExpression(expr.Elements[0], scope)
		for _, el := range expr.Elements[1:] {
			t := a.inferExpression(el, scope)
			if !t.Equals(elem) {
				a.addError(cerrors.TypeError, el.Pos(), "array literal elements must share one type: expected %s, got %s", elem.String(), t.String())
			}
		}
		return types.NewArray(elem)

	case *ast.MatrixLiteral:
		for _, row := range expr.Rows {
			for _, el := range row {
				t := a.inferExpression(el, scope)
				if t.Kind != types.Float && t.Kind != types.Integer {
					a.addError(cerrors.TypeError, el.Pos(), "matrix elements must be numeric, got %s", t.String())
				}
			}
		}
		return types.NewMatrix(types.NewFloat())

	case *ast.ThisExpr:
		if t, ok := scope.Lookup("this"); ok {
			return t
		}
		a.addError(cerrors.TypeError, expr.Pos(), "\"this\" used outside a method or constructor")
		return types.NewAny()

	default:
		a.addError(cerrors.TypeError, e.Pos(), "internal: unhandled expression type %T", e)
		return types.NewAny()
	}
}

// inferBinaryOp implements spec.md §4.3's binary-operator rules: numeric
// promotion for arithmetic, String concatenation for "+", Boolean result
// for comparison/logical operators.
func (a *Analyzer) inferBinaryOp(expr *ast.BinaryOp, scope *Scope) types.Type {
	left := a.inferExpression(expr.Left, scope)
	right := a.inferExpression(expr.Right, scope)

	switch expr.Op {
	case "+":
		if left.Kind == types.String || right.Kind == types.String {
			return types.NewString()
		}
		if t, ok := types.Promote(left, right); ok {
			return t
		}
		a.addError(cerrors.TypeError, expr.Pos(), "operator \"+\" requires matching numeric or string operands, got %s and %s", left.String(), right.String())
		return types.NewAny()

	case "-", "*", "/", "%", "^":
		if t, ok := types.Promote(left, right); ok {
			return t
		}
		a.addError(cerrors.TypeError, expr.Pos(), "operator %q requires matching numeric operands, got %s and %s", expr.Op, left.String(), right.String())
		return types.NewAny()

	case "==", "!=", "<", ">", "<=", ">=", "is":
		numericOK := left.IsNumeric() && right.IsNumeric()
		stringOK := left.Kind == types.String && right.Kind == types.String
		if !numericOK && !stringOK && !left.Equals(right) {
			a.addError(cerrors.TypeError, expr.Pos(), "comparison requires matching numeric or string operands, got %s and %s", left.String(), right.String())
		}
		return types.NewBoolean()

	case "and", "or":
		if left.Kind != types.Boolean || right.Kind != types.Boolean {
			a.addError(cerrors.TypeError, expr.Pos(), "operator %q requires boolean operands, got %s and %s", expr.Op, left.String(), right.String())
		}
		return types.NewBoolean()

	default:
		a.addError(cerrors.TypeError, expr.Pos(), "internal: unknown binary operator %q", expr.Op)
		return types.NewAny()
	}
}

// inferCall resolves a free-function call by exact (name, argument types)
// match among the declared overloads; a call that no overload matches is a
// TypeError, with no fallback to the name alone.
func (a *Analyzer) inferCall(expr *ast.Call, scope *Scope) types.Type {
	argTypes := make([]types.Type, len(expr.Args))
	for i, arg := range expr.Args {
		argTypes[i] = a.inferExpression(arg, scope)
	}

	candidates, ok := a.overloads[expr.Name]
	if !ok {
		a.addError(cerrors.UnknownSymbol, expr.Pos(), "undefined function %q", expr.Name).
			WithSuggestions(cerrors.Suggest(expr.Name, a.functionNames()))
		return types.NewAny()
	}

	for _, fn := range candidates {
		if signatureMatches(fn, argTypes) {
			return fn.ReturnType
		}
	}

	a.addError(cerrors.TypeError, expr.Pos(), "no overload of %q matches argument types (%s)", expr.Name, joinTypes(argTypes))
	if len(candidates) > 0 {
		return candidates[0].ReturnType
	}
	return types.NewAny()
}

// builtinPrimitiveMethods are the per-type conversion helpers the host ABI
// provides directly (spec.md §6.2's *_to_string imports), callable as a
// method on any primitive value without a class declaration.
var builtinPrimitiveMethods = map[string]types.Type{
	"toString": types.NewString(),
}

func (a *Analyzer) inferMethodCall(expr *ast.MethodCall, scope *Scope) types.Type {
	objType := a.inferExpression(expr.Object, scope)
	argTypes := make([]types.Type, len(expr.Args))
	for i, arg := range expr.Args {
		argTypes[i] = a.inferExpression(arg, scope)
	}

	if objType.Kind != types.ObjectKind {
		if ret, ok := builtinPrimitiveMethods[expr.Method]; ok && len(expr.Args) == 0 {
			return ret
		}
		a.addError(cerrors.TypeError, expr.Pos(), "method call requires an object, got %s", objType.String())
		return types.NewAny()
	}
	m, ok := a.classes.Method(objType.ObjectName, expr.Method)
	if !ok {
		a.addError(cerrors.UnknownSymbol, expr.Pos(), "class %q has no method %q", objType.ObjectName, expr.Method)
		return types.NewAny()
	}
	if len(m.params) != len(argTypes) {
		a.addError(cerrors.TypeError, expr.Pos(), "method %q expects %d argument(s), got %d", expr.Method, len(m.params), len(argTypes))
		return m.ret
	}
	for i, p := range m.params {
		if !assignable(argTypes[i], p) {
			a.addError(cerrors.TypeError, expr.Pos(), "argument %d to %q.%q: expected %s, got %s", i+1, objType.ObjectName, expr.Method, p.String(), argTypes[i].String())
		}
	}
	return m.ret
}

// signatureMatches implements spec.md §9's exact-match overload discipline:
// resolution is by exact parameter-type equality, not subtyping.
func signatureMatches(fn *ast.Function, argTypes []types.Type) bool {
	if len(fn.Parameters) != len(argTypes) {
		return false
	}
	for i, p := range fn.Parameters {
		if !p.Type.Equals(argTypes[i]) {
			return false
		}
	}
	return true
}

func (a *Analyzer) functionNames() []string {
	names := make([]string, 0, len(a.functions))
	for n := range a.functions {
		names = append(names, n)
	}
	return names
}

func joinTypes(ts []types.Type) string {
	s := ""
	for i, t := range ts {
		if i > 0 {
			s += ", "
		}
		s += t.String()
	}
	return s
}
