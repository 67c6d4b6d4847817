package semantic

import (
	"github.com/tablang/tabc/internal/ast"
	cerrors "github.com/tablang/tabc/internal/errors"
	"github.com/tablang/tabc/internal/types"
)

func (a *Analyzer) checkStatement(stmt ast.Statement, scope *Scope, expectedReturn types.Type) {
	switch s := stmt.(type) {
	case *ast.VarDeclStatement:
		a.checkVarDecl(s, scope)
	case *ast.AssignmentStatement:
		a.checkAssignment(s, scope)
	case *ast.PropertyAssignStatement:
		objType := a.inferExpression(s.Object, scope)
		valType := a.inferExpression(s.Value, scope)
		if objType.Kind != types.ObjectKind {
			a.addError(cerrors.TypeError, s.Pos(), "property assignment target must be an object, got %s", objType.String())
			return
		}
		fieldType, ok := a.classes.FieldType(objType.ObjectName, s.Field)
		if !ok {
			a.addError(cerrors.UnknownSymbol, s.Pos(), "class %q has no field %q", objType.ObjectName, s.Field)
			return
		}
		if !assignable(valType, fieldType) {
			a.addError(cerrors.TypeError, s.Pos(), "cannot assign %s to field %q of type %s", valType.String(), s.Field, fieldType.String())
		}
	case *ast.PrintStatement:
		a.inferExpression(s.Value, scope)
	case *ast.ReturnStatement:
		if s.Value == nil {
			if expectedReturn.Kind != types.Unit {
				a.addError(cerrors.TypeError, s.Pos(), "expected a return value of type %s", expectedReturn.String())
			}
			return
		}
		t := a.inferExpression(s.Value, scope)
		if !assignable(t, expectedReturn) {
			a.addError(cerrors.TypeError, s.Pos(), "return type mismatch: expected %s, got %s", expectedReturn.String(), t.String())
		}
	case *ast.ExpressionStatement:
		a.inferExpression(s.Expr, scope)
	case *ast.ErrorStatement:
		msgType := a.inferExpression(s.Message, scope)
		if msgType.Kind != types.String {
			a.addError(cerrors.TypeError, s.Pos(), "error message must be a string, got %s", msgType.String())
		}
	case *ast.ConstructorInitStatement:
		a.inferExpression(s.Value, scope)
	case *ast.IfStatement:
		cond := a.inferExpression(s.Cond, scope)
		if cond.Kind != types.Boolean {
			a.addError(cerrors.TypeError, s.Pos(), "if condition must be boolean, got %s", cond.String())
		}
		a.checkBody(s.Then, NewEnclosedScope(scope), expectedReturn)
		if s.Else != nil {
			a.checkBody(s.Else, NewEnclosedScope(scope), expectedReturn)
		}
	case *ast.IterateStatement:
		collType := a.inferExpression(s.Collection, scope)
		inner := NewEnclosedScope(scope)
		switch collType.Kind {
		case types.ArrayKind:
			inner.Define(s.VarName, *collType.Elem)
		case types.MatrixKind:
			inner.Define(s.VarName, *collType.Elem)
		default:
			a.addError(cerrors.TypeError, s.Pos(), "iterate requires an Array or Matrix, got %s", collType.String())
			inner.Define(s.VarName, types.NewAny())
		}
		a.checkBody(s.Body, inner, expectedReturn)
	case *ast.RangeIterateStatement:
		start := a.inferExpression(s.Start, scope)
		end := a.inferExpression(s.End, scope)
		if start.Kind != types.Integer || end.Kind != types.Integer {
			a.addError(cerrors.TypeError, s.Pos(), "from/to range bounds must be integer")
		}
		if s.Step != nil {
			if step := a.inferExpression(s.Step, scope); step.Kind != types.Integer {
				a.addError(cerrors.TypeError, s.Pos(), "range step must be integer, got %s", step.String())
			}
		}
		inner := NewEnclosedScope(scope)
		inner.Define(s.VarName, types.NewInteger())
		a.checkBody(s.Body, inner, expectedReturn)
	case *ast.ErrorHandlerStatement:
		a.checkBody(s.Protected, NewEnclosedScope(scope), expectedReturn)
		handlerScope := NewEnclosedScope(scope)
		handlerScope.Define(errorVarName(s.ErrorVarName), types.NewInteger())
		a.checkBody(s.Handler, handlerScope, expectedReturn)
	case *ast.TestStatement:
		a.checkBody(s.Body, NewEnclosedScope(scope), types.NewUnit())
	case *ast.ApplyBlockStatement:
		a.checkApplyBlock(s, scope)
	case *ast.ImportStatement:
		// resolved by internal/resolver before semantic analysis runs.
	default:
		a.addError(cerrors.TypeError, stmt.Pos(), "internal: unhandled statement type %T", stmt)
	}
}

func errorVarName(name string) string {
	if name == "" {
		return "error"
	}
	return name
}

func (a *Analyzer) checkVarDecl(s *ast.VarDeclStatement, scope *Scope) {
	var declared types.Type
	if s.HasType {
		declared = s.DeclaredType
	}
	var initType types.Type
	if s.Init != nil {
		initType = a.inferExpression(s.Init, scope)
	}
	if !s.HasType {
		declared = initType
	} else if s.Init != nil && !assignable(initType, declared) {
		a.addError(cerrors.TypeError, s.Pos(), "cannot initialize %q of type %s with value of type %s", s.Name, declared.String(), initType.String())
	}
	scope.Define(s.Name, declared)
}

func (a *Analyzer) checkAssignment(s *ast.AssignmentStatement, scope *Scope) {
	target, ok := scope.Lookup(s.Name)
	if !ok {
		a.addError(cerrors.UnknownSymbol, s.Pos(), "undefined variable %q", s.Name).WithSuggestions(
			cerrors.Suggest(s.Name, scope.AllNames()))
		a.inferExpression(s.Value, scope)
		return
	}
	valType := a.inferExpression(s.Value, scope)
	if !assignable(valType, target) {
		a.addError(cerrors.TypeError, s.Pos(), "cannot assign %s to %q of type %s", valType.String(), s.Name, target.String())
	}
}

// assignable mirrors spec.md §4.3's promotion rule plus exact match; it is
// intentionally narrower than the teacher's canAssign (no class-hierarchy
// widening beyond §4.3's literal rule set, since Tab resolves overloads by
// exact signature rather than subtyping, per spec.md §9).
func assignable(from, to types.Type) bool {
	if from.Equals(to) {
		return true
	}
	if to.Kind == types.Any {
		return true
	}
	if _, ok := types.Promote(from, to); ok {
		return true
	}
	return false
}

func (a *Analyzer) checkApplyBlock(s *ast.ApplyBlockStatement, scope *Scope) {
	switch s.Kind {
	case ast.TypeApply:
		for _, line := range s.Lines {
			t := a.inferExpression(line.Args[0], scope)
			if !assignable(t, s.DeclaredType) {
				a.addError(cerrors.TypeError, line.Loc, "cannot initialize %q of type %s with value of type %s", line.Name, s.DeclaredType.String(), t.String())
			}
			scope.Define(line.Name, s.DeclaredType)
		}
	case ast.ConstantApply:
		for _, line := range s.Lines {
			t := a.inferExpression(line.Args[0], scope)
			scope.Define(line.Name, t)
		}
	case ast.FunctionApply:
		for _, line := range s.Lines {
			for _, arg := range line.Args {
				a.inferExpression(arg, scope)
			}
		}
	case ast.MethodApply:
		for _, line := range s.Lines {
			for _, arg := range line.Args {
				a.inferExpression(arg, scope)
			}
		}
	}
}
