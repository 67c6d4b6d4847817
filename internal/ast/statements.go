package ast

import "github.com/tablang/tabc/internal/types"

// VarDeclStatement is `Type name = expr` (initializer optional).
type VarDeclStatement struct {
	baseStmt
	DeclaredType types.Type
	HasType      bool // false when the type is to be inferred from Init
	Name         string
	Init         Expression
}

func NewVarDecl(pos SourceLocation, name string, declared types.Type, hasType bool, init Expression) *VarDeclStatement {
	return &VarDeclStatement{baseStmt: baseStmt{Loc: pos}, Name: name, DeclaredType: declared, HasType: hasType, Init: init}
}

// AssignmentStatement is `name = expr`.
type AssignmentStatement struct {
	baseStmt
	Name  string
	Value Expression
}

func NewAssignment(pos SourceLocation, name string, value Expression) *AssignmentStatement {
	return &AssignmentStatement{baseStmt: baseStmt{Loc: pos}, Name: name, Value: value}
}

// PropertyAssignStatement is `obj.field = expr`.
type PropertyAssignStatement struct {
	baseStmt
	Object Expression
	Field  string
	Value  Expression
}

func NewPropertyAssign(pos SourceLocation, obj Expression, field string, value Expression) *PropertyAssignStatement {
	return &PropertyAssignStatement{baseStmt: baseStmt{Loc: pos}, Object: obj, Field: field, Value: value}
}

// PrintStatement is `print(expr)` or `printl(expr)`.
type PrintStatement struct {
	baseStmt
	Value   Expression
	Newline bool
}

func NewPrint(pos SourceLocation, value Expression, newline bool) *PrintStatement {
	return &PrintStatement{baseStmt: baseStmt{Loc: pos}, Value: value, Newline: newline}
}

// ReturnStatement is `return [expr]`.
type ReturnStatement struct {
	baseStmt
	Value Expression // nil for a bare `return`
}

func NewReturn(pos SourceLocation, value Expression) *ReturnStatement {
	return &ReturnStatement{baseStmt: baseStmt{Loc: pos}, Value: value}
}

// ExpressionStatement wraps a call or other expression used for its effect.
type ExpressionStatement struct {
	baseStmt
	Expr Expression
}

func NewExpressionStatement(pos SourceLocation, e Expression) *ExpressionStatement {
	return &ExpressionStatement{baseStmt: baseStmt{Loc: pos}, Expr: e}
}

// ErrorStatement is `error("msg")`: raise a runtime error.
type ErrorStatement struct {
	baseStmt
	Message Expression
}

func NewErrorStatement(pos SourceLocation, msg Expression) *ErrorStatement {
	return &ErrorStatement{baseStmt: baseStmt{Loc: pos}, Message: msg}
}

// ImportStatement covers all four shapes from spec.md §4.2:
// `import: M`, `import: M as A`, `import: M.sym`, `import: M.sym as a`.
type ImportStatement struct {
	baseStmt
	Module string
	Symbol string // empty when the whole module is imported
	Alias  string // empty when no `as` clause is present
}

func NewImportStatement(pos SourceLocation, module, symbol, alias string) *ImportStatement {
	return &ImportStatement{baseStmt: baseStmt{Loc: pos}, Module: module, Symbol: symbol, Alias: alias}
}

// ConstructorInitStatement represents a field initialization performed
// implicitly at the head of a generated or user constructor body
// (`this.field = expr`), kept distinct from PropertyAssignStatement so
// codegen can special-case constructor prologue emission.
type ConstructorInitStatement struct {
	baseStmt
	Field string
	Value Expression
}

func NewConstructorInit(pos SourceLocation, field string, value Expression) *ConstructorInitStatement {
	return &ConstructorInitStatement{baseStmt: baseStmt{Loc: pos}, Field: field, Value: value}
}

// TestStatement is `test "name": <body>` (spec.md §4.1); compiled the same
// as a normal function body but recorded separately so tooling can list and
// selectively run named tests.
type TestStatement struct {
	baseStmt
	Name string
	Body []Statement
}

func NewTestStatement(pos SourceLocation, name string, body []Statement) *TestStatement {
	return &TestStatement{baseStmt: baseStmt{Loc: pos}, Name: name, Body: body}
}
