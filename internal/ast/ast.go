// Package ast defines the Tab abstract syntax tree: a pure, parent-owned
// tree of tagged node variants (spec.md §3, §9 "AST ownership"). Every node
// that may diagnose carries a SourceLocation; locations are small value-like
// records copied freely, never shared by pointer.
package ast

import (
	"github.com/tablang/tabc/internal/token"
	"github.com/tablang/tabc/internal/types"
)

// SourceLocation pinpoints a node's origin for diagnostics.
type SourceLocation = token.Position

// Node is satisfied by every AST node.
type Node interface {
	Pos() SourceLocation
}

// Expression is satisfied by every expression node. ExprType is filled in
// by the semantic analyzer (spec.md §4.3): before that pass it is the zero
// Type, after it every expression's type is known and trusted by codegen.
type Expression interface {
	Node
	exprNode()
	Type() types.Type
	SetType(types.Type)
}

// Statement is satisfied by every statement node.
type Statement interface {
	Node
	stmtNode()
}

// baseExpr factors the common location + resolved-type fields shared by
// every expression node.
type baseExpr struct {
	Loc      SourceLocation
	Resolved types.Type
}

func (b *baseExpr) Pos() SourceLocation    { return b.Loc }
func (b *baseExpr) exprNode()              {}
func (b *baseExpr) Type() types.Type       { return b.Resolved }
func (b *baseExpr) SetType(t types.Type)   { b.Resolved = t }

type baseStmt struct {
	Loc SourceLocation
}

func (b *baseStmt) Pos() SourceLocation { return b.Loc }
func (b *baseStmt) stmtNode()           {}
