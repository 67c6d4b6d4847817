package codegen

import (
	"github.com/tablang/tabc/internal/ast"
	"github.com/tablang/tabc/internal/types"
	"github.com/tablang/tabc/internal/wasmbin"
	"golang.org/x/text/unicode/norm"
)

// stringPool deduplicates string-literal constants into the static data
// area (spec.md §4.4.7): `u32 length` little-endian, then UTF-8 bytes,
// padded to an 8-byte boundary. Equal strings share one address, grounded
// on the teacher's normalize-then-compare idiom in
// internal/interp/string_helpers.go, here applied at compile time instead
// of at runtime string-comparison.
type stringPool struct {
	order []string
	addr  map[string]uint32
	next  uint32
}

func newStringPool() *stringPool {
	return &stringPool{addr: map[string]uint32{}}
}

// intern normalizes s to NFC and assigns it a stable address on first use.
func (p *stringPool) intern(s string) uint32 {
	s = norm.NFC.String(s)
	if a, ok := p.addr[s]; ok {
		return a
	}
	a := p.next
	p.addr[s] = a
	p.order = append(p.order, s)
	entryLen := uint32(4 + len(s))
	p.next += (entryLen + 7) &^ 7
	return a
}

// addrOf returns an already-interned string's address.
func (p *stringPool) addrOf(s string) (uint32, bool) {
	a, ok := p.addr[norm.NFC.String(s)]
	return a, ok
}

// finalize emits one DataSegment per pooled string and returns the bump
// cursor's initial value: the pool end, aligned up to 8.
func (p *stringPool) finalize(mod *wasmbin.Module) uint32 {
	for _, s := range p.order {
		addr := p.addr[s]
		b := make([]byte, 4+len(s))
		b[0] = byte(len(s))
		b[1] = byte(len(s) >> 8)
		b[2] = byte(len(s) >> 16)
		b[3] = byte(len(s) >> 24)
		copy(b[4:], s)
		mod.Data = append(mod.Data, wasmbin.DataSegment{Offset: addr, Bytes: b})
	}
	return (p.next + 7) &^ 7
}

// collectProgram walks every function, method, constructor, and test body
// reachable from prog and interns every string literal it finds.
func (p *stringPool) collectProgram(prog *ast.Program) {
	for _, fn := range prog.Functions {
		p.collectStatements(fn.Body)
	}
	for _, c := range prog.Classes {
		if c.Constructor != nil {
			p.collectStatements(c.Constructor.Body)
		}
		for _, m := range c.Methods {
			p.collectStatements(m.Body)
		}
	}
	for _, t := range prog.Tests {
		p.collectStatements(t.Body)
	}
}

func (p *stringPool) collectStatements(stmts []ast.Statement) {
	for _, s := range stmts {
		p.collectStatement(s)
	}
}

func (p *stringPool) collectStatement(s ast.Statement) {
	switch st := s.(type) {
	case *ast.VarDeclStatement:
		p.collectExpr(st.Init)
	case *ast.AssignmentStatement:
		p.collectExpr(st.Value)
	case *ast.PropertyAssignStatement:
		p.collectExpr(st.Object)
		p.collectExpr(st.Value)
	case *ast.PrintStatement:
		p.collectExpr(st.Value)
	case *ast.ReturnStatement:
		p.collectExpr(st.Value)
	case *ast.ExpressionStatement:
		p.collectExpr(st.Expr)
	case *ast.ErrorStatement:
		p.collectExpr(st.Message)
	case *ast.ConstructorInitStatement:
		p.collectExpr(st.Value)
	case *ast.IfStatement:
		p.collectExpr(st.Cond)
		p.collectStatements(st.Then)
		p.collectStatements(st.Else)
	case *ast.IterateStatement:
		p.collectExpr(st.Collection)
		p.collectStatements(st.Body)
	case *ast.RangeIterateStatement:
		p.collectExpr(st.Start)
		p.collectExpr(st.End)
		p.collectExpr(st.Step)
		p.collectStatements(st.Body)
	case *ast.ErrorHandlerStatement:
		p.collectStatements(st.Protected)
		p.collectStatements(st.Handler)
	case *ast.ApplyBlockStatement:
		for _, line := range st.Lines {
			for _, a := range line.Args {
				p.collectExpr(a)
			}
		}
	case *ast.TestStatement:
		p.collectStatements(st.Body)
	}
}

func (p *stringPool) collectExpr(e ast.Expression) {
	if e == nil {
		return
	}
	switch ex := e.(type) {
	case *ast.Literal:
		if ex.Value.Kind == types.VString {
			p.intern(ex.Value.Str)
		}
	case *ast.BinaryOp:
		p.collectExpr(ex.Left)
		p.collectExpr(ex.Right)
	case *ast.UnaryOp:
		p.collectExpr(ex.Operand)
	case *ast.Call:
		for _, a := range ex.Args {
			p.collectExpr(a)
		}
	case *ast.FieldAccess:
		p.collectExpr(ex.Object)
	case *ast.MethodCall:
		p.collectExpr(ex.Object)
		for _, a := range ex.Args {
			p.collectExpr(a)
		}
	case *ast.ObjectCreation:
		for _, a := range ex.Args {
			p.collectExpr(a)
		}
	case *ast.ArrayAccess:
		p.collectExpr(ex.Array)
		p.collectExpr(ex.Index)
	case *ast.MatrixAccess:
		p.collectExpr(ex.Matrix)
		p.collectExpr(ex.Row)
		p.collectExpr(ex.Col)
	case *ast.StringInterpolation:
		for _, part := range ex.Parts {
			if part.Interp == nil {
				p.intern(part.Text)
			} else {
				p.collectExpr(part.Interp)
			}
		}
	case *ast.Conditional:
		p.collectExpr(ex.Cond)
		p.collectExpr(ex.Then)
		p.collectExpr(ex.Else)
	case *ast.BaseCall:
		for _, a := range ex.Args {
			p.collectExpr(a)
		}
	case *ast.OnError:
		p.collectExpr(ex.Protected)
		p.collectExpr(ex.Fallback)
		p.collectStatements(ex.HandlerBody)
	case *ast.ArrayLiteral:
		for _, el := range ex.Elements {
			p.collectExpr(el)
		}
	case *ast.MatrixLiteral:
		for _, row := range ex.Rows {
			for _, el := range row {
				p.collectExpr(el)
			}
		}
	}
}
