package parser

import (
	"github.com/tablang/tabc/internal/ast"
	"github.com/tablang/tabc/internal/token"
	"github.com/tablang/tabc/internal/types"
)

// resolveBareTypeName maps a single bare identifier (no generic args) used
// as a type-apply prefix to its Type: a primitive name or an object type.
func resolveBareTypeName(name string) types.Type {
	if ctor, ok := primitiveTypes[name]; ok {
		return ctor()
	}
	return types.NewObject(name)
}

// tryParseApplyBlock recognizes the `prefix:` + indented-suite shape shared
// by all four apply-block forms (GLOSSARY "Apply-block"). It returns nil
// without consuming input when the current position is not such a prefix.
func (p *Parser) tryParseApplyBlock() ast.Statement {
	if !p.at(token.IDENT) {
		return nil
	}
	// Scan ahead for `IDENT (DOT IDENT)* COLON` without consuming.
	n := 1
	chain := []string{p.cur().Literal}
	for p.peekAt(n).Type == token.DOT && p.peekAt(n+1).Type == token.IDENT {
		chain = append(chain, p.peekAt(n+1).Literal)
		n += 2
	}
	if p.peekAt(n).Type != token.COLON {
		return nil
	}

	pos := p.cur().Pos
	for i := 0; i < n; i++ {
		p.advance()
	}
	p.advance() // colon

	if len(chain) > 1 {
		return p.parseMethodApplyBody(pos, chain)
	}

	// One-segment prefix: either a type name (lines are `name = expr`) or a
	// function name (lines are `(args)`). Peek into the block to decide.
	if !p.atBlockStart() {
		p.syntaxError("expected an indented apply-block body")
		return ast.NewApplyBlockStatement(pos, ast.FunctionApply)
	}
	save := p.pos
	p.skipNewlines()
	isCall := p.peekAt(1).Type == token.LPAREN
	p.pos = save
	if isCall {
		return p.parseFunctionApplyBody(pos, chain[0])
	}
	return p.parseTypeApplyBody(pos, chain[0])
}

// atBlockStart reports whether, after skipping NEWLINEs, the parser is
// positioned at the INDENT that opens a suite.
func (p *Parser) atBlockStart() bool {
	save := p.pos
	p.skipNewlines()
	ok := p.at(token.INDENT)
	p.pos = save
	return ok
}

func (p *Parser) parseConstantApplyBlock() ast.Statement {
	pos := p.cur().Pos
	p.advance() // constant
	p.expect(token.COLON)
	stmt := ast.NewApplyBlockStatement(pos, ast.ConstantApply)
	p.skipNewlines()
	if !p.at(token.INDENT) {
		p.syntaxError("expected an indented constant block")
		return stmt
	}
	p.advance()
	for !p.at(token.DEDENT) && !p.at(token.EOF) {
		if p.at(token.NEWLINE) {
			p.advance()
			continue
		}
		nameTok, ok := p.expect(token.IDENT)
		if !ok {
			break
		}
		p.expect(token.ASSIGN)
		value := p.parseExpression()
		stmt.Lines = append(stmt.Lines, ast.ApplyLine{Name: nameTok.Literal, Args: []ast.Expression{value}, Loc: nameTok.Pos})
	}
	if p.at(token.DEDENT) {
		p.advance()
	}
	return stmt
}

func (p *Parser) parseTypeApplyBody(pos token.Position, typeName string) ast.Statement {
	stmt := ast.NewApplyBlockStatement(pos, ast.TypeApply)
	stmt.DeclaredType = resolveBareTypeName(typeName)
	p.skipNewlines()
	p.expect(token.INDENT)
	for !p.at(token.DEDENT) && !p.at(token.EOF) {
		if p.at(token.NEWLINE) {
			p.advance()
			continue
		}
		nameTok, ok := p.expect(token.IDENT)
		if !ok {
			break
		}
		p.expect(token.ASSIGN)
		value := p.parseExpression()
		stmt.Lines = append(stmt.Lines, ast.ApplyLine{Name: nameTok.Literal, Args: []ast.Expression{value}, Loc: nameTok.Pos})
	}
	if p.at(token.DEDENT) {
		p.advance()
	}
	return stmt
}

func (p *Parser) parseFunctionApplyBody(pos token.Position, funcName string) ast.Statement {
	stmt := ast.NewApplyBlockStatement(pos, ast.FunctionApply)
	stmt.FunctionName = funcName
	p.skipNewlines()
	p.expect(token.INDENT)
	for !p.at(token.DEDENT) && !p.at(token.EOF) {
		if p.at(token.NEWLINE) {
			p.advance()
			continue
		}
		lineTok := p.cur()
		args := p.parseArgList()
		stmt.Lines = append(stmt.Lines, ast.ApplyLine{Args: args, Loc: lineTok.Pos})
	}
	if p.at(token.DEDENT) {
		p.advance()
	}
	return stmt
}

func (p *Parser) parseMethodApplyBody(pos token.Position, chain []string) ast.Statement {
	stmt := ast.NewApplyBlockStatement(pos, ast.MethodApply)
	stmt.MethodChain = chain
	p.skipNewlines()
	p.expect(token.INDENT)
	for !p.at(token.DEDENT) && !p.at(token.EOF) {
		if p.at(token.NEWLINE) {
			p.advance()
			continue
		}
		lineTok := p.cur()
		args := p.parseArgList()
		stmt.Lines = append(stmt.Lines, ast.ApplyLine{Args: args, Loc: lineTok.Pos})
	}
	if p.at(token.DEDENT) {
		p.advance()
	}
	return stmt
}
