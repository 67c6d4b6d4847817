package parser

import (
	"github.com/tablang/tabc/internal/ast"
	"github.com/tablang/tabc/internal/token"
	"github.com/tablang/tabc/internal/types"
)

func (p *Parser) parseParameterList() []ast.Parameter {
	p.expect(token.LPAREN)
	var params []ast.Parameter
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		typ, ok := p.parseTypeExpr()
		if !ok {
			break
		}
		nameTok, ok := p.expect(token.IDENT)
		if !ok {
			break
		}
		params = append(params, ast.Parameter{Name: nameTok.Literal, Type: typ})
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	return params
}

// parseLeadingDescription consumes a bare string literal as the first
// statement of a body, treating it as a doc-comment-like description
// (SPEC_FULL.md §12, supplemented from original_source/) rather than a
// print-free expression statement.
func parseLeadingDescription(body []ast.Statement) (string, []ast.Statement) {
	if len(body) == 0 {
		return "", body
	}
	es, ok := body[0].(*ast.ExpressionStatement)
	if !ok {
		return "", body
	}
	lit, ok := es.Expr.(*ast.Literal)
	if !ok || lit.Value.Kind != types.VString {
		return "", body
	}
	return lit.Value.Str, body[1:]
}

func (p *Parser) parseFunctionDecl() *ast.Function {
	p.advance() // function
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		return nil
	}
	fn := &ast.Function{Loc: nameTok.Pos, Name: nameTok.Literal}
	fn.Parameters = p.parseParameterList()
	fn.ReturnType = types.NewUnit()
	if p.at(token.COLON) {
		p.advance()
		if typ, ok := p.parseTypeExpr(); ok {
			fn.ReturnType = typ
		}
	}
	body := p.parseBlock()
	fn.Description, fn.Body = parseLeadingDescription(body)
	return fn
}

func (p *Parser) parseClassDecl() *ast.Class {
	p.advance() // class
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		return nil
	}
	cls := &ast.Class{Loc: nameTok.Pos, Name: nameTok.Literal}
	if p.at(token.COLON) {
		p.advance()
		baseTok, _ := p.expect(token.IDENT)
		cls.BaseClass = baseTok.Literal
	}

	p.skipNewlines()
	if !p.at(token.INDENT) {
		p.syntaxError("expected an indented class body")
		return cls
	}
	p.advance()
	for !p.at(token.DEDENT) && !p.at(token.EOF) {
		if p.at(token.NEWLINE) {
			p.advance()
			continue
		}
		p.parseClassMember(cls)
	}
	if p.at(token.DEDENT) {
		p.advance()
	}
	return cls
}

func (p *Parser) parseClassMember(cls *ast.Class) {
	vis := ast.Public
	if p.at(token.PUBLIC) {
		p.advance()
	} else if p.at(token.PRIVATE) {
		vis = ast.Private
		p.advance()
	}

	switch {
	case p.at(token.CONSTRUCTOR):
		p.advance()
		params := p.parseParameterList()
		p.expect(token.COLON)
		body := p.parseBlock()
		cls.Constructor = &ast.Constructor{Loc: cls.Loc, Parameters: params, Body: body}
	case p.at(token.FUNCTION):
		pos := p.cur().Pos
		p.advance()
		nameTok, ok := p.expect(token.IDENT)
		if !ok {
			return
		}
		fn := &ast.Function{Loc: pos, Name: nameTok.Literal, Visibility: vis}
		fn.Parameters = p.parseParameterList()
		fn.ReturnType = types.NewUnit()
		if p.at(token.COLON) {
			p.advance()
			if typ, ok := p.parseTypeExpr(); ok {
				fn.ReturnType = typ
			}
		}
		body := p.parseBlock()
		fn.Description, fn.Body = parseLeadingDescription(body)
		cls.Methods = append(cls.Methods, fn)
	case p.at(token.IDENT):
		pos := p.cur().Pos
		typ, ok := p.parseTypeExpr()
		if !ok {
			return
		}
		nameTok, ok := p.expect(token.IDENT)
		if !ok {
			return
		}
		cls.Fields = append(cls.Fields, &ast.Field{Loc: pos, Name: nameTok.Literal, Type: typ, Visibility: vis})
	default:
		p.syntaxError("expected a field, method, or constructor declaration")
		p.advance()
	}
}
