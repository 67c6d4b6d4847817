package parser

import (
	"github.com/tablang/tabc/internal/ast"
	"github.com/tablang/tabc/internal/token"
)

// parseStatement dispatches to one of the statement forms spec.md §4.1
// requires the parser to recognize.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case token.IF:
		return p.parseIfStatement()
	case token.ITERATE:
		return p.parseIterateStatement()
	case token.FROM:
		return p.parseRangeIterateStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.PRINT, token.PRINTL:
		return p.parsePrintStatement()
	case token.ERROR:
		if p.peekAt(1).Type == token.LPAREN {
			return p.parseErrorStatement()
		}
	case token.CONSTANT:
		return p.parseConstantApplyBlock()
	case token.IMPORT:
		return p.parseImport()
	case token.TEST:
		return p.parseTestBlock()
	case token.TRY:
		return p.parseErrorHandlerStatement()
	}

	if s := p.tryParseApplyBlock(); s != nil {
		return s
	}

	return p.parseSimpleStatement()
}

// parseSimpleStatement handles the forms that all start with an
// identifier and are disambiguated by lookahead: `Type name = expr`
// (typed var decl), `name = expr` (assignment), `obj.field = expr`
// (property assignment), or a bare expression statement (e.g. a call).
func (p *Parser) parseSimpleStatement() ast.Statement {
	if p.at(token.IDENT) && p.peekAt(1).Type == token.IDENT && p.peekAt(2).Type == token.ASSIGN {
		return p.parseVarDeclWithType()
	}
	if p.at(token.IDENT) && isGenericTypeStart(p) {
		if s := p.tryParseGenericVarDecl(); s != nil {
			return s
		}
	}
	if p.at(token.IDENT) && p.peekAt(1).Type == token.ASSIGN {
		nameTok := p.advance()
		p.advance() // =
		value := p.parseExpression()
		return ast.NewAssignment(nameTok.Pos, nameTok.Literal, value)
	}

	pos := p.cur().Pos
	expr := p.parseExpression()

	if fa, ok := expr.(*ast.FieldAccess); ok && p.at(token.ASSIGN) {
		p.advance()
		value := p.parseExpression()
		return ast.NewPropertyAssign(pos, fa.Object, fa.Field, value)
	}

	return ast.NewExpressionStatement(pos, expr)
}

// isGenericTypeStart detects `Array<...> name = expr` / `Map<...,...> name =
// expr` / `Matrix<...> name = expr` style declarations, which need more than
// one token of lookahead to distinguish from a comparison expression.
func isGenericTypeStart(p *Parser) bool {
	lit := p.cur().Literal
	return lit == "Array" || lit == "Matrix" || lit == "Map"
}

func (p *Parser) tryParseGenericVarDecl() ast.Statement {
	save := p.pos
	pos := p.cur().Pos
	typ, ok := p.parseTypeExpr()
	if ok && p.at(token.IDENT) && p.peekAt(1).Type == token.ASSIGN {
		nameTok := p.advance()
		p.advance() // =
		value := p.parseExpression()
		return ast.NewVarDecl(pos, nameTok.Literal, typ, true, value)
	}
	p.pos = save
	return nil
}

func (p *Parser) parseVarDeclWithType() ast.Statement {
	pos := p.cur().Pos
	typ, ok := p.parseTypeExpr()
	if !ok {
		return nil
	}
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		return nil
	}
	p.expect(token.ASSIGN)
	value := p.parseExpression()
	return ast.NewVarDecl(pos, nameTok.Literal, typ, true, value)
}

func (p *Parser) parseIfStatement() ast.Statement {
	pos := p.cur().Pos
	p.advance() // if
	cond := p.parseExpression()
	p.expect(token.COLON)
	then := p.parseBlock()
	var els []ast.Statement
	p.skipNewlines()
	if p.at(token.ELSE) {
		p.advance()
		p.expect(token.COLON)
		els = p.parseBlock()
	}
	return ast.NewIfStatement(pos, cond, then, els)
}

func (p *Parser) parseIterateStatement() ast.Statement {
	pos := p.cur().Pos
	p.advance() // iterate
	nameTok, _ := p.expect(token.IDENT)
	p.expect(token.IN)
	collection := p.parseExpression()
	p.expect(token.COLON)
	body := p.parseBlock()
	return ast.NewIterateStatement(pos, nameTok.Literal, collection, body)
}

func (p *Parser) parseRangeIterateStatement() ast.Statement {
	pos := p.cur().Pos
	p.advance() // from
	start := p.parseExpression()
	p.expect(token.TO)
	end := p.parseExpression()
	var step ast.Expression
	if p.at(token.STEP) {
		p.advance()
		step = p.parseExpression()
	}
	p.expect(token.COLON)
	body := p.parseBlock()
	return ast.NewRangeIterateStatement(pos, "", start, end, step, body)
}

func (p *Parser) parseReturnStatement() ast.Statement {
	pos := p.cur().Pos
	p.advance()
	if p.at(token.NEWLINE) || p.at(token.DEDENT) || p.at(token.EOF) {
		return ast.NewReturn(pos, nil)
	}
	return ast.NewReturn(pos, p.parseExpression())
}

func (p *Parser) parsePrintStatement() ast.Statement {
	tok := p.advance()
	args := p.parseArgList()
	var value ast.Expression
	if len(args) > 0 {
		value = args[0]
	}
	return ast.NewPrint(tok.Pos, value, tok.Type == token.PRINTL)
}

func (p *Parser) parseErrorStatement() ast.Statement {
	pos := p.cur().Pos
	p.advance() // error
	args := p.parseArgList()
	var msg ast.Expression
	if len(args) > 0 {
		msg = args[0]
	}
	return ast.NewErrorStatement(pos, msg)
}

func (p *Parser) parseImport() *ast.ImportStatement {
	pos := p.cur().Pos
	p.advance() // import
	p.expect(token.COLON)
	moduleTok, _ := p.expect(token.IDENT)
	module := moduleTok.Literal
	symbol := ""
	for p.at(token.DOT) {
		p.advance()
		symTok, _ := p.expect(token.IDENT)
		symbol = symTok.Literal
	}
	alias := ""
	if p.at(token.AS) {
		p.advance()
		aliasTok, _ := p.expect(token.IDENT)
		alias = aliasTok.Literal
	}
	return ast.NewImportStatement(pos, module, symbol, alias)
}

// parseErrorHandlerStatement is the statement-level block form of error
// recovery (spec.md §3 "error-handler"): `try: <protected> handler: <handler>`.
func (p *Parser) parseErrorHandlerStatement() ast.Statement {
	pos := p.cur().Pos
	p.advance() // try
	p.expect(token.COLON)
	protected := p.parseBlock()
	errVar := "error"
	var handler []ast.Statement
	p.skipNewlines()
	if p.at(token.HANDLER) {
		p.advance()
		p.expect(token.COLON)
		handler = p.parseBlock()
	}
	return ast.NewErrorHandlerStatement(pos, protected, handler, errVar)
}

func (p *Parser) parseTestBlock() ast.Statement {
	pos := p.cur().Pos
	p.advance() // test
	nameTok, _ := p.expect(token.STRING)
	p.expect(token.COLON)
	body := p.parseBlock()
	return ast.NewTestStatement(pos, nameTok.Literal, body)
}
