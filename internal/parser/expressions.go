package parser

import (
	"strconv"
	"strings"

	"github.com/tablang/tabc/internal/ast"
	"github.com/tablang/tabc/internal/token"
	"github.com/tablang/tabc/internal/types"
)

// parseExpression is the entry point of the precedence-climbing parser:
// logical `or` < logical `and` < equality/`is` < relational < additive <
// multiplicative < power < unary < primary (spec.md §4.1).
func (p *Parser) parseExpression() ast.Expression {
	return p.parseOnError()
}

// parseOnError handles the expression-level `onError`/`onError:` forms,
// which bind looser than everything else so `a + b onError 0` parses as
// `(a + b) onError 0`.
func (p *Parser) parseOnError() ast.Expression {
	left := p.parseOr()
	if p.at(token.ONERROR) {
		pos := p.cur().Pos
		p.advance()
		if p.at(token.COLON) {
			p.advance()
			errVar := "error"
			body := p.parseBlock()
			return ast.NewOnError(pos, left, nil, body, errVar)
		}
		fallback := p.parseOr()
		return ast.NewOnError(pos, left, fallback, nil, "")
	}
	return left
}

func (p *Parser) parseOr() ast.Expression {
	left := p.parseAnd()
	for p.at(token.OR) {
		pos := p.cur().Pos
		p.advance()
		right := p.parseAnd()
		left = ast.NewBinaryOp(pos, "or", left, right)
	}
	return left
}

func (p *Parser) parseAnd() ast.Expression {
	left := p.parseEquality()
	for p.at(token.AND) {
		pos := p.cur().Pos
		p.advance()
		right := p.parseEquality()
		left = ast.NewBinaryOp(pos, "and", left, right)
	}
	return left
}

func (p *Parser) parseEquality() ast.Expression {
	left := p.parseRelational()
	for p.at(token.EQ) || p.at(token.NEQ) || p.at(token.IS) {
		op := p.cur()
		p.advance()
		right := p.parseRelational()
		left = ast.NewBinaryOp(op.Pos, op.Type.String(), left, right)
	}
	return left
}

func (p *Parser) parseRelational() ast.Expression {
	left := p.parseAdditive()
	for p.at(token.LT) || p.at(token.GT) || p.at(token.LE) || p.at(token.GE) {
		op := p.cur()
		p.advance()
		right := p.parseAdditive()
		left = ast.NewBinaryOp(op.Pos, op.Type.String(), left, right)
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	for p.at(token.PLUS) || p.at(token.MINUS) {
		op := p.cur()
		p.advance()
		right := p.parseMultiplicative()
		left = ast.NewBinaryOp(op.Pos, op.Type.String(), left, right)
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expression {
	left := p.parsePower()
	for p.at(token.STAR) || p.at(token.SLASH) || p.at(token.PERCENT) {
		op := p.cur()
		p.advance()
		right := p.parsePower()
		left = ast.NewBinaryOp(op.Pos, op.Type.String(), left, right)
	}
	return left
}

func (p *Parser) parsePower() ast.Expression {
	left := p.parseUnary()
	if p.at(token.CARET) {
		pos := p.cur().Pos
		p.advance()
		right := p.parsePower() // right-associative
		return ast.NewBinaryOp(pos, "^", left, right)
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	if p.at(token.MINUS) || p.at(token.NOT) {
		op := p.cur()
		p.advance()
		operand := p.parseUnary()
		return ast.NewUnaryOp(op.Pos, op.Type.String(), operand)
	}
	return p.parsePostfix()
}

// parsePostfix handles the left-recursive suffixes: call, property/method
// access, and array/matrix indexing, applied to a primary in sequence.
func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch {
		case p.at(token.DOT):
			p.advance()
			nameTok, ok := p.expect(token.IDENT)
			if !ok {
				return expr
			}
			if p.at(token.LPAREN) {
				args := p.parseArgList()
				expr = ast.NewMethodCall(nameTok.Pos, expr, nameTok.Literal, args)
			} else {
				expr = ast.NewFieldAccess(nameTok.Pos, expr, nameTok.Literal)
			}
		case p.at(token.LBRACKET):
			pos := p.cur().Pos
			p.advance()
			idx := p.parseExpression()
			p.expect(token.RBRACKET)
			if p.at(token.LBRACKET) {
				p.advance()
				col := p.parseExpression()
				p.expect(token.RBRACKET)
				expr = ast.NewMatrixAccess(pos, expr, idx, col)
			} else {
				expr = ast.NewArrayAccess(pos, expr, idx)
			}
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgList() []ast.Expression {
	p.expect(token.LPAREN)
	var args []ast.Expression
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		args = append(args, p.parseExpression())
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	return args
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case token.INT:
		p.advance()
		return ast.NewLiteral(tok.Pos, parseIntLiteral(tok.Literal))
	case token.FLOAT:
		p.advance()
		v, _ := strconv.ParseFloat(tok.Literal, 64)
		return ast.NewLiteral(tok.Pos, types.FloatValue(v))
	case token.TRUE:
		p.advance()
		return ast.NewLiteral(tok.Pos, types.BoolValue(true))
	case token.FALSE:
		p.advance()
		return ast.NewLiteral(tok.Pos, types.BoolValue(false))
	case token.NULL:
		p.advance()
		return ast.NewLiteral(tok.Pos, types.NullValue())
	case token.STRING:
		p.advance()
		return p.buildStringExpr(tok)
	case token.THIS:
		p.advance()
		return ast.NewThisExpr(tok.Pos)
	case token.ERROR:
		p.advance()
		return ast.NewErrorVarRef(tok.Pos, "error")
	case token.BASE:
		p.advance()
		args := p.parseArgList()
		return ast.NewBaseCall(tok.Pos, args)
	case token.NEW:
		p.advance()
		nameTok, _ := p.expect(token.IDENT)
		args := p.parseArgList()
		return ast.NewObjectCreation(tok.Pos, nameTok.Literal, args)
	case token.IF:
		return p.parseConditionalExpr()
	case token.LPAREN:
		p.advance()
		inner := p.parseExpression()
		p.expect(token.RPAREN)
		return inner
	case token.LBRACKET:
		return p.parseArrayOrMatrixLiteral()
	case token.IDENT:
		p.advance()
		if p.at(token.LPAREN) {
			args := p.parseArgList()
			return ast.NewCall(tok.Pos, tok.Literal, args)
		}
		return ast.NewVariable(tok.Pos, tok.Literal)
	default:
		p.syntaxError("unexpected token in expression: " + tok.Type.String())
		p.advance()
		return ast.NewLiteral(tok.Pos, types.UnitValue())
	}
}

func parseIntLiteral(lit string) types.Value {
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		n, _ := strconv.ParseInt(lit[2:], 16, 64)
		return types.IntValue(n)
	}
	n, _ := strconv.ParseInt(lit, 10, 64)
	return types.IntValue(n)
}

// parseConditionalExpr is `if cond then a else b` used as an expression.
func (p *Parser) parseConditionalExpr() ast.Expression {
	pos := p.cur().Pos
	p.advance() // if
	cond := p.parseExpression()
	p.expect(token.THEN)
	then := p.parseExpression()
	p.expect(token.ELSE)
	els := p.parseExpression()
	return ast.NewConditional(pos, cond, then, els)
}

func (p *Parser) parseArrayOrMatrixLiteral() ast.Expression {
	pos := p.cur().Pos
	p.advance() // [
	if p.at(token.LBRACKET) {
		// Matrix literal: [[...],[...]]
		var rows [][]ast.Expression
		for {
			p.expect(token.LBRACKET)
			var row []ast.Expression
			for !p.at(token.RBRACKET) && !p.at(token.EOF) {
				row = append(row, p.parseExpression())
				if p.at(token.COMMA) {
					p.advance()
					continue
				}
				break
			}
			p.expect(token.RBRACKET)
			rows = append(rows, row)
			if p.at(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RBRACKET)
		return ast.NewMatrixLiteral(pos, rows)
	}
	var elems []ast.Expression
	for !p.at(token.RBRACKET) && !p.at(token.EOF) {
		elems = append(elems, p.parseExpression())
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBRACKET)
	return ast.NewArrayLiteral(pos, elems)
}

// buildStringExpr splits the lexer's raw string literal (which keeps
// `{expr}` interpolation markers inline) into Text/Interpolation parts
// (spec.md §4.1 "Strings"). A single Text part is canonicalized to a plain
// Literal; any interpolation collapses into a StringInterpolation node
// (spec.md §9).
func (p *Parser) buildStringExpr(tok token.Token) ast.Expression {
	parts, hasInterp := splitInterpolatedString(tok.Literal)
	if !hasInterp {
		return ast.NewLiteral(tok.Pos, types.StringValue(tok.Literal))
	}
	var astParts []ast.StringPart
	for _, part := range parts {
		if part.isExpr {
			sub := newParser(lexTokens(part.text, p.file), p.source, p.file)
			expr := sub.parseExpression()
			astParts = append(astParts, ast.StringPart{Interp: expr})
		} else {
			astParts = append(astParts, ast.StringPart{Text: part.text})
		}
	}
	return ast.NewStringInterpolation(tok.Pos, astParts)
}

type rawPart struct {
	text   string
	isExpr bool
}

// splitInterpolatedString scans s for balanced `{...}` spans and returns the
// alternating Text/Interpolation-source segments, plus whether any
// interpolation was found at all.
func splitInterpolatedString(s string) ([]rawPart, bool) {
	var parts []rawPart
	var buf strings.Builder
	found := false
	i := 0
	for i < len(s) {
		if s[i] == '{' {
			depth := 1
			j := i + 1
			for j < len(s) && depth > 0 {
				if s[j] == '{' {
					depth++
				} else if s[j] == '}' {
					depth--
				}
				if depth > 0 {
					j++
				}
			}
			if j < len(s) {
				if buf.Len() > 0 {
					parts = append(parts, rawPart{text: buf.String()})
					buf.Reset()
				}
				parts = append(parts, rawPart{text: s[i+1 : j], isExpr: true})
				found = true
				i = j + 1
				continue
			}
		}
		buf.WriteByte(s[i])
		i++
	}
	if buf.Len() > 0 || len(parts) == 0 {
		parts = append(parts, rawPart{text: buf.String()})
	}
	return parts, found
}
