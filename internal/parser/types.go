package parser

import (
	"github.com/tablang/tabc/internal/token"
	"github.com/tablang/tabc/internal/types"
)

var primitiveTypes = map[string]func() types.Type{
	"integer":  types.NewInteger,
	"float":    types.NewFloat,
	"boolean":  types.NewBoolean,
	"string":   types.NewString,
	"byte":     types.NewByte,
	"unsigned": types.NewUnsigned,
	"long":     types.NewLong,
	"ulong":    types.NewULong,
	"big":      types.NewBig,
	"ubig":     types.NewUBig,
	"unit":     types.NewUnit,
	"any":      types.NewAny,
}

// looksLikeTypeStart reports whether the current token could begin a type
// expression: a primitive keyword or a capitalized/ordinary identifier
// (class name, Array, Matrix, Map, or a type parameter).
func (p *Parser) looksLikeTypeStart() bool {
	if p.at(token.IDENT) {
		return true
	}
	return false
}

// parseTypeExpr parses one type expression: a primitive name, `Array<T>`,
// `Matrix<T>`, `Map<K,V>`, a class/object name, or `Name<Args>` generics.
func (p *Parser) parseTypeExpr() (types.Type, bool) {
	if !p.at(token.IDENT) {
		p.syntaxError("expected a type name")
		return types.Type{}, false
	}
	name := p.advance().Literal

	if ctor, ok := primitiveTypes[name]; ok && !p.at(token.LT) {
		return ctor(), true
	}

	switch name {
	case "Array":
		if _, ok := p.expectAngle(); !ok {
			return types.Type{}, false
		}
		elem, ok := p.parseTypeExpr()
		if !ok {
			return types.Type{}, false
		}
		if !p.expectGT() {
			return types.Type{}, false
		}
		return types.NewArray(elem), true
	case "Matrix":
		if _, ok := p.expectAngle(); !ok {
			return types.Type{}, false
		}
		elem, ok := p.parseTypeExpr()
		if !ok {
			return types.Type{}, false
		}
		if !p.expectGT() {
			return types.Type{}, false
		}
		return types.NewMatrix(elem), true
	case "Map":
		if _, ok := p.expectAngle(); !ok {
			return types.Type{}, false
		}
		k, ok := p.parseTypeExpr()
		if !ok {
			return types.Type{}, false
		}
		if _, ok := p.expect(token.COMMA); !ok {
			return types.Type{}, false
		}
		v, ok := p.parseTypeExpr()
		if !ok {
			return types.Type{}, false
		}
		if !p.expectGT() {
			return types.Type{}, false
		}
		return types.NewMap(k, v), true
	}

	// Generic<Args> or a plain Object(name).
	if p.at(token.LT) {
		p.advance()
		var args []types.Type
		for {
			a, ok := p.parseTypeExpr()
			if !ok {
				return types.Type{}, false
			}
			args = append(args, a)
			if p.at(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		if !p.expectGT() {
			return types.Type{}, false
		}
		base := types.NewObject(name)
		return types.NewGeneric(base, args), true
	}

	return types.NewObject(name), true
}

// expectAngle consumes the `<` that opens Array/Matrix/Map/Generic type args.
// The lexer emits `<` as token.LT.
func (p *Parser) expectAngle() (token.Token, bool) { return p.expect(token.LT) }

func (p *Parser) expectGT() bool {
	_, ok := p.expect(token.GT)
	return ok
}
