// Package parser implements the indentation-sensitive, PEG-style,
// precedence-climbing parser described in spec.md §4.1. It turns a token
// stream from internal/lexer into an *ast.Program.
package parser

import (
	"fmt"

	cerrors "github.com/tablang/tabc/internal/errors"
	"github.com/tablang/tabc/internal/ast"
	"github.com/tablang/tabc/internal/lexer"
	"github.com/tablang/tabc/internal/token"
)

// maxRecoveryErrors bounds how many errors parse_with_recovery collects
// before giving up, matching spec.md §4.1's "up to N errors" contract.
const maxRecoveryErrors = 50

// Parser consumes a flat token slice and produces an *ast.Program.
type Parser struct {
	toks     []token.Token
	pos      int
	file     string
	source   string
	recovery bool
	errs     []*cerrors.CompilerError
}

func newParser(toks []token.Token, source, file string) *Parser {
	return &Parser{toks: toks, file: file, source: source}
}

// Parse parses one file and returns its Program, or the first SyntaxError.
func Parse(source, filePath string) (*ast.Program, *cerrors.CompilerError) {
	l := lexer.New(source, filePath)
	p := newParser(l.Tokenize(), source, filePath)
	prog := p.parseProgram()
	if len(p.errs) > 0 {
		return nil, p.errs[0]
	}
	return prog, nil
}

// ParseWithRecovery parses one file, resynchronizing at the next top-level
// construct after each error, and returns every error collected in textual
// order (spec.md §4.1).
func ParseWithRecovery(source, filePath string) (*ast.Program, []*cerrors.CompilerError) {
	l := lexer.New(source, filePath)
	p := newParser(l.Tokenize(), source, filePath)
	p.recovery = true
	prog := p.parseProgram()
	return prog, p.errs
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *Parser) at(tt token.Type) bool { return p.cur().Type == tt }

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) skipNewlines() {
	for p.at(token.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) expect(tt token.Type) (token.Token, bool) {
	if p.at(tt) {
		return p.advance(), true
	}
	p.syntaxError(fmt.Sprintf("expected %s, got %s", tt, p.cur().Type))
	return p.cur(), false
}

func (p *Parser) syntaxError(msg string) {
	e := cerrors.New(cerrors.SyntaxError, p.cur().Pos, msg).WithSource(p.source)
	p.errs = append(p.errs, e)
}

func (p *Parser) addError(kind cerrors.Kind, pos token.Position, msg string) {
	p.errs = append(p.errs, cerrors.New(kind, pos, msg).WithSource(p.source))
}

// synchronize discards tokens until the next likely top-level boundary: a
// NEWLINE directly followed by `function`, `class`, `import`, or `test`,
// or EOF (spec.md §4.1 "resynchronize at the next top-level construct").
func (p *Parser) synchronize() {
	for !p.at(token.EOF) {
		if p.at(token.NEWLINE) {
			p.advance()
			switch p.cur().Type {
			case token.FUNCTION, token.CLASS, token.IMPORT, token.TEST:
				return
			}
			continue
		}
		p.advance()
	}
}

// parseBlock consumes NEWLINE INDENT stmt* DEDENT and returns the
// statements, used for every `:`-introduced suite in the grammar.
func (p *Parser) parseBlock() []ast.Statement {
	p.skipNewlines()
	if !p.at(token.INDENT) {
		p.syntaxError("expected an indented block")
		return nil
	}
	p.advance() // INDENT
	var stmts []ast.Statement
	for !p.at(token.DEDENT) && !p.at(token.EOF) {
		if p.at(token.NEWLINE) {
			p.advance()
			continue
		}
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
		}
		if p.recovery && len(p.errs) >= maxRecoveryErrors {
			break
		}
	}
	if p.at(token.DEDENT) {
		p.advance()
	}
	return stmts
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	p.skipNewlines()
	for !p.at(token.EOF) {
		startPos := p.pos
		switch p.cur().Type {
		case token.IMPORT:
			if imp := p.parseImport(); imp != nil {
				prog.Imports = append(prog.Imports, imp)
			}
		case token.FUNCTION:
			if fn := p.parseFunctionDecl(); fn != nil {
				prog.Functions = append(prog.Functions, fn)
				if fn.Name == "start" {
					prog.StartFunction = fn
				}
			}
		case token.CLASS:
			if cls := p.parseClassDecl(); cls != nil {
				prog.Classes = append(prog.Classes, cls)
			}
		case token.TEST:
			if ts, ok := p.parseTestBlock().(*ast.TestStatement); ok {
				prog.Tests = append(prog.Tests, ts)
			}
		default:
			p.syntaxError(fmt.Sprintf("unexpected top-level token %s", p.cur().Type))
			if p.recovery {
				p.synchronize()
			} else {
				return prog
			}
		}
		p.skipNewlines()
		if p.pos == startPos {
			// Safety valve: guarantee forward progress even on unexpected input.
			p.advance()
		}
		if p.recovery && len(p.errs) >= maxRecoveryErrors {
			break
		}
	}
	return prog
}
