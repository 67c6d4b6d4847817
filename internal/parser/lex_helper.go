package parser

import (
	"github.com/tablang/tabc/internal/lexer"
	"github.com/tablang/tabc/internal/token"
)

// lexTokens tokenizes a fragment of source (used for {expr} interpolation
// bodies, which are lexed and parsed independently of the surrounding
// string literal).
func lexTokens(src, file string) []token.Token {
	return lexer.New(src, file).Tokenize()
}
