package lexer

import (
	"testing"

	"github.com/tablang/tabc/internal/token"
)

func typesOf(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func assertTypes(t *testing.T, got []token.Token, want []token.Type) {
	t.Helper()
	gotTypes := typesOf(got)
	if len(gotTypes) != len(want) {
		t.Fatalf("token count mismatch: got %v, want %v", gotTypes, want)
	}
	for i := range want {
		if gotTypes[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s (all: %v)", i, gotTypes[i], want[i], gotTypes)
		}
	}
}

func TestSimpleFunction(t *testing.T) {
	src := "function start()\n\tinteger x = 42\n\tprint(x.toString())\n"
	l := New(src, "t.tab")
	toks := l.Tokenize()

	assertTypes(t, toks, []token.Type{
		token.FUNCTION, token.IDENT, token.LPAREN, token.RPAREN, token.NEWLINE,
		token.INDENT,
		token.IDENT, token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.PRINT, token.LPAREN, token.IDENT, token.DOT, token.IDENT, token.LPAREN, token.RPAREN, token.RPAREN, token.NEWLINE,
		token.DEDENT, token.EOF,
	})
}

func TestDedentClosesMultipleLevels(t *testing.T) {
	src := "function f()\n\tif x\n\t\tprint(\"a\")\n\tprint(\"b\")\n"
	l := New(src, "t.tab")
	toks := l.Tokenize()
	got := typesOf(toks)

	indents, dedents := 0, 0
	for _, tt := range got {
		if tt == token.INDENT {
			indents++
		}
		if tt == token.DEDENT {
			dedents++
		}
	}
	if indents != 2 || dedents != 2 {
		t.Fatalf("expected 2 INDENT/2 DEDENT balancing nested blocks, got indents=%d dedents=%d (%v)", indents, dedents, got)
	}
}

func TestMixedTabsSpacesWarnsNotErrors(t *testing.T) {
	src := "function f()\n \tinteger x = 1\n"
	l := New(src, "t.tab")
	_ = l.Tokenize()
	if len(l.Warnings) == 0 {
		t.Fatalf("expected a mixed tabs/spaces warning")
	}
}

func TestStringInterpolationMarkersPreserved(t *testing.T) {
	l := New(`print("hello {name}!")`+"\n", "t.tab")
	toks := l.Tokenize()
	if toks[2].Type != token.STRING || toks[2].Literal != "hello {name}!" {
		t.Fatalf("unexpected string token: %+v", toks[2])
	}
}

func TestNumberLiterals(t *testing.T) {
	cases := []struct {
		src  string
		want token.Type
	}{
		{"42\n", token.INT},
		{"0x2A\n", token.INT},
		{"3.5\n", token.FLOAT},
		{"1.5e10\n", token.FLOAT},
	}
	for _, c := range cases {
		l := New(c.src, "t.tab")
		toks := l.Tokenize()
		if toks[0].Type != c.want {
			t.Errorf("%q: got %s, want %s", c.src, toks[0].Type, c.want)
		}
	}
}
