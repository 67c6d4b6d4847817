package errors

import (
	"strings"
	"testing"

	"github.com/tablang/tabc/internal/token"
)

func TestFormatIncludesCaretAtColumn(t *testing.T) {
	src := "integer x = foo\n"
	e := New(UnknownSymbol, token.Position{File: "t.tab", Line: 1, Column: 13}, "undefined identifier: foo").WithSource(src)
	out := e.Format(false)
	if !strings.Contains(out, "UnknownSymbol at t.tab:1:13") {
		t.Fatalf("missing header: %s", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("missing caret: %s", out)
	}
}

func TestSuggestFindsCloseNames(t *testing.T) {
	// "lenght" is at Levenshtein distance 2 from both "length" and
	// "height"; equal distances are ordered by name.
	got := Suggest("lenght", []string{"length", "height", "unrelated"})
	if len(got) != 2 || got[0] != "height" || got[1] != "length" {
		t.Fatalf("expected [height length], got %v", got)
	}
}

func TestFormatErrorsBatch(t *testing.T) {
	e1 := New(SyntaxError, token.Position{Line: 1, Column: 1}, "a")
	e2 := New(TypeError, token.Position{Line: 2, Column: 1}, "b")
	out := FormatErrors([]*CompilerError{e1, e2}, false)
	if !strings.Contains(out, "2 error(s)") {
		t.Fatalf("expected batch header: %s", out)
	}
}
