// Package errors formats Tab compiler diagnostics with source context,
// line/column information, and a caret indicator — adapted from the
// teacher's single-kind CompilerError into the twelve user-facing kinds
// spec.md §7 names.
package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tablang/tabc/internal/token"
)

// Kind is the user-facing diagnostic taxonomy from spec.md §7. It is not a
// Go error type hierarchy — every kind is carried by the single
// CompilerError struct below.
type Kind int

const (
	SyntaxError Kind = iota
	TypeError
	UnknownSymbol
	InheritanceError
	DuplicateDefinition
	ImportError
	SymbolError
	CodegenError
	ValidationError
	MemoryError
	IOError
	RuntimeError
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case TypeError:
		return "TypeError"
	case UnknownSymbol:
		return "UnknownSymbol"
	case InheritanceError:
		return "InheritanceError"
	case DuplicateDefinition:
		return "DuplicateDefinition"
	case ImportError:
		return "ImportError"
	case SymbolError:
		return "SymbolError"
	case CodegenError:
		return "CodegenError"
	case ValidationError:
		return "ValidationError"
	case MemoryError:
		return "MemoryError"
	case IOError:
		return "IOError"
	case RuntimeError:
		return "RuntimeError"
	default:
		return "Error"
	}
}

// CompilerError is the one error value type for all diagnostic kinds: a
// message, an optional source location, optional help text, and an
// optional list of "did you mean?" suggestions (spec.md §7).
type CompilerError struct {
	Kind        Kind
	Message     string
	Pos         token.Position
	HasPos      bool
	Help        string
	Suggestions []string
	Source      string // full source text, for context rendering
}

// New creates a located CompilerError.
func New(kind Kind, pos token.Position, message string) *CompilerError {
	return &CompilerError{Kind: kind, Message: message, Pos: pos, HasPos: true}
}

// NewUnlocated creates a CompilerError without a location — legal only for
// fatal I/O failures per spec.md §3's invariant.
func NewUnlocated(kind Kind, message string) *CompilerError {
	return &CompilerError{Kind: kind, Message: message}
}

// WithHelp attaches optional help text and returns the receiver for chaining.
func (e *CompilerError) WithHelp(help string) *CompilerError {
	e.Help = help
	return e
}

// WithSuggestions attaches "did you mean?" candidates and returns the receiver.
func (e *CompilerError) WithSuggestions(s []string) *CompilerError {
	e.Suggestions = s
	return e
}

// WithSource attaches the source text used to render the offending line.
func (e *CompilerError) WithSource(src string) *CompilerError {
	e.Source = src
	return e
}

// Error implements the error interface.
func (e *CompilerError) Error() string { return e.Format(false) }

// Format renders the diagnostic: kind, file:line:column, the source line
// with a caret, the message, optional help, optional suggestions.
func (e *CompilerError) Format(color bool) string {
	var sb strings.Builder

	sb.WriteString(e.Kind.String())
	if e.HasPos {
		sb.WriteString(fmt.Sprintf(" at %s\n", e.Pos))
	} else {
		sb.WriteString("\n")
	}

	if e.HasPos {
		if line := sourceLine(e.Source, e.Pos.Line); line != "" {
			lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
			sb.WriteString(lineNumStr)
			sb.WriteString(line)
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
			if color {
				sb.WriteString("\033[1;31m")
			}
			sb.WriteString("^")
			if color {
				sb.WriteString("\033[0m")
			}
			sb.WriteString("\n")
		}
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}

	if e.Help != "" {
		sb.WriteString("\nhelp: ")
		sb.WriteString(e.Help)
	}
	if len(e.Suggestions) > 0 {
		sb.WriteString("\ndid you mean: ")
		sb.WriteString(strings.Join(e.Suggestions, ", "))
		sb.WriteString("?")
	}

	return sb.String()
}

func sourceLine(source string, lineNum int) string {
	if source == "" || lineNum < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatErrors formats a batch of errors, as produced by parse_with_recovery.
func FormatErrors(errs []*CompilerError, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Compilation failed with %d error(s):\n\n", len(errs)))
	for i, e := range errs {
		sb.WriteString(fmt.Sprintf("[Error %d of %d]\n", i+1, len(errs)))
		sb.WriteString(e.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

// Suggest computes a "did you mean?" candidate list: every name in
// candidates within Levenshtein distance <= 3 of name, closest first
// (spec.md §7: "computed by edit distance <=3 over the candidate names in
// scope").
func Suggest(name string, candidates []string) []string {
	type scored struct {
		name string
		dist int
	}
	var matches []scored
	for _, c := range candidates {
		d := levenshtein(name, c)
		if d <= 3 && d > 0 {
			matches = append(matches, scored{c, d})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	m, n := len(ra), len(rb)
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}
	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[n]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
