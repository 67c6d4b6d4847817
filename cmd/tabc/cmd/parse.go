package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tablang/tabc/internal/ast"
	cerrors "github.com/tablang/tabc/internal/errors"
	"github.com/tablang/tabc/internal/parser"
)

var parseDumpAST bool

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a Tab source file and report syntax errors",
	Long: `Parse runs only the lexer and parser stage, with recovery, so a
single run reports every syntax error a file has rather than stopping at
the first.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "list the parsed top-level declarations")
}

func runParse(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	prog, errs := parser.ParseWithRecovery(string(content), filename)
	if len(errs) > 0 {
		fmt.Fprint(os.Stderr, cerrors.FormatErrors(errs, true))
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	if parseDumpAST {
		dumpDeclarations(prog)
	} else {
		fmt.Println("OK")
	}
	return nil
}

func dumpDeclarations(prog *ast.Program) {
	fmt.Printf("imports: %d\n", len(prog.Imports))
	for _, fn := range prog.Functions {
		fmt.Printf("  func %s\n", fn.SignatureKey())
	}
	for _, c := range prog.Classes {
		fmt.Printf("  class %s\n", c.Name)
	}
	for _, t := range prog.Tests {
		fmt.Printf("  test %q\n", t.Name)
	}
	if prog.StartFunction != nil {
		fmt.Println("  start function present")
	}
}
