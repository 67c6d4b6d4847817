package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tablang/tabc/internal/codegen"
	"github.com/tablang/tabc/internal/validator"
)

var (
	outputFile     string
	disassemble    bool
	skipValidate   bool
	compileVerbose bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <file> [output]",
	Short: "Compile a Tab source file to a WASM module",
	Long: `Compile resolves a Tab source file's imports, runs semantic
analysis, lowers the result to a binary WASM 1.0 module, validates the
module's structural and ABI invariants, and writes it to disk.

Examples:
  tabc compile hello.tab
  tabc compile hello.tab hello.wasm
  tabc compile hello.tab --disassemble`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: <input>.wasm)")
	compileCmd.Flags().BoolVar(&disassemble, "disassemble", false, "print disassembled function bodies after compilation")
	compileCmd.Flags().BoolVar(&skipValidate, "skip-validate", false, "skip the post-compile structural validation pass")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "verbose output")
}

func runCompile(_ *cobra.Command, args []string) error {
	filename := args[0]

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	mod, _, err := compileToModule(filename)
	if err != nil {
		return err
	}

	data := mod.Encode()

	if !skipValidate {
		if errs := validator.Validate(data); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(os.Stderr, "validation: %s\n", e.Error())
			}
			return fmt.Errorf("module failed validation with %d violation(s)", len(errs))
		}
	}

	if disassemble {
		fmt.Fprintln(os.Stderr, "== Disassembly ==")
		fmt.Fprint(os.Stderr, codegen.DisassembleModule(mod))
	}

	outFile := outputFile
	if len(args) == 2 {
		outFile = args[1]
	}
	if outFile == "" {
		ext := filepath.Ext(filename)
		if ext != "" {
			outFile = strings.TrimSuffix(filename, ext) + ".wasm"
		} else {
			outFile = filename + ".wasm"
		}
	}

	if err := os.WriteFile(outFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outFile, err)
	}

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", outFile, len(data))
	} else {
		fmt.Printf("Compiled %s -> %s\n", filename, outFile)
	}

	return nil
}
