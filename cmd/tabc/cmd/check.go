package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Parse and type-check a Tab source file without compiling it",
	Long: `Check runs the parser, import resolver, and semantic analyzer
over a file and reports the first stage that fails, without lowering the
program to WASM.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, args []string) error {
	if _, _, err := frontend(args[0]); err != nil {
		return err
	}
	fmt.Println("OK")
	return nil
}
