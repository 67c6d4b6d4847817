package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tablang/tabc/internal/validator"
	"github.com/tablang/tabc/pkg/engine"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Compile and immediately execute a Tab source file",
	Long: `Run compiles a Tab source file the same way "compile" does, then
hands the resulting module to a wazero-backed host.Executor (pkg/engine),
which wires pkg/host.Catalog's imports to real stdio, filesystem, and
string/array/matrix builtins and calls the module's exported "start"
function.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, args []string) error {
	filename := args[0]

	mod, _, err := compileToModule(filename)
	if err != nil {
		return err
	}
	data := mod.Encode()

	if errs := validator.Validate(data); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "validation: %s\n", e.Error())
		}
		return fmt.Errorf("module failed validation with %d violation(s)", len(errs))
	}

	rt := engine.New(engine.NewConsole())
	return rt.Run(context.Background(), data)
}
