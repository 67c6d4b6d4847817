package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set by build flags the same way the teacher's
// cmd/dwscript/cmd/root.go wires its own ldflags-injected variables.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// importPaths is the -I search list internal/resolver uses to find the
// modules a program's `import` declarations name, in addition to the
// compiling file's own directory.
var importPaths []string

var rootCmd = &cobra.Command{
	Use:   "tabc",
	Short: "Tab language compiler",
	Long: `tabc compiles Tab, a statically-typed, indentation-structured
language, to a WASM 1.0 module with a small, fixed host import catalog.

A Tab program is single-entry: compiling it produces one "start" export
plus whatever classes, functions, and test blocks the source declares.
Any "import" declaration is resolved against the directories given with
-I, in order, before semantic analysis runs.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringArrayVarP(&importPaths, "import-path", "I", nil,
		"directory to search for imported modules (repeatable)")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
