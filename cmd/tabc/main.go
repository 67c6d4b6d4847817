// Command tabc compiles and runs Tab programs.
package main

import (
	"os"

	"github.com/tablang/tabc/cmd/tabc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
