package host

import "context"

// Executor runs a compiled module against a concrete `env` implementation.
// pkg/engine implements it against wazero, and cmd/tabc's run command
// constructs that implementation directly; the interface is the same seam
// the teacher draws between pkg/platform.Platform and its native/wasm
// implementations.
type Executor interface {
	// Run instantiates module, wires the Catalog imports to its own
	// implementation, calls the exported `start` function, and blocks
	// until it returns or ctx is cancelled.
	Run(ctx context.Context, module []byte) error
}

// Console is the minimal host-side surface print/printl/input* need; a
// concrete Executor composes one internally the way native.NativePlatform
// composes a Console.
type Console interface {
	Print(s string)
	PrintLn(s string)
	ReadLine() (string, error)
}
