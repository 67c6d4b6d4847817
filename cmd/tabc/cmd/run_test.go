package cmd

import (
	"bytes"
	"io"
	"os"
	"testing"
)

func TestRunRun_EndToEnd(t *testing.T) {
	path := writeTabFile(t, "hello.tab", helloSource)

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	runErr := runRun(runCmd, []string{path})

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)

	if runErr != nil {
		t.Fatalf("runRun failed: %v", runErr)
	}
	if got := buf.String(); got != "3" {
		t.Errorf("program output = %q, want %q (1 + 2.0 promoted to float, then toString())", got, "3")
	}
}

func TestRunRun_CompileErrorPropagates(t *testing.T) {
	path := writeTabFile(t, "broken.tab", "function start(\n\tprint(1)\n")

	if err := runRun(runCmd, []string{path}); err == nil {
		t.Fatal("expected runRun to fail compiling a syntax error")
	}
}
