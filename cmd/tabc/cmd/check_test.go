package cmd

import (
	"bytes"
	"io"
	"os"
	"testing"
)

// captureStdout redirects os.Stdout for the duration of fn and returns
// whatever it wrote, the same approach the teacher's CLI tests use to
// assert on Cobra commands that print with fmt.Println/fmt.Printf.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	w.Close()
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestRunCheck_ValidProgram(t *testing.T) {
	path := writeTabFile(t, "hello.tab", helloSource)

	var runErr error
	out := captureStdout(t, func() {
		runErr = runCheck(checkCmd, []string{path})
	})
	if runErr != nil {
		t.Fatalf("runCheck failed: %v", runErr)
	}
	if out != "OK\n" {
		t.Errorf("runCheck output = %q, want %q", out, "OK\n")
	}
}

func TestRunCheck_SyntaxError(t *testing.T) {
	path := writeTabFile(t, "broken.tab", "function start(\n\tprint(1)\n")

	if err := runCheck(checkCmd, []string{path}); err == nil {
		t.Fatal("expected runCheck to fail on a syntax error")
	}
}
