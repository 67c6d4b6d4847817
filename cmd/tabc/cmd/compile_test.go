package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func resetCompileFlags(t *testing.T) {
	t.Helper()
	oldOut, oldDisasm, oldSkip, oldVerbose := outputFile, disassemble, skipValidate, compileVerbose
	outputFile, disassemble, skipValidate, compileVerbose = "", false, false, false
	t.Cleanup(func() {
		outputFile, disassemble, skipValidate, compileVerbose = oldOut, oldDisasm, oldSkip, oldVerbose
	})
}

func TestRunCompile_WritesWasmFile(t *testing.T) {
	resetCompileFlags(t)
	path := writeTabFile(t, "hello.tab", helloSource)

	captureStdout(t, func() {
		if err := runCompile(compileCmd, []string{path}); err != nil {
			t.Fatalf("runCompile failed: %v", err)
		}
	})

	wantOut := filepath.Join(filepath.Dir(path), "hello.wasm")
	data, err := os.ReadFile(wantOut)
	if err != nil {
		t.Fatalf("expected output file %s: %v", wantOut, err)
	}
	if len(data) < 8 || string(data[:4]) != "\x00asm" {
		t.Errorf("output file does not look like a WASM module: %x", data[:min(8, len(data))])
	}
}

func TestRunCompile_ExplicitOutputPath(t *testing.T) {
	resetCompileFlags(t)
	path := writeTabFile(t, "hello.tab", helloSource)
	outPath := filepath.Join(filepath.Dir(path), "out.wasm")

	captureStdout(t, func() {
		if err := runCompile(compileCmd, []string{path, outPath}); err != nil {
			t.Fatalf("runCompile failed: %v", err)
		}
	})

	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("expected explicit output file to exist: %v", err)
	}
}

func TestRunCompile_SemanticErrorPropagates(t *testing.T) {
	resetCompileFlags(t)
	src := "function start()\n\tinteger x = 1\n\tx = \"oops\"\n"
	path := writeTabFile(t, "mismatch.tab", src)

	if err := runCompile(compileCmd, []string{path}); err == nil {
		t.Fatal("expected runCompile to fail on a semantic error")
	}
}
