package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/WriteNaN/buzz/internal/driver"
)

func newDriver(t *testing.T, dir string, out, errOut *bytes.Buffer) *driver.Driver {
	t.Helper()
	d, err := driver.New(dir, driver.Options{Stdout: out, Stderr: errOut})
	if err != nil {
		t.Fatalf("driver.New: %v", err)
	}
	return d
}

func writeScript(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRunScriptPrintsOutputAndLeavesExitCodeZero(t *testing.T) {
	exitCode = 0
	dir := t.TempDir()
	path := writeScript(t, dir, "main.bz", `print("hi");`)
	var out, errBuf bytes.Buffer
	d := newDriver(t, dir, &out, &errBuf)

	if err := runScript(d, path, &errBuf); err != nil {
		t.Fatalf("runScript: %v", err)
	}
	if out.String() != "hi\n" {
		t.Fatalf("expected hi, got %q", out.String())
	}
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
}

func TestRunScriptSetsExitCodeOneOnCompileError(t *testing.T) {
	exitCode = 0
	dir := t.TempDir()
	path := writeScript(t, dir, "bad.bz", `int x = ;`)
	var out, errBuf bytes.Buffer
	d := newDriver(t, dir, &out, &errBuf)

	if err := runScript(d, path, &errBuf); err != nil {
		t.Fatalf("runScript: %v", err)
	}
	if exitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", exitCode)
	}
	if errBuf.Len() == 0 {
		t.Fatalf("expected diagnostics written to stderr")
	}
}

func TestRunScriptSetsExitCodeOneOnRuntimeError(t *testing.T) {
	exitCode = 0
	dir := t.TempDir()
	path := writeScript(t, dir, "throws.bz", `throw "boom";`)
	var out, errBuf bytes.Buffer
	d := newDriver(t, dir, &out, &errBuf)

	if err := runScript(d, path, &errBuf); err != nil {
		t.Fatalf("runScript: %v", err)
	}
	if exitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", exitCode)
	}
}

func TestRunCheckDoesNotExecuteTheScript(t *testing.T) {
	exitCode = 0
	dir := t.TempDir()
	path := writeScript(t, dir, "main.bz", `print("should not run");`)
	var out, errBuf bytes.Buffer
	d := newDriver(t, dir, &out, &errBuf)

	if err := runCheck(d, path, &errBuf); err != nil {
		t.Fatalf("runCheck: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output from -c, got %q", out.String())
	}
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
}

func TestRunCheckSetsExitCodeOneOnParseError(t *testing.T) {
	exitCode = 0
	dir := t.TempDir()
	path := writeScript(t, dir, "bad.bz", `int x = ;`)
	var out, errBuf bytes.Buffer
	d := newDriver(t, dir, &out, &errBuf)

	if err := runCheck(d, path, &errBuf); err != nil {
		t.Fatalf("runCheck: %v", err)
	}
	if exitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", exitCode)
	}
}

func TestRunTestsNonInteractiveRendersPassingResult(t *testing.T) {
	exitCode = 0
	dir := t.TempDir()
	path := writeScript(t, dir, "add_test.bz", `test "add" { assert(1 + 1 == 2, message: "ok"); }`)
	var out, errBuf bytes.Buffer
	d := newDriver(t, dir, &out, &errBuf)

	// out is a *bytes.Buffer, not a *os.File, so runTests takes the
	// non-interactive branch without needing a real terminal.
	if err := runTests(d, path, &out, &errBuf); err != nil {
		t.Fatalf("runTests: %v", err)
	}
	if out.String() != "✓ add\n" {
		t.Fatalf("expected a passing check mark, got %q", out.String())
	}
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
}

func TestRunTestsNonInteractiveRendersFailureAndMessage(t *testing.T) {
	exitCode = 0
	dir := t.TempDir()
	path := writeScript(t, dir, "fail_test.bz", `test "wrong" { assert(1 + 1 == 3, message: "math is broken"); }`)
	var out, errBuf bytes.Buffer
	d := newDriver(t, dir, &out, &errBuf)

	if err := runTests(d, path, &out, &errBuf); err != nil {
		t.Fatalf("runTests: %v", err)
	}
	if out.String() != "✗ wrong\n" {
		t.Fatalf("expected a failing cross mark, got %q", out.String())
	}
	if exitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", exitCode)
	}
	if errBuf.Len() == 0 {
		t.Fatalf("expected the failure message on stderr")
	}
}
