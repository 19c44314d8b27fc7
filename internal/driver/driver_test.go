package driver

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runSource(t *testing.T, src string) (stdout, stderr string, run *RunResult) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.bz")
	if err := writeFile(path, src); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	var out, errBuf bytes.Buffer
	d, err := New(dir, Options{Stdout: &out, Stderr: &errBuf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := d.Run(path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String(), errBuf.String(), res
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}

func TestRunEmptyScriptProducesNoOutput(t *testing.T) {
	stdout, _, res := runSource(t, "")
	if res.Diagnostics.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics.Items())
	}
	if res.RuntimeErr != nil {
		t.Fatalf("unexpected runtime error: %v", res.RuntimeErr)
	}
	if stdout != "" {
		t.Fatalf("expected no output, got %q", stdout)
	}
}

func TestRunHelloWorldPrints(t *testing.T) {
	stdout, _, res := runSource(t, `print("hello");`)
	if res.Diagnostics.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics.Items())
	}
	if res.RuntimeErr != nil {
		t.Fatalf("unexpected runtime error: %v", res.RuntimeErr)
	}
	if stdout != "hello\n" {
		t.Fatalf("expected %q, got %q", "hello\n", stdout)
	}
}

func TestRunForeachAscendingRangeSumsToFortyFive(t *testing.T) {
	stdout, _, res := runSource(t, `int s = 0; foreach (int n in 0..10) { s = s + n; } print("{s}");`)
	if res.RuntimeErr != nil {
		t.Fatalf("unexpected runtime error: %v", res.RuntimeErr)
	}
	if strings.TrimSpace(stdout) != "45" {
		t.Fatalf("expected 45, got %q", stdout)
	}
}

func TestRunForeachDescendingRangeSumsToFiftyFive(t *testing.T) {
	stdout, _, res := runSource(t, `int s = 0; foreach (int n in 10..0) { s = s + n; } print("{s}");`)
	if res.RuntimeErr != nil {
		t.Fatalf("unexpected runtime error: %v", res.RuntimeErr)
	}
	if strings.TrimSpace(stdout) != "55" {
		t.Fatalf("expected 55, got %q", stdout)
	}
}

func TestRunObjectListFieldDefaultsAreDistinctPerInstance(t *testing.T) {
	src := `
object A { [int] xs = [1, 2, 3] }
A a = A{}; A b = A{};
a.xs.append(4);
print("{a.xs.len()} {b.xs.len()}");
`
	stdout, _, res := runSource(t, src)
	if res.Diagnostics.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics.Items())
	}
	if res.RuntimeErr != nil {
		t.Fatalf("unexpected runtime error: %v", res.RuntimeErr)
	}
	if strings.TrimSpace(stdout) != "4 3" {
		t.Fatalf("expected %q, got %q", "4 3", stdout)
	}
}

func TestRunIntegerOverflowThrows(t *testing.T) {
	src := `int x = 2147483647; int y = x + 1; print("{y}");`
	_, _, res := runSource(t, src)
	if res.RuntimeErr == nil {
		t.Fatalf("expected an overflow throw, got none")
	}
}

func TestRunTestsAddPasses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "add_test.bz")
	src := `test "add" { assert(1 + 2 == 3, message: "ok"); }`
	if err := writeFile(path, src); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	var out, errBuf bytes.Buffer
	d, err := New(dir, Options{Stdout: &out, Stderr: &errBuf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	report, err := d.RunTests(path, nil)
	if err != nil {
		t.Fatalf("RunTests: %v", err)
	}
	if report.Diagnostics.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", report.Diagnostics.Items())
	}
	if report.Aborted {
		t.Fatalf("expected the test to pass, run was aborted")
	}
	if len(report.Results) != 1 || !report.Results[0].Passed || report.Results[0].Name != "add" {
		t.Fatalf("expected one passing test named add, got %+v", report.Results)
	}
}

func TestRunTestsFailingAssertAborts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fail_test.bz")
	src := `test "wrong" { assert(1 + 1 == 3, message: "math is broken"); }`
	if err := writeFile(path, src); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	var out, errBuf bytes.Buffer
	d, err := New(dir, Options{Stdout: &out, Stderr: &errBuf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	report, err := d.RunTests(path, nil)
	if err != nil {
		t.Fatalf("RunTests: %v", err)
	}
	if !report.Aborted {
		t.Fatalf("expected the failing assertion to abort the run")
	}
	if len(report.Results) != 1 || report.Results[0].Passed {
		t.Fatalf("expected one failing test, got %+v", report.Results)
	}
}

func TestCheckReportsCompileErrorsWithoutRunning(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bz")
	if err := writeFile(path, `int x = ;`); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	var out, errBuf bytes.Buffer
	d, err := New(dir, Options{Stdout: &out, Stderr: &errBuf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	bag, err := d.Check(path)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !bag.HasErrors() {
		t.Fatalf("expected a parse error to be reported")
	}
	if out.Len() != 0 {
		t.Fatalf("Check must not execute anything, got stdout %q", out.String())
	}
}
