// Package testutil builds stand-in executables for tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// BuildHelper compiles a single-file Go program into a test-scoped
// temporary directory as name (with .exe on Windows) and returns that
// directory. The source may only import the standard library.
func BuildHelper(t *testing.T, name, source string) string {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, name+"_helper.go")
	if err := os.WriteFile(src, []byte(source), 0o644); err != nil {
		t.Fatalf("write helper source: %v", err)
	}

	binName := name
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	outPath := filepath.Join(dir, binName)

	cmd := exec.Command("go", "build", "-o", outPath, src)
	cmd.Dir = dir
	// Inherit environment; ensure CGO disabled for determinism
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build %s failed: %v\n%s", name, err, string(output))
	}
	return dir
}
