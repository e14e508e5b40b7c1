package runner

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultBinary is the analyzer executable name.
const DefaultBinary = "periphery"

// defaultSearchDirs are probed in order before falling back to the PATH lookup.
var defaultSearchDirs = []string{
	"/usr/local/bin",
	"/opt/homebrew/bin",
	"/usr/bin",
}

// Locator resolves the analyzer executable. It carries no cache: every Find
// probes the filesystem again so installs and removals during a long session
// are observed.
type Locator struct {
	Binary     string
	SearchDirs []string
	// LookPath is the search-path fallback; nil disables it.
	LookPath func(file string) (string, error)
}

// DefaultLocator returns the canonical install locations plus exec.LookPath.
func DefaultLocator() Locator {
	return Locator{
		Binary:     DefaultBinary,
		SearchDirs: append([]string(nil), defaultSearchDirs...),
		LookPath:   exec.LookPath,
	}
}

// Find returns the first matching executable path.
func (l Locator) Find() (string, bool) {
	name := l.binaryName()
	for _, dir := range l.SearchDirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate, true
		}
	}
	if l.LookPath == nil {
		return "", false
	}
	p, err := l.LookPath(l.binary())
	if err != nil || strings.TrimSpace(p) == "" {
		return "", false
	}
	return p, true
}

func (l Locator) binary() string {
	if l.Binary == "" {
		return DefaultBinary
	}
	return l.Binary
}

func (l Locator) binaryName() string {
	name := l.binary()
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		name += ".exe"
	}
	return name
}
