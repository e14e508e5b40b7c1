// Package pathcheck validates caller-supplied project and config locations
// before any analyzer process is spawned.
package pathcheck

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperifyio/periphery-audit/internal/apperr"
)

const (
	// ManifestName marks a Swift Package directory.
	ManifestName = "Package.swift"
	// XcodeProjectSuffix marks an Xcode project bundle.
	XcodeProjectSuffix = ".xcodeproj"
)

// ValidatedPath is an absolute path whose shape has been confirmed by this
// package. Only ValidateProjectPath and ValidateConfigPath produce one.
type ValidatedPath string

func (p ValidatedPath) String() string { return string(p) }

// IsXcodeProject reports whether p names an .xcodeproj bundle.
func IsXcodeProject(p ValidatedPath) bool {
	return strings.HasSuffix(string(p), XcodeProjectSuffix)
}

// ValidateProjectPath accepts an .xcodeproj directory, a directory holding a
// Package.swift, or a Package.swift file (resolved to its directory).
func ValidateProjectPath(raw string) (ValidatedPath, error) {
	abs, err := resolve(raw)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", apperr.New(apperr.InvalidProjectPath, "Path does not exist: "+abs)
	}

	if strings.HasSuffix(abs, XcodeProjectSuffix) {
		if !fi.IsDir() {
			return "", apperr.New(apperr.InvalidProjectPath, "Expected directory, found file: "+abs)
		}
		return ValidatedPath(abs), nil
	}

	if fi.IsDir() {
		if _, err := os.Stat(filepath.Join(abs, ManifestName)); err == nil {
			return ValidatedPath(abs), nil
		}
	} else if filepath.Base(abs) == ManifestName {
		return ValidatedPath(filepath.Dir(abs)), nil
	}

	return "", apperr.New(apperr.InvalidProjectPath,
		"Path must be an "+XcodeProjectSuffix+" or directory containing "+ManifestName+": "+abs)
}

// ValidateConfigPath requires an existing non-directory file. Failures use the
// InvalidProjectPath kind, the same as project validation.
func ValidateConfigPath(raw string) (ValidatedPath, error) {
	abs, err := resolve(raw)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(abs)
	if err != nil || fi.IsDir() {
		return "", apperr.New(apperr.InvalidProjectPath, "Config file does not exist: "+abs)
	}
	return ValidatedPath(abs), nil
}

// resolve expands a leading ~ and makes the path absolute against the cwd.
func resolve(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", apperr.New(apperr.InvalidProjectPath, "Path is empty")
	}
	p := expandHome(raw)
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", apperr.Newf(apperr.InvalidProjectPath, "Cannot resolve %s: %v", raw, err)
	}
	return abs, nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}
