package runner

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func touchBinary(t *testing.T, dir string) string {
	t.Helper()
	name := DefaultBinary
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLocator_ProbesDirsInOrder(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	want := touchBinary(t, second)

	loc := Locator{SearchDirs: []string{first, second}}
	got, ok := loc.Find()
	if !ok || got != want {
		t.Fatalf("got %q %v want %q", got, ok, want)
	}
}

func TestLocator_SkipsDirectoriesNamedLikeBinary(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, DefaultBinary), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	loc := Locator{SearchDirs: []string{dir}}
	if runtime.GOOS != "windows" {
		if _, ok := loc.Find(); ok {
			t.Fatalf("directory must not be accepted as binary")
		}
	}
}

func TestLocator_FallsBackToLookPath(t *testing.T) {
	var asked string
	loc := Locator{
		SearchDirs: []string{t.TempDir()},
		LookPath: func(file string) (string, error) {
			asked = file
			return "/somewhere/periphery", nil
		},
	}
	got, ok := loc.Find()
	if !ok || got != "/somewhere/periphery" {
		t.Fatalf("got %q %v", got, ok)
	}
	if asked != DefaultBinary {
		t.Fatalf("lookup asked for %q", asked)
	}
}

func TestLocator_AbsentIsNotAnError(t *testing.T) {
	loc := Locator{
		SearchDirs: []string{t.TempDir()},
		LookPath:   func(string) (string, error) { return "", errors.New("not found") },
	}
	if _, ok := loc.Find(); ok {
		t.Fatalf("expected absence")
	}
}

func TestLocator_ReResolvesEveryCall(t *testing.T) {
	dir := t.TempDir()
	loc := Locator{SearchDirs: []string{dir}}
	if _, ok := loc.Find(); ok {
		t.Fatalf("expected absence before install")
	}
	p := touchBinary(t, dir)
	if got, ok := loc.Find(); !ok || got != p {
		t.Fatalf("expected %q after install, got %q %v", p, got, ok)
	}
	if err := os.Remove(p); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := loc.Find(); ok {
		t.Fatalf("expected absence after uninstall")
	}
}

func TestDefaultLocator(t *testing.T) {
	loc := DefaultLocator()
	if loc.Binary != DefaultBinary || len(loc.SearchDirs) != 3 || loc.LookPath == nil {
		t.Fatalf("unexpected default locator: %+v", loc)
	}
	if loc.SearchDirs[0] != "/usr/local/bin" || loc.SearchDirs[1] != "/opt/homebrew/bin" || loc.SearchDirs[2] != "/usr/bin" {
		t.Fatalf("unexpected search order: %v", loc.SearchDirs)
	}
}
