package main

import (
	"fmt"
	"io"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.buildDate=...".
var (
	version   = "v0.0.0-dev"
	commit    = ""
	buildDate = "unknown"
)

// buildInfo fills in whatever -ldflags left empty from the module build info.
func buildInfo() (ver, rev, date string) {
	ver, rev, date = version, commit, buildDate
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ver, rev, date
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if rev == "" {
				rev = s.Value
			}
		case "vcs.time":
			if date == "unknown" {
				date = s.Value
			}
		}
	}
	return ver, rev, date
}

func printVersion(w io.Writer) {
	ver, rev, date := buildInfo()
	safeFprintf(w, "periphery-audit version %s (commit %s, built %s)\n", ver, shortCommit(rev), date)
}

func shortCommit(c string) string {
	switch c = strings.TrimSpace(c); {
	case c == "":
		return "unknown"
	case len(c) > 7:
		return c[:7]
	default:
		return c
	}
}

// safeFprintln and safeFprintf drop write errors; a closed stdout is not
// something the CLI can report anywhere else.
func safeFprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func safeFprintf(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}
