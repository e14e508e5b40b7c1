package main

import (
	"io"

	"github.com/hyperifyio/periphery-audit/internal/results"
)

// printResolvedConfig writes the effective settings, their sources and the
// resolved analyzer location as sorted JSON.
func printResolvedConfig(a *app, w io.Writer) error {
	path, installed := a.runner.FindPath()
	payload := map[string]any{
		"timeout":         a.cfg.Timeout.String(),
		"timeoutSource":   a.cfg.TimeoutSource,
		"killGrace":       a.cfg.KillGrace.String(),
		"killGraceSource": a.cfg.KillGraceSource,
		"logLevel":        a.cfg.LogLevel,
		"logFormat":       a.cfg.LogFormat,
		"analyzerPath":    path,
		"installed":       installed,
		"searchDirs":      a.deps.locator.SearchDirs,
	}
	out, err := results.Serialize(payload)
	if err != nil {
		return err
	}
	safeFprintln(w, out)
	return nil
}
