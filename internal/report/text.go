// Package report renders a findings envelope for people: a styled terminal
// summary and a PDF document.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/hyperifyio/periphery-audit/internal/results"
)

var (
	infoColor  = lipgloss.Color("#4682B4")
	mutedColor = lipgloss.Color("#888888")
	errorColor = lipgloss.Color("#CC3333")
	goodColor  = lipgloss.Color("#228B22")
)

// KindCount is one row of the by-kind summary.
type KindCount struct {
	Kind  string
	Count int
}

// KindCounts orders a summary by count, largest first, then by kind.
func KindCounts(s results.Summary) []KindCount {
	rows := make([]KindCount, 0, len(s.ByKind))
	for k, n := range s.ByKind {
		rows = append(rows, KindCount{Kind: k, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Kind < rows[j].Kind
	})
	return rows
}

// WriteText prints env to w. Colors are only emitted when w is a terminal
// that supports them.
func WriteText(w io.Writer, env results.Envelope) error {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true).Foreground(infoColor)
	muted := r.NewStyle().Foreground(mutedColor)

	if !env.Success {
		_, err := fmt.Fprintln(w, r.NewStyle().Bold(true).Foreground(errorColor).Render("Scan failed: "+env.Error))
		return err
	}

	summary := results.Summarize(env.Results)
	if env.Summary != nil {
		summary = *env.Summary
	}
	if summary.TotalUnused == 0 {
		_, err := fmt.Fprintln(w, r.NewStyle().Bold(true).Foreground(goodColor).Render("No unused code found"))
		return err
	}

	rows := KindCounts(summary)
	kindWidth := 4
	for _, row := range rows {
		kindWidth = max(kindWidth, lipgloss.Width(row.Kind))
	}
	nameWidth := 4
	for _, rec := range env.Results {
		nameWidth = max(nameWidth, lipgloss.Width(rec.Name))
	}
	kindCol := r.NewStyle().Width(kindWidth + 2)
	nameCol := r.NewStyle().Width(nameWidth + 2)

	if _, err := fmt.Fprintln(w, title.Render(fmt.Sprintf("Periphery findings: %d unused", summary.TotalUnused))); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, "  "+kindCol.Render(row.Kind)+strconv.Itoa(row.Count)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for _, rec := range env.Results {
		line := "  " + kindCol.Render(rec.Kind) + nameCol.Render(rec.Name) + muted.Render(rec.Location)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
