package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#4682B4")).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4682B4")).
			Padding(0, 1).
			Bold(true)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#888888")).
				Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(lipgloss.Color("205"))

	unselectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(4)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	detailStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("63"))
)

// chrome is the number of lines taken by everything except the list.
const chrome = 10

func (m Model) View() string {
	if m.Loading {
		return "\n  Running Periphery scan... please wait.\n"
	}
	if m.Err != nil {
		return fmt.Sprintf("\n  Error: %v\n\n  Press q to quit.\n", m.Err)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Periphery findings (%d)", len(m.Records))))
	b.WriteString("\n\n")

	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if Tab(i) == m.Tab {
			tabs[i] = tabActiveStyle.Render(name)
		} else {
			tabs[i] = tabInactiveStyle.Render(name)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	if m.InputMode || m.InputBuffer.Value() != "" {
		b.WriteString("  Filter: " + m.InputBuffer.View())
	}
	b.WriteString("\n")

	if len(m.Visible) == 0 {
		b.WriteString(dimStyle.Render("    No findings in this view"))
		b.WriteString("\n")
	}

	start, end := m.window()
	for i := start; i < end; i++ {
		r := m.Records[m.Visible[i]]
		line := fmt.Sprintf("%-10s %s  %s", r.Kind, r.Name, dimStyle.Render(r.Location))
		if i == m.SelectedIdx {
			b.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(unselectedItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if r, ok := m.Selected(); ok {
		detail := fmt.Sprintf("%s %s\n%s", r.Kind, r.Name, r.Location)
		if len(r.Modifiers) > 0 {
			detail += "\nmodifiers: " + strings.Join(r.Modifiers, ", ")
		}
		if len(r.Hints) > 0 {
			detail += "\nhints: " + strings.Join(r.Hints, ", ")
		}
		b.WriteString(detailStyle.Render(detail))
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render("tab: view  /: filter  esc: clear  up/down: move  q: quit"))
	return b.String()
}

// window returns the slice of Visible that fits the terminal, keeping the
// cursor on screen.
func (m Model) window() (int, int) {
	n := len(m.Visible)
	rows := m.Height - chrome
	if m.Height == 0 || rows >= n {
		return 0, n
	}
	rows = max(rows, 1)
	start := 0
	if m.SelectedIdx >= rows {
		start = m.SelectedIdx - rows + 1
	}
	return start, min(start+rows, n)
}
