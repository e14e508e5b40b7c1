package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyperifyio/periphery-audit/internal/results"
)

// Update handles events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case MsgFindingsReady:
		m.Loading = false
		m.Records = []results.Record(msg)
		m.SelectedIdx = 0
		m.refresh()
		return m, nil

	case MsgError:
		m.Loading = false
		m.Err = msg.Err
		return m, nil

	case tea.KeyMsg:
		if m.InputMode {
			switch msg.Type {
			case tea.KeyEnter:
				m.InputMode = false
				m.InputBuffer.Blur()
				return m, nil
			case tea.KeyEsc:
				m.InputMode = false
				m.InputBuffer.Blur()
				m.InputBuffer.SetValue("")
				m.refresh()
				return m, nil
			}
			m.InputBuffer, cmd = m.InputBuffer.Update(msg)
			m.refresh()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.InputBuffer.Value() != "" {
				m.InputBuffer.SetValue("")
				m.refresh()
			}
		case "up", "k":
			if m.SelectedIdx > 0 {
				m.SelectedIdx--
			}
		case "down", "j":
			if m.SelectedIdx < len(m.Visible)-1 {
				m.SelectedIdx++
			}
		case "tab":
			m.Tab = (m.Tab + 1) % Tab(len(tabNames))
			m.SelectedIdx = 0
			m.refresh()
		case "shift+tab":
			m.Tab = (m.Tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
			m.SelectedIdx = 0
			m.refresh()
		case "/":
			m.InputMode = true
			m.InputBuffer.Focus()
			return m, textinput.Blink
		}
	}

	return m, cmd
}

func (m Model) inTab(r results.Record) bool {
	switch m.Tab {
	case TabImports:
		return r.IsImport()
	case TabPublic:
		return r.IsBroadlyVisible()
	}
	return true
}

// refresh recomputes Visible from the view and the filter text and keeps
// the cursor in range.
func (m *Model) refresh() {
	term := strings.ToLower(strings.TrimSpace(m.InputBuffer.Value()))
	visible := make([]int, 0, len(m.Records))
	for i, r := range m.Records {
		if !m.inTab(r) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(r.Name), term) &&
			!strings.Contains(strings.ToLower(r.Location), term) {
			continue
		}
		visible = append(visible, i)
	}
	m.Visible = visible

	if m.SelectedIdx >= len(m.Visible) {
		if len(m.Visible) > 0 {
			m.SelectedIdx = len(m.Visible) - 1
		} else {
			m.SelectedIdx = 0
		}
	}
}
