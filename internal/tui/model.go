// Package tui is an interactive browser over scan findings.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyperifyio/periphery-audit/internal/results"
)

// Tab selects which subset of findings is listed.
type Tab int

const (
	TabAll Tab = iota
	TabImports
	TabPublic
)

var tabNames = [...]string{"All", "Imports", "Public"}

func (t Tab) String() string { return tabNames[t] }

// Loader produces the findings to browse.
type Loader func(ctx context.Context) ([]results.Record, error)

// Model holds the browser state.
type Model struct {
	// Data
	Records []results.Record
	Loading bool
	Err     error

	// UI state
	Tab         Tab
	SelectedIdx int
	Visible     []int // indices into Records for the current view and filter
	Width       int
	Height      int

	// Filter state
	InputMode   bool
	InputBuffer textinput.Model

	load Loader
	ctx  context.Context
}

// MsgFindingsReady carries loaded findings.
type MsgFindingsReady []results.Record

// MsgError reports a load failure.
type MsgError struct{ Err error }

// New returns a Model that loads findings with load on Init.
func New(ctx context.Context, load Loader) Model {
	ti := textinput.New()
	ti.Placeholder = "name or location..."
	ti.CharLimit = 120
	ti.Width = 30

	return Model{
		Loading:     true,
		InputBuffer: ti,
		load:        load,
		ctx:         ctx,
	}
}

// Init starts loading.
func (m Model) Init() tea.Cmd {
	if m.load == nil {
		return nil
	}
	load, ctx := m.load, m.ctx
	return func() tea.Msg {
		recs, err := load(ctx)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgFindingsReady(recs)
	}
}

// Selected returns the highlighted finding.
func (m Model) Selected() (results.Record, bool) {
	if m.SelectedIdx < 0 || m.SelectedIdx >= len(m.Visible) {
		return results.Record{}, false
	}
	return m.Records[m.Visible[m.SelectedIdx]], true
}
