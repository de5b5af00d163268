// Package dashboard implements a read-only session viewer: a bubbletea
// table polling the admin /sessions endpoint, styled with lipgloss. It
// has no write path into the relay.
package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// pollInterval is how often the dashboard refreshes from the admin
// surface.
const pollInterval = 2 * time.Second

// Session is one dashboard row: a per-session summary derived from the
// admin surface's /sessions response, decoupled from internal/server's
// wire type so this package has no import-time dependency on the server.
type Session struct {
	ID          string
	MemberCount int
	OldestIdle  time.Duration
	NewestIdle  time.Duration
}

// Fetcher retrieves the current session list from the admin surface.
// Implemented by an HTTP client in cmd/rendezvousctl.
type Fetcher func() ([]Session, error)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("White")).Background(lipgloss.Color("25")).Padding(0, 1)
var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

// Model is the bubbletea model for `rendezvousctl watch`.
type Model struct {
	fetch Fetcher
	table table.Model
	err   error
}

// New constructs a Model that polls fetch every pollInterval.
func New(fetch Fetcher) Model {
	columns := []table.Column{
		{Title: "Session", Width: 24},
		{Title: "Members", Width: 10},
		{Title: "Oldest Idle", Width: 14},
		{Title: "Newest Idle", Width: 14},
	}
	t := table.New(table.WithColumns(columns), table.WithFocused(false), table.WithHeight(20))
	return Model{fetch: fetch, table: t}
}

type tickMsg time.Time

type fetchedMsg struct {
	sessions []Session
	err      error
}

// Init starts the poll loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.pollCmd(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) pollCmd() tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.fetch()
		return fetchedMsg{sessions: sessions, err: err}
	}
}

// Update handles ticks, fetch results, and quit keys.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		return m, tea.Batch(m.pollCmd(), tick())
	case fetchedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.table.SetRows(rowsFor(msg.sessions))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func rowsFor(sessions []Session) []table.Row {
	sorted := append([]Session(nil), sessions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	rows := make([]table.Row, 0, len(sorted))
	for _, s := range sorted {
		rows = append(rows, table.Row{
			s.ID,
			fmt.Sprintf("%d", s.MemberCount),
			s.OldestIdle.Round(time.Second).String(),
			s.NewestIdle.Round(time.Second).String(),
		})
	}
	return rows
}

// View renders the table, or the last fetch error beneath a stale table.
func (m Model) View() string {
	out := headerStyle.Render("rendezvous sessions") + "\n" + m.table.View()
	if m.err != nil {
		out += "\n" + errorStyle.Render(fmt.Sprintf("last poll failed: %v", m.err))
	}
	out += "\n(press q to quit)"
	return out
}
