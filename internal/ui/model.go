package ui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amalg/bomb-arena/internal/game"
)

// Engine is the part of the match engine the TUI drives. *game.Engine
// satisfies it.
type Engine interface {
	RequestMove(playerID string, dir game.Direction) bool
	RequestBombPlacement(playerID string) bool
	StartMatch() error
	TogglePause() error
	QueryState() game.Snapshot
}

// snapshotMsg carries a new match snapshot from the engine tick loop.
type snapshotMsg game.Snapshot

// errMsg carries an error.
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// errFeedClosed is reported when the engine stops sending snapshots.
var errFeedClosed = errors.New("engine stopped")

// Model is the Bubbletea model for a local match.
type Model struct {
	engine   Engine
	feed     <-chan game.Snapshot
	restart  func() error
	state    *game.Snapshot
	playerID string
	notice   string
	err      error
	quitting bool
}

// NewModel creates a TUI model for playerID. feed delivers snapshots from the
// engine's tick callback; restart, if set, prepares a fresh match after the
// current one ends.
func NewModel(engine Engine, playerID string, feed <-chan game.Snapshot, restart func() error) Model {
	state := engine.QueryState()
	return Model{
		engine:   engine,
		feed:     feed,
		restart:  restart,
		state:    &state,
		playerID: playerID,
	}
}

// Init starts listening for snapshots.
func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.feed)
}

// Update handles incoming messages (key presses, snapshots).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotMsg:
		state := game.Snapshot(msg)
		m.state = &state
		return m, waitForSnapshot(m.feed)

	case errMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

// View renders the current match.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye! 👋\n"
	}

	if m.err != nil {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff4444")).
			Render("Error: "+m.err.Error()) + "\n"
	}

	board := RenderBoard(m.state, m.playerID)
	hud := RenderHUD(m.state, m.playerID, m.notice)

	// Layout: board on the left, HUD on the right
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		board,
		"  ",
		hud,
	) + "\n"
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "w":
		m.engine.RequestMove(m.playerID, game.DirUp)
	case "down", "s":
		m.engine.RequestMove(m.playerID, game.DirDown)
	case "left", "a":
		m.engine.RequestMove(m.playerID, game.DirLeft)
	case "right", "d":
		m.engine.RequestMove(m.playerID, game.DirRight)
	case " ":
		m.engine.RequestBombPlacement(m.playerID)
	case "p":
		if err := m.engine.TogglePause(); err != nil {
			m.notice = err.Error()
		}
	case "enter":
		m.notice = m.startOrRestart()
	}

	// Show the effect of the key without waiting for the next tick.
	state := m.engine.QueryState()
	m.state = &state
	return m, nil
}

func (m Model) startOrRestart() string {
	status := m.engine.QueryState().Status
	if status.Terminal() && m.restart != nil {
		if err := m.restart(); err != nil {
			return err.Error()
		}
		status = game.StatusMenu
	}
	if status == game.StatusMenu {
		if err := m.engine.StartMatch(); err != nil {
			return err.Error()
		}
	}
	return ""
}

// waitForSnapshot returns a Cmd that waits for the next snapshot.
func waitForSnapshot(feed <-chan game.Snapshot) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-feed
		if !ok {
			return errMsg{err: errFeedClosed}
		}
		return snapshotMsg(state)
	}
}

// Feed returns a tick callback that forwards snapshots to ch without
// blocking the engine. A snapshot the UI has not picked up yet is replaced.
func Feed(ch chan game.Snapshot) func(game.Snapshot) {
	return func(s game.Snapshot) {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}
