package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amalg/bomb-arena/internal/game"
)

func newUIEngine(t *testing.T) *game.Engine {
	t.Helper()
	config := game.DefaultConfig()
	config.Seed = 11
	config.LocalPlayer = "p1"
	engine, err := game.NewEngine(config)
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.InitializeMatch(2, game.ModeFinite); err != nil {
		t.Fatal(err)
	}
	return engine
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelKeys(t *testing.T) {
	engine := newUIEngine(t)
	m := NewModel(engine, "p1", make(chan game.Snapshot), nil)

	m = press(m, "enter")
	if engine.Status() != game.StatusPlaying {
		t.Fatalf("enter should start the match, status %s", engine.Status())
	}

	m = press(m, "s")
	p, _ := engine.QueryState().Player("p1")
	if p.Pos != (game.Position{X: 1, Y: 2}) {
		t.Errorf("s should move down, got %v", p.Pos)
	}

	m = press(m, " ")
	if len(engine.QueryState().Bombs) != 1 {
		t.Error("space should place a bomb")
	}

	m = press(m, "p")
	if engine.Status() != game.StatusPaused {
		t.Errorf("p should pause, status %s", engine.Status())
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view should show the pause state")
	}
	m = press(m, "p")
	if engine.Status() != game.StatusPlaying {
		t.Errorf("p should resume, status %s", engine.Status())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestModelRestart(t *testing.T) {
	engine := newUIEngine(t)
	restarts := 0
	restart := func() error {
		restarts++
		return engine.InitializeMatch(2, game.ModeFinite)
	}
	m := NewModel(engine, "p1", make(chan game.Snapshot), restart)
	m = press(m, "enter")

	// End the match by walking p1 into its own bomb until it runs out of lives
	for i := 0; i < 3 && !engine.Status().Terminal(); i++ {
		m = press(m, " ")
		engine.Tick(3 * time.Second)
	}
	if engine.Status() != game.StatusGameOver {
		t.Fatalf("local player lost, expected GAME_OVER, got %s", engine.Status())
	}
	if !strings.Contains(m.View(), "GAME OVER") {
		t.Errorf("view should report game over:\n%s", m.View())
	}

	old := engine.QueryState().MatchID
	m = press(m, "enter")
	if restarts != 1 || engine.Status() != game.StatusPlaying || engine.QueryState().MatchID == old {
		t.Errorf("enter after the match should start a new one: restarts=%d status=%s", restarts, engine.Status())
	}
}

func TestModelSnapshotFeed(t *testing.T) {
	engine := newUIEngine(t)
	feed := make(chan game.Snapshot, 1)
	engine.OnTick(Feed(feed))
	m := NewModel(engine, "p1", feed, nil)

	if err := engine.StartMatch(); err != nil {
		t.Fatal(err)
	}
	engine.Tick(time.Second)
	engine.Tick(time.Second) // replaces the unread snapshot

	msg := m.Init()()
	next, cmd := m.Update(msg)
	if cmd == nil {
		t.Error("model should keep listening for snapshots")
	}
	if got := next.(Model).state.Now; got != 2*time.Second {
		t.Errorf("expected the latest snapshot at 2s, got %v", got)
	}

	close(feed)
	if _, ok := m.Init()().(errMsg); !ok {
		t.Error("closed feed should produce an error")
	}
}

func TestRenderBoard(t *testing.T) {
	engine := newUIEngine(t)
	state := engine.QueryState()

	board := RenderBoard(&state, "p1")
	if lines := strings.Count(board, "\n") + 1; lines != state.Height {
		t.Errorf("expected %d rows, got %d", state.Height, lines)
	}
	if !strings.Contains(board, "P2") {
		t.Error("opponent should be labelled")
	}
	if RenderBoard(nil, "p1") != "Waiting for match..." {
		t.Error("nil snapshot placeholder")
	}

	hud := RenderHUD(&state, "p1", "")
	for _, want := range []string{"Player 1", "Player 2", "READY", "finite"} {
		if !strings.Contains(hud, want) {
			t.Errorf("HUD missing %q", want)
		}
	}
}

func TestClock(t *testing.T) {
	if got := clock(75*time.Second + 400*time.Millisecond); got != "01:15" {
		t.Errorf("clock = %s", got)
	}
}
