package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/amalg/bomb-arena/internal/game"
)

// Color palette
var (
	// Tile styles
	wallStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#3a3a3a")).
			Foreground(lipgloss.Color("#555555"))

	destructibleStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#8B6914")).
				Foreground(lipgloss.Color("#A0772B"))

	emptyStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1a1a2e")).
			Foreground(lipgloss.Color("#1a1a2e"))

	spawnStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1a1a2e")).
			Foreground(lipgloss.Color("#333355"))

	bombStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1a1a2e")).
			Foreground(lipgloss.Color("#ff4444")).
			Bold(true)

	fireStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#ff6600")).
			Foreground(lipgloss.Color("#ffcc00")).
			Bold(true)

	powerUpStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1a1a2e")).
			Foreground(lipgloss.Color("#44ffff")).
			Bold(true)

	// Player colors, indexed by slot
	playerColors = []lipgloss.Color{
		lipgloss.Color("#00ff88"), // Green
		lipgloss.Color("#4488ff"), // Blue
		lipgloss.Color("#ff44ff"), // Magenta
		lipgloss.Color("#ffff44"), // Yellow
	}

	deadPlayerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Strikethrough(true)

	// HUD styles
	hudBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff8844")).
			Bold(true)

	menuStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#44aaff")).
			Bold(true)

	winnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff88")).
			Bold(true).
			Blink(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

var powerUpGlyphs = map[game.PowerUpType]string{
	game.PowerBombCount: "B+",
	game.PowerBombPower: "F+",
	game.PowerSpeed:     "S+",
	game.PowerLife:      "♥+",
}

// RenderBoard converts a snapshot into a styled terminal string.
func RenderBoard(state *game.Snapshot, myID string) string {
	if state == nil || len(state.Grid) == 0 {
		return "Waiting for match..."
	}

	var rows []string
	for y := 0; y < state.Height; y++ {
		var cells []string
		for x := 0; x < state.Width; x++ {
			cells = append(cells, renderCell(state, game.Position{X: x, Y: y}, myID))
		}
		rows = append(rows, strings.Join(cells, ""))
	}

	return strings.Join(rows, "\n")
}

// renderCell renders a single board cell with the appropriate style.
// Each cell is 2 characters wide for a square-ish appearance.
func renderCell(state *game.Snapshot, pos game.Position, myID string) string {
	// Priority: Player > Fire > Bomb > PowerUp > Tile
	if p, ok := state.PlayerAt(pos); ok {
		color := playerColors[p.Slot%len(playerColors)]
		style := lipgloss.NewStyle().
			Background(lipgloss.Color("#1a1a2e")).
			Foreground(color).
			Bold(true)

		label := fmt.Sprintf("P%d", p.Slot+1)
		if p.ID == myID {
			label = "██"
			style = style.Background(color)
		}
		return style.Render(label)
	}

	if _, ok := state.EffectAt(pos); ok {
		return fireStyle.Render("░░")
	}

	if b, ok := state.BombAt(pos); ok {
		if b.FuseRemaining(state.Now) < time.Second {
			return bombStyle.Blink(true).Render("()")
		}
		return bombStyle.Render("()")
	}

	if pu, ok := state.PowerUpAt(pos); ok {
		return powerUpStyle.Render(powerUpGlyphs[pu.Type])
	}

	switch state.Grid[pos.Y][pos.X] {
	case game.Wall:
		return wallStyle.Render("██")
	case game.Destructible:
		return destructibleStyle.Render("▒▒")
	case game.Spawn:
		return spawnStyle.Render("··")
	default:
		return emptyStyle.Render("  ")
	}
}

// RenderHUD renders the heads-up display showing player info and match status.
func RenderHUD(state *game.Snapshot, myID, notice string) string {
	if state == nil {
		return ""
	}

	var parts []string

	// Title
	parts = append(parts, titleStyle.Render("💣 BOMBERMAN"))
	parts = append(parts, dimStyle.Render(fmt.Sprintf("%s mode  %s", state.Mode, clock(state.Now))))
	parts = append(parts, "")

	// Match status
	switch state.Status {
	case game.StatusMenu:
		parts = append(parts, menuStyle.Render("⏳ READY"))
		parts = append(parts, "   Press [Enter] to start!")
	case game.StatusPlaying:
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Render("🔥 MATCH IN PROGRESS"))
	case game.StatusPaused:
		parts = append(parts, menuStyle.Render("⏸  PAUSED"))
		parts = append(parts, "   Press [P] to resume")
	case game.StatusVictory, game.StatusGameOver:
		parts = append(parts, resultLine(state))
		parts = append(parts, "   Press [Enter] for a new match")
	}
	parts = append(parts, "")

	// Player list
	parts = append(parts, dimStyle.Render("Players:"))
	for _, p := range state.Players {
		nameStyle := lipgloss.NewStyle().Foreground(playerColors[p.Slot%len(playerColors)])

		status := fmt.Sprintf("❤️ %d", p.Lives)
		if !p.Alive {
			status = "💀  "
			nameStyle = deadPlayerStyle
		}

		marker := "  "
		if p.ID == myID {
			marker = "→ "
		}

		bombs := fmt.Sprintf("%d", p.Bombs)
		if p.Unlimited {
			bombs = "∞"
		}

		line := fmt.Sprintf("%s%s %s [💣×%s 🔥%d ⚡%d] %d",
			marker,
			status,
			nameStyle.Render(p.Name),
			bombs,
			p.BombPower,
			p.Speed,
			p.Score,
		)
		parts = append(parts, line)
	}

	if notice != "" {
		parts = append(parts, "", dimStyle.Render(notice))
	}

	parts = append(parts, "")
	parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")).Render("WASD/Arrows: Move | Space: Bomb | P: Pause | Q: Quit"))

	return hudBorderStyle.Render(strings.Join(parts, "\n"))
}

func resultLine(state *game.Snapshot) string {
	if state.Draw {
		return dimStyle.Render("💀 DRAW — Everyone died!")
	}
	name := state.Winner
	if p, ok := state.Player(state.Winner); ok {
		name = p.Name
	}
	if state.Status == game.StatusGameOver {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Bold(true).
			Render(fmt.Sprintf("☠ GAME OVER — %s wins", name))
	}
	return winnerStyle.Render(fmt.Sprintf("🏆 %s WINS!", name))
}

func clock(d time.Duration) string {
	d = d.Truncate(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
