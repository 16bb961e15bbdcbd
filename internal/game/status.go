package game

import (
	"fmt"

	"go.uber.org/zap"
)

// GameStatus represents the current match phase.
type GameStatus int

const (
	StatusMenu     GameStatus = iota // Initialized, waiting for StartMatch
	StatusPlaying                    // Tick loop running
	StatusPaused                     // All deadlines frozen
	StatusGameOver                   // Finished, the local player did not win
	StatusVictory                    // Finished with a winner or a draw
)

func (s GameStatus) String() string {
	switch s {
	case StatusMenu:
		return "MENU"
	case StatusPlaying:
		return "PLAYING"
	case StatusPaused:
		return "PAUSED"
	case StatusGameOver:
		return "GAME_OVER"
	case StatusVictory:
		return "VICTORY"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Terminal reports whether the match has ended.
func (s GameStatus) Terminal() bool {
	return s == StatusGameOver || s == StatusVictory
}

// StartMatch transitions MENU → PLAYING.
func (e *Engine) StartMatch() error {
	e.mu.Lock()
	defer e.unlockAndFlush()

	if e.arena == nil {
		return fmt.Errorf("%w: no match initialized", ErrInvalidTransition)
	}
	if e.status != StatusMenu {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, e.status)
	}
	e.status = StatusPlaying
	e.emit(Event{Type: EventMatchStarted, Mode: e.mode})
	e.logger.Info("match started", e.matchFields()...)
	return nil
}

// Pause transitions PLAYING → PAUSED. Match time stops advancing, which
// freezes every fuse, cooldown and spawn deadline.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.unlockAndFlush()
	return e.pauseLocked()
}

// Resume transitions PAUSED → PLAYING. Deadlines continue where they stopped.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.unlockAndFlush()
	return e.resumeLocked()
}

// TogglePause flips between PLAYING and PAUSED.
func (e *Engine) TogglePause() error {
	e.mu.Lock()
	defer e.unlockAndFlush()

	if e.status == StatusPaused {
		return e.resumeLocked()
	}
	return e.pauseLocked()
}

func (e *Engine) pauseLocked() error {
	if e.status != StatusPlaying {
		return fmt.Errorf("%w: pause from %s", ErrInvalidTransition, e.status)
	}
	e.status = StatusPaused
	e.emit(Event{Type: EventMatchPaused})
	e.logger.Info("match paused", e.matchFields()...)
	return nil
}

func (e *Engine) resumeLocked() error {
	if e.status != StatusPaused {
		return fmt.Errorf("%w: resume from %s", ErrInvalidTransition, e.status)
	}
	e.status = StatusPlaying
	e.emit(Event{Type: EventMatchResumed})
	e.logger.Info("match resumed", e.matchFields()...)
	return nil
}

// checkWinCondition ends the match once at most one player is alive.
func (e *Engine) checkWinCondition() {
	if e.status != StatusPlaying {
		return
	}

	alive := e.reg.Living()
	if len(alive) > 1 {
		return
	}

	winner := ""
	if len(alive) == 1 {
		winner = alive[0].ID
	}
	e.endMatch(winner)
}

func (e *Engine) endMatch(winner string) {
	e.winner = winner
	e.draw = winner == ""
	e.status = StatusVictory
	if e.Config.LocalPlayer != "" && e.Config.LocalPlayer != winner {
		e.status = StatusGameOver
	}

	for _, p := range e.reg.Players() {
		p.holding = false
	}

	e.emit(Event{
		Type:      EventMatchEnded,
		Mode:      e.mode,
		WinnerID:  winner,
		Draw:      e.draw,
		Standings: e.standingsLocked(),
	})
	e.logger.Info("match ended", append(e.matchFields(),
		zap.String("winner", winner),
		zap.Bool("draw", e.draw),
		zap.String("status", e.status.String()),
	)...)
}

func (e *Engine) standingsLocked() []Standing {
	out := make([]Standing, 0, len(e.reg.Players()))
	for _, p := range e.reg.Players() {
		out = append(out, Standing{
			PlayerID: p.ID,
			Name:     p.Name,
			Alive:    p.Alive,
			Lives:    p.Lives,
			Score:    p.Score,
			Kills:    p.Kills,
			Deaths:   p.Deaths,
		})
	}
	return out
}
