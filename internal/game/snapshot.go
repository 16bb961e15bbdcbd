package game

import "time"

// Snapshot is a read-only copy of the match for renderers, AI clients and
// telemetry. Mutating it has no effect on the engine.
type Snapshot struct {
	MatchID  string            `json:"match_id"`
	Status   GameStatus        `json:"status"`
	Mode     BombMode          `json:"mode"`
	Now      time.Duration     `json:"now"`
	Ticks    uint64            `json:"ticks"`
	Width    int               `json:"width"`
	Height   int               `json:"height"`
	Grid     [][]TileType      `json:"grid"` // [row][col]
	Players  []Player          `json:"players"`
	Bombs    []Bomb            `json:"bombs"`
	PowerUps []PowerUp         `json:"powerups"`
	Effects  []ExplosionEffect `json:"effects"`
	Winner   string            `json:"winner,omitempty"`
	Draw     bool              `json:"draw"`
}

// QueryState returns a deep copy of the match state.
func (e *Engine) QueryState() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// snapshotLocked creates a deep copy of the match state.
// MUST be called while e.mu is held.
func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		MatchID: e.matchID,
		Status:  e.status,
		Mode:    e.mode,
		Now:     e.now,
		Ticks:   e.ticks,
		Winner:  e.winner,
		Draw:    e.draw,
	}
	if e.arena == nil {
		return s
	}

	s.Width = e.arena.Width()
	s.Height = e.arena.Height()
	s.Grid = e.arena.Tiles()

	s.Players = make([]Player, len(e.reg.Players()))
	for i, p := range e.reg.Players() {
		s.Players[i] = *p
	}

	s.Bombs = make([]Bomb, len(e.reg.Bombs()))
	for i, b := range e.reg.Bombs() {
		s.Bombs[i] = *b
	}

	s.PowerUps = make([]PowerUp, len(e.reg.PowerUps()))
	for i, pu := range e.reg.PowerUps() {
		s.PowerUps[i] = *pu
	}

	s.Effects = make([]ExplosionEffect, len(e.reg.Effects()))
	copy(s.Effects, e.reg.Effects())

	return s
}

// InBounds reports whether pos lies on the grid.
func (s Snapshot) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < s.Width && pos.Y >= 0 && pos.Y < s.Height
}

// TileAt returns the tile at pos. It panics with *OutOfBoundsError outside
// the grid, like Arena.TileAt.
func (s Snapshot) TileAt(pos Position) TileType {
	if !s.InBounds(pos) {
		panic(&OutOfBoundsError{Pos: pos, Width: s.Width, Height: s.Height})
	}
	return s.Grid[pos.Y][pos.X]
}

// IsPassable reports whether players may stand on pos.
func (s Snapshot) IsPassable(pos Position) bool {
	t := s.TileAt(pos)
	return t == Open || t == Spawn
}

// Player returns the player with the given id.
func (s Snapshot) Player(id string) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// PlayerAt returns the on-board player on pos.
func (s Snapshot) PlayerAt(pos Position) (Player, bool) {
	for _, p := range s.Players {
		if p.OnBoard() && p.Pos == pos {
			return p, true
		}
	}
	return Player{}, false
}

// BombAt returns the bomb on pos.
func (s Snapshot) BombAt(pos Position) (Bomb, bool) {
	for _, b := range s.Bombs {
		if b.Pos == pos {
			return b, true
		}
	}
	return Bomb{}, false
}

// PowerUpAt returns the uncollected power-up on pos.
func (s Snapshot) PowerUpAt(pos Position) (PowerUp, bool) {
	for _, pu := range s.PowerUps {
		if !pu.Collected && pu.Pos == pos {
			return pu, true
		}
	}
	return PowerUp{}, false
}

// EffectAt reports whether a live blast effect covers pos.
func (s Snapshot) EffectAt(pos Position) (ExplosionEffect, bool) {
	for _, fx := range s.Effects {
		if fx.Pos == pos {
			return fx, true
		}
	}
	return ExplosionEffect{}, false
}

// Living returns the number of players still in the match.
func (s Snapshot) Living() int {
	n := 0
	for _, p := range s.Players {
		if p.Alive {
			n++
		}
	}
	return n
}
