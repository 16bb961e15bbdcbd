package game

import "time"

// Registry tracks the live entities of one match and answers occupancy
// queries. Players are kept in slot order so every per-tick pass over them is
// deterministic.
type Registry struct {
	players  []*Player
	bombs    []*Bomb // Placement order
	powerUps []*PowerUp
	effects  []ExplosionEffect
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddPlayer registers a player.
func (r *Registry) AddPlayer(p *Player) {
	r.players = append(r.players, p)
}

// Player returns the player with the given id, or nil.
func (r *Registry) Player(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Players returns all players, eliminated ones included.
func (r *Registry) Players() []*Player {
	return r.players
}

// Living returns the players that are still in the match.
func (r *Registry) Living() []*Player {
	alive := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

// PlayerAt returns the first on-board player standing on pos other than
// except, or nil.
func (r *Registry) PlayerAt(pos Position, except *Player) *Player {
	for _, p := range r.players {
		if p != except && p.OnBoard() && p.Pos == pos {
			return p
		}
	}
	return nil
}

// PlayersAt returns every on-board player standing on pos.
func (r *Registry) PlayersAt(pos Position) []*Player {
	var out []*Player
	for _, p := range r.players {
		if p.OnBoard() && p.Pos == pos {
			out = append(out, p)
		}
	}
	return out
}

// AddBomb registers a bomb.
func (r *Registry) AddBomb(b *Bomb) {
	r.bombs = append(r.bombs, b)
}

// Bomb returns the active bomb with the given id, or nil.
func (r *Registry) Bomb(id string) *Bomb {
	for _, b := range r.bombs {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Bombs returns active bombs in placement order.
func (r *Registry) Bombs() []*Bomb {
	return r.bombs
}

// BombAt returns the active bomb on pos, or nil.
func (r *Registry) BombAt(pos Position) *Bomb {
	for _, b := range r.bombs {
		if b.Pos == pos {
			return b
		}
	}
	return nil
}

// RemoveBomb unregisters a bomb. It reports false if the bomb was not active.
func (r *Registry) RemoveBomb(b *Bomb) bool {
	for i, other := range r.bombs {
		if other == b {
			r.bombs = append(r.bombs[:i], r.bombs[i+1:]...)
			return true
		}
	}
	return false
}

// DueBombs returns the bombs whose fuse has run out at now, in placement order.
func (r *Registry) DueBombs(now time.Duration) []*Bomb {
	var due []*Bomb
	for _, b := range r.bombs {
		if b.FuseAt <= now {
			due = append(due, b)
		}
	}
	return due
}

// AddPowerUp registers a power-up.
func (r *Registry) AddPowerUp(pu *PowerUp) {
	r.powerUps = append(r.powerUps, pu)
}

// PowerUps returns the uncollected power-ups.
func (r *Registry) PowerUps() []*PowerUp {
	return r.powerUps
}

// PowerUpAt returns the uncollected power-up on pos, or nil.
func (r *Registry) PowerUpAt(pos Position) *PowerUp {
	for _, pu := range r.powerUps {
		if !pu.Collected && pu.Pos == pos {
			return pu
		}
	}
	return nil
}

// RemovePowerUp unregisters a power-up.
func (r *Registry) RemovePowerUp(pu *PowerUp) {
	for i, other := range r.powerUps {
		if other == pu {
			r.powerUps = append(r.powerUps[:i], r.powerUps[i+1:]...)
			return
		}
	}
}

// AddEffect records a blast cell effect.
func (r *Registry) AddEffect(fx ExplosionEffect) {
	r.effects = append(r.effects, fx)
}

// Effects returns the live explosion effects.
func (r *Registry) Effects() []ExplosionEffect {
	return r.effects
}

// ExpireEffects drops effects that have expired at now.
func (r *Registry) ExpireEffects(now time.Duration) {
	remaining := r.effects[:0]
	for _, fx := range r.effects {
		if now < fx.ExpiresAt {
			remaining = append(remaining, fx)
		}
	}
	r.effects = remaining
}

// Occupied reports whether pos holds an on-board player, a bomb or an
// uncollected power-up.
func (r *Registry) Occupied(pos Position) bool {
	return r.PlayerAt(pos, nil) != nil || r.BombAt(pos) != nil || r.PowerUpAt(pos) != nil
}
