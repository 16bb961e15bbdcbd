package game

import "time"

func validDirection(dir Direction) bool {
	return dir >= DirUp && dir <= DirRight
}

// requestMoveLocked applies the per-player cooldown before trying the move.
func (e *Engine) requestMoveLocked(p *Player, dir Direction) bool {
	if !p.OnBoard() || e.now < p.MoveReadyAt {
		return false
	}
	return e.tryMove(p, dir)
}

// tryMove attempts to move a player one tile in the given direction.
// Movement is blocked by the grid edge, impassable tiles, other players on the
// board and, when BombsBlockMovement is set, bombs. A blocked move changes
// nothing.
func (e *Engine) tryMove(p *Player, dir Direction) bool {
	if !p.OnBoard() || !validDirection(dir) {
		return false
	}

	target := p.Pos.Add(dir.Offset())
	if !e.arena.InBounds(target) || !e.arena.IsPassable(target) {
		return false
	}
	if e.reg.PlayerAt(target, p) != nil {
		return false
	}
	if e.Config.BombsBlockMovement && e.reg.BombAt(target) != nil {
		return false
	}

	p.Pos = target
	p.MoveReadyAt = e.now + e.moveCooldown(p)
	return true
}

func (e *Engine) moveCooldown(p *Player) time.Duration {
	return e.Config.CooldownFor(p.Speed)
}
