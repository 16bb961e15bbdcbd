package game

import "go.uber.org/zap"

// respawnProbe is the order in which the tiles around a spawn are tried
// when the spawn itself is unsafe: orthogonal first, then diagonal.
var respawnProbe = [8]Position{
	{X: 0, Y: -1}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: -1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: 1, Y: 1},
}

// damagePlayer takes one life from p. source is the owner of the bomb, or
// nil if unknown. A player reduced to zero lives is eliminated and stays off
// the board; otherwise it respawns now or after RespawnDelay.
func (e *Engine) damagePlayer(p *Player, source *Player) {
	if !p.OnBoard() {
		return
	}

	p.Lives--
	p.Deaths++
	p.holding = false

	sourceID := ""
	if source != nil {
		sourceID = source.ID
		if source != p {
			source.Kills++
			source.Score += ScoreHit
		}
	}
	e.emit(Event{Type: EventPlayerDamaged, PlayerID: p.ID, SourceID: sourceID, Pos: p.Pos})

	if p.Lives <= 0 {
		p.Lives = 0
		p.Alive = false
		if source != nil && source != p {
			source.Score += ScoreKill
		}
		e.emit(Event{Type: EventPlayerEliminated, PlayerID: p.ID, SourceID: sourceID, Pos: p.Pos})
		e.logger.Info("player eliminated", append(e.matchFields(),
			zap.String("player", p.ID),
			zap.String("source", sourceID),
		)...)
		return
	}

	if e.Config.RespawnDelay > 0 {
		p.Respawning = true
		p.RespawnAt = e.now + e.Config.RespawnDelay
		return
	}
	e.respawn(p)
}

// tickRespawns places players whose respawn delay has elapsed.
func (e *Engine) tickRespawns() {
	for _, p := range e.reg.Players() {
		if p.Alive && p.Respawning && e.now >= p.RespawnAt {
			e.respawn(p)
		}
	}
}

// respawn relocates p to its spawn, the first safe neighbour of the spawn,
// or, if nothing is safe, to a force-cleared spawn. Only the position and
// movement state are reset.
func (e *Engine) respawn(p *Player) {
	pos, ok := e.findRespawnTile(p)
	if !ok {
		e.forceClear(p.Spawn, p)
		pos = p.Spawn
		e.logger.Warn("respawn forced", append(e.matchFields(),
			zap.String("player", p.ID),
			zap.Int("x", pos.X),
			zap.Int("y", pos.Y),
		)...)
	}

	p.Pos = pos
	p.Respawning = false
	p.RespawnAt = 0
	p.MoveReadyAt = e.now
	e.emit(Event{Type: EventPlayerRespawned, PlayerID: p.ID, Pos: pos})
}

func (e *Engine) findRespawnTile(p *Player) (Position, bool) {
	if e.respawnSafe(p.Spawn, p) {
		return p.Spawn, true
	}
	for _, off := range respawnProbe {
		pos := p.Spawn.Add(off)
		if e.respawnSafe(pos, p) {
			return pos, true
		}
	}
	return Position{}, false
}

// respawnSafe reports whether p may reappear on pos: passable, no other
// player on the board and no bomb.
func (e *Engine) respawnSafe(pos Position, p *Player) bool {
	if !e.arena.InBounds(pos) || !e.arena.IsPassable(pos) {
		return false
	}
	return e.reg.PlayerAt(pos, p) == nil && e.reg.BombAt(pos) == nil
}

// forceClear empties pos for p. Bombs there are defused and go back to their
// owners' inventories, power-ups are discarded and other players are moved to
// the nearest safe tile. A player with nowhere to go stays put and shares the
// tile with p.
func (e *Engine) forceClear(pos Position, p *Player) {
	for b := e.reg.BombAt(pos); b != nil; b = e.reg.BombAt(pos) {
		// Marked so a pass already holding it does not detonate it.
		b.Exploded = true
		e.reg.RemoveBomb(b)
		if owner := e.reg.Player(b.OwnerID); owner != nil {
			owner.ActiveBombs--
			if !owner.Unlimited {
				owner.Bombs++
			}
		}
	}
	for pu := e.reg.PowerUpAt(pos); pu != nil; pu = e.reg.PowerUpAt(pos) {
		e.reg.RemovePowerUp(pu)
	}

	for other := e.reg.PlayerAt(pos, p); other != nil; other = e.reg.PlayerAt(pos, p) {
		to, ok := e.nearestSafe(pos, other)
		if !ok {
			e.logger.Warn("no tile to displace player to", append(e.matchFields(),
				zap.String("player", other.ID),
			)...)
			return
		}
		other.Pos = to
		other.holding = false
		e.logger.Debug("player displaced", append(e.matchFields(),
			zap.String("player", other.ID),
			zap.Stringer("to", to),
		)...)
	}
}

// nearestSafe searches outward from pos over passable tiles for the closest
// tile, other than pos, where p may stand.
func (e *Engine) nearestSafe(pos Position, p *Player) (Position, bool) {
	seen := map[Position]bool{pos: true}
	queue := []Position{pos}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dir := range Directions {
			next := cur.Add(dir.Offset())
			if seen[next] || !e.arena.InBounds(next) || !e.arena.IsPassable(next) {
				continue
			}
			seen[next] = true
			if e.respawnSafe(next, p) {
				return next, true
			}
			queue = append(queue, next)
		}
	}
	return Position{}, false
}
