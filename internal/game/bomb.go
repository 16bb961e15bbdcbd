package game

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// placeBomb places a bomb at the player's current position.
func (e *Engine) placeBomb(p *Player) bool {
	if !p.OnBoard() || !p.HasBomb() {
		return false
	}

	// Bombs do not stack
	if e.reg.BombAt(p.Pos) != nil {
		return false
	}

	if !p.Unlimited {
		p.Bombs--
	}
	p.ActiveBombs++

	bomb := &Bomb{
		ID:       uuid.NewString(),
		OwnerID:  p.ID,
		Pos:      p.Pos,
		Power:    p.BombPower,
		PlacedAt: e.now,
		FuseAt:   e.now + e.Config.BombFuse,
	}
	e.reg.AddBomb(bomb)
	e.emit(Event{Type: EventBombPlaced, PlayerID: p.ID, BombID: bomb.ID, Pos: bomb.Pos})
	return true
}

// tickBombs detonates every bomb whose fuse has run out, then expires blast
// effects and resolves delayed respawns.
func (e *Engine) tickBombs() {
	for _, b := range e.reg.DueBombs(e.now) {
		// A chain reaction earlier in this pass may already have taken it.
		if b.Exploded {
			continue
		}
		e.explode(b)
	}

	e.reg.ExpireEffects(e.now)
	e.tickRespawns()
}

// explode resolves a bomb and, when chain reactions are enabled, every bomb
// its blast reaches, breadth first.
func (e *Engine) explode(first *Bomb) {
	queue := []*Bomb{first}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		if b.Exploded {
			continue
		}
		queue = append(queue, e.detonate(b)...)
	}
}

// detonate resolves a single explosion and returns the bombs its blast
// reached if they should chain.
func (e *Engine) detonate(bomb *Bomb) []*Bomb {
	// Remove first so the bomb neither blocks nor re-triggers. A bomb that
	// already left the registry was defused and never goes off.
	bomb.Exploded = true
	if !e.reg.RemoveBomb(bomb) {
		return nil
	}
	owner := e.reg.Player(bomb.OwnerID)

	cells := BlastCells(e.arena, bomb.Pos, bomb.Power)
	expiry := e.now + e.Config.ExplosionDuration

	var (
		victims []*Player
		chained []*Bomb
		walls   int
	)
	hit := make(map[*Player]bool)

	for _, c := range cells {
		e.reg.AddEffect(ExplosionEffect{
			Pos:       c.Pos,
			Center:    c.Center,
			Dir:       c.Dir,
			Terminal:  c.Terminal,
			ExpiresAt: expiry,
		})

		if c.Breaks && e.arena.Destroy(c.Pos) {
			walls++
			e.emit(Event{Type: EventWallDestroyed, PlayerID: bomb.OwnerID, BombID: bomb.ID, Pos: c.Pos})
		}

		// One damage instance per player per explosion
		for _, p := range e.reg.PlayersAt(c.Pos) {
			if !hit[p] {
				hit[p] = true
				victims = append(victims, p)
			}
		}

		if e.Config.ChainReactions {
			if other := e.reg.BombAt(c.Pos); other != nil {
				chained = append(chained, other)
			}
		}
	}

	e.emit(Event{Type: EventBombExploded, PlayerID: bomb.OwnerID, BombID: bomb.ID, Pos: bomb.Pos})
	e.logger.Debug("bomb exploded",
		zap.String("bomb_id", bomb.ID),
		zap.String("owner", bomb.OwnerID),
		zap.Int("cells", len(cells)),
		zap.Int("walls", walls),
		zap.Int("victims", len(victims)),
	)

	for _, p := range victims {
		e.damagePlayer(p, owner)
	}

	if owner != nil {
		owner.ActiveBombs--
		owner.Score += walls * ScoreWall
	}

	return chained
}
