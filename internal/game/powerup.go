package game

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// powerUpWeights is the relative spawn frequency of each type.
var powerUpWeights = []struct {
	Type   PowerUpType
	Weight int
}{
	{PowerBombCount, 40},
	{PowerBombPower, 30},
	{PowerSpeed, 20},
	{PowerLife, 10},
}

// tickPowerUps runs collection, then the spawn schedule.
func (e *Engine) tickPowerUps() {
	e.collectPowerUps()
	e.spawnPowerUp()
}

// collectPowerUps gives every on-board player the power-up under it.
func (e *Engine) collectPowerUps() {
	for _, p := range e.reg.Players() {
		if !p.OnBoard() {
			continue
		}
		pu := e.reg.PowerUpAt(p.Pos)
		if pu == nil {
			continue
		}

		e.applyPowerUp(p, pu.Type)
		pu.Collected = true
		e.reg.RemovePowerUp(pu)
		p.Score += ScorePowerUp
		e.emit(Event{Type: EventPowerUpCollected, PlayerID: p.ID, Pos: pu.Pos, PowerUp: pu.Type})
	}
}

func (e *Engine) applyPowerUp(p *Player, t PowerUpType) {
	switch t {
	case PowerBombCount:
		if !p.Unlimited {
			p.Bombs = min(p.Bombs+1, e.Config.MaxBombs)
		}
	case PowerBombPower:
		p.BombPower++
	case PowerSpeed:
		p.Speed++
	case PowerLife:
		p.Lives++
	}
}

// spawnPowerUp places one power-up when the schedule is due and the board
// holds fewer than MaxPowerUps. A failed placement is dropped until the next
// cycle.
func (e *Engine) spawnPowerUp() {
	if e.now < e.nextPowerUpAt {
		return
	}
	e.nextPowerUpAt = e.now + e.nextPowerUpInterval()

	if len(e.reg.PowerUps()) >= e.Config.MaxPowerUps {
		return
	}

	pos, ok := e.findPowerUpTile()
	if !ok {
		e.logger.Debug("power-up placement abandoned", append(e.matchFields(),
			zap.Int("attempts", e.Config.PowerUpAttempts),
		)...)
		return
	}

	pu := &PowerUp{
		ID:        uuid.NewString(),
		Pos:       pos,
		Type:      e.pickPowerUpType(),
		SpawnedAt: e.now,
	}
	e.reg.AddPowerUp(pu)
	e.emit(Event{Type: EventPowerUpSpawned, Pos: pos, PowerUp: pu.Type})
}

// nextPowerUpInterval draws base ± variance, uniformly.
func (e *Engine) nextPowerUpInterval() time.Duration {
	v := e.Config.PowerUpVariance
	if v <= 0 {
		return e.Config.PowerUpInterval
	}
	return e.Config.PowerUpInterval - v + time.Duration(e.rng.Int63n(int64(2*v)+1))
}

// pickPowerUpType draws a weighted type. BombCount is left out in unlimited
// mode and its share spread over the others.
func (e *Engine) pickPowerUpType() PowerUpType {
	total := 0
	for _, w := range powerUpWeights {
		if w.Type == PowerBombCount && e.mode == ModeUnlimited {
			continue
		}
		total += w.Weight
	}

	r := e.rng.Intn(total)
	for _, w := range powerUpWeights {
		if w.Type == PowerBombCount && e.mode == ModeUnlimited {
			continue
		}
		if r < w.Weight {
			return w.Type
		}
		r -= w.Weight
	}
	return PowerLife
}

func (e *Engine) findPowerUpTile() (Position, bool) {
	for i := 0; i < e.Config.PowerUpAttempts; i++ {
		pos := Position{X: e.rng.Intn(e.arena.Width()), Y: e.rng.Intn(e.arena.Height())}
		if e.powerUpCandidate(pos) {
			return pos, true
		}
	}
	return Position{}, false
}

// powerUpCandidate rejects walls, spawn tiles, bombs, players on the board
// and existing power-ups.
func (e *Engine) powerUpCandidate(pos Position) bool {
	if e.arena.TileAt(pos) != Open {
		return false
	}
	return !e.reg.Occupied(pos)
}
