// Package ai drives computer players. Controllers only see snapshots and act
// through the same requests a human input adapter uses.
package ai

import (
	"math/rand"
	"time"

	"github.com/amalg/bomb-arena/internal/game"
)

// Actor is the part of the engine a controller drives. *game.Engine
// satisfies it.
type Actor interface {
	RequestMove(playerID string, dir game.Direction) bool
	RequestBombPlacement(playerID string) bool
}

// Controller decides moves and bomb drops for one player.
type Controller struct {
	PlayerID string

	// MaxDepth bounds the escape search.
	MaxDepth int

	config     game.Config // Fuse and move timing of the match
	stepTime   time.Duration
	actor      Actor
	rng        *rand.Rand
	wander     game.Direction
	wanderLeft time.Duration
	matchID    string
	last       time.Duration
}

// NewController creates a controller for playerID in matches run with
// config.
func NewController(playerID string, actor Actor, config game.Config, rng *rand.Rand) *Controller {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Controller{
		PlayerID: playerID,
		MaxDepth: 8,
		config:   config,
		actor:    actor,
		rng:      rng,
	}
}

// Update looks at a snapshot and issues at most one move and one bomb request.
func (c *Controller) Update(snap game.Snapshot) {
	if snap.MatchID != c.matchID {
		c.matchID = snap.MatchID
		c.last = snap.Now
		c.wanderLeft = 0
	}
	dt := max(snap.Now-c.last, 0)
	c.last = snap.Now

	if snap.Status != game.StatusPlaying {
		return
	}
	p, ok := snap.Player(c.PlayerID)
	if !ok || !p.OnBoard() {
		return
	}

	c.stepTime = c.config.CooldownFor(p.Speed)

	danger := NewDangerMap(snap)
	if danger.Unsafe(p.Pos) {
		if dir, ok := c.escape(snap, danger, p.Pos); ok {
			c.actor.RequestMove(c.PlayerID, dir)
		}
		return
	}

	if c.wantsBomb(snap, p) {
		withBomb := danger.With(snap, game.Bomb{
			Pos:    p.Pos,
			Power:  p.BombPower,
			FuseAt: snap.Now + c.config.BombFuse,
		})
		if _, ok := c.escape(snap, withBomb, p.Pos); ok {
			if c.actor.RequestBombPlacement(c.PlayerID) {
				return
			}
		}
	}

	if snap.Now < p.MoveReadyAt {
		return
	}
	c.wanderLeft -= dt
	dir, ok := c.wanderStep(snap, danger, p.Pos)
	if ok {
		c.actor.RequestMove(c.PlayerID, dir)
	}
}

// wantsBomb reports whether a bomb at the player's tile would hit a
// destructible wall or another player.
func (c *Controller) wantsBomb(snap game.Snapshot, p game.Player) bool {
	if !p.HasBomb() {
		return false
	}
	if _, ok := snap.BombAt(p.Pos); ok {
		return false
	}
	for _, cell := range game.BlastCells(snap, p.Pos, p.BombPower) {
		if cell.Breaks {
			return true
		}
		if other, ok := snap.PlayerAt(cell.Pos); ok && other.ID != p.ID {
			return true
		}
	}
	return false
}

type step struct {
	pos   game.Position
	first game.Direction
	depth int
}

// escape finds the first step of the shortest route to a tile no blast
// reaches, avoiding tiles that blow up while the player passes through.
func (c *Controller) escape(snap game.Snapshot, danger *DangerMap, from game.Position) (game.Direction, bool) {
	seen := map[game.Position]bool{from: true}
	queue := []step{}
	for _, dir := range c.shuffled() {
		queue = append(queue, step{pos: from.Add(dir.Offset()), first: dir, depth: 1})
	}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if s.depth > c.MaxDepth || seen[s.pos] || !c.walkable(snap, s.pos) {
			continue
		}
		seen[s.pos] = true

		arrive := snap.Now + time.Duration(s.depth)*c.stepTime
		if !danger.SafeDuring(s.pos, arrive-c.stepTime, arrive+c.stepTime) {
			continue
		}
		if !danger.Unsafe(s.pos) {
			return s.first, true
		}
		for _, dir := range game.Directions {
			queue = append(queue, step{pos: s.pos.Add(dir.Offset()), first: s.first, depth: s.depth + 1})
		}
	}
	return 0, false
}

// wanderStep keeps a random heading for a while and never walks into a
// blast zone.
func (c *Controller) wanderStep(snap game.Snapshot, danger *DangerMap, from game.Position) (game.Direction, bool) {
	next := from.Add(c.wander.Offset())
	if c.wanderLeft > 0 && c.walkable(snap, next) && !danger.Unsafe(next) {
		return c.wander, true
	}

	c.wanderLeft = 500*time.Millisecond + time.Duration(c.rng.Int63n(int64(time.Second)))
	for _, dir := range c.shuffled() {
		next := from.Add(dir.Offset())
		if c.walkable(snap, next) && !danger.Unsafe(next) {
			c.wander = dir
			return dir, true
		}
	}
	return 0, false
}

func (c *Controller) walkable(snap game.Snapshot, pos game.Position) bool {
	if !snap.InBounds(pos) || !snap.IsPassable(pos) {
		return false
	}
	if other, ok := snap.PlayerAt(pos); ok && other.ID != c.PlayerID {
		return false
	}
	_, bomb := snap.BombAt(pos)
	return !bomb
}

func (c *Controller) shuffled() []game.Direction {
	dirs := game.Directions
	c.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
	return dirs[:]
}

// Driver fans snapshots out to several controllers. Its Update method fits
// Engine.OnTick.
type Driver struct {
	controllers []*Controller
}

// NewDriver groups controllers.
func NewDriver(controllers ...*Controller) *Driver {
	return &Driver{controllers: controllers}
}

// Update forwards a snapshot to every controller in order.
func (d *Driver) Update(snap game.Snapshot) {
	for _, c := range d.controllers {
		c.Update(snap)
	}
}

// Controllers returns the grouped controllers.
func (d *Driver) Controllers() []*Controller {
	return d.controllers
}
