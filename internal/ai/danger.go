package ai

import (
	"math"
	"time"

	"github.com/amalg/bomb-arena/internal/game"
)

const never = time.Duration(math.MaxInt64)

// DangerMap holds, per tile, the earliest match time at which a blast covers
// it. Live explosion effects count as danger now.
type DangerMap struct {
	width, height int
	earliest      [][]time.Duration
}

// NewDangerMap builds the danger map for a snapshot. Bombs caught in another
// bomb's blast are assumed to go off with it.
func NewDangerMap(snap game.Snapshot) *DangerMap {
	return newDangerMap(snap, snap.Bombs)
}

// With returns a copy of the map that also accounts for an extra bomb.
func (d *DangerMap) With(snap game.Snapshot, bomb game.Bomb) *DangerMap {
	bombs := append(append([]game.Bomb(nil), snap.Bombs...), bomb)
	return newDangerMap(snap, bombs)
}

func newDangerMap(snap game.Snapshot, bombs []game.Bomb) *DangerMap {
	d := &DangerMap{width: snap.Width, height: snap.Height}
	d.earliest = make([][]time.Duration, snap.Height)
	for y := range d.earliest {
		d.earliest[y] = make([]time.Duration, snap.Width)
		for x := range d.earliest[y] {
			d.earliest[y][x] = never
		}
	}

	blasts := make([][]game.BlastCell, len(bombs))
	when := make([]time.Duration, len(bombs))
	for i, b := range bombs {
		blasts[i] = game.BlastCells(snap, b.Pos, b.Power)
		when[i] = b.FuseAt
	}

	// Propagate chain explosions until stable.
	changed := true
	for changed {
		changed = false
		for i := range bombs {
			for _, cell := range blasts[i] {
				for j, other := range bombs {
					if j != i && other.Pos == cell.Pos && when[j] > when[i] {
						when[j] = when[i]
						changed = true
					}
				}
			}
		}
	}

	for i := range bombs {
		for _, cell := range blasts[i] {
			d.mark(cell.Pos, when[i])
		}
	}
	for _, fx := range snap.Effects {
		d.mark(fx.Pos, snap.Now)
	}
	return d
}

func (d *DangerMap) mark(pos game.Position, at time.Duration) {
	if at < d.earliest[pos.Y][pos.X] {
		d.earliest[pos.Y][pos.X] = at
	}
}

// At returns the earliest blast time for pos, and false if no known blast
// reaches it.
func (d *DangerMap) At(pos game.Position) (time.Duration, bool) {
	if !d.inBounds(pos) {
		return 0, true
	}
	at := d.earliest[pos.Y][pos.X]
	return at, at != never
}

// Unsafe reports whether any pending blast reaches pos.
func (d *DangerMap) Unsafe(pos game.Position) bool {
	_, ok := d.At(pos)
	return ok
}

// SafeDuring reports whether pos stays clear over [from, to].
func (d *DangerMap) SafeDuring(pos game.Position, from, to time.Duration) bool {
	at, ok := d.At(pos)
	if !ok {
		return true
	}
	// Blasts linger for a while after they go off.
	return at > to || at+lingerGuess < from
}

const lingerGuess = 600 * time.Millisecond

func (d *DangerMap) inBounds(pos game.Position) bool {
	return pos.X >= 0 && pos.X < d.width && pos.Y >= 0 && pos.Y < d.height
}
