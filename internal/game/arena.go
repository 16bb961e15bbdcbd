package game

import (
	"fmt"
	"math/rand"
)

// Arena is the fixed-size tile grid. It owns tile state; the only mutation
// after generation is Destroy.
type Arena struct {
	tiles  [][]TileType
	width  int
	height int
}

// NewArena generates a classic grid layout.
//
// Layout rules:
//   - Border is all Wall
//   - Wall at every position where both X and Y are even
//   - The four spawn corners are Spawn
//   - Remaining open tiles become Destructible with probability DestructibleDensity,
//     except within Chebyshev distance SafeRadius of a spawn corner
func NewArena(config Config, rng *rand.Rand) *Arena {
	a := newBaseArena(config.Width, config.Height)

	spawns := SpawnPositions(config.Width, config.Height)
	for _, sp := range spawns {
		a.tiles[sp.Y][sp.X] = Spawn
	}

	for y := 1; y < a.height-1; y++ {
		for x := 1; x < a.width-1; x++ {
			if a.tiles[y][x] != Open {
				continue
			}
			if nearSpawn(Position{X: x, Y: y}, spawns, config.SafeRadius) {
				continue
			}
			if rng.Float64() < config.DestructibleDensity {
				a.tiles[y][x] = Destructible
			}
		}
	}

	return a
}

func newBaseArena(width, height int) *Arena {
	tiles := make([][]TileType, height)
	for y := 0; y < height; y++ {
		tiles[y] = make([]TileType, width)
		for x := 0; x < width; x++ {
			switch {
			case x == 0 || y == 0 || x == width-1 || y == height-1:
				// Border walls
				tiles[y][x] = Wall
			case x%2 == 0 && y%2 == 0:
				// Interior pillar lattice
				tiles[y][x] = Wall
			default:
				tiles[y][x] = Open
			}
		}
	}
	return &Arena{tiles: tiles, width: width, height: height}
}

func nearSpawn(pos Position, spawns []Position, radius int) bool {
	for _, sp := range spawns {
		if pos.Chebyshev(sp) <= radius {
			return true
		}
	}
	return false
}

// NewArenaFromLayout builds an arena from rows of '#' (wall), '+' (destructible),
// 'S' (spawn) and '.' (open). All rows must have the same length.
func NewArenaFromLayout(rows []string) (*Arena, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrInvalidConfig)
	}
	width := len(rows[0])
	tiles := make([][]TileType, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: layout row %d has width %d, want %d", ErrInvalidConfig, y, len(row), width)
		}
		tiles[y] = make([]TileType, width)
		for x, c := range row {
			switch c {
			case '#':
				tiles[y][x] = Wall
			case '+':
				tiles[y][x] = Destructible
			case 'S':
				tiles[y][x] = Spawn
			case '.':
				tiles[y][x] = Open
			default:
				return nil, fmt.Errorf("%w: layout char %q at (%d,%d)", ErrInvalidConfig, c, x, y)
			}
		}
	}
	return &Arena{tiles: tiles, width: width, height: len(rows)}, nil
}

// Width returns the number of columns.
func (a *Arena) Width() int { return a.width }

// Height returns the number of rows.
func (a *Arena) Height() int { return a.height }

// InBounds reports whether pos lies on the grid.
func (a *Arena) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < a.width && pos.Y >= 0 && pos.Y < a.height
}

// TileAt returns the tile type at pos. It panics with *OutOfBoundsError when
// pos lies outside the grid.
func (a *Arena) TileAt(pos Position) TileType {
	if !a.InBounds(pos) {
		panic(&OutOfBoundsError{Pos: pos, Width: a.width, Height: a.height})
	}
	return a.tiles[pos.Y][pos.X]
}

// IsPassable reports whether players may stand on pos.
func (a *Arena) IsPassable(pos Position) bool {
	t := a.TileAt(pos)
	return t == Open || t == Spawn
}

// Destroy turns a Destructible tile into Open and reports whether it did.
// Any other tile is left untouched.
func (a *Arena) Destroy(pos Position) bool {
	if a.TileAt(pos) != Destructible {
		return false
	}
	a.tiles[pos.Y][pos.X] = Open
	return true
}

// Spawns returns every Spawn tile in row-major order.
func (a *Arena) Spawns() []Position {
	var out []Position
	for y := range a.tiles {
		for x, t := range a.tiles[y] {
			if t == Spawn {
				out = append(out, Position{X: x, Y: y})
			}
		}
	}
	return out
}

// Tiles returns a copy of the grid indexed [row][col].
func (a *Arena) Tiles() [][]TileType {
	out := make([][]TileType, a.height)
	for y := range out {
		out[y] = make([]TileType, a.width)
		copy(out[y], a.tiles[y])
	}
	return out
}
