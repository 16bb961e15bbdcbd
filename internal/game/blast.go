package game

// TileGrid is the read-only tile view blast computation needs. Both *Arena
// and Snapshot satisfy it.
type TileGrid interface {
	InBounds(pos Position) bool
	TileAt(pos Position) TileType
}

// BlastCell is one tile reached by an explosion.
type BlastCell struct {
	Pos      Position
	Center   bool
	Dir      Direction // Arm direction, meaningless for the center
	Terminal bool      // Last cell of its arm
	Breaks   bool      // Destructible tile; the arm stops here
}

// BlastCells computes the cross-shaped blast of a bomb with the given power
// without mutating anything. Each arm stops before a Wall or the grid edge and
// stops after the first Destructible tile.
func BlastCells(grid TileGrid, origin Position, power int) []BlastCell {
	cells := make([]BlastCell, 0, 1+4*power)
	cells = append(cells, BlastCell{Pos: origin, Center: true})

	for _, dir := range Directions {
		step := dir.Offset()
		arm := len(cells)
		pos := origin
		for dist := 1; dist <= power; dist++ {
			pos = pos.Add(step)
			if !grid.InBounds(pos) {
				break
			}
			tile := grid.TileAt(pos)
			if tile == Wall {
				break
			}
			cells = append(cells, BlastCell{Pos: pos, Dir: dir, Breaks: tile == Destructible})
			if tile == Destructible {
				break
			}
		}
		if len(cells) > arm {
			cells[len(cells)-1].Terminal = true
		}
	}

	return cells
}
