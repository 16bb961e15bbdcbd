package game

import (
	"errors"
	"fmt"
	"time"
)

// TileType represents the type of a cell on the arena grid.
type TileType int

const (
	Open         TileType = iota
	Wall                  // Indestructible
	Destructible          // Destroyed by bombs, becomes Open
	Spawn                 // Player spawn corner, passable
)

func (t TileType) String() string {
	switch t {
	case Open:
		return "open"
	case Wall:
		return "wall"
	case Destructible:
		return "destructible"
	case Spawn:
		return "spawn"
	default:
		return fmt.Sprintf("tile(%d)", int(t))
	}
}

// Direction represents a movement direction.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Directions lists the four cardinal directions in blast order.
var Directions = [4]Direction{DirUp, DirDown, DirLeft, DirRight}

// Offset returns the unit step for the direction.
func (d Direction) Offset() Position {
	switch d {
	case DirUp:
		return Position{X: 0, Y: -1}
	case DirDown:
		return Position{X: 0, Y: 1}
	case DirLeft:
		return Position{X: -1, Y: 0}
	case DirRight:
		return Position{X: 1, Y: 0}
	}
	return Position{}
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	}
	return fmt.Sprintf("dir(%d)", int(d))
}

// ActionType represents the type of player action.
type ActionType int

const (
	ActionMove ActionType = iota
	ActionPlaceBomb
)

// Action represents a player's input action queued for the next tick.
type Action struct {
	PlayerID string
	Type     ActionType
	Dir      Direction // Only relevant for ActionMove
}

// Position represents a coordinate on the grid. X is the column, Y the row.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p shifted by o.
func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Chebyshev returns the king-move distance between two positions.
func (p Position) Chebyshev(o Position) int {
	return max(abs(p.X-o.X), abs(p.Y-o.Y))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// BombMode is the match-wide bomb inventory policy.
type BombMode int

const (
	ModeFinite    BombMode = iota // Each player starts with Config.StartBombs
	ModeUnlimited                 // Inventory never runs out
)

func (m BombMode) String() string {
	if m == ModeUnlimited {
		return "unlimited"
	}
	return "finite"
}

// ParseBombMode parses "finite" or "unlimited".
func ParseBombMode(s string) (BombMode, error) {
	switch s {
	case "finite", "":
		return ModeFinite, nil
	case "unlimited":
		return ModeUnlimited, nil
	}
	return ModeFinite, fmt.Errorf("%w: unknown bomb mode %q", ErrInvalidConfig, s)
}

// Player represents a participant in the match. Eliminated players stay in the
// registry for end-of-match statistics.
type Player struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Slot        int           `json:"slot"` // Spawn corner / color index (0-3)
	Pos         Position      `json:"pos"`
	Spawn       Position      `json:"spawn"`
	Lives       int           `json:"lives"`
	Alive       bool          `json:"alive"`
	Bombs       int           `json:"bombs"` // Remaining inventory, ignored when Unlimited
	Unlimited   bool          `json:"unlimited"`
	ActiveBombs int           `json:"active_bombs"`
	BombPower   int           `json:"bomb_power"`
	Speed       int           `json:"speed"`
	Score       int           `json:"score"`
	Kills       int           `json:"kills"` // Lives taken from other players
	Deaths      int           `json:"deaths"`
	MoveReadyAt time.Duration `json:"move_ready_at"` // Match clock time of the next allowed move

	// Respawning players are off the board until RespawnAt.
	Respawning bool          `json:"respawning"`
	RespawnAt  time.Duration `json:"respawn_at"`

	held    Direction
	holding bool
}

// OnBoard reports whether the player occupies a tile.
func (p *Player) OnBoard() bool {
	return p.Alive && !p.Respawning
}

// HasBomb reports whether the player may place another bomb.
func (p *Player) HasBomb() bool {
	return p.Unlimited || p.Bombs > 0
}

// Bomb represents an active bomb on the grid.
type Bomb struct {
	ID       string        `json:"id"`
	OwnerID  string        `json:"owner_id"`
	Pos      Position      `json:"pos"`
	Power    int           `json:"power"`
	PlacedAt time.Duration `json:"placed_at"`
	FuseAt   time.Duration `json:"fuse_at"`
	Exploded bool          `json:"exploded"`
}

// FuseRemaining returns the fuse time left at the given match time.
func (b *Bomb) FuseRemaining(now time.Duration) time.Duration {
	return max(b.FuseAt-now, 0)
}

// PowerUpType identifies a collectible effect.
type PowerUpType int

const (
	PowerBombCount PowerUpType = iota
	PowerBombPower
	PowerSpeed
	PowerLife
)

func (t PowerUpType) String() string {
	switch t {
	case PowerBombCount:
		return "bomb_count"
	case PowerBombPower:
		return "bomb_power"
	case PowerSpeed:
		return "speed"
	case PowerLife:
		return "life"
	}
	return fmt.Sprintf("powerup(%d)", int(t))
}

// PowerUp is a collectible lying on the grid.
type PowerUp struct {
	ID        string        `json:"id"`
	Pos       Position      `json:"pos"`
	Type      PowerUpType   `json:"type"`
	Collected bool          `json:"collected"`
	SpawnedAt time.Duration `json:"spawned_at"`
}

// ExplosionEffect marks one blast cell for rendering until it expires.
// It never affects game state.
type ExplosionEffect struct {
	Pos       Position      `json:"pos"`
	Center    bool          `json:"center"`
	Dir       Direction     `json:"dir"`
	Terminal  bool          `json:"terminal"` // Last segment of its arm
	ExpiresAt time.Duration `json:"expires_at"`
}

// Standing is one player's final line in a match result.
type Standing struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Alive    bool   `json:"alive"`
	Lives    int    `json:"lives"`
	Score    int    `json:"score"`
	Kills    int    `json:"kills"`
	Deaths   int    `json:"deaths"`
}

var (
	// ErrInvalidConfig is returned when a Config or match parameter is unusable.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidTransition is returned for a state change the current status forbids.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// OutOfBoundsError is the panic value for tile queries outside the grid.
// It signals a caller bug and is never recovered by the engine.
type OutOfBoundsError struct {
	Pos           Position
	Width, Height int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("position (%d,%d) out of bounds %dx%d", e.Pos.X, e.Pos.Y, e.Width, e.Height)
}
