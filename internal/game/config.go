package game

import (
	"fmt"
	"time"
)

// Config holds the tunables of a match. Grid size, bomb mode and player count
// are chosen at InitializeMatch; everything else is fixed per Engine.
type Config struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	TickRate int `json:"tick_rate"` // Ticks per second for Run

	BombFuse          time.Duration `json:"bomb_fuse"`
	ExplosionDuration time.Duration `json:"explosion_duration"`
	MoveCooldown      time.Duration `json:"move_cooldown"`
	MaxFrameDelta     time.Duration `json:"max_frame_delta"` // Clamp for one Run step

	DestructibleDensity float64 `json:"destructible_density"` // 0.0 to 1.0
	SafeRadius          int     `json:"safe_radius"`          // Chebyshev radius kept clear around spawns

	StartLives     int `json:"start_lives"`
	StartBombs     int `json:"start_bombs"` // Finite mode only
	MaxBombs       int `json:"max_bombs"`   // Inventory cap reachable through power-ups
	StartBombPower int `json:"start_bomb_power"`
	StartSpeed     int `json:"start_speed"`

	PowerUpInterval time.Duration `json:"powerup_interval"`
	PowerUpVariance time.Duration `json:"powerup_variance"`
	MaxPowerUps     int           `json:"max_powerups"`
	PowerUpAttempts int           `json:"powerup_attempts"`

	RespawnDelay time.Duration `json:"respawn_delay"` // 0 respawns within the same tick

	// Behaviour switches. All default to the reference behaviour (off).
	BombsBlockMovement   bool `json:"bombs_block_movement"`
	ChainReactions       bool `json:"chain_reactions"`
	SpeedAffectsCooldown bool `json:"speed_affects_cooldown"`

	// LocalPlayer, when set, turns a match the local player did not win into
	// GAME_OVER instead of VICTORY.
	LocalPlayer string `json:"local_player,omitempty"`

	// Seed for grid generation and spawning. Zero picks a time-based seed.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		Width:               15,
		Height:              13,
		TickRate:            60,
		BombFuse:            3 * time.Second,
		ExplosionDuration:   500 * time.Millisecond,
		MoveCooldown:        150 * time.Millisecond,
		MaxFrameDelta:       250 * time.Millisecond,
		DestructibleDensity: 0.65,
		SafeRadius:          2,
		StartLives:          3,
		StartBombs:          3,
		MaxBombs:            15,
		StartBombPower:      2,
		StartSpeed:          1,
		PowerUpInterval:     5 * time.Second,
		PowerUpVariance:     3 * time.Second,
		MaxPowerUps:         5,
		PowerUpAttempts:     64,
	}
}

// Validate checks that the configuration can build a playable arena.
func (c Config) Validate() error {
	switch {
	case c.Width < 7 || c.Height < 7:
		return fmt.Errorf("%w: grid %dx%d smaller than 7x7", ErrInvalidConfig, c.Width, c.Height)
	case c.TickRate <= 0:
		return fmt.Errorf("%w: tick rate %d", ErrInvalidConfig, c.TickRate)
	case c.BombFuse <= 0:
		return fmt.Errorf("%w: bomb fuse %v", ErrInvalidConfig, c.BombFuse)
	case c.MoveCooldown < 0 || c.ExplosionDuration < 0 || c.RespawnDelay < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalidConfig)
	case c.DestructibleDensity < 0 || c.DestructibleDensity > 1:
		return fmt.Errorf("%w: destructible density %.2f", ErrInvalidConfig, c.DestructibleDensity)
	case c.StartLives <= 0:
		return fmt.Errorf("%w: start lives %d", ErrInvalidConfig, c.StartLives)
	case c.StartBombs < 0 || c.MaxBombs < c.StartBombs:
		return fmt.Errorf("%w: bombs %d (max %d)", ErrInvalidConfig, c.StartBombs, c.MaxBombs)
	case c.StartBombPower < 1 || c.StartSpeed < 1:
		return fmt.Errorf("%w: bomb power %d, speed %d", ErrInvalidConfig, c.StartBombPower, c.StartSpeed)
	case c.PowerUpVariance < 0 || c.PowerUpVariance >= c.PowerUpInterval:
		return fmt.Errorf("%w: power-up interval %v±%v", ErrInvalidConfig, c.PowerUpInterval, c.PowerUpVariance)
	case c.MaxPowerUps < 0 || c.PowerUpAttempts < 1:
		return fmt.Errorf("%w: power-up cap %d, attempts %d", ErrInvalidConfig, c.MaxPowerUps, c.PowerUpAttempts)
	}
	return nil
}

// CooldownFor returns the delay between moves for a player with the given
// speed. Speed only shortens it when SpeedAffectsCooldown is enabled.
func (c Config) CooldownFor(speed int) time.Duration {
	if c.SpeedAffectsCooldown && speed > 1 {
		return c.MoveCooldown / time.Duration(speed)
	}
	return c.MoveCooldown
}

// SpawnPositions returns the corner spawn positions in slot order.
func SpawnPositions(width, height int) []Position {
	return []Position{
		{X: 1, Y: 1},                  // Top-left
		{X: width - 2, Y: height - 2}, // Bottom-right
		{X: width - 2, Y: 1},          // Top-right
		{X: 1, Y: height - 2},         // Bottom-left
	}
}
