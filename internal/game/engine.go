package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Score awarded for match actions.
const (
	ScoreWall    = 10  // Destructible tile destroyed by the player's bomb
	ScoreHit     = 50  // Another player lost a life to the player's bomb
	ScoreKill    = 100 // Another player was eliminated by the player's bomb
	ScorePowerUp = 25
)

// Engine is the match state machine. It owns the arena and the entity
// registry for the lifetime of one match and resolves everything on a single
// logical thread: every entry point takes the engine lock, and events and
// tick callbacks are delivered after it is released.
type Engine struct {
	Config Config

	mu      sync.Mutex
	arena   *Arena
	reg     *Registry
	status  GameStatus
	mode    BombMode
	matchID string
	now     time.Duration // Match clock, advanced only while PLAYING
	ticks   uint64
	winner  string
	draw    bool

	nextPowerUpAt time.Duration

	actions chan Action
	rng     *rand.Rand
	logger  *zap.Logger
	sink    EventSink
	pending []Event
	onTick  func(Snapshot)

	// Events waiting for delivery, in emission order. Guarded by outMu,
	// which is never held while calling the sink.
	outMu      sync.Mutex
	outbox     []Event
	publishing bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithEventSink sets the receiver of match events.
func WithEventSink(sink EventSink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithRand sets the random source for grid generation and power-up spawning.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// NewEngine creates an engine in MENU with no match. Call InitializeMatch
// before StartMatch.
func NewEngine(config Config, opts ...Option) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		Config:  config,
		status:  StatusMenu,
		reg:     NewRegistry(),
		actions: make(chan Action, 256),
		logger:  zap.NewNop(),
		sink:    nopSink{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := config.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		e.rng = rand.New(rand.NewSource(seed))
	}
	if e.sink == nil {
		e.sink = nopSink{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	e.logger = e.logger.Named("engine")
	return e, nil
}

// OnTick sets a callback invoked after every Tick with a copy of the state.
// The callback runs without the engine lock held and may call back into the
// engine.
func (e *Engine) OnTick(fn func(Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTick = fn
}

// InitializeMatch builds a fresh grid, players and timers for playerCount
// players (2 to 4) and leaves the engine in MENU.
func (e *Engine) InitializeMatch(playerCount int, mode BombMode) error {
	spawns := SpawnPositions(e.Config.Width, e.Config.Height)
	if playerCount < 2 || playerCount > len(spawns) {
		return fmt.Errorf("%w: player count %d not in [2,%d]", ErrInvalidConfig, playerCount, len(spawns))
	}
	if mode != ModeFinite && mode != ModeUnlimited {
		return fmt.Errorf("%w: bomb mode %d", ErrInvalidConfig, int(mode))
	}

	e.mu.Lock()
	defer e.unlockAndFlush()

	e.initMatchLocked(NewArena(e.Config, e.rng), spawns[:playerCount], mode)
	return nil
}

// initMatchLocked resets all match state onto the given arena with one
// player per spawn.
func (e *Engine) initMatchLocked(arena *Arena, spawns []Position, mode BombMode) {
	e.arena = arena
	e.reg = NewRegistry()
	e.mode = mode
	e.matchID = uuid.NewString()
	e.status = StatusMenu
	e.now = 0
	e.ticks = 0
	e.winner = ""
	e.draw = false
	e.pending = nil

	for i, sp := range spawns {
		e.reg.AddPlayer(&Player{
			ID:        fmt.Sprintf("p%d", i+1),
			Name:      fmt.Sprintf("Player %d", i+1),
			Slot:      i,
			Pos:       sp,
			Spawn:     sp,
			Lives:     e.Config.StartLives,
			Alive:     true,
			Bombs:     e.Config.StartBombs,
			Unlimited: mode == ModeUnlimited,
			BombPower: e.Config.StartBombPower,
			Speed:     e.Config.StartSpeed,
		})
	}

	e.nextPowerUpAt = e.nextPowerUpInterval()

	// Drop input queued for the previous match.
drain:
	for {
		select {
		case <-e.actions:
		default:
			break drain
		}
	}

	e.logger.Info("match initialized", append(e.matchFields(),
		zap.Int("players", len(spawns)),
		zap.Stringer("mode", mode),
		zap.Int("width", arena.Width()),
		zap.Int("height", arena.Height()),
	)...)
}

// SetPlayerName renames a player. It reports false for unknown ids.
func (e *Engine) SetPlayerName(id, name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.reg.Player(id)
	if p == nil {
		return false
	}
	p.Name = name
	return true
}

// Run drives Tick at the configured tick rate until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(e.Config.TickRate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := min(now.Sub(last), e.Config.MaxFrameDelta)
			last = now
			e.Tick(dt)
		}
	}
}

// Tick advances the match clock by dt and runs one resolution pass:
// input, bombs, power-ups, win condition. It does nothing unless PLAYING.
func (e *Engine) Tick(dt time.Duration) {
	e.mu.Lock()

	if e.status == StatusPlaying {
		e.now += max(dt, 0)
		e.ticks++

		e.processInput()
		e.tickBombs()
		e.tickPowerUps()
		e.checkWinCondition()
	}

	var snap Snapshot
	onTick := e.onTick
	if onTick != nil {
		snap = e.snapshotLocked()
	}

	e.unlockAndFlush()

	if onTick != nil {
		onTick(snap)
	}
}

// EnqueueAction queues an action for the input phase of the next tick.
func (e *Engine) EnqueueAction(a Action) {
	select {
	case e.actions <- a:
	default:
		// Drop action if buffer is full (prevents blocking)
	}
}

// RequestMove moves a player one tile. It reports false when the request is
// not applicable: unknown or eliminated player, match not running, cooldown
// pending, or target blocked.
func (e *Engine) RequestMove(playerID string, dir Direction) bool {
	e.mu.Lock()
	defer e.unlockAndFlush()

	if e.status != StatusPlaying {
		return false
	}
	p := e.reg.Player(playerID)
	if p == nil {
		return false
	}
	return e.requestMoveLocked(p, dir)
}

// RequestBombPlacement places a bomb under a player. It reports false when
// the player cannot place one.
func (e *Engine) RequestBombPlacement(playerID string) bool {
	e.mu.Lock()
	defer e.unlockAndFlush()

	if e.status != StatusPlaying {
		return false
	}
	p := e.reg.Player(playerID)
	if p == nil {
		return false
	}
	return e.placeBomb(p)
}

// HoldDirection marks a direction as held. While held, the player moves
// again every time its cooldown elapses.
func (e *Engine) HoldDirection(playerID string, dir Direction) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.reg.Player(playerID)
	if p == nil || !p.Alive || !validDirection(dir) {
		return false
	}
	p.held = dir
	p.holding = true
	return true
}

// ReleaseDirection stops held movement.
func (e *Engine) ReleaseDirection(playerID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.reg.Player(playerID)
	if p == nil {
		return false
	}
	p.holding = false
	return true
}

// ForceExplode detonates an active bomb immediately.
func (e *Engine) ForceExplode(bombID string) bool {
	e.mu.Lock()
	defer e.unlockAndFlush()

	if e.status != StatusPlaying {
		return false
	}
	b := e.reg.Bomb(bombID)
	if b == nil {
		return false
	}
	e.explode(b)
	return true
}

// Status returns the current match phase.
func (e *Engine) Status() GameStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// processInput applies queued actions, then held directions.
func (e *Engine) processInput() {
	e.drainActions()

	for _, p := range e.reg.Players() {
		if p.holding && p.OnBoard() && e.now >= p.MoveReadyAt {
			e.tryMove(p, p.held)
		}
	}
}

// drainActions processes all queued player actions.
func (e *Engine) drainActions() {
	for {
		select {
		case a := <-e.actions:
			p := e.reg.Player(a.PlayerID)
			if p == nil {
				continue
			}
			switch a.Type {
			case ActionMove:
				e.requestMoveLocked(p, a.Dir)
			case ActionPlaceBomb:
				e.placeBomb(p)
			}
		default:
			return
		}
	}
}

func (e *Engine) emit(ev Event) {
	ev.MatchID = e.matchID
	ev.At = e.now
	e.pending = append(e.pending, ev)
}

// unlockAndFlush releases the engine lock and publishes the events emitted
// while it was held.
func (e *Engine) unlockAndFlush() {
	events := e.pending
	e.pending = nil
	if len(events) == 0 {
		e.mu.Unlock()
		return
	}

	// Queue before unlocking so batches keep lock order.
	e.outMu.Lock()
	e.outbox = append(e.outbox, events...)
	e.outMu.Unlock()
	e.mu.Unlock()

	e.publish()
}

// publish delivers queued events. One goroutine delivers at a time; a caller
// that finds delivery in progress, including a sink calling back into the
// engine, leaves its events to that goroutine.
func (e *Engine) publish() {
	e.outMu.Lock()
	if e.publishing {
		e.outMu.Unlock()
		return
	}
	e.publishing = true

	for len(e.outbox) > 0 {
		batch := e.outbox
		e.outbox = nil
		e.outMu.Unlock()
		for _, ev := range batch {
			e.sink.Publish(ev)
		}
		e.outMu.Lock()
	}

	e.publishing = false
	e.outMu.Unlock()
}

func (e *Engine) matchFields() []zap.Field {
	return []zap.Field{
		zap.String("match_id", e.matchID),
		zap.Duration("at", e.now),
	}
}
