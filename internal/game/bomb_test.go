package game

import (
	"testing"
	"time"
)

func TestPlaceBomb(t *testing.T) {
	engine := newTestEngine(t, 2, ModeFinite)
	p := engine.reg.Player("p1")

	if !engine.RequestBombPlacement("p1") {
		t.Fatal("first bomb should be placed")
	}
	if len(engine.reg.Bombs()) != 1 {
		t.Fatalf("expected 1 bomb, got %d", len(engine.reg.Bombs()))
	}
	if p.Bombs != 2 || p.ActiveBombs != 1 {
		t.Errorf("expected Bombs=2 ActiveBombs=1, got %d and %d", p.Bombs, p.ActiveBombs)
	}

	b := engine.reg.Bombs()[0]
	if b.Pos != p.Pos || b.Power != 2 || b.FuseAt != 3*time.Second || b.OwnerID != "p1" {
		t.Errorf("unexpected bomb: %+v", *b)
	}

	// Bombs do not stack on one tile
	if engine.RequestBombPlacement("p1") {
		t.Error("second bomb on the same tile should be rejected")
	}
	if p.Bombs != 2 {
		t.Errorf("rejected placement changed inventory: %d", p.Bombs)
	}

	engine.tryMove(p, DirRight)
	if !engine.RequestBombPlacement("p1") {
		t.Error("bomb on a new tile should be placed")
	}
	engine.tryMove(p, DirRight)
	engine.RequestBombPlacement("p1")
	engine.tryMove(p, DirDown)

	// Finite inventory is exhausted
	if p.Bombs != 0 || engine.RequestBombPlacement("p1") {
		t.Errorf("finite inventory should run out, bombs=%d", p.Bombs)
	}
}

func TestPlaceBombUnlimited(t *testing.T) {
	engine := newTestEngine(t, 2, ModeUnlimited)
	p := engine.reg.Player("p1")

	path := []Direction{DirRight, DirRight, DirRight, DirRight, DirDown, DirDown}
	for _, dir := range path {
		if !engine.placeBomb(p) {
			t.Fatalf("unlimited placement failed at %v", p.Pos)
		}
		engine.tryMove(p, dir)
	}
	if p.ActiveBombs != len(path) {
		t.Errorf("expected %d active bombs, got %d", len(path), p.ActiveBombs)
	}
}

func TestPlaceBombDeadPlayer(t *testing.T) {
	engine := newTestEngine(t, 2, ModeFinite)
	engine.reg.Player("p1").Alive = false

	if engine.RequestBombPlacement("p1") {
		t.Error("eliminated player should not place bombs")
	}
	if engine.RequestBombPlacement("nobody") {
		t.Error("unknown player should not place bombs")
	}
}

func TestExplosion(t *testing.T) {
	engine := newTestEngine(t, 2, ModeFinite)
	p := engine.reg.Player("p1")

	// Bomb at (1,1), power 2; move the owner out of range
	engine.RequestBombPlacement("p1")
	p.Pos = Position{X: 5, Y: 5}

	engine.Tick(2999 * time.Millisecond)
	if len(engine.reg.Bombs()) != 1 {
		t.Fatal("bomb exploded before its fuse ran out")
	}

	engine.Tick(time.Millisecond)
	if len(engine.reg.Bombs()) != 0 {
		t.Fatal("bomb should explode when its fuse runs out")
	}

	// Center + right arm (2,1),(3,1) + down arm (1,2),(1,3)
	if n := len(engine.reg.Effects()); n != 5 {
		t.Errorf("expected 5 effects, got %d", n)
	}
	if p.Lives != 3 || !p.Alive {
		t.Error("player should be unharmed after moving away from bomb")
	}
	if p.ActiveBombs != 0 {
		t.Errorf("owner should be notified, ActiveBombs=%d", p.ActiveBombs)
	}

	// Effects expire after ExplosionDuration
	engine.Tick(500 * time.Millisecond)
	if n := len(engine.reg.Effects()); n != 0 {
		t.Errorf("effects should expire, %d left", n)
	}
}

func TestPlayerDamage(t *testing.T) {
	engine := newTestEngine(t, 2, ModeFinite)
	p := engine.reg.Player("p1")

	// Player at (1,1), place bomb, DON'T move
	engine.RequestBombPlacement("p1")
	engine.Tick(3 * time.Second)

	if p.Lives != 2 || !p.Alive {
		t.Errorf("player on the bomb should lose one life, lives=%d alive=%v", p.Lives, p.Alive)
	}
	if p.Pos != p.Spawn {
		t.Errorf("player should respawn at %v, got %v", p.Spawn, p.Pos)
	}
	if p.Bombs != 2 || p.BombPower != 2 {
		t.Errorf("respawn must keep stats, bombs=%d power=%d", p.Bombs, p.BombPower)
	}
}

func TestBombScenarioTwoPlayers(t *testing.T) {
	config := DefaultConfig()
	config.Seed = 42
	config.MaxPowerUps = 0
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := engine.InitializeMatch(2, ModeFinite); err != nil {
		t.Fatalf("InitializeMatch: %v", err)
	}
	if err := engine.StartMatch(); err != nil {
		t.Fatalf("StartMatch: %v", err)
	}

	a := engine.reg.Player("p1")
	cells := BlastCells(engine.arena, a.Pos, a.BombPower)
	before := make(map[Position]TileType)
	for _, c := range cells {
		before[c.Pos] = engine.arena.TileAt(c.Pos)
	}

	var destroyed []Position
	engine.sink = SinkFunc(func(ev Event) {
		if ev.Type == EventWallDestroyed {
			destroyed = append(destroyed, ev.Pos)
		}
	})

	if !engine.RequestBombPlacement("p1") {
		t.Fatal("bomb placement failed")
	}
	engine.Tick(config.BombFuse)

	wantDestroyed := 0
	for pos, tile := range before {
		if engine.arena.TileAt(pos) == Destructible {
			t.Errorf("blast cell %v still destructible", pos)
		}
		if tile == Destructible {
			wantDestroyed++
		}
	}
	if len(destroyed) != wantDestroyed {
		t.Errorf("expected %d wall-destroyed events, got %d", wantDestroyed, len(destroyed))
	}

	if a.Lives != 2 {
		t.Errorf("A should lose exactly one life, lives=%d", a.Lives)
	}
	if a.Pos != a.Spawn {
		t.Errorf("A should respawn at its spawn %v, got %v", a.Spawn, a.Pos)
	}
	if b := engine.reg.Player("p2"); b.Lives != 3 {
		t.Errorf("B is out of range and should keep 3 lives, got %d", b.Lives)
	}
}

func TestDestructibleDestruction(t *testing.T) {
	engine := newTestEngine(t, 2, ModeFinite)
	p := engine.reg.Player("p1")
	p.BombPower = 3

	// Two destructibles in a row to the right of (1,1)
	engine.arena.tiles[1][3] = Destructible
	engine.arena.tiles[1][4] = Destructible

	engine.RequestBombPlacement("p1")
	p.Pos = Position{X: 5, Y: 5}
	engine.Tick(3 * time.Second)

	if engine.arena.tiles[1][3] != Open {
		t.Errorf("destructible at (3,1) should be destroyed, got %s", engine.arena.tiles[1][3])
	}
	if engine.arena.tiles[1][4] != Destructible {
		t.Errorf("blast must stop at the first destructible, (4,1) is %s", engine.arena.tiles[1][4])
	}
	if p.Score != ScoreWall {
		t.Errorf("owner should score %d for the wall, got %d", ScoreWall, p.Score)
	}
}

func TestNoDoubleDamage(t *testing.T) {
	engine := newTestEngine(t, 2, ModeFinite, func(c *Config) { c.StartLives = 5 })
	victim := engine.reg.Player("p2")
	victim.Pos = Position{X: 3, Y: 1}

	// Center of a power-4 blast; victim sits on the right arm
	engine.reg.AddBomb(&Bomb{ID: "b1", OwnerID: "p1", Pos: Position{X: 3, Y: 1}, Power: 4, FuseAt: time.Millisecond})
	engine.reg.Player("p1").ActiveBombs = 1
	engine.reg.Player("p1").Pos = Position{X: 9, Y: 9}

	engine.Tick(time.Millisecond)

	if victim.Lives != 4 {
		t.Errorf("one explosion should cost exactly one life, lives=%d", victim.Lives)
	}
	if owner := engine.reg.Player("p1"); owner.Kills != 1 || owner.Score != ScoreHit {
		t.Errorf("owner kills=%d score=%d", owner.Kills, owner.Score)
	}
}

func TestChainReaction(t *testing.T) {
	setup := func(chain bool) *Engine {
		engine := newTestEngine(t, 2, ModeFinite, func(c *Config) { c.ChainReactions = chain })
		p1, p2 := engine.reg.Player("p1"), engine.reg.Player("p2")

		engine.placeBomb(p1) // (1,1), fuse 3s
		engine.Tick(time.Second)
		p2.Pos = Position{X: 3, Y: 1}
		engine.placeBomb(p2) // (3,1), fuse at 4s, inside p1's blast

		p1.Pos = Position{X: 9, Y: 9}
		p2.Pos = Position{X: 11, Y: 9}
		engine.Tick(2 * time.Second)
		return engine
	}

	off := setup(false)
	if n := len(off.reg.Bombs()); n != 1 {
		t.Errorf("without chain reactions the second bomb should survive, %d bombs left", n)
	}

	on := setup(true)
	if n := len(on.reg.Bombs()); n != 0 {
		t.Errorf("with chain reactions both bombs should explode, %d bombs left", n)
	}
	if p2 := on.reg.Player("p2"); p2.ActiveBombs != 0 {
		t.Errorf("chained bomb owner should be notified, ActiveBombs=%d", p2.ActiveBombs)
	}
}

func TestForceExplode(t *testing.T) {
	engine := newTestEngine(t, 2, ModeFinite)
	p := engine.reg.Player("p1")
	engine.placeBomb(p)
	id := engine.reg.Bombs()[0].ID
	p.Pos = Position{X: 9, Y: 9}

	if !engine.ForceExplode(id) {
		t.Fatal("ForceExplode should detonate an active bomb")
	}
	if len(engine.reg.Bombs()) != 0 || p.ActiveBombs != 0 {
		t.Error("forced bomb should be resolved")
	}
	if engine.ForceExplode(id) {
		t.Error("ForceExplode on a resolved bomb should report false")
	}
}

func TestPauseFreezesFuse(t *testing.T) {
	engine := newTestEngine(t, 2, ModeFinite)
	p := engine.reg.Player("p1")
	engine.placeBomb(p)
	p.Pos = Position{X: 9, Y: 9}

	engine.Tick(time.Second)
	if err := engine.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	engine.Tick(10 * time.Second)
	if engine.now != time.Second {
		t.Errorf("paused clock advanced to %v", engine.now)
	}
	if len(engine.reg.Bombs()) != 1 {
		t.Fatal("bomb exploded while paused")
	}

	if err := engine.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	engine.Tick(1999 * time.Millisecond)
	if len(engine.reg.Bombs()) != 1 {
		t.Fatal("fuse should keep its remaining 2s after resume")
	}
	engine.Tick(time.Millisecond)
	if len(engine.reg.Bombs()) != 0 {
		t.Error("bomb should explode once the remaining fuse elapsed")
	}
}

func TestMoveBeforeExplosion(t *testing.T) {
	engine := newTestEngine(t, 2, ModeFinite)
	p := engine.reg.Player("p1")
	p.BombPower = 1

	engine.placeBomb(p) // (1,1), reaches (2,1) and (1,2)
	engine.tryMove(p, DirRight)
	engine.Tick(2990 * time.Millisecond)

	// Step out of range on the tick the fuse runs out
	engine.HoldDirection("p1", DirRight)
	engine.Tick(10 * time.Millisecond)

	if p.Pos != (Position{X: 3, Y: 1}) {
		t.Fatalf("expected move to (3,1), got %v", p.Pos)
	}
	if p.Lives != 3 {
		t.Errorf("movement resolves before the explosion; player lost a life")
	}
}
