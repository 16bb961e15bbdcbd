package game

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func withPowerUps(max int) func(*Config) {
	return func(c *Config) {
		c.MaxPowerUps = max
		c.PowerUpVariance = 0
	}
}

func TestPowerUpSchedule(t *testing.T) {
	engine := newTestEngine(t, 2, ModeFinite, withPowerUps(5))

	engine.Tick(4999 * time.Millisecond)
	if n := len(engine.reg.PowerUps()); n != 0 {
		t.Fatalf("power-up spawned early: %d", n)
	}
	engine.Tick(time.Millisecond)
	if n := len(engine.reg.PowerUps()); n != 1 {
		t.Fatalf("expected 1 power-up at 5s, got %d", n)
	}

	pu := engine.reg.PowerUps()[0]
	if engine.arena.TileAt(pu.Pos) != Open {
		t.Errorf("power-up placed on %s tile", engine.arena.TileAt(pu.Pos))
	}
	if engine.reg.PlayerAt(pu.Pos, nil) != nil {
		t.Error("power-up placed under a player")
	}
	if pu.SpawnedAt != 5*time.Second {
		t.Errorf("SpawnedAt=%v", pu.SpawnedAt)
	}

	engine.Tick(5 * time.Second)
	if n := len(engine.reg.PowerUps()); n != 2 {
		t.Errorf("expected 2 power-ups at 10s, got %d", n)
	}
}

func TestPowerUpCap(t *testing.T) {
	engine := newTestEngine(t, 2, ModeFinite, withPowerUps(1))

	for i := 0; i < 5; i++ {
		engine.Tick(5 * time.Second)
	}
	if n := len(engine.reg.PowerUps()); n != 1 {
		t.Errorf("cap is 1, got %d power-ups", n)
	}
}

func TestPowerUpVariance(t *testing.T) {
	engine := newTestEngine(t, 2, ModeFinite)
	for i := 0; i < 200; i++ {
		d := engine.nextPowerUpInterval()
		if d < 2*time.Second || d > 8*time.Second {
			t.Fatalf("interval %v outside 5s±3s", d)
		}
	}
}

func TestPowerUpTypeUnlimited(t *testing.T) {
	engine := newTestEngine(t, 2, ModeUnlimited)
	seen := make(map[PowerUpType]int)
	for i := 0; i < 2000; i++ {
		seen[engine.pickPowerUpType()]++
	}
	if seen[PowerBombCount] != 0 {
		t.Errorf("unlimited mode spawned %d bomb-count power-ups", seen[PowerBombCount])
	}
	for _, pt := range []PowerUpType{PowerBombPower, PowerSpeed, PowerLife} {
		if seen[pt] == 0 {
			t.Errorf("%s never drawn", pt)
		}
	}
}

func TestPowerUpTypeFinite(t *testing.T) {
	engine := newTestEngine(t, 2, ModeFinite)
	seen := make(map[PowerUpType]int)
	for i := 0; i < 2000; i++ {
		seen[engine.pickPowerUpType()]++
	}
	if len(seen) != 4 {
		t.Errorf("expected all four types, got %v", seen)
	}
	// 40% vs 10%
	if seen[PowerBombCount] <= seen[PowerLife] {
		t.Errorf("weights not applied: %v", seen)
	}
}

func TestCollectPowerUp(t *testing.T) {
	cases := []struct {
		typ   PowerUpType
		check func(p *Player) bool
	}{
		{PowerBombCount, func(p *Player) bool { return p.Bombs == 4 }},
		{PowerBombPower, func(p *Player) bool { return p.BombPower == 3 }},
		{PowerSpeed, func(p *Player) bool { return p.Speed == 2 }},
		{PowerLife, func(p *Player) bool { return p.Lives == 4 }},
	}

	for _, tc := range cases {
		t.Run(tc.typ.String(), func(t *testing.T) {
			engine := newTestEngine(t, 2, ModeFinite)
			p := engine.reg.Player("p1")
			engine.reg.AddPowerUp(&PowerUp{ID: "pu", Pos: Position{X: 2, Y: 1}, Type: tc.typ})

			if !engine.RequestMove("p1", DirRight) {
				t.Fatal("move failed")
			}
			engine.Tick(time.Millisecond)

			if !tc.check(p) {
				t.Errorf("%s not applied: %+v", tc.typ, *p)
			}
			if p.Score != ScorePowerUp {
				t.Errorf("score=%d, want %d", p.Score, ScorePowerUp)
			}
			if len(engine.reg.PowerUps()) != 0 {
				t.Error("collected power-up should be removed")
			}
		})
	}
}

func TestBombCountCap(t *testing.T) {
	engine := newTestEngine(t, 2, ModeFinite)
	p := engine.reg.Player("p1")
	p.Bombs = engine.Config.MaxBombs

	engine.applyPowerUp(p, PowerBombCount)
	if p.Bombs != 15 {
		t.Errorf("bomb count should cap at 15, got %d", p.Bombs)
	}
}

func TestBlastSparesPowerUps(t *testing.T) {
	engine := newTestEngine(t, 2, ModeFinite)
	p := engine.reg.Player("p1")
	engine.reg.AddPowerUp(&PowerUp{ID: "pu", Pos: Position{X: 2, Y: 1}, Type: PowerLife})

	engine.placeBomb(p)
	p.Pos = Position{X: 5, Y: 5}
	engine.Tick(3 * time.Second)

	if engine.reg.PowerUpAt(Position{X: 2, Y: 1}) == nil {
		t.Error("explosion should not destroy power-ups")
	}
}

func TestPowerUpPlacementAbandoned(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	config := DefaultConfig()
	config.PowerUpVariance = 0
	engine, err := NewEngine(config, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatal(err)
	}

	arena, err := NewArenaFromLayout([]string{
		"#######",
		"#S+++S#",
		"#+++++#",
		"#+++++#",
		"#+++++#",
		"#S+++S#",
		"#######",
	})
	if err != nil {
		t.Fatal(err)
	}
	engine.initMatchLocked(arena, []Position{{X: 1, Y: 1}, {X: 5, Y: 5}}, ModeFinite)
	if err := engine.StartMatch(); err != nil {
		t.Fatal(err)
	}

	engine.Tick(5 * time.Second)

	if n := len(engine.reg.PowerUps()); n != 0 {
		t.Fatalf("no tile is eligible, got %d power-ups", n)
	}
	entries := logs.FilterMessage("power-up placement abandoned").All()
	if len(entries) != 1 {
		t.Fatalf("expected one abandoned-placement entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["attempts"] != int64(64) {
		t.Errorf("unexpected fields %v", entries[0].ContextMap())
	}

	// The schedule moves on after a failed cycle
	if engine.nextPowerUpAt != 10*time.Second {
		t.Errorf("next spawn at %v, want 10s", engine.nextPowerUpAt)
	}
}
