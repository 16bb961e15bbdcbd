package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/amalg/bomb-arena/internal/game"
	"github.com/amalg/bomb-arena/internal/telemetry"
)

func TestRunBatch(t *testing.T) {
	var buf bytes.Buffer
	journal := telemetry.NewJournal(&buf, zap.NewNop())

	cfg := simConfig{
		Matches:  3,
		Players:  2,
		Mode:     game.ModeUnlimited,
		Seed:     7,
		Parallel: 2,
		MaxTime:  30 * time.Second,
		Game:     game.DefaultConfig(),
	}
	results, err := runBatch(context.Background(), cfg, journal, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != cfg.Matches {
		t.Fatalf("expected %d results, got %d", cfg.Matches, len(results))
	}
	ids := make(map[string]bool)
	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
		if r.MatchID == "" || ids[r.MatchID] {
			t.Errorf("result %d: missing or duplicate match ID %q", i, r.MatchID)
		}
		ids[r.MatchID] = true
		if !r.TimedOut && !r.Draw && r.Winner == "" {
			t.Errorf("result %d finished without a winner or draw", i)
		}
		if r.Duration > cfg.MaxTime+step {
			t.Errorf("result %d ran past the limit: %v", i, r.Duration)
		}
	}

	if err := journal.Flush(); err != nil {
		t.Fatal(err)
	}
	records, err := telemetry.ReadAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n := telemetry.CountByType(records)[game.EventMatchStarted.String()]; n != cfg.Matches {
		t.Errorf("expected %d MatchStarted records, got %d", cfg.Matches, n)
	}
}

func TestSimulateDeterministic(t *testing.T) {
	cfg := simConfig{
		Players: 4,
		Mode:    game.ModeFinite,
		Seed:    99,
		MaxTime: 20 * time.Second,
		Game:    game.DefaultConfig(),
	}
	a, err := simulate(context.Background(), 3, cfg, nil, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	b, err := simulate(context.Background(), 3, cfg, nil, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if a.Winner != b.Winner || a.Draw != b.Draw || a.TimedOut != b.TimedOut || a.Ticks != b.Ticks {
		t.Errorf("same seed should replay the same match: %+v vs %+v", a, b)
	}
}

func TestSimulateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := simConfig{Players: 2, Mode: game.ModeFinite, Seed: 1, Game: game.DefaultConfig()}
	if _, err := simulate(ctx, 0, cfg, nil, zap.NewNop()); err == nil {
		t.Error("cancelled context should stop the match")
	}
}

func TestPrintSummary(t *testing.T) {
	results := []outcome{
		{Winner: "p2", Duration: 40 * time.Second},
		{Winner: "p2", Duration: 20 * time.Second},
		{Draw: true, Duration: 30 * time.Second},
		{TimedOut: true, Duration: 30 * time.Second},
	}
	var out bytes.Buffer
	printSummary(&out, results, 2)

	lines := strings.Split(out.String(), "\n")
	if !strings.HasPrefix(lines[1], "p2") || !strings.Contains(lines[1], "50%") {
		t.Errorf("p2 should lead with 50%%:\n%s", out.String())
	}
	for _, want := range []string{"draw", "timeout", "4 matches, average length 30s"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, out.String())
		}
	}
}
