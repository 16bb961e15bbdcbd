package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/amalg/bomb-arena/internal/ai"
	"github.com/amalg/bomb-arena/internal/game"
)

// step is the fixed simulation time step.
const step = time.Second / 60

// simConfig describes a batch of AI-only matches.
type simConfig struct {
	Matches  int
	Players  int
	Mode     game.BombMode
	Seed     int64
	Parallel int
	MaxTime  time.Duration // Match clock limit; 0 means none
	Game     game.Config
}

// outcome is the result of one simulated match.
type outcome struct {
	Index    int
	MatchID  string
	Winner   string
	Draw     bool
	TimedOut bool
	Duration time.Duration
	Ticks    uint64
}

// runBatch plays cfg.Matches matches, at most cfg.Parallel at a time.
func runBatch(ctx context.Context, cfg simConfig, sink game.EventSink, logger *zap.Logger) ([]outcome, error) {
	results := make([]outcome, cfg.Matches)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(cfg.Parallel, 1))
	for i := 0; i < cfg.Matches; i++ {
		eg.Go(func() error {
			out, err := simulate(ctx, i, cfg, sink, logger)
			if err != nil {
				return fmt.Errorf("match %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// simulate plays one match to the end or until the clock limit.
func simulate(ctx context.Context, index int, cfg simConfig, sink game.EventSink, logger *zap.Logger) (outcome, error) {
	config := cfg.Game
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	config.Seed = seed + int64(index)

	log := logger.With(zap.Int("match", index))
	engine, err := game.NewEngine(config, game.WithLogger(log), game.WithEventSink(sink))
	if err != nil {
		return outcome{}, err
	}
	if err := engine.InitializeMatch(cfg.Players, cfg.Mode); err != nil {
		return outcome{}, err
	}

	rng := rand.New(rand.NewSource(config.Seed))
	var controllers []*ai.Controller
	for i := 1; i <= cfg.Players; i++ {
		controllers = append(controllers, ai.NewController(fmt.Sprintf("p%d", i), engine, config, rng))
	}
	engine.OnTick(ai.NewDriver(controllers...).Update)

	if err := engine.StartMatch(); err != nil {
		return outcome{}, err
	}

	for {
		snap := engine.QueryState()
		if snap.Status.Terminal() {
			return outcome{
				Index:    index,
				MatchID:  snap.MatchID,
				Winner:   snap.Winner,
				Draw:     snap.Draw,
				Duration: snap.Now,
				Ticks:    snap.Ticks,
			}, nil
		}
		if cfg.MaxTime > 0 && snap.Now >= cfg.MaxTime {
			log.Info("match timed out", zap.Duration("at", snap.Now))
			return outcome{Index: index, MatchID: snap.MatchID, TimedOut: true, Duration: snap.Now, Ticks: snap.Ticks}, nil
		}
		if snap.Ticks%600 == 0 {
			if err := ctx.Err(); err != nil {
				return outcome{}, err
			}
		}
		engine.Tick(step)
	}
}

// printSummary writes a per-player win table.
func printSummary(w io.Writer, results []outcome, players int) {
	wins := make(map[string]int)
	draws, timeouts := 0, 0
	var total time.Duration
	for _, r := range results {
		switch {
		case r.TimedOut:
			timeouts++
		case r.Draw:
			draws++
		default:
			wins[r.Winner]++
		}
		total += r.Duration
	}

	ids := make([]string, 0, players)
	for i := 1; i <= players; i++ {
		ids = append(ids, fmt.Sprintf("p%d", i))
	}
	sort.SliceStable(ids, func(a, b int) bool { return wins[ids[a]] > wins[ids[b]] })

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tWINS\tRATE")
	for _, id := range ids {
		fmt.Fprintf(tw, "%s\t%d\t%.0f%%\n", id, wins[id], rate(wins[id], len(results)))
	}
	fmt.Fprintf(tw, "draw\t%d\t%.0f%%\n", draws, rate(draws, len(results)))
	fmt.Fprintf(tw, "timeout\t%d\t%.0f%%\n", timeouts, rate(timeouts, len(results)))
	tw.Flush()

	if len(results) > 0 {
		fmt.Fprintf(w, "\n%d matches, average length %s\n", len(results), (total / time.Duration(len(results))).Round(time.Second))
	}
}

func rate(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
