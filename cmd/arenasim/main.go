package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/amalg/bomb-arena/internal/game"
	"github.com/amalg/bomb-arena/internal/stats"
	"github.com/amalg/bomb-arena/internal/telemetry"
)

func main() {
	matches := flag.Int("matches", 10, "Number of matches to play")
	players := flag.Int("players", 4, "AI players per match (2-4)")
	mode := flag.String("mode", "finite", "Bomb mode: finite or unlimited")
	seed := flag.Int64("seed", 1, "Base random seed, match i uses seed+i (0: time based)")
	parallel := flag.Int("parallel", 4, "Matches to run concurrently")
	maxTime := flag.Duration("max-time", 5*time.Minute, "Match clock limit (0: none)")
	dbPath := flag.String("db", "", "SQLite results database (default: don't record)")
	journalPath := flag.String("journal", "", "Event journal file (default: none)")
	logFile := flag.String("log", "", "Log file path (default: stderr, warnings only)")
	flag.Parse()

	bombMode, err := game.ParseBombMode(*mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg := simConfig{
		Matches:  *matches,
		Players:  *players,
		Mode:     bombMode,
		Seed:     *seed,
		Parallel: *parallel,
		MaxTime:  *maxTime,
		Game:     game.DefaultConfig(),
	}
	if err := run(cfg, *dbPath, *journalPath, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg simConfig, dbPath, journalPath, logFile string) error {
	logger, err := newLogger(logFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var sinks game.MultiSink
	var store *stats.Store
	if dbPath != "" {
		store, err = stats.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		sinks = append(sinks, stats.NewRecorder(store, logger))
	}
	var journal *telemetry.Journal
	if journalPath != "" {
		f, err := os.Create(journalPath)
		if err != nil {
			return fmt.Errorf("create journal: %w", err)
		}
		defer f.Close()
		journal = telemetry.NewJournal(f, logger)
		sinks = append(sinks, journal)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	results, err := runBatch(ctx, cfg, sinks, logger)
	if err != nil {
		return err
	}
	logger.Info("batch finished",
		zap.Int("matches", len(results)),
		zap.Duration("elapsed", time.Since(start)),
	)

	printSummary(os.Stdout, results, cfg.Players)

	if journal != nil {
		if err := journal.Flush(); err != nil {
			return err
		}
		if n := journal.Failed(); n > 0 {
			fmt.Printf("\n%d events could not be journaled\n", n)
		}
	}

	if store != nil {
		board, err := store.Leaderboard(ctx, 5)
		if err != nil {
			return err
		}
		fmt.Println("\nAll-time leaderboard:")
		for _, e := range board {
			fmt.Printf("  %d. %-10s %3d wins %4d kills %3d matches\n", e.Rank, e.Name, e.Wins, e.Kills, e.Matches)
		}
	}
	return nil
}

func newLogger(path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if path == "" {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	} else {
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
