package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/amalg/bomb-arena/internal/ai"
	"github.com/amalg/bomb-arena/internal/game"
	"github.com/amalg/bomb-arena/internal/stats"
	"github.com/amalg/bomb-arena/internal/telemetry"
	"github.com/amalg/bomb-arena/internal/ui"
)

const humanID = "p1"

func main() {
	name := flag.String("name", "Player", "Your player name")
	players := flag.Int("players", 2, "Number of players including you (2-4)")
	mode := flag.String("mode", "finite", "Bomb mode: finite or unlimited")
	width := flag.Int("width", 15, "Board width (odd number)")
	height := flag.Int("height", 13, "Board height (odd number)")
	seed := flag.Int64("seed", 0, "Random seed (0: time based)")
	logFile := flag.String("log", "", "Log file path (default: discard logs)")
	dbPath := flag.String("db", "", "SQLite results database (default: don't record)")
	journalPath := flag.String("journal", "", "Event journal file (default: none)")
	chain := flag.Bool("chain", false, "Bombs caught in a blast explode too")
	respawnDelay := flag.Duration("respawn-delay", 0, "Time off the board after losing a life")
	flag.Parse()

	if err := run(*name, *players, *mode, *width, *height, *seed, *logFile, *dbPath, *journalPath, *chain, *respawnDelay); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(name string, players int, modeName string, width, height int, seed int64,
	logFile, dbPath, journalPath string, chain bool, respawnDelay time.Duration) error {
	// Ensure odd dimensions for proper wall grid
	if width%2 == 0 {
		width++
	}
	if height%2 == 0 {
		height++
	}

	mode, err := game.ParseBombMode(modeName)
	if err != nil {
		return err
	}

	// The TUI owns the terminal: logs go to a file or nowhere.
	logger, err := newLogger(logFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	config := game.DefaultConfig()
	config.Width = width
	config.Height = height
	config.Seed = seed
	config.ChainReactions = chain
	config.RespawnDelay = respawnDelay
	config.LocalPlayer = humanID

	var sinks game.MultiSink
	if dbPath != "" {
		store, err := stats.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		sinks = append(sinks, stats.NewRecorder(store, logger))
	}
	if journalPath != "" {
		f, err := os.OpenFile(journalPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer f.Close()
		journal := telemetry.NewJournal(f, logger)
		defer journal.Flush()
		sinks = append(sinks, journal)
	}

	engine, err := game.NewEngine(config, game.WithLogger(logger), game.WithEventSink(sinks))
	if err != nil {
		return err
	}

	newMatch := func() error {
		if err := engine.InitializeMatch(players, mode); err != nil {
			return err
		}
		engine.SetPlayerName(humanID, name)
		return nil
	}
	if err := newMatch(); err != nil {
		return err
	}

	// Everyone but the human is computer controlled.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var controllers []*ai.Controller
	for i := 2; i <= players; i++ {
		controllers = append(controllers, ai.NewController(fmt.Sprintf("p%d", i), engine, config, rng))
	}
	driver := ai.NewDriver(controllers...)

	feed := make(chan game.Snapshot, 1)
	toUI := ui.Feed(feed)
	engine.OnTick(func(s game.Snapshot) {
		driver.Update(s)
		toUI(s)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	program := tea.NewProgram(ui.NewModel(engine, humanID, feed, newMatch), tea.WithAltScreen(), tea.WithContext(ctx))

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return engine.Run(ctx)
	})
	eg.Go(func() error {
		// Quitting the TUI ends the engine loop too.
		defer stop()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	logger.Info("session started",
		zap.String("name", name),
		zap.Int("players", players),
		zap.Stringer("mode", mode),
	)
	return eg.Wait()
}

func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return logger, nil
}
