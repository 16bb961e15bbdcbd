// Package stats keeps the results of finished matches in SQLite.
package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/amalg/bomb-arena/internal/game"
	_ "modernc.org/sqlite"
)

// ErrNoStandings is returned when a result lists no players.
var ErrNoStandings = errors.New("result has no standings")

// Store wraps the SQLite database connection.
type Store struct {
	conn *sql.DB
}

// Result is the final outcome of one match.
type Result struct {
	MatchID    string
	Mode       game.BombMode
	Duration   time.Duration // Match clock at the end
	WinnerID   string        // Empty on a draw
	Draw       bool
	Standings  []game.Standing
	FinishedAt time.Time
}

// LeaderboardEntry is one player name's aggregate over all stored matches.
type LeaderboardEntry struct {
	Rank    int    `json:"rank"`
	Name    string `json:"name"`
	Matches int    `json:"matches"`
	Wins    int    `json:"wins"`
	Kills   int    `json:"kills"`
	Deaths  int    `json:"deaths"`
	Score   int    `json:"score"`
}

// Open opens (or creates) the results database.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// WAL lets the simulator write from several matches at once.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		winner_id TEXT NOT NULL DEFAULT '',
		draw INTEGER NOT NULL DEFAULT 0,
		finished_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS match_players (
		match_id TEXT NOT NULL REFERENCES matches(id),
		player_id TEXT NOT NULL,
		name TEXT NOT NULL,
		won INTEGER NOT NULL DEFAULT 0,
		alive INTEGER NOT NULL DEFAULT 0,
		lives INTEGER NOT NULL DEFAULT 0,
		score INTEGER NOT NULL DEFAULT 0,
		kills INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (match_id, player_id)
	);

	CREATE INDEX IF NOT EXISTS idx_match_players_name ON match_players(name);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// RecordMatch stores a finished match and its standings in one transaction.
func (s *Store) RecordMatch(ctx context.Context, r Result) error {
	if len(r.Standings) == 0 {
		return ErrNoStandings
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO matches (id, mode, duration_ms, winner_id, draw, finished_at) VALUES (?, ?, ?, ?, ?, ?)",
		r.MatchID, r.Mode.String(), r.Duration.Milliseconds(), r.WinnerID, r.Draw, r.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert match %s: %w", r.MatchID, err)
	}

	for _, st := range r.Standings {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO match_players (match_id, player_id, name, won, alive, lives, score, kills, deaths)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.MatchID, st.PlayerID, st.Name, st.PlayerID == r.WinnerID, st.Alive, st.Lives, st.Score, st.Kills, st.Deaths,
		)
		if err != nil {
			return fmt.Errorf("insert standing %s/%s: %w", r.MatchID, st.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// MatchCount returns the number of stored matches.
func (s *Store) MatchCount(ctx context.Context) (int, error) {
	var n int
	err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM matches").Scan(&n)
	return n, err
}

// Leaderboard returns player names ranked by wins, then kills, then score.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT name, COUNT(*), SUM(won), SUM(kills), SUM(deaths), SUM(score)
		FROM match_players
		GROUP BY name
		ORDER BY SUM(won) DESC, SUM(kills) DESC, SUM(score) DESC, name ASC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var result []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Name, &e.Matches, &e.Wins, &e.Kills, &e.Deaths, &e.Score); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		result = append(result, e)
	}
	return result, rows.Err()
}
