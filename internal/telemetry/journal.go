// Package telemetry writes match events to a msgpack journal for offline
// analysis.
package telemetry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/amalg/bomb-arena/internal/game"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// Record is the journal form of a game.Event.
type Record struct {
	Seq       uint64          `msgpack:"seq"`
	Type      string          `msgpack:"type"`
	MatchID   string          `msgpack:"match_id"`
	AtMS      int64           `msgpack:"at_ms"`
	PlayerID  string          `msgpack:"player_id,omitempty"`
	SourceID  string          `msgpack:"source_id,omitempty"`
	BombID    string          `msgpack:"bomb_id,omitempty"`
	X         int             `msgpack:"x"`
	Y         int             `msgpack:"y"`
	PowerUp   string          `msgpack:"powerup,omitempty"`
	Mode      string          `msgpack:"mode,omitempty"`
	WinnerID  string          `msgpack:"winner_id,omitempty"`
	Draw      bool            `msgpack:"draw,omitempty"`
	Standings []game.Standing `msgpack:"standings,omitempty"`
}

// NewRecord converts an event.
func NewRecord(seq uint64, ev game.Event) Record {
	r := Record{
		Seq:      seq,
		Type:     ev.Type.String(),
		MatchID:  ev.MatchID,
		AtMS:     ev.At.Milliseconds(),
		PlayerID: ev.PlayerID,
		SourceID: ev.SourceID,
		BombID:   ev.BombID,
		X:        ev.Pos.X,
		Y:        ev.Pos.Y,
	}
	switch ev.Type {
	case game.EventPowerUpSpawned, game.EventPowerUpCollected:
		r.PowerUp = ev.PowerUp.String()
	case game.EventMatchStarted:
		r.Mode = ev.Mode.String()
	case game.EventMatchEnded:
		r.Mode = ev.Mode.String()
		r.WinnerID = ev.WinnerID
		r.Draw = ev.Draw
		r.Standings = ev.Standings
	}
	return r
}

// Journal is a game.EventSink that appends one msgpack Record per event.
// Write failures are logged and counted; they never reach the engine.
type Journal struct {
	mu     sync.Mutex
	buf    *bufio.Writer
	enc    *msgpack.Encoder
	logger *zap.Logger
	seq    uint64
	failed int
}

// NewJournal creates a journal writing to w.
func NewJournal(w io.Writer, logger *zap.Logger) *Journal {
	if logger == nil {
		logger = zap.NewNop()
	}
	buf := bufio.NewWriter(w)
	return &Journal{
		buf:    buf,
		enc:    msgpack.NewEncoder(buf),
		logger: logger.Named("journal"),
	}
}

// Publish implements game.EventSink.
func (j *Journal) Publish(ev game.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.seq++
	if err := j.enc.Encode(NewRecord(j.seq, ev)); err != nil {
		j.failed++
		j.logger.Warn("journal write failed",
			zap.Uint64("seq", j.seq),
			zap.Stringer("event", ev.Type),
			zap.Error(err),
		)
		return
	}

	// Flush at match boundaries so a crash loses at most one match.
	if ev.Type == game.EventMatchEnded {
		j.flushLocked()
	}
}

// Failed returns the number of events that could not be written.
func (j *Journal) Failed() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.failed
}

// Flush writes buffered records to the underlying writer.
func (j *Journal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.flushLocked()
}

func (j *Journal) flushLocked() error {
	if err := j.buf.Flush(); err != nil {
		j.logger.Warn("journal flush failed", zap.Error(err))
		return fmt.Errorf("flush journal: %w", err)
	}
	return nil
}

// ReadAll decodes every record in a journal.
func ReadAll(r io.Reader) ([]Record, error) {
	dec := msgpack.NewDecoder(bufio.NewReader(r))
	var out []Record
	for {
		if _, err := dec.PeekCode(); errors.Is(err, io.EOF) {
			return out, nil
		}
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return out, fmt.Errorf("decode record %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
	}
}

// CountByType tallies records per event type.
func CountByType(records []Record) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Type]++
	}
	return counts
}
