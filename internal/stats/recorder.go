package stats

import (
	"context"
	"time"

	"github.com/amalg/bomb-arena/internal/game"
	"go.uber.org/zap"
)

// Recorder is a game.EventSink that stores every finished match. Other
// events are ignored.
type Recorder struct {
	store   *Store
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewRecorder creates a recorder writing to store.
func NewRecorder(store *Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		store:   store,
		logger:  logger.Named("stats"),
		timeout: 5 * time.Second,
		now:     time.Now,
	}
}

// Publish implements game.EventSink.
func (r *Recorder) Publish(ev game.Event) {
	if ev.Type != game.EventMatchEnded {
		return
	}

	result := Result{
		MatchID:    ev.MatchID,
		Mode:       ev.Mode,
		Duration:   ev.At,
		WinnerID:   ev.WinnerID,
		Draw:       ev.Draw,
		Standings:  ev.Standings,
		FinishedAt: r.now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.store.RecordMatch(ctx, result); err != nil {
		r.logger.Error("failed to record match",
			zap.String("match_id", ev.MatchID),
			zap.Error(err),
		)
		return
	}
	r.logger.Info("match recorded",
		zap.String("match_id", ev.MatchID),
		zap.String("winner", ev.WinnerID),
		zap.Bool("draw", ev.Draw),
	)
}
