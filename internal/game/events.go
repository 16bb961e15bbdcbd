package game

//go:generate go tool mockgen -destination=./mocks/events_mock.go -package=mocks . EventSink

import (
	"fmt"
	"time"
)

// EventType identifies something that happened during a match.
type EventType int

const (
	EventMatchStarted EventType = iota
	EventMatchPaused
	EventMatchResumed
	EventMatchEnded
	EventBombPlaced
	EventBombExploded
	EventWallDestroyed
	EventPlayerDamaged
	EventPlayerRespawned
	EventPlayerEliminated
	EventPowerUpSpawned
	EventPowerUpCollected
)

var eventNames = map[EventType]string{
	EventMatchStarted:     "match_started",
	EventMatchPaused:      "match_paused",
	EventMatchResumed:     "match_resumed",
	EventMatchEnded:       "match_ended",
	EventBombPlaced:       "bomb_placed",
	EventBombExploded:     "bomb_exploded",
	EventWallDestroyed:    "wall_destroyed",
	EventPlayerDamaged:    "player_damaged",
	EventPlayerRespawned:  "player_respawned",
	EventPlayerEliminated: "player_eliminated",
	EventPowerUpSpawned:   "powerup_spawned",
	EventPowerUpCollected: "powerup_collected",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(t))
}

// Event is published to the EventSink. Only the fields relevant to Type are set.
type Event struct {
	Type     EventType
	MatchID  string
	At       time.Duration // Match clock
	PlayerID string        // Subject player (damaged, eliminated, collector, bomb owner)
	SourceID string        // Owner of the bomb that caused damage
	BombID   string
	Pos      Position
	PowerUp  PowerUpType
	Mode     BombMode // MatchStarted and MatchEnded

	// MatchEnded only.
	WinnerID  string
	Draw      bool
	Standings []Standing
}

// EventSink receives match events. Publish is called outside the engine lock,
// by one goroutine at a time and in emission order. A sink may call back into
// the engine; events raised by such a call are published after the current
// Publish returns. A slow sink delays only the caller that is delivering.
type EventSink interface {
	Publish(Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(Event)

// Publish calls f(ev).
func (f SinkFunc) Publish(ev Event) { f(ev) }

// MultiSink publishes every event to each sink in order.
type MultiSink []EventSink

// Publish forwards ev to every sink.
func (m MultiSink) Publish(ev Event) {
	for _, s := range m {
		s.Publish(ev)
	}
}

type nopSink struct{}

func (nopSink) Publish(Event) {}
