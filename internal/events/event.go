package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope that flows through the event bus.
// Every session event (snapshot, score change, notification intent) is wrapped in one.
type Event struct {
	ID        string
	Type      EventType
	SessionID string
	GameID    int64
	Timestamp time.Time
	Payload   any
}

type EventType string

const (
	// EventSnapshot carries a fresh watch.View after every state change.
	EventSnapshot EventType = "snapshot"
	// EventScoreChange fires once per detected score delta.
	EventScoreChange EventType = "score_change"
	// EventMajorPlay fires once per newly arrived major play.
	EventMajorPlay EventType = "major_play"
	// EventNotification asks the notify dispatcher to alert the user.
	EventNotification EventType = "notification"
	EventCycleError   EventType = "cycle_error"
	EventStopped      EventType = "session_stopped"
)

// AllTypes lists every event type, in publication order of a typical cycle.
var AllTypes = []EventType{
	EventScoreChange,
	EventMajorPlay,
	EventNotification,
	EventCycleError,
	EventSnapshot,
	EventStopped,
}

func New(t EventType, sessionID string, gameID int64, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		SessionID: sessionID,
		GameID:    gameID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}
