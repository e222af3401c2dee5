package fanout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charleschow/nhl-companion/internal/core/state/watch"
	"github.com/charleschow/nhl-companion/internal/events"
)

// Envelope is the wire format for events sent over the fanout WebSocket.
type Envelope struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	GameID    int64           `json:"gameId"`
	Timestamp time.Time       `json:"ts"`
	Payload   json.RawMessage `json:"payload"`
}

// MarshalEvent serializes an Event into a JSON-encoded Envelope.
func MarshalEvent(evt events.Event) ([]byte, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	env := Envelope{
		Type:      string(evt.Type),
		ID:        evt.ID,
		SessionID: evt.SessionID,
		GameID:    evt.GameID,
		Timestamp: evt.Timestamp,
		Payload:   payload,
	}
	return json.Marshal(env)
}

// UnmarshalEvent deserializes a JSON Envelope back into a typed Event.
func UnmarshalEvent(data []byte) (events.Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return events.Event{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	evt := events.Event{
		ID:        env.ID,
		Type:      events.EventType(env.Type),
		SessionID: env.SessionID,
		GameID:    env.GameID,
		Timestamp: env.Timestamp,
	}

	var err error
	switch evt.Type {
	case events.EventSnapshot:
		evt.Payload, err = decode[watch.View](env.Payload)
	case events.EventScoreChange:
		evt.Payload, err = decode[events.ScoreChangeEvent](env.Payload)
	case events.EventMajorPlay:
		evt.Payload, err = decode[events.MajorPlayEvent](env.Payload)
	case events.EventNotification:
		evt.Payload, err = decode[events.NotificationIntent](env.Payload)
	case events.EventCycleError:
		evt.Payload, err = decode[events.CycleErrorEvent](env.Payload)
	case events.EventStopped:
		evt.Payload, err = decode[events.StoppedEvent](env.Payload)
	default:
		return evt, fmt.Errorf("unknown event type: %s", env.Type)
	}
	if err != nil {
		return evt, fmt.Errorf("unmarshal %s: %w", env.Type, err)
	}
	return evt, nil
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}
