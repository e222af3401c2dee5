package events

import (
	"github.com/charleschow/nhl-companion/internal/core/nhl"
	"github.com/charleschow/nhl-companion/internal/core/state/watch"
)

// ScoreChangeEvent is published when either side's score strictly increased.
type ScoreChangeEvent struct {
	Side      watch.ScoreSide `json:"side"`
	HomeScore int             `json:"homeScore"`
	AwayScore int             `json:"awayScore"`
}

// MajorPlayEvent is published once per major play beyond the watermark.
type MajorPlayEvent struct {
	Play        nhl.Play `json:"play"`
	Description string   `json:"description"`
}

// NotificationIntent is handed to the notify dispatcher. Config carries the
// session's sink toggles so the dispatcher needs no session lookup.
type NotificationIntent struct {
	Title  string       `json:"title"`
	Body   string       `json:"body"`
	PlayID int64        `json:"playId"`
	Config watch.Config `json:"-"`
}

// CycleErrorEvent reports a failed fetch. Initial is true while the session
// has never loaded a snapshot.
type CycleErrorEvent struct {
	Error   string `json:"error"`
	Initial bool   `json:"initial"`
}

type StoppedEvent struct {
	Reason string `json:"reason"`
}
