package display

import (
	"io"
	"sync"

	"github.com/charleschow/nhl-companion/internal/core/state/watch"
	"github.com/charleschow/nhl-companion/internal/events"
)

// Observer prints a scoreboard for every bus event that changes what a
// viewer would see. Identical consecutive snapshots are suppressed.
type Observer struct {
	w      io.Writer
	gameID int64 // 0 = all games

	mu   sync.Mutex
	last map[int64]fingerprint
}

type fingerprint struct {
	status     watch.Status
	home, away int
	period     int
	clock      string
	watermark  int64
	newMajors  int
	players    int
	scoreFlag  watch.ScoreSide
	lastError  string
}

func NewObserver(w io.Writer, gameID int64) *Observer {
	return &Observer{w: w, gameID: gameID, last: make(map[int64]fingerprint)}
}

// Attach subscribes the observer to snapshot and stop events.
func (o *Observer) Attach(bus *events.Bus) {
	bus.Subscribe(events.EventSnapshot, o.onSnapshot)
	bus.Subscribe(events.EventStopped, o.onStopped)
}

func (o *Observer) onSnapshot(e events.Event) error {
	v, ok := e.Payload.(watch.View)
	if !ok || (o.gameID != 0 && v.GameID != o.gameID) {
		return nil
	}

	fp := fingerprintOf(v)
	o.mu.Lock()
	prev, seen := o.last[v.GameID]
	o.last[v.GameID] = fp
	o.mu.Unlock()
	if seen && prev == fp {
		return nil
	}

	label := "UPDATE"
	if v.ScoreChange != watch.ScoreNone && prev.scoreFlag == watch.ScoreNone {
		label = "SCORE"
	}
	PrintScoreboard(o.w, v, label)
	return nil
}

func (o *Observer) onStopped(e events.Event) error {
	if o.gameID != 0 && e.GameID != o.gameID {
		return nil
	}
	o.mu.Lock()
	delete(o.last, e.GameID)
	o.mu.Unlock()

	reason := ""
	if s, ok := e.Payload.(events.StoppedEvent); ok {
		reason = s.Reason
	}
	io.WriteString(o.w, "\n[STOPPED] monitoring ended: "+reason+"\n")
	return nil
}

func fingerprintOf(v watch.View) fingerprint {
	fp := fingerprint{
		status:    v.Status,
		watermark: v.Watermark,
		newMajors: len(v.NewMajorIDs),
		players:   len(v.Players),
		scoreFlag: v.ScoreChange,
		lastError: v.LastError,
	}
	if g := v.Game; g != nil {
		fp.home, fp.away = g.HomeScore, g.AwayScore
		if g.Period != nil {
			fp.period = *g.Period
		}
		if g.Clock != nil {
			fp.clock = *g.Clock
		}
	}
	return fp
}
