package watch

import (
	"time"

	"github.com/charleschow/nhl-companion/internal/core/nhl"
)

type Status string

const (
	StatusInitializing Status = "initializing"
	StatusMonitoring   Status = "monitoring"
	StatusStopped      Status = "stopped"
)

type ScoreSide string

const (
	ScoreNone ScoreSide = ""
	ScoreHome ScoreSide = "home"
	ScoreAway ScoreSide = "away"
)

// View is an immutable snapshot of one watch session. Renderers receive
// copies; nothing in a View aliases session-owned memory.
type View struct {
	SessionID   string               `json:"sessionId"`
	GameID      int64                `json:"gameId"`
	Status      Status               `json:"status"`
	Monitoring  bool                 `json:"monitoring"`
	TestMode    bool                 `json:"testMode"`
	Game        *nhl.Game            `json:"game,omitempty"`
	Plays       []nhl.Play           `json:"plays"`
	MajorPlays  []nhl.Play           `json:"majorPlays"`
	NewMajorIDs []int64              `json:"newMajorPlayIds"`
	ScoreChange ScoreSide            `json:"scoreChange,omitempty"`
	Players     map[int64]nhl.Player `json:"players"`
	LastError   string               `json:"lastError,omitempty"`
	LoadFailed  bool                 `json:"loadFailed"`
	Watermark   int64                `json:"watermark"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	Config      Config               `json:"config"`
}

// IsNewMajor reports whether the play id is inside the highlight window.
func (v View) IsNewMajor(playID int64) bool {
	for _, id := range v.NewMajorIDs {
		if id == playID {
			return true
		}
	}
	return false
}

// PlayerFor returns the cached primary participant of a play, if resolved.
func (v View) PlayerFor(p nhl.Play) (nhl.Player, bool) {
	if p.PrimaryPlayerID == nil {
		return nhl.Player{}, false
	}
	pl, ok := v.Players[*p.PrimaryPlayerID]
	return pl, ok
}
