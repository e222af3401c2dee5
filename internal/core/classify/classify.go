package classify

import (
	"strings"

	"github.com/charleschow/nhl-companion/internal/core/nhl"
)

var majorPlayTypes = []string{
	"goal",
	"penalty",
	"period-start",
	"period-end",
	"period-official",
	"game-end",
}

// IsMajorPlay reports whether a play type is a notable event: goals,
// penalties, period boundaries and the end of the game.
func IsMajorPlay(playType string) bool {
	for _, t := range majorPlayTypes {
		if strings.EqualFold(playType, t) {
			return true
		}
	}
	return false
}

// MajorPlays returns the major plays of a feed, newest first. The input
// slice is not modified.
func MajorPlays(plays []nhl.Play) []nhl.Play {
	var out []nhl.Play
	for i := len(plays) - 1; i >= 0; i-- {
		if IsMajorPlay(plays[i].Type) {
			out = append(out, plays[i])
		}
	}
	return out
}

// GameStatusOf maps a backend state code to a display status.
func GameStatusOf(state string) nhl.GameStatus {
	switch state {
	case nhl.StateLive, nhl.StateCritical:
		return nhl.StatusLive
	case nhl.StateFuture, nhl.StatePreGame:
		return nhl.StatusUpcoming
	case nhl.StateFinal, nhl.StateOff:
		return nhl.StatusCompleted
	default:
		return nhl.StatusNone
	}
}

// IsTerminal reports whether monitoring a game in this state can stop.
func IsTerminal(state string) bool {
	return GameStatusOf(state) == nhl.StatusCompleted
}

// CanWatch reports whether the watch affordance should be offered.
func CanWatch(status nhl.GameStatus) bool {
	return status == nhl.StatusLive || status == nhl.StatusUpcoming
}

// FindTeamGame returns the first game involving the team.
func FindTeamGame(teamID int64, games []nhl.Game) (nhl.Game, bool) {
	for _, g := range games {
		if g.InvolvesTeam(teamID) {
			return g, true
		}
	}
	return nhl.Game{}, false
}

// TeamGameStatus classifies the team's game in games, or none if it has
// no game.
func TeamGameStatus(teamID int64, games []nhl.Game) nhl.GameStatus {
	g, ok := FindTeamGame(teamID, games)
	if !ok {
		return nhl.StatusNone
	}
	return GameStatusOf(g.State)
}

// WithStatus annotates each team with its game from games.
func WithStatus(teams []nhl.Team, games []nhl.Game) []nhl.TeamWithStatus {
	out := make([]nhl.TeamWithStatus, 0, len(teams))
	for _, t := range teams {
		tw := nhl.TeamWithStatus{Team: t, GameStatus: nhl.StatusNone}
		if g, ok := FindTeamGame(t.ID, games); ok {
			g := g
			tw.Game = &g
			tw.GameStatus = GameStatusOf(g.State)
		}
		out = append(out, tw)
	}
	return out
}
