package teams

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charleschow/nhl-companion/internal/core/nhl"
)

var (
	ErrUnknownTeam = errors.New("no team matches")
	ErrNoGameToday = errors.New("no game today for team")
)

// Schedule is the slice of the backend needed to find today's game.
// *nhlapi.Client satisfies it.
type Schedule interface {
	ActiveTeams(ctx context.Context) ([]nhl.Team, error)
	GamesByDate(ctx context.Context, date, timezone string) ([]nhl.Game, error)
}

// TodaysGame resolves query to a team and returns its game on the local
// date of now in tz.
func TodaysGame(ctx context.Context, src Schedule, query, tz string, now time.Time) (nhl.Team, nhl.Game, error) {
	if loc, err := time.LoadLocation(tz); err == nil {
		now = now.In(loc)
	}

	all, err := src.ActiveTeams(ctx)
	if err != nil {
		return nhl.Team{}, nhl.Game{}, fmt.Errorf("load teams: %w", err)
	}
	team, ok := Find(query, all)
	if !ok {
		return nhl.Team{}, nhl.Game{}, fmt.Errorf("%w %q", ErrUnknownTeam, query)
	}

	games, err := src.GamesByDate(ctx, now.Format("2006-01-02"), tz)
	if err != nil {
		return team, nhl.Game{}, fmt.Errorf("load games: %w", err)
	}
	_, game, ok := FindGame(query, all, games)
	if !ok {
		return team, nhl.Game{}, fmt.Errorf("%w %s", ErrNoGameToday, team.Name)
	}
	return team, game, nil
}
