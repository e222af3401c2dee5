package nhlapi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/charleschow/nhl-companion/internal/core/nhl"
)

func (c *Client) ActiveTeams(ctx context.Context) ([]nhl.Team, error) {
	var teams []nhl.Team
	if err := c.getJSON(ctx, "/api/teams/active", nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// GamesByDate lists games for a YYYY-MM-DD date in an IANA zone. Empty
// arguments defer to the backend defaults (today, Eastern).
func (c *Client) GamesByDate(ctx context.Context, date, timezone string) ([]nhl.Game, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	if timezone != "" {
		q.Set("timezone", timezone)
	}
	var games []nhl.Game
	if err := c.getJSON(ctx, "/api/games", q, &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (c *Client) GameDetail(ctx context.Context, gameID int64) (nhl.GameDetail, error) {
	var d nhl.GameDetail
	if err := c.getJSON(ctx, fmt.Sprintf("/api/games/%d", gameID), nil, &d); err != nil {
		return nhl.GameDetail{}, err
	}
	return d, nil
}

func (c *Client) TeamPlayers(ctx context.Context, teamID int64) ([]nhl.Player, error) {
	var players []nhl.Player
	if err := c.getJSON(ctx, fmt.Sprintf("/api/teams/%d/players", teamID), nil, &players); err != nil {
		return nil, err
	}
	return players, nil
}

func (c *Client) Player(ctx context.Context, playerID int64) (nhl.Player, error) {
	var p nhl.Player
	if err := c.getJSON(ctx, fmt.Sprintf("/api/players/%d", playerID), nil, &p); err != nil {
		return nhl.Player{}, err
	}
	return p, nil
}
