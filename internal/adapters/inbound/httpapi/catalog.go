package httpapi

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/charleschow/nhl-companion/internal/core/classify"
	"github.com/charleschow/nhl-companion/internal/core/nhl"
)

const dateLayout = "2006-01-02"

// TeamPage is everything the team view renders in one response.
type TeamPage struct {
	Team    nhl.Team       `json:"team"`
	Players []nhl.Player   `json:"players"`
	Game    *nhl.Game      `json:"game,omitempty"`
	Status  nhl.GameStatus `json:"status"`
}

// timezone picks the query value, then the saved preference, then the default.
func (h *Handler) timezone(ctx context.Context, r *http.Request) string {
	if tz := r.URL.Query().Get("timezone"); tz != "" {
		return tz
	}
	if h.deps.Prefs != nil {
		if tz, _, err := h.deps.Prefs.Timezone(ctx); err == nil && tz != "" {
			return tz
		}
	}
	return h.deps.DefaultTZ
}

func (h *Handler) today(tz string) string {
	now := h.deps.Now()
	if loc, err := time.LoadLocation(tz); err == nil {
		now = now.In(loc)
	}
	return now.Format(dateLayout)
}

// fetchDay loads active teams and the day's games concurrently.
func (h *Handler) fetchDay(ctx context.Context, date, tz string) ([]nhl.Team, []nhl.Game, error) {
	var (
		teams []nhl.Team
		games []nhl.Game
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = h.deps.Catalog.ActiveTeams(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		games, err = h.deps.Catalog.GamesByDate(gctx, date, tz)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return teams, games, nil
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	tz := h.timezone(ctx, r)
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.today(tz)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		respondDetail(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	teams, games, err := h.fetchDay(ctx, date, tz)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, classify.WithStatus(teams, games))
}

func (h *Handler) teamPage(w http.ResponseWriter, r *http.Request) {
	teamID, ok := idParam(r, "teamId")
	if !ok {
		respondDetail(w, http.StatusBadRequest, "invalid team id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	tz := h.timezone(ctx, r)

	var roster []nhl.Player
	g, gctx := errgroup.WithContext(ctx)
	var (
		teams []nhl.Team
		games []nhl.Game
	)
	g.Go(func() error {
		var err error
		teams, games, err = h.fetchDay(gctx, h.today(tz), tz)
		return err
	})
	g.Go(func() error {
		var err error
		roster, err = h.deps.Catalog.TeamPlayers(gctx, teamID)
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(w, r, err)
		return
	}

	page := TeamPage{Players: roster, Status: classify.TeamGameStatus(teamID, games)}
	found := false
	for _, t := range teams {
		if t.ID == teamID {
			page.Team, found = t, true
			break
		}
	}
	if !found {
		respondDetail(w, http.StatusNotFound, "Team not found")
		return
	}
	if game, ok := classify.FindTeamGame(teamID, games); ok {
		page.Game = &game
	}
	if page.Players == nil {
		page.Players = []nhl.Player{}
	}
	respondJSON(w, http.StatusOK, page)
}
