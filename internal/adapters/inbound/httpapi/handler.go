package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/charleschow/nhl-companion/internal/core/live"
	"github.com/charleschow/nhl-companion/internal/core/nhl"
	"github.com/charleschow/nhl-companion/internal/core/state/watch"
	"github.com/charleschow/nhl-companion/internal/telemetry"
)

// Catalog is the read side of the NHL backend. *nhlapi.Client satisfies it.
type Catalog interface {
	ActiveTeams(ctx context.Context) ([]nhl.Team, error)
	GamesByDate(ctx context.Context, date, timezone string) ([]nhl.Game, error)
	TeamPlayers(ctx context.Context, teamID int64) ([]nhl.Player, error)
}

// Preferences is the timezone store. *prefstore.Store satisfies it.
type Preferences interface {
	Timezone(ctx context.Context) (string, bool, error)
	SetTimezone(ctx context.Context, tz string) error
}

type Deps struct {
	Catalog      Catalog
	Sessions     *live.Manager
	Prefs        Preferences // optional
	Exporter     *telemetry.Exporter
	WS           http.Handler // optional fanout endpoint
	DefaultWatch watch.Config
	DefaultTZ    string
	Now          func() time.Time
}

// Handler serves the companion's JSON API.
//
// Routes:
//
//	GET    /health
//	GET    /metrics
//	GET    /api/overview?date=&timezone=
//	GET    /api/teams/{teamId}
//	GET    /api/live
//	POST   /api/live/{gameId}
//	GET    /api/live/{gameId}
//	DELETE /api/live/{gameId}
//	POST   /api/live/{gameId}/retry
//	GET    /api/preferences/timezone
//	PUT    /api/preferences/timezone
//	GET    /ws?game=
type Handler struct {
	deps Deps
}

func NewHandler(deps Deps) *Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.DefaultTZ == "" {
		deps.DefaultTZ = "America/New_York"
	}
	deps.DefaultWatch = deps.DefaultWatch.WithDefaults()
	return &Handler{deps: deps}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	route := func(method, pattern string, fn http.HandlerFunc) {
		r.Method(method, pattern, h.deps.Exporter.WrapHandler(pattern, fn))
	}

	route(http.MethodGet, "/health", h.health)
	if h.deps.Exporter != nil {
		r.Method(http.MethodGet, "/metrics", h.deps.Exporter.Handler())
	}

	route(http.MethodGet, "/api/overview", h.overview)
	route(http.MethodGet, "/api/teams/{teamId}", h.teamPage)

	route(http.MethodGet, "/api/live", h.listSessions)
	route(http.MethodPost, "/api/live/{gameId}", h.startSession)
	route(http.MethodGet, "/api/live/{gameId}", h.getSession)
	route(http.MethodDelete, "/api/live/{gameId}", h.stopSession)
	route(http.MethodPost, "/api/live/{gameId}/retry", h.retrySession)

	route(http.MethodGet, "/api/preferences/timezone", h.getTimezone)
	route(http.MethodPut, "/api/preferences/timezone", h.putTimezone)

	if h.deps.WS != nil {
		route(http.MethodGet, "/ws", h.deps.WS.ServeHTTP)
	}

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.deps.Sessions.Count(),
		"time":     h.deps.Now().UTC(),
	})
}
