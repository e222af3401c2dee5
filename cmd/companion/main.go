package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charleschow/nhl-companion/internal/adapters/inbound/httpapi"
	"github.com/charleschow/nhl-companion/internal/adapters/outbound/console"
	"github.com/charleschow/nhl-companion/internal/adapters/outbound/nhlapi"
	"github.com/charleschow/nhl-companion/internal/adapters/outbound/prefstore"
	"github.com/charleschow/nhl-companion/internal/adapters/outbound/rediscache"
	"github.com/charleschow/nhl-companion/internal/adapters/outbound/webhook"
	"github.com/charleschow/nhl-companion/internal/config"
	"github.com/charleschow/nhl-companion/internal/core/live"
	"github.com/charleschow/nhl-companion/internal/core/players"
	"github.com/charleschow/nhl-companion/internal/core/teams"
	"github.com/charleschow/nhl-companion/internal/events"
	"github.com/charleschow/nhl-companion/internal/fanout"
	"github.com/charleschow/nhl-companion/internal/notify"
	"github.com/charleschow/nhl-companion/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
	telemetry.Infof("Starting NHL companion")

	if err := cfg.DefaultWatch.WithDefaults().Validate(); err != nil {
		telemetry.Errorf("Default watch config: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := events.NewBus()

	// ── Preferences ─────────────────────────────────────────────
	prefs, err := prefstore.Open(cfg.PrefsDBPath)
	if err != nil {
		telemetry.Warnf("Preference store disabled: %v", err)
	}

	// ── NHL backend ─────────────────────────────────────────────
	api := nhlapi.NewClient(cfg.APIBaseURL, cfg.APIBearerToken,
		nhlapi.WithRateLimit(cfg.APIRateLimit, cfg.APIBurst))
	telemetry.Infof("NHL backend  base=%s  rate=%.1f/s", cfg.APIBaseURL, cfg.APIRateLimit)

	// ── Player cache ────────────────────────────────────────────
	var playerStore players.Store
	if cfg.RedisURL != "" {
		rdb, err := rediscache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			telemetry.Warnf("Redis player cache disabled: %v", err)
		} else {
			defer rdb.Close()
			playerStore = rediscache.NewPlayerCache(rdb, rediscache.PlayerTTL)
			telemetry.Infof("Redis player cache enabled")
		}
	}
	resolver := players.NewResolver(api, playerStore)

	// ── Notifications ───────────────────────────────────────────
	dispatcher := notify.NewDispatcher(
		console.LogSink{},
		console.NewBellSink(os.Stdout),
		webhook.NewNotifier(),
	)
	dispatcher.Attach(bus)

	// ── Sessions ────────────────────────────────────────────────
	manager := live.NewManager(api, resolver, bus, live.Options{})
	startWatchlist(ctx, cfg, api, manager)

	// ── HTTP server ─────────────────────────────────────────────
	exporter := telemetry.NewExporter()
	fan := fanout.NewServer(bus, manager)

	handler := httpapi.NewHandler(httpapi.Deps{
		Catalog:      api,
		Sessions:     manager,
		Prefs:        prefsOrNil(prefs),
		Exporter:     exporter,
		WS:           http.HandlerFunc(fan.HandleWS),
		DefaultWatch: cfg.DefaultWatch,
		DefaultTZ:    cfg.DefaultTimezone,
	})

	server := &http.Server{
		Addr:        cfg.ListenAddr,
		Handler:     handler.Routes(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Errorf("HTTP server: %v", err)
			os.Exit(1)
		}
	}()
	telemetry.Infof("API listening on %q", cfg.ListenAddr)

	// ── Shutdown ────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	telemetry.Infof("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	manager.StopAll()
	dispatcher.Wait()
	prefs.Close()

	telemetry.Infof("Shutdown complete  cycles=%d  errors=%d  scores=%d  plays=%d  notified=%d",
		telemetry.Metrics.PollCycles.Value(),
		telemetry.Metrics.PollErrors.Value(),
		telemetry.Metrics.ScoreChanges.Value(),
		telemetry.Metrics.NewMajorPlays.Value(),
		telemetry.Metrics.NotificationsSent.Value(),
	)
}

// prefsOrNil keeps a nil *Store from becoming a non-nil interface.
func prefsOrNil(s *prefstore.Store) httpapi.Preferences {
	if s == nil {
		return nil
	}
	return s
}

// startWatchlist begins the sessions listed in the watchlist file. Team
// entries are resolved against today's schedule in the default timezone.
func startWatchlist(ctx context.Context, cfg *config.Config, api *nhlapi.Client, manager *live.Manager) {
	if cfg.WatchlistPath == "" {
		return
	}
	wl, err := config.LoadWatchlist(cfg.WatchlistPath)
	if err != nil {
		telemetry.Warnf("Watchlist: %v", err)
		return
	}

	for _, entry := range wl.Games {
		gameID := entry.GameID
		if gameID == 0 {
			lookupCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			team, game, err := teams.TodaysGame(lookupCtx, api, entry.Team, cfg.DefaultTimezone, time.Now())
			cancel()
			if err != nil {
				telemetry.Warnf("Watchlist: team %q: %v", entry.Team, err)
				continue
			}
			telemetry.Infof("Watchlist: %q -> %s, game %d", entry.Team, team.Name, game.ID)
			gameID = game.ID
		}

		s, err := manager.Start(gameID, wl.ConfigFor(entry, cfg.DefaultWatch))
		if err != nil {
			telemetry.Warnf("Watchlist: game %d: %v", gameID, err)
			continue
		}
		telemetry.Infof("Watchlist: watching game %d  session=%s", gameID, s.ID)
	}
}
