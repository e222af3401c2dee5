package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charleschow/nhl-companion/internal/adapters/outbound/console"
	"github.com/charleschow/nhl-companion/internal/adapters/outbound/nhlapi"
	"github.com/charleschow/nhl-companion/internal/adapters/outbound/webhook"
	"github.com/charleschow/nhl-companion/internal/config"
	"github.com/charleschow/nhl-companion/internal/core/display"
	"github.com/charleschow/nhl-companion/internal/core/live"
	"github.com/charleschow/nhl-companion/internal/core/players"
	"github.com/charleschow/nhl-companion/internal/core/state/watch"
	"github.com/charleschow/nhl-companion/internal/core/teams"
	"github.com/charleschow/nhl-companion/internal/events"
	"github.com/charleschow/nhl-companion/internal/fanout"
	"github.com/charleschow/nhl-companion/internal/notify"
	"github.com/charleschow/nhl-companion/internal/telemetry"
)

func main() {
	cfg := config.Load()

	gameID := flag.Int64("game", 0, "game id to watch")
	team := flag.String("team", "", "team name, city, nickname or abbreviation; watches today's game")
	freq := flag.Int("freq", cfg.DefaultWatch.PollingFrequency, "polling frequency in seconds (min 3)")
	audio := flag.Bool("audio", cfg.DefaultWatch.EnableAudio, "ring the terminal bell on new major plays")
	hook := flag.String("webhook", cfg.DefaultWatch.WebhookURL, "HTTPS webhook URL for notifications")
	test := flag.Bool("test", cfg.DefaultWatch.TestMode, "simulate game progress on top of fetched data")
	tz := flag.String("tz", cfg.DefaultTimezone, "timezone used to pick today's games")
	remote := flag.String("remote", "", "companion server host:port; attach to its stream instead of polling")
	logLevel := flag.String("log", "warn", "log level")
	flag.Parse()

	telemetry.Init(telemetry.ParseLogLevel(*logLevel))

	if *gameID == 0 && *team == "" && *remote == "" {
		fmt.Fprintln(os.Stderr, "usage: go run ./cmd/watch (-game <id> | -team <name>) [-freq 3] [-audio] [-webhook https://...] [-test] [-remote host:port]")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	api := nhlapi.NewClient(cfg.APIBaseURL, cfg.APIBearerToken,
		nhlapi.WithRateLimit(cfg.APIRateLimit, cfg.APIBurst))

	if *team != "" {
		lookupCtx, lookupCancel := context.WithTimeout(ctx, 15*time.Second)
		t, g, err := teams.TodaysGame(lookupCtx, api, *team, *tz, time.Now())
		lookupCancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", nhlapi.UserMessage(err))
			os.Exit(1)
		}
		fmt.Printf("%s: game %d at %s\n", display.FullTeamName(t), g.ID, display.FormatGameTime(g, *tz))
		*gameID = g.ID
	}

	bus := events.NewBus()
	display.NewObserver(os.Stdout, *gameID).Attach(bus)

	// ── Remote: mirror a companion server's session ─────────────
	// Returns once the mirrored session reports it has stopped.
	if *remote != "" {
		fanout.NewClient(*remote, *gameID, bus).ConnectWithRetry(ctx)
		return
	}

	// ── Local: run the session in-process ───────────────────────
	wc := watch.Config{
		PollingFrequency: *freq,
		EnableAudio:      *audio,
		EnableWebhooks:   *hook != "",
		WebhookURL:       *hook,
		TestMode:         *test,
	}
	if err := wc.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	dispatcher := notify.NewDispatcher(console.NewBellSink(os.Stdout), webhook.NewNotifier())
	dispatcher.Attach(bus)

	session, err := live.NewSession(*gameID, wc, api, players.NewResolver(api, nil), bus, live.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
		session.Stop()
		<-session.Done()
	case <-session.Done():
	}
	dispatcher.Wait()
}
