package live

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/charleschow/nhl-companion/internal/adapters/outbound/nhlapi"
	"github.com/charleschow/nhl-companion/internal/core/display"
	"github.com/charleschow/nhl-companion/internal/core/nhl"
	"github.com/charleschow/nhl-companion/internal/core/players"
	"github.com/charleschow/nhl-companion/internal/core/state/watch"
	"github.com/charleschow/nhl-companion/internal/events"
	"github.com/charleschow/nhl-companion/internal/telemetry"
)

const (
	DefaultScoreFlagTTL = 2 * time.Second
	DefaultNewMajorTTL  = 3 * time.Second
	DefaultFetchTimeout = 10 * time.Second

	notificationTitle = "NHL Companion"
	inboxSize         = 64
)

// GameFetcher loads one game snapshot. *nhlapi.Client satisfies it.
type GameFetcher interface {
	GameDetail(ctx context.Context, gameID int64) (nhl.GameDetail, error)
}

// Options tunes timing. Zero values take the defaults above.
type Options struct {
	ScoreFlagTTL time.Duration
	NewMajorTTL  time.Duration
	FetchTimeout time.Duration
	Rand         *rand.Rand

	interval time.Duration // overrides the config interval in tests
}

func (o Options) withDefaults() Options {
	if o.ScoreFlagTTL <= 0 {
		o.ScoreFlagTTL = DefaultScoreFlagTTL
	}
	if o.NewMajorTTL <= 0 {
		o.NewMajorTTL = DefaultNewMajorTTL
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	return o
}

// Session watches one game. A single goroutine owns every mutable field;
// fetch results, timer expiries and player arrivals are posted to its inbox
// as closures.
type Session struct {
	ID     string
	GameID int64
	Config watch.Config

	fetcher GameFetcher
	players *players.Resolver // optional
	bus     *events.Bus
	opts    Options

	ctx    context.Context
	cancel context.CancelFunc

	inbox    chan func()
	stopReq  chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	stopped  atomic.Bool
	inFlight atomic.Bool
	view     atomic.Pointer[watch.View]

	// Owned by the loop goroutine.
	status     watch.Status
	rec        *Reconciler
	game       *nhl.Game
	plays      []nhl.Play
	majors     []nhl.Play
	newMajor   map[int64]struct{}
	scoreFlag  watch.ScoreSide
	scoreGen   int
	majorGen   int
	scoreTimer *time.Timer
	majorTimer *time.Timer
	lastErr    string
	loadFailed bool
	updatedAt  time.Time
}

// NewSession validates cfg and starts the session loop and its poller.
// The first cycle runs immediately.
func NewSession(gameID int64, cfg watch.Config, fetcher GameFetcher, resolver *players.Resolver, bus *events.Bus, opts Options) (*Session, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:       uuid.NewString(),
		GameID:   gameID,
		Config:   cfg,
		fetcher:  fetcher,
		players:  resolver,
		bus:      bus,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		inbox:    make(chan func(), inboxSize),
		stopReq:  make(chan struct{}),
		done:     make(chan struct{}),
		status:   watch.StatusInitializing,
		rec:      NewReconciler(cfg.TestMode, opts.Rand),
		newMajor: make(map[int64]struct{}),
	}
	s.view.Store(&watch.View{
		SessionID: s.ID,
		GameID:    gameID,
		Status:    s.status,
		TestMode:  cfg.TestMode,
		Watermark: -1,
		Config:    cfg,
	})

	telemetry.Metrics.ActiveSessions.Inc()
	telemetry.Infof("live: session %s watching game %d every %ds (test mode %v)", s.ID, gameID, cfg.PollingFrequency, cfg.TestMode)

	interval := cfg.Interval()
	if opts.interval > 0 {
		interval = opts.interval
	}
	go s.run()
	go s.poll(interval)
	return s, nil
}

func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case <-s.stopReq:
			s.finish("stopped by user")
			return
		default:
		}

		select {
		case fn := <-s.inbox:
			fn()
		case <-s.stopReq:
			s.finish("stopped by user")
		}
		if s.status == watch.StatusStopped {
			return
		}
	}
}

// post enqueues fn on the session loop. Drops fn once the session has
// stopped or if the inbox is full.
func (s *Session) post(fn func()) {
	if s.stopped.Load() {
		return
	}
	select {
	case s.inbox <- fn:
	case <-s.done:
	default:
		telemetry.Metrics.InboxOverflows.Inc()
		telemetry.Warnf("live: game %d inbox full (cap=%d), dropping update", s.GameID, cap(s.inbox))
	}
}

// postWait is post without the overflow drop. Timer expiries use it so a
// busy inbox cannot leave a flag set.
func (s *Session) postWait(fn func()) {
	if s.stopped.Load() {
		return
	}
	select {
	case s.inbox <- fn:
	case <-s.done:
	}
}

// Stop ends monitoring. Safe to call more than once and from any goroutine.
// No fetch starts after Stop returns; an outstanding one is cancelled and
// its result discarded.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		s.cancel()
		close(s.stopReq)
	})
}

// Done is closed once the session loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Stopped reports whether monitoring has ended, by user or by game end.
func (s *Session) Stopped() bool { return s.stopped.Load() }

// View returns the latest published snapshot.
func (s *Session) View() watch.View { return *s.view.Load() }

// Retry forces an immediate cycle, the manual reload after a failed load.
// Returns false if the session is stopped or a fetch is already running.
func (s *Session) Retry() bool {
	return s.tick()
}

// ── Cycle handling (loop goroutine only) ─────────────────────────────

func (s *Session) applyResult(d nhl.GameDetail, err error) {
	if s.status == watch.StatusStopped || s.stopped.Load() {
		telemetry.Metrics.DiscardedResults.Inc()
		return
	}
	if err != nil {
		s.applyError(err)
		return
	}

	out := s.rec.Apply(d)
	telemetry.Metrics.PollCycles.Inc()

	s.game = &out.Game
	s.plays = out.Plays
	s.majors = out.MajorPlays
	s.lastErr = ""
	s.loadFailed = false
	s.updatedAt = time.Now()
	if s.status == watch.StatusInitializing {
		s.status = watch.StatusMonitoring
	}

	if out.ScoreChange != watch.ScoreNone {
		telemetry.Metrics.ScoreChanges.Inc()
		s.setScoreFlag(out.ScoreChange)
		s.publish(events.EventScoreChange, events.ScoreChangeEvent{
			Side:      out.ScoreChange,
			HomeScore: out.Game.HomeScore,
			AwayScore: out.Game.AwayScore,
		})
	}

	if len(out.NewMajor) > 0 {
		telemetry.Metrics.NewMajorPlays.Add(int64(len(out.NewMajor)))
		for _, p := range out.NewMajor {
			s.newMajor[p.ID] = struct{}{}
		}
		s.armMajorTimer()
		for _, p := range out.NewMajor {
			desc := display.FormatPlayDescription(p)
			s.publish(events.EventMajorPlay, events.MajorPlayEvent{Play: p, Description: desc})
			s.publish(events.EventNotification, events.NotificationIntent{
				Title:  notificationTitle,
				Body:   desc,
				PlayID: p.ID,
				Config: s.Config,
			})
		}
	}

	if s.players != nil {
		if missing := s.players.Missing(out.PlayerIDs); len(missing) > 0 {
			go s.resolvePlayers(missing)
		}
	}

	if out.Completed {
		s.finish("game completed")
		return
	}
	s.publishSnapshot()
}

func (s *Session) applyError(err error) {
	telemetry.Metrics.PollErrors.Inc()
	s.lastErr = nhlapi.UserMessage(err)
	initial := s.status == watch.StatusInitializing
	if initial {
		s.loadFailed = true
	}
	telemetry.Warnf("live: game %d fetch failed: %v", s.GameID, err)
	s.publish(events.EventCycleError, events.CycleErrorEvent{Error: s.lastErr, Initial: initial})
	s.publishSnapshot()
}

func (s *Session) resolvePlayers(ids []int64) {
	if err := s.players.ResolveMissing(s.ctx, ids); err != nil {
		telemetry.Debugf("live: game %d: some players unresolved: %v", s.GameID, err)
	}
	s.post(s.publishSnapshot)
}

func (s *Session) setScoreFlag(side watch.ScoreSide) {
	s.scoreFlag = side
	s.scoreGen++
	gen := s.scoreGen
	if s.scoreTimer != nil {
		s.scoreTimer.Stop()
	}
	s.scoreTimer = time.AfterFunc(s.opts.ScoreFlagTTL, func() {
		s.postWait(func() {
			if s.scoreGen != gen {
				return
			}
			s.scoreFlag = watch.ScoreNone
			s.publishSnapshot()
		})
	})
}

func (s *Session) armMajorTimer() {
	s.majorGen++
	gen := s.majorGen
	if s.majorTimer != nil {
		s.majorTimer.Stop()
	}
	s.majorTimer = time.AfterFunc(s.opts.NewMajorTTL, func() {
		s.postWait(func() {
			if s.majorGen != gen {
				return
			}
			clear(s.newMajor)
			s.publishSnapshot()
		})
	})
}

// finish is the single transition into Stopped.
func (s *Session) finish(reason string) {
	if s.status == watch.StatusStopped {
		return
	}
	s.status = watch.StatusStopped
	s.stopped.Store(true)
	s.cancel()
	if s.scoreTimer != nil {
		s.scoreTimer.Stop()
	}
	if s.majorTimer != nil {
		s.majorTimer.Stop()
	}
	telemetry.Metrics.ActiveSessions.Dec()
	telemetry.Infof("live: session %s for game %d stopped: %s", s.ID, s.GameID, reason)

	s.publishSnapshot()
	s.publish(events.EventStopped, events.StoppedEvent{Reason: reason})
}

func (s *Session) publishSnapshot() {
	v := s.buildView()
	s.view.Store(&v)
	s.publish(events.EventSnapshot, v)
}

func (s *Session) publish(t events.EventType, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.New(t, s.ID, s.GameID, payload))
}

func (s *Session) buildView() watch.View {
	v := watch.View{
		SessionID:   s.ID,
		GameID:      s.GameID,
		Status:      s.status,
		Monitoring:  s.status != watch.StatusStopped,
		TestMode:    s.Config.TestMode,
		Plays:       slices.Clone(s.plays),
		MajorPlays:  slices.Clone(s.majors),
		ScoreChange: s.scoreFlag,
		LastError:   s.lastErr,
		LoadFailed:  s.loadFailed,
		Watermark:   s.rec.Watermark(),
		UpdatedAt:   s.updatedAt,
		Config:      s.Config,
	}
	if s.game != nil {
		g := *s.game
		v.Game = &g
	}
	for id := range s.newMajor {
		v.NewMajorIDs = append(v.NewMajorIDs, id)
	}
	slices.Sort(v.NewMajorIDs)
	if s.players != nil {
		v.Players = s.players.Snapshot()
	} else {
		v.Players = map[int64]nhl.Player{}
	}
	return v
}
