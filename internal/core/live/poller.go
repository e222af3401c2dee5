package live

import (
	"context"
	"time"

	"github.com/charleschow/nhl-companion/internal/telemetry"
)

// poll fires one cycle immediately and then one per interval until the
// session stops.
func (s *Session) poll(interval time.Duration) {
	s.tick()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.tick()
		case <-s.ctx.Done():
			return
		}
	}
}

// tick starts a fetch unless one is already outstanding. A skipped tick is
// counted, never queued. Returns whether a fetch was started.
func (s *Session) tick() bool {
	if s.stopped.Load() {
		return false
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		telemetry.Metrics.SkippedTicks.Inc()
		telemetry.Debugf("live: game %d tick skipped, fetch in flight", s.GameID)
		return false
	}
	go s.fetch()
	return true
}

func (s *Session) fetch() {
	defer s.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(s.ctx, s.opts.FetchTimeout)
	defer cancel()

	start := time.Now()
	d, err := s.fetcher.GameDetail(ctx, s.GameID)
	telemetry.Metrics.FetchLatency.Since(start)

	if s.stopped.Load() {
		telemetry.Metrics.DiscardedResults.Inc()
		return
	}
	s.post(func() { s.applyResult(d, err) })
}
