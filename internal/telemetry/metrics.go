package telemetry

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

type Counter struct {
	val atomic.Int64
}

func (c *Counter) Inc()         { c.val.Add(1) }
func (c *Counter) Add(n int64)  { c.val.Add(n) }
func (c *Counter) Value() int64 { return c.val.Load() }

type Gauge struct {
	val atomic.Int64
}

func (g *Gauge) Set(v int64)  { g.val.Store(v) }
func (g *Gauge) Inc()         { g.val.Add(1) }
func (g *Gauge) Dec()         { g.val.Add(-1) }
func (g *Gauge) Value() int64 { return g.val.Load() }

// LatencyTracker keeps a sliding window of the most recent samples.
type LatencyTracker struct {
	mu      sync.Mutex
	samples []time.Duration
	maxKeep int
}

func NewLatencyTracker(maxKeep int) *LatencyTracker {
	return &LatencyTracker{maxKeep: maxKeep}
}

func (lt *LatencyTracker) Record(d time.Duration) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.samples = append(lt.samples, d)
	if len(lt.samples) > lt.maxKeep {
		lt.samples = lt.samples[len(lt.samples)-lt.maxKeep:]
	}
}

// Since records the time elapsed from start.
func (lt *LatencyTracker) Since(start time.Time) { lt.Record(time.Since(start)) }

func (lt *LatencyTracker) P50() time.Duration { return lt.Percentile(0.50) }
func (lt *LatencyTracker) P99() time.Duration { return lt.Percentile(0.99) }

func (lt *LatencyTracker) Count() int {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return len(lt.samples)
}

func (lt *LatencyTracker) Percentile(p float64) time.Duration {
	lt.mu.Lock()
	sorted := slices.Clone(lt.samples)
	lt.mu.Unlock()
	if len(sorted) == 0 {
		return 0
	}
	slices.Sort(sorted)
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

// Metrics is the global metrics registry.
var Metrics = struct {
	PollCycles          Counter
	PollErrors          Counter
	SkippedTicks        Counter
	DiscardedResults    Counter
	ScoreChanges        Counter
	NewMajorPlays       Counter
	NotificationsSent   Counter
	NotificationsFailed Counter
	PlayerFetches       Counter
	PlayerFetchErrors   Counter
	PlayerCacheHits     Counter
	APIRequests         Counter
	APIErrors           Counter
	FanoutClients       Gauge
	FanoutDropped       Counter
	ActiveSessions      Gauge
	InboxOverflows      Counter
	FetchLatency        *LatencyTracker
	RateLimiterWait     *LatencyTracker
}{
	FetchLatency:    NewLatencyTracker(1000),
	RateLimiterWait: NewLatencyTracker(1000),
}
