package notify

import (
	"context"
	"sync"
	"time"

	"github.com/charleschow/nhl-companion/internal/core/state/watch"
	"github.com/charleschow/nhl-companion/internal/events"
	"github.com/charleschow/nhl-companion/internal/telemetry"
)

const sinkTimeout = 10 * time.Second

// Sink delivers one notification. Enabled decides per session config.
type Sink interface {
	Name() string
	Enabled(cfg watch.Config) bool
	Notify(ctx context.Context, gameID int64, n events.NotificationIntent) error
}

// Dispatcher fans notification intents out to sinks. Delivery is
// asynchronous and best-effort: the publishing session never waits and
// sink failures are only logged and counted.
type Dispatcher struct {
	sinks []Sink
	wg    sync.WaitGroup
}

func NewDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks}
}

// Attach subscribes the dispatcher to notification intents on the bus.
func (d *Dispatcher) Attach(bus *events.Bus) {
	bus.Subscribe(events.EventNotification, d.handle)
}

func (d *Dispatcher) handle(e events.Event) error {
	n, ok := e.Payload.(events.NotificationIntent)
	if !ok {
		return nil
	}
	for _, s := range d.sinks {
		if !s.Enabled(n.Config) {
			continue
		}
		d.wg.Add(1)
		go d.deliver(s, e.GameID, n)
	}
	return nil
}

func (d *Dispatcher) deliver(s Sink, gameID int64, n events.NotificationIntent) {
	defer d.wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	if err := s.Notify(ctx, gameID, n); err != nil {
		telemetry.Metrics.NotificationsFailed.Inc()
		telemetry.Warnf("notify: %s sink for game %d: %v", s.Name(), gameID, err)
		return
	}
	telemetry.Metrics.NotificationsSent.Inc()
}

// Wait blocks until in-flight deliveries finish. Used at shutdown.
func (d *Dispatcher) Wait() { d.wg.Wait() }
