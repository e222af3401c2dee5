package console

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charleschow/nhl-companion/internal/core/state/watch"
	"github.com/charleschow/nhl-companion/internal/events"
	"github.com/charleschow/nhl-companion/internal/telemetry"
)

// LogSink writes every notification to the application log.
type LogSink struct{}

func (LogSink) Name() string              { return "log" }
func (LogSink) Enabled(watch.Config) bool { return true }

func (LogSink) Notify(_ context.Context, gameID int64, n events.NotificationIntent) error {
	telemetry.Infof("notify: game %d: %s", gameID, n.Body)
	return nil
}

// BellSink rings the terminal bell for sessions with audio alerts on.
type BellSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBellSink(w io.Writer) *BellSink {
	return &BellSink{w: w}
}

func (b *BellSink) Name() string                  { return "audio" }
func (b *BellSink) Enabled(cfg watch.Config) bool { return cfg.EnableAudio }

func (b *BellSink) Notify(_ context.Context, _ int64, n events.NotificationIntent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := fmt.Fprintf(b.w, "\a%s\n", n.Body); err != nil {
		return fmt.Errorf("bell: %w", err)
	}
	return nil
}
