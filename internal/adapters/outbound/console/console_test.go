package console

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/nhl-companion/internal/core/state/watch"
	"github.com/charleschow/nhl-companion/internal/events"
)

func TestBellSink(t *testing.T) {
	var buf bytes.Buffer
	b := NewBellSink(&buf)

	assert.False(t, b.Enabled(watch.Config{}))
	assert.True(t, b.Enabled(watch.Config{EnableAudio: true}))

	require.NoError(t, b.Notify(context.Background(), 1, events.NotificationIntent{Body: "🏁 Game Ended"}))
	assert.Equal(t, "\a🏁 Game Ended\n", buf.String())
}

func TestLogSinkAlwaysEnabled(t *testing.T) {
	var s LogSink
	assert.True(t, s.Enabled(watch.Config{}))
	assert.NoError(t, s.Notify(context.Background(), 1, events.NotificationIntent{Body: "x"}))
}
