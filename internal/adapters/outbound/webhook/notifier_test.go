package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/nhl-companion/internal/core/state/watch"
	"github.com/charleschow/nhl-companion/internal/events"
)

func TestNotifyPostsPayload(t *testing.T) {
	var got Payload
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifierWithClient(srv.Client())
	cfg := watch.Config{PollingFrequency: 3, EnableWebhooks: true, WebhookURL: srv.URL + "/hook"}
	require.True(t, n.Enabled(cfg))

	err := n.Notify(context.Background(), 42, events.NotificationIntent{
		Title: "NHL Companion", Body: "🚨 GOAL! - Period 1 at 04:12", PlayID: 7, Config: cfg,
	})
	require.NoError(t, err)

	assert.Equal(t, "**NHL Companion**: 🚨 GOAL! - Period 1 at 04:12", got.Content)
	assert.Equal(t, int64(42), got.GameID)
	assert.Equal(t, int64(7), got.PlayID)
	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "🚨 GOAL! - Period 1 at 04:12", got.Embeds[0].Description)
}

func TestNotifyErrors(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusTooManyRequests)
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	n := NewNotifierWithClient(srv.Client())
	intent := events.NotificationIntent{Config: watch.Config{EnableWebhooks: true, WebhookURL: srv.URL}}

	assert.ErrorContains(t, n.Notify(context.Background(), 1, intent), "rate limited")

	status.Store(http.StatusBadGateway)
	assert.ErrorContains(t, n.Notify(context.Background(), 1, intent), "status=502")

	intent.Config.WebhookURL = "http://insecure.example.com"
	assert.ErrorIs(t, n.Notify(context.Background(), 1, intent), watch.ErrWebhookURLInvalid)
}

func TestEnabled(t *testing.T) {
	n := NewNotifier()
	assert.False(t, n.Enabled(watch.Config{EnableWebhooks: false, WebhookURL: "https://x.example"}))
	assert.False(t, n.Enabled(watch.Config{EnableWebhooks: true}))
	assert.True(t, n.Enabled(watch.Config{EnableWebhooks: true, WebhookURL: "https://x.example"}))
}
