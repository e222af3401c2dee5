package fanout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/nhl-companion/internal/core/nhl"
	"github.com/charleschow/nhl-companion/internal/core/state/watch"
	"github.com/charleschow/nhl-companion/internal/events"
)

type staticViews []watch.View

func (s staticViews) Views() []watch.View { return s }

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) events.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	evt, err := UnmarshalEvent(msg)
	require.NoError(t, err)
	return evt
}

func TestEnvelopeRoundTrip(t *testing.T) {
	in := events.New(events.EventScoreChange, "s1", 42, events.ScoreChangeEvent{Side: watch.ScoreAway, HomeScore: 1, AwayScore: 2})
	data, err := MarshalEvent(in)
	require.NoError(t, err)

	out, err := UnmarshalEvent(data)
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, int64(42), out.GameID)
	assert.Equal(t, in.Payload, out.Payload)

	_, err = UnmarshalEvent([]byte(`{"type":"bogus","payload":{}}`))
	assert.ErrorContains(t, err, "unknown event type")
}

func TestServerFiltersByGame(t *testing.T) {
	bus := events.NewBus()
	current := staticViews{{GameID: 7, SessionID: "s7", Status: watch.StatusMonitoring, Game: &nhl.Game{ID: 7}}}
	s := NewServer(bus, current)
	srv := httptest.NewServer(http.HandlerFunc(s.HandleWS))
	defer srv.Close()

	game7 := dial(t, srv, "?game=7")
	all := dial(t, srv, "")

	first := readEvent(t, game7)
	assert.Equal(t, events.EventSnapshot, first.Type)
	assert.Equal(t, int64(7), first.Payload.(watch.View).GameID)
	assert.Equal(t, events.EventSnapshot, readEvent(t, all).Type)

	require.Eventually(t, func() bool { return s.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	bus.Publish(events.New(events.EventMajorPlay, "s8", 8, events.MajorPlayEvent{Description: "other game"}))
	bus.Publish(events.New(events.EventStopped, "s7", 7, events.StoppedEvent{Reason: "game completed"}))

	got := readEvent(t, game7)
	assert.Equal(t, events.EventStopped, got.Type, "game 8 event filtered out")

	assert.Equal(t, events.EventMajorPlay, readEvent(t, all).Type)
	assert.Equal(t, events.EventStopped, readEvent(t, all).Type)
}

func TestServerRejectsBadGameParam(t *testing.T) {
	s := NewServer(events.NewBus(), nil)
	rec := httptest.NewRecorder()
	s.HandleWS(rec, httptest.NewRequest("GET", "/ws?game=abc", nil))
	assert.Equal(t, 400, rec.Code)
}

func TestClientRepublishesOnLocalBus(t *testing.T) {
	remote := events.NewBus()
	s := NewServer(remote, nil)
	srv := httptest.NewServer(http.HandlerFunc(s.HandleWS))
	defer srv.Close()

	local := events.NewBus()
	var mu sync.Mutex
	var got []events.Event
	local.Subscribe(events.EventCycleError, func(e events.Event) error {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := NewClient(strings.TrimPrefix(srv.URL, "http://"), 3, local)
	go c.ConnectWithRetry(ctx)

	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	remote.Publish(events.New(events.EventCycleError, "s", 3, events.CycleErrorEvent{Error: "Network error: Unable to connect to API"}))
	remote.Publish(events.New(events.EventCycleError, "s", 4, events.CycleErrorEvent{Error: "ignored"}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.Equal(t, "Network error: Unable to connect to API", got[0].Payload.(events.CycleErrorEvent).Error)
	mu.Unlock()
}

func TestClientReturnsWhenWatchedGameStops(t *testing.T) {
	remote := events.NewBus()
	s := NewServer(remote, nil)
	srv := httptest.NewServer(http.HandlerFunc(s.HandleWS))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := NewClient(strings.TrimPrefix(srv.URL, "http://"), 3, events.NewBus())
	done := make(chan struct{})
	go func() {
		c.ConnectWithRetry(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	remote.Publish(events.New(events.EventStopped, "s", 4, events.StoppedEvent{Reason: "game completed"}))
	select {
	case <-done:
		t.Fatal("client returned on another game's stop")
	case <-time.After(100 * time.Millisecond):
	}

	remote.Publish(events.New(events.EventStopped, "s", 3, events.StoppedEvent{Reason: "game completed"}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("client kept running after the watched game stopped")
	}
	assert.NoError(t, ctx.Err(), "parent context is left alone")
}
