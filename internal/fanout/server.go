package fanout

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/charleschow/nhl-companion/internal/core/state/watch"
	"github.com/charleschow/nhl-companion/internal/events"
	"github.com/charleschow/nhl-companion/internal/telemetry"
)

const (
	clientSendBuf = 256
	writeDeadline = 5 * time.Second
	pongWait      = 30 * time.Second
	pingInterval  = 20 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// ViewSource supplies current session views so a new client starts with
// a full picture instead of waiting for the next cycle.
type ViewSource interface {
	Views() []watch.View
}

type gameClient struct {
	id     string
	gameID int64 // 0 = every game
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
}

func (c *gameClient) wants(gameID int64) bool {
	return c.gameID == 0 || c.gameID == gameID
}

// Server fans out bus events to connected browser WebSocket clients.
type Server struct {
	views ViewSource // optional

	mu      sync.Mutex
	clients map[*gameClient]struct{}
}

func NewServer(bus *events.Bus, views ViewSource) *Server {
	s := &Server{
		views:   views,
		clients: make(map[*gameClient]struct{}),
	}
	bus.SubscribeAll(s.forward, events.AllTypes...)
	return s
}

// forward is called on the publisher's goroutine. It serializes the event
// and enqueues it to matching clients' send channels (non-blocking).
func (s *Server) forward(evt events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) == 0 {
		return nil
	}

	data, err := MarshalEvent(evt)
	if err != nil {
		telemetry.Warnf("fanout: marshal error: %v", err)
		return nil
	}

	for c := range s.clients {
		if !c.wants(evt.GameID) {
			continue
		}
		select {
		case c.send <- data:
		default:
			telemetry.Metrics.FanoutDropped.Inc()
			telemetry.Warnf("fanout: dropping message for slow client %s game=%d", c.id, c.gameID)
		}
	}
	return nil
}

// HandleWS is the HTTP handler for WebSocket upgrade requests.
// Clients connect with ?game=2024020001, or without it for every game.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	var gameID int64
	if raw := r.URL.Query().Get("game"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "invalid ?game= query param", http.StatusBadRequest)
			return
		}
		gameID = id
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		telemetry.Warnf("fanout: upgrade failed: %v", err)
		return
	}

	c := &gameClient{
		id:     uuid.NewString(),
		gameID: gameID,
		conn:   conn,
		send:   make(chan []byte, clientSendBuf),
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	telemetry.Metrics.FanoutClients.Inc()
	telemetry.Infof("fanout: client %s connected (game=%d)", c.id, gameID)

	s.sendCurrent(c)

	go s.writePump(c)
	go s.readPump(c)
}

func (s *Server) sendCurrent(c *gameClient) {
	if s.views == nil {
		return
	}
	for _, v := range s.views.Views() {
		if !c.wants(v.GameID) {
			continue
		}
		data, err := MarshalEvent(events.New(events.EventSnapshot, v.SessionID, v.GameID, v))
		if err != nil {
			continue
		}
		select {
		case c.send <- data:
		default:
		}
	}
}

// writePump drains the client's send channel and writes to the WS connection.
// It owns the client lifecycle: on exit it removes the client from the map
// (so forward never sends to a stale channel) and closes the connection.
func (s *Server) writePump(c *gameClient) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.removeClient(c)
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				telemetry.Warnf("fanout: write error client=%s: %v", c.id, err)
				return
			}
		case <-c.done:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump keeps the connection alive by reading pongs / close frames.
// Browser clients send nothing upstream.
// On exit it signals writePump via c.done (never closes c.send).
func (s *Server) readPump(c *gameClient) {
	defer close(c.done)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) removeClient(c *gameClient) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		telemetry.Metrics.FanoutClients.Dec()
		telemetry.Infof("fanout: client %s disconnected", c.id)
	}
}

// ClientCount reports connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
