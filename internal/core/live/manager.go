package live

import (
	"errors"
	"sort"
	"sync"

	"github.com/charleschow/nhl-companion/internal/core/players"
	"github.com/charleschow/nhl-companion/internal/core/state/watch"
	"github.com/charleschow/nhl-companion/internal/events"
)

var (
	ErrAlreadyWatching = errors.New("game is already being watched")
	ErrNoSession       = errors.New("no watch session for game")
)

// Manager is a thread-safe map of watch sessions keyed by game id.
//
// The mutex protects the map only. Each Session serializes its own state
// through its inbox.
type Manager struct {
	fetcher  GameFetcher
	resolver *players.Resolver
	bus      *events.Bus
	opts     Options

	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewManager(fetcher GameFetcher, resolver *players.Resolver, bus *events.Bus, opts Options) *Manager {
	return &Manager{
		fetcher:  fetcher,
		resolver: resolver,
		bus:      bus,
		opts:     opts,
		sessions: make(map[int64]*Session),
	}
}

// Start begins watching a game. A stopped session for the same game is
// replaced; a running one yields ErrAlreadyWatching along with it.
func (m *Manager) Start(gameID int64, cfg watch.Config) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[gameID]; ok && !s.Stopped() {
		return s, ErrAlreadyWatching
	}
	s, err := NewSession(gameID, cfg, m.fetcher, m.resolver, m.bus, m.opts)
	if err != nil {
		return nil, err
	}
	m.sessions[gameID] = s
	return s, nil
}

func (m *Manager) Get(gameID int64) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[gameID]
	return s, ok
}

// Stop stops the game's session but keeps it so its final view stays readable.
func (m *Manager) Stop(gameID int64) error {
	s, ok := m.Get(gameID)
	if !ok {
		return ErrNoSession
	}
	s.Stop()
	return nil
}

// Delete stops and forgets a session.
func (m *Manager) Delete(gameID int64) {
	m.mu.Lock()
	s, ok := m.sessions[gameID]
	delete(m.sessions, gameID)
	m.mu.Unlock()

	if ok {
		s.Stop()
	}
}

// All returns the sessions ordered by game id. Safe for iteration.
func (m *Manager) All() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].GameID < out[j].GameID })
	return out
}

func (m *Manager) Views() []watch.View {
	all := m.All()
	views := make([]watch.View, len(all))
	for i, s := range all {
		views[i] = s.View()
	}
	return views
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StopAll stops every session and waits for their loops to exit.
func (m *Manager) StopAll() {
	for _, s := range m.All() {
		s.Stop()
		<-s.Done()
	}
}
