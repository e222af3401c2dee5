// mockapi serves a scripted NHL backend on localhost so the companion and
// the terminal watcher can be exercised end-to-end without the real API.
//
// One game (Boston at Montréal) advances a frame every -step interval: a
// goal, a penalty, period changes, a tying goal, an overtime winner, then
// FINAL. Every other active team is idle today.
//
// Usage:
//
//	go run ./cmd/mockapi -addr :8001 -step 5s
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/charleschow/nhl-companion/internal/core/nhl"
)

const mockGameID = 2024020500

type mock struct {
	token string
	start time.Time
	step  time.Duration
	loop  bool

	mu       sync.Mutex
	lastStep int
}

func main() {
	addr := flag.String("addr", ":8001", "listen address")
	step := flag.Duration("step", 5*time.Second, "time between scripted frames")
	token := flag.String("token", "", "require this bearer token (empty accepts any)")
	loop := flag.Bool("loop", false, "restart the script after FINAL")
	flag.Parse()

	m := &mock{token: *token, start: time.Now(), step: *step, loop: *loop, lastStep: -1}

	r := chi.NewRouter()
	r.Use(m.auth)
	r.Get("/api/teams/active", m.teams)
	r.Get("/api/games", m.games)
	r.Get("/api/games/{gameId}", m.gameDetail)
	r.Get("/api/teams/{teamId}/players", m.roster)
	r.Get("/api/players/{playerId}", m.player)

	fmt.Println("=== NHL API Mock ===")
	fmt.Printf("Listening on %s  game=%d  step=%s  frames=%d\n\n", *addr, mockGameID, *step, len(script))
	if err := http.ListenAndServe(*addr, r); err != nil {
		fmt.Fprintf(os.Stderr, "listen: %v\n", err)
		os.Exit(1)
	}
}

func (m *mock) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.token != "" && r.Header.Get("Authorization") != "Bearer "+m.token {
			writeDetail(w, http.StatusUnauthorized, "Invalid or missing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// current returns the game and feed for the frame the clock is on.
func (m *mock) current() nhl.GameDetail {
	idx := int(time.Since(m.start) / m.step)
	if m.loop {
		idx %= len(script)
	} else if idx >= len(script) {
		idx = len(script) - 1
	}

	m.mu.Lock()
	if idx != m.lastStep {
		m.lastStep = idx
		fmt.Printf("  [%2d/%d] %s\n", idx+1, len(script), script[idx].label)
	}
	m.mu.Unlock()

	return detailAt(idx)
}

func (m *mock) teams(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, league)
}

func (m *mock) games(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
		return
	}
	writeJSON(w, http.StatusOK, []nhl.Game{m.current().Game})
}

func (m *mock) gameDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "gameId"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "gameId must be an integer")
		return
	}
	if id != mockGameID {
		writeDetail(w, http.StatusNotFound, "Game not found")
		return
	}
	writeJSON(w, http.StatusOK, m.current())
}

func (m *mock) roster(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "teamId"), 10, 64)
	out := []nhl.Player{}
	for _, p := range roster {
		if p.TeamID != nil && *p.TeamID == id {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (m *mock) player(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "playerId"), 10, 64)
	for _, p := range roster {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Player not found")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
