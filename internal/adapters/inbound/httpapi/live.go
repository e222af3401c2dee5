package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charleschow/nhl-companion/internal/core/live"
	"github.com/charleschow/nhl-companion/internal/core/state/watch"
)

func (h *Handler) listSessions(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.deps.Sessions.Views())
}

// startSession accepts an optional WatchConfig body; an empty body takes
// the server defaults. Rejects invalid configs with 422.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	gameID, ok := idParam(r, "gameId")
	if !ok {
		respondDetail(w, http.StatusBadRequest, "invalid game id")
		return
	}

	cfg := h.deps.DefaultWatch
	if r.Body != nil {
		defer r.Body.Close()
		err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&cfg)
		if err != nil && !errors.Is(err, io.EOF) {
			respondDetail(w, http.StatusBadRequest, "invalid watch config: "+err.Error())
			return
		}
	}
	cfg = cfg.WithDefaults()

	s, err := h.deps.Sessions.Start(gameID, cfg)
	switch {
	case errors.Is(err, live.ErrAlreadyWatching):
		respondJSON(w, http.StatusConflict, map[string]any{
			"detail": err.Error(),
			"view":   s.View(),
		})
		return
	case isConfigError(err):
		respondDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, s.View())
}

func isConfigError(err error) bool {
	return errors.Is(err, watch.ErrPollingTooFast) ||
		errors.Is(err, watch.ErrWebhookURLRequired) ||
		errors.Is(err, watch.ErrWebhookURLInvalid)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*live.Session, bool) {
	gameID, ok := idParam(r, "gameId")
	if !ok {
		respondDetail(w, http.StatusBadRequest, "invalid game id")
		return nil, false
	}
	s, ok := h.deps.Sessions.Get(gameID)
	if !ok {
		respondDetail(w, http.StatusNotFound, live.ErrNoSession.Error())
		return nil, false
	}
	return s, true
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	if s, ok := h.session(w, r); ok {
		respondJSON(w, http.StatusOK, s.View())
	}
}

// stopSession halts polling. The session stays listed with its final view.
func (h *Handler) stopSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Stop()
	<-s.Done()
	respondJSON(w, http.StatusOK, s.View())
}

func (h *Handler) retrySession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if s.Stopped() {
		respondDetail(w, http.StatusConflict, "monitoring has stopped")
		return
	}
	if !s.Retry() {
		respondDetail(w, http.StatusConflict, "a refresh is already in progress")
		return
	}
	respondJSON(w, http.StatusAccepted, s.View())
}
