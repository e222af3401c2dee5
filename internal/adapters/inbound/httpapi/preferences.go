package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charleschow/nhl-companion/internal/adapters/outbound/prefstore"
)

type timezoneBody struct {
	Timezone string `json:"timezone"`
	Saved    bool   `json:"saved"`
}

func (h *Handler) getTimezone(w http.ResponseWriter, r *http.Request) {
	if h.deps.Prefs == nil {
		respondJSON(w, http.StatusOK, timezoneBody{Timezone: h.deps.DefaultTZ})
		return
	}
	tz, saved, err := h.deps.Prefs.Timezone(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, timezoneBody{Timezone: tz, Saved: saved})
}

func (h *Handler) putTimezone(w http.ResponseWriter, r *http.Request) {
	if h.deps.Prefs == nil {
		respondDetail(w, http.StatusServiceUnavailable, "preference store unavailable")
		return
	}
	var body timezoneBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.deps.Prefs.SetTimezone(r.Context(), body.Timezone); err != nil {
		if errors.Is(err, prefstore.ErrInvalidTimezone) {
			respondDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, timezoneBody{Timezone: body.Timezone, Saved: true})
}
