package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/charleschow/nhl-companion/internal/adapters/outbound/nhlapi"
	"github.com/charleschow/nhl-companion/internal/telemetry"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		telemetry.Warnf("httpapi: encode response: %v", err)
	}
}

func respondDetail(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, errorBody{Detail: detail})
}

// respondError maps a backend error class onto the status we report.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		telemetry.Warnf("httpapi: %s %s: %v", r.Method, r.URL.Path, err)
	}
	respondDetail(w, status, nhlapi.UserMessage(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, nhlapi.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, nhlapi.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, nhlapi.ErrNetwork):
		return http.StatusServiceUnavailable
	case errors.Is(err, nhlapi.ErrAuth),
		errors.Is(err, nhlapi.ErrServer),
		errors.Is(err, nhlapi.ErrUnknownHTTP):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
