package nhlapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "secret", WithRateLimit(0, 0))
}

func TestGameDetailDecodesAndAuthenticates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/games/2024020001", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{
			"game": {"gameId": 2024020001, "gameState": "LIVE", "gameHomeTeamId": 6, "gameAwayTeamId": 10,
			         "gamePeriod": 2, "gameClock": "11:42", "gameHomeScore": 2, "gameAwayScore": 1},
			"plays": [{"playId": 1, "playIndex": 0, "playType": "period-start", "playPeriod": 1,
			           "playTime": "00:00", "playTimeReamaining": "20:00", "playPrimaryPlayerId": null}]
		}`))
	})

	d, err := c.GameDetail(context.Background(), 2024020001)
	require.NoError(t, err)
	assert.Equal(t, "LIVE", d.Game.State)
	require.NotNil(t, d.Game.Period)
	assert.Equal(t, 2, *d.Game.Period)
	require.Len(t, d.Plays, 1)
	assert.Equal(t, "20:00", d.Plays[0].TimeRemaining)
	assert.Nil(t, d.Plays[0].PrimaryPlayerID)
}

func TestGamesByDateQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-01-15", r.URL.Query().Get("date"))
		assert.Equal(t, "America/Chicago", r.URL.Query().Get("timezone"))
		w.Write([]byte(`[{"gameId": 1}, {"gameId": 2}]`))
	})

	games, err := c.GamesByDate(context.Background(), "2024-01-15", "America/Chicago")
	require.NoError(t, err)
	assert.Len(t, games, 2)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		kind    error
		message string
	}{
		{401, `{"detail":"bad token"}`, ErrAuth, "Authentication failed: Invalid or missing bearer token"},
		{404, `{"detail":"Player 9 not found"}`, ErrNotFound, "Player 9 not found"},
		{404, `not json`, ErrNotFound, "Resource not found"},
		{422, `{"detail":[{"msg":"bad date"}]}`, ErrValidation, `[{"msg":"bad date"}]`},
		{422, `{}`, ErrValidation, "Invalid request parameters"},
		{500, `{"detail":"db down"}`, ErrServer, "Server error: Please try again later"},
		{503, `{"detail":"maintenance"}`, ErrUnknownHTTP, "maintenance"},
		{418, ``, ErrUnknownHTTP, "HTTP 418: I'm a teapot"},
	}
	for _, tt := range tests {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(tt.body))
		})

		_, err := c.Player(context.Background(), 9)
		require.Error(t, err, "status %d", tt.status)
		assert.ErrorIs(t, err, tt.kind, "status %d", tt.status)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, tt.status, apiErr.StatusCode)
		assert.Equal(t, "/api/players/9", apiErr.Path)
		assert.Equal(t, tt.message, UserMessage(err))
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, "", WithRateLimit(0, 0))
	_, err := c.ActiveTeams(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Network error: Unable to connect to API", UserMessage(err))
}

func TestMalformedBodyIsNotANetworkError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 9, "firstName":`))
	})

	_, err := c.Player(context.Background(), 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownHTTP)
	assert.NotErrorIs(t, err, ErrNetwork)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.Equal(t, "Malformed response from API", UserMessage(err))
}

func TestNoTokenNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").TeamPlayers(context.Background(), 6)
	require.NoError(t, err)
}
