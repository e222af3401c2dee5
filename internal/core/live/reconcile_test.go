package live

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/nhl-companion/internal/core/nhl"
	"github.com/charleschow/nhl-companion/internal/core/state/watch"
)

func game(state string, home, away int) nhl.Game {
	return nhl.Game{ID: 2024020001, HomeTeamID: 6, AwayTeamID: 10, State: state, HomeScore: home, AwayScore: away}
}

func play(id, index int64, typ string) nhl.Play {
	return nhl.Play{ID: id, GameID: 2024020001, Index: index, Type: typ, Period: 1, Time: "05:00"}
}

func playsUpTo(n int64) []nhl.Play {
	var out []nhl.Play
	for i := int64(0); i <= n; i++ {
		typ := "faceoff"
		if i == 0 {
			typ = "period-start"
		}
		out = append(out, play(100+i, i, typ))
	}
	return out
}

func TestScoreDelta(t *testing.T) {
	tests := []struct {
		name       string
		prev, next nhl.Game
		want       watch.ScoreSide
	}{
		{"home scored", game("LIVE", 1, 1), game("LIVE", 2, 1), watch.ScoreHome},
		{"away scored", game("LIVE", 1, 1), game("LIVE", 1, 2), watch.ScoreAway},
		{"both scored prefers home", game("LIVE", 1, 1), game("LIVE", 2, 2), watch.ScoreHome},
		{"unchanged", game("LIVE", 1, 1), game("LIVE", 1, 1), watch.ScoreNone},
		{"correction downward", game("LIVE", 2, 1), game("LIVE", 1, 1), watch.ScoreNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreDelta(tt.prev, tt.next))
		})
	}
}

func TestFirstFetchReportsNothingNew(t *testing.T) {
	r := NewReconciler(false, nil)
	out := r.Apply(nhl.GameDetail{Game: game("LIVE", 3, 0), Plays: append(playsUpTo(4), play(200, 5, "goal"))})

	assert.Equal(t, watch.ScoreNone, out.ScoreChange)
	assert.Empty(t, out.NewMajor)
	assert.Equal(t, int64(5), out.Watermark)
	require.Len(t, out.MajorPlays, 2)
	assert.Equal(t, int64(200), out.MajorPlays[0].ID, "newest first")
}

func TestNewMajorPlayDetection(t *testing.T) {
	r := NewReconciler(false, nil)
	r.Apply(nhl.GameDetail{Game: game("LIVE", 0, 0), Plays: playsUpTo(5)})
	require.Equal(t, int64(5), r.Watermark())

	plays := append(playsUpTo(5), play(106, 6, "shot-on-net"), play(107, 7, "goal"))
	plays[6].PrimaryPlayerID = nhl.Ptr(int64(8478))
	plays[7].PrimaryPlayerID = nhl.Ptr(int64(8479))
	out := r.Apply(nhl.GameDetail{Game: game("LIVE", 1, 0), Plays: plays})

	require.Len(t, out.NewMajor, 1)
	assert.Equal(t, int64(107), out.NewMajor[0].ID)
	assert.Equal(t, int64(7), out.Watermark)
	assert.Equal(t, watch.ScoreHome, out.ScoreChange)
	assert.Equal(t, []int64{8479}, out.PlayerIDs, "only major plays contribute participants")
}

func TestNoDuplicateNotifications(t *testing.T) {
	r := NewReconciler(false, nil)
	r.Apply(nhl.GameDetail{Game: game("LIVE", 0, 0), Plays: playsUpTo(2)})

	d := nhl.GameDetail{Game: game("LIVE", 0, 0), Plays: append(playsUpTo(2), play(50, 3, "penalty"), play(51, 4, "goal"))}
	first := r.Apply(d)
	second := r.Apply(d)

	require.Len(t, first.NewMajor, 2)
	assert.Equal(t, int64(50), first.NewMajor[0].ID, "notifications in play order")
	assert.Empty(t, second.NewMajor)
}

func TestWatermarkNeverRegresses(t *testing.T) {
	r := NewReconciler(false, nil)
	r.Apply(nhl.GameDetail{Game: game("LIVE", 0, 0), Plays: playsUpTo(9)})
	out := r.Apply(nhl.GameDetail{Game: game("LIVE", 0, 0), Plays: playsUpTo(3)})
	assert.Equal(t, int64(9), out.Watermark)

	out = r.Apply(nhl.GameDetail{Game: game("LIVE", 0, 0)})
	assert.Equal(t, int64(9), out.Watermark)

	out = r.Apply(nhl.GameDetail{Game: game("LIVE", 0, 0), Plays: append(playsUpTo(3), play(99, 8, "goal"))})
	assert.Empty(t, out.NewMajor, "index 8 is below the watermark")
}

func TestEmptyFirstFeedNeverNotifies(t *testing.T) {
	r := NewReconciler(false, nil)
	r.Apply(nhl.GameDetail{Game: game("PRE", 0, 0)})
	out := r.Apply(nhl.GameDetail{Game: game("LIVE", 0, 0), Plays: []nhl.Play{play(1, 0, "period-start")}})

	assert.Empty(t, out.NewMajor)
	assert.Equal(t, int64(0), out.Watermark)
}

func TestCompletedOnlyOutsideTestMode(t *testing.T) {
	for _, state := range []string{nhl.StateFinal, nhl.StateOff} {
		out := NewReconciler(false, nil).Apply(nhl.GameDetail{Game: game(state, 3, 2)})
		assert.True(t, out.Completed, state)
	}
	out := NewReconciler(false, nil).Apply(nhl.GameDetail{Game: game("CRIT", 3, 2)})
	assert.False(t, out.Completed)

	rng := rand.New(rand.NewPCG(1, 2))
	out = NewReconciler(true, rng).Apply(nhl.GameDetail{Game: game(nhl.StateFinal, 3, 2)})
	assert.False(t, out.Completed)
	assert.Equal(t, nhl.StateLive, out.Game.State)
}

func TestTestModeAccumulatesOverSimulatedSnapshot(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	r := NewReconciler(true, rng)
	fetched := nhl.GameDetail{Game: game("FUT", 0, 0)}

	var last Outcome
	for i := 0; i < 300; i++ {
		out := r.Apply(fetched)
		if i > 0 {
			assert.GreaterOrEqual(t, out.Game.HomeScore, last.Game.HomeScore)
			assert.GreaterOrEqual(t, len(out.Plays), len(last.Plays))
			assert.GreaterOrEqual(t, out.Watermark, last.Watermark)
		}
		last = out
	}
	assert.Greater(t, last.Game.HomeScore+last.Game.AwayScore, 0, "300 ticks should have produced a goal")
	assert.NotEmpty(t, last.Plays)
	assert.Equal(t, 0, fetched.Game.HomeScore, "fetched snapshot untouched")
}
