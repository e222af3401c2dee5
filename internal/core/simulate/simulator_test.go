package simulate

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/nhl-companion/internal/core/nhl"
)

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func baseGame() nhl.Game {
	return nhl.Game{ID: 2024020001, HomeTeamID: 6, AwayTeamID: 10, State: nhl.StateFuture}
}

func TestSimulateInitializesPeriodAndClock(t *testing.T) {
	next, _ := Simulate(baseGame(), nil, 2024020001, newRNG(1))

	require.NotNil(t, next.Period)
	require.NotNil(t, next.Clock)
	assert.Equal(t, 1, *next.Period)
	assert.Equal(t, "20:00", *next.Clock)
	assert.Equal(t, nhl.StateLive, next.State)
}

func TestSimulateDoesNotMutateInputs(t *testing.T) {
	game := baseGame()
	game.Period = nhl.Ptr(2)
	game.Clock = nhl.Ptr("10:00")
	plays := []nhl.Play{{ID: 5, Index: 0, Type: "period-start"}}

	for seed := uint64(0); seed < 50; seed++ {
		Simulate(game, plays, game.ID, newRNG(seed))
	}

	assert.Equal(t, 2, *game.Period)
	assert.Equal(t, "10:00", *game.Clock)
	assert.Equal(t, nhl.StateFuture, game.State)
	assert.Len(t, plays, 1)
}

func TestSimulateInvariantsOverManyTicks(t *testing.T) {
	rng := newRNG(42)
	game := baseGame()
	var plays []nhl.Play

	for i := 0; i < 2000; i++ {
		next, nextPlays := Simulate(game, plays, game.ID, rng)

		if game.Period != nil {
			require.GreaterOrEqual(t, *next.Period, *game.Period, "period lowered at tick %d", i)
		}
		require.LessOrEqual(t, *next.Period, 3)
		require.GreaterOrEqual(t, next.HomeScore, game.HomeScore)
		require.GreaterOrEqual(t, next.AwayScore, game.AwayScore)
		require.LessOrEqual(t, next.HomeScore+next.AwayScore-game.HomeScore-game.AwayScore, 1)

		require.GreaterOrEqual(t, len(nextPlays), len(plays))
		require.LessOrEqual(t, len(nextPlays), len(plays)+1)
		for j := 1; j < len(nextPlays); j++ {
			require.Greater(t, nextPlays[j].Index, nextPlays[j-1].Index, "index sequence not monotonic")
		}
		if len(nextPlays) > len(plays) {
			added := nextPlays[len(nextPlays)-1]
			assert.Contains(t, []string{"goal", "penalty"}, added.Type)
			assert.Contains(t, []int64{game.HomeTeamID, game.AwayTeamID}, *added.TeamID)
			assert.Equal(t, *next.Period, added.Period)
			assert.Equal(t, *next.Clock, added.Time)
			assert.Nil(t, added.PrimaryPlayerID)
		}

		game, plays = next, nextPlays
	}

	assert.Equal(t, 3, *game.Period, "2000 ticks must reach the third period")
	assert.NotEmpty(t, plays)
}

func TestSimulateNeverLowersOvertimePeriod(t *testing.T) {
	game := baseGame()
	game.Period = nhl.Ptr(4)
	game.Clock = nhl.Ptr("00:00")

	for seed := uint64(0); seed < 100; seed++ {
		next, _ := Simulate(game, nil, game.ID, newRNG(seed))
		assert.Equal(t, 4, *next.Period)
	}
}

func TestSimulateContinuesAfterRealIndices(t *testing.T) {
	plays := []nhl.Play{{ID: 900, Index: 7}, {ID: 901, Index: 12}}
	rng := newRNG(7)

	for i := 0; i < 200; i++ {
		_, next := Simulate(baseGame(), plays, 1, rng)
		if len(next) == 3 {
			assert.Equal(t, int64(13), next[2].Index)
			assert.Equal(t, int64(902), next[2].ID)
			return
		}
	}
	t.Fatal("no synthetic play generated in 200 ticks")
}

func TestClockSeconds(t *testing.T) {
	assert.Equal(t, 1200, ClockSeconds("20:00"))
	assert.Equal(t, 545, ClockSeconds("9:05"))
	assert.Equal(t, 0, ClockSeconds("00:00"))
	assert.Equal(t, 1200, ClockSeconds("garbage"))
	assert.Equal(t, "09:05", FormatClock(545))
}
