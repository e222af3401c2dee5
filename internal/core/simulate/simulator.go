package simulate

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/charleschow/nhl-companion/internal/core/nhl"
)

const (
	scoreChance  = 0.2
	playChance   = 0.3
	maxClockTick = 30 // exclusive, seconds
	periodLength = 20 * 60
	lastPeriod   = 3
	freshClock   = "20:00"
)

var syntheticPlayTypes = []string{"goal", "penalty"}

// Simulate fabricates one tick of game progress on top of a snapshot:
// an occasional goal, a clock countdown with period rollover, an
// occasional synthetic play, and a forced LIVE state. The inputs are
// never mutated. Period and play index never go backwards.
func Simulate(game nhl.Game, plays []nhl.Play, gameID int64, rng *rand.Rand) (nhl.Game, []nhl.Play) {
	next := game

	if rng.Float64() < scoreChance {
		if rng.Float64() < 0.5 {
			next.HomeScore++
		} else {
			next.AwayScore++
		}
	}

	if next.Period == nil {
		next.Period = nhl.Ptr(1)
		next.Clock = nhl.Ptr(freshClock)
	} else {
		period := *next.Period
		clock := freshClock
		if next.Clock != nil {
			clock = *next.Clock
		}
		remaining := ClockSeconds(clock) - rng.IntN(maxClockTick)
		if remaining < 0 {
			remaining = periodLength
			if period < lastPeriod {
				period++
			}
		}
		next.Period = nhl.Ptr(period)
		next.Clock = nhl.Ptr(FormatClock(remaining))
	}

	nextPlays := make([]nhl.Play, len(plays), len(plays)+1)
	copy(nextPlays, plays)

	if rng.Float64() < playChance {
		teamID := game.HomeTeamID
		if rng.Float64() >= 0.5 {
			teamID = game.AwayTeamID
		}
		nextPlays = append(nextPlays, nhl.Play{
			ID:            nhl.MaxPlayID(plays) + 1,
			GameID:        gameID,
			Index:         nhl.MaxPlayIndex(plays) + 1,
			TeamID:        nhl.Ptr(teamID),
			Period:        *next.Period,
			Time:          *next.Clock,
			TimeRemaining: *next.Clock,
			Type:          syntheticPlayTypes[rng.IntN(len(syntheticPlayTypes))],
		})
	}

	next.State = nhl.StateLive

	return next, nextPlays
}

// ClockSeconds parses "MM:SS". Unparseable clocks count as a full period.
func ClockSeconds(clock string) int {
	mm, ss, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok {
		return periodLength
	}
	m, err1 := strconv.Atoi(mm)
	s, err2 := strconv.Atoi(ss)
	if err1 != nil || err2 != nil || m < 0 || s < 0 {
		return periodLength
	}
	return m*60 + s
}

func FormatClock(totalSecs int) string {
	return fmt.Sprintf("%02d:%02d", totalSecs/60, totalSecs%60)
}
