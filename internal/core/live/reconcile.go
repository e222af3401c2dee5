package live

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/charleschow/nhl-companion/internal/core/classify"
	"github.com/charleschow/nhl-companion/internal/core/nhl"
	"github.com/charleschow/nhl-companion/internal/core/simulate"
	"github.com/charleschow/nhl-companion/internal/core/state/watch"
)

// Outcome is everything one successful fetch changed.
type Outcome struct {
	Game        nhl.Game
	Plays       []nhl.Play
	ScoreChange watch.ScoreSide
	MajorPlays  []nhl.Play // newest first
	NewMajor    []nhl.Play // oldest first, the notification order
	Watermark   int64
	Completed   bool
	PlayerIDs   []int64 // primary participants of major plays, deduplicated
}

// Reconciler compares each fetched snapshot against the previous one.
// It is not safe for concurrent use; a Session drives it from its loop.
type Reconciler struct {
	testMode  bool
	rng       *rand.Rand
	watermark int64
	prev      *nhl.Game
	simBase   *nhl.GameDetail
}

func NewReconciler(testMode bool, rng *rand.Rand) *Reconciler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Reconciler{testMode: testMode, rng: rng, watermark: -1}
}

// Watermark is the highest play index observed so far, -1 before any play.
func (r *Reconciler) Watermark() int64 { return r.watermark }

func (r *Reconciler) Apply(d nhl.GameDetail) Outcome {
	game, plays := d.Game, d.Plays

	if r.testMode {
		base := d
		if r.simBase != nil {
			base = *r.simBase
		}
		game, plays = simulate.Simulate(base.Game, base.Plays, d.Game.ID, r.rng)
		r.simBase = &nhl.GameDetail{Game: game, Plays: plays}
	}

	out := Outcome{Game: game, Plays: plays}

	if r.prev != nil {
		out.ScoreChange = ScoreDelta(*r.prev, game)
	}

	out.MajorPlays = classify.MajorPlays(plays)

	current := nhl.MaxPlayIndex(plays)
	if r.watermark >= 0 && current > r.watermark {
		for i := len(out.MajorPlays) - 1; i >= 0; i-- {
			if p := out.MajorPlays[i]; p.Index > r.watermark {
				out.NewMajor = append(out.NewMajor, p)
			}
		}
		slices.SortStableFunc(out.NewMajor, func(a, b nhl.Play) int {
			return cmp.Compare(a.Index, b.Index)
		})
	}

	if current > r.watermark {
		r.watermark = current
	}
	out.Watermark = r.watermark

	seen := make(map[int64]struct{})
	for _, p := range out.MajorPlays {
		if p.PrimaryPlayerID == nil {
			continue
		}
		id := *p.PrimaryPlayerID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out.PlayerIDs = append(out.PlayerIDs, id)
	}

	out.Completed = !r.testMode && classify.GameStatusOf(game.State) == nhl.StatusCompleted

	g := game
	r.prev = &g
	return out
}

// ScoreDelta reports which side scored between two snapshots. Home wins
// ties when both sides increased.
func ScoreDelta(prev, next nhl.Game) watch.ScoreSide {
	switch {
	case next.HomeScore > prev.HomeScore:
		return watch.ScoreHome
	case next.AwayScore > prev.AwayScore:
		return watch.ScoreAway
	}
	return watch.ScoreNone
}
