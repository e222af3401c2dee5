package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/charleschow/nhl-companion/internal/core/nhl"
	"github.com/charleschow/nhl-companion/internal/core/state/watch"
)

const (
	dividerHeavy = "========================================================================"
	dividerLight = "~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~"

	maxBoardPlays = 8
)

// PrintScoreboard writes a multi-line block describing the session view.
// eventType labels the header ("UPDATE", "SCORE", "STOPPED").
func PrintScoreboard(w io.Writer, v watch.View, eventType string) {
	divider := dividerHeavy
	if eventType == "UPDATE" {
		divider = dividerLight
	}

	ts := time.Now().Format("3:04:05 PM")

	var b strings.Builder
	tags := ""
	if v.TestMode {
		tags += "  [TEST MODE]"
	}
	if v.LastError != "" {
		tags += "  [FETCH ERROR]"
	}
	fmt.Fprintf(&b, "\n[%s %s]  game %d%s\n", eventType, ts, v.GameID, tags)
	fmt.Fprintf(&b, "%s\n", divider)

	if v.Game == nil {
		if v.LoadFailed {
			fmt.Fprintf(&b, "  Failed to load game: %s\n", v.LastError)
			fmt.Fprintf(&b, "  Retrying every %ds\n", v.Config.PollingFrequency)
		} else {
			fmt.Fprintf(&b, "  Loading...\n")
		}
		fmt.Fprintf(&b, "%s\n", divider)
		io.WriteString(w, b.String())
		return
	}

	g := *v.Game
	home, away := teamLabel(g.HomeTeamName, g.HomeTeamAbbrev, g.HomeTeamID), teamLabel(g.AwayTeamName, g.AwayTeamAbbrev, g.AwayTeamID)
	fmt.Fprintf(&b, "  %s @ %s\n", away, home)

	homeMark, awayMark := "", ""
	switch v.ScoreChange {
	case watch.ScoreHome:
		homeMark = "  << GOAL"
	case watch.ScoreAway:
		awayMark = "  << GOAL"
	}
	fmt.Fprintf(&b, "    %-30s%2d  (SOG %d)%s\n", away+":", g.AwayScore, g.AwaySOG, awayMark)
	fmt.Fprintf(&b, "    %-30s%2d  (SOG %d)%s\n", home+":", g.HomeScore, g.HomeSOG, homeMark)

	period := "Not started"
	if g.Period != nil {
		clock := "--:--"
		if g.Clock != nil {
			clock = *g.Clock
		}
		period = fmt.Sprintf("%s  %s", PeriodLabel(*g.Period, clock == "00:00"), clock)
	}
	fmt.Fprintf(&b, "    %-30s%s (%s)\n", "Period:", period, g.State)

	if len(v.MajorPlays) == 0 {
		fmt.Fprintf(&b, "    %-30s%s\n", "Major plays:", "(none yet)")
	} else {
		fmt.Fprintf(&b, "    Major plays:\n")
		for i, p := range v.MajorPlays {
			if i == maxBoardPlays {
				fmt.Fprintf(&b, "      ... %d more\n", len(v.MajorPlays)-maxBoardPlays)
				break
			}
			marker := "  "
			if v.IsNewMajor(p.ID) {
				marker = "* "
			}
			line := FormatPlayDescription(p)
			if pl, ok := v.PlayerFor(p); ok {
				line += " (" + playerLabel(pl) + ")"
			}
			fmt.Fprintf(&b, "    %s%s\n", marker, line)
		}
	}

	if v.LastError != "" {
		fmt.Fprintf(&b, "    %-30s%s\n", "Last error:", v.LastError)
	}
	if !v.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "    %-30s%s\n", "Updated:", humanize.Time(v.UpdatedAt))
	}
	fmt.Fprintf(&b, "%s\n", divider)

	io.WriteString(w, b.String())
}

func teamLabel(name, abbrev *string, id int64) string {
	switch {
	case name != nil && *name != "":
		return *name
	case abbrev != nil && *abbrev != "":
		return *abbrev
	}
	return fmt.Sprintf("Team %d", id)
}

func playerLabel(p nhl.Player) string {
	if p.Number != nil {
		return fmt.Sprintf("#%d %s", *p.Number, p.FullName())
	}
	return p.FullName()
}
