package display

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/dustin/go-humanize"

	"github.com/charleschow/nhl-companion/internal/core/nhl"
)

// FormatPlayDescription renders a play as a one-line, user-facing string.
// Special forms are matched by substring, case-insensitively, in order.
func FormatPlayDescription(p nhl.Play) string {
	playType := p.Type
	if playType == "" {
		playType = "Unknown"
	}
	clock := p.Time
	if clock == "" {
		clock = "Unknown"
	}

	t := strings.ToLower(playType)
	switch {
	case strings.Contains(t, "goal"):
		return fmt.Sprintf("🚨 GOAL! - Period %d at %s", p.Period, clock)
	case strings.Contains(t, "penalty"):
		return fmt.Sprintf("⚠️ Penalty - Period %d at %s", p.Period, clock)
	case strings.Contains(t, "period-start"):
		return fmt.Sprintf("🏒 Period %d Started", p.Period)
	case strings.Contains(t, "period-end"):
		return fmt.Sprintf("⏱️ Period %d Ended", p.Period)
	case strings.Contains(t, "game-end"):
		return "🏁 Game Ended"
	}
	return fmt.Sprintf("Period %d - %s: %s", p.Period, clock, playType)
}

var positionNames = map[string]string{
	nhl.PositionLeftWing:  "Left Wing",
	nhl.PositionRightWing: "Right Wing",
	nhl.PositionCenter:    "Center",
	nhl.PositionDefense:   "Defense",
	nhl.PositionGoalie:    "Goalie",
}

// FormatPosition expands a position code. Unknown codes pass through.
func FormatPosition(pos *string) string {
	if pos == nil || *pos == "" {
		return "N/A"
	}
	if name, ok := positionNames[strings.ToUpper(*pos)]; ok {
		return name
	}
	return *pos
}

func FullTeamName(t nhl.Team) string {
	if t.City != nil && *t.City != "" {
		return *t.City + " " + t.Name
	}
	return t.Name
}

// PeriodLabel gives "2nd Period", "1st Intermission", "End of Reg" or "OT".
func PeriodLabel(period int, intermission bool) string {
	switch {
	case period >= 1 && period <= 3 && !intermission:
		return humanize.Ordinal(period) + " Period"
	case period >= 1 && period <= 2:
		return humanize.Ordinal(period) + " Intermission"
	case period == 3:
		return "End of Reg"
	}
	return "OT"
}

// FormatGameTime converts the backend's UTC start time into a 12-hour
// clock in the given IANA zone. Any parse or zone failure yields "TBD".
func FormatGameTime(g nhl.Game, tz string) string {
	start, err := g.StartTime()
	if err != nil {
		return "TBD"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "TBD"
	}
	return start.In(loc).Format("3:04 PM")
}

// ZoneAbbrev returns the short zone name ("EST") for tz, or tz itself.
func ZoneAbbrev(tz string, at time.Time) string {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return tz
	}
	name, _ := at.In(loc).Zone()
	return name
}
