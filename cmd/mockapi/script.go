package main

import (
	"fmt"

	"github.com/charleschow/nhl-companion/internal/core/nhl"
)

const (
	bostonID   = 6
	montrealID = 8
)

var league = []nhl.Team{
	team(1, "New Jersey", "Devils", "NJD"),
	team(2, "New York", "Islanders", "NYI"),
	team(3, "New York", "Rangers", "NYR"),
	team(bostonID, "Boston", "Bruins", "BOS"),
	team(montrealID, "Montréal", "Canadiens", "MTL"),
	team(10, "Toronto", "Maple Leafs", "TOR"),
}

var roster = []nhl.Player{
	player(8473419, bostonID, "Brad", "Marchand", 63, nhl.PositionLeftWing),
	player(8477956, bostonID, "David", "Pastrnak", 88, nhl.PositionRightWing),
	player(8480069, bostonID, "Charlie", "McAvoy", 73, nhl.PositionDefense),
	player(8481540, montrealID, "Cole", "Caufield", 22, nhl.PositionRightWing),
	player(8480018, montrealID, "Nick", "Suzuki", 14, nhl.PositionCenter),
	player(8476875, montrealID, "Mike", "Matheson", 8, nhl.PositionDefense),
}

// frame is one step of the scripted game. play, when set, is appended to
// the feed at this step.
type frame struct {
	state      string
	period     int
	clock      string
	home, away int
	play       *scriptedPlay
	label      string
}

type scriptedPlay struct {
	kind   string
	teamID int64
	player int64
}

var script = []frame{
	{state: nhl.StatePreGame, period: 0, clock: "20:00", label: "Pre-game"},
	{state: nhl.StateLive, period: 1, clock: "20:00", play: &scriptedPlay{"period-start", 0, 0}, label: "Puck drop"},
	{state: nhl.StateLive, period: 1, clock: "17:41", play: &scriptedPlay{"faceoff", montrealID, 8480018}, label: "Faceoff"},
	{state: nhl.StateLive, period: 1, clock: "12:03", home: 1, play: &scriptedPlay{"goal", montrealID, 8481540}, label: "GOAL MTL 1-0"},
	{state: nhl.StateLive, period: 1, clock: "07:15", home: 1, play: &scriptedPlay{"penalty", bostonID, 8480069}, label: "Penalty BOS"},
	{state: nhl.StateLive, period: 1, clock: "00:00", home: 1, play: &scriptedPlay{"period-end", 0, 0}, label: "End of 1st"},
	{state: nhl.StateLive, period: 2, clock: "20:00", home: 1, play: &scriptedPlay{"period-start", 0, 0}, label: "Start of 2nd"},
	{state: nhl.StateLive, period: 2, clock: "09:55", home: 1, away: 1, play: &scriptedPlay{"goal", bostonID, 8477956}, label: "GOAL BOS 1-1"},
	{state: nhl.StateLive, period: 2, clock: "00:00", home: 1, away: 1, play: &scriptedPlay{"period-end", 0, 0}, label: "End of 2nd"},
	{state: nhl.StateCritical, period: 3, clock: "20:00", home: 1, away: 1, play: &scriptedPlay{"period-start", 0, 0}, label: "Start of 3rd"},
	{state: nhl.StateCritical, period: 3, clock: "02:10", home: 1, away: 1, play: &scriptedPlay{"shot-on-goal", montrealID, 8476875}, label: "Late shot"},
	{state: nhl.StateCritical, period: 3, clock: "00:00", home: 1, away: 1, play: &scriptedPlay{"period-end", 0, 0}, label: "End of regulation"},
	{state: nhl.StateCritical, period: 4, clock: "05:00", home: 1, away: 1, play: &scriptedPlay{"period-start", 0, 0}, label: "Overtime"},
	{state: nhl.StateCritical, period: 4, clock: "02:33", home: 1, away: 2, play: &scriptedPlay{"goal", bostonID, 8473419}, label: "OT GOAL BOS 1-2"},
	{state: nhl.StateFinal, period: 4, clock: "02:33", home: 1, away: 2, play: &scriptedPlay{"game-end", 0, 0}, label: "FINAL 1-2 OT"},
}

// detailAt builds the game and feed as of frame idx.
func detailAt(idx int) nhl.GameDetail {
	f := script[idx]
	g := nhl.Game{
		ID:             mockGameID,
		Season:         20242025,
		Type:           2,
		DateTimeUTC:    "2025-01-18T00:00:00Z",
		Venue:          nhl.Ptr("Centre Bell"),
		HomeTeamID:     montrealID,
		AwayTeamID:     bostonID,
		State:          f.state,
		HomeScore:      f.home,
		AwayScore:      f.away,
		HomeSOG:        4 + 3*idx/2,
		AwaySOG:        3 + 3*idx/2,
		HomeTeamName:   nhl.Ptr("Canadiens"),
		HomeTeamAbbrev: nhl.Ptr("MTL"),
		AwayTeamName:   nhl.Ptr("Bruins"),
		AwayTeamAbbrev: nhl.Ptr("BOS"),
	}
	if f.period > 0 {
		g.Period = nhl.Ptr(f.period)
		g.Clock = nhl.Ptr(f.clock)
	}

	plays := []nhl.Play{}
	for i := 0; i <= idx; i++ {
		sp := script[i].play
		if sp == nil {
			continue
		}
		n := int64(len(plays))
		p := nhl.Play{
			ID:            1000 + n,
			GameID:        mockGameID,
			Index:         n,
			Period:        script[i].period,
			Time:          elapsed(script[i].period, script[i].clock),
			TimeRemaining: script[i].clock,
			Type:          sp.kind,
		}
		if sp.teamID != 0 {
			p.TeamID = nhl.Ptr(sp.teamID)
		}
		if sp.player != 0 {
			p.PrimaryPlayerID = nhl.Ptr(sp.player)
		}
		plays = append(plays, p)
	}
	return nhl.GameDetail{Game: g, Plays: plays}
}

// elapsed converts a remaining clock to time played in the period.
// Regular-season overtime is five minutes.
func elapsed(period int, remaining string) string {
	length := 20 * 60
	if period > 3 {
		length = 5 * 60
	}
	var m, s int
	fmt.Sscanf(remaining, "%d:%d", &m, &s)
	left := length - (m*60 + s)
	return fmt.Sprintf("%02d:%02d", left/60, left%60)
}

func team(id int64, city, name, abbrev string) nhl.Team {
	return nhl.Team{ID: id, City: nhl.Ptr(city), Name: name, Abbrev: nhl.Ptr(abbrev), IsActive: true}
}

func player(id, teamID int64, first, last string, number int, pos string) nhl.Player {
	return nhl.Player{
		ID:        id,
		TeamID:    nhl.Ptr(teamID),
		FirstName: first,
		LastName:  last,
		Number:    nhl.Ptr(number),
		Position:  nhl.Ptr(pos),
		IsActive:  true,
	}
}
