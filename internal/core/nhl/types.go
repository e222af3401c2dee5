package nhl

import (
	"strings"
	"time"
)

// Game state codes as delivered by the backend.
const (
	StatePreGame  = "PRE"
	StateFuture   = "FUT"
	StateLive     = "LIVE"
	StateCritical = "CRIT"
	StateFinal    = "FINAL"
	StateOff      = "OFF"
)

// GameStatus is the coarse classification used by overview and watch views.
type GameStatus string

const (
	StatusLive      GameStatus = "live"
	StatusUpcoming  GameStatus = "upcoming"
	StatusCompleted GameStatus = "completed"
	StatusNone      GameStatus = "none"
)

// Player position codes.
const (
	PositionLeftWing  = "L"
	PositionRightWing = "R"
	PositionCenter    = "C"
	PositionDefense   = "D"
	PositionGoalie    = "G"
)

type Team struct {
	ID       int64   `json:"teamId"`
	Name     string  `json:"teamName"`
	City     *string `json:"teamCity"`
	Abbrev   *string `json:"teamAbbrev"`
	IsActive bool    `json:"teamIsActive"`
	LogoURL  *string `json:"teamLogoUrl"`
}

type Player struct {
	ID          int64   `json:"playerId"`
	TeamID      *int64  `json:"playerTeamId"`
	FirstName   string  `json:"playerFirstName"`
	LastName    string  `json:"playerLastName"`
	Number      *int    `json:"playerNumber"`
	Position    *string `json:"playerPosition"`
	HeadshotURL *string `json:"playerHeadshotUrl"`
	HomeCity    *string `json:"playerHomeCity"`
	HomeCountry *string `json:"playerHomeCountry"`
	IsActive    bool    `json:"playerIsActive"`
}

func (p Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Game is one backend snapshot of a game. Score, state, period, clock and
// shots change over the life of a live game; every poll replaces it whole.
type Game struct {
	ID             int64   `json:"gameId"`
	Season         int     `json:"gameSeason"`
	Type           int     `json:"gameType"`
	DateTimeUTC    string  `json:"gameDateTimeUtc"`
	Venue          *string `json:"gameVenue"`
	HomeTeamID     int64   `json:"gameHomeTeamId"`
	AwayTeamID     int64   `json:"gameAwayTeamId"`
	State          string  `json:"gameState"`
	Period         *int    `json:"gamePeriod"`
	Clock          *string `json:"gameClock"`
	HomeScore      int     `json:"gameHomeScore"`
	AwayScore      int     `json:"gameAwayScore"`
	HomeSOG        int     `json:"gameHomeSOG"`
	AwaySOG        int     `json:"gameAwaySOG"`
	HomeTeamName   *string `json:"homeTeamName"`
	HomeTeamAbbrev *string `json:"homeTeamAbbrev"`
	AwayTeamName   *string `json:"awayTeamName"`
	AwayTeamAbbrev *string `json:"awayTeamAbbrev"`
}

// StartTime parses the scheduled start. The backend sometimes omits the
// zone suffix; those values are UTC.
func (g Game) StartTime() (time.Time, error) {
	s := strings.TrimSpace(g.DateTimeUTC)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func (g Game) InvolvesTeam(teamID int64) bool {
	return g.HomeTeamID == teamID || g.AwayTeamID == teamID
}

// Play is one entry of the append-only play-by-play feed. Index is the
// ordering key within a game.
type Play struct {
	ID                int64    `json:"playId"`
	GameID            int64    `json:"playGameId"`
	Index             int64    `json:"playIndex"`
	TeamID            *int64   `json:"playTeamId"`
	PrimaryPlayerID   *int64   `json:"playPrimaryPlayerId"`
	LosingPlayerID    *int64   `json:"playLosingPlayerId"`
	SecondaryPlayerID *int64   `json:"playSecondaryPlayerId"`
	TertiaryPlayerID  *int64   `json:"playTertiaryPlayerId"`
	Period            int      `json:"playPeriod"`
	Time              string   `json:"playTime"`
	TimeRemaining     string   `json:"playTimeReamaining"`
	Type              string   `json:"playType"`
	Zone              *int     `json:"playZone"`
	XCoord            *float64 `json:"playXCoord"`
	YCoord            *float64 `json:"playYCoord"`
}

type GameDetail struct {
	Game  Game   `json:"game"`
	Plays []Play `json:"plays"`
}

// TeamWithStatus is a team annotated with its game today, if any.
type TeamWithStatus struct {
	Team
	GameStatus GameStatus `json:"gameStatus"`
	Game       *Game      `json:"game,omitempty"`
}

// MaxPlayIndex returns the highest play index, or -1 for an empty feed.
func MaxPlayIndex(plays []Play) int64 {
	max := int64(-1)
	for _, p := range plays {
		if p.Index > max {
			max = p.Index
		}
	}
	return max
}

// MaxPlayID returns the highest play id, or 0 for an empty feed.
func MaxPlayID(plays []Play) int64 {
	var max int64
	for _, p := range plays {
		if p.ID > max {
			max = p.ID
		}
	}
	return max
}

func Ptr[T any](v T) *T { return &v }
