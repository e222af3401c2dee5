package teams

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/charleschow/nhl-companion/internal/core/classify"
	"github.com/charleschow/nhl-companion/internal/core/nhl"
)

// Find resolves free text ("Leafs", "TOR", "montréal canadiens") to an
// active team. Exact abbreviation, name, city and full-name matches win;
// otherwise the closest fuzzy match is taken.
func Find(query string, teams []nhl.Team) (nhl.Team, bool) {
	q := Normalize(query)
	if q == "" {
		return nhl.Team{}, false
	}

	for _, t := range teams {
		if t.Abbrev != nil && strings.EqualFold(*t.Abbrev, strings.TrimSpace(query)) {
			return t, true
		}
	}

	targets := make([]string, 0, len(teams)*2)
	owner := make(map[string]nhl.Team, len(teams)*2)
	add := func(key string, t nhl.Team) {
		if key == "" {
			return
		}
		if _, dup := owner[key]; dup {
			return
		}
		owner[key] = t
		targets = append(targets, key)
	}
	for _, t := range teams {
		name := Normalize(t.Name)
		add(name, t)
		if t.City != nil {
			city := Normalize(*t.City)
			add(city, t)
			add(collapseWhitespace(city+" "+name), t)
		}
	}

	if t, ok := owner[q]; ok {
		return t, true
	}

	ranks := fuzzy.RankFind(q, targets)
	if len(ranks) == 0 {
		return nhl.Team{}, false
	}
	sort.Sort(ranks)
	return owner[ranks[0].Target], true
}

// FindGame resolves a team query and returns that team's game from games.
func FindGame(query string, teams []nhl.Team, games []nhl.Game) (nhl.Team, nhl.Game, bool) {
	t, ok := Find(query, teams)
	if !ok {
		return nhl.Team{}, nhl.Game{}, false
	}
	g, ok := classify.FindTeamGame(t.ID, games)
	return t, g, ok
}
