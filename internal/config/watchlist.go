package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/charleschow/nhl-companion/internal/core/state/watch"
)

// WatchEntry names one game to monitor at boot, either by id or by a team
// query resolved against today's schedule.
type WatchEntry struct {
	GameID int64         `yaml:"game_id"`
	Team   string        `yaml:"team"`
	Config *watch.Config `yaml:"config"`
}

type Watchlist struct {
	Defaults *watch.Config `yaml:"defaults"`
	Games    []WatchEntry  `yaml:"games"`
}

var ErrEmptyWatchEntry = errors.New("watchlist entry needs game_id or team")

func LoadWatchlist(path string) (Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Watchlist{}, fmt.Errorf("read watchlist: %w", err)
	}

	var wl Watchlist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return Watchlist{}, fmt.Errorf("parse watchlist: %w", err)
	}

	for i, e := range wl.Games {
		if e.GameID == 0 && e.Team == "" {
			return Watchlist{}, fmt.Errorf("watchlist entry %d: %w", i, ErrEmptyWatchEntry)
		}
		if err := wl.ConfigFor(e, watch.DefaultConfig()).Validate(); err != nil {
			return Watchlist{}, fmt.Errorf("watchlist entry %d: %w", i, err)
		}
	}

	return wl, nil
}

// ConfigFor resolves the effective config for e: its own block, else the
// file defaults, else fallback.
func (wl Watchlist) ConfigFor(e WatchEntry, fallback watch.Config) watch.Config {
	switch {
	case e.Config != nil:
		return e.Config.WithDefaults()
	case wl.Defaults != nil:
		return wl.Defaults.WithDefaults()
	default:
		return fallback.WithDefaults()
	}
}
