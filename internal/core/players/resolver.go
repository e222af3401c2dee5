package players

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/charleschow/nhl-companion/internal/core/nhl"
	"github.com/charleschow/nhl-companion/internal/telemetry"
)

// Resolver maps player ids to players. Entries are never evicted or
// overwritten once cached, and concurrent lookups of the same uncached id
// share one backend fetch.
type Resolver struct {
	fetcher Fetcher
	store   Store // optional

	mu      sync.RWMutex
	cache   map[int64]nhl.Player
	sfGroup singleflight.Group
}

func NewResolver(fetcher Fetcher, store Store) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		store:   store,
		cache:   make(map[int64]nhl.Player),
	}
}

// Cached returns a player without touching the network.
func (r *Resolver) Cached(id int64) (nhl.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.cache[id]
	return p, ok
}

// Resolve returns the player for id, consulting the memory cache, then the
// shared store, then the backend. Errors carry the backend client's
// classes (not found, network).
func (r *Resolver) Resolve(ctx context.Context, id int64) (nhl.Player, error) {
	if p, ok := r.Cached(id); ok {
		telemetry.Metrics.PlayerCacheHits.Inc()
		return p, nil
	}

	v, err, _ := r.sfGroup.Do(strconv.FormatInt(id, 10), func() (any, error) {
		// A sibling may have filled the cache between our check and Do.
		if p, ok := r.Cached(id); ok {
			return p, nil
		}
		return r.load(ctx, id)
	})
	if err != nil {
		return nhl.Player{}, err
	}
	return v.(nhl.Player), nil
}

func (r *Resolver) load(ctx context.Context, id int64) (nhl.Player, error) {
	if r.store != nil {
		p, found, err := r.store.GetPlayer(ctx, id)
		switch {
		case err != nil:
			telemetry.Warnf("players: store lookup %d: %v", id, err)
		case found:
			telemetry.Metrics.PlayerCacheHits.Inc()
			return r.insert(p), nil
		}
	}

	telemetry.Metrics.PlayerFetches.Inc()
	p, err := r.fetcher.Player(ctx, id)
	if err != nil {
		telemetry.Metrics.PlayerFetchErrors.Inc()
		return nhl.Player{}, fmt.Errorf("resolve player %d: %w", id, err)
	}
	p = r.insert(p)

	if r.store != nil {
		if err := r.store.PutPlayer(ctx, p); err != nil {
			telemetry.Warnf("players: store write %d: %v", id, err)
		}
	}
	return p, nil
}

// insert adds p unless an entry already exists, returning the cached value.
func (r *Resolver) insert(p nhl.Player) nhl.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.cache[p.ID]; ok {
		return existing
	}
	r.cache[p.ID] = p
	return p
}

// ResolveMissing resolves every id not yet cached, concurrently. Failures
// are logged and never cancel siblings; they are returned joined.
func (r *Resolver) ResolveMissing(ctx context.Context, ids []int64) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
		seen = make(map[int64]struct{}, len(ids))
	)
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := r.Cached(id); ok {
			continue
		}
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := r.Resolve(ctx, id); err != nil {
				telemetry.Warnf("players: %v", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Missing filters ids down to those not yet cached, preserving order and
// dropping duplicates.
func (r *Resolver) Missing(ids []int64) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []int64
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := r.cache[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Snapshot returns a copy of the cache safe to hand to renderers.
func (r *Resolver) Snapshot() map[int64]nhl.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.cache)
}

func (r *Resolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
