package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/charleschow/nhl-companion/internal/core/nhl"
)

// PlayerTTL bounds how long a shared player entry lives. Rosters change
// between seasons, not between games.
const PlayerTTL = 7 * 24 * time.Hour

// PlayerCache is a Redis-backed second-level player store shared between
// companion instances.
type PlayerCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPlayerCache(client *redis.Client, ttl time.Duration) *PlayerCache {
	if ttl <= 0 {
		ttl = PlayerTTL
	}
	return &PlayerCache{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func playerKey(id int64) string {
	return fmt.Sprintf("nhl:player:%d", id)
}

func (c *PlayerCache) GetPlayer(ctx context.Context, id int64) (nhl.Player, bool, error) {
	data, err := c.client.Get(ctx, playerKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nhl.Player{}, false, nil
	}
	if err != nil {
		return nhl.Player{}, false, fmt.Errorf("get %s: %w", playerKey(id), err)
	}

	var p nhl.Player
	if err := json.Unmarshal(data, &p); err != nil {
		return nhl.Player{}, false, fmt.Errorf("unmarshaling player: %w", err)
	}
	return p, true, nil
}

func (c *PlayerCache) PutPlayer(ctx context.Context, p nhl.Player) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling player: %w", err)
	}
	// NX keeps the first writer's entry; cached players are never overwritten.
	return c.client.SetNX(ctx, playerKey(p.ID), data, c.ttl).Err()
}
