package rediscache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/nhl-companion/internal/core/nhl"
)

func TestPlayerKey(t *testing.T) {
	assert.Equal(t, "nhl:player:8478402", playerKey(8478402))
}

// Requires a reachable Redis, e.g. REDIS_TEST_URL=redis://localhost:6379/15.
func TestPlayerCacheAgainstRedis(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	id := time.Now().UnixNano()
	t.Cleanup(func() { client.Del(ctx, playerKey(id)) })

	c := NewPlayerCache(client, time.Minute)
	_, found, err := c.GetPlayer(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.PutPlayer(ctx, nhl.Player{ID: id, FirstName: "Connor", LastName: "McDavid", Number: nhl.Ptr(97)}))
	require.NoError(t, c.PutPlayer(ctx, nhl.Player{ID: id, FirstName: "Someone", LastName: "Else"}))

	p, found, err := c.GetPlayer(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Connor McDavid", p.FullName())
	assert.Equal(t, 97, *p.Number)

	ttl, err := client.TTL(ctx, playerKey(id)).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestConnectRejectsBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "not-a-url")
	assert.ErrorContains(t, err, "parse redis url")
}
