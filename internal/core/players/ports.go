package players

import (
	"context"

	"github.com/charleschow/nhl-companion/internal/core/nhl"
)

// Fetcher loads a single player from the backend. *nhlapi.Client satisfies it.
type Fetcher interface {
	Player(ctx context.Context, playerID int64) (nhl.Player, error)
}

// Store is an optional shared second-level cache. A miss returns
// found=false with a nil error.
type Store interface {
	GetPlayer(ctx context.Context, playerID int64) (p nhl.Player, found bool, err error)
	PutPlayer(ctx context.Context, p nhl.Player) error
}
