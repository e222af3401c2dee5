package players

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/nhl-companion/internal/adapters/outbound/nhlapi"
	"github.com/charleschow/nhl-companion/internal/core/nhl"
)

type fakeFetcher struct {
	calls   atomic.Int64
	delay   time.Duration
	missing map[int64]bool
}

func (f *fakeFetcher) Player(ctx context.Context, id int64) (nhl.Player, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.missing[id] {
		return nhl.Player{}, &nhlapi.APIError{Kind: nhlapi.ErrNotFound, StatusCode: 404, Path: "/api/players"}
	}
	return nhl.Player{ID: id, FirstName: "P", LastName: "Layer"}, nil
}

type memStore struct {
	mu   sync.Mutex
	data map[int64]nhl.Player
	puts int
	fail bool
}

func (s *memStore) GetPlayer(_ context.Context, id int64) (nhl.Player, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nhl.Player{}, false, errors.New("redis down")
	}
	p, ok := s.data[id]
	return p, ok, nil
}

func (s *memStore) PutPlayer(_ context.Context, p nhl.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.fail {
		return errors.New("redis down")
	}
	s.data[p.ID] = p
	return nil
}

func TestResolveCachesAfterFirstFetch(t *testing.T) {
	f := &fakeFetcher{}
	r := NewResolver(f, nil)

	p1, err := r.Resolve(context.Background(), 8478)
	require.NoError(t, err)
	p2, err := r.Resolve(context.Background(), 8478)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, int64(1), f.calls.Load(), "second resolve must not fetch")
	_, ok := r.Cached(8478)
	assert.True(t, ok)
}

func TestConcurrentResolveSharesFetch(t *testing.T) {
	f := &fakeFetcher{delay: 50 * time.Millisecond}
	r := NewResolver(f, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(context.Background(), 42)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), f.calls.Load())
	assert.Equal(t, 1, r.Len())
}

func TestResolveNotFound(t *testing.T) {
	f := &fakeFetcher{missing: map[int64]bool{9: true}}
	r := NewResolver(f, nil)

	_, err := r.Resolve(context.Background(), 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, nhlapi.ErrNotFound)
	assert.Equal(t, 0, r.Len())
}

func TestResolveMissingJoinsErrors(t *testing.T) {
	f := &fakeFetcher{missing: map[int64]bool{3: true}}
	r := NewResolver(f, nil)
	_, _ = r.Resolve(context.Background(), 1)
	f.calls.Store(0)

	err := r.ResolveMissing(context.Background(), []int64{1, 2, 2, 3, 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, nhlapi.ErrNotFound)

	assert.Equal(t, int64(3), f.calls.Load(), "ids 2, 3, 4 fetched once each")
	snap := r.Snapshot()
	assert.Len(t, snap, 3)
	assert.NotContains(t, snap, int64(3))

	assert.Equal(t, []int64{3, 5}, r.Missing([]int64{1, 3, 5, 3}))
}

func TestSnapshotIsCopy(t *testing.T) {
	r := NewResolver(&fakeFetcher{}, nil)
	_, _ = r.Resolve(context.Background(), 1)

	snap := r.Snapshot()
	delete(snap, 1)
	_, ok := r.Cached(1)
	assert.True(t, ok)
}

func TestStoreSecondLevel(t *testing.T) {
	store := &memStore{data: map[int64]nhl.Player{7: {ID: 7, LastName: "Stored"}}}
	f := &fakeFetcher{}
	r := NewResolver(f, store)

	p, err := r.Resolve(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Stored", p.LastName)
	assert.Equal(t, int64(0), f.calls.Load())

	_, err = r.Resolve(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.calls.Load())
	assert.Equal(t, 1, store.puts)
	assert.Contains(t, store.data, int64(8))
}

func TestStoreFailureFallsBackToBackend(t *testing.T) {
	store := &memStore{data: map[int64]nhl.Player{}, fail: true}
	f := &fakeFetcher{}
	r := NewResolver(f, store)

	_, err := r.Resolve(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.calls.Load())
}
