package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*TagStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTagStore(client, time.Minute), mr
}

func TestFetchJSONPopulatesOnce(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return map[string]int{"n": 42}, nil
	}

	var got map[string]int
	require.NoError(t, store.FetchJSON(ctx, "k1", []string{"reports"}, &got, loader))
	require.Equal(t, 42, got["n"])
	require.Equal(t, 1, calls)

	got = nil
	require.NoError(t, store.FetchJSON(ctx, "k1", []string{"reports"}, &got, loader))
	require.Equal(t, 42, got["n"])
	require.Equal(t, 1, calls, "second fetch must hit the cache")
}

func TestInvalidateEvictsTaggedKeys(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}

	var n int
	require.NoError(t, store.FetchJSON(ctx, "a", []string{"reports", "low-stock"}, &n, loader))
	require.NoError(t, store.FetchJSON(ctx, "b", []string{"reports"}, &n, loader))
	require.Equal(t, 2, calls)

	require.NoError(t, store.Invalidate(ctx, "reports"))

	require.NoError(t, store.FetchJSON(ctx, "a", []string{"reports"}, &n, loader))
	require.NoError(t, store.FetchJSON(ctx, "b", []string{"reports"}, &n, loader))
	require.Equal(t, 4, calls, "both keys must recompute after invalidation")
}

func TestInvalidateSingleTagLeavesOthers(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}

	var n int
	require.NoError(t, store.FetchJSON(ctx, "a", []string{"low-stock"}, &n, loader))
	require.NoError(t, store.FetchJSON(ctx, "b", []string{"valuation"}, &n, loader))

	require.NoError(t, store.Invalidate(ctx, "low-stock"))

	require.NoError(t, store.FetchJSON(ctx, "b", []string{"valuation"}, &n, loader))
	require.Equal(t, 2, calls, "untouched tag must stay cached")

	require.NoError(t, store.FetchJSON(ctx, "a", []string{"low-stock"}, &n, loader))
	require.Equal(t, 3, calls)
}

func TestTTLExpiryForcesRecompute(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}

	var n int
	require.NoError(t, store.FetchJSON(ctx, "a", []string{"reports"}, &n, loader))
	mr.FastForward(2 * time.Minute)
	require.NoError(t, store.FetchJSON(ctx, "a", []string{"reports"}, &n, loader))
	require.Equal(t, 2, calls)
}

func TestNilStorePassthrough(t *testing.T) {
	var store *TagStore
	var n int
	require.NoError(t, store.FetchJSON(context.Background(), "a", nil, &n, func(context.Context) (any, error) {
		return 7, nil
	}))
	require.Equal(t, 7, n)
	require.NoError(t, store.Invalidate(context.Background(), "reports"))
}
