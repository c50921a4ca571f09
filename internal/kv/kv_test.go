package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestStores(t *testing.T) {
	redisStore, _ := newRedis(t)
	stores := map[string]Store{
		"memory": NewMemory(),
		"redis":  redisStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "link_code:123456")
			require.ErrorIs(t, err, ErrNotFound)

			ok, err := store.SetNX(ctx, "link_code:123456", "user-1", time.Minute)
			require.NoError(t, err)
			require.True(t, ok)

			ok, err = store.SetNX(ctx, "link_code:123456", "user-2", time.Minute)
			require.NoError(t, err)
			require.False(t, ok)

			v, err := store.Get(ctx, "link_code:123456")
			require.NoError(t, err)
			require.Equal(t, "user-1", v)

			require.NoError(t, store.Delete(ctx, "link_code:123456"))
			_, err = store.Get(ctx, "link_code:123456")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRedisExpiry(t *testing.T) {
	store, mr := newRedis(t)
	ctx := context.Background()

	ok, err := store.SetNX(ctx, "k", "v", 5*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(6 * time.Minute)

	_, err = store.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNewRedisBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "not a url")
	require.Error(t, err)
}
