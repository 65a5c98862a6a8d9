package oauth_test

import (
	"context"
	"testing"
	"time"

	"folio/internal/oauth"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStateStore(t *testing.T, ttl time.Duration) (*oauth.RedisStateStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store, err := oauth.NewRedisStateStore("redis://"+mr.Addr(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestRedisStateStore_ConsumeOnce(t *testing.T) {
	store, mr := setupRedisStateStore(t, time.Minute)
	ctx := context.Background()

	state := oauth.NewState()
	require.NoError(t, store.Save(ctx, state))
	assert.True(t, mr.Exists("oauth_state:"+state))

	assert.NoError(t, store.Consume(ctx, state))
	assert.ErrorIs(t, store.Consume(ctx, state), oauth.ErrStateNotFound)
}

func TestRedisStateStore_Expires(t *testing.T) {
	store, mr := setupRedisStateStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1"))
	mr.FastForward(2 * time.Minute)

	assert.ErrorIs(t, store.Consume(ctx, "s1"), oauth.ErrStateNotFound)
}

func TestRedisStateStore_UnknownState(t *testing.T) {
	store, _ := setupRedisStateStore(t, time.Minute)
	assert.ErrorIs(t, store.Consume(context.Background(), "never-issued"), oauth.ErrStateNotFound)
}

func TestNewRedisStateStore_BadURL(t *testing.T) {
	_, err := oauth.NewRedisStateStore("not a url", time.Minute)
	assert.Error(t, err)
}

func TestLRUStateStore(t *testing.T) {
	store := oauth.NewLRUStateStore(10, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1"))
	assert.NoError(t, store.Consume(ctx, "s1"))
	assert.ErrorIs(t, store.Consume(ctx, "s1"), oauth.ErrStateNotFound)
	assert.ErrorIs(t, store.Consume(ctx, "s2"), oauth.ErrStateNotFound)
	assert.NoError(t, store.Close())
}

func TestLRUStateStore_Expires(t *testing.T) {
	store := oauth.NewLRUStateStore(10, 20*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1"))
	time.Sleep(60 * time.Millisecond)

	assert.ErrorIs(t, store.Consume(ctx, "s1"), oauth.ErrStateNotFound)
}

func TestNewState_Unique(t *testing.T) {
	assert.NotEqual(t, oauth.NewState(), oauth.NewState())
}
