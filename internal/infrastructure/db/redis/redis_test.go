package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestClientCache_RoundTrip(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewClientCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)

	in := []*domain.Client{
		{ID: "c2", NomCommercial: "Nour"},
		{ID: "c1", NomCommercial: "Atlas", Credentials: domain.Credentials{MotDePasseDGI: "enc:v1:abc"}},
	}
	v, err := cache.Version(ctx)
	require.NoError(t, err)
	stored, err := cache.Fill(ctx, v, in)
	require.NoError(t, err)
	require.True(t, stored)

	got, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"c2", "c1"}, []string{got[0].ID, got[1].ID})
	assert.Equal(t, "enc:v1:abc", got[1].Credentials.MotDePasseDGI)

	require.NoError(t, cache.Invalidate(ctx))
	_, ok, _ = cache.Get(ctx)
	assert.False(t, ok)

	v, err = cache.Version(ctx)
	require.NoError(t, err)
	stored, err = cache.Fill(ctx, v, in)
	require.NoError(t, err)
	require.True(t, stored)
	mr.FastForward(2 * time.Minute)
	_, ok, _ = cache.Get(ctx)
	assert.False(t, ok, "entry must expire")
}

func TestClientCache_FillAfterInvalidateIsDropped(t *testing.T) {
	client, _ := newTestClient(t)
	// Two handles on the same server stand for two service instances.
	reader := NewClientCache(client, time.Minute)
	writer := NewClientCache(client, time.Minute)
	ctx := context.Background()

	v, err := reader.Version(ctx)
	require.NoError(t, err)
	stale := []*domain.Client{{ID: "c1", NomCommercial: "Old"}}

	require.NoError(t, writer.Invalidate(ctx))

	stored, err := reader.Fill(ctx, v, stale)
	require.NoError(t, err)
	assert.False(t, stored, "a list read before the write must not be cached")
	_, ok, err := reader.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	next, err := reader.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, v+1, next)
	stored, err = reader.Fill(ctx, next, []*domain.Client{{ID: "c1", NomCommercial: "New"}})
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestClientCache_UnreachableIsTransportError(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewClientCache(client, time.Minute)
	mr.Close()

	assert.ErrorIs(t, cache.Invalidate(context.Background()), domain.ErrTransport)
	_, err := cache.Version(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestMutationLock(t *testing.T) {
	client, mr := newTestClient(t)
	lock := NewMutationLock(client, 10*time.Second, zerolog.Nop())
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "client:c1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:client:c1"))

	_, err = lock.Acquire(ctx, "client:c1")
	assert.ErrorIs(t, err, domain.ErrMutationInFlight)

	other, err := lock.Acquire(ctx, "client:c2")
	require.NoError(t, err)
	other()

	release()
	assert.False(t, mr.Exists("lock:client:c1"))

	again, err := lock.Acquire(ctx, "client:c1")
	require.NoError(t, err)
	again()
}

func TestMutationLock_ReleaseKeepsForeignLock(t *testing.T) {
	client, mr := newTestClient(t)
	lock := NewMutationLock(client, time.Second, zerolog.Nop())
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "client:c1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	next, err := lock.Acquire(ctx, "client:c1")
	require.NoError(t, err, "expired lock must be acquirable")

	release()
	assert.True(t, mr.Exists("lock:client:c1"), "stale holder must not delete the new lock")
	next()
}

func TestSessionStore(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewSessionStore(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = store.IsRevoked(ctx, "jti-2")
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists("session:revoked:jti-old"), "already expired tokens need no entry")

	at := time.UnixMilli(1_700_000_000_250).UTC()
	require.NoError(t, store.RevokeUser(ctx, "u1", at))
	got, err := store.RevokedBefore(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.Equal(at))

	none, err := store.RevokedBefore(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, none.IsZero())
}

func TestConnect_AcceptsURL(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("greeting", "ok"))

	client, err := Connect(context.Background(), Config{Addr: "redis://" + mr.Addr() + "/0"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	v, err := client.Get(context.Background(), "greeting").Result()
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestConnect_FailsWithoutServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
