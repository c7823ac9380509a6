package redisguard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGuard(t *testing.T) (*Guard, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	g, err := NewGuard("redis://"+s.Addr(), 30*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g, s
}

func TestGuard_AcquireOnce(t *testing.T) {
	g, s := setupGuard(t)
	ctx := context.Background()

	ok, err := g.Acquire(ctx, "clinical:u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Acquire(ctx, "clinical:u1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, s.Exists("ack:clinical:u1"))
	assert.Equal(t, 30*time.Second, s.TTL("ack:clinical:u1"))
}

func TestGuard_ReleaseAllowsReacquire(t *testing.T) {
	g, s := setupGuard(t)
	ctx := context.Background()

	_, err := g.Acquire(ctx, "resident:u1")
	require.NoError(t, err)
	require.NoError(t, g.Release(ctx, "resident:u1"))
	assert.False(t, s.Exists("ack:resident:u1"))

	ok, err := g.Acquire(ctx, "resident:u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGuard_ExpiresAfterTTL(t *testing.T) {
	g, s := setupGuard(t)
	ctx := context.Background()

	_, err := g.Acquire(ctx, "governance:u1")
	require.NoError(t, err)
	s.FastForward(31 * time.Second)

	ok, err := g.Acquire(ctx, "governance:u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGuard_ReleaseMissingKeyIsNoError(t *testing.T) {
	g, _ := setupGuard(t)
	assert.NoError(t, g.Release(context.Background(), "environment:nobody"))
}

func TestGuard_RedisDownIsError(t *testing.T) {
	g, s := setupGuard(t)
	s.Close()

	_, err := g.Acquire(context.Background(), "carefile:u1")
	assert.ErrorContains(t, err, "acquire ack guard")
}

func TestNewGuard_BadURL(t *testing.T) {
	_, err := NewGuard("not-a-url", time.Second)
	assert.ErrorContains(t, err, "parse redis url")
}
