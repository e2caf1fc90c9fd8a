package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGuard(t *testing.T) {
	g := NewMemoryGuard()
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }
	ctx := context.Background()

	token, ok, err := g.AcquireLock(ctx, "booking:a", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = g.AcquireLock(ctx, "booking:a", 30*time.Second)
	assert.False(t, ok)

	require.NoError(t, g.ReleaseLock(ctx, "booking:a", "other"))
	_, ok, _ = g.AcquireLock(ctx, "booking:a", 30*time.Second)
	assert.False(t, ok, "wrong token does not release")

	require.NoError(t, g.ReleaseLock(ctx, "booking:a", token))
	_, ok, _ = g.AcquireLock(ctx, "booking:a", 30*time.Second)
	assert.True(t, ok)

	now = now.Add(31 * time.Second)
	_, ok, _ = g.AcquireLock(ctx, "booking:a", 30*time.Second)
	assert.True(t, ok, "expired lock is free")
}

func TestMemoryGuardRateLimit(t *testing.T) {
	g := NewMemoryGuard()
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := g.CheckRateLimit(ctx, "u1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, _ := g.CheckRateLimit(ctx, "u1", 3, time.Minute)
	assert.False(t, allowed)

	allowed, _ = g.CheckRateLimit(ctx, "u2", 3, time.Minute)
	assert.True(t, allowed)

	now = now.Add(time.Minute)
	allowed, _ = g.CheckRateLimit(ctx, "u1", 3, time.Minute)
	assert.True(t, allowed)
}
