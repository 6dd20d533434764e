package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landmarket/server/internal/models"
)

func newRedis(t *testing.T) (StatsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisPublicStats(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedis(t)

	got, err := c.GetPublicStats(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	want := models.PropertyStats{Users: 12, Listings: 4}
	require.NoError(t, c.SetPublicStats(ctx, want, time.Minute))

	got, err = c.GetPublicStats(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	mr.FastForward(2 * time.Minute)
	got, err = c.GetPublicStats(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisInvalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedis(t)

	require.NoError(t, c.SetPublicStats(ctx, models.PropertyStats{Users: 1}, time.Hour))
	assert.True(t, mr.Exists(publicStatsKey))

	require.NoError(t, c.InvalidatePublicStats(ctx))
	assert.False(t, mr.Exists(publicStatsKey))
}

func TestNewRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(context.Background(), addr, "", 0)
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	c := NewNoop()

	require.NoError(t, c.SetPublicStats(ctx, models.PropertyStats{Users: 3}, time.Minute))
	got, err := c.GetPublicStats(ctx)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.InvalidatePublicStats(ctx))
	assert.NoError(t, c.Close())
}
