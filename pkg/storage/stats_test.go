package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementStat(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, idx.IncrementStat(ctx, StatSearchCount))
	}

	v, err := idx.Stat(ctx, StatSearchCount)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	require.NoError(t, idx.IncrementStat(ctx, "custom"), "new key")
	v, err = idx.Stat(ctx, "custom")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v, "new counter starts at 1")

	v, err = idx.Stat(ctx, "unknown")
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestLogUser(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	isNew, err := idx.LogUser(ctx, 42)
	require.NoError(t, err)
	assert.True(t, isNew, "first sighting is new")

	isNew, err = idx.LogUser(ctx, 42)
	require.NoError(t, err)
	assert.False(t, isNew, "repeat sighting is not new")

	_, err = idx.LogUser(ctx, 7)
	require.NoError(t, err)

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats[StatUserCount])
	assert.Contains(t, stats, StatStartUsage, "seeded start_usage counter")
}
