package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tekrabyte/tekraswap/utils/logger"
)

func TestMain(m *testing.M) {
	logger.Init("")
	os.Exit(m.Run())
}

func TestRedisCacheDownDegradesToMiss(t *testing.T) {
	// Zero-value config points at a redis that is not running. Reads
	// must come back as misses and writes must be dropped, not kill
	// the caller.
	c := NewRedisCache()

	_, err := c.Get(context.Background(), "meta:helius:solana:abc")
	assert.ErrorIs(t, err, ErrMiss)

	err = c.Set(context.Background(), "meta:helius:solana:abc", `{"symbol":"SOL"}`, time.Minute)
	assert.NoError(t, err)

	_, err = c.Get(context.Background(), "meta:helius:solana:abc")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()

	_, err := c.Get(context.Background(), "rate:usd-idr")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(context.Background(), "rate:usd-idr", "15800", time.Minute))

	val, err := c.Get(context.Background(), "rate:usd-idr")
	require.NoError(t, err)
	assert.Equal(t, "15800", val)
}

func TestMemoryCacheExpiredEntryIsMiss(t *testing.T) {
	c := NewMemoryCache()
	require.NoError(t, c.Set(context.Background(), "stale", "v", -time.Second))

	_, err := c.Get(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrMiss)
}
