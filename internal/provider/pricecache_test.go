package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/nevasik7/alerting/logger"

	rds "walletscope/internal/stores/redis"
)

// NoopLogger is a logger that does nothing (for testing)
type NoopLogger struct{}

func (n *NoopLogger) Debug(msg string)                                       {}
func (n *NoopLogger) Debugf(format string, args ...interface{})              {}
func (n *NoopLogger) Info(msg string)                                        {}
func (n *NoopLogger) Infof(format string, args ...interface{})               {}
func (n *NoopLogger) Warn(msg string)                                        {}
func (n *NoopLogger) Warnf(format string, args ...interface{})               {}
func (n *NoopLogger) Error(msg string)                                       {}
func (n *NoopLogger) Errorf(format string, args ...interface{})              {}
func (n *NoopLogger) Fatal(msg string)                                       {}
func (n *NoopLogger) Fatalf(format string, args ...interface{})              {}
func (n *NoopLogger) Panic(msg string)                                       {}
func (n *NoopLogger) Panicf(format string, args ...interface{})              {}
func (n *NoopLogger) WithField(key string, value interface{}) logger.Logger  { return n }
func (n *NoopLogger) WithFields(fields map[string]interface{}) logger.Logger { return n }

type countingOracle struct {
	price float64
	err   error
	calls int
}

func (c *countingOracle) USDPrice(ctx context.Context) (float64, error) {
	c.calls++
	if c.err != nil {
		return 0, c.err
	}
	return c.price, nil
}

func setupCache(t *testing.T, inner PriceOracle, ttl time.Duration) (*miniredis.Miniredis, *CachedOracle) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := &rds.Client{
		Client: goredis.NewClient(&goredis.Options{Addr: mr.Addr()}),
	}

	return mr, NewCachedOracle(&NoopLogger{}, inner, client, ttl)
}

func TestCachedOracle_MissFetchesAndStores(t *testing.T) {
	inner := &countingOracle{price: 2000}
	mr, cache := setupCache(t, inner, time.Minute)

	price, err := cache.USDPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2000.0, price)
	assert.Equal(t, 1, inner.calls)

	// quote must now sit in redis
	assert.True(t, mr.Exists(quoteKey))
}

func TestCachedOracle_HitSkipsInner(t *testing.T) {
	inner := &countingOracle{price: 2000}
	_, cache := setupCache(t, inner, time.Minute)

	for i := 0; i < 5; i++ {
		price, err := cache.USDPrice(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2000.0, price)
	}

	assert.Equal(t, 1, inner.calls, "only the first call should hit the oracle")
}

func TestCachedOracle_ExpiryRefetches(t *testing.T) {
	inner := &countingOracle{price: 2000}
	mr, cache := setupCache(t, inner, time.Second)

	_, err := cache.USDPrice(context.Background())
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = cache.USDPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedOracle_InnerErrorPropagated(t *testing.T) {
	inner := &countingOracle{err: errors.New("quote unavailable")}
	_, cache := setupCache(t, inner, time.Minute)

	_, err := cache.USDPrice(context.Background())
	assert.Error(t, err)
}

func TestCachedOracle_RedisDownFallsThrough(t *testing.T) {
	inner := &countingOracle{price: 2000}
	mr, cache := setupCache(t, inner, time.Minute)
	mr.Close()

	price, err := cache.USDPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2000.0, price)
	assert.Equal(t, 1, inner.calls)
}
