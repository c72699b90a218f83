package provider

import (
	"context"
	"time"

	"gitlab.com/nevasik7/alerting/logger"

	rds "walletscope/internal/stores/redis"
)

const quoteKey = "quote:eth_usd"

// CachedOracle fronts a PriceOracle with a short-TTL redis cache so that
// polling many wallets does not turn into one oracle request per scan.
// Cache failures fall through to the inner oracle.
type CachedOracle struct {
	log   logger.Logger
	inner PriceOracle
	rdb   *rds.Client
	ttl   time.Duration
}

func NewCachedOracle(log logger.Logger, inner PriceOracle, rdb *rds.Client, ttl time.Duration) *CachedOracle {
	return &CachedOracle{log: log, inner: inner, rdb: rdb, ttl: ttl}
}

func (c *CachedOracle) USDPrice(ctx context.Context) (float64, error) {
	key := c.rdb.Key(quoteKey)

	if price, err := c.rdb.Get(ctx, key).Float64(); err == nil && price > 0 {
		return price, nil
	}

	price, err := c.inner.USDPrice(ctx)
	if err != nil {
		return 0, err
	}

	if err := c.rdb.Set(ctx, key, price, c.ttl).Err(); err != nil {
		c.log.Errorf("Failed to cache price quote: %v", err)
	}

	return price, nil
}
