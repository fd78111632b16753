package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/minibank/minibank/internal/domain"
	"github.com/minibank/minibank/internal/logging"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const cacheKeyPrefix = "rate:v1:"

type source interface {
	GetRate(ctx context.Context, currency domain.Currency) (decimal.Decimal, error)
}

// CachedSource caches quotes from the upstream source in Redis with a TTL.
// Cache failures are logged and fall through to the origin; a stale or
// unreachable cache must never fail a transfer on its own.
type CachedSource struct {
	origin source
	cache  *redis.Client
	ttl    time.Duration
}

func NewCachedSource(origin source, cache *redis.Client, ttl time.Duration) *CachedSource {
	return &CachedSource{origin: origin, cache: cache, ttl: ttl}
}

func (s *CachedSource) GetRate(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	if currency == domain.BaseCurrency {
		return decimal.NewFromInt(1), nil
	}

	log := logging.FromContext(ctx)
	key := cacheKeyPrefix + string(currency)

	cached, err := s.cache.Get(ctx, key).Result()
	if err == nil {
		rate, parseErr := decimal.NewFromString(cached)
		if parseErr == nil {
			return rate, nil
		}
		log.Warn("discarding malformed cached rate", "currency", currency, "value", cached)
	} else if err != redis.Nil {
		log.Warn("rate cache lookup failed", "currency", currency, "error", err)
	}

	rate, err := s.origin.GetRate(ctx, currency)
	if err != nil {
		return decimal.Zero, fmt.Errorf("GetRate: %w", err)
	}

	if err := s.cache.Set(ctx, key, rate.String(), s.ttl).Err(); err != nil {
		log.Warn("rate cache store failed", "currency", currency, "error", err)
	}

	return rate, nil
}
