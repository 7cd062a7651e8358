package travel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sad/backend/pkg/redis"
)

// Cache JSON key/value store; *redis.Client implements it.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
}

// Cached serves legs from the cache before asking the wrapped provider.
// Cache failures are logged and never fail the lookup.
type Cached struct {
	next   Provider
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCached wraps next with cache.
func NewCached(next Provider, cache Cache, ttl time.Duration, logger *zap.Logger) *Cached {
	return &Cached{next: next, cache: cache, ttl: ttl, logger: logger}
}

// CacheKey rounds both points to ~11 m so nearby lookups share an entry.
func CacheKey(from, to Point) string {
	return fmt.Sprintf("travel:leg:%.4f,%.4f:%.4f,%.4f", from.Lat, from.Lng, to.Lat, to.Lng)
}

// Leg implements Provider.
func (c *Cached) Leg(ctx context.Context, from, to Point) (Leg, error) {
	key := CacheKey(from, to)

	var leg Leg
	err := c.cache.GetJSON(ctx, key, &leg)
	if err == nil {
		leg.Source = SourceCache
		return leg, nil
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		c.logger.Warn("travel cache read failed", zap.String("key", key), zap.Error(err))
	}

	leg, err = c.next.Leg(ctx, from, to)
	if err != nil {
		return Leg{}, err
	}
	if err := c.cache.SetJSON(ctx, key, leg, c.ttl); err != nil {
		c.logger.Warn("travel cache write failed", zap.String("key", key), zap.Error(err))
	}
	return leg, nil
}

// Fallback answers with the haversine estimate when the wrapped provider fails.
type Fallback struct {
	next     Provider
	speedKMH float64
	logger   *zap.Logger
}

// NewFallback wraps next.
func NewFallback(next Provider, speedKMH float64, logger *zap.Logger) *Fallback {
	return &Fallback{next: next, speedKMH: speedKMH, logger: logger}
}

// Leg implements Provider; it never returns an error except on cancellation.
func (f *Fallback) Leg(ctx context.Context, from, to Point) (Leg, error) {
	leg, err := f.next.Leg(ctx, from, to)
	if err == nil {
		return leg, nil
	}
	if ctx.Err() != nil {
		return Leg{}, ctx.Err()
	}
	f.logger.Warn("travel provider failed, using estimate",
		zap.Float64("from_lat", from.Lat), zap.Float64("from_lng", from.Lng),
		zap.Float64("to_lat", to.Lat), zap.Float64("to_lng", to.Lng),
		zap.Error(err))
	return Estimate(from, to, f.speedKMH), nil
}
