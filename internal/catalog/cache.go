package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"moduscap-be/internal/logger"
	"moduscap-be/internal/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OptionFinder resolves a single option by code, returning nil, nil when it does not exist.
type OptionFinder interface {
	FindOptionByCode(ctx context.Context, code string) (*ProductOption, error)
}

// CachedOptionFinder is a read-through Redis cache in front of an OptionFinder.
// Redis failures are logged and fall through to the wrapped finder.
type CachedOptionFinder struct {
	next   OptionFinder
	client redis.Cmdable
	ttl    time.Duration
	hits   *metrics.Counter
	misses *metrics.Counter
}

func NewCachedOptionFinder(next OptionFinder, client redis.Cmdable, ttl time.Duration, reg *metrics.Registry) *CachedOptionFinder {
	return &CachedOptionFinder{
		next:   next,
		client: client,
		ttl:    ttl,
		hits:   reg.Counter(metrics.OptionCacheHits),
		misses: reg.Counter(metrics.OptionCacheMisses),
	}
}

func optionKey(code string) string {
	return "product_option:" + code
}

func (c *CachedOptionFinder) FindOptionByCode(ctx context.Context, code string) (*ProductOption, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "cache"), zap.String("code", code))
	key := optionKey(code)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var o ProductOption
		if err := json.Unmarshal(data, &o); err != nil {
			log.Warn("option cache unmarshal failed", zap.Error(err))
		} else if o.Code != code {
			log.Warn("option cache code mismatch", zap.String("cached_code", o.Code))
			if err := c.client.Del(ctx, key).Err(); err != nil {
				log.Warn("option cache del failed", zap.Error(err))
			}
		} else {
			c.hits.Inc()
			return &o, nil
		}
	case errors.Is(err, redis.Nil):
	default:
		log.Warn("option cache get failed", zap.Error(err))
	}

	c.misses.Inc()
	o, err := c.next.FindOptionByCode(ctx, code)
	if err != nil || o == nil {
		return o, err
	}

	if data, err := json.Marshal(o); err != nil {
		log.Warn("option cache marshal failed", zap.Error(err))
	} else if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Warn("option cache set failed", zap.Error(err))
	}

	return o, nil
}

// Invalidate drops the cached entry for code.
func (c *CachedOptionFinder) Invalidate(ctx context.Context, code string) error {
	return c.client.Del(ctx, optionKey(code)).Err()
}
