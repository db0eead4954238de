package crawler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"sjsage522/patentworker/logger"
	"sjsage522/patentworker/services/cache"
)

// CachedDetailSource serves detail lookups from the cache when possible.
// Only successful lookups are stored.
type CachedDetailSource struct {
	next  DetailSource
	cache cache.CacheService
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedDetailSource decorates next with a cache entry per registration number.
func NewCachedDetailSource(next DetailSource, cacheSvc cache.CacheService, ttl time.Duration) *CachedDetailSource {
	return &CachedDetailSource{
		next:  next,
		cache: cacheSvc,
		ttl:   ttl,
		log:   logger.ForCache(),
	}
}

func detailCacheKey(regNo string) string {
	return "detail:" + regNo
}

// Lookup implements DetailSource.
func (c *CachedDetailSource) Lookup(ctx context.Context, registrationNumber string) (*DetailInfoRecord, error) {
	detail, _, err := c.LookupCached(ctx, registrationNumber)
	return detail, err
}

// LookupCached is Lookup that also reports whether the result came from the
// cache, in which case the portal was not contacted.
func (c *CachedDetailSource) LookupCached(ctx context.Context, registrationNumber string) (*DetailInfoRecord, bool, error) {
	key, err := normalizeRegistrationNumber(registrationNumber)
	if err != nil {
		detail, err := c.next.Lookup(ctx, registrationNumber)
		return detail, false, err
	}
	key = detailCacheKey(key)

	if data, err := c.cache.Get(key); err == nil {
		var detail DetailInfoRecord
		if err := json.Unmarshal(data, &detail); err == nil {
			c.log.Debug().Str("key", key).Msg("detail cache hit")
			return &detail, true, nil
		}
		c.log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
		_ = c.cache.Delete(key)
	} else if !stderrors.Is(err, cache.ErrMiss) {
		c.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	detail, err := c.next.Lookup(ctx, registrationNumber)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(detail); err == nil {
		if err := c.cache.Set(key, data, c.ttl); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return detail, false, nil
}
