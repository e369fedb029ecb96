package usecase

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"culture-match/internal/domain/matching"

	"github.com/google/uuid"
)

const (
	AllMatchesPrefix = "match:"
	DefaultCacheTTL  = 24 * time.Hour
)

// CacheStore is any TTL-capable key/blob store.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
	TTL(ctx context.Context, key string) (time.Duration, bool, error)
}

func MatchCacheKey(seekerID uuid.UUID, fingerprint string) string {
	return SeekerCachePrefix(seekerID) + fingerprint
}

func SeekerCachePrefix(seekerID uuid.UUID) string {
	return AllMatchesPrefix + seekerID.String() + ":"
}

type CacheStatus struct {
	Key    string
	Exists bool
	TTL    time.Duration
}

// MatchCache stores ranked lists. Store failures are logged and read as misses; they
// never reach the caller.
type MatchCache struct {
	store  CacheStore
	ttl    time.Duration
	logger *log.Logger
}

func NewMatchCache(store CacheStore, ttl time.Duration, logger *log.Logger) *MatchCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MatchCache{store: store, ttl: ttl, logger: logger}
}

func (c *MatchCache) enabled() bool {
	return c != nil && c.store != nil
}

func (c *MatchCache) Get(ctx context.Context, key string) (matching.RankedMatchList, bool) {
	if !c.enabled() {
		return matching.RankedMatchList{}, false
	}
	b, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logf("[Cache] get %s failed: %v", key, err)
		return matching.RankedMatchList{}, false
	}
	if !ok {
		return matching.RankedMatchList{}, false
	}
	var list matching.RankedMatchList
	if err := json.Unmarshal(b, &list); err != nil {
		c.logf("[Cache] dropping undecodable entry %s: %v", key, err)
		_ = c.store.Delete(ctx, key)
		return matching.RankedMatchList{}, false
	}
	return list, true
}

func (c *MatchCache) Put(ctx context.Context, key string, list matching.RankedMatchList) {
	if !c.enabled() {
		return
	}
	b, err := json.Marshal(list)
	if err != nil {
		c.logf("[Cache] encode %s failed: %v", key, err)
		return
	}
	if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
		c.logf("[Cache] set %s failed: %v", key, err)
	}
}

func (c *MatchCache) Invalidate(ctx context.Context, key string) {
	if !c.enabled() {
		return
	}
	if err := c.store.Delete(ctx, key); err != nil {
		c.logf("[Cache] delete %s failed: %v", key, err)
	}
}

func (c *MatchCache) InvalidatePrefix(ctx context.Context, prefix string) int {
	if !c.enabled() {
		return 0
	}
	n, err := c.store.DeleteByPrefix(ctx, prefix)
	if err != nil {
		c.logf("[Cache] delete prefix %s failed after %d keys: %v", prefix, n, err)
	}
	return n
}

func (c *MatchCache) Status(ctx context.Context, key string) CacheStatus {
	st := CacheStatus{Key: key}
	if !c.enabled() {
		return st
	}
	ttl, ok, err := c.store.TTL(ctx, key)
	if err != nil {
		c.logf("[Cache] ttl %s failed: %v", key, err)
		return st
	}
	st.Exists = ok
	st.TTL = ttl
	return st
}

func (c *MatchCache) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
