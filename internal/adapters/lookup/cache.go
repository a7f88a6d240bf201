package lookup

import (
	"context"
	"time"

	"github.com/ecodeclub/ecache"
)

// Cache stores raw lookup responses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// ECache adapts an ecache.Cache (usually Redis-backed) to Cache.
type ECache struct {
	c ecache.Cache
}

// NewECache namespaces c for lookup entries.
func NewECache(c ecache.Cache) *ECache {
	return &ECache{c: &ecache.NamespaceCache{Namespace: "trainer:lookup:", C: c}}
}

func (e *ECache) Get(ctx context.Context, key string) ([]byte, bool) {
	v := e.c.Get(ctx, key)
	if v.Err != nil {
		return nil, false
	}
	switch val := v.Val.(type) {
	case string:
		return []byte(val), true
	case []byte:
		return val, true
	default:
		return nil, false
	}
}

func (e *ECache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return e.c.Set(ctx, key, string(val), ttl)
}
