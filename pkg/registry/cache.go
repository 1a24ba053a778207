package registry

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/streamkit/platform/pkg/cache"
	"github.com/streamkit/platform/pkg/redis"
	"github.com/streamkit/platform/pkg/tenant"
)

// Cache stores resolved tenants under their lookup keys. Implementations must
// be safe for concurrent use and must not share mutable state with callers.
// The registry treats cache errors as misses.
type Cache interface {
	Get(ctx context.Context, key string) (*tenant.Tenant, bool, error)
	Set(ctx context.Context, t *tenant.Tenant, keys ...string) error
	Delete(ctx context.Context, keys ...string) error
}

func idKey(t *tenant.Tenant) string  { return "id:" + t.ID.String() }
func slugKey(slug string) string     { return "slug:" + slug }
func domainKey(domain string) string { return "domain:" + domain }

// keysOf lists every key t is cached under.
func keysOf(t *tenant.Tenant) []string {
	keys := []string{idKey(t), slugKey(t.Slug)}
	if d := t.Domain(); d != "" {
		keys = append(keys, domainKey(d))
	}
	return keys
}

// MemoryCache is an in-process LRU with a per-entry TTL.
type MemoryCache struct {
	lru *cache.LRU[string, *tenant.Tenant]
}

func NewMemoryCache(capacity int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{lru: cache.NewLRU[string, *tenant.Tenant](capacity, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*tenant.Tenant, bool, error) {
	t, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return t.Clone(), true, nil
}

func (c *MemoryCache) Set(_ context.Context, t *tenant.Tenant, keys ...string) error {
	for _, k := range keys {
		c.lru.Set(k, t.Clone())
	}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.lru.Delete(k)
	}
	return nil
}

func (c *MemoryCache) Len() int { return c.lru.Len() }

// RedisCache shares resolved tenants between instances. Values are JSON.
type RedisCache struct {
	kv  *redis.Storage
	ttl time.Duration
}

func NewRedisCache(kv *redis.Storage, ttl time.Duration) *RedisCache {
	return &RedisCache{kv: kv, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*tenant.Tenant, bool, error) {
	raw, ok, err := c.kv.Get(ctx, "tenant:"+key)
	if err != nil || !ok {
		return nil, false, err
	}
	var t tenant.Tenant
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, false, errors.Join(ErrCacheDecode, err)
	}
	return &t, true, nil
}

func (c *RedisCache) Set(ctx context.Context, t *tenant.Tenant, keys ...string) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	var errs []error
	for _, k := range keys {
		errs = append(errs, c.kv.Set(ctx, "tenant:"+k, raw, c.ttl))
	}
	return errors.Join(errs...)
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = "tenant:" + k
	}
	return c.kv.Delete(ctx, prefixed...)
}

// NoCache disables caching.
type NoCache struct{}

func (NoCache) Get(context.Context, string) (*tenant.Tenant, bool, error) { return nil, false, nil }
func (NoCache) Set(context.Context, *tenant.Tenant, ...string) error      { return nil }
func (NoCache) Delete(context.Context, ...string) error                   { return nil }
