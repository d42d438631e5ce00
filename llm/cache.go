package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Store holds completions keyed by prompt hash.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Cache serves repeated prompts from store. Only successful completions are
// stored, so a provider outage is never pinned in the cache. Store errors are
// treated as misses.
func Cache(store Store) Middleware {
	return func(next Provider) Provider {
		if store == nil {
			return next
		}
		return &caching{next: next, store: store}
	}
}

type caching struct {
	next  Provider
	store Store
}

func (c *caching) Name() string { return c.next.Name() }

func (c *caching) Complete(ctx context.Context, prompt string) (string, error) {
	key := PromptKey(prompt)
	if v, ok, err := c.store.Get(ctx, key); err == nil && ok {
		return v, nil
	}
	out, err := c.next.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	_ = c.store.Set(ctx, key, out)
	return out, nil
}

func PromptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

type lruStore struct {
	lru *expirable.LRU[string, string]
}

func NewLRUStore(size int, ttl time.Duration) Store {
	if size <= 0 {
		size = 256
	}
	return &lruStore{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (s *lruStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.lru.Get(key)
	return v, ok, nil
}

func (s *lruStore) Set(_ context.Context, key, value string) error {
	s.lru.Add(key, value)
	return nil
}

type redisStore struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(rdb redis.UniversalClient, prefix string, ttl time.Duration) Store {
	if prefix == "" {
		prefix = "mindmap:completion:"
	}
	return &redisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, s.prefix+key, value, s.ttl).Err()
}

// Tiered checks the stores in order and back-fills earlier ones on a hit.
type Tiered []Store

func (t Tiered) Get(ctx context.Context, key string) (string, bool, error) {
	for i, s := range t {
		v, ok, err := s.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		for j := 0; j < i; j++ {
			_ = t[j].Set(ctx, key, v)
		}
		return v, true, nil
	}
	return "", false, nil
}

func (t Tiered) Set(ctx context.Context, key, value string) error {
	var errs []error
	for _, s := range t {
		if err := s.Set(ctx, key, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
