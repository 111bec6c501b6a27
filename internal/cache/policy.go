// Package cache gates the ranking coordinator behind a TTL'd page cache.
// The cache is a disposable accelerant: every failure fails open to direct
// computation and is never surfaced to the caller.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go-jobsearch-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Store is the key/value collaborator. Get returns (nil, nil) on a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Policy applies strategy-dependent TTLs and fail-open semantics around
// the page cache.
type Policy struct {
	store       Store
	volatileTTL time.Duration
	staticTTL   time.Duration
	log         *slog.Logger
}

func NewPolicy(store Store, volatileTTL, staticTTL time.Duration, log *slog.Logger) *Policy {
	if log == nil {
		log = slog.Default()
	}
	return &Policy{
		store:       store,
		volatileTTL: volatileTTL,
		staticTTL:   staticTTL,
		log:         log,
	}
}

// TTLFor returns the strategy's TTL: short for strategies whose ordering
// shifts with live engagement or deadlines, long for everything else.
func (p *Policy) TTLFor(strategy string) time.Duration {
	switch strategy {
	case domain.SortTrending, domain.SortUrgency:
		return p.volatileTTL
	default:
		return p.staticTTL
	}
}

// Fetch returns the cached page for key, marked cached=true, or (nil,
// false) on miss or any cache failure.
func (p *Policy) Fetch(ctx context.Context, key string) (*domain.SearchPage, bool) {
	if p.store == nil {
		return nil, false
	}

	payload, err := p.store.Get(ctx, key)
	if err != nil {
		p.log.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	if payload == nil {
		return nil, false
	}

	var page domain.SearchPage
	if err := json.Unmarshal(payload, &page); err != nil {
		p.log.Warn("cache payload corrupt, dropping", "key", key, "error", err)
		_ = p.store.Delete(ctx, key)
		return nil, false
	}

	page.SortMeta.Cached = true
	return &page, true
}

// Save writes a freshly computed page under key with the strategy's TTL.
// Write-once-per-miss; failures are logged and swallowed.
func (p *Policy) Save(ctx context.Context, key string, page *domain.SearchPage) {
	if p.store == nil || page == nil {
		return
	}

	payload, err := json.Marshal(page)
	if err != nil {
		p.log.Warn("cache encode failed", "key", key, "error", err)
		return
	}

	if err := p.store.Set(ctx, key, payload, p.TTLFor(page.SortMeta.Strategy)); err != nil {
		p.log.Warn("cache write failed", "key", key, "error", err)
	}
}

// redisStore adapts a go-redis client to the Store interface.
type redisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	payload, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
