package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	domain "github.com/Frsoul7/simple-task-manager/domain/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	cachePrefix        = "tasks:"
	cacheKeyList       = "list"
	cacheKeyGeneration = "gen"
)

func cacheKeyByID(id string) string {
	return "id:" + id
}

// CacheStats tracks cache statistics.
type CacheStats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Errors uint64 `json:"errors"`
}

// CachedStore is a read-through Redis cache in front of another store
// (cache-aside). Writes go to the inner store first and then invalidate the
// affected keys. Redis failures are logged and fall back to the inner store.
//
// Every invalidation bumps a generation counter. A fill only lands when the
// counter still holds the value read before the inner store was queried, so a
// read that raced a write never caches what it saw.
type CachedStore struct {
	inner   Store
	client  *redis.Client
	ttl     time.Duration
	sfGroup singleflight.Group
	stats   CacheStats
	logger  types.Logger
}

var _ Store = (*CachedStore)(nil)

// NewCachedStore wraps inner with a cache on client.
func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration, logger types.Logger) *CachedStore {
	return &CachedStore{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// OpenRedis connects to the Redis server at redisURL.
func OpenRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Stats returns a snapshot of the cache counters.
func (s *CachedStore) Stats() CacheStats {
	return CacheStats{
		Hits:   atomic.LoadUint64(&s.stats.Hits),
		Misses: atomic.LoadUint64(&s.stats.Misses),
		Errors: atomic.LoadUint64(&s.stats.Errors),
	}
}

// Ping checks both Redis and the inner store.
func (s *CachedStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return s.inner.Ping(ctx)
}

// Close closes the Redis client and the inner store.
func (s *CachedStore) Close(ctx context.Context) error {
	redisErr := s.client.Close()
	if err := s.inner.Close(ctx); err != nil {
		return err
	}
	if redisErr != nil {
		return fmt.Errorf("failed to close Redis connection: %w", redisErr)
	}
	return nil
}

// FindAll serves the task list from the cache when present.
func (s *CachedStore) FindAll(ctx context.Context) ([]*domain.Task, error) {
	var cached []*domain.Task
	if s.get(ctx, cacheKeyList, &cached) {
		if cached == nil {
			cached = []*domain.Task{}
		}
		return cached, nil
	}

	val, err, _ := s.sfGroup.Do(cacheKeyList, func() (any, error) {
		gen, genOK := s.generation(ctx)
		tasks, err := s.inner.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		if genOK {
			s.set(ctx, cacheKeyList, tasks, gen)
		}
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]*domain.Task), nil
}

// FindByID serves a single task from the cache when present. Absent ids are
// not cached.
func (s *CachedStore) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	key := cacheKeyByID(id)

	var cached domain.Task
	if s.get(ctx, key, &cached) {
		return &cached, nil
	}

	val, err, _ := s.sfGroup.Do(key, func() (any, error) {
		gen, genOK := s.generation(ctx)
		t, err := s.inner.FindByID(ctx, id)
		if err != nil || t == nil {
			return t, err
		}
		if genOK {
			s.set(ctx, key, t, gen)
		}
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	t, _ := val.(*domain.Task)
	return t, nil
}

// Create stores the task and drops the cached list.
func (s *CachedStore) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	created, err := s.inner.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cacheKeyList)
	return created, nil
}

// Update patches the task and drops its cached copies.
func (s *CachedStore) Update(ctx context.Context, id string, p domain.Patch) (*domain.Task, error) {
	updated, err := s.inner.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cacheKeyList, cacheKeyByID(id))
	return updated, nil
}

// Delete removes the task and drops its cached copies.
func (s *CachedStore) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.inner.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	s.invalidate(ctx, cacheKeyList, cacheKeyByID(id))
	return deleted, nil
}

// get reports a cache hit. Misses and Redis errors both report false.
func (s *CachedStore) get(ctx context.Context, key string, dest any) bool {
	data, err := s.client.Get(ctx, cachePrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddUint64(&s.stats.Misses, 1)
			return false
		}
		atomic.AddUint64(&s.stats.Errors, 1)
		s.logger.Warn("Cache get failed", "key", key, "error", err)
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		atomic.AddUint64(&s.stats.Errors, 1)
		s.logger.Warn("Cache entry unreadable", "key", key, "error", err)
		return false
	}
	atomic.AddUint64(&s.stats.Hits, 1)
	return true
}

// generation reads the invalidation counter. A missing counter is zero.
func (s *CachedStore) generation(ctx context.Context) (int64, bool) {
	gen, err := s.client.Get(ctx, cachePrefix+cacheKeyGeneration).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		atomic.AddUint64(&s.stats.Errors, 1)
		s.logger.Warn("Cache generation read failed", "error", err)
		return 0, false
	}
	return gen, true
}

// set stores value under key unless an invalidation happened after gen was
// read.
func (s *CachedStore) set(ctx context.Context, key string, value any, gen int64) {
	data, err := json.Marshal(value)
	if err == nil {
		genKey := cachePrefix + cacheKeyGeneration
		err = s.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.Get(ctx, genKey).Int64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if current != gen {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, cachePrefix+key, data, s.ttl)
				return nil
			})
			return err
		}, genKey)
	}
	if errors.Is(err, redis.TxFailedErr) {
		// invalidated while filling
		return
	}
	if err != nil {
		atomic.AddUint64(&s.stats.Errors, 1)
		s.logger.Warn("Cache set failed", "key", key, "error", err)
	}
}

// invalidate bumps the generation and drops keys in one transaction.
func (s *CachedStore) invalidate(ctx context.Context, keys ...string) {
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, cachePrefix+k)
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, cachePrefix+cacheKeyGeneration)
		pipe.Del(ctx, full...)
		return nil
	})
	if err != nil {
		atomic.AddUint64(&s.stats.Errors, 1)
		s.logger.Warn("Cache invalidation failed", "keys", keys, "error", err)
	}
}
