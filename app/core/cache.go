package core

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sidekick-ai/sidekick-ai/pkg/types"
)

type redisCache struct {
	rds *redis.Client
}

func NewRedisCache(rds *redis.Client) types.Cache {
	return &redisCache{rds: rds}
}

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rds.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (c *redisCache) SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error {
	return c.rds.SetEx(ctx, key, value, expiresAt).Err()
}

func (c *redisCache) Del(ctx context.Context, key string) error {
	return c.rds.Del(ctx, key).Err()
}

type redisLocker struct {
	rds *redis.Client
}

func NewRedisLocker(rds *redis.Client) types.Locker {
	return &redisLocker{rds: rds}
}

func (l *redisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.rds.SetNX(ctx, key, "1", ttl).Result()
}

func (l *redisLocker) Unlock(ctx context.Context, key string) error {
	return l.rds.Del(ctx, key).Err()
}

// memoryLocker 未配置 redis 时的单进程降级实现
type memoryLocker struct {
	mu    sync.Mutex
	locks map[string]time.Time
}

func NewMemoryLocker() types.Locker {
	return &memoryLocker{locks: make(map[string]time.Time)}
}

func (l *memoryLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expireAt, ok := l.locks[key]; ok && time.Now().Before(expireAt) {
		return false, nil
	}
	l.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (l *memoryLocker) Unlock(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, key)
	return nil
}
