package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Redis shares cached identities across processes.
type Redis struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Contains(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Redis) Remember(ctx context.Context, key string, ttl time.Duration) error {
	return r.client.Set(ctx, key, 1, ttl).Err()
}

// Local keeps cached identities in process.
type Local struct {
	cache *gocache.Cache
}

func NewLocal(ttl, cleanupInterval time.Duration) *Local {
	return &Local{cache: gocache.New(ttl, cleanupInterval)}
}

func (l *Local) Contains(_ context.Context, key string) (bool, error) {
	_, ok := l.cache.Get(key)
	return ok, nil
}

func (l *Local) Remember(_ context.Context, key string, ttl time.Duration) error {
	l.cache.Set(key, struct{}{}, ttl)
	return nil
}

// Flush drops every entry.
func (l *Local) Flush() {
	l.cache.Flush()
}
