package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisPages serves the same contract as MemoryPages over a shared redis
// instance, letting several replicas reuse one rendered body. Expiry is
// redis's native TTL, so DeleteExpired has nothing to do.
type RedisPages struct {
	redisClient *redis.Client
	expiration  time.Duration
}

func NewRedisPages(options *redis.Options, expiration time.Duration) *RedisPages {
	return &RedisPages{
		redisClient: redis.NewClient(options),
		expiration:  expiration,
	}
}

func (p *RedisPages) Get(key string) ([]byte, bool) {
	val, err := p.redisClient.Get(
		context.Background(),
		p.getRedisKey(key),
	).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (p *RedisPages) Set(key string, body []byte) {
	err := p.redisClient.Set(
		context.Background(),
		p.getRedisKey(key),
		body,
		p.expiration,
	).Err()
	if err != nil {
		log.Errorf("Error caching page %s: %v", key, err)
	}
}

func (p *RedisPages) Clear() {
	ctx := context.Background()
	iter := p.redisClient.Scan(ctx, 0, p.getRedisKey("*"), 0).Iterator()
	for iter.Next(ctx) {
		p.redisClient.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Errorf("Error clearing page cache: %v", err)
	}
}

func (p *RedisPages) DeleteExpired() {}

func (p *RedisPages) getRedisKey(key string) string {
	return fmt.Sprintf("page__%s", key)
}
