package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "relief:disasters:"

// RedisCache shares snapshots between replicas. Entries carry a long
// retention so a stale snapshot survives upstream outages.
type RedisCache struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisCache(client *redis.Client, retention time.Duration) *RedisCache {
	return &RedisCache{
		client:    client,
		retention: retention,
	}
}

// DialRedis connects and pings, as the service does at startup.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("error pinging redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (*Entry, bool, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false, fmt.Errorf("error decoding cache entry: %w", err)
	}
	return &e, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("error encoding cache entry: %w", err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, data, r.retention).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
