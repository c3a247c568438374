package lease

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// key layout: pokerdraws:room:{slug} -> owner id, with PX ttl
const keyPrefix = "pokerdraws:room:"

var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisStore struct {
	rdb *redis.Client
}

// NewRedis returns a Store shared by every instance pointed at the same Redis.
func NewRedis(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

// Dial connects to Redis and verifies the connection.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func roomKey(key string) string {
	return keyPrefix + key
}

func (r *redisStore) Acquire(ctx context.Context, key, owner string, ttl time.Duration) error {
	ok, err := r.rdb.SetNX(ctx, roomKey(key), owner, ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire %s: %w", key, err)
	}
	if ok {
		return nil
	}

	// Re-entrant for the current owner.
	if err := r.Renew(ctx, key, owner, ttl); err != nil {
		if errors.Is(err, ErrNotHeld) {
			return ErrHeld
		}
		return err
	}
	return nil
}

func (r *redisStore) Renew(ctx context.Context, key, owner string, ttl time.Duration) error {
	n, err := renewScript.Run(ctx, r.rdb, []string{roomKey(key)}, owner, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("renew %s: %w", key, err)
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}

func (r *redisStore) Release(ctx context.Context, key, owner string) error {
	if err := releaseScript.Run(ctx, r.rdb, []string{roomKey(key)}, owner).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

func (r *redisStore) Close() error {
	return r.rdb.Close()
}
