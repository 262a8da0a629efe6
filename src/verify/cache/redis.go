package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/truthlens/factwave/src/verify/types"
)

// RedisStore backs the cache with Redis. Connection problems are treated as
// misses.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*types.VerificationRecord, bool) {
	raw, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("%v", &Error{Op: "get", Err: err})
		return nil, false
	}

	var record types.VerificationRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		log.Printf("%v", &Error{Op: "decode", Err: err})
		return nil, false
	}
	return &record, true
}

func (s *RedisStore) Set(ctx context.Context, key string, record *types.VerificationRecord, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	raw, err := json.Marshal(record)
	if err != nil {
		log.Printf("%v", &Error{Op: "encode", Err: err})
		return
	}
	if err := s.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("%v", &Error{Op: "set", Err: err})
	}
}
