package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maarten/chauffeur/internal/model"
)

const distanceCachePrefix = "cache:distance:"

// DistanceCacheStore is the Redis-backed distance cache, for
// deployments where quotes from several instances should share
// memoized routes. Implements service.DistanceCache.
type DistanceCacheStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDistanceCacheStore creates a Redis distance cache with the given TTL.
func NewDistanceCacheStore(client *redis.Client, ttl time.Duration) *DistanceCacheStore {
	return &DistanceCacheStore{client: client, ttl: ttl}
}

// Get retrieves a cached distance result. Redis errors are cache misses:
// a broken cache degrades to recomputation, never to a failed quote.
func (s *DistanceCacheStore) Get(ctx context.Context, key string) (model.DistanceResult, bool) {
	data, err := s.client.Get(ctx, distanceCachePrefix+key).Bytes()
	if err != nil {
		return model.DistanceResult{}, false
	}

	var res model.DistanceResult
	if err := json.Unmarshal(data, &res); err != nil {
		return model.DistanceResult{}, false
	}
	return res, true
}

// Put stores a distance result under the route key.
func (s *DistanceCacheStore) Put(ctx context.Context, key string, res model.DistanceResult) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	_ = s.client.Set(ctx, distanceCachePrefix+key, data, s.ttl).Err()
}

// Sweep is a no-op: Redis evicts expired keys server-side.
func (s *DistanceCacheStore) Sweep(_ context.Context) int {
	return 0
}
