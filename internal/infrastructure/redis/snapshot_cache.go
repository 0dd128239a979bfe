package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"goldrates-service/internal/application"
	"goldrates-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rates:"

// SnapshotCache shares freshly fetched snapshots across instances. The key
// expires with the TTL passed to Set, so a present key is a fresh snapshot.
type SnapshotCache struct {
	Client *redis.Client
}

var _ application.SnapshotCache = (*SnapshotCache)(nil)

func New(client *redis.Client) *SnapshotCache {
	return &SnapshotCache{Client: client}
}

func (s *SnapshotCache) Get(ctx context.Context, city string) (domain.RateSnapshot, bool, error) {
	data, err := s.Client.Get(ctx, keyPrefix+city).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.RateSnapshot{}, false, nil
		}
		return domain.RateSnapshot{}, false, err
	}
	var snap domain.RateSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.RateSnapshot{}, false, err
	}
	return snap, true, nil
}

func (s *SnapshotCache) Set(ctx context.Context, snap domain.RateSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, keyPrefix+snap.City, data, ttl).Err()
}
