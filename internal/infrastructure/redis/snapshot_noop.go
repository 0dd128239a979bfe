package redisstore

import (
	"context"
	"time"

	"goldrates-service/internal/application"
	"goldrates-service/internal/domain"
)

// Noop reports a miss on every read; useful when CACHE_BACKEND=none.
type Noop struct{}

var _ application.SnapshotCache = Noop{}

func (Noop) Get(context.Context, string) (domain.RateSnapshot, bool, error) {
	return domain.RateSnapshot{}, false, nil
}

func (Noop) Set(context.Context, domain.RateSnapshot, time.Duration) error { return nil }
