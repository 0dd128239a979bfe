package application

import (
	"context"
	"time"

	"goldrates-service/internal/domain"
)

// RateRepo is the durable last-known-good store. Exactly one record per
// city; Upsert replaces, it never appends.
type RateRepo interface {
	GetLatest(ctx context.Context, city string) (domain.RateSnapshot, error)
	Upsert(ctx context.Context, snap domain.RateSnapshot) error
}

// RateProvider fetches the current snapshot from the upstream price API.
type RateProvider interface {
	FetchLatest(ctx context.Context, city, credential string) (domain.RateSnapshot, error)
}

// SecretStore resolves API credentials by name.
type SecretStore interface {
	Get(ctx context.Context, name string) (string, error)
}

// SnapshotCache is an optional shared cache layer consulted between the
// in-memory cache and the upstream, so sibling instances can reuse a fresh
// fetch. Misses and backend errors are both reported as ok=false.
type SnapshotCache interface {
	Get(ctx context.Context, city string) (domain.RateSnapshot, bool, error)
	Set(ctx context.Context, snap domain.RateSnapshot, ttl time.Duration) error
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }
