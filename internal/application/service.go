package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"goldrates-service/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultSecretName is the secret-store key holding the upstream API credential.
const DefaultSecretName = "GOLD_RATES_API_KEY"

// RateResult is a snapshot plus how it was obtained. Cached covers both the
// in-process cache and the shared cache; Fallback marks data recovered from
// the persistence store after a failed live fetch.
type RateResult struct {
	Snapshot domain.RateSnapshot
	Cached   bool
	Fallback bool
}

// Metrics receives orchestrator events. The metrics package provides the
// Prometheus implementation; the zero service uses a no-op.
type Metrics interface {
	CacheHit(layer string)
	FetchOutcome(outcome string)
	FallbackServed()
}

type nopMetrics struct{}

func (nopMetrics) CacheHit(string)     {}
func (nopMetrics) FetchOutcome(string) {}
func (nopMetrics) FallbackServed()     {}

type RatesService struct {
	repo     RateRepo
	provider RateProvider
	secrets  SecretStore
	shared   SnapshotCache

	cache *memoryCache
	group singleflight.Group

	clock          Clock
	log            *zap.Logger
	metrics        Metrics
	secretName     string
	marketTTL      time.Duration
	offHoursTTL    time.Duration
	persistTimeout time.Duration
}

type Option func(*RatesService)

func WithClock(c Clock) Option          { return func(s *RatesService) { s.clock = c } }
func WithLogger(l *zap.Logger) Option   { return func(s *RatesService) { s.log = l } }
func WithMetrics(m Metrics) Option      { return func(s *RatesService) { s.metrics = m } }
func WithSecretName(n string) Option    { return func(s *RatesService) { s.secretName = n } }
func WithSharedCache(c SnapshotCache) Option {
	return func(s *RatesService) { s.shared = c }
}
func WithTTLs(market, offHours time.Duration) Option {
	return func(s *RatesService) { s.marketTTL, s.offHoursTTL = market, offHours }
}

func NewRatesService(repo RateRepo, provider RateProvider, secrets SecretStore, opts ...Option) *RatesService {
	s := &RatesService{
		repo:           repo,
		provider:       provider,
		secrets:        secrets,
		cache:          newMemoryCache(),
		secretName:     DefaultSecretName,
		marketTTL:      DefaultMarketTTL,
		offHoursTTL:    DefaultOffHoursTTL,
		persistTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	return s
}

// TTL returns the cache freshness window in force at the given instant.
func (s *RatesService) TTL(now time.Time) time.Duration {
	if domain.IsMarketOpen(now) {
		return s.marketTTL
	}
	return s.offHoursTTL
}

// GetRates serves the current snapshot for a city: fresh cache entry if one
// exists, otherwise a single-flight live fetch, otherwise the last persisted
// snapshot. ErrUnavailable only when every source is exhausted.
func (s *RatesService) GetRates(ctx context.Context, city string) (RateResult, error) {
	city = domain.NormalizeCity(city)
	now := s.clock.Now()

	if e, ok := s.cache.get(city); ok && e.Fresh(now, s.TTL(now)) {
		s.metrics.CacheHit("memory")
		return RateResult{Snapshot: e.Snapshot, Cached: true}, nil
	}

	v, err, _ := s.group.Do(city, func() (any, error) {
		return s.miss(ctx, city)
	})
	if err != nil {
		return RateResult{}, err
	}
	return v.(RateResult), nil
}

// Refresh forces a live fetch and commit for a city, bypassing the cache
// check. Used by the background refresher to keep configured cities warm.
func (s *RatesService) Refresh(ctx context.Context, city string) error {
	city = domain.NormalizeCity(city)
	_, err := s.fetchAndCommit(ctx, city)
	return err
}

// miss runs under the per-city single-flight lock.
func (s *RatesService) miss(ctx context.Context, city string) (RateResult, error) {
	now := s.clock.Now()

	// A concurrent flight may have refilled the cache while we queued.
	if e, ok := s.cache.get(city); ok && e.Fresh(now, s.TTL(now)) {
		s.metrics.CacheHit("memory")
		return RateResult{Snapshot: e.Snapshot, Cached: true}, nil
	}

	if s.shared != nil {
		snap, ok, err := s.shared.Get(ctx, city)
		switch {
		case err != nil:
			s.log.Warn("shared cache read failed", zap.String("city", city), zap.Error(err))
		case ok:
			s.cache.set(snap, now)
			s.metrics.CacheHit("shared")
			return RateResult{Snapshot: snap, Cached: true}, nil
		}
	}

	snap, err := s.fetchAndCommit(ctx, city)
	if err != nil {
		return s.fallback(ctx, city, err)
	}
	return RateResult{Snapshot: snap}, nil
}

func (s *RatesService) fetchAndCommit(ctx context.Context, city string) (domain.RateSnapshot, error) {
	cred, err := s.secrets.Get(ctx, s.secretName)
	if err != nil {
		s.log.Warn("credential lookup failed", zap.Error(err))
		s.metrics.FetchOutcome("config_error")
		return domain.RateSnapshot{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	snap, err := s.provider.FetchLatest(ctx, city, cred)
	if err != nil {
		s.log.Warn("upstream fetch failed", zap.String("city", city), zap.Error(err))
		if errors.Is(err, ErrParse) {
			s.metrics.FetchOutcome("parse_error")
		} else {
			s.metrics.FetchOutcome("fetch_error")
		}
		return domain.RateSnapshot{}, err
	}
	s.metrics.FetchOutcome("success")

	now := s.clock.Now()
	s.cache.set(snap, now)
	s.commitAsync(snap, s.TTL(now))
	return snap, nil
}

// commitAsync persists the snapshot and feeds the shared cache off the
// request path. Failures are logged only; a broken store must not block a
// freshly fetched response.
func (s *RatesService) commitAsync(snap domain.RateSnapshot, ttl time.Duration) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
		defer cancel()
		if err := s.repo.Upsert(ctx, snap); err != nil {
			s.log.Warn("rate upsert failed", zap.String("city", snap.City), zap.Error(err))
		}
		if s.shared != nil {
			if err := s.shared.Set(ctx, snap, ttl); err != nil {
				s.log.Warn("shared cache write failed", zap.String("city", snap.City), zap.Error(err))
			}
		}
	}()
}

func (s *RatesService) fallback(ctx context.Context, city string, cause error) (RateResult, error) {
	snap, err := s.repo.GetLatest(ctx, city)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("fallback read failed", zap.String("city", city), zap.Error(err))
		}
		return RateResult{}, fmt.Errorf("%w: %v", ErrUnavailable, cause)
	}
	s.metrics.FallbackServed()
	s.log.Info("serving persisted fallback", zap.String("city", city))
	return RateResult{Snapshot: snap, Cached: true, Fallback: true}, nil
}
