package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"goldrates-service/internal/domain"

	"github.com/stretchr/testify/require"
)

// marketOpen is a Monday 12:00 IST (06:30 UTC); offHours the same day 22:00 IST.
var (
	marketOpen = time.Date(2025, 11, 10, 6, 30, 0, 0, time.UTC)
	offHours   = time.Date(2025, 11, 10, 16, 30, 0, 0, time.UTC)
)

func newService(repo *fakeRateRepo, p *fakeProvider, clock Clock, opts ...Option) *RatesService {
	secrets := &fakeSecrets{values: map[string]string{DefaultSecretName: "test-key"}}
	opts = append([]Option{WithClock(clock)}, opts...)
	return NewRatesService(repo, p, secrets, opts...)
}

func Test_GetRates_FreshFetch(t *testing.T) {
	t.Parallel()
	clock := newFakeClock(marketOpen)
	repo := &fakeRateRepo{}
	p := &fakeProvider{out: mumbaiSnapshot(marketOpen)}
	svc := newService(repo, p, clock)

	res, err := svc.GetRates(context.Background(), "Mumbai")
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.False(t, res.Fallback)
	require.InDelta(t, 7500, res.Snapshot.Gold24K, 1e-9)

	// Persistence happens off the request path.
	require.Eventually(t, func() bool {
		_, ok := repo.latest("Mumbai")
		return ok
	}, time.Second, 10*time.Millisecond)
}

func Test_GetRates_CacheHitWithinTTL(t *testing.T) {
	t.Parallel()
	clock := newFakeClock(marketOpen)
	repo := &fakeRateRepo{}
	p := &fakeProvider{out: mumbaiSnapshot(marketOpen)}
	svc := newService(repo, p, clock)

	_, err := svc.GetRates(context.Background(), "Mumbai")
	require.NoError(t, err)

	clock.Advance(4 * time.Minute)
	res, err := svc.GetRates(context.Background(), "Mumbai")
	require.NoError(t, err)
	require.True(t, res.Cached)
	require.False(t, res.Fallback)
	require.EqualValues(t, 1, p.calls.Load())
}

func Test_GetRates_CacheExpires_MarketHours(t *testing.T) {
	t.Parallel()
	clock := newFakeClock(marketOpen)
	repo := &fakeRateRepo{}
	p := &fakeProvider{out: mumbaiSnapshot(marketOpen)}
	svc := newService(repo, p, clock)

	_, err := svc.GetRates(context.Background(), "Mumbai")
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	res, err := svc.GetRates(context.Background(), "Mumbai")
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.EqualValues(t, 2, p.calls.Load())
}

func Test_GetRates_OffHoursTTL(t *testing.T) {
	t.Parallel()
	clock := newFakeClock(offHours)
	repo := &fakeRateRepo{}
	p := &fakeProvider{out: mumbaiSnapshot(offHours)}
	svc := newService(repo, p, clock)

	_, err := svc.GetRates(context.Background(), "Mumbai")
	require.NoError(t, err)

	clock.Advance(29 * time.Minute)
	res, err := svc.GetRates(context.Background(), "Mumbai")
	require.NoError(t, err)
	require.True(t, res.Cached)
	require.EqualValues(t, 1, p.calls.Load())

	clock.Advance(2 * time.Minute) // 31m after capture
	res, err = svc.GetRates(context.Background(), "Mumbai")
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.EqualValues(t, 2, p.calls.Load())
}

func Test_GetRates_FallbackOnFetchFailure(t *testing.T) {
	t.Parallel()
	clock := newFakeClock(marketOpen)
	persisted := mumbaiSnapshot(marketOpen.Add(-time.Hour))
	persisted.Gold24K = 7400
	repo := &fakeRateRepo{store: map[string]domain.RateSnapshot{"Mumbai": persisted}}
	p := &fakeProvider{err: ErrFetch}
	svc := newService(repo, p, clock)

	res, err := svc.GetRates(context.Background(), "Mumbai")
	require.NoError(t, err)
	require.True(t, res.Cached)
	require.True(t, res.Fallback)
	require.InDelta(t, 7400, res.Snapshot.Gold24K, 1e-9)
}

func Test_GetRates_FallbackOnMissingCredential(t *testing.T) {
	t.Parallel()
	clock := newFakeClock(marketOpen)
	repo := &fakeRateRepo{store: map[string]domain.RateSnapshot{"Mumbai": mumbaiSnapshot(marketOpen)}}
	p := &fakeProvider{out: mumbaiSnapshot(marketOpen)}
	svc := NewRatesService(repo, p, &fakeSecrets{}, WithClock(clock))

	res, err := svc.GetRates(context.Background(), "Mumbai")
	require.NoError(t, err)
	require.True(t, res.Fallback)
	require.EqualValues(t, 0, p.calls.Load())
}

func Test_GetRates_UnavailableWhenNothingLeft(t *testing.T) {
	t.Parallel()
	clock := newFakeClock(marketOpen)
	repo := &fakeRateRepo{}
	p := &fakeProvider{err: ErrFetch}
	svc := newService(repo, p, clock)

	_, err := svc.GetRates(context.Background(), "Mumbai")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnavailable)
}

func Test_GetRates_RepoErrorTreatedAsNoData(t *testing.T) {
	t.Parallel()
	clock := newFakeClock(marketOpen)
	repo := &fakeRateRepo{getErr: errors.New("connection refused")}
	p := &fakeProvider{err: ErrFetch}
	svc := newService(repo, p, clock)

	_, err := svc.GetRates(context.Background(), "Mumbai")
	require.ErrorIs(t, err, ErrUnavailable)
}

func Test_GetRates_SharedCacheHit(t *testing.T) {
	t.Parallel()
	clock := newFakeClock(marketOpen)
	repo := &fakeRateRepo{}
	p := &fakeProvider{out: mumbaiSnapshot(marketOpen)}
	shared := &fakeSharedCache{store: map[string]domain.RateSnapshot{"Mumbai": mumbaiSnapshot(marketOpen)}}
	svc := newService(repo, p, clock, WithSharedCache(shared))

	res, err := svc.GetRates(context.Background(), "Mumbai")
	require.NoError(t, err)
	require.True(t, res.Cached)
	require.False(t, res.Fallback)
	require.EqualValues(t, 0, p.calls.Load())

	// Promoted to the in-memory cache for subsequent requests.
	_, err = svc.GetRates(context.Background(), "Mumbai")
	require.NoError(t, err)
	require.EqualValues(t, 0, p.calls.Load())
}

func Test_GetRates_SharedCacheErrorFallsThroughToFetch(t *testing.T) {
	t.Parallel()
	clock := newFakeClock(marketOpen)
	repo := &fakeRateRepo{}
	p := &fakeProvider{out: mumbaiSnapshot(marketOpen)}
	shared := &fakeSharedCache{getErr: errors.New("redis down")}
	svc := newService(repo, p, clock, WithSharedCache(shared))

	res, err := svc.GetRates(context.Background(), "Mumbai")
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.EqualValues(t, 1, p.calls.Load())
}

func Test_GetRates_DefaultsCityToMumbai(t *testing.T) {
	t.Parallel()
	clock := newFakeClock(marketOpen)
	repo := &fakeRateRepo{}
	p := &fakeProvider{out: mumbaiSnapshot(marketOpen)}
	svc := newService(repo, p, clock)

	res, err := svc.GetRates(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "Mumbai", res.Snapshot.City)
}

func Test_GetRates_SingleFlightCollapsesConcurrentMisses(t *testing.T) {
	t.Parallel()
	clock := newFakeClock(marketOpen)
	repo := &fakeRateRepo{}
	p := &fakeProvider{out: mumbaiSnapshot(marketOpen), delay: 100 * time.Millisecond}
	svc := newService(repo, p, clock)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.GetRates(context.Background(), "Mumbai")
			require.NoError(t, err)
			require.InDelta(t, 7500, res.Snapshot.Gold24K, 1e-9)
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, p.calls.Load())
}

func Test_GetRates_UpsertFailureDoesNotFailRequest(t *testing.T) {
	t.Parallel()
	clock := newFakeClock(marketOpen)
	repo := &fakeRateRepo{upsertErr: errors.New("disk full")}
	p := &fakeProvider{out: mumbaiSnapshot(marketOpen)}
	svc := newService(repo, p, clock)

	res, err := svc.GetRates(context.Background(), "Mumbai")
	require.NoError(t, err)
	require.False(t, res.Fallback)
	require.Eventually(t, func() bool { return repo.upsertCount() == 1 }, time.Second, 10*time.Millisecond)
}

func Test_Refresh_BypassesCache(t *testing.T) {
	t.Parallel()
	clock := newFakeClock(marketOpen)
	repo := &fakeRateRepo{}
	p := &fakeProvider{out: mumbaiSnapshot(marketOpen)}
	svc := newService(repo, p, clock)

	require.NoError(t, svc.Refresh(context.Background(), "Mumbai"))
	require.NoError(t, svc.Refresh(context.Background(), "Mumbai"))
	require.EqualValues(t, 2, p.calls.Load())

	// A refreshed snapshot serves subsequent reads from cache.
	res, err := svc.GetRates(context.Background(), "Mumbai")
	require.NoError(t, err)
	require.True(t, res.Cached)
	require.EqualValues(t, 2, p.calls.Load())
}

func Test_Refresh_PropagatesFetchError(t *testing.T) {
	t.Parallel()
	clock := newFakeClock(marketOpen)
	repo := &fakeRateRepo{}
	p := &fakeProvider{err: ErrFetch}
	svc := newService(repo, p, clock)

	require.ErrorIs(t, svc.Refresh(context.Background(), "Mumbai"), ErrFetch)
}

func Test_TTL_SelectsByMarketHours(t *testing.T) {
	t.Parallel()
	svc := newService(&fakeRateRepo{}, &fakeProvider{}, newFakeClock(marketOpen))
	require.Equal(t, DefaultMarketTTL, svc.TTL(marketOpen))
	require.Equal(t, DefaultOffHoursTTL, svc.TTL(offHours))
}
