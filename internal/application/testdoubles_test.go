package application

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"goldrates-service/internal/domain"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeRateRepo struct {
	mu        sync.Mutex
	store     map[string]domain.RateSnapshot
	getErr    error
	upsertErr error
	upserts   int
}

func (f *fakeRateRepo) GetLatest(_ context.Context, city string) (domain.RateSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.RateSnapshot{}, f.getErr
	}
	s, ok := f.store[city]
	if !ok {
		return domain.RateSnapshot{}, ErrNotFound
	}
	return s, nil
}

func (f *fakeRateRepo) Upsert(_ context.Context, snap domain.RateSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.store == nil {
		f.store = map[string]domain.RateSnapshot{}
	}
	f.store[snap.City] = snap
	return nil
}

func (f *fakeRateRepo) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts
}

func (f *fakeRateRepo) latest(city string) (domain.RateSnapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.store[city]
	return s, ok
}

type fakeProvider struct {
	out   domain.RateSnapshot
	err   error
	delay time.Duration
	calls atomic.Int64
}

func (f *fakeProvider) FetchLatest(ctx context.Context, city, _ string) (domain.RateSnapshot, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return domain.RateSnapshot{}, ctx.Err()
		}
	}
	if f.err != nil {
		return domain.RateSnapshot{}, f.err
	}
	out := f.out
	if out.City == "" {
		out.City = city
	}
	return out, nil
}

type fakeSecrets struct {
	values map[string]string
	err    error
}

func (f *fakeSecrets) Get(_ context.Context, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.values[name]
	if !ok || v == "" {
		return "", ErrConfig
	}
	return v, nil
}

type fakeSharedCache struct {
	mu     sync.Mutex
	store  map[string]domain.RateSnapshot
	getErr error
	setErr error
	sets   int
}

func (f *fakeSharedCache) Get(_ context.Context, city string) (domain.RateSnapshot, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.RateSnapshot{}, false, f.getErr
	}
	s, ok := f.store[city]
	return s, ok, nil
}

func (f *fakeSharedCache) Set(_ context.Context, snap domain.RateSnapshot, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	if f.store == nil {
		f.store = map[string]domain.RateSnapshot{}
	}
	f.store[snap.City] = snap
	return nil
}

func mumbaiSnapshot(at time.Time) domain.RateSnapshot {
	return domain.RateSnapshot{
		City:          "Mumbai",
		Gold24K:       7500,
		Gold22K:       6900,
		Gold18K:       5600,
		SilverPerGram: 95,
		SilverPerKg:   95000,
		Timestamp:     at,
		Source:        "IBJA",
	}
}
