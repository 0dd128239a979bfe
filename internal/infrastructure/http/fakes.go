package httpserver

import (
	"context"
	"sync"

	"goldrates-service/internal/application"
	"goldrates-service/internal/domain"
)

var _ application.RateRepo = (*fakeRateRepo)(nil)
var _ application.SecretStore = (*fakeSecretStore)(nil)

type fakeRateRepo struct {
	mu    sync.Mutex
	store map[string]domain.RateSnapshot
}

func (f *fakeRateRepo) GetLatest(_ context.Context, city string) (domain.RateSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.store[city]
	if !ok {
		return domain.RateSnapshot{}, application.ErrNotFound
	}
	return s, nil
}

func (f *fakeRateRepo) Upsert(_ context.Context, snap domain.RateSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.store == nil {
		f.store = map[string]domain.RateSnapshot{}
	}
	f.store[snap.City] = snap
	return nil
}

type fakeSecretStore struct {
	key string
}

func (f *fakeSecretStore) Get(context.Context, string) (string, error) {
	if f.key == "" {
		return "", application.ErrConfig
	}
	return f.key, nil
}
