package provider

import (
	"context"
	"time"

	"goldrates-service/internal/application"
	"goldrates-service/internal/domain"
)

// Ensure Fake implements application.RateProvider.
var _ application.RateProvider = (*Fake)(nil)

// Fake serves a fixed 24k price with the other tiers derived from it.
// Used when PROVIDER=fake (local dev without an upstream credential).
type Fake struct {
	gold24k float64
}

func NewFake(gold24k float64) *Fake { return &Fake{gold24k: gold24k} }

func (f *Fake) FetchLatest(_ context.Context, city, _ string) (domain.RateSnapshot, error) {
	return domain.RateSnapshot{
		City:          domain.NormalizeCity(city),
		Gold24K:       f.gold24k,
		Gold22K:       f.gold24k * 22 / 24,
		Gold18K:       f.gold24k * 18 / 24,
		SilverPerGram: f.gold24k / 80,
		SilverPerKg:   f.gold24k / 80 * 1000,
		Timestamp:     time.Now().UTC(),
		Source:        "fake",
	}, nil
}
