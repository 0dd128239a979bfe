package worker

import (
	"context"
	"time"

	"goldrates-service/internal/application"
	"goldrates-service/internal/domain"

	"go.uber.org/zap"
)

// Refresher keeps the configured cities warm by forcing periodic fetches,
// on the same cadence the cache uses: OpenPoll while the market trades,
// ClosedPoll otherwise. The read path never depends on it; a dead refresher
// only means the first request after expiry pays for the fetch.
type Refresher struct {
	Svc    *application.RatesService
	Cities []string

	OpenPoll   time.Duration
	ClosedPoll time.Duration
	Log        *zap.Logger

	now func() time.Time
}

func (w *Refresher) Start(ctx context.Context) {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	if w.OpenPoll <= 0 {
		w.OpenPoll = application.DefaultMarketTTL
	}
	if w.ClosedPoll <= 0 {
		w.ClosedPoll = application.DefaultOffHoursTTL
	}
	if w.now == nil {
		w.now = func() time.Time { return time.Now().UTC() }
	}
	if len(w.Cities) == 0 {
		w.Cities = []string{domain.DefaultCity}
	}

	log.Info("refresher_started",
		zap.Strings("cities", w.Cities),
		zap.Duration("open_poll", w.OpenPoll),
		zap.Duration("closed_poll", w.ClosedPoll),
	)

	timer := time.NewTimer(0) // first tick immediately
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("refresher_stopped")
			return
		case <-timer.C:
			w.tick(ctx, log)
			timer.Reset(w.interval())
		}
	}
}

// interval re-evaluates the market calendar every cycle so the cadence
// tightens when the market opens.
func (w *Refresher) interval() time.Duration {
	if domain.IsMarketOpen(w.now()) {
		return w.OpenPoll
	}
	return w.ClosedPoll
}

func (w *Refresher) tick(ctx context.Context, log *zap.Logger) {
	for _, city := range w.Cities {
		if err := w.Svc.Refresh(ctx, city); err != nil {
			log.Warn("refresh_failed", zap.String("city", city), zap.Error(err))
			continue
		}
		log.Info("refresh_done", zap.String("city", city))
	}
}
