package bootstrap

import (
	"context"
	"errors"

	"goldrates-service/internal/application"
	"goldrates-service/internal/config"
	"goldrates-service/internal/infrastructure/httpx"
	"goldrates-service/internal/infrastructure/logx"
	"goldrates-service/internal/infrastructure/metrics"
	"goldrates-service/internal/infrastructure/pg"
	"goldrates-service/internal/infrastructure/provider"
	redisstore "goldrates-service/internal/infrastructure/redis"
	"goldrates-service/internal/infrastructure/secrets"
	"goldrates-service/internal/infrastructure/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required")

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() config.Config { return config.Load() }

func ProvideDB(ctx context.Context, log *zap.Logger, cfg config.Config) (*pg.DB, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}, ErrMissingDBURL
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, func() {}, err
	}
	if err := pg.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, func() {}, err
	}
	cleanup := func() {
		if log != nil {
			log.Info("closing pg")
		}
		db.Close()
	}
	return db, cleanup, nil
}

func ProvideRateRepo(db *pg.DB) application.RateRepo { return pg.NewRateRepo(db) }

func ProvideSecretStore() application.SecretStore { return secrets.EnvStore{} }

func ProvideSnapshotCache(cfg config.Config) (application.SnapshotCache, func(), error) {
	if cfg.CacheBackend != "redis" {
		return redisstore.Noop{}, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return redisstore.New(client), func() { _ = client.Close() }, nil
}

func ProvideRateProvider(cfg config.Config) application.RateProvider {
	switch cfg.Provider {
	case "ibja":
		return &provider.IBJAProvider{
			BaseURL: cfg.RatesAPIBase,
			Client:  httpx.New(cfg.FetchTimeout, cfg.FetchMaxAttempts, cfg.FetchInitialWait),
			Strict:  cfg.RatesStrictParse,
		}
	default:
		return provider.NewFake(7500)
	}
}

func ProvideMetrics() *metrics.Metrics { return metrics.New(prometheus.DefaultRegisterer) }

func ProvideRatesService(
	cfg config.Config,
	repo application.RateRepo,
	rp application.RateProvider,
	ss application.SecretStore,
	shared application.SnapshotCache,
	m *metrics.Metrics,
	log *zap.Logger,
) *application.RatesService {
	return application.NewRatesService(repo, rp, ss,
		application.WithSharedCache(shared),
		application.WithSecretName(cfg.RatesSecretName),
		application.WithTTLs(cfg.MarketTTL, cfg.OffHoursTTL),
		application.WithMetrics(m),
		application.WithLogger(log),
	)
}

func ProvideRefresher(cfg config.Config, svc *application.RatesService, log *zap.Logger) *worker.Refresher {
	return &worker.Refresher{
		Svc:        svc,
		Cities:     cfg.RefreshCities,
		OpenPoll:   cfg.MarketTTL,
		ClosedPoll: cfg.OffHoursTTL,
		Log:        log,
	}
}
