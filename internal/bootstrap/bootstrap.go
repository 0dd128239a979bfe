package bootstrap

import (
	"context"

	httpserver "goldrates-service/internal/infrastructure/http"
	"goldrates-service/internal/infrastructure/worker"
)

// InitAPI assembles the HTTP server with all collaborators. The returned
// cleanup closes the PG pool and the Redis client.
func InitAPI(ctx context.Context) (*httpserver.Server, func(), error) {
	log := ProvideLogger()
	cfg := ProvideConfig()

	db, closeDB, err := ProvideDB(ctx, log, cfg)
	if err != nil {
		return nil, func() {}, err
	}
	shared, closeCache, err := ProvideSnapshotCache(cfg)
	if err != nil {
		closeDB()
		return nil, func() {}, err
	}

	m := ProvideMetrics()
	svc := ProvideRatesService(cfg, ProvideRateRepo(db), ProvideRateProvider(cfg), ProvideSecretStore(), shared, m, log)
	srv := httpserver.NewServer(svc).WithPing(db.Ping).WithMetrics(m)

	cleanup := func() {
		closeCache()
		closeDB()
	}
	return srv, cleanup, nil
}

// InitRefresher assembles the standalone cache-warming worker.
func InitRefresher(ctx context.Context) (*worker.Refresher, func(), error) {
	log := ProvideLogger()
	cfg := ProvideConfig()

	db, closeDB, err := ProvideDB(ctx, log, cfg)
	if err != nil {
		return nil, func() {}, err
	}
	shared, closeCache, err := ProvideSnapshotCache(cfg)
	if err != nil {
		closeDB()
		return nil, func() {}, err
	}

	svc := ProvideRatesService(cfg, ProvideRateRepo(db), ProvideRateProvider(cfg), ProvideSecretStore(), shared, ProvideMetrics(), log)
	w := ProvideRefresher(cfg, svc, log)

	cleanup := func() {
		closeCache()
		closeDB()
	}
	return w, cleanup, nil
}
