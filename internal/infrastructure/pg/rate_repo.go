package pg

import (
	"context"
	"errors"

	"goldrates-service/internal/application"
	"goldrates-service/internal/domain"

	"github.com/jackc/pgx/v5"
)

type RateRepo struct{ db *DB }

func NewRateRepo(db *DB) *RateRepo { return &RateRepo{db: db} }

var _ application.RateRepo = (*RateRepo)(nil)

func (r *RateRepo) GetLatest(ctx context.Context, city string) (domain.RateSnapshot, error) {
	const q = `
        SELECT city, gold_24k::float8, gold_22k::float8, gold_18k::float8,
               silver_per_gram::float8, silver_per_kg::float8, observed_at, source
        FROM gold_silver_rates WHERE city=$1`
	var out domain.RateSnapshot
	err := r.db.Pool.QueryRow(ctx, q, city).Scan(
		&out.City, &out.Gold24K, &out.Gold22K, &out.Gold18K,
		&out.SilverPerGram, &out.SilverPerKg, &out.Timestamp, &out.Source,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RateSnapshot{}, application.ErrNotFound
		}
		return domain.RateSnapshot{}, err
	}
	return out, nil
}

// Upsert replaces the city's record, last-write-wins by observation time:
// a racing writer with an older snapshot leaves the row untouched.
func (r *RateRepo) Upsert(ctx context.Context, snap domain.RateSnapshot) error {
	const up = `
        INSERT INTO gold_silver_rates(
            city, gold_24k, gold_22k, gold_18k, silver_per_gram, silver_per_kg,
            observed_at, source, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
        ON CONFLICT (city) DO UPDATE
          SET gold_24k=EXCLUDED.gold_24k,
              gold_22k=EXCLUDED.gold_22k,
              gold_18k=EXCLUDED.gold_18k,
              silver_per_gram=EXCLUDED.silver_per_gram,
              silver_per_kg=EXCLUDED.silver_per_kg,
              observed_at=EXCLUDED.observed_at,
              source=EXCLUDED.source,
              updated_at=now()
          WHERE EXCLUDED.observed_at >= gold_silver_rates.observed_at`
	_, err := r.db.Pool.Exec(ctx, up,
		snap.City, snap.Gold24K, snap.Gold22K, snap.Gold18K,
		snap.SilverPerGram, snap.SilverPerKg, snap.Timestamp, snap.Source,
	)
	return err
}
