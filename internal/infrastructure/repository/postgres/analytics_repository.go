package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/drivesight/drivesight/internal/core/domain"
)

// AnalyticsRepository persists identification events consumed from the queue
// and serves aggregate stats to the API.
type AnalyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083102)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS identifications (
	id BIGSERIAL PRIMARY KEY,
	sign_name TEXT NOT NULL,
	category TEXT NOT NULL,
	confidence INTEGER NOT NULL,
	jurisdiction TEXT,
	model TEXT NOT NULL,
	used_fallback BOOLEAN NOT NULL DEFAULT FALSE,
	duration_ms BIGINT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_identifications_occurred_at ON identifications(occurred_at);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure identifications schema: %w", err)
	}
	return tx.Commit()
}

func (r *AnalyticsRepository) RecordIdentification(ctx context.Context, event domain.IdentificationEvent) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO identifications (sign_name, category, confidence, jurisdiction, model, used_fallback, duration_ms, occurred_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		event.Name,
		string(event.Category),
		event.Confidence,
		nullIfEmpty(event.Jurisdiction),
		event.Model,
		event.UsedFallback,
		event.DurationMS,
		time.UnixMilli(event.OccurredAt).UTC(),
	)
	if err != nil {
		return fmt.Errorf("record identification: %w", err)
	}
	return nil
}

func (r *AnalyticsRepository) Stats(ctx context.Context) (domain.IdentificationStats, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(AVG(confidence), 0), COALESCE(MAX(occurred_at), to_timestamp(0))
FROM identifications
`)

	var stats domain.IdentificationStats
	if err := row.Scan(&stats.TotalIdentifications, &stats.AverageConfidence, &stats.LastUpdated); err != nil {
		return domain.IdentificationStats{}, fmt.Errorf("query identification stats: %w", err)
	}
	return stats, nil
}
