package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/drivesight/drivesight/internal/core/domain"
)

type SignRepository struct {
	db *sql.DB
}

func NewSignRepository(db *sql.DB) *SignRepository {
	return &SignRepository{db: db}
}

func (r *SignRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS signs (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	mutcd_code TEXT,
	description TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_signs_category ON signs(category);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure signs schema: %w", err)
	}
	return tx.Commit()
}

func (r *SignRepository) Create(ctx context.Context, sign *domain.Sign) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO signs (id, name, category, mutcd_code, description, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, sign.ID, sign.Name, string(sign.Category), nullIfEmpty(sign.MUTCDCode), nullIfEmpty(sign.Description), sign.CreatedAt)
	if err != nil {
		return fmt.Errorf("create sign: %w", err)
	}
	return nil
}

func (r *SignRepository) GetByID(ctx context.Context, id string) (*domain.Sign, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, category, mutcd_code, description, created_at
FROM signs
WHERE id = $1
`, id)

	sign, err := scanSign(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrSignNotFound, "get sign", err)
		}
		return nil, fmt.Errorf("get sign by id: %w", err)
	}
	return sign, nil
}

func (r *SignRepository) List(ctx context.Context) ([]domain.Sign, error) {
	return r.list(ctx, `
SELECT id, name, category, mutcd_code, description, created_at
FROM signs
ORDER BY name
`)
}

func (r *SignRepository) ListByCategory(ctx context.Context, category domain.Category) ([]domain.Sign, error) {
	return r.list(ctx, `
SELECT id, name, category, mutcd_code, description, created_at
FROM signs
WHERE category = $1
ORDER BY name
`, string(category))
}

func (r *SignRepository) list(ctx context.Context, query string, args ...any) ([]domain.Sign, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list signs: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Sign, 0)
	for rows.Next() {
		sign, err := scanSign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sign: %w", err)
		}
		out = append(out, *sign)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signs: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSign(row rowScanner) (*domain.Sign, error) {
	var sign domain.Sign
	var category string
	var code, description sql.NullString

	if err := row.Scan(&sign.ID, &sign.Name, &category, &code, &description, &sign.CreatedAt); err != nil {
		return nil, err
	}
	sign.Category = domain.Category(category)
	sign.MUTCDCode = code.String
	sign.Description = description.String
	return &sign, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
