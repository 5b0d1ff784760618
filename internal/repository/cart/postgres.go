package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.SugaredLogger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.SugaredLogger) Repository {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Read(ctx context.Context, key string) ([]byte, error) {
	const q = `
SELECT payload::text
FROM cart_records
WHERE key = $1
`
	var payload string
	if err := r.pool.QueryRow(ctx, q, key).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Errorf("cart repo: read key=%s error=%v", key, err)
		return nil, err
	}
	return []byte(payload), nil
}

func (r *postgresRepo) Write(ctx context.Context, key string, payload []byte) error {
	const q = `
INSERT INTO cart_records (key, payload, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (key) DO UPDATE SET
    payload = EXCLUDED.payload,
    updated_at = EXCLUDED.updated_at
`
	if _, err := r.pool.Exec(ctx, q, key, string(payload)); err != nil {
		r.logger.Errorf("cart repo: write key=%s error=%v", key, err)
		return err
	}
	r.logger.Debugf("cart repo: wrote key=%s bytes=%d", key, len(payload))
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_records WHERE key = $1`, key); err != nil {
		r.logger.Errorf("cart repo: delete key=%s error=%v", key, err)
		return err
	}
	return nil
}
