package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// ExportRepository stores the audit trail of archived exports.
type ExportRepository struct {
	pool *pgxpool.Pool
}

var _ planet.ExportRepository = (*ExportRepository)(nil)

func NewExportRepository(pool *pgxpool.Pool) *ExportRepository {
	return &ExportRepository{pool: pool}
}

func (r *ExportRepository) Save(ctx context.Context, e *planet.Export) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO catalog_exports (id, object_key, row_count, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.ObjectKey, e.Rows, e.SizeBytes, e.CreatedAt)
	if err != nil {
		return errors.Wrap(err, errors.CodeDBQueryError, "failed to record export")
	}
	return nil
}

func (r *ExportRepository) Recent(ctx context.Context, limit int) ([]*planet.Export, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, object_key, row_count, size_bytes, created_at
		FROM catalog_exports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to list exports")
	}
	exports, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*planet.Export, error) {
		var e planet.Export
		err := row.Scan(&e.ID, &e.ObjectKey, &e.Rows, &e.SizeBytes, &e.CreatedAt)
		return &e, err
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to scan exports")
	}
	return exports, nil
}

//Personal.AI order the ending
