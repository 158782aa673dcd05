package counters

import (
	"context"
	"fmt"

	"github.com/rcabrera/citywatch/internal/common"
	"github.com/rcabrera/citywatch/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// IncrementAndGet runs the upsert and increment as one statement; the
// row-level lock taken by ON CONFLICT DO UPDATE serializes concurrent
// callers, so the returned values are unique and gapless per key.
func (r *PostgresRepository) IncrementAndGet(ctx context.Context, key string) (int64, error) {
	query :=
		`INSERT INTO counters (id, seq)
		 VALUES ($1, 1)
		 ON CONFLICT (id) DO UPDATE SET seq = counters.seq + 1
		 RETURNING seq
		 `

	var seq int64
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&seq); err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrAllocation, err)
	}

	return seq, nil
}

func (r *PostgresRepository) EnsureInitialized(ctx context.Context, key string, start int64) error {
	query :=
		`INSERT INTO counters (id, seq)
		 VALUES ($1, $2)
		 ON CONFLICT (id) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, key, start); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
