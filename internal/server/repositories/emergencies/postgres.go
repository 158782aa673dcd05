package emergencies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rcabrera/citywatch/internal/common"
	"github.com/rcabrera/citywatch/internal/dbx"
	"github.com/rcabrera/citywatch/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const emergencyColumns = `id, emergency_id, category, full_name, barangay, location, comment,
		image, posted_by, responded, archived, created_at`

func scanEmergency(row interface{ Scan(...any) error }) (*models.Emergency, error) {
	e := &models.Emergency{}
	err := row.Scan(&e.ID, &e.EmergencyID, &e.Category, &e.FullName, &e.Barangay,
		&e.Location, &e.Comment, &e.Image, &e.PostedBy, &e.Responded,
		&e.Archived, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) Create(ctx context.Context, emergency *models.Emergency) (*models.Emergency, error) {
	query :=
		`INSERT INTO emergencies (emergency_id, category, full_name, barangay, location, comment, image, posted_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, responded, archived, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		emergency.EmergencyID, emergency.Category, emergency.FullName, emergency.Barangay,
		emergency.Location, emergency.Comment, emergency.Image, emergency.PostedBy).
		Scan(&emergency.ID, &emergency.Responded, &emergency.Archived, &emergency.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return emergency, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Emergency, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Emergency
	for rows.Next() {
		e, err := scanEmergency(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Emergency, error) {
	return r.list(ctx, `SELECT `+emergencyColumns+` FROM emergencies ORDER BY created_at DESC`)
}

func (r *PostgresRepository) ListBySubmitter(ctx context.Context, userID string) ([]*models.Emergency, error) {
	return r.list(ctx, `SELECT `+emergencyColumns+` FROM emergencies WHERE posted_by = $1 ORDER BY created_at DESC`, userID)
}

func (r *PostgresRepository) ListResponded(ctx context.Context) ([]*models.Emergency, error) {
	return r.list(ctx, `SELECT `+emergencyColumns+` FROM emergencies WHERE responded ORDER BY created_at DESC`)
}

func (r *PostgresRepository) setFlag(ctx context.Context, column, emergencyID string) (*models.Emergency, error) {
	query := `UPDATE emergencies SET ` + column + ` = TRUE WHERE emergency_id = $1 RETURNING ` + emergencyColumns

	e, err := scanEmergency(r.db.QueryRowContext(ctx, query, emergencyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) MarkResponded(ctx context.Context, emergencyID string) (*models.Emergency, error) {
	return r.setFlag(ctx, "responded", emergencyID)
}

func (r *PostgresRepository) MarkArchived(ctx context.Context, emergencyID string) (*models.Emergency, error) {
	return r.setFlag(ctx, "archived", emergencyID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM emergencies WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
