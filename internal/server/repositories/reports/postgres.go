package reports

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

const reportColumns = `id, report_id, report_type, category, name, location, comment, image,
		posted_by, responded, archived, created_at`

func scanReport(row interface{ Scan(...any) error }) (*models.Report, error) {
	rep := &models.Report{}
	err := row.Scan(&rep.ID, &rep.ReportID, &rep.ReportType, &rep.Category, &rep.Name,
		&rep.Location, &rep.Comment, &rep.Image, &rep.PostedBy, &rep.Responded,
		&rep.Archived, &rep.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *PostgresRepository) Create(ctx context.Context, report *models.Report) (*models.Report, error) {
	query :=
		`INSERT INTO reports (report_id, report_type, category, name, location, comment, image, posted_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, responded, archived, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		report.ReportID, report.ReportType, report.Category, report.Name,
		report.Location, report.Comment, report.Image, report.PostedBy).
		Scan(&report.ID, &report.Responded, &report.Archived, &report.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return report, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Report, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Report, error) {
	return r.list(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC`)
}

func (r *PostgresRepository) ListBySubmitter(ctx context.Context, userID string) ([]*models.Report, error) {
	return r.list(ctx, `SELECT `+reportColumns+` FROM reports WHERE posted_by = $1 ORDER BY created_at DESC`, userID)
}

func (r *PostgresRepository) ListResponded(ctx context.Context) ([]*models.Report, error) {
	return r.list(ctx, `SELECT `+reportColumns+` FROM reports WHERE responded ORDER BY created_at DESC`)
}

func (r *PostgresRepository) setFlag(ctx context.Context, column, reportID string) (*models.Report, error) {
	query := `UPDATE reports SET ` + column + ` = TRUE WHERE report_id = $1 RETURNING ` + reportColumns

	rep, err := scanReport(r.db.QueryRowContext(ctx, query, reportID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rep, nil
}

func (r *PostgresRepository) MarkResponded(ctx context.Context, reportID string) (*models.Report, error) {
	return r.setFlag(ctx, "responded", reportID)
}

func (r *PostgresRepository) MarkArchived(ctx context.Context, reportID string) (*models.Report, error) {
	return r.setFlag(ctx, "archived", reportID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
