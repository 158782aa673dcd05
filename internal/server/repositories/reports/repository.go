package reports

import (
	"context"

	"github.com/rcabrera/citywatch/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, report *models.Report) (*models.Report, error)
	ListAll(ctx context.Context) ([]*models.Report, error)
	ListBySubmitter(ctx context.Context, userID string) ([]*models.Report, error)
	ListResponded(ctx context.Context) ([]*models.Report, error)
	// MarkResponded and MarkArchived address records by their sequential
	// report ID, not the storage key, and return ErrNotFound when absent.
	MarkResponded(ctx context.Context, reportID string) (*models.Report, error)
	MarkArchived(ctx context.Context, reportID string) (*models.Report, error)
	// Delete removes a record by storage key. Deleting an absent record is
	// not an error; the sequential ID is never reissued either way.
	Delete(ctx context.Context, id int64) error
}
