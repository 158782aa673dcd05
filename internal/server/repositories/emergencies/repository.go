package emergencies

import (
	"context"

	"github.com/rcabrera/citywatch/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, emergency *models.Emergency) (*models.Emergency, error)
	ListAll(ctx context.Context) ([]*models.Emergency, error)
	ListBySubmitter(ctx context.Context, userID string) ([]*models.Emergency, error)
	ListResponded(ctx context.Context) ([]*models.Emergency, error)
	MarkResponded(ctx context.Context, emergencyID string) (*models.Emergency, error)
	MarkArchived(ctx context.Context, emergencyID string) (*models.Emergency, error)
	Delete(ctx context.Context, id int64) error
}
