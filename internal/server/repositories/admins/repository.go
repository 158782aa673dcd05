package admins

import (
	"context"

	"github.com/rcabrera/citywatch/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	// GetByID is what the admin middleware uses to confirm that a token
	// actually belongs to an admin account.
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	List(ctx context.Context) ([]*models.Admin, error)
}
