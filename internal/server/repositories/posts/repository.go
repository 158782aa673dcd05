package posts

import (
	"context"

	"github.com/rcabrera/citywatch/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	ListAll(ctx context.Context) ([]*models.Post, error)
}
