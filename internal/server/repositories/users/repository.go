package users

import (
	"context"
	"time"

	"github.com/rcabrera/citywatch/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	SetResetToken(ctx context.Context, userID, token string, expires time.Time) error
	// GetByValidResetToken resolves a user by an unexpired reset token.
	GetByValidResetToken(ctx context.Context, token string) (*models.User, error)
	// UpdatePassword stores a new hash and clears any reset token.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	// UpdateContact updates the mutable profile fields, keyed by email.
	UpdateContact(ctx context.Context, email, houseNo, barangay, number string) (*models.User, error)
}
