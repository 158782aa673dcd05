package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rcabrera/citywatch/internal/common"
	"github.com/rcabrera/citywatch/internal/logging"
	"github.com/rcabrera/citywatch/internal/server/auth"
	"github.com/rcabrera/citywatch/internal/server/config"
	"github.com/rcabrera/citywatch/internal/server/models"
	"github.com/rcabrera/citywatch/internal/server/repositories/repomanager"
)

// AdminService handles moderation accounts. Admins do not get sequential
// IDs; only their email must be unique.
type AdminService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	log                   logging.Logger
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

func NewAdminService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger, cfg *config.Config) *AdminService {
	return &AdminService{
		db:                    db,
		repomanager:           m,
		log:                   log,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// Register creates a moderation account. A duplicate email surfaces as
// ErrConflict.
func (s *AdminService) Register(ctx context.Context, username, email, password string) (*models.Admin, error) {
	v := common.NewValidationError()
	v.Require("username", username)
	v.Require("email", email)
	v.Require("password", password)
	if email != "" && !emailRe.MatchString(email) {
		v.Add("email", "must be a valid email address")
	}
	if password != "" && len(password) < minPasswordLength {
		v.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrInternal
	}

	admin := &models.Admin{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	repo := s.repomanager.Admins(s.db)
	created, err := repo.Create(ctx, admin)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("error creating admin: %w", err)
	}

	s.log.Info(ctx, "admin registered", "email", created.Email)
	return created, nil
}

// Login verifies credentials and returns a signed token plus the account.
func (s *AdminService) Login(ctx context.Context, email, password string) (string, *models.Admin, error) {
	repo := s.repomanager.Admins(s.db)

	admin, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", nil, common.ErrUnauthorized
		}
		return "", nil, common.ErrInternal
	}

	if !auth.ComparePassword(admin.PasswordHash, password) {
		return "", nil, common.ErrUnauthorized
	}

	token, err := auth.GenerateToken(admin.ID, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", nil, common.ErrInternal
	}

	return token, admin, nil
}

// GetByID resolves an admin account by storage key. The admin middleware
// uses it to decide whether a token holder may reach moderation routes.
func (s *AdminService) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	repo := s.repomanager.Admins(s.db)
	admin, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return admin, nil
}

// List returns every moderation account.
func (s *AdminService) List(ctx context.Context) ([]*models.Admin, error) {
	repo := s.repomanager.Admins(s.db)
	admins, err := repo.List(ctx)
	if err != nil {
		return nil, common.ErrInternal
	}
	return admins, nil
}
