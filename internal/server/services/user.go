// Package services contains server-side business logic. This file implements
// UserService: resident registration with sequential user IDs, login, and
// the password reset flow.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/rcabrera/citywatch/internal/common"
	"github.com/rcabrera/citywatch/internal/logging"
	"github.com/rcabrera/citywatch/internal/server/auth"
	"github.com/rcabrera/citywatch/internal/server/config"
	"github.com/rcabrera/citywatch/internal/server/mail"
	"github.com/rcabrera/citywatch/internal/server/models"
	"github.com/rcabrera/citywatch/internal/server/repositories/repomanager"
	"github.com/rcabrera/citywatch/internal/server/sequence"
)

const (
	minPasswordLength  = 6
	resetTokenBytes    = 3
	resetTokenValidity = 30 * time.Minute
)

var (
	emailRe  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	numberRe = regexp.MustCompile(`^\d{11}$`)
)

// RegisterUserRequest carries everything a resident submits on sign-up.
type RegisterUserRequest struct {
	LastName       string
	FirstName      string
	MiddleName     string
	Suffix         string
	HouseNo        string
	Barangay       string
	Birthday       time.Time
	Gender         string
	Number         string
	Email          string
	Password       string
	ImageID        string
	Certification  string
	ImageClearance string
}

// UserService provides resident account operations:
// - Register: validate, allocate a year-scoped user ID, create the account
// - Login: verify credentials and mint a JWT
// - ForgotPassword / ResetPassword / UpdatePassword: the reset flow
// - UpdateContact, List, GetByID: profile management
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	allocator             *sequence.Allocator
	mailer                mail.Mailer
	log                   logging.Logger
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	outboundTimeout       time.Duration
	mailFrom              string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, a *sequence.Allocator, mailer mail.Mailer, log logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		allocator:             a,
		mailer:                mailer,
		log:                   log,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		outboundTimeout:       cfg.OutboundTimeout,
		mailFrom:              cfg.SMTPFrom,
	}
}

func (s *UserService) validateRegistration(req *RegisterUserRequest) error {
	v := common.NewValidationError()
	v.Require("lastname", req.LastName)
	v.Require("firstname", req.FirstName)
	v.Require("middlename", req.MiddleName)
	v.Require("houseno", req.HouseNo)
	v.Require("barangay", req.Barangay)
	v.Require("gender", req.Gender)
	v.Require("number", req.Number)
	v.Require("email", req.Email)
	v.Require("password", req.Password)
	v.Require("imageid", req.ImageID)
	if req.Birthday.IsZero() {
		v.Add("birthday", "is required")
	}
	if req.Number != "" && !numberRe.MatchString(req.Number) {
		v.Add("number", "must be 11 digits")
	}
	if req.Email != "" && !emailRe.MatchString(req.Email) {
		v.Add("email", "must be a valid email address")
	}
	if req.Password != "" && len(req.Password) < minPasswordLength {
		v.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	return v.Err()
}

// Register validates the request as a whole, allocates the next "<year>-<NN>"
// user ID, and creates the account. A duplicate email surfaces as ErrConflict.
func (s *UserService) Register(ctx context.Context, req *RegisterUserRequest) (*models.User, error) {
	if err := s.validateRegistration(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, common.ErrInternal
	}

	userID, err := s.allocator.NextUserID(ctx)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UserID:         userID,
		LastName:       req.LastName,
		FirstName:      req.FirstName,
		MiddleName:     req.MiddleName,
		Suffix:         req.Suffix,
		HouseNo:        req.HouseNo,
		Barangay:       req.Barangay,
		Birthday:       req.Birthday,
		Gender:         req.Gender,
		Number:         req.Number,
		Email:          req.Email,
		PasswordHash:   hash,
		ImageID:        req.ImageID,
		Certification:  req.Certification,
		ImageClearance: req.ImageClearance,
		Role:           "user",
	}

	repo := s.repomanager.Users(s.db)
	created, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "userId", created.UserID)
	return created, nil
}

// Login verifies the email/password pair and returns a signed token plus the
// account. A missing account and a wrong password are indistinguishable to
// the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", nil, common.ErrUnauthorized
		}
		return "", nil, common.ErrInternal
	}

	if !auth.ComparePassword(user.PasswordHash, password) {
		return "", nil, common.ErrUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", nil, common.ErrInternal
	}

	return token, user, nil
}

// ForgotPassword issues a short-lived reset token and emails it to the
// account's address. Unlike the creation notifications, this send is not
// best-effort: the token is useless if the email never arrives.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}

	token, err := common.MakeRandHexString(resetTokenBytes)
	if err != nil {
		return common.ErrInternal
	}

	expires := time.Now().Add(resetTokenValidity)
	if err := repo.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return fmt.Errorf("error storing reset token: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.outboundTimeout)
	defer cancel()
	msg := mail.Message{
		To:      user.Email,
		Subject: "Password reset code",
		Text:    fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", token, int(resetTokenValidity.Minutes())),
	}
	if err := s.mailer.Send(sendCtx, msg); err != nil {
		s.log.Error(ctx, "failed to send reset email", "error", err)
		return common.ErrInternal
	}

	return nil
}

// ResetPassword exchanges an unexpired reset token for a new password and
// invalidates the token.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	v := common.NewValidationError()
	v.Require("token", token)
	v.Require("password", newPassword)
	if newPassword != "" && len(newPassword) < minPasswordLength {
		v.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if err := v.Err(); err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByValidResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrResetTokenExpired
		}
		return common.ErrInternal
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return common.ErrInternal
	}

	if err := repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	s.log.Info(ctx, "password reset completed", "userId", user.UserID)
	return nil
}

// UpdatePassword changes a logged-in user's password after verifying the
// current one.
func (s *UserService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	v := common.NewValidationError()
	v.Require("currentPassword", currentPassword)
	v.Require("newPassword", newPassword)
	if newPassword != "" && len(newPassword) < minPasswordLength {
		v.Add("newPassword", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if err := v.Err(); err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}

	if !auth.ComparePassword(user.PasswordHash, currentPassword) {
		return common.ErrUnauthorized
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return common.ErrInternal
	}

	return repo.UpdatePassword(ctx, user.ID, hash)
}

// UpdateContact updates a resident's mutable contact fields, keyed by email.
func (s *UserService) UpdateContact(ctx context.Context, email, houseNo, barangay, number string) (*models.User, error) {
	v := common.NewValidationError()
	v.Require("email", email)
	if number != "" && !numberRe.MatchString(number) {
		v.Add("number", "must be 11 digits")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.UpdateContact(ctx, email, houseNo, barangay, number)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return user, nil
}

// GetByID fetches one account by storage key.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return user, nil
}

// List returns every registered resident, newest first.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	repo := s.repomanager.Users(s.db)
	users, err := repo.List(ctx)
	if err != nil {
		return nil, common.ErrInternal
	}
	return users, nil
}
