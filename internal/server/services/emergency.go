package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rcabrera/citywatch/internal/common"
	"github.com/rcabrera/citywatch/internal/logging"
	"github.com/rcabrera/citywatch/internal/server/broadcast"
	"github.com/rcabrera/citywatch/internal/server/config"
	"github.com/rcabrera/citywatch/internal/server/mail"
	"github.com/rcabrera/citywatch/internal/server/models"
	"github.com/rcabrera/citywatch/internal/server/objectstore"
	"github.com/rcabrera/citywatch/internal/server/repositories/repomanager"
	"github.com/rcabrera/citywatch/internal/server/sequence"
)

// CreateEmergencyInput is one emergency submission.
type CreateEmergencyInput struct {
	Category         string
	FullName         string
	Barangay         string
	Location         string
	Comment          string
	Image            []byte
	ImageContentType string
	PostedBy         string
}

// EmergencyService mirrors the report lifecycle for emergencies, with one
// addition: a successful creation is pushed to connected dashboards through
// the broadcast hub.
type EmergencyService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	allocator       *sequence.Allocator
	store           objectstore.Store
	mailer          mail.Mailer
	hub             *broadcast.Hub
	log             logging.Logger
	adminEmail      string
	outboundTimeout time.Duration
}

func NewEmergencyService(db *sql.DB, m repomanager.RepositoryManager, a *sequence.Allocator, store objectstore.Store, mailer mail.Mailer, hub *broadcast.Hub, log logging.Logger, cfg *config.Config) *EmergencyService {
	return &EmergencyService{
		db:              db,
		repomanager:     m,
		allocator:       a,
		store:           store,
		mailer:          mailer,
		hub:             hub,
		log:             log,
		adminEmail:      cfg.AdminEmail,
		outboundTimeout: cfg.OutboundTimeout,
	}
}

func (s *EmergencyService) validate(in *CreateEmergencyInput) error {
	v := common.NewValidationError()
	v.Require("category", in.Category)
	v.Require("fullName", in.FullName)
	v.Require("barangay", in.Barangay)
	v.Require("location", in.Location)
	v.Require("postedBy", in.PostedBy)
	return v.Err()
}

// Create validates, uploads the image, allocates the next emergency ID, and
// persists the record, then broadcasts it and notifies the admin inbox.
// Broadcast and mail are both best-effort and cannot fail the creation.
func (s *EmergencyService) Create(ctx context.Context, in *CreateEmergencyInput) (*models.Emergency, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	var imageURL *string
	if len(in.Image) > 0 {
		url, err := s.store.Upload(ctx, "emergencies", in.ImageContentType, in.Image)
		if err != nil {
			return nil, err
		}
		imageURL = &url
	}

	emergencyID, err := s.allocator.NextID(ctx, models.CounterEmergencyID, sequence.ReportIDWidth)
	if err != nil {
		return nil, err
	}

	emergency := &models.Emergency{
		EmergencyID: emergencyID,
		Category:    in.Category,
		FullName:    in.FullName,
		Barangay:    in.Barangay,
		Location:    in.Location,
		Comment:     in.Comment,
		Image:       imageURL,
		PostedBy:    in.PostedBy,
	}

	repo := s.repomanager.Emergencies(s.db)
	created, err := repo.Create(ctx, emergency)
	if err != nil {
		return nil, fmt.Errorf("error creating emergency: %w", err)
	}

	s.log.Info(ctx, "emergency created", "emergencyId", created.EmergencyID, "category", created.Category)
	s.hub.Publish("new-emergency", created)
	s.notifyAdmin(created)

	return created, nil
}

func (s *EmergencyService) notifyAdmin(emergency *models.Emergency) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.outboundTimeout)
		defer cancel()

		msg := mail.Message{
			To:      s.adminEmail,
			Subject: fmt.Sprintf("New emergency %s", emergency.EmergencyID),
			Text: fmt.Sprintf("A new %s emergency was reported by %s in %s (%s): %s",
				emergency.Category, emergency.FullName, emergency.Barangay, emergency.Location, emergency.Comment),
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			s.log.Error(ctx, "failed to send emergency notification", "emergencyId", emergency.EmergencyID, "error", err)
		}
	}()
}

func (s *EmergencyService) ListAll(ctx context.Context) ([]*models.Emergency, error) {
	repo := s.repomanager.Emergencies(s.db)
	emergencies, err := repo.ListAll(ctx)
	if err != nil {
		return nil, common.ErrInternal
	}
	return emergencies, nil
}

func (s *EmergencyService) ListBySubmitter(ctx context.Context, userID string) ([]*models.Emergency, error) {
	repo := s.repomanager.Emergencies(s.db)
	emergencies, err := repo.ListBySubmitter(ctx, userID)
	if err != nil {
		return nil, common.ErrInternal
	}
	return emergencies, nil
}

func (s *EmergencyService) ListResponded(ctx context.Context) ([]*models.Emergency, error) {
	repo := s.repomanager.Emergencies(s.db)
	emergencies, err := repo.ListResponded(ctx)
	if err != nil {
		return nil, common.ErrInternal
	}
	return emergencies, nil
}

func (s *EmergencyService) MarkResponded(ctx context.Context, emergencyID string) (*models.Emergency, error) {
	repo := s.repomanager.Emergencies(s.db)
	emergency, err := repo.MarkResponded(ctx, emergencyID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return emergency, nil
}

func (s *EmergencyService) MarkArchived(ctx context.Context, emergencyID string) (*models.Emergency, error) {
	repo := s.repomanager.Emergencies(s.db)
	emergency, err := repo.MarkArchived(ctx, emergencyID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return emergency, nil
}

func (s *EmergencyService) Delete(ctx context.Context, id int64) error {
	repo := s.repomanager.Emergencies(s.db)
	if err := repo.Delete(ctx, id); err != nil {
		return common.ErrInternal
	}
	return nil
}
