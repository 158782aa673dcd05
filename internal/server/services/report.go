package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rcabrera/citywatch/internal/common"
	"github.com/rcabrera/citywatch/internal/logging"
	"github.com/rcabrera/citywatch/internal/server/config"
	"github.com/rcabrera/citywatch/internal/server/mail"
	"github.com/rcabrera/citywatch/internal/server/models"
	"github.com/rcabrera/citywatch/internal/server/objectstore"
	"github.com/rcabrera/citywatch/internal/server/repositories/repomanager"
	"github.com/rcabrera/citywatch/internal/server/sequence"
)

// CreateReportInput is one incident submission. Image is the raw upload
// body; a nil Image means the report carries no photo.
type CreateReportInput struct {
	ReportType       string
	Category         string
	Name             string
	Location         string
	Comment          string
	Image            []byte
	ImageContentType string
	PostedBy         string
}

// ReportService implements the incident report lifecycle. Creation follows
// a strict order: validate, upload the image, allocate the sequential ID,
// persist. A failure at any step aborts the creation; an ID consumed by a
// failed insert is simply never reused.
type ReportService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	allocator       *sequence.Allocator
	store           objectstore.Store
	mailer          mail.Mailer
	log             logging.Logger
	adminEmail      string
	outboundTimeout time.Duration
}

func NewReportService(db *sql.DB, m repomanager.RepositoryManager, a *sequence.Allocator, store objectstore.Store, mailer mail.Mailer, log logging.Logger, cfg *config.Config) *ReportService {
	return &ReportService{
		db:              db,
		repomanager:     m,
		allocator:       a,
		store:           store,
		mailer:          mailer,
		log:             log,
		adminEmail:      cfg.AdminEmail,
		outboundTimeout: cfg.OutboundTimeout,
	}
}

func (s *ReportService) validate(in *CreateReportInput) error {
	v := common.NewValidationError()
	v.Require("reportType", in.ReportType)
	v.Require("category", in.Category)
	v.Require("name", in.Name)
	v.Require("location", in.Location)
	v.Require("postedBy", in.PostedBy)
	return v.Err()
}

// Create validates, uploads the image, allocates the next report ID, and
// persists the record. The admin notification email goes out asynchronously
// after the record exists; its failure only produces a log line.
func (s *ReportService) Create(ctx context.Context, in *CreateReportInput) (*models.Report, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	var imageURL *string
	if len(in.Image) > 0 {
		url, err := s.store.Upload(ctx, "reports", in.ImageContentType, in.Image)
		if err != nil {
			return nil, err
		}
		imageURL = &url
	}

	reportID, err := s.allocator.NextID(ctx, models.CounterReportID, sequence.ReportIDWidth)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		ReportID:   reportID,
		ReportType: in.ReportType,
		Category:   in.Category,
		Name:       in.Name,
		Location:   in.Location,
		Comment:    in.Comment,
		Image:      imageURL,
		PostedBy:   in.PostedBy,
	}

	repo := s.repomanager.Reports(s.db)
	created, err := repo.Create(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("error creating report: %w", err)
	}

	s.log.Info(ctx, "report created", "reportId", created.ReportID, "category", created.Category)
	s.notifyAdmin(created)

	return created, nil
}

// notifyAdmin emails the moderation inbox about a new report. Best-effort:
// runs off the request goroutine and logs failures.
func (s *ReportService) notifyAdmin(report *models.Report) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.outboundTimeout)
		defer cancel()

		msg := mail.Message{
			To:      s.adminEmail,
			Subject: fmt.Sprintf("New report %s", report.ReportID),
			Text: fmt.Sprintf("A new %s report (%s) was submitted at %s: %s",
				report.ReportType, report.Category, report.Location, report.Comment),
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			s.log.Error(ctx, "failed to send report notification", "reportId", report.ReportID, "error", err)
		}
	}()
}

// ListAll returns every report, newest first.
func (s *ReportService) ListAll(ctx context.Context) ([]*models.Report, error) {
	repo := s.repomanager.Reports(s.db)
	reports, err := repo.ListAll(ctx)
	if err != nil {
		return nil, common.ErrInternal
	}
	return reports, nil
}

// ListBySubmitter returns reports created by one user, newest first.
func (s *ReportService) ListBySubmitter(ctx context.Context, userID string) ([]*models.Report, error) {
	repo := s.repomanager.Reports(s.db)
	reports, err := repo.ListBySubmitter(ctx, userID)
	if err != nil {
		return nil, common.ErrInternal
	}
	return reports, nil
}

// ListResponded returns reports whose responded flag is set, newest first.
func (s *ReportService) ListResponded(ctx context.Context) ([]*models.Report, error) {
	repo := s.repomanager.Reports(s.db)
	reports, err := repo.ListResponded(ctx)
	if err != nil {
		return nil, common.ErrInternal
	}
	return reports, nil
}

// MarkResponded sets the responded flag on a report addressed by its
// sequential ID. Marking an already-responded report is a no-op.
func (s *ReportService) MarkResponded(ctx context.Context, reportID string) (*models.Report, error) {
	repo := s.repomanager.Reports(s.db)
	report, err := repo.MarkResponded(ctx, reportID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return report, nil
}

// MarkArchived sets the archived flag; independent of responded.
func (s *ReportService) MarkArchived(ctx context.Context, reportID string) (*models.Report, error) {
	repo := s.repomanager.Reports(s.db)
	report, err := repo.MarkArchived(ctx, reportID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return report, nil
}

// Delete removes a report by storage key. Deleting an absent report
// succeeds; the sequential ID stays consumed either way.
func (s *ReportService) Delete(ctx context.Context, id int64) error {
	repo := s.repomanager.Reports(s.db)
	if err := repo.Delete(ctx, id); err != nil {
		return common.ErrInternal
	}
	return nil
}
