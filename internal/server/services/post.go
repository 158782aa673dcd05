package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rcabrera/citywatch/internal/common"
	"github.com/rcabrera/citywatch/internal/logging"
	"github.com/rcabrera/citywatch/internal/server/models"
	"github.com/rcabrera/citywatch/internal/server/repositories/repomanager"
)

// PostService handles community posts. Posts get no sequential ID, no
// image, and no notification.
type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *PostService {
	return &PostService{db: db, repomanager: m, log: log}
}

// Create validates and stores a community post.
func (s *PostService) Create(ctx context.Context, title, description, postedBy string) (*models.Post, error) {
	v := common.NewValidationError()
	v.Require("title", title)
	v.Require("description", description)
	v.Require("postedBy", postedBy)
	if err := v.Err(); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       title,
		Description: description,
		PostedBy:    postedBy,
	}

	repo := s.repomanager.Posts(s.db)
	created, err := repo.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	return created, nil
}

// ListAll returns every post, newest first.
func (s *PostService) ListAll(ctx context.Context) ([]*models.Post, error) {
	repo := s.repomanager.Posts(s.db)
	posts, err := repo.ListAll(ctx)
	if err != nil {
		return nil, common.ErrInternal
	}
	return posts, nil
}
