package repositories

import (
	"context"

	"github.com/pulse/backend/internal/models"
)

// VideoRepository exposes data access for videos and their comments.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, limit int) ([]models.Video, error)
	// ListByOwner returns videos whose owner reference is the user's id or email,
	// plus legacy ownerless rows whose uploader name is the email's local part.
	ListByOwner(ctx context.Context, user models.User) ([]models.Video, error)
	UpdateDetails(ctx context.Context, id, title, description string) (models.Video, error)
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) (int64, error)
	// MutateLikes replaces the like set with fn's result under a row lock.
	MutateLikes(ctx context.Context, id string, fn func(likes []string) []string) ([]string, error)

	AddComment(ctx context.Context, comment models.Comment) (int, error)
	ListComments(ctx context.Context, videoID string) ([]models.Comment, error)
	FindComment(ctx context.Context, videoID, commentID string) (models.Comment, error)
	DeleteComment(ctx context.Context, videoID, commentID string) error
}
