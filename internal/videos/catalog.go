// Package videos implements the video catalog: publishing, the public feed and
// owner-only edits.
package videos

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pulse/backend/internal/apperrors"
	"github.com/pulse/backend/internal/logging"
	"github.com/pulse/backend/internal/models"
	"github.com/pulse/backend/internal/repositories"
)

// DefaultFeedLimit caps the feed when no limit is configured.
const DefaultFeedLimit = 100

// Store is the video persistence the catalog depends on.
type Store interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, limit int) ([]models.Video, error)
	UpdateDetails(ctx context.Context, id, title, description string) (models.Video, error)
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) (int64, error)
}

// CreateInput carries the fields of a newly published video.
type CreateInput struct {
	Title          string
	Description    string
	VideoURL       string
	ThumbnailURL   string
	Controls       bool
	Transformation *models.Transformation
}

var (
	errVideoMissing = apperrors.New(apperrors.KindNotFound, "Video not found")
	errNotOwner     = apperrors.New(apperrors.KindForbidden, "You can only modify your own videos")
)

// Catalog publishes and serves videos.
type Catalog struct {
	videos    Store
	users     repositories.UserFinder
	feedLimit int

	NowFunc func() time.Time
}

// NewCatalog constructs a catalog. users resolves the viewer's block list when
// building the feed.
func NewCatalog(videos Store, users repositories.UserFinder, feedLimit int) *Catalog {
	if feedLimit <= 0 {
		feedLimit = DefaultFeedLimit
	}
	return &Catalog{videos: videos, users: users, feedLimit: feedLimit, NowFunc: time.Now}
}

// Create publishes a video owned by actor.
func (c *Catalog) Create(ctx context.Context, actor models.Identity, input CreateInput) (models.Video, error) {
	ctx, span := logging.StartSpan(ctx, "videos.create")
	defer span.End()

	if actor.UserID == "" {
		return models.Video{}, apperrors.ErrUnauthorized
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.VideoURL = strings.TrimSpace(input.VideoURL)
	if input.Title == "" || input.Description == "" || input.VideoURL == "" {
		return models.Video{}, apperrors.New(apperrors.KindInvalidInput, "Title, description and videoUrl are required")
	}

	owner, err := c.author(ctx, actor)
	if err != nil {
		return models.Video{}, err
	}

	transformation := models.DefaultTransformation
	if t := input.Transformation; t != nil {
		if t.Width > 0 {
			transformation.Width = t.Width
		}
		if t.Height > 0 {
			transformation.Height = t.Height
		}
		if q := strings.TrimSpace(t.Quality); q != "" {
			transformation.Quality = q
		}
	}

	now := c.NowFunc().UTC()
	video := models.Video{
		ID:             models.NewObjectID(),
		UserID:         owner.ID,
		UserName:       owner.Identity().DisplayName(),
		Title:          input.Title,
		Description:    input.Description,
		VideoURL:       input.VideoURL,
		ThumbnailURL:   strings.TrimSpace(input.ThumbnailURL),
		Controls:       input.Controls,
		Transformation: transformation,
		Likes:          []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := c.videos.Create(ctx, video); err != nil {
		return models.Video{}, apperrors.Internal("create video", err)
	}

	logging.FromContext(ctx).Info("video published", slog.String("video_id", video.ID), slog.String("user_id", owner.ID))
	return video, nil
}

// Feed returns the newest videos. For an authenticated viewer, videos from
// owners the viewer has blocked are left out.
func (c *Catalog) Feed(ctx context.Context, viewer *models.Identity) ([]models.Video, error) {
	videos, err := c.videos.List(ctx, c.feedLimit)
	if err != nil {
		return nil, apperrors.Internal("list videos", err)
	}
	if videos == nil {
		videos = []models.Video{}
	}
	if viewer == nil || viewer.UserID == "" {
		return videos, nil
	}

	hidden, err := c.blockedOwners(ctx, *viewer)
	if err != nil {
		return nil, err
	}
	if hidden == nil {
		return videos, nil
	}

	visible := videos[:0]
	for _, v := range videos {
		if !hidden(v) {
			visible = append(visible, v)
		}
	}
	return visible, nil
}

// blockedOwners returns a predicate matching videos whose owner the viewer has
// blocked under either alias, or nil when nothing is blocked.
func (c *Catalog) blockedOwners(ctx context.Context, viewer models.Identity) (func(models.Video) bool, error) {
	self, err := repositories.FindActor(ctx, c.users, viewer)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("load viewer", err)
	}
	if len(self.BlockedUsers) == 0 {
		return nil, nil
	}

	owners := make([]models.User, 0, len(self.BlockedUsers))
	for _, ref := range self.BlockedUsers {
		blocked, err := repositories.ResolveUser(ctx, c.users, ref)
		switch {
		case err == nil:
			owners = append(owners, blocked)
		case errors.Is(err, repositories.ErrNotFound):
			owners = append(owners, models.User{ID: ref})
		default:
			return nil, apperrors.Internal("resolve blocked user", err)
		}
	}

	return func(v models.Video) bool {
		for _, owner := range owners {
			if v.OwnedBy(owner) {
				return true
			}
		}
		return false
	}, nil
}

// Get returns a video and counts the view.
func (c *Catalog) Get(ctx context.Context, id string) (models.Video, error) {
	if _, err := c.videos.IncrementViews(ctx, id); err != nil {
		return models.Video{}, storeError("increment views", err)
	}
	video, err := c.videos.FindByID(ctx, id)
	if err != nil {
		return models.Video{}, storeError("load video", err)
	}
	return video, nil
}

// Update rewrites the title and description. Blank fields keep their value.
func (c *Catalog) Update(ctx context.Context, actor models.Identity, id, title, description string) (models.Video, error) {
	ctx, span := logging.StartSpan(ctx, "videos.update")
	defer span.End()

	video, err := c.owned(ctx, actor, id)
	if err != nil {
		return models.Video{}, err
	}

	if t := strings.TrimSpace(title); t != "" {
		video.Title = t
	}
	if d := strings.TrimSpace(description); d != "" {
		video.Description = d
	}

	updated, err := c.videos.UpdateDetails(ctx, id, video.Title, video.Description)
	if err != nil {
		return models.Video{}, storeError("update video", err)
	}
	return updated, nil
}

// Delete removes a video and its comments.
func (c *Catalog) Delete(ctx context.Context, actor models.Identity, id string) error {
	ctx, span := logging.StartSpan(ctx, "videos.delete")
	defer span.End()

	if _, err := c.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := c.videos.Delete(ctx, id); err != nil {
		return storeError("delete video", err)
	}

	logging.FromContext(ctx).Info("video deleted", slog.String("video_id", id), slog.String("user_id", actor.UserID))
	return nil
}

// author loads actor's stored record. Callers whose account was deleted are
// unauthorized even while their access token is still valid.
func (c *Catalog) author(ctx context.Context, actor models.Identity) (models.User, error) {
	user, err := repositories.FindActor(ctx, c.users, actor)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, apperrors.ErrUnauthorized
	}
	if err != nil {
		return models.User{}, apperrors.Internal("load actor", err)
	}
	return user, nil
}

func (c *Catalog) owned(ctx context.Context, actor models.Identity, id string) (models.Video, error) {
	if actor.UserID == "" {
		return models.Video{}, apperrors.ErrUnauthorized
	}
	video, err := c.videos.FindByID(ctx, id)
	if err != nil {
		return models.Video{}, storeError("load video", err)
	}
	if video.UserID == "" || !actor.Matches(video.UserID) {
		return models.Video{}, errNotOwner
	}
	return video, nil
}

func storeError(op string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return errVideoMissing
	}
	return apperrors.Internal(op, err)
}
