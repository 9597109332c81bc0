// Package engagement implements likes and comments on videos.
package engagement

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pulse/backend/internal/apperrors"
	"github.com/pulse/backend/internal/logging"
	"github.com/pulse/backend/internal/models"
	"github.com/pulse/backend/internal/repositories"
)

// VideoStore is the persistence the engagement engine depends on.
type VideoStore interface {
	FindByID(ctx context.Context, id string) (models.Video, error)
	MutateLikes(ctx context.Context, id string, fn func(likes []string) []string) ([]string, error)
	AddComment(ctx context.Context, comment models.Comment) (int, error)
	ListComments(ctx context.Context, videoID string) ([]models.Comment, error)
	FindComment(ctx context.Context, videoID, commentID string) (models.Comment, error)
	DeleteComment(ctx context.Context, videoID, commentID string) error
}

// LikeState is the like count of a video and whether the caller likes it.
type LikeState struct {
	Likes   int
	IsLiked bool
}

var (
	errVideoMissing   = apperrors.New(apperrors.KindNotFound, "Video not found")
	errCommentMissing = apperrors.New(apperrors.KindNotFound, "Comment not found")
	errEmptyComment   = apperrors.New(apperrors.KindInvalidInput, "Comment text is required")
	errNoCommentID    = apperrors.New(apperrors.KindInvalidInput, "Comment ID is required")
	errNotPermitted   = apperrors.New(apperrors.KindForbidden, "You can only delete your own comments or comments on your videos")
)

// Service toggles likes and manages comments.
type Service struct {
	videos VideoStore
	users  repositories.UserFinder

	NowFunc func() time.Time
}

// NewService constructs an engagement engine over videos. Likes and comments
// are only accepted from callers with a stored account in users.
func NewService(videos VideoStore, users repositories.UserFinder) *Service {
	return &Service{videos: videos, users: users, NowFunc: time.Now}
}

// ToggleLike flips whether actor likes the video.
func (s *Service) ToggleLike(ctx context.Context, actor models.Identity, videoID string) (LikeState, error) {
	ctx, span := logging.StartSpan(ctx, "engagement.toggle_like")
	defer span.End()

	actor, err := s.loadActor(ctx, actor)
	if err != nil {
		return LikeState{}, err
	}

	liker := likerOf(actor)
	var liked bool
	likes, err := s.videos.MutateLikes(ctx, videoID, func(likes []string) []string {
		if models.ContainsUser(likes, liker) {
			liked = false
			return models.RemoveUser(likes, liker)
		}
		liked = true
		return append(likes, actorKey(actor))
	})
	if err != nil {
		err = videoError("toggle like", err)
		span.Fail(err)
		return LikeState{}, err
	}

	logging.FromContext(ctx).Info("like toggled",
		slog.String("video_id", videoID),
		slog.String("user_id", actor.UserID),
		slog.Bool("liked", liked),
	)
	return LikeState{Likes: len(likes), IsLiked: liked}, nil
}

// LikeStatus returns the like count and whether actor likes the video. A nil
// actor never likes.
func (s *Service) LikeStatus(ctx context.Context, actor *models.Identity, videoID string) (LikeState, error) {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return LikeState{}, videoError("load video", err)
	}

	state := LikeState{Likes: len(video.Likes)}
	if actor != nil && actor.UserID != "" {
		state.IsLiked = models.ContainsUser(video.Likes, likerOf(*actor))
	}
	return state, nil
}

// AddComment appends a comment by actor and returns it with the new total.
func (s *Service) AddComment(ctx context.Context, actor models.Identity, videoID, text string) (models.Comment, int, error) {
	ctx, span := logging.StartSpan(ctx, "engagement.add_comment")
	defer span.End()

	actor, err := s.loadActor(ctx, actor)
	if err != nil {
		return models.Comment{}, 0, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, 0, errEmptyComment
	}

	if _, err := s.videos.FindByID(ctx, videoID); err != nil {
		return models.Comment{}, 0, videoError("load video", err)
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		UserID:    actorKey(actor),
		UserName:  actor.DisplayName(),
		Text:      text,
		CreatedAt: s.NowFunc().UTC(),
	}

	total, err := s.videos.AddComment(ctx, comment)
	if err != nil {
		err = videoError("add comment", err)
		span.Fail(err)
		return models.Comment{}, 0, err
	}

	logging.FromContext(ctx).Info("comment added",
		slog.String("video_id", videoID),
		slog.String("comment_id", comment.ID),
	)
	return comment, total, nil
}

// ListComments returns a video's comments in the order they were added.
func (s *Service) ListComments(ctx context.Context, videoID string) ([]models.Comment, error) {
	if _, err := s.videos.FindByID(ctx, videoID); err != nil {
		return nil, videoError("load video", err)
	}

	comments, err := s.videos.ListComments(ctx, videoID)
	if err != nil {
		return nil, apperrors.Internal("list comments", err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

// DeleteComment removes a comment. Only the comment's author or the video's
// owner may delete it.
func (s *Service) DeleteComment(ctx context.Context, actor models.Identity, videoID, commentID string) error {
	ctx, span := logging.StartSpan(ctx, "engagement.delete_comment")
	defer span.End()

	if actor.UserID == "" {
		return apperrors.ErrUnauthorized
	}
	commentID = strings.TrimSpace(commentID)
	if commentID == "" {
		return errNoCommentID
	}

	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return videoError("load video", err)
	}

	comment, err := s.videos.FindComment(ctx, videoID, commentID)
	if errors.Is(err, repositories.ErrNotFound) {
		return errCommentMissing
	}
	if err != nil {
		return apperrors.Internal("load comment", err)
	}

	author := actor.Matches(comment.UserID)
	owner := video.UserID != "" && actor.Matches(video.UserID)
	if !author && !owner {
		logging.FromContext(ctx).Warn("comment delete denied",
			slog.String("video_id", videoID),
			slog.String("comment_id", commentID),
			slog.String("user_id", actor.UserID),
		)
		return errNotPermitted
	}

	if err := s.videos.DeleteComment(ctx, videoID, commentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errCommentMissing
		}
		return apperrors.Internal("delete comment", err)
	}
	return nil
}

// loadActor refreshes actor from its stored record so likes and comment
// snapshots use the current profile. Deleted accounts are unauthorized.
func (s *Service) loadActor(ctx context.Context, actor models.Identity) (models.Identity, error) {
	if actor.UserID == "" {
		return models.Identity{}, apperrors.ErrUnauthorized
	}
	user, err := repositories.FindActor(ctx, s.users, actor)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Identity{}, apperrors.ErrUnauthorized
	}
	if err != nil {
		return models.Identity{}, apperrors.Internal("load actor", err)
	}
	return user.Identity(), nil
}

// actorKey is the reference stored for likes and comment authors.
func actorKey(actor models.Identity) string {
	if actor.Email != "" {
		return actor.Email
	}
	return actor.UserID
}

func likerOf(actor models.Identity) models.User {
	return models.User{ID: actor.UserID, Email: actor.Email}
}

func videoError(op string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return errVideoMissing
	}
	return apperrors.Internal(op, err)
}
