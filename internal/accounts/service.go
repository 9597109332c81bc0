// Package accounts manages user registration, credentials and profile edits.
package accounts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/pulse/backend/internal/apperrors"
	"github.com/pulse/backend/internal/auth"
	"github.com/pulse/backend/internal/logging"
	"github.com/pulse/backend/internal/models"
	"github.com/pulse/backend/internal/repositories"
	"github.com/pulse/backend/internal/storage"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

// UserStore is the persistence the accounts engine depends on.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindMany(ctx context.Context, refs []string) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, changes models.ProfileChanges) (models.User, error)
	DeleteCascade(ctx context.Context, user models.User) error
}

// ImageStore uploads profile images and returns their public location.
type ImageStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// SessionRevoker drops every refresh token held by a user.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, userID string)
}

// Summary is the public view of a user returned by batch lookups.
type Summary struct {
	ID       string
	Email    string
	Name     string
	Username string
	Image    string
}

var (
	errInvalidEmail    = apperrors.New(apperrors.KindInvalidInput, "invalid email address")
	errShortPassword   = apperrors.New(apperrors.KindInvalidInput, "password must be at least 8 characters")
	errAccountExists   = apperrors.New(apperrors.KindConflict, "account already exists")
	errUsernameTaken   = apperrors.New(apperrors.KindConflict, "Username is already taken")
	errBadCredentials  = apperrors.New(apperrors.KindUnauthorized, "invalid credentials")
	errUserMissing     = apperrors.New(apperrors.KindNotFound, "User not found")
	errImagesDisabled  = apperrors.New(apperrors.KindInvalidOperation, "image uploads are not configured")
	errNoImage         = apperrors.New(apperrors.KindInvalidInput, "image file is required")
	errNothingToChange = apperrors.New(apperrors.KindInvalidInput, "no profile fields to update")
)

// Service implements the account lifecycle.
type Service struct {
	users    UserStore
	hasher   *auth.PasswordHasher
	images   ImageStore
	sessions SessionRevoker

	NowFunc func() time.Time
}

// NewService wires the accounts engine. images and sessions may be nil: image
// uploads are then rejected and account deletion skips session revocation.
func NewService(users UserStore, hasher *auth.PasswordHasher, images ImageStore, sessions SessionRevoker) *Service {
	if hasher == nil {
		hasher = auth.NewPasswordHasher()
	}
	return &Service{users: users, hasher: hasher, images: images, sessions: sessions, NowFunc: time.Now}
}

// Register creates an account and returns it without its credential.
func (s *Service) Register(ctx context.Context, email, password, name string) (models.User, error) {
	ctx, span := logging.StartSpan(ctx, "accounts.register")
	defer span.End()
	logger := logging.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return models.User{}, errInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		logger.Warn("signup invalid email", slog.String("email", email), slog.Any("error", err))
		return models.User{}, errInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return models.User{}, errShortPassword
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, errAccountExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, apperrors.Internal("check existing account", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, apperrors.Internal("hash password", err)
	}

	now := s.NowFunc().UTC()
	user := models.User{
		ID:           models.NewObjectID(),
		Email:        email,
		Password:     hashed,
		Name:         strings.TrimSpace(name),
		Followers:    []string{},
		Following:    []string{},
		BlockedUsers: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return models.User{}, errAccountExists
		}
		return models.User{}, apperrors.Internal("create user", err)
	}

	logger.Info("account registered", slog.String("user_id", user.ID))
	return user.Sanitized(), nil
}

// Authenticate verifies credentials and returns the caller's identity.
func (s *Service) Authenticate(ctx context.Context, email, password string) (models.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return models.Identity{}, apperrors.New(apperrors.KindInvalidInput, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Identity{}, errBadCredentials
	}
	if err != nil {
		return models.Identity{}, apperrors.Internal("load user", err)
	}

	if err := s.hasher.Verify(password, user.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			logging.FromContext(ctx).Warn("login password mismatch", slog.String("user_id", user.ID))
			return models.Identity{}, errBadCredentials
		}
		return models.Identity{}, apperrors.Internal("verify password", err)
	}
	return user.Identity(), nil
}

// Current returns the caller's account without its credential.
func (s *Service) Current(ctx context.Context, actor models.Identity) (models.User, error) {
	user, err := s.load(ctx, actor)
	if err != nil {
		return models.User{}, err
	}
	return user.Sanitized(), nil
}

// UpdateProfile applies the non-nil fields of changes to the caller's account.
func (s *Service) UpdateProfile(ctx context.Context, actor models.Identity, changes models.ProfileChanges) (models.User, error) {
	ctx, span := logging.StartSpan(ctx, "accounts.update_profile")
	defer span.End()

	if changes.Name == nil && changes.Username == nil && changes.Image == nil {
		return models.User{}, errNothingToChange
	}
	changes.Name = trimmed(changes.Name)
	changes.Username = trimmed(changes.Username)
	changes.Image = trimmed(changes.Image)

	user, err := s.load(ctx, actor)
	if err != nil {
		return models.User{}, err
	}

	updated, err := s.users.UpdateProfile(ctx, user.ID, changes)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			return models.User{}, errUsernameTaken
		case errors.Is(err, repositories.ErrNotFound):
			return models.User{}, errUserMissing
		default:
			return models.User{}, apperrors.Internal("update profile", err)
		}
	}
	return updated.Sanitized(), nil
}

// UpdateImage uploads content as the caller's avatar and records its URL.
func (s *Service) UpdateImage(ctx context.Context, actor models.Identity, filename string, content io.Reader) (models.User, error) {
	ctx, span := logging.StartSpan(ctx, "accounts.update_image")
	defer span.End()

	if s.images == nil {
		return models.User{}, errImagesDisabled
	}
	if content == nil {
		return models.User{}, errNoImage
	}

	user, err := s.load(ctx, actor)
	if err != nil {
		return models.User{}, err
	}

	location, err := s.images.Save(ctx, storage.ObjectKey("avatars", user.ID, filename), content)
	if err != nil {
		return models.User{}, apperrors.Internal("upload image", err)
	}

	logging.FromContext(ctx).Info("profile image uploaded", slog.String("user_id", user.ID), slog.String("url", location))
	return s.UpdateProfile(ctx, actor, models.ProfileChanges{Image: &location})
}

// Delete removes the caller's account, its videos and every reference to it
// held by other users, then revokes its sessions.
func (s *Service) Delete(ctx context.Context, actor models.Identity) error {
	ctx, span := logging.StartSpan(ctx, "accounts.delete")
	defer span.End()

	user, err := s.load(ctx, actor)
	if err != nil {
		return err
	}

	if err := s.users.DeleteCascade(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errUserMissing
		}
		return apperrors.Internal("delete account", err)
	}
	if s.sessions != nil {
		s.sessions.RevokeAll(ctx, user.ID)
	}

	logging.FromContext(ctx).Info("account deleted", slog.String("user_id", user.ID))
	return nil
}

// Lookup returns public summaries for the users refs name. Unknown references
// are skipped.
func (s *Service) Lookup(ctx context.Context, refs []string) ([]Summary, error) {
	seen := make(map[string]struct{}, len(refs))
	cleaned := make([]string, 0, len(refs))
	for _, ref := range refs {
		parsed := models.ParseUserRef(ref)
		if parsed.IsZero() {
			continue
		}
		if _, ok := seen[parsed.Value]; ok {
			continue
		}
		seen[parsed.Value] = struct{}{}
		cleaned = append(cleaned, parsed.Value)
	}

	summaries := make([]Summary, 0, len(cleaned))
	if len(cleaned) == 0 {
		return summaries, nil
	}

	users, err := s.users.FindMany(ctx, cleaned)
	if err != nil {
		return nil, apperrors.Internal("lookup users", err)
	}
	for _, u := range users {
		summaries = append(summaries, Summary{ID: u.ID, Email: u.Email, Name: u.Name, Username: u.Username, Image: u.Image})
	}
	return summaries, nil
}

func (s *Service) load(ctx context.Context, actor models.Identity) (models.User, error) {
	if actor.UserID == "" {
		return models.User{}, apperrors.ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, actor.UserID)
	if errors.Is(err, repositories.ErrNotFound) && actor.Email != "" {
		user, err = s.users.FindByEmail(ctx, actor.Email)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, errUserMissing
	}
	if err != nil {
		return models.User{}, apperrors.Internal("load user", err)
	}
	return user, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
