package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pulse/backend/internal/models"
)

// MemoryStore keeps users, videos and comments in process memory. A single
// mutex guards all three so multi-record operations are atomic.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	videos   map[string]models.Video
	comments map[string][]models.Comment
	seq      int64
	order    map[string]int64
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]models.User),
		videos:   make(map[string]models.Video),
		comments: make(map[string][]models.Comment),
		order:    make(map[string]int64),
	}
}

// Users returns the user repository view of the store.
func (s *MemoryStore) Users() *MemoryUserRepository { return &MemoryUserRepository{s: s} }

// Videos returns the video repository view of the store.
func (s *MemoryStore) Videos() *MemoryVideoRepository { return &MemoryVideoRepository{s: s} }

func cloneStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func cloneUser(u models.User) models.User {
	u.Followers = cloneStrings(u.Followers)
	u.Following = cloneStrings(u.Following)
	u.BlockedUsers = cloneStrings(u.BlockedUsers)
	return u
}

// MemoryUserRepository implements UserRepository and RelationshipRepository over a MemoryStore.
type MemoryUserRepository struct {
	s *MemoryStore
}

// Create persists a new user record.
func (r *MemoryUserRepository) Create(_ context.Context, user models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	if _, ok := r.s.users[user.ID]; ok {
		return ErrConflict
	}
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return ErrConflict
		}
		if user.Username != "" && existing.Username == user.Username {
			return ErrConflict
		}
	}
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

// FindByID fetches a user by identifier.
func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return cloneUser(user), nil
}

// FindByEmail fetches a user by email address.
func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range r.s.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return models.User{}, ErrNotFound
}

// FindByUsername fetches a user by username.
func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if username == "" {
		return models.User{}, ErrNotFound
	}
	for _, user := range r.s.users {
		if user.Username == username {
			return cloneUser(user), nil
		}
	}
	return models.User{}, ErrNotFound
}

// FindMany returns the users named by refs ordered by creation time.
func (r *MemoryUserRepository) FindMany(_ context.Context, refs []string) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var users []models.User
	for _, user := range r.s.users {
		for _, ref := range refs {
			if user.Matches(ref) {
				users = append(users, cloneUser(user))
				break
			}
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

// UpdateProfile writes the non-nil profile fields.
func (r *MemoryUserRepository) UpdateProfile(_ context.Context, id string, changes models.ProfileChanges) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	if changes.Username != nil && *changes.Username != "" {
		for otherID, other := range r.s.users {
			if otherID != id && other.Username == *changes.Username {
				return models.User{}, ErrConflict
			}
		}
	}

	if changes.Name != nil {
		user.Name = *changes.Name
	}
	if changes.Username != nil {
		user.Username = *changes.Username
	}
	if changes.Image != nil {
		user.Image = *changes.Image
	}
	user.UpdatedAt = time.Now().UTC()
	r.s.users[id] = user
	return cloneUser(user), nil
}

// MutateUser applies fn to a copy of the user and stores its relationship sets.
func (r *MemoryUserRepository) MutateUser(_ context.Context, id string, fn func(user *models.User) error) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	working := cloneUser(stored)
	if err := fn(&working); err != nil {
		return models.User{}, err
	}

	stored.Followers = cloneStrings(working.Followers)
	stored.Following = cloneStrings(working.Following)
	stored.BlockedUsers = cloneStrings(working.BlockedUsers)
	stored.UpdatedAt = time.Now().UTC()
	r.s.users[id] = stored
	return cloneUser(stored), nil
}

// MutateRelationships applies fn to both users and stores both sides together.
func (r *MemoryUserRepository) MutateRelationships(_ context.Context, actorID, targetID string, fn func(actor, target *models.User) error) error {
	if actorID == targetID {
		return fmt.Errorf("mutate relationships: actor and target are the same user")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	actor, ok := r.s.users[actorID]
	if !ok {
		return ErrNotFound
	}
	target, ok := r.s.users[targetID]
	if !ok {
		return ErrNotFound
	}

	a, t := cloneUser(actor), cloneUser(target)
	if err := fn(&a, &t); err != nil {
		return err
	}

	now := time.Now().UTC()
	actor.Followers, actor.Following, actor.BlockedUsers = cloneStrings(a.Followers), cloneStrings(a.Following), cloneStrings(a.BlockedUsers)
	target.Followers, target.Following, target.BlockedUsers = cloneStrings(t.Followers), cloneStrings(t.Following), cloneStrings(t.BlockedUsers)
	actor.UpdatedAt, target.UpdatedAt = now, now
	r.s.users[actorID] = actor
	r.s.users[targetID] = target
	return nil
}

// DeleteCascade removes owned videos, strips references and deletes the user.
func (r *MemoryUserRepository) DeleteCascade(_ context.Context, user models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return ErrNotFound
	}

	for id, video := range r.s.videos {
		if video.OwnedBy(user) {
			delete(r.s.videos, id)
			delete(r.s.comments, id)
			delete(r.s.order, id)
		}
	}

	for id, other := range r.s.users {
		if id == user.ID {
			continue
		}
		other.Followers = models.RemoveUser(other.Followers, user)
		other.Following = models.RemoveUser(other.Following, user)
		other.BlockedUsers = models.RemoveUser(other.BlockedUsers, user)
		r.s.users[id] = other
	}

	for id, video := range r.s.videos {
		video.Likes = models.RemoveUser(video.Likes, user)
		r.s.videos[id] = video
	}

	delete(r.s.users, user.ID)
	return nil
}

// MemoryVideoRepository implements VideoRepository over a MemoryStore.
type MemoryVideoRepository struct {
	s *MemoryStore
}

func (r *MemoryVideoRepository) snapshot(video models.Video) models.Video {
	video.Likes = cloneStrings(video.Likes)
	video.CommentCount = len(r.s.comments[video.ID])
	return video
}

// Create stores a new video record.
func (r *MemoryVideoRepository) Create(_ context.Context, video models.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.videos[video.ID]; ok {
		return ErrConflict
	}
	video.Likes = cloneStrings(video.Likes)
	r.s.videos[video.ID] = video
	r.s.seq++
	r.s.order[video.ID] = r.s.seq
	return nil
}

// FindByID fetches a single video.
func (r *MemoryVideoRepository) FindByID(_ context.Context, id string) (models.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	video, ok := r.s.videos[id]
	if !ok {
		return models.Video{}, ErrNotFound
	}
	return r.snapshot(video), nil
}

// List returns the newest videos first.
func (r *MemoryVideoRepository) List(_ context.Context, limit int) ([]models.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	videos := r.sortedLocked(func(models.Video) bool { return true })
	if limit > 0 && len(videos) > limit {
		videos = videos[:limit]
	}
	return videos, nil
}

// ListByOwner returns every video attributed to the user under any alias.
func (r *MemoryVideoRepository) ListByOwner(_ context.Context, user models.User) ([]models.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	local := emailLocalPart(strings.ToLower(user.Email))
	return r.sortedLocked(func(v models.Video) bool {
		if v.UserID == "" {
			return local != "" && strings.EqualFold(v.UserName, local)
		}
		return v.OwnedBy(user)
	}), nil
}

func (r *MemoryVideoRepository) sortedLocked(keep func(models.Video) bool) []models.Video {
	var videos []models.Video
	for _, video := range r.s.videos {
		if keep(video) {
			videos = append(videos, r.snapshot(video))
		}
	}
	sort.Slice(videos, func(i, j int) bool {
		if !videos[i].CreatedAt.Equal(videos[j].CreatedAt) {
			return videos[i].CreatedAt.After(videos[j].CreatedAt)
		}
		return r.s.order[videos[i].ID] > r.s.order[videos[j].ID]
	})
	return videos
}

// UpdateDetails rewrites the title and description of a video.
func (r *MemoryVideoRepository) UpdateDetails(_ context.Context, id, title, description string) (models.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	video, ok := r.s.videos[id]
	if !ok {
		return models.Video{}, ErrNotFound
	}
	video.Title = title
	video.Description = description
	video.UpdatedAt = time.Now().UTC()
	r.s.videos[id] = video
	return r.snapshot(video), nil
}

// Delete removes a video and its comments.
func (r *MemoryVideoRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.videos[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.videos, id)
	delete(r.s.comments, id)
	delete(r.s.order, id)
	return nil
}

// IncrementViews bumps the view counter.
func (r *MemoryVideoRepository) IncrementViews(_ context.Context, id string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	video, ok := r.s.videos[id]
	if !ok {
		return 0, ErrNotFound
	}
	video.Views++
	r.s.videos[id] = video
	return video.Views, nil
}

// MutateLikes replaces the like set with fn's result.
func (r *MemoryVideoRepository) MutateLikes(_ context.Context, id string, fn func(likes []string) []string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	video, ok := r.s.videos[id]
	if !ok {
		return nil, ErrNotFound
	}
	video.Likes = cloneStrings(fn(cloneStrings(video.Likes)))
	video.UpdatedAt = time.Now().UTC()
	r.s.videos[id] = video
	return cloneStrings(video.Likes), nil
}

// AddComment appends a comment and returns the new total.
func (r *MemoryVideoRepository) AddComment(_ context.Context, comment models.Comment) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.videos[comment.VideoID]; !ok {
		return 0, ErrNotFound
	}
	for _, existing := range r.s.comments[comment.VideoID] {
		if existing.ID == comment.ID {
			return 0, ErrConflict
		}
	}
	r.s.comments[comment.VideoID] = append(r.s.comments[comment.VideoID], comment)
	return len(r.s.comments[comment.VideoID]), nil
}

// ListComments returns comments in insertion order.
func (r *MemoryVideoRepository) ListComments(_ context.Context, videoID string) ([]models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := r.s.comments[videoID]
	if len(stored) == 0 {
		return nil, nil
	}
	out := make([]models.Comment, len(stored))
	copy(out, stored)
	return out, nil
}

// FindComment fetches a single comment.
func (r *MemoryVideoRepository) FindComment(_ context.Context, videoID, commentID string) (models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.comments[videoID] {
		if c.ID == commentID {
			return c, nil
		}
	}
	return models.Comment{}, ErrNotFound
}

// DeleteComment removes a comment, preserving the order of the rest.
func (r *MemoryVideoRepository) DeleteComment(_ context.Context, videoID, commentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := r.s.comments[videoID]
	for i, c := range stored {
		if c.ID != commentID {
			continue
		}
		next := make([]models.Comment, 0, len(stored)-1)
		next = append(next, stored[:i]...)
		next = append(next, stored[i+1:]...)
		r.s.comments[videoID] = next
		return nil
	}
	return ErrNotFound
}

var _ UserRepository = (*MemoryUserRepository)(nil)
var _ RelationshipRepository = (*MemoryUserRepository)(nil)
var _ VideoRepository = (*MemoryVideoRepository)(nil)
