package models

import (
	"strings"
	"time"
)

// User represents an account within the Pulse platform.
type User struct {
	ID           string
	Email        string
	Password     string
	Name         string
	Username     string
	Image        string
	Followers    []string
	Following    []string
	BlockedUsers []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Matches reports whether ref names this user by object id or by legacy email.
func (u User) Matches(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	if ref == u.ID {
		return true
	}
	return u.Email != "" && strings.EqualFold(ref, u.Email)
}

// Aliases returns every identifier the user may be stored under.
func (u User) Aliases() []string {
	aliases := make([]string, 0, 2)
	if u.ID != "" {
		aliases = append(aliases, u.ID)
	}
	if u.Email != "" {
		aliases = append(aliases, u.Email)
	}
	return aliases
}

// Identity returns the session identity for the user.
func (u User) Identity() Identity {
	return Identity{UserID: u.ID, Email: u.Email, Name: u.Name}
}

// Sanitized returns a copy of the user without its credential hash.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

// ProfileChanges carries the editable profile fields. Nil fields are left untouched.
type ProfileChanges struct {
	Name     *string
	Username *string
	Image    *string
}

// Identity is the authenticated caller as resolved from a session token.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// Matches reports whether ref names the caller by object id or email.
func (i Identity) Matches(ref string) bool {
	return User{ID: i.UserID, Email: i.Email}.Matches(ref)
}

// DisplayName returns the caller's name, falling back to the email.
func (i Identity) DisplayName() string {
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}
	return i.Email
}

// Transformation describes the playback rendition requested from the CDN.
type Transformation struct {
	Width   int
	Height  int
	Quality string
}

// DefaultTransformation mirrors the portrait rendition used by the upload client.
var DefaultTransformation = Transformation{Width: 1080, Height: 1920, Quality: "100"}

// Video is an uploaded short owned by a single user.
type Video struct {
	ID             string
	UserID         string
	UserName       string
	Title          string
	Description    string
	VideoURL       string
	ThumbnailURL   string
	Controls       bool
	Transformation Transformation
	Views          int64
	Likes          []string
	CommentCount   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OwnedBy reports whether the video's owner reference names the given user.
func (v Video) OwnedBy(u User) bool {
	return v.UserID != "" && u.Matches(v.UserID)
}

// Comment is a single remark left on a video.
type Comment struct {
	ID        string
	VideoID   string
	UserID    string
	UserName  string
	Text      string
	CreatedAt time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
