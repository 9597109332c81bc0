package handlers

import (
	"time"

	"github.com/pulse/backend/internal/accounts"
	"github.com/pulse/backend/internal/models"
)

type userResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Username     string    `json:"username,omitempty"`
	Image        string    `json:"image,omitempty"`
	Followers    []string  `json:"followers"`
	Following    []string  `json:"following"`
	BlockedUsers []string  `json:"blockedUsers"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Username:     u.Username,
		Image:        u.Image,
		Followers:    nonNil(u.Followers),
		Following:    nonNil(u.Following),
		BlockedUsers: nonNil(u.BlockedUsers),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

type summaryResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Image    string `json:"image,omitempty"`
}

func newSummaryResponses(in []accounts.Summary) []summaryResponse {
	out := make([]summaryResponse, 0, len(in))
	for _, s := range in {
		out = append(out, summaryResponse(s))
	}
	return out
}

type transformationResponse struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Quality string `json:"quality"`
}

type videoResponse struct {
	ID             string                 `json:"id"`
	UserID         string                 `json:"userId"`
	UserName       string                 `json:"userName,omitempty"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	VideoURL       string                 `json:"videoUrl"`
	ThumbnailURL   string                 `json:"thumbnailUrl,omitempty"`
	Controls       bool                   `json:"controls"`
	Transformation transformationResponse `json:"transformation"`
	Views          int64                  `json:"views"`
	Likes          []string               `json:"likes"`
	CommentCount   int                    `json:"commentCount"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

func newVideoResponse(v models.Video) videoResponse {
	return videoResponse{
		ID:             v.ID,
		UserID:         v.UserID,
		UserName:       v.UserName,
		Title:          v.Title,
		Description:    v.Description,
		VideoURL:       v.VideoURL,
		ThumbnailURL:   v.ThumbnailURL,
		Controls:       v.Controls,
		Transformation: transformationResponse(v.Transformation),
		Views:          v.Views,
		Likes:          nonNil(v.Likes),
		CommentCount:   v.CommentCount,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

func newVideoResponses(in []models.Video) []videoResponse {
	out := make([]videoResponse, 0, len(in))
	for _, v := range in {
		out = append(out, newVideoResponse(v))
	}
	return out
}

type commentResponse struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func newCommentResponses(in []models.Comment) []commentResponse {
	out := make([]commentResponse, 0, len(in))
	for _, c := range in {
		out = append(out, commentResponse(c))
	}
	return out
}

type tokensResponse struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
