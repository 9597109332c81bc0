package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pulse/backend/internal/apperrors"
	"github.com/pulse/backend/internal/auth"
	"github.com/pulse/backend/internal/logging"
	"github.com/pulse/backend/internal/middleware"
)

// AuthHandler implements user authentication endpoints.
type AuthHandler struct {
	Accounts AccountService
	Sessions SessionManager
	Limiter  RateLimiter
}

// Login handles POST /api/v1/auth/login requests.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if throttled(h.Limiter, w, r, "login") {
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	identity, err := h.Accounts.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	tokens, err := h.Sessions.Issue(ctx, identity)
	if err != nil {
		respondError(ctx, w, apperrors.Internal("issue session", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, authResponse{
		User:   &identityResponse{ID: identity.UserID, Email: identity.Email, Name: identity.Name},
		Tokens: tokensResponse(tokens),
	})
}

// SignUp handles POST /api/v1/auth/signup requests.
func (h AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if throttled(h.Limiter, w, r, "signup") {
		return
	}

	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	user, err := h.Accounts.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	tokens, err := h.Sessions.Issue(ctx, user.Identity())
	if err != nil {
		respondError(ctx, w, apperrors.Internal("issue session", err))
		return
	}

	respondJSON(ctx, w, http.StatusCreated, authResponse{
		User:   &identityResponse{ID: user.ID, Email: user.Email, Name: user.Name},
		Tokens: tokensResponse(tokens),
	})
}

// Refresh exchanges a refresh token for a new session.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken == "" {
		respondError(ctx, w, apperrors.New(apperrors.KindInvalidInput, "refresh token is required"))
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshTokenExpired) || errors.Is(err, auth.ErrSessionNotFound) {
			logger.Warn("refresh rejected", "error", err)
			respondError(ctx, w, apperrors.ErrUnauthorized)
			return
		}
		respondError(ctx, w, apperrors.Internal("refresh session", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, authResponse{Tokens: tokensResponse(tokens)})
}

// Logout revokes the presented access token and its refresh token.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(ctx, w, err)
			return
		}
	}

	if err := h.Sessions.Logout(ctx, middleware.BearerToken(r), strings.TrimSpace(req.RefreshToken)); err != nil {
		respondError(ctx, w, apperrors.Internal("logout", err))
		return
	}
	respondJSON(ctx, w, http.StatusOK, messageResponse{Message: "Logged out"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type identityResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type authResponse struct {
	User   *identityResponse `json:"user,omitempty"`
	Tokens tokensResponse   `json:"tokens"`
}

type messageResponse struct {
	Message string `json:"message"`
}
