package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blockmarketai/marketplace/internal/application/authservice"
	"github.com/blockmarketai/marketplace/internal/application/userservice"
	"github.com/blockmarketai/marketplace/internal/domain"
	"github.com/blockmarketai/marketplace/internal/server/middleware"
)

type AuthHandler struct {
	authSvc authservice.IAuthService
	userSvc userservice.IUserService
	logger  zerolog.Logger
}

func NewAuthHandler(authSvc authservice.IAuthService, userSvc userservice.IUserService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authSvc: authSvc,
		userSvc: userSvc,
		logger:  logger,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input domain.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, domain.NewValidationError("Invalid request body"))
		return
	}

	resp, err := h.authSvc.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "User registered successfully", resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input domain.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, domain.NewValidationError("Invalid request body"))
		return
	}

	resp, err := h.authSvc.Login(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Login successful", resp)
}

// Refresh issues a fresh token for the authenticated caller. The user is
// reloaded so the new token carries their current role and wallet.
func (h *AuthHandler) Refresh(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	user, err := h.userSvc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.authSvc.GenerateJWT(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Token refreshed", &domain.AuthResponse{User: user, Token: token})
}

// Logout acknowledges the logout. Tokens are stateless, so the client
// discards its copy; nothing is revoked server-side.
func (h *AuthHandler) Logout(c *gin.Context) {
	respond(c, http.StatusOK, "Logged out successfully", nil)
}

// Me returns the authenticated user's own record.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	user, err := h.userSvc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "", gin.H{"user": user})
}
