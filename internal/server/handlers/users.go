package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blockmarketai/marketplace/internal/application/userservice"
	"github.com/blockmarketai/marketplace/internal/domain"
	"github.com/blockmarketai/marketplace/internal/server/middleware"
)

type UserHandler struct {
	userSvc userservice.IUserService
	logger  zerolog.Logger
}

func NewUserHandler(userSvc userservice.IUserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userSvc: userSvc,
		logger:  logger,
	}
}

// Get returns a public profile. Email stays private to its owner.
func (h *UserHandler) Get(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.userSvc.GetProfile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	user.Email = ""

	respond(c, http.StatusOK, "", gin.H{"user": user})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	var update domain.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondError(c, domain.NewValidationError("Invalid request body"))
		return
	}

	user, err := h.userSvc.UpdateProfile(c.Request.Context(), userID, update)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Profile updated successfully", gin.H{"user": user})
}

func (h *UserHandler) Stats(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	stats, err := h.userSvc.GetStats(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "", gin.H{"stats": stats})
}

func (h *UserHandler) List(c *gin.Context) {
	page := parsePage(c, "created_at")

	users, total, err := h.userSvc.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "", gin.H{
		"users":      users,
		"pagination": newPagination(page, total),
	})
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Account deleted successfully", nil)
}
