package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/blockmarketai/marketplace/internal/domain"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextWallet = "wallet_address"
)

// Authenticate requires a valid bearer token that resolves to a stored
// account, so tokens outlive neither the account nor a role change.
// WebSocket clients cannot set headers, so a token query parameter is
// accepted as a fallback.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractToken(c)
		if err != "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": err,
			})
			c.Abort()
			return
		}

		claims, verifyErr := m.AuthSvc.VerifyToken(c.Request.Context(), tokenString)
		if verifyErr != nil {
			m.logger.Warn().Err(verifyErr).Msg("Failed to verify token")
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		user, resolveErr := m.AuthSvc.ResolveUser(c.Request.Context(), claims.UserID)
		if resolveErr != nil {
			m.logger.Warn().Str("user_id", claims.UserID.String()).Msg("Token does not resolve to a user")
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth resolves the caller when a token is present but lets
// anonymous requests through. Invalid tokens are treated as anonymous.
func (m *Middleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, _ := extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		if claims, err := m.AuthSvc.VerifyToken(c.Request.Context(), tokenString); err == nil {
			if user, err := m.AuthSvc.ResolveUser(c.Request.Context(), claims.UserID); err == nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

// RequireAdmin guards admin-only routes. It must run after Authenticate.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Admin access required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", "Invalid Authorization header format, expected 'Bearer <token>'"
		}
		return parts[1], ""
	}

	if token := c.Query("token"); token != "" {
		return token, ""
	}
	return "", "Authorization token required"
}

// setUser records the resolved account. The stored role wins over the
// token's, so a demotion takes effect on the next request.
func setUser(c *gin.Context, user *domain.User) {
	c.Set(ContextUserID, user.ID)
	c.Set(ContextRole, user.Role)
	c.Set(ContextWallet, user.WalletAddress)
}

// CurrentUserID returns the authenticated caller, if any.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func IsAdmin(c *gin.Context) bool {
	v, ok := c.Get(ContextRole)
	return ok && v == domain.RoleAdmin
}
