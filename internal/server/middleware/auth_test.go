package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/blockmarketai/marketplace/internal/domain"
	"github.com/blockmarketai/marketplace/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthService struct {
	claims     *domain.Claim
	err        error
	resolveErr error
}

func (f *fakeAuthService) Register(ctx context.Context, input domain.RegisterInput) (*domain.AuthResponse, error) {
	return nil, nil
}

func (f *fakeAuthService) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResponse, error) {
	return nil, nil
}

func (f *fakeAuthService) VerifyToken(ctx context.Context, tokenString string) (*domain.Claim, error) {
	return f.claims, f.err
}

func (f *fakeAuthService) ResolveUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return &domain.User{ID: id, Role: f.claims.Role, WalletAddress: f.claims.WalletAddress}, nil
}

func (f *fakeAuthService) GenerateJWT(ctx context.Context, user *domain.User) (string, error) {
	return "", nil
}

func newRouter(authSvc *fakeAuthService, protect func(m *Middleware) gin.HandlerFunc) *gin.Engine {
	m := NewMiddleware(authSvc, &config.Config{}, zerolog.Nop())
	router := gin.New()
	router.GET("/protected", protect(m), func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.String(), "admin": IsAdmin(c)})
	})
	return router
}

func TestAuthenticate_MissingToken(t *testing.T) {
	router := newRouter(&fakeAuthService{}, (*Middleware).Authenticate)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	router := newRouter(&fakeAuthService{}, (*Middleware).Authenticate)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	router := newRouter(&fakeAuthService{err: errors.New("expired")}, (*Middleware).Authenticate)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_ValidBearer(t *testing.T) {
	userID := uuid.New()
	router := newRouter(&fakeAuthService{claims: &domain.Claim{UserID: userID, Role: domain.RoleUser}}, (*Middleware).Authenticate)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	router := newRouter(&fakeAuthService{
		claims:     &domain.Claim{UserID: uuid.New(), Role: domain.RoleUser},
		resolveErr: domain.NewNotFoundError("User"),
	}, (*Middleware).Authenticate)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer still-signed")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code, "tokens for deleted accounts must stop working")
}

func TestOptionalAuth_DeletedUserIsAnonymous(t *testing.T) {
	router := newRouter(&fakeAuthService{
		claims:     &domain.Claim{UserID: uuid.New()},
		resolveErr: domain.NewNotFoundError("User"),
	}, (*Middleware).OptionalAuth)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer still-signed")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), uuid.Nil.String())
}

func TestAuthenticate_TokenQueryFallback(t *testing.T) {
	userID := uuid.New()
	router := newRouter(&fakeAuthService{claims: &domain.Claim{UserID: userID}}, (*Middleware).Authenticate)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected?token=good", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuth_AnonymousPasses(t *testing.T) {
	router := newRouter(&fakeAuthService{err: errors.New("unused")}, (*Middleware).OptionalAuth)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), uuid.Nil.String())
}

func TestOptionalAuth_InvalidTokenIsAnonymous(t *testing.T) {
	router := newRouter(&fakeAuthService{err: errors.New("bad token")}, (*Middleware).OptionalAuth)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	adminRouter := func(svc *fakeAuthService) *gin.Engine {
		m := NewMiddleware(svc, &config.Config{}, zerolog.Nop())
		router := gin.New()
		router.GET("/admin", m.Authenticate(), m.RequireAdmin(), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer t")

	w := httptest.NewRecorder()
	adminRouter(&fakeAuthService{claims: &domain.Claim{UserID: uuid.New(), Role: domain.RoleUser}}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	adminRouter(&fakeAuthService{claims: &domain.Claim{UserID: uuid.New(), Role: domain.RoleAdmin}}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
