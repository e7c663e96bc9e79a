package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockmarketai/marketplace/internal/domain"
	"github.com/blockmarketai/marketplace/internal/server/middleware"
)

type fakeAuthService struct {
	issued string
}

func (f *fakeAuthService) Register(ctx context.Context, input domain.RegisterInput) (*domain.AuthResponse, error) {
	return nil, nil
}

func (f *fakeAuthService) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResponse, error) {
	return nil, nil
}

func (f *fakeAuthService) VerifyToken(ctx context.Context, tokenString string) (*domain.Claim, error) {
	return nil, domain.NewUnauthorizedError("Invalid or expired token")
}

func (f *fakeAuthService) ResolveUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return &domain.User{ID: id}, nil
}

func (f *fakeAuthService) GenerateJWT(ctx context.Context, user *domain.User) (string, error) {
	return f.issued, nil
}

type fakeUserService struct {
	user *domain.User
}

func (f *fakeUserService) GetProfile(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, domain.NewNotFoundError("User")
	}
	return f.user, nil
}

func (f *fakeUserService) UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error) {
	return nil, nil
}

func (f *fakeUserService) GetStats(ctx context.Context, id uuid.UUID) (*domain.UserStats, error) {
	return nil, nil
}

func (f *fakeUserService) List(ctx context.Context, page domain.Page) ([]*domain.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeUserService) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func performAuth(t *testing.T, handler gin.HandlerFunc, userID *uuid.UUID) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	if userID != nil {
		c.Set(middleware.ContextUserID, *userID)
	}

	handler(c)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestRefresh_IssuesTokenForCurrentUser(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Username: "alice"}
	h := NewAuthHandler(&fakeAuthService{issued: "fresh-token"}, &fakeUserService{user: user}, zerolog.Nop())

	w, resp := performAuth(t, h.Refresh, &user.ID)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "fresh-token", data["token"])
}

func TestRefresh_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{}, &fakeUserService{}, zerolog.Nop())

	w, resp := performAuth(t, h.Refresh, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, resp.Success)
}

func TestRefresh_UnknownUser(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{issued: "fresh-token"}, &fakeUserService{}, zerolog.Nop())

	id := uuid.New()
	w, _ := performAuth(t, h.Refresh, &id)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogout(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{}, &fakeUserService{}, zerolog.Nop())

	id := uuid.New()
	w, resp := performAuth(t, h.Logout, &id)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Logged out successfully", resp.Message)
}
