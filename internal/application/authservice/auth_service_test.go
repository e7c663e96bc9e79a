package authservice

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/blockmarketai/marketplace/internal/domain"
	"github.com/blockmarketai/marketplace/internal/repositories/userrepo"
	"github.com/blockmarketai/marketplace/pkg/config"
)

type fakeUserRepo struct {
	users       map[string]*domain.User
	lastCreated *domain.User
	logins      int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := f.users[user.Username]; ok {
		return nil, domain.NewConflictError("Username already exists")
	}
	user.ID = uuid.New()
	f.users[user.Username] = user
	f.lastCreated = user
	return user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.NewNotFoundError("User")
}

func (f *fakeUserRepo) FindByIdentifier(ctx context.Context, identifier, walletAddress string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == identifier || u.Email == identifier || u.WalletAddress == walletAddress {
			return u, nil
		}
	}
	return nil, domain.NewNotFoundError("User")
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) RecordLogin(ctx context.Context, id uuid.UUID) error {
	f.logins++
	return nil
}

func (f *fakeUserRepo) ApplyTransactionEffect(ctx context.Context, dbtx userrepo.DBTX, id uuid.UUID, role domain.TransactionRole, amount, fee float64) error {
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context, page domain.Page) ([]*domain.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeUserRepo) Stats(ctx context.Context, id uuid.UUID) (*domain.UserStats, error) {
	return nil, nil
}

func newAuthService(repo *fakeUserRepo) IAuthService {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpiresIn = "1h"
	return NewAuthService(cfg, zerolog.Nop(), repo)
}

func validRegistration() domain.RegisterInput {
	return domain.RegisterInput{
		Email:         "alice@example.com",
		Username:      "alice",
		WalletAddress: "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
		Password:      "correct horse battery",
	}
}

func TestRegister_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	resp, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
	assert.True(t, resp.User.IsVerified)
	assert.Equal(t, domain.RoleUser, resp.User.Role)

	// Stored hash must verify against the original password.
	err = bcrypt.CompareHashAndPassword([]byte(repo.lastCreated.PasswordHash), []byte("correct horse battery"))
	assert.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", repo.lastCreated.PasswordHash)
}

func TestRegister_CollectsValidationErrors(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), domain.RegisterInput{
		Email:         "not-an-email",
		Username:      "x",
		WalletAddress: "nope",
		Password:      "short",
	})
	require.Error(t, err)

	appErr := domain.AsError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Len(t, appErr.Errors, 4)
}

func TestRegister_NormalizesEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	input := validRegistration()
	input.Email = "  Alice@Example.COM "
	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", repo.lastCreated.Email)
}

func TestLogin_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), domain.LoginInput{
		Identifier: "alice",
		Password:   "correct horse battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, 1, repo.logins)
	assert.NotNil(t, resp.User.LastLoginAt)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), domain.LoginInput{
		Identifier: "alice",
		Password:   "wrong",
	})
	require.Error(t, err)
	assert.True(t, domain.IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, "Invalid credentials", err.Error())
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())

	_, err := svc.Login(context.Background(), domain.LoginInput{
		Identifier: "ghost",
		Password:   "whatever",
	})
	require.Error(t, err)
	assert.True(t, domain.IsStatus(err, http.StatusUnauthorized), "unknown users must not be distinguishable from bad passwords")
}

func TestLogin_RequiresCredentials(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())

	_, err := svc.Login(context.Background(), domain.LoginInput{})
	require.Error(t, err)
	assert.True(t, domain.IsStatus(err, http.StatusBadRequest))

	_, err = svc.Login(context.Background(), domain.LoginInput{Identifier: "alice"})
	require.Error(t, err)
	assert.True(t, domain.IsStatus(err, http.StatusBadRequest))
}

func TestTokenRoundTrip(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	resp, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	claims, err := svc.VerifyToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.Equal(t, resp.User.WalletAddress, claims.WalletAddress)
}

func TestResolveUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	resp, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	user, err := svc.ResolveUser(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)

	_, err = svc.ResolveUser(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, domain.IsStatus(err, http.StatusNotFound))
}

func TestVerifyToken_Garbage(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())

	_, err := svc.VerifyToken(context.Background(), "not.a.token")
	assert.Error(t, err)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	resp, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	otherCfg := &config.Config{}
	otherCfg.JWT.Secret = "different-secret"
	otherCfg.JWT.ExpiresIn = "1h"
	other := NewAuthService(otherCfg, zerolog.Nop(), repo)

	_, err = other.VerifyToken(context.Background(), resp.Token)
	assert.Error(t, err)
}
