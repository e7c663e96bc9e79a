package authservice

import (
	"context"

	"github.com/google/uuid"

	"github.com/blockmarketai/marketplace/internal/domain"
)

type IAuthService interface {
	Register(ctx context.Context, input domain.RegisterInput) (*domain.AuthResponse, error)
	Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResponse, error)
	VerifyToken(ctx context.Context, tokenString string) (*domain.Claim, error)
	// ResolveUser maps verified claims back to a stored account, so tokens
	// for deleted accounts stop working before their expiry.
	ResolveUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GenerateJWT(ctx context.Context, user *domain.User) (string, error)
}
