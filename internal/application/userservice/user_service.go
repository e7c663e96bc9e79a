package userservice

import (
	"context"

	"github.com/google/uuid"

	"github.com/blockmarketai/marketplace/internal/domain"
)

type IUserService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error)
	GetStats(ctx context.Context, id uuid.UUID) (*domain.UserStats, error)
	List(ctx context.Context, page domain.Page) ([]*domain.User, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
