package userservice

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blockmarketai/marketplace/internal/domain"
	user_repository "github.com/blockmarketai/marketplace/internal/repositories/userrepo"
)

type UserService struct {
	logger   zerolog.Logger
	userRepo user_repository.IUserRepository
}

func NewUserService(logger zerolog.Logger, userRepo user_repository.IUserRepository) IUserService {
	return &UserService{
		logger:   logger,
		userRepo: userRepo,
	}
}

func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error) {
	if update.Empty() {
		return nil, domain.NewValidationError("No valid updates provided")
	}

	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		if !domain.EmailRe.MatchString(email) {
			return nil, domain.NewValidationError("A valid email address is required")
		}
		update.Email = &email
	}
	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if len(username) < 3 || len(username) > 30 || !domain.UsernameRe.MatchString(username) {
			return nil, domain.NewValidationError("Username must be 3-30 characters of letters, numbers, and underscores")
		}
		update.Username = &username
	}
	if update.Bio != nil && len(*update.Bio) > 500 {
		return nil, domain.NewValidationError("Bio cannot exceed 500 characters")
	}

	user, err := s.userRepo.UpdateProfile(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", id.String()).Msg("Profile updated")
	return user, nil
}

func (s *UserService) GetStats(ctx context.Context, id uuid.UUID) (*domain.UserStats, error) {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.userRepo.Stats(ctx, id)
}

func (s *UserService) List(ctx context.Context, page domain.Page) ([]*domain.User, int64, error) {
	return s.userRepo.List(ctx, page)
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id.String()).Msg("User account deleted")
	return nil
}
