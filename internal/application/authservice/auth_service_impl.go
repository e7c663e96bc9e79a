package authservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/blockmarketai/marketplace/internal/domain"
	user_repository "github.com/blockmarketai/marketplace/internal/repositories/userrepo"
	"github.com/blockmarketai/marketplace/pkg/config"
)

const tokenIssuer = "marketplace"

type AuthService struct {
	config   *config.Config
	logger   zerolog.Logger
	userRepo user_repository.IUserRepository
}

func NewAuthService(config *config.Config, logger zerolog.Logger, userRepo user_repository.IUserRepository) IAuthService {
	return &AuthService{
		config:   config,
		logger:   logger,
		userRepo: userRepo,
	}
}

func (s *AuthService) Register(ctx context.Context, input domain.RegisterInput) (*domain.AuthResponse, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Username = strings.TrimSpace(input.Username)
	input.WalletAddress = strings.TrimSpace(input.WalletAddress)

	if errs := validateRegistration(input); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, domain.NewInternalError("")
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		Email:         input.Email,
		Username:      input.Username,
		WalletAddress: input.WalletAddress,
		PasswordHash:  string(hash),
		Bio:           input.Bio,
		IsVerified:    true,
		Role:          domain.RoleUser,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.GenerateJWT(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Msg("User registered")

	return &domain.AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResponse, error) {
	identifier := strings.TrimSpace(input.Identifier)
	walletAddress := strings.TrimSpace(input.WalletAddress)
	if identifier == "" && walletAddress == "" {
		return nil, domain.NewValidationError("Identifier or wallet address is required")
	}
	if input.Password == "" {
		return nil, domain.NewValidationError("Password is required")
	}

	user, err := s.userRepo.FindByIdentifier(ctx, identifier, walletAddress)
	if err != nil {
		if domain.IsStatus(err, 404) {
			return nil, domain.NewUnauthorizedError("Invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.logger.Warn().Str("user_id", user.ID.String()).Msg("Password mismatch on login")
		return nil, domain.NewUnauthorizedError("Invalid credentials")
	}

	if err := s.userRepo.RecordLogin(ctx, user.ID); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to record login")
	}
	now := time.Now()
	user.LastLoginAt = &now

	token, err := s.GenerateJWT(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Msg("User logged in")

	return &domain.AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*domain.Claim, error) {
	jwtSecret := s.config.JWT.Secret
	if jwtSecret == "" {
		s.logger.Error().Msg("JWT secret not configured")
		return nil, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &domain.Claim{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %v", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*domain.Claim)
	if !ok {
		return nil, fmt.Errorf("invalid claims format")
	}

	if claims.ExpiresAt < time.Now().Unix() {
		return nil, fmt.Errorf("token expired")
	}

	if claims.Issuer != tokenIssuer {
		return nil, fmt.Errorf("invalid issuer")
	}

	return claims, nil
}

func (s *AuthService) ResolveUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *AuthService) GenerateJWT(ctx context.Context, user *domain.User) (string, error) {
	jwtSecret := s.config.JWT.Secret
	if jwtSecret == "" {
		s.logger.Error().Msg("JWT secret not configured")
		return "", fmt.Errorf("JWT secret not configured")
	}

	expirationTime := time.Now().Add(s.config.JWT.TTL())
	claim := &domain.Claim{
		UserID:        user.ID,
		Role:          user.Role,
		WalletAddress: user.WalletAddress,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expirationTime.Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claim)
	tokenString, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to sign token")
		return "", fmt.Errorf("failed to sign token: %v", err)
	}

	return tokenString, nil
}

func validateRegistration(input domain.RegisterInput) []string {
	var errs []string

	if input.Email == "" || !domain.EmailRe.MatchString(input.Email) {
		errs = append(errs, "A valid email address is required")
	}
	if len(input.Username) < 3 || len(input.Username) > 30 {
		errs = append(errs, "Username must be between 3 and 30 characters")
	} else if !domain.UsernameRe.MatchString(input.Username) {
		errs = append(errs, "Username can only contain letters, numbers, and underscores")
	}
	if !domain.WalletAddressRe.MatchString(input.WalletAddress) {
		errs = append(errs, "A valid Ethereum wallet address is required")
	}
	if len(input.Password) < 8 {
		errs = append(errs, "Password must be at least 8 characters")
	}
	if len(input.Bio) > 500 {
		errs = append(errs, "Bio cannot exceed 500 characters")
	}

	return errs
}
