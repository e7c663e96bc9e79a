package domain

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

type Claim struct {
	UserID        uuid.UUID `json:"user_id"`
	Role          Role      `json:"role"`
	WalletAddress string    `json:"wallet_address"`
	jwt.StandardClaims
}

type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
