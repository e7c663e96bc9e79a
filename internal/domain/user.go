package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	WalletAddress  string     `json:"walletAddress"`
	PasswordHash   string     `json:"-"`
	Bio            string     `json:"bio,omitempty"`
	Avatar         string     `json:"avatar,omitempty"`
	IsVerified     bool       `json:"isVerified"`
	Role           Role       `json:"role"`
	TotalSales     int64      `json:"totalSales"`
	TotalPurchases int64      `json:"totalPurchases"`
	TotalEarnings  float64    `json:"totalEarnings"`
	JoinedAt       time.Time  `json:"joinedAt"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// UserRef is the subset of user fields expanded into related records
// (seller on a dataset, buyer/seller on a transaction).
type UserRef struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	WalletAddress string    `json:"walletAddress"`
	Email         string    `json:"email,omitempty"`
}

type RegisterInput struct {
	Email         string `json:"email"`
	Username      string `json:"username"`
	WalletAddress string `json:"walletAddress"`
	Password      string `json:"password"`
	Bio           string `json:"bio"`
}

type LoginInput struct {
	Identifier    string `json:"identifier"`
	WalletAddress string `json:"walletAddress"`
	Password      string `json:"password"`
}

type ProfileUpdate struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
}

func (u *ProfileUpdate) Empty() bool {
	return u.Email == nil && u.Username == nil && u.Bio == nil && u.Avatar == nil
}

// TransactionRole identifies which side of a settled purchase a counter
// update applies to.
type TransactionRole string

const (
	RoleBuyer  TransactionRole = "buyer"
	RoleSeller TransactionRole = "seller"
)

type UserStats struct {
	Datasets struct {
		TotalListings  int64   `json:"totalListings"`
		TotalDownloads int64   `json:"totalDownloads"`
		TotalViews     int64   `json:"totalViews"`
		AverageRating  float64 `json:"averageRating"`
	} `json:"datasets"`
	Transactions struct {
		TotalPurchases int64   `json:"totalPurchases"`
		TotalSales     int64   `json:"totalSales"`
		TotalSpent     float64 `json:"totalSpent"`
		TotalEarned    float64 `json:"totalEarned"`
	} `json:"transactions"`
}
