package userrepo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/blockmarketai/marketplace/internal/domain"
)

// DBTX lets counter updates run inside a caller-owned transaction so the
// ledger can commit a status change and its propagation as one unit.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type IUserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// FindByIdentifier resolves a login: wallet address if given, else
	// email (case-insensitive) when the identifier contains '@', else username.
	FindByIdentifier(ctx context.Context, identifier, walletAddress string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error)
	RecordLogin(ctx context.Context, id uuid.UUID) error
	// ApplyTransactionEffect is the only path that mutates the sales,
	// purchases, and earnings counters.
	ApplyTransactionEffect(ctx context.Context, dbtx DBTX, id uuid.UUID, role domain.TransactionRole, amount, fee float64) error
	List(ctx context.Context, page domain.Page) ([]*domain.User, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, id uuid.UUID) (*domain.UserStats, error)
}
