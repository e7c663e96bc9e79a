package transactionrepo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/blockmarketai/marketplace/internal/domain"
)

// DBTX is the executor shared with the other repositories so a purchase
// completion and its statistics propagation commit as one unit.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// CompletionRow is what MarkCompleted returns when the propagation gate
// is won: everything the ledger needs to credit buyer and seller.
type CompletionRow struct {
	BuyerID       uuid.UUID
	SellerID      uuid.UUID
	DatasetID     uuid.UUID
	Amount        float64
	ProcessingFee float64
}

type ITransactionRepository interface {
	// Create inserts the record. A completed insert that collides with
	// the partial unique index surfaces as a Conflict.
	Create(ctx context.Context, dbtx DBTX, tx *domain.Transaction) (*domain.Transaction, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	List(ctx context.Context, filter domain.TransactionFilter, page domain.Page) ([]*domain.Transaction, int64, error)
	HasCompletedPurchase(ctx context.Context, buyerID, datasetID uuid.UUID) (bool, error)
	// UpdateStatus writes a non-propagating status change and merges any
	// supplied blockchain fields.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus, fields *domain.BlockchainFields) error
	// MarkCompleted flips status to completed and claims the propagation
	// gate in one statement. It returns nil when the gate was already
	// claimed, which is how a repeated completion stays a no-op.
	MarkCompleted(ctx context.Context, dbtx DBTX, id uuid.UUID, fields *domain.BlockchainFields) (*CompletionRow, error)
	SetMetadata(ctx context.Context, id uuid.UUID, metadata []byte) error
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
	Analytics(ctx context.Context) (*domain.TransactionAnalytics, error)
}
