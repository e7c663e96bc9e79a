package ledgerservice

import (
	"context"

	"github.com/google/uuid"

	"github.com/blockmarketai/marketplace/internal/domain"
	"github.com/blockmarketai/marketplace/internal/infrastructure/rpc"
)

// TransactionNotifier pushes lifecycle events to a user's live sessions.
type TransactionNotifier interface {
	BroadcastTransaction(userID, event string, tx *domain.Transaction)
}

// ChainReader looks up on-chain evidence for a payment hash.
type ChainReader interface {
	GetTransaction(ctx context.Context, txHash string) (*rpc.ChainTransaction, error)
}

type ILedgerService interface {
	// CreatePurchase records a purchase of a dataset. A purchase carrying
	// a payment hash settles immediately; one without settles later
	// through UpdateStatus.
	CreatePurchase(ctx context.Context, buyerID uuid.UUID, input domain.PurchaseInput) (*domain.Transaction, error)
	GetByID(ctx context.Context, id, actorID uuid.UUID, isAdmin bool) (*domain.Transaction, error)
	List(ctx context.Context, filter domain.TransactionFilter, page domain.Page) ([]*domain.Transaction, int64, error)
	// UpdateStatus drives the settlement state machine. Completing a
	// transaction credits the buyer, seller, and dataset counters exactly
	// once, in the same database transaction as the status flip.
	UpdateStatus(ctx context.Context, id, actorID uuid.UUID, isAdmin bool, status domain.TransactionStatus, fields *domain.BlockchainFields) (*domain.Transaction, error)
	Analytics(ctx context.Context) (*domain.TransactionAnalytics, error)
}
