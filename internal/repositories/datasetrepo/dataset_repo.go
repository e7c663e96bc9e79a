package datasetrepo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/blockmarketai/marketplace/internal/domain"
)

// DBTX mirrors the userrepo contract: download increments join the
// ledger's completion transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type IDatasetRepository interface {
	Create(ctx context.Context, dataset *domain.Dataset) (*domain.Dataset, error)
	List(ctx context.Context, filter domain.DatasetFilter, page domain.Page) ([]*domain.Dataset, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Dataset, error)
	Update(ctx context.Context, id uuid.UUID, update domain.DatasetUpdate) (*domain.Dataset, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// IncrementViews and IncrementDownloads are atomic at the storage
	// layer; concurrent readers must not lose updates.
	IncrementViews(ctx context.Context, id uuid.UUID) error
	IncrementDownloads(ctx context.Context, dbtx DBTX, id uuid.UUID) error
	CategoryCounts(ctx context.Context) (map[string]int64, error)
}
