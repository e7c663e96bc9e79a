package datasetservice

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"

	"github.com/blockmarketai/marketplace/internal/domain"
)

type IDatasetService interface {
	Create(ctx context.Context, sellerID uuid.UUID, input domain.DatasetInput, file *multipart.FileHeader) (*domain.Dataset, error)
	List(ctx context.Context, filter domain.DatasetFilter, page domain.Page) ([]*domain.Dataset, int64, error)
	// GetByID hides inactive listings from everyone but their seller and
	// counts a view for every non-owner read.
	GetByID(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*domain.Dataset, error)
	Update(ctx context.Context, id, actorID uuid.UUID, isAdmin bool, update domain.DatasetUpdate) (*domain.Dataset, error)
	Delete(ctx context.Context, id, actorID uuid.UUID, isAdmin bool) error
	// Download resolves the stored file for a buyer with a completed
	// purchase or for the seller.
	Download(ctx context.Context, id, userID uuid.UUID) (*domain.Dataset, error)
	MyDatasets(ctx context.Context, sellerID uuid.UUID, page domain.Page) ([]*domain.Dataset, int64, error)
	Categories(ctx context.Context) ([]domain.CategoryCount, error)
}
