package datasetservice

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blockmarketai/marketplace/internal/domain"
	"github.com/blockmarketai/marketplace/internal/infrastructure/storage"
	dataset_repository "github.com/blockmarketai/marketplace/internal/repositories/datasetrepo"
	transaction_repository "github.com/blockmarketai/marketplace/internal/repositories/transactionrepo"
	"github.com/blockmarketai/marketplace/pkg/config"
)

type DatasetService struct {
	config          *config.Config
	logger          zerolog.Logger
	datasetRepo     dataset_repository.IDatasetRepository
	transactionRepo transaction_repository.ITransactionRepository
	fileStore       *storage.FileStore
}

func NewDatasetService(
	config *config.Config,
	logger zerolog.Logger,
	datasetRepo dataset_repository.IDatasetRepository,
	transactionRepo transaction_repository.ITransactionRepository,
	fileStore *storage.FileStore,
) IDatasetService {
	return &DatasetService{
		config:          config,
		logger:          logger,
		datasetRepo:     datasetRepo,
		transactionRepo: transactionRepo,
		fileStore:       fileStore,
	}
}

func (s *DatasetService) Create(ctx context.Context, sellerID uuid.UUID, input domain.DatasetInput, file *multipart.FileHeader) (*domain.Dataset, error) {
	if file == nil {
		return nil, domain.NewValidationError("Dataset file is required")
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if input.Currency == "" {
		input.Currency = domain.CurrencyETH
	}
	tags, err := NormalizeTags(input.Tags)
	if err != nil {
		return nil, err
	}
	input.Tags = tags

	if errs := validateInput(input); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}

	fileType, err := s.validateFile(file)
	if err != nil {
		return nil, err
	}

	path, err := s.fileStore.Save(file)
	if err != nil {
		s.logger.Error().Err(err).Str("file", file.Filename).Msg("Failed to store dataset file")
		return nil, domain.NewInternalError("Failed to store dataset file")
	}

	dataset, err := s.datasetRepo.Create(ctx, &domain.Dataset{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		Currency:    input.Currency,
		Tags:        input.Tags,
		FileSize:    file.Size,
		FileName:    file.Filename,
		FilePath:    path,
		FileType:    fileType,
		IsActive:    true,
		SellerID:    sellerID,
	})
	if err != nil {
		s.fileStore.Remove(path)
		return nil, err
	}

	s.logger.Info().
		Str("dataset_id", dataset.ID.String()).
		Str("seller_id", sellerID.String()).
		Str("category", dataset.Category).
		Msg("Dataset listed")

	return dataset, nil
}

func (s *DatasetService) List(ctx context.Context, filter domain.DatasetFilter, page domain.Page) ([]*domain.Dataset, int64, error) {
	if filter.IsActive == nil {
		active := true
		filter.IsActive = &active
	}
	return s.datasetRepo.List(ctx, filter, page)
}

func (s *DatasetService) GetByID(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*domain.Dataset, error) {
	dataset, err := s.datasetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := viewerID != nil && *viewerID == dataset.SellerID
	if !dataset.IsActive && !isOwner {
		return nil, domain.NewNotFoundError("Dataset")
	}

	if !isOwner {
		if err := s.datasetRepo.IncrementViews(ctx, id); err == nil {
			dataset.Views++
		}
	}

	return dataset, nil
}

func (s *DatasetService) Update(ctx context.Context, id, actorID uuid.UUID, isAdmin bool, update domain.DatasetUpdate) (*domain.Dataset, error) {
	dataset, err := s.datasetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if dataset.SellerID != actorID && !isAdmin {
		return nil, domain.NewForbiddenError("You can only update your own datasets")
	}

	if update.Empty() {
		return nil, domain.NewValidationError("No valid updates provided")
	}
	if errs := validateUpdate(update); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}
	if update.Tags != nil {
		tags, err := NormalizeTags(*update.Tags)
		if err != nil {
			return nil, err
		}
		update.Tags = &tags
	}

	updated, err := s.datasetRepo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("dataset_id", id.String()).Msg("Dataset updated")
	return updated, nil
}

func (s *DatasetService) Delete(ctx context.Context, id, actorID uuid.UUID, isAdmin bool) error {
	dataset, err := s.datasetRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if dataset.SellerID != actorID && !isAdmin {
		return domain.NewForbiddenError("You can only delete your own datasets")
	}

	if err := s.datasetRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.fileStore.Remove(dataset.FilePath)

	s.logger.Info().Str("dataset_id", id.String()).Msg("Dataset deleted")
	return nil
}

func (s *DatasetService) Download(ctx context.Context, id, userID uuid.UUID) (*domain.Dataset, error) {
	dataset, err := s.datasetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dataset.SellerID != userID {
		purchased, err := s.transactionRepo.HasCompletedPurchase(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		if !purchased {
			return nil, domain.NewForbiddenError("You must purchase this dataset before downloading")
		}
	}

	if !s.fileStore.Exists(dataset.FilePath) {
		s.logger.Error().Str("dataset_id", id.String()).Str("path", dataset.FilePath).Msg("Dataset file missing from disk")
		return nil, domain.NewNotFoundError("Dataset file")
	}

	if err := s.datasetRepo.IncrementDownloads(ctx, nil, id); err == nil {
		dataset.Downloads++
	}

	return dataset, nil
}

func (s *DatasetService) MyDatasets(ctx context.Context, sellerID uuid.UUID, page domain.Page) ([]*domain.Dataset, int64, error) {
	filter := domain.DatasetFilter{SellerID: &sellerID}
	return s.datasetRepo.List(ctx, filter, page)
}

func (s *DatasetService) Categories(ctx context.Context) ([]domain.CategoryCount, error) {
	counts, err := s.datasetRepo.CategoryCounts(ctx)
	if err != nil {
		return nil, err
	}

	categories := make([]domain.CategoryCount, 0, len(domain.DatasetCategories))
	for _, name := range domain.DatasetCategories {
		categories = append(categories, domain.CategoryCount{Name: name, Count: counts[name]})
	}
	return categories, nil
}

func (s *DatasetService) validateFile(file *multipart.FileHeader) (string, error) {
	if file.Size == 0 {
		return "", domain.NewValidationError("Dataset file is empty")
	}

	maxSize := s.config.Upload.MaxFileSize
	if maxSize == 0 {
		maxSize = domain.MaxUploadSize
	}
	if file.Size > maxSize {
		return "", domain.NewValidationError("Dataset file exceeds the maximum upload size")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	fileType, ok := domain.FileTypeByExtension[ext]
	if !ok {
		return "", domain.NewValidationError("Unsupported file type. Allowed: csv, json, xlsx, pdf, zip, sql, xml")
	}

	return fileType, nil
}

// NormalizeTags accepts the raw multipart tag value in either form the
// clients send: a JSON array string or a comma-separated list. Tags are
// trimmed and deduplicated on the exact string, so "A" and "a" are
// distinct tags.
func NormalizeTags(tags []string) ([]string, error) {
	if len(tags) == 1 {
		raw := strings.TrimSpace(tags[0])
		var parsed []string
		if strings.HasPrefix(raw, "[") && json.Unmarshal([]byte(raw), &parsed) == nil {
			tags = parsed
		} else if strings.Contains(raw, ",") {
			tags = strings.Split(raw, ",")
		}
	}

	seen := make(map[string]bool, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || len(tag) > domain.MaxTagLength {
			continue
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		normalized = append(normalized, tag)
	}

	if len(normalized) > domain.MaxTags {
		return nil, domain.NewValidationError("Maximum 10 tags allowed")
	}
	return normalized, nil
}

func validateInput(input domain.DatasetInput) []string {
	var errs []string

	if len(input.Title) < 3 || len(input.Title) > 100 {
		errs = append(errs, "Title must be between 3 and 100 characters")
	}
	if len(input.Description) < 10 || len(input.Description) > 2000 {
		errs = append(errs, "Description must be between 10 and 2000 characters")
	}
	if !domain.IsValidCategory(input.Category) {
		errs = append(errs, "Invalid category")
	}
	if input.Price < domain.MinPrice || input.Price > domain.MaxPrice {
		errs = append(errs, "Price must be between 0 and 1000")
	}
	if input.Currency != domain.CurrencyETH && input.Currency != domain.CurrencyUSD {
		errs = append(errs, "Currency must be ETH or USD")
	}

	return errs
}

func validateUpdate(update domain.DatasetUpdate) []string {
	var errs []string

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if len(title) < 3 || len(title) > 100 {
			errs = append(errs, "Title must be between 3 and 100 characters")
		}
	}
	if update.Description != nil {
		description := strings.TrimSpace(*update.Description)
		if len(description) < 10 || len(description) > 2000 {
			errs = append(errs, "Description must be between 10 and 2000 characters")
		}
	}
	if update.Category != nil && !domain.IsValidCategory(*update.Category) {
		errs = append(errs, "Invalid category")
	}
	if update.Price != nil && (*update.Price < domain.MinPrice || *update.Price > domain.MaxPrice) {
		errs = append(errs, "Price must be between 0 and 1000")
	}

	return errs
}
