package datasetrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/blockmarketai/marketplace/internal/domain"
	"github.com/blockmarketai/marketplace/internal/infrastructure/database"
)

const datasetColumns = `d.id, d.title, d.description, d.category, d.price, d.currency, d.tags,
	d.file_size, d.file_name, d.file_path, d.file_type, d.is_active, d.seller_id,
	d.downloads, d.views, d.rating, d.review_count,
	d.token_id, d.contract_address, d.transaction_hash,
	d.created_at, d.updated_at,
	u.username, u.wallet_address`

const datasetFrom = ` FROM datasets d JOIN users u ON u.id = d.seller_id`

type datasetRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *database.DBManager, logger zerolog.Logger) IDatasetRepository {
	return &datasetRepository{
		db:     db.Db,
		logger: logger,
	}
}

func (r *datasetRepository) Create(ctx context.Context, dataset *domain.Dataset) (*domain.Dataset, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO datasets (title, description, category, price, currency, tags,
			file_size, file_name, file_path, file_type, is_active, seller_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		dataset.Title, dataset.Description, dataset.Category, dataset.Price,
		dataset.Currency, pq.Array(dataset.Tags),
		dataset.FileSize, dataset.FileName, dataset.FilePath, dataset.FileType,
		dataset.IsActive, dataset.SellerID,
	).Scan(&id)
	if err != nil {
		r.logger.Error().Err(err).Str("title", dataset.Title).Msg("Failed to create dataset")
		return nil, fmt.Errorf("failed to create dataset: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *datasetRepository) List(ctx context.Context, filter domain.DatasetFilter, page domain.Page) ([]*domain.Dataset, int64, error) {
	where, args := buildFilter(filter)

	var total int64
	countQuery := `SELECT count(*)` + datasetFrom + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("Failed to count datasets")
		return nil, 0, fmt.Errorf("failed to count datasets: %w", err)
	}

	args = append(args, page.Limit, page.Offset())
	query := fmt.Sprintf(`SELECT %s%s%s ORDER BY d.%s %s LIMIT $%d OFFSET $%d`,
		datasetColumns, datasetFrom, where,
		sortColumn(page.Sort), sortOrder(page.Order), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to list datasets")
		return nil, 0, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []*domain.Dataset
	for rows.Next() {
		dataset, err := scanDataset(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, dataset)
	}

	return datasets, total, rows.Err()
}

func (r *datasetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dataset, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+datasetColumns+datasetFrom+` WHERE d.id = $1`, id)

	dataset, err := scanDataset(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFoundError("Dataset")
		}
		r.logger.Error().Err(err).Str("id", id.String()).Msg("Failed to get dataset by ID")
		return nil, fmt.Errorf("failed to get dataset by ID: %w", err)
	}

	return dataset, nil
}

func (r *datasetRepository) Update(ctx context.Context, id uuid.UUID, update domain.DatasetUpdate) (*domain.Dataset, error) {
	sets := make([]string, 0, 6)
	args := make([]interface{}, 0, 6)

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		addSet("title", *update.Title)
	}
	if update.Description != nil {
		addSet("description", *update.Description)
	}
	if update.Category != nil {
		addSet("category", *update.Category)
	}
	if update.Price != nil {
		addSet("price", *update.Price)
	}
	if update.Tags != nil {
		addSet("tags", pq.Array(*update.Tags))
	}
	if update.IsActive != nil {
		addSet("is_active", *update.IsActive)
	}
	if len(sets) == 0 {
		return nil, domain.NewValidationError("No valid updates provided")
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE datasets SET %s, updated_at = now() WHERE id = $%d`,
		strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("id", id.String()).Msg("Failed to update dataset")
		return nil, fmt.Errorf("failed to update dataset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.NewNotFoundError("Dataset")
	}

	return r.GetByID(ctx, id)
}

func (r *datasetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("id", id.String()).Msg("Failed to delete dataset")
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("Dataset")
	}
	return nil
}

func (r *datasetRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE datasets SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("id", id.String()).Msg("Failed to increment views")
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

func (r *datasetRepository) IncrementDownloads(ctx context.Context, dbtx DBTX, id uuid.UUID) error {
	if dbtx == nil {
		dbtx = r.db
	}
	_, err := dbtx.ExecContext(ctx, `UPDATE datasets SET downloads = downloads + 1 WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("id", id.String()).Msg("Failed to increment downloads")
		return fmt.Errorf("failed to increment downloads: %w", err)
	}
	return nil
}

func (r *datasetRepository) CategoryCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, count(*) FROM datasets WHERE is_active = TRUE GROUP BY category`)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to count categories")
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts[category] = count
	}

	return counts, rows.Err()
}

func buildFilter(filter domain.DatasetFilter) (string, []interface{}) {
	conds := make([]string, 0, 6)
	args := make([]interface{}, 0, 6)

	add := func(cond string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.IsActive != nil {
		add("d.is_active = $%d", *filter.IsActive)
	}
	if filter.Category != "" {
		add("d.category = $%d", filter.Category)
	}
	if filter.MinPrice != nil {
		add("d.price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("d.price <= $%d", *filter.MaxPrice)
	}
	if filter.SellerID != nil {
		add("d.seller_id = $%d", *filter.SellerID)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			`(d.title ILIKE $%d OR d.description ILIKE $%d OR EXISTS (
				SELECT 1 FROM unnest(d.tags) AS tag WHERE tag ILIKE $%d))`, n, n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDataset(row rowScanner) (*domain.Dataset, error) {
	var dataset domain.Dataset
	var seller domain.UserRef

	err := row.Scan(
		&dataset.ID, &dataset.Title, &dataset.Description, &dataset.Category,
		&dataset.Price, &dataset.Currency, pq.Array(&dataset.Tags),
		&dataset.FileSize, &dataset.FileName, &dataset.FilePath, &dataset.FileType,
		&dataset.IsActive, &dataset.SellerID,
		&dataset.Downloads, &dataset.Views, &dataset.Rating, &dataset.ReviewCount,
		&dataset.TokenID, &dataset.ContractAddress, &dataset.TransactionHash,
		&dataset.CreatedAt, &dataset.UpdatedAt,
		&seller.Username, &seller.WalletAddress,
	)
	if err != nil {
		return nil, err
	}

	seller.ID = dataset.SellerID
	dataset.Seller = &seller
	return &dataset, nil
}

func sortColumn(sort string) string {
	switch sort {
	case "price", "downloads", "views", "rating", "title", "created_at":
		return sort
	case "createdAt", "":
		return "created_at"
	default:
		return "created_at"
	}
}

func sortOrder(order string) string {
	if order == "asc" {
		return "ASC"
	}
	return "DESC"
}
