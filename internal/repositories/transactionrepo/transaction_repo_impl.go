package transactionrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/sqlc-dev/pqtype"

	"github.com/blockmarketai/marketplace/internal/domain"
	"github.com/blockmarketai/marketplace/internal/infrastructure/database"
)

// Party and dataset rows may have been deleted after the fact; the
// ledger row still lists, with the references blanked out.
const transactionColumns = `t.id, t.buyer_id, t.seller_id, t.dataset_id,
	t.amount, t.currency, t.status, t.type,
	t.blockchain_tx_hash, t.block_number, t.gas_used, t.gas_fee,
	t.payment_method, t.processing_fee, t.stats_applied, t.metadata,
	t.created_at, t.updated_at,
	coalesce(b.username, ''), coalesce(b.wallet_address, ''), coalesce(b.email, ''),
	coalesce(s.username, ''), coalesce(s.wallet_address, ''), coalesce(s.email, ''),
	coalesce(d.title, ''), coalesce(d.description, ''), coalesce(d.price, 0),
	coalesce(d.currency, ''), coalesce(d.file_size, 0), coalesce(d.file_name, '')`

const transactionFrom = ` FROM transactions t
	LEFT JOIN users b ON b.id = t.buyer_id
	LEFT JOIN users s ON s.id = t.seller_id
	LEFT JOIN datasets d ON d.id = t.dataset_id`

type transactionRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *database.DBManager, logger zerolog.Logger) ITransactionRepository {
	return &transactionRepository{
		db:     db.Db,
		logger: logger,
	}
}

func (r *transactionRepository) Create(ctx context.Context, dbtx DBTX, tx *domain.Transaction) (*domain.Transaction, error) {
	if dbtx == nil {
		dbtx = r.db
	}

	var txHash sql.NullString
	if tx.BlockchainTxHash != "" {
		txHash = sql.NullString{String: tx.BlockchainTxHash, Valid: true}
	}
	metadata := pqtype.NullRawMessage{RawMessage: tx.Metadata, Valid: tx.Metadata != nil}

	var id uuid.UUID
	err := dbtx.QueryRowContext(ctx, `
		INSERT INTO transactions (buyer_id, seller_id, dataset_id, amount, currency,
			status, type, blockchain_tx_hash, payment_method, processing_fee,
			stats_applied, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		tx.BuyerID, tx.SellerID, tx.DatasetID, tx.Amount, tx.Currency,
		tx.Status, tx.Type, txHash, tx.PaymentMethod, tx.ProcessingFee,
		tx.StatsApplied, metadata,
	).Scan(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, domain.NewConflictError("You have already purchased this dataset")
		}
		r.logger.Error().Err(err).Str("dataset_id", tx.DatasetID.String()).Msg("Failed to create transaction")
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	tx.ID = id
	return tx, nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+transactionFrom+` WHERE t.id = $1`, id)

	tx, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFoundError("Transaction")
		}
		r.logger.Error().Err(err).Str("id", id.String()).Msg("Failed to get transaction by ID")
		return nil, fmt.Errorf("failed to get transaction by ID: %w", err)
	}

	return tx, nil
}

func (r *transactionRepository) List(ctx context.Context, filter domain.TransactionFilter, page domain.Page) ([]*domain.Transaction, int64, error) {
	where, args := buildFilter(filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*)`+transactionFrom+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("Failed to count transactions")
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	args = append(args, page.Limit, page.Offset())
	query := fmt.Sprintf(`SELECT %s%s%s ORDER BY t.%s %s LIMIT $%d OFFSET $%d`,
		transactionColumns, transactionFrom, where,
		sortColumn(page.Sort), sortOrder(page.Order), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to list transactions")
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	return transactions, total, rows.Err()
}

func (r *transactionRepository) HasCompletedPurchase(ctx context.Context, buyerID, datasetID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE buyer_id = $1 AND dataset_id = $2 AND status = 'completed'
		)`, buyerID, datasetID).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("buyer_id", buyerID.String()).Msg("Failed to check completed purchase")
		return false, fmt.Errorf("failed to check completed purchase: %w", err)
	}
	return exists, nil
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus, fields *domain.BlockchainFields) error {
	if fields == nil {
		fields = &domain.BlockchainFields{}
	}

	var txHash sql.NullString
	if fields.TxHash != "" {
		txHash = sql.NullString{String: fields.TxHash, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET
			status = $2,
			blockchain_tx_hash = coalesce($3, blockchain_tx_hash),
			block_number = coalesce($4, block_number),
			gas_used = coalesce($5, gas_used),
			gas_fee = coalesce($6, gas_fee),
			updated_at = now()
		WHERE id = $1`,
		id, status, txHash, fields.BlockNumber, fields.GasUsed, fields.GasFee)
	if err != nil {
		r.logger.Error().Err(err).Str("id", id.String()).Str("status", string(status)).Msg("Failed to update transaction status")
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("Transaction")
	}
	return nil
}

func (r *transactionRepository) MarkCompleted(ctx context.Context, dbtx DBTX, id uuid.UUID, fields *domain.BlockchainFields) (*CompletionRow, error) {
	if dbtx == nil {
		dbtx = r.db
	}
	if fields == nil {
		fields = &domain.BlockchainFields{}
	}

	var txHash sql.NullString
	if fields.TxHash != "" {
		txHash = sql.NullString{String: fields.TxHash, Valid: true}
	}

	// stats_applied is the propagation gate: the row is claimed and the
	// status overwritten in the same statement, so the previous-status
	// check can never race with the write.
	var row CompletionRow
	err := dbtx.QueryRowContext(ctx, `
		UPDATE transactions SET
			status = 'completed',
			stats_applied = TRUE,
			blockchain_tx_hash = coalesce($2, blockchain_tx_hash),
			block_number = coalesce($3, block_number),
			gas_used = coalesce($4, gas_used),
			gas_fee = coalesce($5, gas_fee),
			updated_at = now()
		WHERE id = $1 AND stats_applied = FALSE
		RETURNING buyer_id, seller_id, dataset_id, amount, processing_fee`,
		id, txHash, fields.BlockNumber, fields.GasUsed, fields.GasFee).
		Scan(&row.BuyerID, &row.SellerID, &row.DatasetID, &row.Amount, &row.ProcessingFee)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, domain.NewConflictError("You have already purchased this dataset")
		}
		r.logger.Error().Err(err).Str("id", id.String()).Msg("Failed to mark transaction completed")
		return nil, fmt.Errorf("failed to mark transaction completed: %w", err)
	}

	return &row, nil
}

func (r *transactionRepository) SetMetadata(ctx context.Context, id uuid.UUID, metadata []byte) error {
	_, err := r.db.ExecContext(ctx, `UPDATE transactions SET metadata = $2, updated_at = now() WHERE id = $1`,
		id, pqtype.NullRawMessage{RawMessage: metadata, Valid: metadata != nil})
	if err != nil {
		r.logger.Error().Err(err).Str("id", id.String()).Msg("Failed to set transaction metadata")
		return fmt.Errorf("failed to set transaction metadata: %w", err)
	}
	return nil
}

func (r *transactionRepository) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Error().Err(rbErr).Msg("Failed to roll back transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) Analytics(ctx context.Context) (*domain.TransactionAnalytics, error) {
	analytics := &domain.TransactionAnalytics{}

	rows, err := r.db.QueryContext(ctx, `
		SELECT status, count(*), coalesce(sum(amount), 0)
		FROM transactions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate status breakdown: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b domain.StatusBreakdown
		if err := rows.Scan(&b.Status, &b.Count, &b.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan status breakdown: %w", err)
		}
		analytics.StatusBreakdown = append(analytics.StatusBreakdown, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dailyRows, err := r.db.QueryContext(ctx, `
		SELECT to_char(created_at, 'YYYY-MM-DD') AS day, count(*), coalesce(sum(amount), 0)
		FROM transactions
		WHERE created_at >= now() - interval '30 days'
		GROUP BY day ORDER BY day DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily volume: %w", err)
	}
	defer dailyRows.Close()
	for dailyRows.Next() {
		var d domain.DailyVolume
		if err := dailyRows.Scan(&d.Day, &d.Count, &d.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan daily volume: %w", err)
		}
		analytics.DailyTransactions = append(analytics.DailyTransactions, d)
	}
	if err := dailyRows.Err(); err != nil {
		return nil, err
	}

	topBuyers, err := r.leaders(ctx, "buyer_id")
	if err != nil {
		return nil, err
	}
	analytics.TopBuyers = topBuyers

	topSellers, err := r.leaders(ctx, "seller_id")
	if err != nil {
		return nil, err
	}
	analytics.TopSellers = topSellers

	return analytics, nil
}

func (r *transactionRepository) leaders(ctx context.Context, column string) ([]domain.VolumeLeader, error) {
	query := fmt.Sprintf(`
		SELECT t.%s, coalesce(u.username, ''), coalesce(sum(t.amount), 0) AS total, count(*)
		FROM transactions t LEFT JOIN users u ON u.id = t.%s
		GROUP BY t.%s, u.username
		ORDER BY total DESC
		LIMIT 10`, column, column, column)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate volume leaders: %w", err)
	}
	defer rows.Close()

	var leaders []domain.VolumeLeader
	for rows.Next() {
		var l domain.VolumeLeader
		if err := rows.Scan(&l.UserID, &l.Username, &l.TotalAmount, &l.TransactionCount); err != nil {
			return nil, fmt.Errorf("failed to scan volume leader: %w", err)
		}
		leaders = append(leaders, l)
	}

	return leaders, rows.Err()
}

func buildFilter(filter domain.TransactionFilter) (string, []interface{}) {
	conds := make([]string, 0, 7)
	args := make([]interface{}, 0, 7)

	add := func(cond string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	// Callers only ever see transactions they are a party to.
	switch {
	case filter.BuyerOnly:
		add("t.buyer_id = $%d", filter.UserID)
	case filter.SellerOnly:
		add("t.seller_id = $%d", filter.UserID)
	default:
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("(t.buyer_id = $%d OR t.seller_id = $%d)", len(args), len(args)))
	}

	if filter.Status != "" {
		add("t.status = $%d", filter.Status)
	}
	if filter.Type != "" {
		add("t.type = $%d", filter.Type)
	}
	if filter.MinAmount != nil {
		add("t.amount >= $%d", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		add("t.amount <= $%d", *filter.MaxAmount)
	}
	if filter.StartDate != nil {
		add("t.created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("t.created_at <= $%d", *filter.EndDate)
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var buyer, seller domain.UserRef
	var dataset domain.DatasetRef
	var txHash sql.NullString
	var blockNumber, gasUsed sql.NullInt64
	var gasFee sql.NullFloat64
	var metadata pqtype.NullRawMessage

	err := row.Scan(
		&tx.ID, &tx.BuyerID, &tx.SellerID, &tx.DatasetID,
		&tx.Amount, &tx.Currency, &tx.Status, &tx.Type,
		&txHash, &blockNumber, &gasUsed, &gasFee,
		&tx.PaymentMethod, &tx.ProcessingFee, &tx.StatsApplied, &metadata,
		&tx.CreatedAt, &tx.UpdatedAt,
		&buyer.Username, &buyer.WalletAddress, &buyer.Email,
		&seller.Username, &seller.WalletAddress, &seller.Email,
		&dataset.Title, &dataset.Description, &dataset.Price, &dataset.Currency,
		&dataset.FileSize, &dataset.FileName,
	)
	if err != nil {
		return nil, err
	}

	tx.BlockchainTxHash = txHash.String
	if blockNumber.Valid {
		tx.BlockNumber = &blockNumber.Int64
	}
	if gasUsed.Valid {
		tx.GasUsed = &gasUsed.Int64
	}
	if gasFee.Valid {
		tx.GasFee = &gasFee.Float64
	}
	if metadata.Valid {
		tx.Metadata = metadata.RawMessage
	}

	buyer.ID = tx.BuyerID
	seller.ID = tx.SellerID
	dataset.ID = tx.DatasetID
	tx.Buyer = &buyer
	tx.Seller = &seller
	tx.Dataset = &dataset

	return &tx, nil
}

func sortColumn(sort string) string {
	switch sort {
	case "amount", "status", "created_at":
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
