package ledgerservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blockmarketai/marketplace/internal/domain"
	dataset_repository "github.com/blockmarketai/marketplace/internal/repositories/datasetrepo"
	transaction_repository "github.com/blockmarketai/marketplace/internal/repositories/transactionrepo"
	user_repository "github.com/blockmarketai/marketplace/internal/repositories/userrepo"
	"github.com/blockmarketai/marketplace/pkg/config"
	"github.com/blockmarketai/marketplace/pkg/currency"
)

type LedgerService struct {
	config          *config.Config
	logger          zerolog.Logger
	transactionRepo transaction_repository.ITransactionRepository
	datasetRepo     dataset_repository.IDatasetRepository
	userRepo        user_repository.IUserRepository
	currencyUtils   *currency.CurrencyUtils
	notifier        TransactionNotifier
	chainReader     ChainReader
}

// NewLedgerService wires the settlement ledger. notifier and chainReader
// are optional; nil disables push events and on-chain enrichment.
func NewLedgerService(
	config *config.Config,
	logger zerolog.Logger,
	transactionRepo transaction_repository.ITransactionRepository,
	datasetRepo dataset_repository.IDatasetRepository,
	userRepo user_repository.IUserRepository,
	notifier TransactionNotifier,
	chainReader ChainReader,
) ILedgerService {
	return &LedgerService{
		config:          config,
		logger:          logger,
		transactionRepo: transactionRepo,
		datasetRepo:     datasetRepo,
		userRepo:        userRepo,
		currencyUtils:   currency.NewCurrencyUtils(),
		notifier:        notifier,
		chainReader:     chainReader,
	}
}

func (s *LedgerService) CreatePurchase(ctx context.Context, buyerID uuid.UUID, input domain.PurchaseInput) (*domain.Transaction, error) {
	if input.DatasetID == uuid.Nil {
		return nil, domain.NewValidationError("Dataset ID is required")
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = domain.PaymentMetamask
	}
	if input.PaymentMethod != domain.PaymentMetamask &&
		input.PaymentMethod != domain.PaymentWalletConnect &&
		input.PaymentMethod != domain.PaymentOther {
		return nil, domain.NewValidationError("Invalid payment method")
	}
	if input.BlockchainTxHash != "" && !domain.TxHashRe.MatchString(input.BlockchainTxHash) {
		return nil, domain.NewValidationError("Invalid transaction hash format")
	}

	dataset, err := s.datasetRepo.GetByID(ctx, input.DatasetID)
	if err != nil {
		return nil, err
	}
	if !dataset.IsActive {
		return nil, domain.NewNotFoundError("Dataset")
	}
	if dataset.SellerID == buyerID {
		return nil, domain.NewConflictError("You cannot purchase your own dataset")
	}

	amount := s.currencyUtils.RoundAmount(input.Amount)
	if amount != dataset.Price {
		return nil, domain.NewValidationError("Amount must match the dataset price")
	}

	purchased, err := s.transactionRepo.HasCompletedPurchase(ctx, buyerID, input.DatasetID)
	if err != nil {
		return nil, err
	}
	if purchased {
		return nil, domain.NewConflictError("You have already purchased this dataset")
	}

	tx := &domain.Transaction{
		BuyerID:          buyerID,
		SellerID:         dataset.SellerID,
		DatasetID:        dataset.ID,
		Amount:           amount,
		Currency:         dataset.Currency,
		Status:           domain.StatusPending,
		Type:             domain.TypePurchase,
		BlockchainTxHash: input.BlockchainTxHash,
		PaymentMethod:    input.PaymentMethod,
		ProcessingFee:    s.currencyUtils.ProcessingFee(amount),
	}

	if input.BlockchainTxHash == "" {
		if _, err := s.transactionRepo.Create(ctx, nil, tx); err != nil {
			return nil, err
		}
	} else {
		// A payment hash settles the purchase immediately: the insert and
		// the counter propagation commit together or not at all.
		tx.Status = domain.StatusCompleted
		tx.StatsApplied = true
		err := s.transactionRepo.WithTx(ctx, func(dbtx *sql.Tx) error {
			if _, err := s.transactionRepo.Create(ctx, dbtx, tx); err != nil {
				return err
			}
			return s.propagate(ctx, dbtx, &transaction_repository.CompletionRow{
				BuyerID:       tx.BuyerID,
				SellerID:      tx.SellerID,
				DatasetID:     tx.DatasetID,
				Amount:        tx.Amount,
				ProcessingFee: tx.ProcessingFee,
			})
		})
		if err != nil {
			return nil, err
		}
	}

	created, err := s.transactionRepo.GetByID(ctx, tx.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("transaction_id", created.ID.String()).
		Str("buyer_id", buyerID.String()).
		Str("dataset_id", dataset.ID.String()).
		Str("amount", s.currencyUtils.FormatAmount(created.Amount, string(created.Currency))).
		Str("status", string(created.Status)).
		Msg("Purchase recorded")

	s.notify(created, "transaction:created")
	if created.Status == domain.StatusCompleted {
		s.notify(created, "transaction:completed")
	}
	s.enrichFromChain(created.ID, created.BlockchainTxHash)

	return created, nil
}

func (s *LedgerService) GetByID(ctx context.Context, id, actorID uuid.UUID, isAdmin bool) (*domain.Transaction, error) {
	tx, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.BuyerID != actorID && tx.SellerID != actorID && !isAdmin {
		return nil, domain.NewForbiddenError("You can only view your own transactions")
	}
	return tx, nil
}

func (s *LedgerService) List(ctx context.Context, filter domain.TransactionFilter, page domain.Page) ([]*domain.Transaction, int64, error) {
	if filter.Status != "" && !domain.IsValidStatus(filter.Status) {
		return nil, 0, domain.NewValidationError("Invalid status filter")
	}
	return s.transactionRepo.List(ctx, filter, page)
}

func (s *LedgerService) UpdateStatus(ctx context.Context, id, actorID uuid.UUID, isAdmin bool, status domain.TransactionStatus, fields *domain.BlockchainFields) (*domain.Transaction, error) {
	if !domain.IsValidStatus(status) {
		return nil, domain.NewValidationError("Invalid transaction status")
	}
	if fields != nil && fields.TxHash != "" && !domain.TxHashRe.MatchString(fields.TxHash) {
		return nil, domain.NewValidationError("Invalid transaction hash format")
	}

	tx, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Sellers never drive status: letting them complete their own sale
	// would let them credit their own earnings.
	if tx.BuyerID != actorID && !isAdmin {
		return nil, domain.NewForbiddenError("Only the buyer can update transaction status")
	}

	if tx.Status == status {
		return tx, nil
	}
	if !domain.CanTransition(tx.Status, status) {
		return nil, domain.NewConflictError(fmt.Sprintf("Cannot change a %s transaction to %s", tx.Status, status))
	}

	if status == domain.StatusCompleted {
		err = s.transactionRepo.WithTx(ctx, func(dbtx *sql.Tx) error {
			row, err := s.transactionRepo.MarkCompleted(ctx, dbtx, id, fields)
			if err != nil {
				return err
			}
			if row == nil {
				// Gate already claimed by a concurrent completion.
				return nil
			}
			return s.propagate(ctx, dbtx, row)
		})
	} else {
		err = s.transactionRepo.UpdateStatus(ctx, id, status, fields)
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("transaction_id", id.String()).
		Str("from", string(tx.Status)).
		Str("to", string(updated.Status)).
		Msg("Transaction status updated")

	s.notify(updated, "transaction:"+string(updated.Status))
	if updated.Status == domain.StatusCompleted {
		s.enrichFromChain(updated.ID, updated.BlockchainTxHash)
	}

	return updated, nil
}

func (s *LedgerService) Analytics(ctx context.Context) (*domain.TransactionAnalytics, error) {
	return s.transactionRepo.Analytics(ctx)
}

// propagate credits both parties and the dataset download counter inside
// the caller's database transaction. It runs at most once per settled
// purchase; MarkCompleted's gate guarantees that.
func (s *LedgerService) propagate(ctx context.Context, dbtx *sql.Tx, row *transaction_repository.CompletionRow) error {
	if err := s.userRepo.ApplyTransactionEffect(ctx, dbtx, row.BuyerID, domain.RoleBuyer, row.Amount, row.ProcessingFee); err != nil {
		return err
	}
	if err := s.userRepo.ApplyTransactionEffect(ctx, dbtx, row.SellerID, domain.RoleSeller, row.Amount, row.ProcessingFee); err != nil {
		return err
	}
	return s.datasetRepo.IncrementDownloads(ctx, dbtx, row.DatasetID)
}

func (s *LedgerService) notify(tx *domain.Transaction, event string) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastTransaction(tx.BuyerID.String(), event, tx)
	s.notifier.BroadcastTransaction(tx.SellerID.String(), event, tx)
}

// enrichFromChain records on-chain evidence in the transaction metadata.
// Best-effort: lookups run detached from the request and failures only log.
func (s *LedgerService) enrichFromChain(id uuid.UUID, txHash string) {
	if s.chainReader == nil || !s.config.Ethereum.Enabled || txHash == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.Ethereum.RequestTimeout())
		defer cancel()

		chainTx, err := s.chainReader.GetTransaction(ctx, txHash)
		if err != nil {
			s.logger.Warn().Err(err).Str("tx_hash", txHash).Msg("Failed to fetch on-chain transaction")
			return
		}
		if chainTx == nil {
			s.logger.Warn().Str("tx_hash", txHash).Msg("Transaction hash unknown to the node")
			return
		}

		metadata, err := json.Marshal(map[string]interface{}{
			"network":    s.config.Ethereum.Network,
			"chain":      chainTx,
			"verifiedAt": time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return
		}
		if err := s.transactionRepo.SetMetadata(ctx, id, metadata); err != nil {
			s.logger.Warn().Err(err).Str("transaction_id", id.String()).Msg("Failed to store on-chain metadata")
		}
	}()
}
