package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string
type TransactionType string
type PaymentMethod string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusRefunded  TransactionStatus = "refunded"
)

const (
	TypePurchase TransactionType = "purchase"
	TypeSale     TransactionType = "sale"
)

const (
	PaymentMetamask      PaymentMethod = "metamask"
	PaymentWalletConnect PaymentMethod = "wallet_connect"
	PaymentOther         PaymentMethod = "other"
)

func IsValidStatus(s TransactionStatus) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// CanTransition reports whether the settlement state machine allows
// moving from one status to another. failed and refunded are terminal.
func CanTransition(from, to TransactionStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusCompleted || to == StatusFailed
	case StatusCompleted:
		return to == StatusRefunded
	}
	return false
}

type Transaction struct {
	ID               uuid.UUID         `json:"id"`
	BuyerID          uuid.UUID         `json:"buyerId"`
	SellerID         uuid.UUID         `json:"sellerId"`
	DatasetID        uuid.UUID         `json:"datasetId"`
	Buyer            *UserRef          `json:"buyer,omitempty"`
	Seller           *UserRef          `json:"seller,omitempty"`
	Dataset          *DatasetRef       `json:"dataset,omitempty"`
	Amount           float64           `json:"amount"`
	Currency         Currency          `json:"currency"`
	Status           TransactionStatus `json:"status"`
	Type             TransactionType   `json:"type"`
	BlockchainTxHash string            `json:"blockchainTxHash,omitempty"`
	BlockNumber      *int64            `json:"blockNumber,omitempty"`
	GasUsed          *int64            `json:"gasUsed,omitempty"`
	GasFee           *float64          `json:"gasFee,omitempty"`
	PaymentMethod    PaymentMethod     `json:"paymentMethod"`
	ProcessingFee    float64           `json:"processingFee"`
	StatsApplied     bool              `json:"-"`
	Metadata         json.RawMessage   `json:"metadata,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

type PurchaseInput struct {
	DatasetID        uuid.UUID     `json:"datasetId"`
	Amount           float64       `json:"amount"`
	Currency         Currency      `json:"currency"`
	PaymentMethod    PaymentMethod `json:"paymentMethod"`
	BlockchainTxHash string        `json:"blockchainTxHash"`
}

// BlockchainFields carries the optional on-chain evidence attached to a
// status update. Values are informational; the ledger never settles on-chain.
type BlockchainFields struct {
	TxHash      string   `json:"blockchainTxHash"`
	BlockNumber *int64   `json:"blockNumber"`
	GasUsed     *int64   `json:"gasUsed"`
	GasFee      *float64 `json:"gasFee"`
}

type TransactionFilter struct {
	UserID     uuid.UUID // caller; matched against buyer or seller
	Status     TransactionStatus
	Type       TransactionType
	MinAmount  *float64
	MaxAmount  *float64
	StartDate  *time.Time
	EndDate    *time.Time
	BuyerOnly  bool
	SellerOnly bool
}

type StatusBreakdown struct {
	Status      TransactionStatus `json:"status"`
	Count       int64             `json:"count"`
	TotalAmount float64           `json:"totalAmount"`
}

type DailyVolume struct {
	Day         string  `json:"day"`
	Count       int64   `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
}

type VolumeLeader struct {
	UserID           uuid.UUID `json:"userId"`
	Username         string    `json:"username"`
	TotalAmount      float64   `json:"totalAmount"`
	TransactionCount int64     `json:"transactionCount"`
}

type TransactionAnalytics struct {
	StatusBreakdown   []StatusBreakdown `json:"statusBreakdown"`
	DailyTransactions []DailyVolume     `json:"dailyTransactions"`
	TopBuyers         []VolumeLeader    `json:"topBuyers"`
	TopSellers        []VolumeLeader    `json:"topSellers"`
}
