package domain

import (
	"time"

	"github.com/google/uuid"
)

type Currency string

const (
	CurrencyETH Currency = "ETH"
	CurrencyUSD Currency = "USD"
)

type Dataset struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Price           float64   `json:"price"`
	Currency        Currency  `json:"currency"`
	Tags            []string  `json:"tags"`
	FileSize        int64     `json:"fileSize"`
	FileName        string    `json:"fileName"`
	FilePath        string    `json:"-"`
	FileType        string    `json:"fileType"`
	IsActive        bool      `json:"isActive"`
	SellerID        uuid.UUID `json:"sellerId"`
	Seller          *UserRef  `json:"seller,omitempty"`
	Downloads       int64     `json:"downloads"`
	Views           int64     `json:"views"`
	Rating          float64   `json:"rating"`
	ReviewCount     int64     `json:"reviewCount"`
	TokenID         string    `json:"tokenId,omitempty"`
	ContractAddress string    `json:"contractAddress,omitempty"`
	TransactionHash string    `json:"transactionHash,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// DatasetRef is the subset of dataset fields expanded into transactions.
type DatasetRef struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Currency    Currency  `json:"currency"`
	FileSize    int64     `json:"fileSize,omitempty"`
	FileName    string    `json:"fileName,omitempty"`
}

type DatasetInput struct {
	Title       string
	Description string
	Category    string
	Price       float64
	Currency    Currency
	Tags        []string
}

type DatasetUpdate struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Price       *float64  `json:"price"`
	Tags        *[]string `json:"tags"`
	IsActive    *bool     `json:"isActive"`
}

func (u *DatasetUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Category == nil &&
		u.Price == nil && u.Tags == nil && u.IsActive == nil
}

// FileMeta describes an upload already persisted to disk by the time the
// dataset record is created.
type FileMeta struct {
	Size         int64
	OriginalName string
	StoragePath  string
	Type         string
}

type DatasetFilter struct {
	IsActive *bool
	Category string
	MinPrice *float64
	MaxPrice *float64
	Search   string
	SellerID *uuid.UUID
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Page is the common list request shape: 1-based page, sort column from
// an allow-list, asc/desc order.
type Page struct {
	Number int
	Limit  int
	Sort   string
	Order  string
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}
