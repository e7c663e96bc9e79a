package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blockmarketai/marketplace/internal/application/ledgerservice"
	"github.com/blockmarketai/marketplace/internal/domain"
	"github.com/blockmarketai/marketplace/internal/server/middleware"
)

type TransactionHandler struct {
	ledgerSvc ledgerservice.ILedgerService
	logger    zerolog.Logger
}

func NewTransactionHandler(ledgerSvc ledgerservice.ILedgerService, logger zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{
		ledgerSvc: ledgerSvc,
		logger:    logger,
	}
}

func (h *TransactionHandler) CreatePurchase(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	var input domain.PurchaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, domain.NewValidationError("Invalid request body"))
		return
	}

	tx, err := h.ledgerSvc.CreatePurchase(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Purchase recorded successfully", gin.H{"transaction": tx})
}

func (h *TransactionHandler) List(c *gin.Context) {
	h.list(c, false, false)
}

// Purchases lists only transactions where the caller is the buyer.
func (h *TransactionHandler) Purchases(c *gin.Context) {
	h.list(c, true, false)
}

// Sales lists only transactions where the caller is the seller.
func (h *TransactionHandler) Sales(c *gin.Context) {
	h.list(c, false, true)
}

func (h *TransactionHandler) list(c *gin.Context, buyerOnly, sellerOnly bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	filter := domain.TransactionFilter{
		UserID:     userID,
		Status:     domain.TransactionStatus(c.Query("status")),
		Type:       domain.TransactionType(c.Query("type")),
		MinAmount:  parseFloatQuery(c, "minAmount"),
		MaxAmount:  parseFloatQuery(c, "maxAmount"),
		StartDate:  parseTimeQuery(c, "startDate"),
		EndDate:    parseTimeQuery(c, "endDate"),
		BuyerOnly:  buyerOnly,
		SellerOnly: sellerOnly,
	}
	page := parsePage(c, "created_at")

	transactions, total, err := h.ledgerSvc.List(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "", gin.H{
		"transactions": transactions,
		"pagination":   newPagination(page, total),
	})
}

func (h *TransactionHandler) Get(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	tx, err := h.ledgerSvc.GetByID(c.Request.Context(), id, userID, middleware.IsAdmin(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "", gin.H{"transaction": tx})
}

type statusUpdateRequest struct {
	Status           domain.TransactionStatus `json:"status"`
	BlockchainTxHash string                   `json:"blockchainTxHash"`
	BlockNumber      *int64                   `json:"blockNumber"`
	GasUsed          *int64                   `json:"gasUsed"`
	GasFee           *float64                 `json:"gasFee"`
}

func (h *TransactionHandler) UpdateStatus(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.NewValidationError("Invalid request body"))
		return
	}

	fields := &domain.BlockchainFields{
		TxHash:      req.BlockchainTxHash,
		BlockNumber: req.BlockNumber,
		GasUsed:     req.GasUsed,
		GasFee:      req.GasFee,
	}

	tx, err := h.ledgerSvc.UpdateStatus(c.Request.Context(), id, userID, middleware.IsAdmin(c), req.Status, fields)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Transaction status updated", gin.H{"transaction": tx})
}

func (h *TransactionHandler) Analytics(c *gin.Context) {
	analytics, err := h.ledgerSvc.Analytics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "", gin.H{"analytics": analytics})
}
