package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blockmarketai/marketplace/internal/application/datasetservice"
	"github.com/blockmarketai/marketplace/internal/domain"
	"github.com/blockmarketai/marketplace/internal/server/middleware"
	"github.com/blockmarketai/marketplace/pkg/config"
)

type DatasetHandler struct {
	datasetSvc datasetservice.IDatasetService
	config     *config.Config
	logger     zerolog.Logger
}

func NewDatasetHandler(datasetSvc datasetservice.IDatasetService, config *config.Config, logger zerolog.Logger) *DatasetHandler {
	return &DatasetHandler{
		datasetSvc: datasetSvc,
		config:     config,
		logger:     logger,
	}
}

func (h *DatasetHandler) List(c *gin.Context) {
	filter := domain.DatasetFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		MinPrice: parseFloatQuery(c, "minPrice"),
		MaxPrice: parseFloatQuery(c, "maxPrice"),
	}
	page := parsePage(c, "created_at")

	datasets, total, err := h.datasetSvc.List(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "", gin.H{
		"datasets":   datasets,
		"pagination": newPagination(page, total),
	})
}

func (h *DatasetHandler) Get(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var viewerID *uuid.UUID
	if userID, ok := middleware.CurrentUserID(c); ok {
		viewerID = &userID
	}

	dataset, err := h.datasetSvc.GetByID(c.Request.Context(), id, viewerID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "", gin.H{"dataset": dataset})
}

// Create accepts a multipart form: dataset metadata fields plus the file.
func (h *DatasetHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	file, err := c.FormFile(domain.UploadField)
	if err != nil {
		respondError(c, domain.NewValidationError("Dataset file is required"))
		return
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		respondError(c, domain.NewValidationError("Price must be a number"))
		return
	}

	input := domain.DatasetInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Price:       price,
		Currency:    domain.Currency(c.PostForm("currency")),
	}
	if tags := c.PostForm("tags"); tags != "" {
		input.Tags = []string{tags}
	}

	dataset, err := h.datasetSvc.Create(c.Request.Context(), userID, input, file)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Dataset created successfully", gin.H{"dataset": dataset})
}

func (h *DatasetHandler) Update(c *gin.Context) {
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

	var update domain.DatasetUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondError(c, domain.NewValidationError("Invalid request body"))
		return
	}

	dataset, err := h.datasetSvc.Update(c.Request.Context(), id, userID, middleware.IsAdmin(c), update)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Dataset updated successfully", gin.H{"dataset": dataset})
}

func (h *DatasetHandler) Delete(c *gin.Context) {
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

	if err := h.datasetSvc.Delete(c.Request.Context(), id, userID, middleware.IsAdmin(c)); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Dataset deleted successfully", nil)
}

// Download streams the stored file to a buyer or the seller.
func (h *DatasetHandler) Download(c *gin.Context) {
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

	dataset, err := h.datasetSvc.Download(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.FileAttachment(dataset.FilePath, dataset.FileName)
}

func (h *DatasetHandler) MyDatasets(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}
	page := parsePage(c, "created_at")

	datasets, total, err := h.datasetSvc.MyDatasets(c.Request.Context(), userID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "", gin.H{
		"datasets":   datasets,
		"pagination": newPagination(page, total),
	})
}

func (h *DatasetHandler) Categories(c *gin.Context) {
	categories, err := h.datasetSvc.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "", gin.H{"categories": categories})
}
