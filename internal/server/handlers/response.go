package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/blockmarketai/marketplace/internal/domain"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Response is the envelope every endpoint renders.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Current int   `json:"current"`
	Total   int64 `json:"total"`
	Pages   int64 `json:"pages"`
	Limit   int   `json:"limit"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func respondError(c *gin.Context, err error) {
	appErr := domain.AsError(err)
	c.JSON(appErr.Status, Response{
		Success: false,
		Message: appErr.Message,
		Errors:  appErr.Errors,
	})
}

func newPagination(page domain.Page, total int64) Pagination {
	pages := total / int64(page.Limit)
	if total%int64(page.Limit) != 0 {
		pages++
	}
	return Pagination{
		Current: page.Number,
		Total:   total,
		Pages:   pages,
		Limit:   page.Limit,
		HasNext: int64(page.Number) < pages,
		HasPrev: page.Number > 1,
	}
}

// parsePage reads the common list query parameters. Out-of-range values
// fall back to defaults rather than erroring.
func parsePage(c *gin.Context, defaultSort string) domain.Page {
	number, err := strconv.Atoi(c.Query("page"))
	if err != nil || number < 1 {
		number = 1
	}

	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	sort := c.Query("sortBy")
	if sort == "" {
		sort = defaultSort
	}

	return domain.Page{
		Number: number,
		Limit:  limit,
		Sort:   sort,
		Order:  c.DefaultQuery("order", "desc"),
	}
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("Invalid " + name + " format")
	}
	return id, nil
}

func parseFloatQuery(c *gin.Context, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseTimeQuery accepts RFC 3339 timestamps or bare YYYY-MM-DD dates.
// Unparseable values are ignored, like the other filter parameters.
func parseTimeQuery(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts
	}
	if ts, err := time.Parse("2006-01-02", raw); err == nil {
		return &ts
	}
	return nil
}

func abortUnauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, Response{
		Success: false,
		Message: "Unauthorized access",
	})
}
