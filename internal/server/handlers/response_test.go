package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockmarketai/marketplace/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(url string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, url, nil)
	return c, w
}

func TestNewPagination(t *testing.T) {
	p := newPagination(domain.Page{Number: 2, Limit: 10}, 35)

	assert.Equal(t, 2, p.Current)
	assert.Equal(t, int64(35), p.Total)
	assert.Equal(t, int64(4), p.Pages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)
}

func TestNewPagination_ExactFit(t *testing.T) {
	p := newPagination(domain.Page{Number: 3, Limit: 10}, 30)

	assert.Equal(t, int64(3), p.Pages)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)
}

func TestNewPagination_Empty(t *testing.T) {
	p := newPagination(domain.Page{Number: 1, Limit: 10}, 0)

	assert.Equal(t, int64(0), p.Pages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}

func TestParsePage_Defaults(t *testing.T) {
	c, _ := testContext("/api/datasets")
	page := parsePage(c, "created_at")

	assert.Equal(t, 1, page.Number)
	assert.Equal(t, defaultPageLimit, page.Limit)
	assert.Equal(t, "created_at", page.Sort)
	assert.Equal(t, "desc", page.Order)
}

func TestParsePage_Values(t *testing.T) {
	c, _ := testContext("/api/datasets?page=3&limit=25&sortBy=price&order=asc")
	page := parsePage(c, "created_at")

	assert.Equal(t, 3, page.Number)
	assert.Equal(t, 25, page.Limit)
	assert.Equal(t, "price", page.Sort)
	assert.Equal(t, "asc", page.Order)
}

func TestParsePage_ClampsBadValues(t *testing.T) {
	c, _ := testContext("/api/datasets?page=-1&limit=9999")
	page := parsePage(c, "created_at")

	assert.Equal(t, 1, page.Number)
	assert.Equal(t, maxPageLimit, page.Limit)
}

func TestRespondError_DomainError(t *testing.T) {
	c, w := testContext("/api/datasets")
	respondError(c, domain.NewValidationError("Title must be between 3 and 100 characters"))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Validation failed", resp.Message)
	assert.Equal(t, []string{"Title must be between 3 and 100 characters"}, resp.Errors)
}

func TestRespondError_UnknownErrorIsInternal(t *testing.T) {
	c, w := testContext("/api/datasets")
	respondError(c, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Internal Server Error", resp.Message)
}

func TestRespond_Envelope(t *testing.T) {
	c, w := testContext("/api/datasets")
	respond(c, http.StatusOK, "ok", gin.H{"value": 1})

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ok", resp.Message)
}

func TestParseTimeQuery(t *testing.T) {
	c, _ := testContext("/api/v1/transactions?startDate=2026-01-15&endDate=2026-02-01T12:30:00Z&bad=tomorrow")

	start := parseTimeQuery(c, "startDate")
	require.NotNil(t, start)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), *start)

	end := parseTimeQuery(c, "endDate")
	require.NotNil(t, end)
	assert.Equal(t, time.Date(2026, 2, 1, 12, 30, 0, 0, time.UTC), *end)

	assert.Nil(t, parseTimeQuery(c, "bad"))
	assert.Nil(t, parseTimeQuery(c, "missing"))
}

func TestParseFloatQuery(t *testing.T) {
	c, _ := testContext("/api/datasets?minPrice=0.5&maxPrice=abc")

	v := parseFloatQuery(c, "minPrice")
	require.NotNil(t, v)
	assert.Equal(t, 0.5, *v)

	assert.Nil(t, parseFloatQuery(c, "maxPrice"))
	assert.Nil(t, parseFloatQuery(c, "missing"))
}
