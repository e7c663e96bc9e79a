package datasetrepo

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockmarketai/marketplace/internal/domain"
	"github.com/blockmarketai/marketplace/internal/infrastructure/database"
)

func newRepoWithMock(t *testing.T) (IDatasetRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	repo := New(&database.DBManager{Db: db}, zerolog.Nop())
	return repo, mock, db
}

func TestIncrementViews_AtomicUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(`UPDATE\s+datasets\s+SET\s+views\s*=\s*views\s*\+\s*1\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementViews(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementDownloads_AtomicUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(`UPDATE\s+datasets\s+SET\s+downloads\s*=\s*downloads\s*\+\s*1\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementDownloads(context.Background(), nil, id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(`DELETE\s+FROM\s+datasets`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), id)
	require.Error(t, err)
	assert.True(t, domain.IsStatus(err, 404))
}

func TestUpdate_NoFields(t *testing.T) {
	repo, _, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.Update(context.Background(), uuid.New(), domain.DatasetUpdate{})
	require.Error(t, err)
	assert.True(t, domain.IsStatus(err, 400))
}

func TestBuildFilter(t *testing.T) {
	active := true
	minPrice, maxPrice := 0.1, 1.0
	sellerID := uuid.New()

	where, args := buildFilter(domain.DatasetFilter{
		IsActive: &active,
		Category: "Finance",
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		SellerID: &sellerID,
		Search:   "electricity",
	})

	assert.Contains(t, where, "d.is_active = $1")
	assert.Contains(t, where, "d.category = $2")
	assert.Contains(t, where, "d.price >= $3")
	assert.Contains(t, where, "d.price <= $4")
	assert.Contains(t, where, "d.seller_id = $5")
	assert.Contains(t, where, "ILIKE $6")
	assert.Len(t, args, 6)
	assert.Equal(t, "%electricity%", args[5])
}

func TestBuildFilter_Empty(t *testing.T) {
	where, args := buildFilter(domain.DatasetFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestSortColumnAllowList(t *testing.T) {
	assert.Equal(t, "price", sortColumn("price"))
	assert.Equal(t, "created_at", sortColumn("createdAt"))
	assert.Equal(t, "created_at", sortColumn(""))
	assert.Equal(t, "created_at", sortColumn("; DROP TABLE datasets"))
}
