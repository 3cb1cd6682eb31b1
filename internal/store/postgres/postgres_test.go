package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"vnfurniture/internal/models"
	"vnfurniture/internal/store"
	"vnfurniture/internal/store/postgres"
)

func setupMockDB(t *testing.T) (*store.Backend, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(gormpg.New(gormpg.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return postgres.New(gormDB), mock
}

var productColumns = []string{"id", "name", "description", "price", "category", "image_url", "created_at", "user_id"}

func TestProductsListFiltersAndOrders(t *testing.T) {
	backend, mock := setupMockDB(t)

	id := uuid.New()
	rows := sqlmock.NewRows(productColumns).
		AddRow(id.String(), "Desk", "Oak", "150.00", "office", nil, time.Now(), uuid.Nil.String())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE category = $1 ORDER BY created_at DESC`)).
		WithArgs("office").
		WillReturnRows(rows)

	list, err := backend.Products.List(context.Background(), store.ProductQuery{Category: models.CategoryOffice, NewestFirst: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, "150", list[0].Price.String())
	assert.Nil(t, list[0].ImageURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductsListAllHasNoFilter(t *testing.T) {
	backend, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" ORDER BY created_at ASC`)).
		WillReturnRows(sqlmock.NewRows(productColumns))

	list, err := backend.Products.List(context.Background(), store.ProductQuery{Category: models.CategoryAll})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductsGetNotFound(t *testing.T) {
	backend, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows(productColumns))

	p, err := backend.Products.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Nil(t, p)
}

func TestProductsDelete(t *testing.T) {
	backend, mock := setupMockDB(t)

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "products" WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, backend.Products.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartUpdateQuantityIsScopedToOwner(t *testing.T) {
	backend, mock := setupMockDB(t)

	userID, itemID := uuid.New(), uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "cart_items" SET "quantity"=$1 WHERE id = $2 AND user_id = $3`)).
		WithArgs(3, itemID, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, backend.Cart.UpdateQuantity(context.Background(), userID, itemID, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersSetRoleUnknownUser(t *testing.T) {
	backend, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "role"=$1 WHERE id = $2`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := backend.Users.SetRole(context.Background(), uuid.New(), models.RoleAdmin)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
