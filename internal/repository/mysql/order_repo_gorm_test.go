package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"storefront/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestToRecord(t *testing.T) {
	o := domain.NewOrder(
		domain.BuyerForm{Name: "Ana", Email: "ana@x.com", Address: "Calle 1"},
		[]domain.CartItem{{ID: 1, Name: "Sweater NAREA", Price: 27000}},
	)

	rec := toRecord(o)

	assert.Zero(t, rec.ID)
	assert.True(t, rec.CreatedAt.IsZero())
	assert.Equal(t, "Ana", rec.Name)
	assert.Equal(t, "ana@x.com", rec.Email)
	assert.Equal(t, "Calle 1", rec.Address)
	assert.Equal(t, int64(27000), rec.Total)
	assert.Equal(t, o.Cart, rec.Cart)
	assert.Equal(t, "orders", OrderRecord{}.TableName())
}

var insertOrder = regexp.QuoteMeta("INSERT INTO `orders`")

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func newAnaOrder() *domain.Order {
	return domain.NewOrder(
		domain.BuyerForm{Name: "Ana", Email: "ana@x.com", Address: "Calle 1"},
		[]domain.CartItem{{ID: 1, Name: "Sweater NAREA", Price: 27000}, {ID: 3, Name: "Accesorios", Price: 5000}},
	)
}

func TestOrderRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(insertOrder).
		WithArgs("Ana", "ana@x.com", "Calle 1", sqlmock.AnyArg(), int64(32000), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	order := newAnaOrder()
	err := NewOrderRepository(db, zap.NewNop()).Create(context.Background(), order)

	require.NoError(t, err)
	assert.Equal(t, "42", order.ID)
	assert.False(t, order.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_CreateWithoutAssignedID(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(insertOrder).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	order := newAnaOrder()
	err := NewOrderRepository(db, zap.NewNop()).Create(context.Background(), order)

	assert.EqualError(t, err, "failed to assign order ID")
	assert.Empty(t, order.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_CreateDatabaseError(t *testing.T) {
	db, mock := newMockDB(t)
	dbErr := errors.New("Error 1213: Deadlock found when trying to get lock")
	mock.ExpectBegin()
	mock.ExpectExec(insertOrder).WillReturnError(dbErr)
	mock.ExpectRollback()

	order := newAnaOrder()
	err := NewOrderRepository(db, zap.NewNop()).Create(context.Background(), order)

	assert.ErrorIs(t, err, dbErr)
	assert.Empty(t, order.ID)
	assert.True(t, order.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
