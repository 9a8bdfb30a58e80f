package mysql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderRecord is the relational shape of an order. The cart is kept as a JSON
// column so the stored record matches the document schema.
type OrderRecord struct {
	ID        uint64            `gorm:"primaryKey;autoIncrement"`
	Name      string            `gorm:"size:255;not null"`
	Email     string            `gorm:"size:255;not null;index"`
	Address   string            `gorm:"type:text;not null"`
	Cart      []domain.CartItem `gorm:"type:json;serializer:json;not null"`
	Total     int64             `gorm:"not null"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
}

func (OrderRecord) TableName() string {
	return "orders"
}

func toRecord(o *domain.Order) *OrderRecord {
	return &OrderRecord{
		Name:    o.Name,
		Email:   o.Email,
		Address: o.Address,
		Cart:    o.Cart,
		Total:   o.Total,
	}
}

type orderRepo struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewOrderRepository(db *gorm.DB, logger *zap.Logger) repository.OrderSink {
	return &orderRepo{db: db, logger: logger}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&OrderRecord{})
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	rec := toRecord(order)
	result := r.db.WithContext(ctx).Create(rec)
	if result.Error != nil {
		r.logger.Error("database save error", zap.Error(result.Error))
		return result.Error
	}

	if rec.ID == 0 {
		r.logger.Warn("order saved but ID is still 0", zap.Int64("rows_affected", result.RowsAffected))
		return errors.New("failed to assign order ID")
	}

	order.ID = strconv.FormatUint(rec.ID, 10)
	order.CreatedAt = rec.CreatedAt
	r.logger.Debug("order saved", zap.String("order_id", order.ID))
	return nil
}
