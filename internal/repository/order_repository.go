package repository

import (
	"context"

	"storefront/internal/domain"
)

// OrderSink durably records completed orders. Create assigns order.ID and
// order.CreatedAt on success. Orders are never read back by the storefront.
type OrderSink interface {
	Create(ctx context.Context, order *domain.Order) error
}
