package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// OrderSink keeps orders in process memory. It backs local runs and tests.
type OrderSink struct {
	mu     sync.Mutex
	orders []domain.Order
	now    func() time.Time
}

func NewOrderSink() *OrderSink {
	return &OrderSink{now: time.Now}
}

var _ repository.OrderSink = (*OrderSink)(nil)

func (s *OrderSink) Create(ctx context.Context, order *domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	order.ID = strconv.Itoa(len(s.orders) + 1)
	order.CreatedAt = s.now().UTC()

	stored := *order
	stored.Cart = append([]domain.CartItem(nil), order.Cart...)
	s.orders = append(s.orders, stored)
	return nil
}

func (s *OrderSink) Orders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Order(nil), s.orders...)
}
