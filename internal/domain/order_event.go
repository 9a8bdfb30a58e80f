package domain

import "time"

type OrderCreatedEvent struct {
	OrderID   string    `json:"orderId"`
	Email     string    `json:"email"`
	ItemCount int       `json:"itemCount"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:   o.ID,
		Email:     o.Email,
		ItemCount: len(o.Cart),
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
	}
}
