package http

import "time"

type AddItemRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
}

type SetFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type CreateOrderResponse struct {
	ID        string    `json:"id"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

// checkoutForm is the HTML confirm form.
type checkoutForm struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Address string `form:"address"`
}
