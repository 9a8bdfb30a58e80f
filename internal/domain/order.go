package domain

import "time"

type Order struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Address   string     `json:"address"`
	Cart      []CartItem `json:"cart"`
	Total     int64      `json:"total"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewOrder packages the buyer form and a cart snapshot. ID and CreatedAt are left
// for the sink to assign.
func NewOrder(form BuyerForm, cart []CartItem) *Order {
	items := make([]CartItem, len(cart))
	copy(items, cart)
	return &Order{
		Name:    form.Name,
		Email:   form.Email,
		Address: form.Address,
		Cart:    items,
		Total:   SumPrices(items),
	}
}
