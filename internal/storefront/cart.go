package storefront

import "storefront/internal/domain"

// Cart is an ordered sequence of items. Duplicates are kept as separate entries.
type Cart struct {
	Items []domain.CartItem `json:"items"`
}

func (c *Cart) Add(p domain.Product) {
	c.Items = append(c.Items, p)
}

// Remove drops the item at index and reports whether anything was removed.
// An index outside the cart is a no-op.
func (c *Cart) Remove(index int) bool {
	if index < 0 || index >= len(c.Items) {
		return false
	}
	items := make([]domain.CartItem, 0, len(c.Items)-1)
	items = append(items, c.Items[:index]...)
	c.Items = append(items, c.Items[index+1:]...)
	return true
}

func (c Cart) Total() int64 {
	return domain.SumPrices(c.Items)
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c Cart) Len() int {
	return len(c.Items)
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) Snapshot() []domain.CartItem {
	out := make([]domain.CartItem, len(c.Items))
	copy(out, c.Items)
	return out
}
