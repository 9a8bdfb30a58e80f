package domain

type Product struct {
	ID    int64  `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Price int64  `json:"price" yaml:"price"`
}

// CartItem is a product copied by value at the moment it was added.
type CartItem = Product

func SumPrices(items []CartItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Price
	}
	return total
}
