package catalog

import (
	"errors"
	"fmt"
	"os"

	"storefront/internal/domain"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownProduct   = errors.New("product not found")
	ErrDuplicateProduct = errors.New("duplicate product id")
	ErrEmptyCatalog     = errors.New("catalog has no products")
)

// Catalog is the read-only, ordered product list shown to shoppers.
type Catalog struct {
	products []domain.Product
	byID     map[int64]int
}

func New(products []domain.Product) (*Catalog, error) {
	if len(products) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		products: make([]domain.Product, len(products)),
		byID:     make(map[int64]int, len(products)),
	}
	copy(c.products, products)
	for i, p := range c.products {
		if _, ok := c.byID[p.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateProduct, p.ID)
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

func Default() *Catalog {
	c, _ := New([]domain.Product{
		{ID: 1, Name: "Sweater NAREA", Price: 27000},
		{ID: 2, Name: "Conjunto Otoñal", Price: 32000},
		{ID: 3, Name: "Accesorios", Price: 5000},
	})
	return c
}

type fileFormat struct {
	Products []domain.Product `yaml:"products"`
}

func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return New(f.Products)
}

func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Find(id int64) (domain.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %d", ErrUnknownProduct, id)
	}
	return c.products[i], nil
}

func (c *Catalog) Len() int {
	return len(c.products)
}
