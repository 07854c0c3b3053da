package storage

import (
	"context"

	"github.com/rl1809/pos-cart/internal/core/domain"
)

// StaticCatalog serves a fixed product list from memory.
type StaticCatalog struct {
	products []domain.Product
	byID     map[string]domain.Product
}

func NewStaticCatalog(products []domain.Product) *StaticCatalog {
	c := &StaticCatalog{
		products: append([]domain.Product(nil), products...),
		byID:     make(map[string]domain.Product, len(products)),
	}
	for _, p := range products {
		c.byID[p.ID] = p
	}
	return c
}

func (c *StaticCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return append([]domain.Product(nil), c.products...), nil
}

func (c *StaticCatalog) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	p, ok := c.byID[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}
