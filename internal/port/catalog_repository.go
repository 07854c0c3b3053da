package port

import (
	"context"

	"github.com/rl1809/pos-cart/internal/core/domain"
)

// CatalogRepository is read-only; products are immutable once defined.
type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// GetProduct returns domain.ErrProductNotFound for unknown IDs
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
}
