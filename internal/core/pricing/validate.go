package pricing

import (
	"fmt"

	"github.com/rl1809/pos-cart/internal/core/domain"
)

// Validate rejects line sets that break the invariants the rules depend on:
// one line per product and a positive quantity on every line.
func Validate(lines []domain.CartLine) error {
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if l.Product.ID == "" {
			return fmt.Errorf("%w: empty product id", domain.ErrInvalidProduct)
		}
		if l.Product.Price < 0 {
			return fmt.Errorf("%w: %s has negative price", domain.ErrInvalidProduct, l.Product.ID)
		}
		if l.Quantity < 1 {
			return fmt.Errorf("%w: %s has quantity %d", domain.ErrInvalidQuantity, l.Product.ID, l.Quantity)
		}
		if _, dup := seen[l.Product.ID]; dup {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateLine, l.Product.ID)
		}
		seen[l.Product.ID] = struct{}{}
	}
	return nil
}
