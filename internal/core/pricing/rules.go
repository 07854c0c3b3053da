// Package pricing computes cart totals and the promotions that apply to them.
// Everything here is pure: the same lines in always give the same result out.
package pricing

import (
	"fmt"

	"github.com/rl1809/pos-cart/internal/core/domain"
)

// LineIndex gives rules read-only access to every line of the cart by product ID.
type LineIndex map[string]domain.CartLine

func (idx LineIndex) Get(productID string) (domain.CartLine, bool) {
	l, ok := idx[productID]
	return l, ok
}

// Rule is a single promotion. Apply runs once for every line whose product ID
// equals Trigger and only ever sees undiscounted lines.
type Rule struct {
	Name    string
	Trigger string
	Apply   func(line domain.CartLine, lines LineIndex) (domain.AppliedOffer, bool)
}

// DefaultRules returns the store's promotions in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "cheese-bogo", Trigger: domain.ProductCheese, Apply: cheeseBuyOneGetOne},
		{Name: "soup-half-price-bread", Trigger: domain.ProductSoup, Apply: soupHalfPriceBread},
		{Name: "butter-third-off", Trigger: domain.ProductButter, Apply: butterThirdOff},
	}
}

func cheeseBuyOneGetOne(line domain.CartLine, _ LineIndex) (domain.AppliedOffer, bool) {
	if line.Quantity < 2 {
		return domain.AppliedOffer{}, false
	}
	free := line.Quantity / 2
	return domain.AppliedOffer{
		ProductID:   line.Product.ID,
		Description: fmt.Sprintf("Buy %s, get second free! (%d free)", line.Product.Name, free),
		Savings:     float64(free) * line.Product.Price,
	}, true
}

// soupHalfPriceBread discounts bread, not soup: the savings use bread's price and
// are attributed to the bread line.
func soupHalfPriceBread(line domain.CartLine, lines LineIndex) (domain.AppliedOffer, bool) {
	bread, ok := lines.Get(domain.ProductBread)
	if !ok {
		return domain.AppliedOffer{}, false
	}
	return domain.AppliedOffer{
		ProductID:   bread.Product.ID,
		Description: fmt.Sprintf("Buy %s, get half price %s!", line.Product.Name, bread.Product.Name),
		Savings:     float64(min(line.Quantity, bread.Quantity)) * (bread.Product.Price / 2),
	}, true
}

func butterThirdOff(line domain.CartLine, _ LineIndex) (domain.AppliedOffer, bool) {
	if line.Quantity < 1 {
		return domain.AppliedOffer{}, false
	}
	return domain.AppliedOffer{
		ProductID:   line.Product.ID,
		Description: fmt.Sprintf("Get 1/3 off %s!", line.Product.Name),
		Savings:     float64(line.Quantity) * line.Product.Price * (1.0 / 3),
	}, true
}
