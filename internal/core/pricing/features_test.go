package pricing

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/rl1809/pos-cart/internal/core/domain"
)

type pricingTestContext struct {
	catalog map[string]domain.Product
	lines   []domain.CartLine
	result  domain.CartComputation
}

func (c *pricingTestContext) reset() {
	c.catalog = make(map[string]domain.Product)
	c.lines = nil
	c.result = domain.CartComputation{}
}

func (c *pricingTestContext) theCatalogPrices(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		price, err := strconv.ParseFloat(row.Cells[2].Value, 64)
		if err != nil {
			return fmt.Errorf("price for %s: %w", row.Cells[0].Value, err)
		}
		c.catalog[row.Cells[0].Value] = domain.Product{
			ID:    row.Cells[0].Value,
			Name:  row.Cells[1].Value,
			Price: price,
		}
	}
	return nil
}

func (c *pricingTestContext) theCartHolds(qty int, productID string) error {
	p, ok := c.catalog[productID]
	if !ok {
		return fmt.Errorf("unknown product %q", productID)
	}
	c.lines = append(c.lines, domain.CartLine{Product: p, Quantity: qty})
	return nil
}

func (c *pricingTestContext) isRemoved(productID string) error {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%q not in cart", productID)
}

func (c *pricingTestContext) theCartIsPriced() error {
	c.result = Recompute(c.lines)
	return nil
}

func expectAmount(what string, want, got float64) error {
	if math.Abs(want-got) > tolerance {
		return fmt.Errorf("expected %s %.2f, got %v", what, want, got)
	}
	return nil
}

func (c *pricingTestContext) theSubtotalIs(v float64) error {
	return expectAmount("subtotal", v, c.result.Subtotal)
}

func (c *pricingTestContext) theTotalSavingsAre(v float64) error {
	return expectAmount("savings", v, c.result.TotalSavings)
}

func (c *pricingTestContext) theFinalTotalIs(v float64) error {
	return expectAmount("final total", v, c.result.FinalTotal)
}

func (c *pricingTestContext) offersAreApplied(n int) error {
	if len(c.result.Offers) != n {
		return fmt.Errorf("expected %d offers, got %d", n, len(c.result.Offers))
	}
	return nil
}

func (c *pricingTestContext) anOfferOnMentions(productID, text string) error {
	for _, o := range c.result.Offers {
		if o.ProductID == productID && strings.Contains(o.Description, text) {
			return nil
		}
	}
	return fmt.Errorf("no offer on %q mentioning %q in %+v", productID, text, c.result.Offers)
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &pricingTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^the catalog prices$`, tc.theCatalogPrices)
	ctx.Step(`^the cart holds (\d+) of "([^"]*)"$`, tc.theCartHolds)
	ctx.Step(`^"([^"]*)" is removed$`, tc.isRemoved)
	ctx.Step(`^the cart is priced$`, tc.theCartIsPriced)
	ctx.Step(`^the subtotal is (\d+\.\d+)$`, tc.theSubtotalIs)
	ctx.Step(`^the total savings are (\d+\.\d+)$`, tc.theTotalSavingsAre)
	ctx.Step(`^the final total is (\d+\.\d+)$`, tc.theFinalTotalIs)
	ctx.Step(`^(\d+) offers? (?:is|are) applied$`, tc.offersAreApplied)
	ctx.Step(`^an offer on "([^"]*)" mentions "([^"]*)"$`, tc.anOfferOnMentions)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/pricing.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
