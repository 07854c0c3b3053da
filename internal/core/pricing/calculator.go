package pricing

import "github.com/rl1809/pos-cart/internal/core/domain"

// Recompute derives the full pricing state of lines with the default promotions.
func Recompute(lines []domain.CartLine) domain.CartComputation {
	return defaultEvaluator.Recompute(lines)
}

// Recompute derives subtotal, per-line prices, savings and final total from scratch.
// The input slice is not modified.
func (e *Evaluator) Recompute(lines []domain.CartLine) domain.CartComputation {
	eval := e.Evaluate(lines)

	savingsByProduct := make(map[string]float64, len(eval.Offers))
	for _, o := range eval.Offers {
		savingsByProduct[o.ProductID] += o.Savings
	}

	out := make([]domain.CartLine, len(lines))
	var subtotal float64
	for i, l := range lines {
		gross := l.Product.Price * float64(l.Quantity)
		subtotal += gross
		l.LinePrice = gross - savingsByProduct[l.Product.ID]
		out[i] = l
	}

	return domain.CartComputation{
		Lines:        out,
		Subtotal:     subtotal,
		TotalSavings: eval.TotalSavings,
		FinalTotal:   subtotal - eval.TotalSavings,
		Offers:       eval.Offers,
	}
}
