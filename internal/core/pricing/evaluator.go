package pricing

import "github.com/rl1809/pos-cart/internal/core/domain"

type Evaluation struct {
	TotalSavings float64
	Offers       []domain.AppliedOffer
}

type Evaluator struct {
	rules []Rule
}

func NewEvaluator(rules ...Rule) *Evaluator {
	return &Evaluator{rules: append([]Rule(nil), rules...)}
}

var defaultEvaluator = NewEvaluator(DefaultRules()...)

// Evaluate applies the default promotions to lines.
func Evaluate(lines []domain.CartLine) Evaluation {
	return defaultEvaluator.Evaluate(lines)
}

// Evaluate walks lines in order and, for each, the rules triggered by its product in
// rule order. Offers are never merged, even when several target the same product.
func (e *Evaluator) Evaluate(lines []domain.CartLine) Evaluation {
	idx := make(LineIndex, len(lines))
	for _, l := range lines {
		idx[l.Product.ID] = l
	}

	result := Evaluation{Offers: []domain.AppliedOffer{}}
	for _, line := range lines {
		for _, rule := range e.rules {
			if rule.Trigger != line.Product.ID {
				continue
			}
			offer, ok := rule.Apply(line, idx)
			if !ok {
				continue
			}
			result.Offers = append(result.Offers, offer)
			result.TotalSavings += offer.Savings
		}
	}
	return result
}
