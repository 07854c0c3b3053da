package pricing

import "github.com/shopspring/decimal"

const currencySymbol = "£"

// FormatPrice renders v for display, rounded half away from zero to two places.
// Rounding happens here only, never inside the computation.
func FormatPrice(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsNegative() {
		return "-" + currencySymbol + d.Abs().StringFixed(2)
	}
	return currencySymbol + d.StringFixed(2)
}
