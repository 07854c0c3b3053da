package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rl1809/pos-cart/internal/core/domain"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		lines []domain.CartLine
		err   error
	}{
		{name: "empty", lines: nil},
		{name: "valid", lines: []domain.CartLine{line(cheese, 2), line(bread, 1)}},
		{name: "zero quantity", lines: []domain.CartLine{line(cheese, 0)}, err: domain.ErrInvalidQuantity},
		{name: "negative quantity", lines: []domain.CartLine{line(cheese, -3)}, err: domain.ErrInvalidQuantity},
		{name: "duplicate", lines: []domain.CartLine{line(bread, 1), line(bread, 2)}, err: domain.ErrDuplicateLine},
		{name: "missing id", lines: []domain.CartLine{line(domain.Product{Name: "x"}, 1)}, err: domain.ErrInvalidProduct},
		{
			name:  "negative price",
			lines: []domain.CartLine{line(domain.Product{ID: "x", Price: -1}, 1)},
			err:   domain.ErrInvalidProduct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.lines)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "£0.90", FormatPrice(0.9))
	assert.Equal(t, "£1.15", FormatPrice(1.7000000000000002-0.55))
	assert.Equal(t, "£0.40", FormatPrice(1.2*(1.0/3)))
	assert.Equal(t, "£0.00", FormatPrice(0))
	assert.Equal(t, "-£0.55", FormatPrice(-0.55))
}
