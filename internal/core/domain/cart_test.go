package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	bread  = Product{ID: ProductBread, Name: "Bread", Price: 1.10}
	cheese = Product{ID: ProductCheese, Name: "Cheese", Price: 0.90}
)

func TestAddLine_NewAndExisting(t *testing.T) {
	c := NewCart("c1", time.Now())

	c.AddLine(bread)
	c.AddLine(cheese)
	c.AddLine(bread)

	require.Len(t, c.Lines, 2)
	assert.Equal(t, ProductBread, c.Lines[0].Product.ID)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, 1, c.Lines[1].Quantity)
	assert.Equal(t, 3, c.ItemCount())
}

func TestRemoveLine(t *testing.T) {
	c := NewCart("c1", time.Now())
	c.AddLine(bread)
	c.AddLine(bread)

	require.NoError(t, c.RemoveLine(ProductBread))
	assert.Empty(t, c.Lines)

	assert.ErrorIs(t, c.RemoveLine(ProductBread), ErrLineNotFound)
}

func TestSetQuantity(t *testing.T) {
	c := NewCart("c1", time.Now())
	c.AddLine(cheese)

	require.NoError(t, c.SetQuantity(ProductCheese, 4))
	line, ok := c.Line(ProductCheese)
	require.True(t, ok)
	assert.Equal(t, 4, line.Quantity)

	assert.ErrorIs(t, c.SetQuantity(ProductCheese, -1), ErrInvalidQuantity)
	assert.ErrorIs(t, c.SetQuantity(ProductBread, 2), ErrLineNotFound)

	// zero removes the line instead of leaving an empty one behind
	require.NoError(t, c.SetQuantity(ProductCheese, 0))
	_, ok = c.Line(ProductCheese)
	assert.False(t, ok)
}

func TestIncrementDecrement(t *testing.T) {
	c := NewCart("c1", time.Now())
	c.AddLine(bread)

	require.NoError(t, c.IncrementLine(ProductBread))
	require.NoError(t, c.DecrementLine(ProductBread))
	line, _ := c.Line(ProductBread)
	assert.Equal(t, 1, line.Quantity)

	require.NoError(t, c.DecrementLine(ProductBread))
	assert.Empty(t, c.Lines)

	assert.ErrorIs(t, c.IncrementLine(ProductBread), ErrLineNotFound)
	assert.ErrorIs(t, c.DecrementLine(ProductBread), ErrLineNotFound)
}

func TestClear(t *testing.T) {
	c := NewCart("c1", time.Now())
	c.AddLine(bread)
	c.Subtotal = 1.10
	c.FinalTotal = 1.10
	c.Offers = []AppliedOffer{{ProductID: ProductBread, Savings: 0.55}}

	c.Clear()

	assert.Empty(t, c.Lines)
	assert.Empty(t, c.Offers)
	assert.Zero(t, c.Subtotal)
	assert.Zero(t, c.FinalTotal)
	assert.Equal(t, "c1", c.ID)
}

func TestClone_IsIndependent(t *testing.T) {
	c := NewCart("c1", time.Now())
	c.AddLine(bread)
	c.AddLine(cheese)

	cp := c.Clone()
	require.NoError(t, cp.RemoveLine(ProductBread))
	require.NoError(t, cp.IncrementLine(ProductCheese))

	require.Len(t, c.Lines, 2)
	assert.Equal(t, ProductBread, c.Lines[0].Product.ID)
	assert.Equal(t, 1, c.Lines[1].Quantity)
}
