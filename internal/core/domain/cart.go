package domain

import "time"

type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	// LinePrice is unit price times quantity minus the savings attributed to this product.
	LinePrice float64 `json:"line_price"`
}

type AppliedOffer struct {
	ProductID   string  `json:"product_id"`
	Description string  `json:"description"`
	Savings     float64 `json:"savings"`
}

// CartComputation is the derived pricing state of a set of cart lines.
// FinalTotal always equals Subtotal - TotalSavings.
type CartComputation struct {
	Lines        []CartLine     `json:"lines"`
	Subtotal     float64        `json:"subtotal"`
	TotalSavings float64        `json:"total_savings"`
	FinalTotal   float64        `json:"final_total"`
	Offers       []AppliedOffer `json:"offers"`
}

type Cart struct {
	ID string `json:"id"`
	CartComputation
	Version   int       `json:"version"` // optimistic locking
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCart(id string, now time.Time) *Cart {
	return &Cart{
		ID: id,
		CartComputation: CartComputation{
			Lines:  []CartLine{},
			Offers: []AppliedOffer{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Line(productID string) (CartLine, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Lines[i], true
	}
	return CartLine{}, false
}

// AddLine increments the line for p, creating it with quantity 1 if absent.
func (c *Cart) AddLine(p Product) {
	if i := c.indexOf(p.ID); i >= 0 {
		c.Lines[i].Quantity++
		return
	}
	c.Lines = append(c.Lines, CartLine{Product: p, Quantity: 1, LinePrice: p.Price})
}

func (c *Cart) RemoveLine(productID string) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return nil
}

// SetQuantity sets the quantity of an existing line. Zero removes the line,
// negative quantities are rejected.
func (c *Cart) SetQuantity(productID string, n int) error {
	if n < 0 {
		return ErrInvalidQuantity
	}
	i := c.indexOf(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	if n == 0 {
		return c.RemoveLine(productID)
	}
	c.Lines[i].Quantity = n
	return nil
}

func (c *Cart) IncrementLine(productID string) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	c.Lines[i].Quantity++
	return nil
}

// DecrementLine lowers the quantity by one and drops the line when it reaches zero.
func (c *Cart) DecrementLine(productID string) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	if c.Lines[i].Quantity <= 1 {
		return c.RemoveLine(productID)
	}
	c.Lines[i].Quantity--
	return nil
}

func (c *Cart) Clear() {
	c.CartComputation = CartComputation{
		Lines:  []CartLine{},
		Offers: []AppliedOffer{},
	}
}

// Clone returns a deep copy so a failed mutation never leaks into the stored cart.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Lines = append([]CartLine(nil), c.Lines...)
	cp.Offers = append([]AppliedOffer(nil), c.Offers...)
	return &cp
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}
