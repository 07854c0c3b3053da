package domain

import "time"

type CartEventType string

const (
	EventCartCreated     CartEventType = "cart_created"
	EventLineAdded       CartEventType = "line_added"
	EventLineRemoved     CartEventType = "line_removed"
	EventQuantitySet     CartEventType = "quantity_set"
	EventLineIncremented CartEventType = "line_incremented"
	EventLineDecremented CartEventType = "line_decremented"
	EventCartCleared     CartEventType = "cart_cleared"
)

// CartEvent is the read-only snapshot republished after every cart mutation.
// Version is the cart version the snapshot was taken at; a higher version
// always supersedes a lower one.
type CartEvent struct {
	ID           string         `json:"id"`
	CartID       string         `json:"cart_id"`
	Version      int            `json:"version"`
	Type         CartEventType  `json:"type"`
	ProductID    string         `json:"product_id,omitempty"`
	Subtotal     float64        `json:"subtotal"`
	TotalSavings float64        `json:"total_savings"`
	FinalTotal   float64        `json:"final_total"`
	ItemCount    int            `json:"item_count"`
	Offers       []AppliedOffer `json:"offers"`
	OccurredAt   time.Time      `json:"occurred_at"`
}
