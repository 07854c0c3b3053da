package port

import (
	"context"

	"github.com/rl1809/pos-cart/internal/core/domain"
)

type EventPublisher interface {
	Publish(ctx context.Context, event domain.CartEvent) error
}
