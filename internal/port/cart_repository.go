package port

import (
	"context"

	"github.com/rl1809/pos-cart/internal/core/domain"
)

type CartRepository interface {
	// GetCart returns domain.ErrCartNotFound when the cart does not exist or has expired
	GetCart(ctx context.Context, cartID string) (*domain.Cart, error)

	// SaveCart stores cart only if the stored version equals cart.Version-1, a missing
	// cart counting as version 0. Otherwise it returns domain.ErrVersionConflict
	SaveCart(ctx context.Context, cart *domain.Cart) error
}

type IdempotencyRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency frees a key claimed by a request that did not complete,
	// so a retry with the same request ID is accepted
	ReleaseIdempotency(ctx context.Context, key string) error
}
