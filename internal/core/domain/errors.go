package domain

import "errors"

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrLineNotFound     = errors.New("product not in cart")
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrDuplicateLine    = errors.New("duplicate cart line")
	ErrInvalidProduct   = errors.New("invalid product")
	ErrVersionConflict  = errors.New("cart version conflict")
	ErrDuplicateRequest = errors.New("duplicate request")
	ErrCorruptCart      = errors.New("stored cart is invalid")
)
