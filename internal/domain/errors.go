package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuantity is returned when a cart quantity is not a positive integer.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrEmptyCart is returned when a checkout is requested for a cart without items.
	ErrEmptyCart = errors.New("cart is empty")
)
