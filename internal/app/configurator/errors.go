package configurator

import "errors"

var (
	// ErrInvalidQuantity is returned for raw quantity input that is not a positive integer.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrEmptyProduct is returned when a line item is built before a product is loaded.
	ErrEmptyProduct = errors.New("no product loaded")
)
