package orders

import "errors"

var (
	// ErrValidation reports input rejected before any write.
	ErrValidation = errors.New("order validation failed")
	// ErrTransientWrite reports a store write that failed and may be retried by the shopper.
	ErrTransientWrite = errors.New("order could not be saved")
	// ErrStaleState reports a transition attempted against an order that already left the expected state.
	ErrStaleState = errors.New("order is no longer in the expected state")
	// ErrInvalidDocument reports a stored document that does not decode into a valid order.
	ErrInvalidDocument = errors.New("stored order is invalid")
	ErrNotFound        = errors.New("order not found")
)
