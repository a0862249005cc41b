package order

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStatus           = errors.New("invalid order status")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrConcurrentUpdate        = errors.New("order was modified concurrently")
	ErrRejectionReasonRequired = errors.New("a rejection reason is required")
	ErrPaymentProofRequired    = errors.New("a payment proof is required")
	ErrPaymentNotExpected      = errors.New("order is not awaiting payment")
	ErrUnknownBulkAction       = errors.New("unknown bulk action")
)

// TransitionError reports a status change refused by the workflow.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
