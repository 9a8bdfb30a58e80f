package storefront

import "errors"

var (
	ErrCheckoutClosed     = errors.New("checkout is not open")
	ErrSubmissionInFlight = errors.New("order submission already in flight")
	ErrNoSubmission       = errors.New("no order submission in flight")
	ErrUnknownCommand     = errors.New("unknown command")
)
