package storefront

import (
	"fmt"
	"time"

	"storefront/internal/domain"
)

// Command is a named user intent applied to a State.
type Command interface {
	Name() string
}

type AddToCart struct {
	Product domain.Product
}

type RemoveFromCart struct {
	Index int
}

type SetField struct {
	Field domain.Field
	Value string
}

// OpenCheckout shows the checkout form. A submission in flight for longer than
// StaleAfter at time At is abandoned and the form shown again.
type OpenCheckout struct {
	At         time.Time
	StaleAfter time.Duration
}

// SubmitOrder marks a submission as in flight. The snapshot of the cart and form is
// available from State.Dispatch through Result.Submission. A submission already in
// flight for longer than StaleAfter is taken over instead of refused.
type SubmitOrder struct {
	At         time.Time
	StaleAfter time.Duration
}

// ResolveSubmission applies the outcome of the sink write for the submission
// started at StartedAt.
type ResolveSubmission struct {
	StartedAt time.Time
	Err       error
	Policy    ResetPolicy
}

func (AddToCart) Name() string         { return "AddToCart" }
func (RemoveFromCart) Name() string    { return "RemoveFromCart" }
func (SetField) Name() string          { return "SetField" }
func (OpenCheckout) Name() string      { return "OpenCheckout" }
func (SubmitOrder) Name() string       { return "SubmitOrder" }
func (ResolveSubmission) Name() string { return "ResolveSubmission" }

type Result struct {
	// Changed is false when the command was accepted but had no effect.
	Changed    bool
	Submission *Submission
}

func (s *State) Dispatch(cmd Command) (Result, error) {
	switch c := cmd.(type) {
	case AddToCart:
		s.Cart.Add(c.Product)
		return Result{Changed: true}, nil

	case RemoveFromCart:
		return Result{Changed: s.Cart.Remove(c.Index)}, nil

	case SetField:
		s.Form.SetField(c.Field, c.Value)
		return Result{Changed: true}, nil

	case OpenCheckout:
		if s.SubmissionStale(c.At, c.StaleAfter) {
			s.Checkout = CheckoutVisible
			s.SubmittedAt = time.Time{}
			return Result{Changed: true}, nil
		}
		if s.Cart.IsEmpty() || s.Checkout != CheckoutHidden {
			return Result{}, nil
		}
		s.Checkout = CheckoutVisible
		return Result{Changed: true}, nil

	case SubmitOrder:
		switch s.Checkout {
		case CheckoutHidden:
			return Result{}, ErrCheckoutClosed
		case CheckoutSubmitting:
			if !s.SubmissionStale(c.At, c.StaleAfter) {
				return Result{}, ErrSubmissionInFlight
			}
		}
		s.Checkout = CheckoutSubmitting
		s.SubmittedAt = c.At
		sub := &Submission{Form: s.Form, Cart: s.Cart.Snapshot(), StartedAt: c.At}
		return Result{Changed: true, Submission: sub}, nil

	case ResolveSubmission:
		if s.Checkout != CheckoutSubmitting || !s.SubmittedAt.Equal(c.StartedAt) {
			return Result{}, ErrNoSubmission
		}
		s.resolve(c)
		return Result{Changed: true}, nil
	}
	return Result{}, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
}

func (s *State) resolve(c ResolveSubmission) {
	if c.Err == nil {
		s.Notice = &Notice{Kind: NoticeSuccess, Message: MsgOrderSaved}
		s.Reset()
		return
	}

	s.Notice = &Notice{Kind: NoticeFailure, Message: MsgOrderFailed}
	if c.Policy == PreserveOnFailure {
		s.Checkout = CheckoutVisible
		s.SubmittedAt = time.Time{}
		return
	}
	s.Reset()
}
