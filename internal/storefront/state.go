package storefront

import (
	"fmt"
	"time"

	"storefront/internal/domain"
)

type Phase string

const (
	CheckoutHidden     Phase = "hidden"
	CheckoutVisible    Phase = "visible"
	CheckoutSubmitting Phase = "submitting"
)

// ResetPolicy decides what happens to the cart and form after a failed submission.
type ResetPolicy string

const (
	ResetAlways       ResetPolicy = "always"
	PreserveOnFailure ResetPolicy = "preserve-on-failure"
)

func ParseResetPolicy(s string) (ResetPolicy, error) {
	switch p := ResetPolicy(s); p {
	case ResetAlways, PreserveOnFailure:
		return p, nil
	case "":
		return ResetAlways, nil
	}
	return "", fmt.Errorf("invalid reset policy %q", s)
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeFailure NoticeKind = "failure"
	NoticeInvalid NoticeKind = "invalid"
)

const (
	MsgOrderSaved  = "Pedido confirmado y guardado. ¡Gracias por tu compra!"
	MsgOrderFailed = "Hubo un error al guardar el pedido. Intenta nuevamente."
)

type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// State is everything one shopper owns: cart, checkout form and checkout phase.
// Mutations go through Dispatch.
type State struct {
	Cart     Cart             `json:"cart"`
	Form     domain.BuyerForm `json:"form"`
	Checkout Phase            `json:"checkout"`
	Notice   *Notice          `json:"notice,omitempty"`

	// SubmittedAt is when the in-flight submission started. It also identifies
	// that submission when its outcome is applied.
	SubmittedAt time.Time `json:"submittedAt"`
}

func NewState() *State {
	return &State{Checkout: CheckoutHidden}
}

func (s *State) CheckoutVisible() bool {
	return s.Checkout == CheckoutVisible || s.Checkout == CheckoutSubmitting
}

func (s *State) Submitting() bool {
	return s.Checkout == CheckoutSubmitting
}

// Reset returns cart, form and checkout phase to their initial values.
// A pending notice survives so the shopper still sees the outcome.
func (s *State) Reset() {
	s.Cart.Clear()
	s.Form.Reset()
	s.Checkout = CheckoutHidden
	s.SubmittedAt = time.Time{}
}

// SubmissionStale reports whether the in-flight submission started more than
// after before now. A zero after never expires a submission.
func (s *State) SubmissionStale(now time.Time, after time.Duration) bool {
	return s.Checkout == CheckoutSubmitting && after > 0 && now.Sub(s.SubmittedAt) > after
}

// TakeNotice returns the pending notice, if any, and clears it.
func (s *State) TakeNotice() *Notice {
	n := s.Notice
	s.Notice = nil
	return n
}

func (s *State) Clone() *State {
	c := *s
	c.Cart.Items = s.Cart.Snapshot()
	if s.Notice != nil {
		n := *s.Notice
		c.Notice = &n
	}
	return &c
}

// Submission is the snapshot taken when a submission starts.
type Submission struct {
	Form      domain.BuyerForm
	Cart      []domain.CartItem
	StartedAt time.Time
}

func (sub Submission) Order() *domain.Order {
	return domain.NewOrder(sub.Form, sub.Cart)
}
