package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	rabbit "storefront/internal/infra/rabbitmq"
	"storefront/internal/metrics"
	"storefront/internal/repository"
	"storefront/internal/session"
	"storefront/internal/storefront"

	"go.uber.org/zap"
)

var (
	ErrSubmissionFailed = errors.New("order submission failed")
	ErrInvalidForm      = errors.New("invalid checkout form")
)

const msgInvalidForm = "Revisá tus datos: nombre, correo y dirección son obligatorios."

// DefaultSubmissionTimeout bounds the sink call. A session still in flight after
// this long is treated as abandoned.
const DefaultSubmissionTimeout = 2 * time.Minute

const resolveAttempts = 5

// View is what the storefront page shows for one session.
type View struct {
	Products        []domain.Product   `json:"products,omitempty"`
	Items           []domain.CartItem  `json:"items"`
	Total           int64              `json:"total"`
	CheckoutVisible bool               `json:"checkoutVisible"`
	Submitting      bool               `json:"submitting"`
	Form            domain.BuyerForm   `json:"form"`
	Notice          *storefront.Notice `json:"notice,omitempty"`
}

func (v View) CartEmpty() bool {
	return len(v.Items) == 0
}

func newView(st *storefront.State) *View {
	return &View{
		Items:           st.Cart.Snapshot(),
		Total:           st.Cart.Total(),
		CheckoutVisible: st.CheckoutVisible(),
		Submitting:      st.Submitting(),
		Form:            st.Form,
		Notice:          st.Notice,
	}
}

type StorefrontService struct {
	catalog   *catalog.Catalog
	sessions  session.Store
	sink      repository.OrderSink
	publisher rabbit.PublisherInterface
	validator Validator
	policy    storefront.ResetPolicy
	metrics   *metrics.Registry
	logger    *zap.Logger
	inflight  sync.WaitGroup

	submitTimeout  time.Duration
	resolveBackoff time.Duration
	now            func() time.Time
}

func NewStorefrontService(c *catalog.Catalog, s session.Store, sink repository.OrderSink, pub rabbit.PublisherInterface) *StorefrontService {
	return &StorefrontService{
		catalog:   c,
		sessions:  s,
		sink:      sink,
		publisher: pub,
		validator: NopValidator{},
		policy:    storefront.ResetAlways,
		metrics:   metrics.NewRegistry(),
		logger:    zap.NewNop(),

		submitTimeout:  DefaultSubmissionTimeout,
		resolveBackoff: 25 * time.Millisecond,
		now:            time.Now,
	}
}

func (u *StorefrontService) SetResetPolicy(p storefront.ResetPolicy) {
	u.policy = p
}

func (u *StorefrontService) SetValidator(v Validator) {
	u.validator = v
}

func (u *StorefrontService) SetMetrics(m *metrics.Registry) {
	u.metrics = m
}

func (u *StorefrontService) SetLogger(l *zap.Logger) {
	u.logger = l
}

// SetSubmissionTimeout sets how long the sink call may take. Zero leaves it to
// the request context and never abandons a submission.
func (u *StorefrontService) SetSubmissionTimeout(d time.Duration) {
	u.submitTimeout = d
}

func (u *StorefrontService) Products() []domain.Product {
	return u.catalog.Products()
}

// Cart returns the session's current view.
func (u *StorefrontService) Cart(ctx context.Context, sid string) (*View, error) {
	return u.current(ctx, sid)
}

// Page is Cart plus the product list.
func (u *StorefrontService) Page(ctx context.Context, sid string) (*View, error) {
	v, err := u.current(ctx, sid)
	if err != nil {
		return nil, err
	}
	v.Products = u.catalog.Products()
	return v, nil
}

// current reads the session and consumes its pending notice, so each notice is
// shown once. The session is only written when there is a notice to clear.
func (u *StorefrontService) current(ctx context.Context, sid string) (*View, error) {
	st, err := u.sessions.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	if st.Notice == nil {
		return newView(st), nil
	}

	var notice *storefront.Notice
	st, err = u.sessions.Update(ctx, sid, func(st *storefront.State) error {
		notice = st.TakeNotice()
		return nil
	})
	if err != nil {
		return nil, err
	}
	v := newView(st)
	v.Notice = notice
	return v, nil
}

func (u *StorefrontService) dispatch(ctx context.Context, sid string, cmds ...storefront.Command) (*View, error) {
	st, err := u.sessions.Update(ctx, sid, func(st *storefront.State) error {
		for _, c := range cmds {
			if _, err := st.Dispatch(c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newView(st), nil
}

func (u *StorefrontService) AddToCart(ctx context.Context, sid string, productID int64) (*View, error) {
	p, err := u.catalog.Find(productID)
	if err != nil {
		return nil, err
	}
	v, err := u.dispatch(ctx, sid, storefront.AddToCart{Product: p})
	if err != nil {
		return nil, err
	}
	u.metrics.CartAdds.Inc()
	return v, nil
}

// RemoveFromCart drops the item at index. An index outside the cart leaves it unchanged.
func (u *StorefrontService) RemoveFromCart(ctx context.Context, sid string, index int) (*View, error) {
	return u.dispatch(ctx, sid, storefront.RemoveFromCart{Index: index})
}

func (u *StorefrontService) SetField(ctx context.Context, sid string, field domain.Field, value string) (*View, error) {
	return u.dispatch(ctx, sid, storefront.SetField{Field: field, Value: value})
}

// SetForm writes all three buyer fields in one update.
func (u *StorefrontService) SetForm(ctx context.Context, sid string, form domain.BuyerForm) (*View, error) {
	return u.dispatch(ctx, sid,
		storefront.SetField{Field: domain.FieldName, Value: form.Name},
		storefront.SetField{Field: domain.FieldEmail, Value: form.Email},
		storefront.SetField{Field: domain.FieldAddress, Value: form.Address},
	)
}

// OpenCheckout shows the checkout form. It has no effect on an empty cart.
func (u *StorefrontService) OpenCheckout(ctx context.Context, sid string) (*View, error) {
	return u.dispatch(ctx, sid, storefront.OpenCheckout{At: u.now(), StaleAfter: u.submitTimeout})
}

// SubmitOrder writes the session's cart and form to the order sink. The session
// is marked in flight while the sink call runs, so a second confirm is refused
// with storefront.ErrSubmissionInFlight until the submission timeout has passed.
// Sink failures are reported as ErrSubmissionFailed after the reset policy has
// been applied.
func (u *StorefrontService) SubmitOrder(ctx context.Context, sid string) (*domain.Order, error) {
	var (
		sub     *storefront.Submission
		invalid error
	)
	now := u.now()
	_, err := u.sessions.Update(ctx, sid, func(st *storefront.State) error {
		sub, invalid = nil, nil
		if st.Checkout == storefront.CheckoutVisible || st.SubmissionStale(now, u.submitTimeout) {
			if err := u.validator.Validate(st.Form); err != nil {
				invalid = err
				st.Notice = &storefront.Notice{Kind: storefront.NoticeInvalid, Message: msgInvalidForm}
				return nil
			}
		}
		res, err := st.Dispatch(storefront.SubmitOrder{At: now, StaleAfter: u.submitTimeout})
		if err != nil {
			return err
		}
		sub = res.Submission
		return nil
	})
	if err != nil {
		u.reject(err)
		return nil, err
	}
	if invalid != nil {
		u.metrics.SubmissionsRejected.WithLabelValues("invalid_form").Inc()
		return nil, fmt.Errorf("%w: %w", ErrInvalidForm, invalid)
	}

	order := sub.Order()
	start := time.Now()
	sinkErr := u.create(ctx, order)
	u.metrics.SubmitLatencySeconds.Observe(time.Since(start).Seconds())

	if sinkErr != nil {
		u.metrics.OrdersFailed.Inc()
		u.logger.Error("order sink rejected order",
			zap.String("session_id", sid),
			zap.Int("items", len(order.Cart)),
			zap.Int64("total", order.Total),
			zap.Error(sinkErr),
		)
	} else {
		u.metrics.OrdersSubmitted.Inc()
		u.logger.Info("order saved",
			zap.String("session_id", sid),
			zap.String("order_id", order.ID),
			zap.Int64("total", order.Total),
		)
	}

	// The outcome is applied even if the caller went away, otherwise the session
	// would stay in flight until the submission is abandoned.
	if err := u.resolve(context.WithoutCancel(ctx), sid, sub.StartedAt, sinkErr); err != nil {
		u.logger.Error("failed to resolve submission", zap.String("session_id", sid), zap.Error(err))
	}

	if sinkErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, sinkErr)
	}

	u.inflight.Add(1)
	go u.publishOrderCreatedEvent(context.WithoutCancel(ctx), order)

	return order, nil
}

func (u *StorefrontService) create(ctx context.Context, order *domain.Order) error {
	if u.submitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.submitTimeout)
		defer cancel()
	}
	return u.sink.Create(ctx, order)
}

// resolve applies the sink outcome to the session, retrying store errors a few
// times. It gives up when the submission is no longer the one in flight.
func (u *StorefrontService) resolve(ctx context.Context, sid string, startedAt time.Time, sinkErr error) error {
	cmd := storefront.ResolveSubmission{StartedAt: startedAt, Err: sinkErr, Policy: u.policy}

	var err error
	for attempt := 1; attempt <= resolveAttempts; attempt++ {
		_, err = u.sessions.Update(ctx, sid, func(st *storefront.State) error {
			_, err := st.Dispatch(cmd)
			return err
		})
		if err == nil || errors.Is(err, storefront.ErrNoSubmission) {
			return err
		}
		if attempt < resolveAttempts {
			u.logger.Warn("retrying submission outcome",
				zap.String("session_id", sid),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			time.Sleep(time.Duration(attempt) * u.resolveBackoff)
		}
	}
	return err
}

func (u *StorefrontService) reject(err error) {
	switch {
	case errors.Is(err, storefront.ErrSubmissionInFlight):
		u.metrics.SubmissionsRejected.WithLabelValues("in_flight").Inc()
	case errors.Is(err, storefront.ErrCheckoutClosed):
		u.metrics.SubmissionsRejected.WithLabelValues("checkout_closed").Inc()
	}
}

func (u *StorefrontService) publishOrderCreatedEvent(ctx context.Context, order *domain.Order) {
	defer u.inflight.Done()

	evt := domain.NewOrderCreatedEvent(order)
	if err := u.publisher.Publish(ctx, rabbit.RoutingOrderCreated, evt); err != nil {
		u.logger.Warn("failed to publish order.created", zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	u.logger.Debug("published order.created", zap.String("order_id", order.ID))
}

// Wait blocks until background event publication has finished.
func (u *StorefrontService) Wait() {
	u.inflight.Wait()
}
