package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"storefront/internal/domain"
	rabbit "storefront/internal/infra/rabbitmq"
	"storefront/internal/repository/memory"
	"storefront/internal/session"
	"storefront/internal/storefront"

	"github.com/cucumber/godog"
)

// flakySink fails every write while down is set.
type flakySink struct {
	*memory.OrderSink
	down bool
}

func (s *flakySink) Create(ctx context.Context, o *domain.Order) error {
	if s.down {
		return errors.New("order sink unavailable")
	}
	return s.OrderSink.Create(ctx, o)
}

type storefrontTestContext struct {
	service  *StorefrontService
	sessions *session.MemoryStore
	sink     *flakySink
	view     *View
	err      error
}

func (c *storefrontTestContext) reset() {
	c.sessions = session.NewMemoryStore(time.Minute)
	c.sink = &flakySink{OrderSink: memory.NewOrderSink()}
	c.service = NewStorefrontService(CreateMockCatalog(), c.sessions, c.sink, rabbit.NopPublisher{})
	c.view = nil
	c.err = nil
}

func (c *storefrontTestContext) state() (*storefront.State, error) {
	return c.sessions.Get(context.Background(), TestSessionID)
}

func (c *storefrontTestContext) theOrderSinkIsUnavailable() error {
	c.sink.down = true
	return nil
}

func (c *storefrontTestContext) failedSubmissionsPreserveTheCart() error {
	c.service.SetResetPolicy(storefront.PreserveOnFailure)
	return nil
}

func (c *storefrontTestContext) iAddProductToTheCart(id int) error {
	_, err := c.service.AddToCart(context.Background(), TestSessionID, int64(id))
	return err
}

func (c *storefrontTestContext) iRemoveTheItemAtPosition(index int) error {
	_, err := c.service.RemoveFromCart(context.Background(), TestSessionID, index)
	return err
}

func (c *storefrontTestContext) iFinalizeThePurchase() error {
	_, err := c.service.OpenCheckout(context.Background(), TestSessionID)
	return err
}

func (c *storefrontTestContext) iFillInTheForm(name, email, address string) error {
	_, err := c.service.SetForm(context.Background(), TestSessionID, domain.BuyerForm{Name: name, Email: email, Address: address})
	return err
}

func (c *storefrontTestContext) iConfirmTheOrder() error {
	_, c.err = c.service.SubmitOrder(context.Background(), TestSessionID)
	c.service.Wait()
	if c.err != nil && !errors.Is(c.err, ErrSubmissionFailed) {
		return c.err
	}
	return nil
}

func (c *storefrontTestContext) theCartHasItems(n int) error {
	st, err := c.state()
	if err != nil {
		return err
	}
	if st.Cart.Len() != n {
		return fmt.Errorf("expected %d items, got %d", n, st.Cart.Len())
	}
	return nil
}

func (c *storefrontTestContext) theCartTotalIs(total int) error {
	st, err := c.state()
	if err != nil {
		return err
	}
	if st.Cart.Total() != int64(total) {
		return fmt.Errorf("expected total %d, got %d", total, st.Cart.Total())
	}
	return nil
}

func (c *storefrontTestContext) theCartIsEmpty() error {
	return c.theCartHasItems(0)
}

func (c *storefrontTestContext) theFormIsEmpty() error {
	st, err := c.state()
	if err != nil {
		return err
	}
	if !st.Form.IsEmpty() {
		return fmt.Errorf("expected empty form, got %+v", st.Form)
	}
	return nil
}

func (c *storefrontTestContext) checkoutVisible(want bool) error {
	st, err := c.state()
	if err != nil {
		return err
	}
	if st.CheckoutVisible() != want {
		return fmt.Errorf("expected checkout visible=%v, phase is %s", want, st.Checkout)
	}
	return nil
}

func (c *storefrontTestContext) theCheckoutFormIsHidden() error {
	return c.checkoutVisible(false)
}

func (c *storefrontTestContext) theCheckoutFormIsVisible() error {
	return c.checkoutVisible(true)
}

func (c *storefrontTestContext) exactlyOrdersAreRecorded(n int) error {
	if got := len(c.sink.Orders()); got != n {
		return fmt.Errorf("expected %d orders, got %d", n, got)
	}
	return nil
}

func (c *storefrontTestContext) lastOrder() (domain.Order, error) {
	orders := c.sink.Orders()
	if len(orders) == 0 {
		return domain.Order{}, errors.New("no order recorded")
	}
	return orders[len(orders)-1], nil
}

func (c *storefrontTestContext) theRecordedOrderHasTotal(total int) error {
	o, err := c.lastOrder()
	if err != nil {
		return err
	}
	if o.Total != int64(total) {
		return fmt.Errorf("expected order total %d, got %d", total, o.Total)
	}
	return nil
}

func (c *storefrontTestContext) theRecordedOrderBelongsTo(name, email, address string) error {
	o, err := c.lastOrder()
	if err != nil {
		return err
	}
	if o.Name != name || o.Email != email || o.Address != address {
		return fmt.Errorf("unexpected buyer %q %q %q", o.Name, o.Email, o.Address)
	}
	if o.ID == "" || o.CreatedAt.IsZero() {
		return errors.New("order is missing its sink-assigned identity or timestamp")
	}
	return nil
}

func (c *storefrontTestContext) iSeeANotice(kind string) error {
	page, err := c.service.Page(context.Background(), TestSessionID)
	if err != nil {
		return err
	}
	if page.Notice == nil {
		return errors.New("expected a notice, got none")
	}
	if string(page.Notice.Kind) != kind {
		return fmt.Errorf("expected %s notice, got %s", kind, page.Notice.Kind)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &storefrontTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the order sink is unavailable$`, tc.theOrderSinkIsUnavailable)
	ctx.Step(`^failed submissions preserve the cart$`, tc.failedSubmissionsPreserveTheCart)

	// When steps
	ctx.Step(`^I add product (\d+) to the cart$`, tc.iAddProductToTheCart)
	ctx.Step(`^I remove the item at position (-?\d+)$`, tc.iRemoveTheItemAtPosition)
	ctx.Step(`^I finalize the purchase$`, tc.iFinalizeThePurchase)
	ctx.Step(`^I fill in name "([^"]*)", email "([^"]*)" and address "([^"]*)"$`, tc.iFillInTheForm)
	ctx.Step(`^I confirm the order$`, tc.iConfirmTheOrder)

	// Then steps
	ctx.Step(`^the cart has (\d+) items$`, tc.theCartHasItems)
	ctx.Step(`^the cart total is (\d+)$`, tc.theCartTotalIs)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the form is empty$`, tc.theFormIsEmpty)
	ctx.Step(`^the checkout form is hidden$`, tc.theCheckoutFormIsHidden)
	ctx.Step(`^the checkout form is visible$`, tc.theCheckoutFormIsVisible)
	ctx.Step(`^exactly (\d+) order is recorded$`, tc.exactlyOrdersAreRecorded)
	ctx.Step(`^the recorded order has total (\d+)$`, tc.theRecordedOrderHasTotal)
	ctx.Step(`^the recorded order belongs to "([^"]*)", "([^"]*)", "([^"]*)"$`, tc.theRecordedOrderBelongsTo)
	ctx.Step(`^I see a "([^"]*)" notice$`, tc.iSeeANotice)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
