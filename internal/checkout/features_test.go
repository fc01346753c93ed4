package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/apperr"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/cart"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/catalog"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/checkout"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/identity"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/kv"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/order"
)

type checkoutTestContext struct {
	gateway *stubGateway
	cart    *cart.Cart
	orders  order.Service
	flow    *checkout.Flow
	err     error
}

func (c *checkoutTestContext) anEmptyStore() error {
	repo, err := order.NewRepository(context.Background(), kv.NewMemoryStore(), nil, nil)
	if err != nil {
		return err
	}
	c.gateway = &stubGateway{}
	c.cart = cart.New()
	c.orders = order.NewService(repo, nil)
	c.flow = checkout.NewFlow(c.cart, c.orders, identity.NewSession(), c.gateway, checkout.WithOrderIDs(sequence("VAS-4821")))
	c.err = nil
	return nil
}

func (c *checkoutTestContext) theCartHolds(qty int, productID, size string, price int) error {
	p := catalog.Product{ID: productID, Name: "Product " + productID, BasePrice: int64(price), Category: catalog.CategorySarees}
	for range qty {
		if err := c.cart.Add(p, catalog.Size(size)); err != nil {
			return err
		}
	}
	return nil
}

func (c *checkoutTestContext) thePaymentGatewayIsFailing() error {
	c.gateway.err = checkout.ErrPaymentDeclined
	return nil
}

func (c *checkoutTestContext) theShopperChecksOut(method string) error {
	c.flow.Open(context.Background())
	if err := c.flow.ProceedToShipping(); err != nil {
		return err
	}
	err := c.flow.SubmitShipping(checkout.ShippingDetails{
		FullName: "Asha Rao",
		Email:    "asha@example.com",
		Address:  "12 Lake View",
		City:     "Pune",
		Pincode:  "411001",
	})
	if err != nil {
		return err
	}
	if err := c.flow.SelectPaymentMethod(checkout.PaymentMethod(method)); err != nil {
		return err
	}
	_, c.err = c.flow.PlaceOrder(context.Background())
	return nil
}

func (c *checkoutTestContext) theAdminMarksOrder(id, status string) error {
	s, err := order.ParseStatus(status)
	if err != nil {
		return err
	}
	return c.orders.UpdateOrderStatus(context.Background(), id, s)
}

func (c *checkoutTestContext) theAdminTriesToMarkOrder(id, status string) error {
	c.err = c.orders.UpdateOrderStatus(context.Background(), id, order.Status(status))
	return nil
}

func (c *checkoutTestContext) theCheckoutIsConfirmed() error {
	if c.err != nil {
		return fmt.Errorf("expected checkout to succeed, got %v", c.err)
	}
	if step := c.flow.State().Step; step != checkout.StepConfirmed {
		return fmt.Errorf("expected step %s, got %s", checkout.StepConfirmed, step)
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutFailsWithATransientError() error {
	if c.err == nil {
		return errors.New("expected checkout to fail")
	}
	if kind := apperr.KindOf(c.err); kind != apperr.KindTransient {
		return fmt.Errorf("expected transient error, got %s: %v", kind, c.err)
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutStaysOnThePaymentStep() error {
	if step := c.flow.State().Step; step != checkout.StepPayment {
		return fmt.Errorf("expected step %s, got %s", checkout.StepPayment, step)
	}
	return nil
}

func (c *checkoutTestContext) theStatusChangeIsRejected() error {
	if !errors.Is(c.err, order.ErrInvalidStatusTransition) {
		return fmt.Errorf("expected invalid transition, got %v", c.err)
	}
	return nil
}

func (c *checkoutTestContext) order(id string) (*order.Order, error) {
	return c.orders.GetOrderByID(context.Background(), id)
}

func (c *checkoutTestContext) orderHasTotal(id string, total int) error {
	o, err := c.order(id)
	if err != nil {
		return err
	}
	if o.Total != int64(total) {
		return fmt.Errorf("expected total %d, got %d", total, o.Total)
	}
	return nil
}

func (c *checkoutTestContext) orderHasItem(id string, count int, productID, size string, qty, price int) error {
	o, err := c.order(id)
	if err != nil {
		return err
	}
	if len(o.Items) != count {
		return fmt.Errorf("expected %d items, got %d", count, len(o.Items))
	}
	it := o.Items[0]
	if it.ProductID != productID || string(it.Size) != size || it.Quantity != qty || it.UnitPrice != int64(price) {
		return fmt.Errorf("unexpected item %+v", it)
	}
	return nil
}

func (c *checkoutTestContext) orderHasStatus(id, status string) error {
	o, err := c.order(id)
	if err != nil {
		return err
	}
	if string(o.Status) != status {
		return fmt.Errorf("expected status %s, got %s", status, o.Status)
	}
	return nil
}

func (c *checkoutTestContext) orderHasCustomer(id, name, address string) error {
	o, err := c.order(id)
	if err != nil {
		return err
	}
	if o.CustomerName != name || o.ShippingAddress != address {
		return fmt.Errorf("unexpected customer %q at %q", o.CustomerName, o.ShippingAddress)
	}
	return nil
}

func (c *checkoutTestContext) theCartIsEmpty() error {
	if !c.cart.IsEmpty() {
		return fmt.Errorf("expected empty cart, got %d items", c.cart.ItemCount())
	}
	return nil
}

func (c *checkoutTestContext) theCartStillHolds(count, subtotal int) error {
	snap := c.cart.Snapshot()
	if snap.ItemCount != count || snap.Subtotal != int64(subtotal) {
		return fmt.Errorf("expected %d items totalling %d, got %d totalling %d", count, subtotal, snap.ItemCount, snap.Subtotal)
	}
	return nil
}

func (c *checkoutTestContext) noOrdersAreRecorded() error {
	orders, err := c.orders.ListOrders(context.Background())
	if err != nil {
		return err
	}
	if len(orders) != 0 {
		return fmt.Errorf("expected no orders, got %d", len(orders))
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	// Given steps
	ctx.Step(`^an empty store$`, tc.anEmptyStore)
	ctx.Step(`^the cart holds (\d+) of product "([^"]*)" in size "([^"]*)" at (\d+)$`, tc.theCartHolds)
	ctx.Step(`^the payment gateway is failing$`, tc.thePaymentGatewayIsFailing)

	// When steps
	ctx.Step(`^the shopper checks out with valid shipping details and "([^"]*)" payment$`, tc.theShopperChecksOut)
	ctx.Step(`^the admin marks order "([^"]*)" as "([^"]*)"$`, tc.theAdminMarksOrder)
	ctx.Step(`^the admin tries to mark order "([^"]*)" as "([^"]*)"$`, tc.theAdminTriesToMarkOrder)

	// Then steps
	ctx.Step(`^the checkout is confirmed$`, tc.theCheckoutIsConfirmed)
	ctx.Step(`^the checkout fails with a transient error$`, tc.theCheckoutFailsWithATransientError)
	ctx.Step(`^the checkout stays on the payment step$`, tc.theCheckoutStaysOnThePaymentStep)
	ctx.Step(`^the status change is rejected$`, tc.theStatusChangeIsRejected)
	ctx.Step(`^order "([^"]*)" has total (\d+)$`, tc.orderHasTotal)
	ctx.Step(`^order "([^"]*)" has (\d+) item with product "([^"]*)" size "([^"]*)" quantity (\d+) unit price (\d+)$`, tc.orderHasItem)
	ctx.Step(`^order "([^"]*)" has status "([^"]*)"$`, tc.orderHasStatus)
	ctx.Step(`^order "([^"]*)" has customer "([^"]*)" at "([^"]*)"$`, tc.orderHasCustomer)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the cart still holds (\d+) items with subtotal (\d+)$`, tc.theCartStillHolds)
	ctx.Step(`^no orders are recorded$`, tc.noOrdersAreRecorded)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
