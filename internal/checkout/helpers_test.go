package checkout_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/cart"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/catalog"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/checkout"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/identity"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/kv"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/order"
)

type stubGateway struct {
	err   error
	calls int
}

func (g *stubGateway) Authorize(context.Context, checkout.Payment) error {
	g.calls++
	return g.err
}

// blockingGateway holds each authorization until the test releases it.
type blockingGateway struct {
	started chan checkout.Payment
	release chan error
}

func newBlockingGateway() *blockingGateway {
	return &blockingGateway{started: make(chan checkout.Payment, 1), release: make(chan error, 1)}
}

func (g *blockingGateway) Authorize(ctx context.Context, p checkout.Payment) error {
	g.started <- p
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-g.release:
		return err
	}
}

func sequence(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

type harness struct {
	flow    *checkout.Flow
	cart    *cart.Cart
	orders  order.Service
	session *identity.Session
}

func newHarness(t *testing.T, gateway checkout.Gateway, opts ...checkout.Option) *harness {
	t.Helper()

	repo, err := order.NewRepository(context.Background(), kv.NewMemoryStore(), nil, order.DemoOrders())
	require.NoError(t, err)

	h := &harness{
		cart:    cart.New(),
		orders:  order.NewService(repo, nil),
		session: identity.NewSession(),
	}
	h.flow = checkout.NewFlow(h.cart, h.orders, h.session, gateway, opts...)
	return h
}

func saree() catalog.Product {
	return catalog.Product{ID: "1", Name: "Royal Banarasi Silk Saree", BasePrice: 12500, Category: catalog.CategorySarees}
}

func validShipping() checkout.ShippingDetails {
	return checkout.ShippingDetails{
		FullName: "Asha Rao",
		Email:    "asha@example.com",
		Address:  "12 Lake View",
		City:     "Pune",
		Pincode:  "411001",
	}
}

// toPayment fills the cart with two sarees and walks the flow to the payment step.
func (h *harness) toPayment(t *testing.T) {
	t.Helper()
	require.NoError(t, h.cart.Add(saree(), catalog.SizeM))
	require.NoError(t, h.cart.Add(saree(), catalog.SizeM))
	h.flow.Open(context.Background())
	require.NoError(t, h.flow.ProceedToShipping())
	require.NoError(t, h.flow.SubmitShipping(validShipping()))
	require.Equal(t, checkout.StepPayment, h.flow.State().Step)
}
