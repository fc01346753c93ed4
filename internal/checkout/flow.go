// Package checkout drives the cart through shipping and payment into a placed order.
//
// The flow is Cart -> Shipping -> Payment -> Confirmed. Nothing outside the flow
// changes until PlaceOrder succeeds, at which point the order is recorded and the
// cart is cleared in that order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/apperr"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/cart"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/identity"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/order"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/validation"
)

type Step string

const (
	StepCart      Step = "cart"
	StepShipping  Step = "shipping"
	StepPayment   Step = "payment"
	StepConfirmed Step = "confirmed"
)

const (
	guestName  = "Guest"
	guestEmail = "guest@example.com"

	defaultIDAttempts = 20
)

var (
	ErrEmptyCart        = apperr.New(apperr.KindValidation, "cart is empty")
	ErrInvalidShipping  = apperr.New(apperr.KindValidation, "invalid shipping details")
	ErrInvalidPayment   = apperr.New(apperr.KindValidation, "invalid payment details")
	ErrInvalidStep      = apperr.New(apperr.KindConflict, "action is not available at this checkout step")
	ErrCommitInProgress = apperr.New(apperr.KindConflict, "order placement is already in progress")
	ErrCommitAborted    = apperr.New(apperr.KindTransient, "order placement was cancelled")
	ErrOrderIDExhausted = apperr.New(apperr.KindTransient, "could not allocate a unique order id")
)

// Cart is the part of the cart store checkout reads, holds and clears.
type Cart interface {
	Snapshot() cart.Snapshot
	Hold() error
	Release()
	ClearHeld()
	SetVisible(v bool)
}

type Orders interface {
	PlaceOrder(ctx context.Context, o *order.Order) (*order.Order, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type State struct {
	Step          Step            `json:"step"`
	Shipping      ShippingDetails `json:"shipping"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Card          CardDetails     `json:"card"`
	OrderID       string          `json:"orderId,omitempty"`
	Pending       bool            `json:"pending"`
}

type Option func(*Flow)

func WithOrderIDs(next func() string) Option {
	return func(f *Flow) { f.newID = next }
}

func WithClock(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

type Flow struct {
	cart    Cart
	orders  Orders
	users   identity.Provider
	gateway Gateway
	newID   func() string
	now     func() time.Time

	mu       sync.Mutex
	step     Step
	shipping ShippingDetails
	method   PaymentMethod
	card     CardDetails
	orderID  string

	// cancelPending is set while a commit is waiting on the gateway.
	cancelPending context.CancelFunc
	attempt       uint64
}

func NewFlow(c Cart, orders Orders, users identity.Provider, gateway Gateway, opts ...Option) *Flow {
	f := &Flow{
		cart:    c,
		orders:  orders,
		users:   users,
		gateway: gateway,
		newID:   RandomOrderID,
		now:     time.Now,
		step:    StepCart,
		method:  MethodCard,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	return State{
		Step:          f.step,
		Shipping:      f.shipping,
		PaymentMethod: f.method,
		Card:          f.card,
		OrderID:       f.orderID,
		Pending:       f.cancelPending != nil,
	}
}

// Open shows the cart. A confirmed flow starts over, and blank shipping
// name and email are taken from the signed-in user.
func (f *Flow) Open(ctx context.Context) State {
	f.mu.Lock()
	if f.step == StepConfirmed {
		f.resetLocked()
	}
	if f.users != nil {
		if u, ok := f.users.CurrentUser(ctx); ok {
			if f.shipping.FullName == "" {
				f.shipping.FullName = u.Name
			}
			if f.shipping.Email == "" {
				f.shipping.Email = u.Email
			}
		}
	}
	f.mu.Unlock()

	f.cart.SetVisible(true)
	return f.State()
}

// Close hides the cart. It never touches cart or order contents; a commit
// still waiting on the gateway is abandoned.
func (f *Flow) Close() State {
	f.mu.Lock()
	if f.cancelPending != nil {
		log.Info().Str("step", string(f.step)).Msg("checkout: closed while order placement was pending")
		f.cancelPending()
		f.cancelPending = nil
		f.attempt++
		f.cart.Release()
	}
	if f.step == StepConfirmed {
		f.resetLocked()
	}
	f.mu.Unlock()

	f.cart.SetVisible(false)
	return f.State()
}

func (f *Flow) ProceedToShipping() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireStepLocked(StepCart); err != nil {
		return err
	}
	if len(f.cart.Snapshot().Lines) == 0 {
		return ErrEmptyCart
	}

	f.step = StepShipping
	return nil
}

func (f *Flow) SubmitShipping(details ShippingDetails) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireStepLocked(StepShipping); err != nil {
		return err
	}

	details = details.trimmed()
	if err := validation.Check(ErrInvalidShipping, details); err != nil {
		log.Warn().Err(err).Msg("checkout: shipping details rejected")
		return err
	}

	f.shipping = details
	f.step = StepPayment
	return nil
}

// Back returns to the previous step. It is a no-op on the cart step.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancelPending != nil {
		return ErrCommitInProgress
	}

	switch f.step {
	case StepCart:
	case StepShipping:
		f.step = StepCart
	case StepPayment:
		f.step = StepShipping
	default:
		return apperr.WithDetails(ErrInvalidStep, fmt.Sprintf("cannot go back from %s", f.step))
	}
	return nil
}

func (f *Flow) SelectPaymentMethod(method PaymentMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireStepLocked(StepPayment); err != nil {
		return err
	}
	if !method.Valid() {
		return apperr.WithDetails(ErrInvalidPayment, fmt.Sprintf("unknown payment method %q", method))
	}

	f.method = method
	return nil
}

// SetCardDetails stores the card fields after input formatting and returns them.
func (f *Flow) SetCardDetails(card CardDetails) (CardDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireStepLocked(StepPayment); err != nil {
		return CardDetails{}, err
	}

	f.card = card.formatted()
	return f.card, nil
}

// PlaceOrder commits the cart. The cart is held from the snapshot until the
// outcome is known, so the recorded order always matches what gets cleared.
// On any failure the flow stays on the payment step and neither the cart nor
// the order store has changed.
func (f *Flow) PlaceOrder(ctx context.Context) (*order.Order, error) {
	f.mu.Lock()
	if err := f.requireStepLocked(StepPayment); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if f.method == MethodCard {
		if err := validation.Check(ErrInvalidPayment, f.card); err != nil {
			f.mu.Unlock()
			return nil, err
		}
	}

	if err := f.cart.Hold(); err != nil {
		f.mu.Unlock()
		return nil, err
	}

	pending, err := f.snapshotLocked(ctx)
	if err != nil {
		f.cart.Release()
		f.mu.Unlock()
		return nil, err
	}

	commitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	f.cancelPending = cancel
	f.attempt++
	attempt := f.attempt
	method := f.method
	f.mu.Unlock()

	log.Info().Str("order_id", pending.ID).Int64("total", pending.Total).Str("method", string(method)).Msg("checkout: placing order")

	payErr := f.gateway.Authorize(commitCtx, Payment{OrderID: pending.ID, Amount: pending.Total, Method: method})

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.attempt != attempt {
		log.Warn().Str("order_id", pending.ID).Msg("checkout: order placement abandoned")
		return nil, ErrCommitAborted
	}
	f.cancelPending = nil

	if payErr != nil {
		f.cart.Release()
		if errors.Is(payErr, context.Canceled) || errors.Is(payErr, context.DeadlineExceeded) {
			log.Warn().Err(payErr).Str("order_id", pending.ID).Msg("checkout: order placement cancelled")
			return nil, fmt.Errorf("%w: %w", ErrCommitAborted, payErr)
		}
		log.Warn().Err(payErr).Str("order_id", pending.ID).Msg("checkout: payment failed")
		return nil, fmt.Errorf("checkout: failed to authorize payment: %w", payErr)
	}

	placed, err := f.orders.PlaceOrder(commitCtx, pending)
	if err != nil {
		f.cart.Release()
		log.Error().Err(err).Str("order_id", pending.ID).Msg("checkout: failed to record order")
		return nil, apperr.Wrap(apperr.KindTransient, "order could not be recorded", err)
	}

	f.cart.ClearHeld()
	f.step = StepConfirmed
	f.orderID = placed.ID

	log.Info().Str("order_id", placed.ID).Msg("checkout: order confirmed")
	return placed, nil
}

func (f *Flow) snapshotLocked(ctx context.Context) (*order.Order, error) {
	snap := f.cart.Snapshot()
	if len(snap.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	id, err := f.allocateID(ctx)
	if err != nil {
		return nil, err
	}

	name, email := f.shipping.FullName, f.shipping.Email
	if name == "" || email == "" {
		var u identity.User
		if f.users != nil {
			u, _ = f.users.CurrentUser(ctx)
		}
		name = firstNonEmpty(name, u.Name, guestName)
		email = firstNonEmpty(email, u.Email, guestEmail)
	}

	items := make([]order.Item, len(snap.Lines))
	for i, l := range snap.Lines {
		items[i] = order.Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			Image:     l.Image,
			Category:  l.Category,
			Size:      l.Size,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}

	return &order.Order{
		ID:              id,
		CustomerName:    name,
		CustomerEmail:   email,
		ShippingAddress: f.shipping.FormatAddress(),
		PlacedAt:        f.now(),
		Total:           snap.Subtotal,
		Items:           items,
		Status:          order.StatusProcessing,
	}, nil
}

func (f *Flow) allocateID(ctx context.Context) (string, error) {
	for range defaultIDAttempts {
		id := f.newID()
		taken, err := f.orders.Exists(ctx, id)
		if err != nil {
			return "", apperr.Wrap(apperr.KindTransient, "order id check failed", err)
		}
		if !taken {
			return id, nil
		}
		log.Debug().Str("order_id", id).Msg("checkout: order id collision, retrying")
	}
	return "", ErrOrderIDExhausted
}

func (f *Flow) requireStepLocked(want Step) error {
	if f.cancelPending != nil {
		return ErrCommitInProgress
	}
	if f.step != want {
		return apperr.WithDetails(ErrInvalidStep, fmt.Sprintf("expected step %s, current step is %s", want, f.step))
	}
	return nil
}

func (f *Flow) resetLocked() {
	f.step = StepCart
	f.orderID = ""
	f.card = CardDetails{}
	f.method = MethodCard
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
