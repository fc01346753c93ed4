package checkout

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/apperr"
)

var ErrPaymentDeclined = apperr.New(apperr.KindTransient, "payment could not be completed")

type Payment struct {
	OrderID string
	Amount  int64
	Method  PaymentMethod
}

// Gateway authorizes a payment before the order is recorded.
type Gateway interface {
	Authorize(ctx context.Context, p Payment) error
}

// SimulatedGateway waits delay and then fails with probability failureRate.
type SimulatedGateway struct {
	delay       time.Duration
	failureRate float64
	roll        func() float64
}

func NewSimulatedGateway(delay time.Duration, failureRate float64) *SimulatedGateway {
	return &SimulatedGateway{delay: delay, failureRate: failureRate, roll: rand.Float64}
}

func (g *SimulatedGateway) Authorize(ctx context.Context, p Payment) error {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	if g.failureRate > 0 && g.roll() < g.failureRate {
		log.Warn().Str("order_id", p.OrderID).Str("method", string(p.Method)).Msg("gateway: simulated payment failure")
		return ErrPaymentDeclined
	}

	return nil
}
