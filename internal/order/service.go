package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/apperr"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/events"
)

// Delivered and Cancelled are terminal.
var allowedTransitions = map[Status]map[Status]bool{
	StatusProcessing: {
		StatusShipped:   true,
		StatusDelivered: true,
		StatusCancelled: true,
	},
	StatusShipped: {
		StatusDelivered: true,
		StatusCancelled: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

var (
	ErrInvalidOrder            = apperr.New(apperr.KindValidation, "invalid order")
	ErrInvalidStatus           = apperr.New(apperr.KindValidation, "invalid order status")
	ErrInvalidStatusTransition = apperr.New(apperr.KindConflict, "invalid order status transition")
)

type Service interface {
	PlaceOrder(ctx context.Context, order *Order) (*Order, error)
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id string, newStatus Status) error
	Stats(ctx context.Context) (Stats, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type service struct {
	orderRepo Repository
	publisher events.Publisher
	now       func() time.Time
}

// NewService builds the order store; publisher may be nil.
func NewService(orderRepo Repository, publisher events.Publisher) Service {
	return &service{
		orderRepo: orderRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

// PlaceOrder defaults and records a copy of orderInput, which is not modified.
func (s *service) PlaceOrder(ctx context.Context, orderInput *Order) (*Order, error) {
	placed := orderInput.Clone()
	placed.ID = strings.TrimSpace(placed.ID)
	if placed.Status == "" {
		placed.Status = StatusProcessing
	}
	if placed.PlacedAt.IsZero() {
		placed.PlacedAt = s.now()
	}

	if err := validateOrder(&placed); err != nil {
		log.Warn().Err(err).Str("order_id", placed.ID).Msg("service: attempt to place invalid order")
		return nil, err
	}

	if err := s.orderRepo.CreateOrder(ctx, &placed); err != nil {
		if errors.Is(err, ErrDuplicateOrderID) {
			log.Warn().Str("order_id", placed.ID).Msg("service: order id already taken")
			return nil, ErrDuplicateOrderID
		}

		log.Error().Err(err).Str("order_id", placed.ID).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Str("order_id", placed.ID).Int64("total", placed.Total).Msg("service: order placed")

	s.publish(ctx, events.TypeOrderPlaced, placed.ID, placedPayload{
		OrderID:       placed.ID,
		CustomerEmail: placed.CustomerEmail,
		Total:         placed.Total,
		ItemCount:     itemCount(placed.Items),
	})

	return &placed, nil
}

func (s *service) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Str("order_id", id).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}

		log.Error().Err(err).Str("order_id", id).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	return order, nil
}

func (s *service) ListOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders in repository")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}

	return orders, nil
}

func (s *service) ListOrdersByEmail(ctx context.Context, email string) ([]Order, error) {
	orders, err := s.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	email = strings.TrimSpace(email)
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if strings.EqualFold(o.CustomerEmail, email) {
			out = append(out, o)
		}
	}

	return out, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, orderID string, newStatus Status) error {
	if !newStatus.Valid() {
		return apperr.WithDetails(ErrInvalidStatus, fmt.Sprintf("unknown status %q", newStatus))
	}

	currentOrder, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Str("order_id", orderID).Stringer("new_status", newStatus).Msg("service: order not found, cannot update status")
			return ErrOrderNotFound
		}
		log.Error().Err(err).Str("order_id", orderID).Msg("service: failed to get order for status update")
		return fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if currentOrder.Status == newStatus {
		log.Info().Str("order_id", currentOrder.ID).Stringer("status", newStatus).Msg("service: order status is already the same, no update needed")
		return nil
	}

	if !allowedTransitions[currentOrder.Status][newStatus] {
		log.Warn().
			Str("order_id", currentOrder.ID).
			Stringer("current_status", currentOrder.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return apperr.WithDetails(ErrInvalidStatusTransition,
			fmt.Sprintf("cannot move order from %s to %s", currentOrder.Status, newStatus))
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, currentOrder.ID, newStatus); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		log.Error().Err(err).Str("order_id", currentOrder.ID).Stringer("new_status", newStatus).Msg("service: failed to update order status in repository")
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Str("order_id", currentOrder.ID).Stringer("old_status", currentOrder.Status).Stringer("new_status", newStatus).Msg("service: order status updated")

	s.publish(ctx, events.TypeOrderStatusChanged, currentOrder.ID, statusChangedPayload{
		OrderID:   currentOrder.ID,
		OldStatus: currentOrder.Status,
		NewStatus: newStatus,
	})

	return nil
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	orders, err := s.ListOrders(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{OrderCount: len(orders)}
	for _, o := range orders {
		stats.TotalRevenue += o.Total
		if o.Status == StatusProcessing {
			stats.PendingOrders++
		}
	}

	return stats, nil
}

func (s *service) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := s.orderRepo.ExistsByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("service: failed to check order id: %w", err)
	}
	return ok, nil
}

type placedPayload struct {
	OrderID       string `json:"order_id"`
	CustomerEmail string `json:"customer_email"`
	Total         int64  `json:"total"`
	ItemCount     int    `json:"item_count"`
}

type statusChangedPayload struct {
	OrderID   string `json:"order_id"`
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
}

// publish never fails the caller; the order is already recorded.
func (s *service) publish(ctx context.Context, eventType, orderID string, payload any) {
	if s.publisher == nil {
		return
	}

	event, err := events.New(eventType, orderID, payload)
	if err == nil {
		err = s.publisher.Publish(ctx, event)
	}
	if err != nil {
		log.Error().Err(err).Str("order_id", orderID).Str("event_type", eventType).Msg("service: failed to publish order event")
	}
}

func validateOrder(o *Order) error {
	var details []string

	if o.ID == "" {
		details = append(details, "id is required")
	}
	if o.Total < 0 {
		details = append(details, fmt.Sprintf("total must be non-negative, got %d", o.Total))
	}
	if len(o.Items) == 0 {
		details = append(details, "order must contain at least one item")
	}
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			details = append(details, fmt.Sprintf("quantity for product %s must be greater than zero", item.ProductID))
		}
		if item.UnitPrice < 0 {
			details = append(details, fmt.Sprintf("unit price for product %s cannot be negative", item.ProductID))
		}
	}
	if o.Status != StatusProcessing {
		details = append(details, fmt.Sprintf("new orders start in %s, got %q", StatusProcessing, o.Status))
	}

	if len(details) > 0 {
		return apperr.WithDetails(ErrInvalidOrder, details...)
	}
	return nil
}

func itemCount(items []Item) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
