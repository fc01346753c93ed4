package order

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/apperr"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/kv"
)

var (
	ErrOrderNotFound    = apperr.New(apperr.KindNotFound, "order not found")
	ErrDuplicateOrderID = apperr.New(apperr.KindConflict, "order with this id already exists")
)

// Repository matches order ids case-insensitively.
type Repository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status Status) error
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// kvRepository holds orders newest first.
type kvRepository struct {
	mu     sync.RWMutex
	doc    *kv.Document[[]Order]
	orders []Order
}

func NewRepository(ctx context.Context, store kv.Store, codec kv.Codec, seed []Order) (Repository, error) {
	doc := kv.NewDocument[[]Order](store, codec, kv.KeyOrders)

	orders, ok, err := doc.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to load orders: %w", err)
	}

	if !ok {
		orders = cloneAll(seed)
		if err := doc.Save(ctx, orders); err != nil {
			return nil, fmt.Errorf("repository: failed to seed orders: %w", err)
		}
		log.Info().Int("count", len(orders)).Msg("repository: order history seeded")
	}

	return &kvRepository{doc: doc, orders: orders}, nil
}

func (r *kvRepository) CreateOrder(ctx context.Context, order *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(order.ID) >= 0 {
		return ErrDuplicateOrderID
	}

	next := make([]Order, 0, len(r.orders)+1)
	next = append(next, order.Clone())
	next = append(next, r.orders...)

	return r.commit(ctx, next)
}

func (r *kvRepository) GetOrderByID(_ context.Context, id string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrOrderNotFound
	}

	o := r.orders[i].Clone()
	return &o, nil
}

func (r *kvRepository) ListOrders(_ context.Context) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneAll(r.orders), nil
}

func (r *kvRepository) UpdateOrderStatus(ctx context.Context, id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrOrderNotFound
	}

	next := make([]Order, len(r.orders))
	copy(next, r.orders)
	next[i].Status = status

	return r.commit(ctx, next)
}

func (r *kvRepository) ExistsByID(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.indexOf(id) >= 0, nil
}

func (r *kvRepository) commit(ctx context.Context, next []Order) error {
	if err := r.doc.Save(ctx, next); err != nil {
		log.Error().Err(err).Msg("repository: failed to persist orders")
		return fmt.Errorf("repository: failed to persist orders: %w", err)
	}
	r.orders = next
	return nil
}

func (r *kvRepository) indexOf(id string) int {
	id = strings.TrimSpace(id)
	for i := range r.orders {
		if strings.EqualFold(r.orders[i].ID, id) {
			return i
		}
	}
	return -1
}
