package coupon

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/apperr"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/kv"
)

var (
	ErrCouponNotFound  = apperr.New(apperr.KindNotFound, "coupon not found")
	ErrDuplicateCoupon = apperr.New(apperr.KindConflict, "coupon with this code already exists")
)

// Repository works on normalized codes only.
type Repository interface {
	List(ctx context.Context) ([]Coupon, error)
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	Create(ctx context.Context, c *Coupon) error
	Update(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, code string) error
}

type kvRepository struct {
	mu      sync.RWMutex
	doc     *kv.Document[[]Coupon]
	coupons []Coupon
}

func NewRepository(ctx context.Context, store kv.Store, codec kv.Codec, seed []Coupon) (Repository, error) {
	doc := kv.NewDocument[[]Coupon](store, codec, kv.KeyCoupons)

	coupons, ok, err := doc.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to load coupons: %w", err)
	}

	if !ok {
		coupons = slices.Clone(seed)
		if err := doc.Save(ctx, coupons); err != nil {
			return nil, fmt.Errorf("repository: failed to seed coupons: %w", err)
		}
	}

	return &kvRepository{doc: doc, coupons: coupons}, nil
}

func (r *kvRepository) List(_ context.Context) ([]Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.coupons), nil
}

func (r *kvRepository) GetByCode(_ context.Context, code string) (*Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(code)
	if i < 0 {
		return nil, ErrCouponNotFound
	}

	c := r.coupons[i]
	return &c, nil
}

func (r *kvRepository) Create(ctx context.Context, c *Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(c.Code) >= 0 {
		return ErrDuplicateCoupon
	}

	next := append(slices.Clone(r.coupons), *c)
	return r.commit(ctx, next)
}

func (r *kvRepository) Update(ctx context.Context, c *Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(c.Code)
	if i < 0 {
		return ErrCouponNotFound
	}

	next := slices.Clone(r.coupons)
	next[i] = *c
	return r.commit(ctx, next)
}

func (r *kvRepository) Delete(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(r.coupons), func(c Coupon) bool {
		return c.Code == code
	})
	if len(next) == len(r.coupons) {
		return ErrCouponNotFound
	}

	return r.commit(ctx, next)
}

func (r *kvRepository) commit(ctx context.Context, next []Coupon) error {
	if err := r.doc.Save(ctx, next); err != nil {
		log.Error().Err(err).Msg("repository: failed to persist coupons")
		return fmt.Errorf("repository: failed to persist coupons: %w", err)
	}
	r.coupons = next
	return nil
}

func (r *kvRepository) indexOf(code string) int {
	return slices.IndexFunc(r.coupons, func(c Coupon) bool {
		return c.Code == code
	})
}
