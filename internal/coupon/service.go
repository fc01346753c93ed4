package coupon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/apperr"
)

var (
	ErrInvalidCoupon  = apperr.New(apperr.KindValidation, "invalid coupon")
	ErrCouponInactive = apperr.New(apperr.KindValidation, "coupon is not active")
)

// DefaultCoupons is the launch set.
func DefaultCoupons() []Coupon {
	return []Coupon{
		{Code: "WELCOME10", DiscountType: DiscountPercentage, Value: decimal.NewFromInt(10), IsActive: true},
	}
}

type Service interface {
	ListCoupons(ctx context.Context) ([]Coupon, error)
	AddCoupon(ctx context.Context, c *Coupon) (*Coupon, error)
	DeleteCoupon(ctx context.Context, code string) error
	SetCouponActive(ctx context.Context, code string, active bool) error
	// Lookup returns an active coupon by code, in any letter case.
	Lookup(ctx context.Context, code string) (*Coupon, error)
	DiscountedPrice(ctx context.Context, code string, price int64) (int64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListCoupons(ctx context.Context) ([]Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list coupons in repository")
		return nil, fmt.Errorf("service: failed to list coupons: %w", err)
	}
	return coupons, nil
}

// AddCoupon stores a normalized copy; the caller's value is left as given.
func (s *service) AddCoupon(ctx context.Context, couponInput *Coupon) (*Coupon, error) {
	c := *couponInput
	c.Code = NormalizeCode(c.Code)

	var details []string
	if c.Code == "" {
		details = append(details, "code is required")
	}
	if !c.DiscountType.Valid() {
		details = append(details, fmt.Sprintf("unknown discount type %q", c.DiscountType))
	}
	if !c.Value.IsPositive() {
		details = append(details, "value must be positive")
	}
	if len(details) > 0 {
		log.Warn().Str("code", c.Code).Strs("details", details).Msg("service: attempt to add invalid coupon")
		return nil, apperr.WithDetails(ErrInvalidCoupon, details...)
	}

	if err := s.repo.Create(ctx, &c); err != nil {
		if errors.Is(err, ErrDuplicateCoupon) {
			log.Warn().Str("code", c.Code).Msg("service: duplicate coupon code")
			return nil, ErrDuplicateCoupon
		}
		log.Error().Err(err).Str("code", c.Code).Msg("service: failed to create coupon in repository")
		return nil, fmt.Errorf("service: failed to create coupon: %w", err)
	}

	log.Info().Str("code", c.Code).Str("discount_type", string(c.DiscountType)).Msg("service: coupon created")
	return &c, nil
}

func (s *service) DeleteCoupon(ctx context.Context, code string) error {
	code = NormalizeCode(code)

	if err := s.repo.Delete(ctx, code); err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			log.Warn().Str("code", code).Msg("service: coupon not found, cannot delete")
			return ErrCouponNotFound
		}
		log.Error().Err(err).Str("code", code).Msg("service: failed to delete coupon in repository")
		return fmt.Errorf("service: failed to delete coupon: %w", err)
	}

	log.Info().Str("code", code).Msg("service: coupon deleted")
	return nil
}

func (s *service) SetCouponActive(ctx context.Context, code string, active bool) error {
	c, err := s.repo.GetByCode(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return ErrCouponNotFound
		}
		return fmt.Errorf("service: failed to get coupon: %w", err)
	}

	if c.IsActive == active {
		return nil
	}
	c.IsActive = active

	if err := s.repo.Update(ctx, c); err != nil {
		log.Error().Err(err).Str("code", c.Code).Msg("service: failed to update coupon in repository")
		return fmt.Errorf("service: failed to update coupon: %w", err)
	}

	log.Info().Str("code", c.Code).Bool("active", active).Msg("service: coupon activity changed")
	return nil
}

func (s *service) Lookup(ctx context.Context, code string) (*Coupon, error) {
	c, err := s.repo.GetByCode(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("service: failed to get coupon: %w", err)
	}

	if !c.IsActive {
		return nil, ErrCouponInactive
	}
	return c, nil
}

func (s *service) DiscountedPrice(ctx context.Context, code string, price int64) (int64, error) {
	if price < 0 {
		return 0, apperr.WithDetails(ErrInvalidCoupon, "price cannot be negative")
	}

	c, err := s.Lookup(ctx, code)
	if err != nil {
		return 0, err
	}

	return c.Apply(price), nil
}
