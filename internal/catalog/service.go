package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/apperr"
)

var (
	ErrInvalidProduct = apperr.New(apperr.KindValidation, "invalid product")
	ErrInvalidFilter  = apperr.New(apperr.KindValidation, "invalid product filter")
	ErrProductInUse   = apperr.New(apperr.KindConflict, "product is referenced by the cart")
)

// ReferenceChecker reports whether live state still points at a product.
type ReferenceChecker interface {
	References(productID string) bool
}

type Service interface {
	ListProducts(ctx context.Context, filter Filter) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	AddProduct(ctx context.Context, product *Product) (*Product, error)
	UpdateProduct(ctx context.Context, product *Product) error
	DeleteProduct(ctx context.Context, id string) error
	Categories() []CategoryInfo
}

type service struct {
	repo Repository
	refs ReferenceChecker
}

// NewService wires the catalogue; refs may be nil when nothing can hold product references.
func NewService(repo Repository, refs ReferenceChecker) Service {
	return &service{repo: repo, refs: refs}
}

func (s *service) ListProducts(ctx context.Context, filter Filter) ([]Product, error) {
	f, err := filter.normalize()
	if err != nil {
		return nil, apperr.WithDetails(ErrInvalidFilter, err.Error())
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products in repository")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}

	return f.apply(products), nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			log.Warn().Str("product_id", id).Msg("service: product not found by id")
			return nil, ErrProductNotFound
		}

		log.Error().Err(err).Str("product_id", id).Msg("service: failed to fetch product by id")
		return nil, fmt.Errorf("service: failed to fetch product by id: %w", err)
	}

	return product, nil
}

func (s *service) AddProduct(ctx context.Context, product *Product) (*Product, error) {
	product.ID = strings.TrimSpace(product.ID)
	if err := validateProduct(product); err != nil {
		log.Warn().Err(err).Str("product_id", product.ID).Msg("service: attempt to add invalid product")
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, ErrProductExists) {
			log.Warn().Str("product_id", product.ID).Msg("service: product id already taken")
			return nil, ErrProductExists
		}

		log.Error().Err(err).Str("product_id", product.ID).Msg("service: failed to create product in repository")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Str("product_id", product.ID).Msg("service: product created")
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, product *Product) error {
	if err := validateProduct(product); err != nil {
		log.Warn().Err(err).Str("product_id", product.ID).Msg("service: attempt to save invalid product")
		return err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}

		log.Error().Err(err).Str("product_id", product.ID).Msg("service: failed to update product in repository")
		return fmt.Errorf("service: failed to update product: %w", err)
	}

	log.Info().Str("product_id", product.ID).Msg("service: product updated")
	return nil
}

// DeleteProduct refuses while a cart line still points at the product.
// Orders hold their own snapshots and never block deletion.
func (s *service) DeleteProduct(ctx context.Context, id string) error {
	if s.refs != nil && s.refs.References(id) {
		log.Warn().Str("product_id", id).Msg("service: refusing to delete product held in cart")
		return ErrProductInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}

		log.Error().Err(err).Str("product_id", id).Msg("service: failed to delete product in repository")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}

	log.Info().Str("product_id", id).Msg("service: product deleted")
	return nil
}

func (s *service) Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categories))
	copy(out, categories)
	return out
}

func validateProduct(p *Product) error {
	var details []string

	if strings.TrimSpace(p.ID) == "" {
		details = append(details, "id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		details = append(details, "name is required")
	}
	if p.BasePrice <= 0 {
		details = append(details, "price must be positive")
	}
	if p.SalePrice != nil {
		if *p.SalePrice <= 0 {
			details = append(details, "sale price must be positive")
		} else if *p.SalePrice >= p.BasePrice {
			details = append(details, "sale price must be lower than price")
		}
	}
	if !p.Category.Valid() {
		details = append(details, fmt.Sprintf("unknown category %q", p.Category))
	}
	if p.Stock != nil && *p.Stock < 0 {
		details = append(details, "stock cannot be negative")
	}

	if len(details) > 0 {
		return apperr.WithDetails(ErrInvalidProduct, details...)
	}
	return nil
}
