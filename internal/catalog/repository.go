package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/apperr"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/kv"
)

var (
	ErrProductNotFound = apperr.New(apperr.KindNotFound, "product not found")
	ErrProductExists   = apperr.New(apperr.KindConflict, "product with this id already exists")
)

type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
}

// kvRepository keeps the whole catalogue in memory and writes it through to
// the key-value store on every mutation. A failed write leaves memory untouched.
type kvRepository struct {
	mu       sync.RWMutex
	doc      *kv.Document[[]Product]
	products []Product
}

// NewRepository loads the catalogue from store, writing seed first if the key is absent.
func NewRepository(ctx context.Context, store kv.Store, codec kv.Codec, seed []Product) (Repository, error) {
	doc := kv.NewDocument[[]Product](store, codec, kv.KeyProducts)

	products, ok, err := doc.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to load products: %w", err)
	}

	if !ok {
		products = cloneAll(seed)
		if err := doc.Save(ctx, products); err != nil {
			return nil, fmt.Errorf("repository: failed to seed products: %w", err)
		}
		log.Info().Int("count", len(products)).Msg("repository: product catalogue seeded")
	}

	return &kvRepository{doc: doc, products: products}, nil
}

func (r *kvRepository) List(_ context.Context) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneAll(r.products), nil
}

func (r *kvRepository) GetByID(_ context.Context, id string) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrProductNotFound
	}

	p := r.products[i].Clone()
	return &p, nil
}

func (r *kvRepository) Create(ctx context.Context, product *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(product.ID) >= 0 {
		return ErrProductExists
	}

	next := make([]Product, 0, len(r.products)+1)
	next = append(next, product.Clone())
	next = append(next, r.products...)

	return r.commit(ctx, next)
}

func (r *kvRepository) Update(ctx context.Context, product *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(product.ID)
	if i < 0 {
		return ErrProductNotFound
	}

	next := make([]Product, len(r.products))
	copy(next, r.products)
	next[i] = product.Clone()

	return r.commit(ctx, next)
}

func (r *kvRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrProductNotFound
	}

	next := make([]Product, 0, len(r.products)-1)
	next = append(next, r.products[:i]...)
	next = append(next, r.products[i+1:]...)

	return r.commit(ctx, next)
}

func (r *kvRepository) commit(ctx context.Context, next []Product) error {
	if err := r.doc.Save(ctx, next); err != nil {
		log.Error().Err(err).Msg("repository: failed to persist products")
		return fmt.Errorf("repository: failed to persist products: %w", err)
	}
	r.products = next
	return nil
}

func (r *kvRepository) indexOf(id string) int {
	for i := range r.products {
		if r.products[i].ID == id {
			return i
		}
	}
	return -1
}
