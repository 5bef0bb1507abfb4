package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/justclick/storefront/internal/core/domain"
	"github.com/justclick/storefront/internal/port"
)

// CatalogService holds the in-memory product catalog. The remote
// document store is the source of truth; when it cannot be reached the
// service falls back to the built-in default catalog rather than
// surfacing the failure.
type CatalogService struct {
	store port.DocumentRepository
	log   *zap.Logger

	mu       sync.RWMutex
	products []domain.Product
	index    map[string]int
	fallback bool
}

func NewCatalogService(store port.DocumentRepository, log *zap.Logger) *CatalogService {
	return &CatalogService{
		store: store,
		log:   log,
		index: make(map[string]int),
	}
}

// Load refreshes the catalog from the remote store, retrying once on
// failure. A failed refresh is not an error to the caller: the prior
// catalog stays in place, or the built-in defaults are installed when
// nothing has been loaded yet.
func (s *CatalogService) Load(ctx context.Context) {
	list, err := s.store.ListProducts(ctx)
	if err != nil {
		list, err = s.store.ListProducts(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil || len(list) == 0 {
		if err != nil {
			s.log.Warn("catalog fetch failed", zap.Error(err))
		}
		if len(s.products) == 0 {
			s.install(DefaultCatalog())
			s.fallback = true
		}
		return
	}

	for i := range list {
		list[i] = normalize(list[i])
	}
	s.install(list)
	s.fallback = false
}

// install replaces the catalog wholesale. Caller holds the lock.
func (s *CatalogService) install(list []domain.Product) {
	s.products = list
	s.index = make(map[string]int, len(list))
	for i, p := range list {
		s.index[p.ID] = i
	}
}

// Fallback reports whether the current catalog is the built-in default
// rather than a remote snapshot.
func (s *CatalogService) Fallback() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fallback
}

// Products returns a snapshot of the catalog in load order.
func (s *CatalogService) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Lookup finds a product by id.
func (s *CatalogService) Lookup(id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return s.products[i], nil
}

// DecrementStock lowers the in-memory stock of id by quantity, floored
// at zero. Unknown ids are ignored.
func (s *CatalogService) DecrementStock(id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return
	}
	s.products[i].Stock -= quantity
	if s.products[i].Stock < 0 {
		s.products[i].Stock = 0
	}
}

// normalize coerces a raw catalog record into a sellable product:
// negative or missing numbers become zero, the variant list defaults to
// a single entry and unknown categories land in the general bucket.
func normalize(p domain.Product) domain.Product {
	if p.Price < 0 {
		p.Price = 0
	}
	if p.Stock < 0 {
		p.Stock = 0
	}
	if len(p.Variants) == 0 {
		p.Variants = []string{domain.DefaultVariant}
	}
	switch p.Category {
	case domain.CategoryClothes, domain.CategoryLipTint:
	default:
		p.Category = domain.CategoryGeneral
	}
	return p
}

// DefaultCatalog is the built-in product list used when the remote
// store cannot be reached on first load.
func DefaultCatalog() []domain.Product {
	return []domain.Product{
		{ID: "dress-soft-mint", Name: "Soft Mint Dress", Price: 899, Category: domain.CategoryClothes, Stock: 10, Variants: []string{"S", "M", "L"}},
		{ID: "linen-set-cream", Name: "Cream Linen Set", Price: 1199, Category: domain.CategoryClothes, Stock: 10, Variants: []string{"S", "M", "L"}},
		{ID: "cardigan-plum", Name: "Plum Cardigan", Price: 980, Category: domain.CategoryClothes, Stock: 10, Variants: []string{"S", "M", "L"}},
		{ID: "tint-rose", Name: "Velvet Lip Tint - Rose", Price: 299, Category: domain.CategoryLipTint, Stock: 20, Variants: []string{domain.DefaultVariant}},
		{ID: "tint-plum", Name: "Velvet Lip Tint - Plum", Price: 299, Category: domain.CategoryLipTint, Stock: 20, Variants: []string{domain.DefaultVariant}},
		{ID: "tint-mocha", Name: "Velvet Lip Tint - Mocha", Price: 299, Category: domain.CategoryLipTint, Stock: 20, Variants: []string{domain.DefaultVariant}},
	}
}
