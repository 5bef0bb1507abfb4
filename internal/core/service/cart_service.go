package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/justclick/storefront/internal/core/domain"
	"github.com/justclick/storefront/internal/port"
)

// CartService is the cart ledger: a mapping from (product, variant)
// keys to requested quantities. Every mutation is written through to
// the cache so the cart survives restarts; write failures are logged
// and swallowed because the in-memory state stays authoritative for
// the session.
type CartService struct {
	catalog *CatalogService
	cache   port.CacheRepository
	log     *zap.Logger

	mu      sync.Mutex
	entries map[domain.CartKey]int
	keys    []domain.CartKey // insertion order, for stable rendering
}

func NewCartService(catalog *CatalogService, cache port.CacheRepository, log *zap.Logger) *CartService {
	return &CartService{
		catalog: catalog,
		cache:   cache,
		log:     log,
		entries: make(map[domain.CartKey]int),
	}
}

// Restore loads the persisted ledger. Entries whose product no longer
// exists are kept in storage; they are only hidden at resolution time.
func (s *CartService) Restore(ctx context.Context) {
	m, err := s.cache.LoadCart(ctx)
	if err != nil {
		s.log.Warn("cart restore failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for raw, qty := range m {
		key, err := domain.ParseCartKey(raw)
		if err != nil || qty <= 0 {
			continue
		}
		s.set(key, qty)
	}
}

// Add puts one unit of (productID, variant) into the ledger. The
// product must exist and have enough stock to cover the incremented
// quantity. When the product has exactly one variant it is selected
// automatically; otherwise the caller must pass one.
func (s *CartService) Add(ctx context.Context, productID, variant string) error {
	p, err := s.catalog.Lookup(productID)
	if err != nil {
		return err
	}
	if variant == "" {
		if len(p.Variants) != 1 {
			return ErrVariantRequired
		}
		variant = p.Variants[0]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.CartKey{ProductID: p.ID, Variant: variant}
	next := s.entries[key] + 1
	if next > p.Stock {
		return &InsufficientStockError{ProductID: p.ID, Available: p.Stock, Requested: next}
	}
	s.set(key, next)
	s.persist(ctx)
	return nil
}

// SetQuantity pins the entry to quantity. Zero or negative removes the
// entry; a quantity above the product's current stock is rejected and
// the entry is left unchanged.
func (s *CartService) SetQuantity(ctx context.Context, key domain.CartKey, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.unset(key)
		s.persist(ctx)
		return nil
	}

	p, err := s.catalog.Lookup(key.ProductID)
	if err != nil {
		return err
	}
	if quantity > p.Stock {
		return &InsufficientStockError{ProductID: p.ID, Available: p.Stock, Requested: quantity}
	}
	s.set(key, quantity)
	s.persist(ctx)
	return nil
}

// Remove deletes the entry unconditionally.
func (s *CartService) Remove(ctx context.Context, key domain.CartKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unset(key)
	s.persist(ctx)
}

// Clear empties the ledger.
func (s *CartService) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[domain.CartKey]int)
	s.keys = nil
	s.persist(ctx)
}

// Items resolves the ledger against the current catalog. Entries whose
// product no longer resolves are skipped, not deleted.
func (s *CartService) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.CartItem, 0, len(s.keys))
	for _, key := range s.keys {
		p, err := s.catalog.Lookup(key.ProductID)
		if err != nil {
			continue
		}
		items = append(items, domain.CartItem{Key: key, Product: p, Quantity: s.entries[key]})
	}
	return items
}

// Subtotal is the sum of price times quantity over resolved items.
// Rounding to currency precision is a presentation concern.
func (s *CartService) Subtotal() float64 {
	var total float64
	for _, it := range s.Items() {
		total += it.Product.Price * float64(it.Quantity)
	}
	return total
}

// set and unset keep the map and the insertion-order slice in sync.
// Caller holds the lock.
func (s *CartService) set(key domain.CartKey, quantity int) {
	if _, ok := s.entries[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.entries[key] = quantity
}

func (s *CartService) unset(key domain.CartKey) {
	if _, ok := s.entries[key]; !ok {
		return
	}
	delete(s.entries, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// persist writes the ledger through to the cache. Failures are logged
// only. Caller holds the lock.
func (s *CartService) persist(ctx context.Context) {
	m := make(map[string]int, len(s.entries))
	for key, qty := range s.entries {
		m[key.String()] = qty
	}
	if err := s.cache.SaveCart(ctx, m); err != nil {
		s.log.Warn("cart persist failed", zap.Error(err))
	}
}
