package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/justclick/storefront/internal/core/domain"
)

// mockStore is an in-memory port.DocumentRepository.
type mockStore struct {
	mu           sync.Mutex
	products     []domain.Product
	listFails    int
	listCalls    int
	orders       []domain.Order
	upsertFails  int
	upsertCalls  int
	upsertIDs    []string
	decrements   map[string]int
	decrementErr map[string]error
}

func newMockStore(products ...domain.Product) *mockStore {
	return &mockStore{
		products:     products,
		decrements:   make(map[string]int),
		decrementErr: make(map[string]error),
	}
}

func (m *mockStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listFails > 0 {
		m.listFails--
		return nil, errors.New("store down")
	}
	return append([]domain.Product(nil), m.products...), nil
}

func (m *mockStore) UpsertOrder(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls++
	m.upsertIDs = append(m.upsertIDs, order.ID)
	if m.upsertFails > 0 {
		m.upsertFails--
		return errors.New("write failed")
	}
	for i, o := range m.orders {
		if o.ID == order.ID {
			m.orders[i] = order
			return nil
		}
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockStore) DecrementStock(ctx context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.decrementErr[productID]; err != nil {
		return err
	}
	m.decrements[productID] += quantity
	return nil
}

func newTestCatalog(t *testing.T, store *mockStore) *CatalogService {
	t.Helper()
	c := NewCatalogService(store, zap.NewNop())
	c.Load(context.Background())
	return c
}

func TestCatalogLoad_Normalizes(t *testing.T) {
	store := newMockStore(domain.Product{
		ID:       "mystery-box",
		Name:     "Mystery Box",
		Price:    -5,
		Stock:    -3,
		Category: "misc",
	})
	c := newTestCatalog(t, store)

	p, err := c.Lookup("mystery-box")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.Price != 0 {
		t.Errorf("expected price 0, got %v", p.Price)
	}
	if p.Stock != 0 {
		t.Errorf("expected stock 0, got %d", p.Stock)
	}
	if p.Category != domain.CategoryGeneral {
		t.Errorf("expected general category, got %s", p.Category)
	}
	if len(p.Variants) != 1 || p.Variants[0] != domain.DefaultVariant {
		t.Errorf("expected default variant, got %v", p.Variants)
	}
}

func TestCatalogLoad_FallbackAfterRetry(t *testing.T) {
	store := newMockStore()
	store.listFails = 2

	c := newTestCatalog(t, store)

	if store.listCalls != 2 {
		t.Errorf("expected one retry (2 calls), got %d", store.listCalls)
	}
	if !c.Fallback() {
		t.Error("expected fallback catalog")
	}
	if len(c.Products()) != len(DefaultCatalog()) {
		t.Errorf("expected default catalog, got %d products", len(c.Products()))
	}
}

func TestCatalogLoad_RetrySucceeds(t *testing.T) {
	store := newMockStore(domain.Product{ID: "p1", Name: "One", Stock: 1, Variants: []string{"S"}, Category: domain.CategoryClothes})
	store.listFails = 1

	c := newTestCatalog(t, store)

	if store.listCalls != 2 {
		t.Errorf("expected 2 calls, got %d", store.listCalls)
	}
	if c.Fallback() {
		t.Error("expected remote catalog, got fallback")
	}
	if _, err := c.Lookup("p1"); err != nil {
		t.Errorf("lookup: %v", err)
	}
}

func TestCatalogLoad_EmptyResultFallsBack(t *testing.T) {
	c := newTestCatalog(t, newMockStore())
	if !c.Fallback() {
		t.Error("expected fallback on empty product list")
	}
}

func TestCatalogLoad_KeepsPriorCatalogOnFailure(t *testing.T) {
	store := newMockStore(domain.Product{ID: "p1", Name: "One", Stock: 5, Variants: []string{"S"}, Category: domain.CategoryClothes})
	c := newTestCatalog(t, store)

	store.mu.Lock()
	store.listFails = 2
	store.mu.Unlock()
	c.Load(context.Background())

	if c.Fallback() {
		t.Error("failed refresh must not switch to fallback")
	}
	if _, err := c.Lookup("p1"); err != nil {
		t.Errorf("prior catalog lost: %v", err)
	}
}

func TestCatalogLookup_NotFound(t *testing.T) {
	c := newTestCatalog(t, newMockStore(domain.Product{ID: "p1", Name: "One", Stock: 1, Variants: []string{"S"}}))
	_, err := c.Lookup("ghost")
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCatalogDecrementStock_FlooredAtZero(t *testing.T) {
	c := newTestCatalog(t, newMockStore(domain.Product{ID: "p1", Name: "One", Stock: 3, Variants: []string{"S"}}))

	c.DecrementStock("p1", 5)
	p, _ := c.Lookup("p1")
	if p.Stock != 0 {
		t.Errorf("expected stock 0, got %d", p.Stock)
	}

	// Unknown ids are a no-op.
	c.DecrementStock("ghost", 1)
}
