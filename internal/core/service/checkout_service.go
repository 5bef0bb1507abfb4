package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justclick/storefront/internal/core/domain"
	"github.com/justclick/storefront/internal/port"
)

// CheckoutService turns the current cart into an order. The sequence
// is validate, submit, reconcile stock, clear the ledger. The order
// write and the per-line stock decrements are independent remote
// writes: a decrement failure after a recorded order is logged for
// external reconciliation, never rolled back.
type CheckoutService struct {
	catalog *CatalogService
	cart    *CartService
	store   port.DocumentRepository
	log     *zap.Logger
}

func NewCheckoutService(catalog *CatalogService, cart *CartService, store port.DocumentRepository, log *zap.Logger) *CheckoutService {
	return &CheckoutService{
		catalog: catalog,
		cart:    cart,
		store:   store,
		log:     log,
	}
}

// Submit runs one checkout. Rejections (ErrEmptyCart,
// ErrProductNotFound, InsufficientStockError) and submission failures
// (ErrRemoteUnavailable) leave the ledger untouched so the user can
// retry; the order id is generated here, so a retried write replaces
// the same document. A second Submit while one is in flight is the
// caller's responsibility to prevent.
func (s *CheckoutService) Submit(ctx context.Context, customer domain.Customer) (domain.Order, error) {
	items := s.cart.Items()
	if len(items) == 0 {
		return domain.Order{}, ErrEmptyCart
	}
	if err := ValidateStock(items, s.catalog); err != nil {
		return domain.Order{}, err
	}

	order := buildOrder(items, customer)
	if err := s.upsertWithRetry(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	// Best effort per line: the order is already recorded, so stock
	// drift is tolerated and left to external reconciliation.
	for _, line := range order.Lines {
		if err := s.store.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			s.log.Warn("stock decrement failed",
				zap.String("order_id", order.ID),
				zap.String("product_id", line.ProductID),
				zap.Int("quantity", line.Quantity),
				zap.Error(err))
		}
		s.catalog.DecrementStock(line.ProductID, line.Quantity)
	}

	s.cart.Clear(ctx)
	return order, nil
}

func (s *CheckoutService) upsertWithRetry(ctx context.Context, order domain.Order) error {
	err := s.store.UpsertOrder(ctx, order)
	if err != nil {
		err = s.store.UpsertOrder(ctx, order)
	}
	return err
}

func buildOrder(items []domain.CartItem, customer domain.Customer) domain.Order {
	lines := make([]domain.OrderLine, 0, len(items))
	var total float64
	for _, it := range items {
		lines = append(lines, domain.OrderLine{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Price:     it.Product.Price,
			Quantity:  it.Quantity,
			Variant:   it.Key.Variant,
		})
		total += it.Product.Price * float64(it.Quantity)
	}
	return domain.Order{
		ID:       uuid.New().String(),
		Lines:    lines,
		Total:    total,
		Customer: customer,
	}
}
