package port

import (
	"context"

	"github.com/justclick/storefront/internal/core/domain"
)

// DocumentRepository is the remote document store holding the product
// catalog and the order collection. The order upsert and the stock
// updates that follow it are independent writes with no transaction
// spanning them.
type DocumentRepository interface {
	// ListProducts reads the full product collection.
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// UpsertOrder inserts the order, replacing any existing document
	// with the same id so a retried submission cannot duplicate it.
	UpsertOrder(ctx context.Context, order domain.Order) error

	// DecrementStock lowers a product's stock by quantity, floored at
	// zero, keyed directly on the product id.
	DecrementStock(ctx context.Context, productID string, quantity int) error
}
