package service

import (
	"errors"
	"fmt"

	"github.com/justclick/storefront/internal/core/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrVariantRequired   = errors.New("variant selection required")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrRemoteUnavailable = errors.New("remote store unavailable")
)

// InsufficientStockError reports a requested quantity above the
// available stock, at mutation time or at checkout.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

type productLookup interface {
	Lookup(id string) (domain.Product, error)
}

// ValidateStock checks every cart item against the current catalog:
// the product must still exist and the requested quantity must not
// exceed its stock. The first violation is returned.
func ValidateStock(items []domain.CartItem, catalog productLookup) error {
	for _, it := range items {
		p, err := catalog.Lookup(it.Key.ProductID)
		if err != nil {
			return err
		}
		if it.Quantity > p.Stock {
			return &InsufficientStockError{
				ProductID: p.ID,
				Available: p.Stock,
				Requested: it.Quantity,
			}
		}
	}
	return nil
}
