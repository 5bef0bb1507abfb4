package domain

import (
	"fmt"
	"strings"
)

// keySeparator joins product id and variant in the serialized form of a
// cart key. Product ids must not contain it.
const keySeparator = "::"

// CartKey identifies a cart entry as a (product, variant) pair. Keys
// compare by value; the string form is only used at storage and API
// boundaries.
type CartKey struct {
	ProductID string
	Variant   string
}

func (k CartKey) String() string {
	return k.ProductID + keySeparator + k.Variant
}

// ParseCartKey decodes the serialized form produced by String.
func ParseCartKey(s string) (CartKey, error) {
	parts := strings.SplitN(s, keySeparator, 2)
	if len(parts) != 2 || parts[0] == "" {
		return CartKey{}, fmt.Errorf("malformed cart key %q", s)
	}
	return CartKey{ProductID: parts[0], Variant: parts[1]}, nil
}

// CartItem is a cart entry resolved against the current catalog.
type CartItem struct {
	Key      CartKey
	Product  Product
	Quantity int
}
