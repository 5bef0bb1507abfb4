package domain

import "time"

// OrderLine is one item of an order snapshot. Field names follow the
// document shape stored in the order collection.
type OrderLine struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Variant   string  `json:"variant"`
}

// Customer holds the optional contact fields collected at checkout.
type Customer struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Order is an immutable snapshot of the cart taken at checkout time.
// The id is generated client-side so a retried submission overwrites
// the same document instead of creating a duplicate. CreatedAt is
// assigned by the remote store.
type Order struct {
	ID        string      `json:"id"`
	Lines     []OrderLine `json:"items"`
	Total     float64     `json:"total"`
	Customer  Customer    `json:"customer"`
	CreatedAt time.Time   `json:"created_at"`
}
