package domain

import "time"

type CartItem struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
}

type Cart struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customer_id"`
	Items      []CartItem `json:"items"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CartLine is a cart item joined with the live product. Product is nil when
// the product has been deleted since it was added.
type CartLine struct {
	ID       string          `json:"id"`
	Product  *ProductSummary `json:"product"`
	Quantity int             `json:"quantity"`
	Size     string          `json:"size,omitempty"`
}

type CartView struct {
	CartID string     `json:"cart_id,omitempty"`
	Items  []CartLine `json:"items"`
}
