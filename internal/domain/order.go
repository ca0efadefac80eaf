package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCOD        PaymentMethod = "COD"
	PaymentCreditCard PaymentMethod = "Credit Card"
	PaymentPayPal     PaymentMethod = "PayPal"
	PaymentOther      PaymentMethod = "Other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentCreditCard, PaymentPayPal, PaymentOther:
		return true
	}
	return false
}

// OrderItem captures the price at purchase time; it is never re-derived
// from the live product.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Product   *ProductSummary `json:"product,omitempty"`
}

type Order struct {
	ID                string          `json:"id"`
	CustomerID        string          `json:"customer_id"`
	Items             []OrderItem     `json:"items"`
	ShippingAddressID string          `json:"shipping_address_id"`
	PaymentMethod     PaymentMethod   `json:"payment_method"`
	Status            OrderStatus     `json:"status"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	OrderDate         time.Time       `json:"order_date"`
}
