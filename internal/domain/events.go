package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicOrderPlaced  = "order.placed"
	TopicOtpRequested = "otp.requested"
)

type OrderPlacedEvent struct {
	OrderID     string          `json:"order_id"`
	CustomerID  string          `json:"customer_id"`
	Email       string          `json:"email"`
	Items       []OrderItem     `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Timestamp   time.Time       `json:"timestamp"`
}

type OtpRequestedEvent struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}
