// Package orders places customer orders as immutable snapshots of the items
// and prices supplied at checkout.
package orders

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
)

var ordersPlaced, _ = otel.Meter("driven/orders").Int64Counter("orders_placed_total",
	metric.WithDescription("Orders accepted at checkout"))

type Store interface {
	Create(ctx context.Context, order *domain.Order) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListForCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}

type Service struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService returns an order service. publisher may be nil, in which case
// no order.placed events are emitted.
func NewService(store Store, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type ItemInput struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type PlaceInput struct {
	CustomerID        string               `json:"customer_id"`
	Items             []ItemInput          `json:"items"`
	ShippingAddressID string               `json:"shipping_address_id"`
	PaymentMethod     domain.PaymentMethod `json:"payment_method"`
	TotalAmount       *decimal.Decimal     `json:"total_amount"`
}

func (in PlaceInput) validate() error {
	switch {
	case in.CustomerID == "":
		return domain.Invalid("customer_id", "is required")
	case len(in.Items) == 0:
		return domain.Invalid("items", "is required")
	case in.ShippingAddressID == "":
		return domain.Invalid("shipping_address_id", "is required")
	case in.PaymentMethod == "":
		return domain.Invalid("payment_method", "is required")
	case in.TotalAmount == nil || in.TotalAmount.IsZero():
		return domain.Invalid("total_amount", "is required")
	case !in.PaymentMethod.Valid():
		return domain.Invalid("payment_method", "must be one of: COD, Credit Card, PayPal, Other")
	case in.TotalAmount.IsNegative():
		return domain.Invalid("total_amount", "must not be negative")
	}

	for _, item := range in.Items {
		switch {
		case item.ProductID == "":
			return domain.Invalid("items", "product_id is required")
		case item.Quantity < 1:
			return domain.Invalid("items", "quantity must be at least 1")
		case item.Price.IsNegative():
			return domain.Invalid("items", "price must not be negative")
		}
	}
	return nil
}

// Place validates and stores the order. The caller's prices and total are
// kept as given. A failure to publish the order.placed event is logged and
// does not fail the order.
func (s *Service) Place(ctx context.Context, in PlaceInput) (*domain.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	order := &domain.Order{
		CustomerID:        in.CustomerID,
		Items:             make([]domain.OrderItem, len(in.Items)),
		ShippingAddressID: in.ShippingAddressID,
		PaymentMethod:     in.PaymentMethod,
		Status:            domain.OrderStatusPending,
		TotalAmount:       *in.TotalAmount,
		OrderDate:         s.now(),
	}
	for i, item := range in.Items {
		order.Items[i] = domain.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity, Price: item.Price}
	}

	email, err := s.store.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.String("payment_method", string(order.PaymentMethod))))

	if s.publisher != nil {
		event := domain.OrderPlacedEvent{
			OrderID:     order.ID,
			CustomerID:  order.CustomerID,
			Email:       email,
			Items:       order.Items,
			TotalAmount: order.TotalAmount,
			Timestamp:   order.OrderDate,
		}
		if err := s.publisher.Publish(ctx, domain.TopicOrderPlaced, order.ID, event); err != nil {
			s.logger.Error("failed to publish order placed event", "error", err, "order_id", order.ID)
		}
	}

	s.logger.Info("order placed", "order_id", order.ID, "customer_id", order.CustomerID, "total", order.TotalAmount.String())
	return order, nil
}

func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return s.store.ListForCustomer(ctx, customerID)
}

// Get returns one of the customer's orders. An order belonging to someone
// else is reported as not found.
func (s *Service) Get(ctx context.Context, customerID, orderID string) (*domain.Order, error) {
	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.CustomerID != customerID {
		return nil, domain.NotFound("order")
	}
	return order, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.store.List(ctx)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, domain.Invalid("status", "must be one of: Pending, Processing, Shipped, Delivered, Cancelled")
	}

	order, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NotFound("order")
	}

	s.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	return order, nil
}
