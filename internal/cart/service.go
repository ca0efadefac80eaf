// Package cart keeps one cart per customer, merging repeated additions of
// the same product and size into a single line.
package cart

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
)

var itemsAdded, _ = otel.Meter("driven/cart").Int64Counter("cart_items_added_total",
	metric.WithDescription("Units added to carts"))

type Store interface {
	Add(ctx context.Context, customerID string, item domain.CartItem) (string, error)
	CartIDFor(ctx context.Context, customerID string) (string, error)
	ListLines(ctx context.Context, cartID string) ([]domain.CartLine, error)
	GetLine(ctx context.Context, cartID, itemID string) (*domain.CartLine, error)
	UpdateQuantity(ctx context.Context, cartID, itemID string, quantity int) error
	Remove(ctx context.Context, cartID, itemID string) (int, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

type AddInput struct {
	CustomerID string `json:"customer_id"`
	ProductID  string `json:"product_id"`
	Quantity   *int   `json:"quantity"`
	Size       string `json:"size"`
}

// Add merges quantity units of the product in the given size into the
// customer's cart and returns the whole cart. Quantity defaults to 1.
func (s *Service) Add(ctx context.Context, in AddInput) (*domain.CartView, error) {
	if in.CustomerID == "" {
		return nil, domain.Invalid("customer_id", "is required")
	}
	if in.ProductID == "" {
		return nil, domain.Invalid("product_id", "is required")
	}
	quantity := 1
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	if quantity < 1 {
		return nil, domain.Invalid("quantity", "must be at least 1")
	}

	item := domain.CartItem{ProductID: in.ProductID, Quantity: quantity, Size: strings.TrimSpace(in.Size)}
	cartID, err := s.store.Add(ctx, in.CustomerID, item)
	if err != nil {
		return nil, err
	}
	itemsAdded.Add(ctx, int64(quantity), metric.WithAttributes(attribute.Bool("sized", item.Size != "")))

	s.logger.Info("cart item added", "cart_id", cartID, "customer_id", in.CustomerID, "product_id", in.ProductID, "quantity", quantity)
	return s.view(ctx, cartID)
}

// Fetch returns the customer's cart. A customer without a cart gets an
// empty view.
func (s *Service) Fetch(ctx context.Context, customerID string) (*domain.CartView, error) {
	if customerID == "" {
		return nil, domain.Invalid("customer_id", "is required")
	}

	cartID, err := s.store.CartIDFor(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cartID == "" {
		return &domain.CartView{Items: []domain.CartLine{}}, nil
	}
	return s.view(ctx, cartID)
}

func (s *Service) view(ctx context.Context, cartID string) (*domain.CartView, error) {
	lines, err := s.store.ListLines(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return &domain.CartView{CartID: cartID, Items: lines}, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, cartID, itemID string, quantity int) (*domain.CartLine, error) {
	if quantity < 1 {
		return nil, domain.Invalid("quantity", "must be at least 1")
	}

	if err := s.store.UpdateQuantity(ctx, cartID, itemID, quantity); err != nil {
		return nil, err
	}

	line, err := s.store.GetLine(ctx, cartID, itemID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, domain.NotFound("cart item")
	}

	s.logger.Info("cart item quantity updated", "cart_id", cartID, "item_id", itemID, "quantity", quantity)
	return line, nil
}

// Remove deletes the line and returns the number of lines left.
func (s *Service) Remove(ctx context.Context, cartID, itemID string) (int, error) {
	remaining, err := s.store.Remove(ctx, cartID, itemID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("cart item removed", "cart_id", cartID, "item_id", itemID, "remaining", remaining)
	return remaining, nil
}
