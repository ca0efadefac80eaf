package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/postgres"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists the order after checking, under a shared lock, that the
// customer exists and owns the shipping address. It returns the customer's
// email for the confirmation event.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	var email string
	err = tx.QueryRowContext(ctx, `SELECT email FROM customers WHERE id = $1 FOR SHARE`, order.CustomerID).Scan(&email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.NotFound("customer")
		}
		return "", fmt.Errorf("lock customer: %w", err)
	}

	var addressID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM addresses WHERE id = $1 AND customer_id = $2 FOR SHARE
	`, order.ShippingAddressID, order.CustomerID).Scan(&addressID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.Invalid("shipping_address_id", "invalid shipping address")
		}
		return "", fmt.Errorf("lock address: %w", err)
	}

	order.ID = uuid.New().String()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, shipping_address_id, payment_method, status, total_amount, order_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $7)
	`, order.ID, order.CustomerID, order.ShippingAddressID, order.PaymentMethod, order.Status, order.TotalAmount, order.OrderDate)
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	for i, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, position, product_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New().String(), order.ID, i, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return "", fmt.Errorf("insert order item: %w", err)
		}
	}

	return email, tx.Commit()
}

const orderSelect = `
	SELECT id, customer_id, shipping_address_id, payment_method, status, total_amount, order_date
	FROM orders
`

func scanOrder(s interface{ Scan(...any) error }) (domain.Order, error) {
	var o domain.Order
	err := s.Scan(&o.ID, &o.CustomerID, &o.ShippingAddressID, &o.PaymentMethod, &o.Status, &o.TotalAmount, &o.OrderDate)
	o.Items = []domain.OrderItem{}
	return o, err
}

// GetByID returns the order, or nil when it does not exist.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	orders := []domain.Order{order}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListForCustomer returns the customer's orders, newest first, with each
// item joined to the live product.
func (r *OrderRepository) ListForCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return r.list(ctx, orderSelect+` WHERE customer_id = $1 ORDER BY order_date DESC`, customerID)
}

// List returns every order, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, orderSelect+` ORDER BY order_date DESC`)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	index := make(map[string]int, len(orders))
	ids := make([]string, len(orders))
	for i, o := range orders {
		index[o.ID] = i
		ids[i] = o.ID
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.order_id, oi.product_id, oi.quantity, oi.price,
			p.id, p.name, p.price, COALESCE(p.images[1], ''), p.slug
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.position
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var orderID string
		var item domain.OrderItem
		var id, name, image, slug sql.NullString
		var price decimal.NullDecimal
		if err := rows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.Price,
			&id, &name, &price, &image, &slug); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if id.Valid {
			item.Product = &domain.ProductSummary{
				ID:    id.String,
				Name:  name.String,
				Price: price.Decimal,
				Image: image.String,
				Slug:  slug.String,
			}
		}
		i := index[orderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return rows.Err()
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if err := postgres.RequireAffected(result, "order"); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}
