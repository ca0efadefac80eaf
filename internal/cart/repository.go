package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/postgres"
)

// Repository stores carts and their lines. Every mutation is a single
// conditional statement, so concurrent requests for the same customer never
// lose an increment.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Add gets or creates the customer's cart and merges the item into the line
// with the same product and size.
func (r *Repository) Add(ctx context.Context, customerID string, item domain.CartItem) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	var cartID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO carts (id, customer_id, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (customer_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id
	`, uuid.New().String(), customerID).Scan(&cartID)
	if err != nil {
		return "", postgres.Translate(err, "upsert cart", "cart already exists")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, size, quantity)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cart_id, product_id, size)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`, uuid.New().String(), cartID, item.ProductID, item.Size, item.Quantity)
	if err != nil {
		return "", postgres.Translate(err, "merge cart item", "cart item already exists")
	}

	return cartID, tx.Commit()
}

// CartIDFor returns the id of the customer's cart, or "" when there is none.
func (r *Repository) CartIDFor(ctx context.Context, customerID string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM carts WHERE customer_id = $1`, customerID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get cart: %w", err)
	}
	return id, nil
}

const lineSelect = `
	SELECT ci.id, ci.quantity, ci.size,
		p.id, p.name, p.price, COALESCE(p.images[1], ''), p.slug
	FROM cart_items ci
	LEFT JOIN products p ON p.id = ci.product_id
`

func scanLine(s interface{ Scan(...any) error }) (*domain.CartLine, error) {
	var line domain.CartLine
	var id, name, image, slug sql.NullString
	var price decimal.NullDecimal
	if err := s.Scan(&line.ID, &line.Quantity, &line.Size, &id, &name, &price, &image, &slug); err != nil {
		return nil, err
	}
	if id.Valid {
		line.Product = &domain.ProductSummary{
			ID:    id.String,
			Name:  name.String,
			Price: price.Decimal,
			Image: image.String,
			Slug:  slug.String,
		}
	}
	return &line, nil
}

// ListLines returns the cart's lines in insertion order joined with the live
// product. Lines whose product was deleted carry a nil product.
func (r *Repository) ListLines(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	rows, err := r.db.QueryContext(ctx, lineSelect+` WHERE ci.cart_id = $1 ORDER BY ci.seq`, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	lines := []domain.CartLine{}
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, *line)
	}
	return lines, rows.Err()
}

func (r *Repository) GetLine(ctx context.Context, cartID, itemID string) (*domain.CartLine, error) {
	line, err := scanLine(r.db.QueryRowContext(ctx, lineSelect+` WHERE ci.cart_id = $1 AND ci.id = $2`, cartID, itemID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart line: %w", err)
	}
	return line, nil
}

func (r *Repository) UpdateQuantity(ctx context.Context, cartID, itemID string, quantity int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE cart_items SET quantity = $3 WHERE cart_id = $1 AND id = $2
	`, cartID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if err := r.requireLine(ctx, tx, result, cartID); err != nil {
		return err
	}

	if err := touch(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit()
}

// Remove deletes the line and returns how many lines remain in the cart.
func (r *Repository) Remove(ctx context.Context, cartID, itemID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND id = $2`, cartID, itemID)
	if err != nil {
		return 0, fmt.Errorf("delete cart item: %w", err)
	}
	if err := r.requireLine(ctx, tx, result, cartID); err != nil {
		return 0, err
	}

	if err := touch(ctx, tx, cartID); err != nil {
		return 0, err
	}

	var remaining int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM cart_items WHERE cart_id = $1`, cartID).Scan(&remaining); err != nil {
		return 0, fmt.Errorf("count cart items: %w", err)
	}
	return remaining, tx.Commit()
}

// requireLine distinguishes a missing cart from a missing line when a
// statement touched no rows.
func (r *Repository) requireLine(ctx context.Context, tx *sql.Tx, result sql.Result, cartID string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM carts WHERE id = $1)`, cartID).Scan(&exists); err != nil {
		return fmt.Errorf("check cart: %w", err)
	}
	if !exists {
		return domain.NotFound("cart")
	}
	return domain.NotFound("cart item")
}

func touch(ctx context.Context, tx *sql.Tx, cartID string) error {
	if _, err := tx.ExecContext(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}
