package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/postgres"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, name, slug, price, description, images, sizes, status, created_at, updated_at`

func scanProduct(s rowScanner) (*domain.Product, error) {
	var p domain.Product
	err := s.Scan(&p.ID, &p.Name, &p.Slug, &p.Price, &p.Description,
		pq.Array(&p.Images), pq.Array(&p.Sizes), &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	p.CategoryIDs = []string{}
	return &p, nil
}

// List returns one page of products, newest first, with their categories,
// plus the total product count.
func (r *ProductRepository) List(ctx context.Context, page domain.Page) ([]domain.ProductDetail, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	products := []domain.ProductDetail{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, domain.ProductDetail{Product: *p, Categories: []domain.CategoryRef{}})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachCategories(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.ProductDetail, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.ProductDetail, error) {
	return r.getOne(ctx, `WHERE slug = $1`, slug)
}

func (r *ProductRepository) getOne(ctx context.Context, where string, arg any) (*domain.ProductDetail, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	details := []domain.ProductDetail{{Product: *p, Categories: []domain.CategoryRef{}}}
	if err := r.attachCategories(ctx, details); err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (r *ProductRepository) attachCategories(ctx context.Context, products []domain.ProductDetail) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, len(products))
	index := make(map[string]*domain.ProductDetail, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = &products[i]
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT pc.product_id, c.id, c.name, c.slug
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1)
		ORDER BY c.name
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load product categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var productID string
		var ref domain.CategoryRef
		if err := rows.Scan(&productID, &ref.ID, &ref.Name, &ref.Slug); err != nil {
			return fmt.Errorf("scan product category: %w", err)
		}
		p := index[productID]
		p.CategoryIDs = append(p.CategoryIDs, ref.ID)
		p.Categories = append(p.Categories, ref)
	}
	return rows.Err()
}

func (r *ProductRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1 AND id <> $2)
	`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product slug: %w", err)
	}
	return exists, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	p.ID = uuid.New().String()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO products (id, name, slug, price, description, images, sizes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`, p.ID, p.Name, p.Slug, p.Price, p.Description, pq.Array(p.Images), pq.Array(p.Sizes), p.Status, now)
	if err != nil {
		return postgres.Translate(err, "insert product", "product slug already exists")
	}

	if err := replaceProductCategories(ctx, tx, p.ID, p.CategoryIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	p.UpdatedAt = time.Now().UTC()
	result, err := tx.ExecContext(ctx, `
		UPDATE products
		SET name = $2, slug = $3, price = $4, description = $5, images = $6, sizes = $7, status = $8, updated_at = $9
		WHERE id = $1
	`, p.ID, p.Name, p.Slug, p.Price, p.Description, pq.Array(p.Images), pq.Array(p.Sizes), p.Status, p.UpdatedAt)
	if err != nil {
		return postgres.Translate(err, "update product", "product slug already exists")
	}
	if err := postgres.RequireAffected(result, "product"); err != nil {
		return err
	}

	if err := replaceProductCategories(ctx, tx, p.ID, p.CategoryIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceProductCategories(ctx context.Context, tx *sql.Tx, productID string, categoryIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_categories WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("clear product categories: %w", err)
	}
	if len(categoryIDs) == 0 {
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO product_categories (product_id, category_id)
		SELECT $1, unnest($2::text[])
		ON CONFLICT DO NOTHING
	`, productID, pq.Array(categoryIDs))
	if err != nil {
		return fmt.Errorf("insert product categories: %w", err)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return postgres.RequireAffected(result, "product")
}
