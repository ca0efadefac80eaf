package blog

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

const excerptLength = 150

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

// List returns one page of post summaries, newest first, and the total
// number of posts.
func (r *PostRepository) List(ctx context.Context, page domain.Page) ([]domain.BlogSummary, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blogs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count blogs: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT b.id, b.title, b.image, b.slug, LEFT(b.content, $3), COALESCE(u.name, ''),
			COALESCE(ARRAY(
				SELECT bc.name
				FROM blog_post_categories bpc
				JOIN blog_categories bc ON bc.id = bpc.blog_category_id
				WHERE bpc.blog_id = b.id
				ORDER BY bc.name
			), '{}'),
			b.created_at, b.updated_at
		FROM blogs b
		LEFT JOIN users u ON u.id = b.author_id
		ORDER BY b.created_at DESC
		LIMIT $1 OFFSET $2
	`, page.Limit, page.Offset(), excerptLength)
	if err != nil {
		return nil, 0, fmt.Errorf("list blogs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	blogs := []domain.BlogSummary{}
	for rows.Next() {
		var b domain.BlogSummary
		if err := rows.Scan(&b.ID, &b.Title, &b.Image, &b.Slug, &b.Excerpt, &b.AuthorName,
			pq.Array(&b.Categories), &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan blog: %w", err)
		}
		if b.Categories == nil {
			b.Categories = []string{}
		}
		blogs = append(blogs, b)
	}
	return blogs, total, rows.Err()
}

func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*domain.BlogDetail, error) {
	return r.getOne(ctx, `WHERE b.slug = $1`, slug)
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.BlogDetail, error) {
	return r.getOne(ctx, `WHERE b.id = $1`, id)
}

func (r *PostRepository) getOne(ctx context.Context, where string, arg any) (*domain.BlogDetail, error) {
	var b domain.BlogDetail
	var author sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT b.id, b.title, b.content, b.slug, b.image, b.author_id, COALESCE(u.name, ''), b.created_at, b.updated_at
		FROM blogs b
		LEFT JOIN users u ON u.id = b.author_id
		`+where, arg).Scan(&b.ID, &b.Title, &b.Content, &b.Slug, &b.Image, &author, &b.AuthorName, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get blog: %w", err)
	}
	b.AuthorID = author.String

	rows, err := r.db.QueryContext(ctx, `
		SELECT bc.id, bc.name, bc.slug
		FROM blog_post_categories bpc
		JOIN blog_categories bc ON bc.id = bpc.blog_category_id
		WHERE bpc.blog_id = $1
		ORDER BY bc.name
	`, b.ID)
	if err != nil {
		return nil, fmt.Errorf("load blog categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	b.Categories = []domain.BlogCategory{}
	b.CategoryIDs = []string{}
	for rows.Next() {
		var c domain.BlogCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, fmt.Errorf("scan blog category: %w", err)
		}
		b.Categories = append(b.Categories, c)
		b.CategoryIDs = append(b.CategoryIDs, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PostRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM blogs WHERE slug = $1 AND id <> $2)
	`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check blog slug: %w", err)
	}
	return exists, nil
}

func (r *PostRepository) Create(ctx context.Context, b *domain.Blog) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	b.ID = uuid.New().String()
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO blogs (id, title, content, slug, image, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, b.ID, b.Title, b.Content, b.Slug, b.Image, b.AuthorID, now)
	if err != nil {
		return postgres.Translate(err, "insert blog", "blog slug already exists")
	}

	if err := replacePostCategories(ctx, tx, b.ID, b.CategoryIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PostRepository) Update(ctx context.Context, b *domain.Blog) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	b.UpdatedAt = time.Now().UTC()
	result, err := tx.ExecContext(ctx, `
		UPDATE blogs SET title = $2, content = $3, slug = $4, image = $5, updated_at = $6
		WHERE id = $1
	`, b.ID, b.Title, b.Content, b.Slug, b.Image, b.UpdatedAt)
	if err != nil {
		return postgres.Translate(err, "update blog", "blog slug already exists")
	}
	if err := postgres.RequireAffected(result, "blog"); err != nil {
		return err
	}

	if err := replacePostCategories(ctx, tx, b.ID, b.CategoryIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func replacePostCategories(ctx context.Context, tx *sql.Tx, blogID string, categoryIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM blog_post_categories WHERE blog_id = $1`, blogID); err != nil {
		return fmt.Errorf("clear blog categories: %w", err)
	}
	if len(categoryIDs) == 0 {
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO blog_post_categories (blog_id, blog_category_id)
		SELECT $1, unnest($2::text[])
		ON CONFLICT DO NOTHING
	`, blogID, pq.Array(categoryIDs))
	if err != nil {
		return fmt.Errorf("insert blog categories: %w", err)
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	return postgres.RequireAffected(result, "blog")
}

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.BlogCategory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug FROM blog_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list blog categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []domain.BlogCategory{}
	for rows.Next() {
		var c domain.BlogCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, fmt.Errorf("scan blog category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.BlogCategory, error) {
	var c domain.BlogCategory
	err := r.db.QueryRowContext(ctx, `SELECT id, name, slug FROM blog_categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get blog category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM blog_categories WHERE slug = $1 AND id <> $2)
	`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check blog category slug: %w", err)
	}
	return exists, nil
}

func (r *CategoryRepository) CountExisting(ctx context.Context, ids []string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_categories WHERE id = ANY($1)`, pq.Array(ids)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count blog categories: %w", err)
	}
	return n, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.BlogCategory) error {
	c.ID = uuid.New().String()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blog_categories (id, name, slug) VALUES ($1, $2, $3)
	`, c.ID, c.Name, c.Slug)
	return postgres.Translate(err, "insert blog category", "blog category already exists")
}

func (r *CategoryRepository) Update(ctx context.Context, c *domain.BlogCategory) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE blog_categories SET name = $2, slug = $3 WHERE id = $1
	`, c.ID, c.Name, c.Slug)
	if err != nil {
		return postgres.Translate(err, "update blog category", "blog category already exists")
	}
	return postgres.RequireAffected(result, "blog category")
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blog_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete blog category: %w", err)
	}
	return postgres.RequireAffected(result, "blog category")
}
