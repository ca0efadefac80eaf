// Package blog manages blog posts and the categories they are filed under.
package blog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/SarthakSoni31/Driven-backend/internal/cache"
	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/slug"
	"github.com/SarthakSoni31/Driven-backend/internal/validate"
)

const (
	blogsKey = "blogs:"

	placeholderContent = "<p>No content available</p>"
)

type PostStore interface {
	List(ctx context.Context, page domain.Page) ([]domain.BlogSummary, int, error)
	GetByID(ctx context.Context, id string) (*domain.BlogDetail, error)
	GetBySlug(ctx context.Context, slug string) (*domain.BlogDetail, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, b *domain.Blog) error
	Update(ctx context.Context, b *domain.Blog) error
	Delete(ctx context.Context, id string) error
}

type CategoryStore interface {
	List(ctx context.Context) ([]domain.BlogCategory, error)
	GetByID(ctx context.Context, id string) (*domain.BlogCategory, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	CountExisting(ctx context.Context, ids []string) (int, error)
	Create(ctx context.Context, c *domain.BlogCategory) error
	Update(ctx context.Context, c *domain.BlogCategory) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	posts      PostStore
	categories CategoryStore
	cache      *cache.Cache
	logger     *slog.Logger
}

func NewService(posts PostStore, categories CategoryStore, c *cache.Cache, logger *slog.Logger) *Service {
	return &Service{
		posts:      posts,
		categories: categories,
		cache:      c,
		logger:     logger,
	}
}

type PostInput struct {
	Title       string   `json:"title" validate:"required,min=5"`
	Content     string   `json:"content" validate:"required,min=20"`
	Image       string   `json:"image"`
	CategoryIDs []string `json:"category_ids"`
}

func (in *PostInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Image = strings.TrimSpace(in.Image)
	ids := make([]string, 0, len(in.CategoryIDs))
	for _, id := range in.CategoryIDs {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	in.CategoryIDs = ids
}

type Page struct {
	Success    bool                 `json:"success"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"totalPages"`
	TotalBlogs int                  `json:"totalBlogs"`
	Data       []domain.BlogSummary `json:"data"`
}

func (s *Service) List(ctx context.Context, page domain.Page) (Page, error) {
	key := fmt.Sprintf("%spage:%d:%d", blogsKey, page.Number, page.Limit)
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (Page, error) {
		blogs, total, err := s.posts.List(ctx, page)
		if err != nil {
			return Page{}, err
		}
		return Page{
			Success:    true,
			Page:       page.Number,
			Limit:      page.Limit,
			TotalPages: domain.TotalPages(total, page.Limit),
			TotalBlogs: total,
			Data:       blogs,
		}, nil
	})
}

// BySlug returns the published view of a post. Posts without content get a
// placeholder body.
func (s *Service) BySlug(ctx context.Context, slug string) (*domain.BlogDetail, error) {
	return cache.Fetch(ctx, s.cache, blogsKey+"slug:"+slug, func(ctx context.Context) (*domain.BlogDetail, error) {
		b, err := s.posts.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, domain.NotFound("blog")
		}
		if strings.TrimSpace(b.Content) == "" {
			s.logger.Warn("blog has no content", "slug", b.Slug)
			b.Content = placeholderContent
		}
		return b, nil
	})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.BlogDetail, error) {
	b, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.NotFound("blog")
	}
	return b, nil
}

func (s *Service) validatePost(ctx context.Context, in PostInput) error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	if len(in.CategoryIDs) == 0 {
		return nil
	}
	n, err := s.categories.CountExisting(ctx, in.CategoryIDs)
	if err != nil {
		return err
	}
	if n != len(in.CategoryIDs) {
		return domain.Invalid("category_ids", "unknown blog category")
	}
	return nil
}

// Create stores a new post written by authorID.
func (s *Service) Create(ctx context.Context, authorID string, in PostInput) (*domain.Blog, error) {
	in.normalize()
	if err := s.validatePost(ctx, in); err != nil {
		return nil, err
	}

	b := &domain.Blog{
		Title:       in.Title,
		Content:     in.Content,
		Image:       in.Image,
		AuthorID:    authorID,
		CategoryIDs: in.CategoryIDs,
	}
	var err error
	b.Slug, err = slug.Resolve(ctx, true, "", b.Title, "", "", s.posts.SlugExists)
	if err != nil {
		return nil, slug.FieldError("title", err)
	}

	if err := s.posts.Create(ctx, b); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, blogsKey)

	s.logger.Info("blog created", "blog_id", b.ID, "slug", b.Slug, "author_id", authorID)
	return b, nil
}

func (s *Service) Update(ctx context.Context, id string, in PostInput) (*domain.Blog, error) {
	in.normalize()
	if err := s.validatePost(ctx, in); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	b := current.Blog
	b.Slug, err = slug.Resolve(ctx, false, b.Title, in.Title, b.Slug, b.ID, s.posts.SlugExists)
	if err != nil {
		return nil, slug.FieldError("title", err)
	}
	b.Title, b.Content, b.Image, b.CategoryIDs = in.Title, in.Content, in.Image, in.CategoryIDs

	if err := s.posts.Update(ctx, &b); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, blogsKey)

	s.logger.Info("blog updated", "blog_id", b.ID)
	return &b, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, blogsKey)

	s.logger.Info("blog deleted", "blog_id", id)
	return nil
}

type CategoryInput struct {
	Name string `json:"name" validate:"required"`
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.BlogCategory, error) {
	return s.categories.List(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*domain.BlogCategory, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	c := &domain.BlogCategory{Name: in.Name}
	var err error
	c.Slug, err = slug.Resolve(ctx, true, "", c.Name, "", "", s.categories.SlugExists)
	if err != nil {
		return nil, slug.FieldError("name", err)
	}

	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, blogsKey)

	s.logger.Info("blog category created", "blog_category_id", c.ID)
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*domain.BlogCategory, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("blog category")
	}

	c.Slug, err = slug.Resolve(ctx, false, c.Name, in.Name, c.Slug, c.ID, s.categories.SlugExists)
	if err != nil {
		return nil, slug.FieldError("name", err)
	}
	c.Name = in.Name

	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, blogsKey)

	s.logger.Info("blog category updated", "blog_category_id", c.ID)
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, blogsKey)

	s.logger.Info("blog category deleted", "blog_category_id", id)
	return nil
}
