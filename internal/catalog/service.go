package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SarthakSoni31/Driven-backend/internal/cache"
	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/policy"
	"github.com/SarthakSoni31/Driven-backend/internal/slug"
	"github.com/SarthakSoni31/Driven-backend/internal/validate"
)

const (
	categoriesKey = "categories:"
	productsKey   = "products:"
)

type CategoryStore interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	CountExisting(ctx context.Context, ids []string) (int, error)
	Create(ctx context.Context, c *domain.Category) error
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
}

type ProductStore interface {
	List(ctx context.Context, page domain.Page) ([]domain.ProductDetail, int, error)
	GetByID(ctx context.Context, id string) (*domain.ProductDetail, error)
	GetBySlug(ctx context.Context, slug string) (*domain.ProductDetail, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	categories CategoryStore
	products   ProductStore
	cache      *cache.Cache
	logger     *slog.Logger
}

func NewService(categories CategoryStore, products ProductStore, c *cache.Cache, logger *slog.Logger) *Service {
	return &Service{
		categories: categories,
		products:   products,
		cache:      c,
		logger:     logger,
	}
}

type CategoryInput struct {
	Name     string                `json:"name" validate:"required"`
	Status   domain.CategoryStatus `json:"status" validate:"omitempty,oneof=Active Inactive"`
	ParentID *string               `json:"parent_id"`
}

func (in *CategoryInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	if in.Status == "" {
		in.Status = domain.CategoryStatusActive
	}
	if in.ParentID != nil && strings.TrimSpace(*in.ParentID) == "" {
		in.ParentID = nil
	}
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return cache.Fetch(ctx, s.cache, categoriesKey+"all", s.categories.List)
}

func (s *Service) CategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return cache.Fetch(ctx, s.cache, categoriesKey+"slug:"+slug, func(ctx context.Context) (*domain.Category, error) {
		c, err := s.categories.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, domain.NotFound("category")
		}
		return c, nil
	})
}

func (s *Service) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("category")
	}
	return c, nil
}

// CategoryRows renders the category forest for the console, siblings
// ordered by name.
func (s *Service) CategoryRows(ctx context.Context, role string, p *policy.Policy) ([]Row, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return RenderRows(BuildTree(categories), role, p), nil
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, "", in.ParentID); err != nil {
		return nil, err
	}

	c := &domain.Category{Name: in.Name, Status: in.Status, ParentID: in.ParentID}
	var err error
	c.Slug, err = slug.Resolve(ctx, true, "", c.Name, "", "", s.categories.SlugExists)
	if err != nil {
		return nil, slug.FieldError("name", err)
	}

	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, categoriesKey, productsKey)

	s.logger.Info("category created", "category_id", c.ID, "slug", c.Slug)
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*domain.Category, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, id, in.ParentID); err != nil {
		return nil, err
	}

	c.Slug, err = slug.Resolve(ctx, false, c.Name, in.Name, c.Slug, c.ID, s.categories.SlugExists)
	if err != nil {
		return nil, slug.FieldError("name", err)
	}
	c.Name, c.Status, c.ParentID = in.Name, in.Status, in.ParentID

	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, categoriesKey, productsKey)

	s.logger.Info("category updated", "category_id", c.ID)
	return c, nil
}

func (s *Service) checkParent(ctx context.Context, selfID string, parentID *string) error {
	if parentID == nil {
		return nil
	}
	all, err := s.categories.List(ctx)
	if err != nil {
		return err
	}
	return CheckParent(all, selfID, *parentID)
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, categoriesKey, productsKey)

	s.logger.Info("category deleted", "category_id", id)
	return nil
}

type ProductInput struct {
	Name        string               `json:"name" validate:"required"`
	Price       decimal.Decimal      `json:"price"`
	Description string               `json:"description"`
	Images      []string             `json:"images" validate:"dive,required"`
	Sizes       []string             `json:"sizes" validate:"dive,required"`
	CategoryIDs []string             `json:"category_ids"`
	Status      domain.ProductStatus `json:"status" validate:"omitempty,oneof=Live Inactive"`
}

func (in *ProductInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	if in.Status == "" {
		in.Status = domain.ProductStatusLive
	}
	in.Sizes = unique(in.Sizes)
	in.CategoryIDs = unique(in.CategoryIDs)
	if in.Images == nil {
		in.Images = []string{}
	}
}

func unique(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func (s *Service) validateProduct(ctx context.Context, in ProductInput) error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	if in.Price.IsNegative() {
		return domain.Invalid("price", "must not be negative")
	}
	if len(in.CategoryIDs) == 0 {
		return nil
	}

	n, err := s.categories.CountExisting(ctx, in.CategoryIDs)
	if err != nil {
		return err
	}
	if n != len(in.CategoryIDs) {
		return domain.Invalid("category_ids", "unknown category")
	}
	return nil
}

type ProductPage struct {
	Products   []domain.ProductDetail `json:"products"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	Total      int                    `json:"total"`
	TotalPages int                    `json:"totalPages"`
}

func (s *Service) ListProducts(ctx context.Context, page domain.Page) (ProductPage, error) {
	key := fmt.Sprintf("%spage:%d:%d", productsKey, page.Number, page.Limit)
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (ProductPage, error) {
		products, total, err := s.products.List(ctx, page)
		if err != nil {
			return ProductPage{}, err
		}
		return ProductPage{
			Products:   products,
			Page:       page.Number,
			Limit:      page.Limit,
			Total:      total,
			TotalPages: domain.TotalPages(total, page.Limit),
		}, nil
	})
}

func (s *Service) ProductBySlug(ctx context.Context, slug string) (*domain.ProductDetail, error) {
	return cache.Fetch(ctx, s.cache, productsKey+"slug:"+slug, func(ctx context.Context) (*domain.ProductDetail, error) {
		p, err := s.products.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.NotFound("product")
		}
		return p, nil
	})
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.ProductDetail, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("product")
	}
	return p, nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	in.normalize()
	if err := s.validateProduct(ctx, in); err != nil {
		return nil, err
	}

	p := &domain.Product{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Images:      in.Images,
		Sizes:       in.Sizes,
		CategoryIDs: in.CategoryIDs,
		Status:      in.Status,
	}
	var err error
	p.Slug, err = slug.Resolve(ctx, true, "", p.Name, "", "", s.products.SlugExists)
	if err != nil {
		return nil, slug.FieldError("name", err)
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, productsKey)

	s.logger.Info("product created", "product_id", p.ID, "slug", p.Slug)
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	in.normalize()
	if err := s.validateProduct(ctx, in); err != nil {
		return nil, err
	}

	current, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	p := current.Product
	p.Slug, err = slug.Resolve(ctx, false, p.Name, in.Name, p.Slug, p.ID, s.products.SlugExists)
	if err != nil {
		return nil, slug.FieldError("name", err)
	}
	p.Name = in.Name
	p.Price = in.Price
	p.Description = in.Description
	p.Images = in.Images
	p.Sizes = in.Sizes
	p.CategoryIDs = in.CategoryIDs
	p.Status = in.Status

	if err := s.products.Update(ctx, &p); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, productsKey)

	s.logger.Info("product updated", "product_id", p.ID)
	return &p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, productsKey)

	s.logger.Info("product deleted", "product_id", id)
	return nil
}
