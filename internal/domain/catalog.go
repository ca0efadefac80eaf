package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CategoryStatus string

const (
	CategoryStatusActive   CategoryStatus = "Active"
	CategoryStatusInactive CategoryStatus = "Inactive"
)

func (s CategoryStatus) Valid() bool {
	return s == CategoryStatusActive || s == CategoryStatusInactive
}

type Category struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	Status    CategoryStatus `json:"status"`
	ParentID  *string        `json:"parent_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type ProductStatus string

const (
	ProductStatusLive     ProductStatus = "Live"
	ProductStatusInactive ProductStatus = "Inactive"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Images      []string        `json:"images"`
	Sizes       []string        `json:"sizes"`
	CategoryIDs []string        `json:"category_ids"`
	Status      ProductStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Image is the first image URL, used wherever a product is shown as a thumbnail.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// CategoryRef is the projection of a category embedded in product views.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ProductDetail struct {
	Product
	Categories []CategoryRef `json:"categories"`
}

// ProductSummary is the live product projection joined into cart lines and orders.
type ProductSummary struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
	Slug  string          `json:"slug"`
}
