package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-backend/pkg/pagination"
)

// CategoryDTO is the API shape of a category.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductDTO is the API shape of a product, joined with its category name for
// display.
type ProductDTO struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	ImageURL     *string         `json:"image_url,omitempty"`
	OnPromotion  bool            `json:"on_promotion"`
	SoldCount    int             `json:"sold_count"`
	CategoryID   *uuid.UUID      `json:"category_id,omitempty"`
	CategoryName *string         `json:"category_name,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreateCategoryInput holds the validated payload to create a category.
type CreateCategoryInput struct {
	Name     string
	ImageURL *string
}

// UpdateCategoryInput holds optional mutation values for a category.
type UpdateCategoryInput struct {
	Name     *string
	ImageURL *string
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    *string
	OnPromotion bool
	CategoryID  *uuid.UUID
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	ImageURL    *string
	OnPromotion *bool
	CategoryID  *uuid.UUID
}

// Product list sort orders.
const (
	SortDefault     = ""
	SortBestSellers = "best_sellers"
	SortLatest      = "latest"
)

// ListProductsInput filters and pages the product listing.
type ListProductsInput struct {
	Pagination pagination.Params
	PromoOnly  bool
	Sort       string
	CategoryID *uuid.UUID
}
