package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-backend/pkg/restapi"
)

// restService satisfies Service against a remote storefront API. The remote
// side owns validation and cascade semantics, so responses and error codes
// match the database binding unchanged.
type restService struct {
	client *restapi.Client
}

// NewRESTService binds the catalog to a remote storefront API.
func NewRESTService(client *restapi.Client) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("rest client required")
	}
	return &restService{client: client}, nil
}

type categoryRequest struct {
	Name     *string `json:"name,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

type productRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	OnPromotion *bool            `json:"on_promotion,omitempty"`
	CategoryID  *uuid.UUID       `json:"category_id,omitempty"`
}

func (s *restService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	req := categoryRequest{Name: &input.Name, ImageURL: input.ImageURL}
	var dto CategoryDTO
	if err := s.client.Post(ctx, "/categories", req, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *restService) UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error) {
	req := categoryRequest{Name: input.Name, ImageURL: input.ImageURL}
	var dto CategoryDTO
	if err := s.client.Put(ctx, "/categories/"+id.String(), req, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *restService) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	var dto CategoryDTO
	if err := s.client.Get(ctx, "/categories/"+id.String(), &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *restService) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	var categories []CategoryDTO
	if err := s.client.Get(ctx, "/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *restService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.client.Delete(ctx, "/categories/"+id.String(), nil)
}

func (s *restService) DeleteAllCategories(ctx context.Context) error {
	return s.client.Delete(ctx, "/categories", nil)
}

func (s *restService) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	req := productRequest{
		Name:        &input.Name,
		Description: &input.Description,
		Price:       &input.Price,
		Stock:       &input.Stock,
		ImageURL:    input.ImageURL,
		OnPromotion: &input.OnPromotion,
		CategoryID:  input.CategoryID,
	}
	var dto ProductDTO
	if err := s.client.Post(ctx, "/products", req, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *restService) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	req := productRequest{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
		OnPromotion: input.OnPromotion,
		CategoryID:  input.CategoryID,
	}
	var dto ProductDTO
	if err := s.client.Put(ctx, "/products/"+id.String(), req, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *restService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	var dto ProductDTO
	if err := s.client.Get(ctx, "/products/"+id.String(), &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *restService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.client.Delete(ctx, "/products/"+id.String(), nil)
}

func (s *restService) DeleteAllProducts(ctx context.Context) error {
	return s.client.Delete(ctx, "/products", nil)
}

func (s *restService) ListProducts(ctx context.Context, input ListProductsInput) ([]ProductDTO, error) {
	query := url.Values{}
	if input.PromoOnly {
		query.Set("promo", "true")
	}
	if input.Sort != SortDefault {
		query.Set("sort", input.Sort)
	}
	if input.CategoryID != nil {
		query.Set("category_id", input.CategoryID.String())
	}
	if input.Pagination.Limit > 0 {
		query.Set("limit", strconv.Itoa(input.Pagination.Limit))
	}
	if input.Pagination.Offset > 0 {
		query.Set("offset", strconv.Itoa(input.Pagination.Offset))
	}

	path := "/products"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var products []ProductDTO
	if err := s.client.Get(ctx, path, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []ProductDTO{}
	}
	return products, nil
}
