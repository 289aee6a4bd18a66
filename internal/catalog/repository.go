package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-backend/pkg/db/models"
)

// Repository is the catalog's storage surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateCategory(ctx context.Context, category *models.Category) error
	FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	SaveCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteProductsByCategory(ctx context.Context, categoryID uuid.UUID) error
	DeleteAllCategories(ctx context.Context) error

	CreateProduct(ctx context.Context, product *models.Product) error
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	SaveProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteAllProducts(ctx context.Context) error
	ListProducts(ctx context.Context, input ListProductsInput) ([]ProductDTO, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) SaveCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *repository) DeleteCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Category{})
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteProductsByCategory(ctx context.Context, categoryID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Delete(&models.Product{}).Error
}

func (r *repository) DeleteAllCategories(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&models.Category{}).Error
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) SaveProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repository) DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Product{})
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteAllProducts(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&models.Product{}).Error
}

func (r *repository) ListProducts(ctx context.Context, input ListProductsInput) ([]ProductDTO, error) {
	params := input.Pagination.Normalize()

	query := r.db.WithContext(ctx).
		Table("products").
		Select("products.id, products.name, products.description, products.price, products.stock, products.image_url, products.on_promotion, products.sold_count, products.category_id, categories.name AS category_name, products.created_at, products.updated_at").
		Joins("LEFT JOIN categories ON categories.id = products.category_id")

	if input.PromoOnly {
		query = query.Where("products.on_promotion = ?", true)
	}
	if input.CategoryID != nil {
		query = query.Where("products.category_id = ?", *input.CategoryID)
	}

	switch input.Sort {
	case SortBestSellers:
		query = query.Order("products.sold_count DESC")
	case SortLatest:
		query = query.Order("products.created_at DESC")
	default:
		query = query.Order("products.name ASC")
	}

	var products []ProductDTO
	err := query.
		Limit(params.Limit).
		Offset(params.Offset).
		Scan(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
