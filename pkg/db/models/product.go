package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a storefront listing. Stock and SoldCount are mutated only by
// order finalization.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null;default:''"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock       int             `gorm:"column:stock;not null;default:0"`
	ImageURL    *string         `gorm:"column:image_url"`
	OnPromotion bool            `gorm:"column:on_promotion;not null;default:false"`
	SoldCount   int             `gorm:"column:sold_count;not null;default:0"`
	CategoryID  *uuid.UUID      `gorm:"column:category_id;type:uuid;index:idx_products_category"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
