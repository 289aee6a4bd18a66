package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-backend/pkg/enums"
)

// Order is a shopping session. Total is derived from its lines and rewritten
// after every line mutation, never hand-set by callers.
type Order struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Status    enums.OrderStatus `gorm:"column:status;not null;default:'open';index:idx_orders_status"`
	Total     decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Lines     []OrderLine       `gorm:"foreignKey:OrderID"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
