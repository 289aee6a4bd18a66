package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-backend/pkg/enums"
)

// OrderDetail is an order materialized with its line items for display.
type OrderDetail struct {
	ID        uuid.UUID         `json:"id"`
	Status    enums.OrderStatus `json:"status"`
	Total     decimal.Decimal   `json:"total"`
	Lines     []OrderLineView   `json:"lines"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// OrderLineView joins a line with the product fields the cart screen renders.
type OrderLineView struct {
	ID              uuid.UUID       `json:"id"`
	OrderID         uuid.UUID       `json:"order_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductImageURL *string         `json:"product_image_url,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// SaleSummary annotates a sale with its line-item count.
type SaleSummary struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	CreatedAt time.Time       `json:"created_at"`
}
