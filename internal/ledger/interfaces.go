package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-backend/pkg/db/models"
)

// Service is the order ledger contract: create an order, mutate its lines,
// and convert it into a sale or cancel it. Both the database-backed
// implementation and the remote REST binding satisfy it.
type Service interface {
	CreateOrder(ctx context.Context) (*OrderDetail, error)
	AddItem(ctx context.Context, orderID, productID uuid.UUID, quantity int) (*OrderLineView, error)
	UpdateItemQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, lineID uuid.UUID) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error)
	GetActiveOrder(ctx context.Context) (*OrderDetail, error)
	Finalize(ctx context.Context, orderID uuid.UUID) (uuid.UUID, error)
	Cancel(ctx context.Context, orderID uuid.UUID) error
	ListSales(ctx context.Context) ([]SaleSummary, error)
}

// Repository is the ledger's storage surface. WithTx rebinds the repository to
// an open transaction so multi-row mutations commit or roll back as one unit.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindActiveOrder(ctx context.Context) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) error
	UpdateOrderTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error

	CreateLine(ctx context.Context, line *models.OrderLine) error
	FindLine(ctx context.Context, lineID uuid.UUID) (*models.OrderLine, error)
	UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int, lineTotal decimal.Decimal) error
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
	FindLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error)
	FindLineViewsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderLineView, error)

	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	ApplySaleToProduct(ctx context.Context, productID uuid.UUID, quantity int) (int64, error)

	CreateSale(ctx context.Context, sale *models.Sale) error
	ListSales(ctx context.Context) ([]SaleSummary, error)
}
