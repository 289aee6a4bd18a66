package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-backend/pkg/db/models"
	"storefront-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a ledger repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindActiveOrder(ctx context.Context) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.OrderStatusOpen).
		Order("created_at DESC").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}

func (r *repository) UpdateOrderTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("total", total).Error
}

func (r *repository) CreateLine(ctx context.Context, line *models.OrderLine) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) FindLine(ctx context.Context, lineID uuid.UUID) (*models.OrderLine, error) {
	var line models.OrderLine
	err := r.db.WithContext(ctx).
		Where("id = ?", lineID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int, lineTotal decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderLine{}).
		Where("id = ?", lineID).
		Updates(map[string]any{
			"quantity":   quantity,
			"line_total": lineTotal,
		}).Error
}

func (r *repository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", lineID).
		Delete(&models.OrderLine{}).Error
}

func (r *repository) FindLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) FindLineViewsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderLineView, error) {
	var views []OrderLineView
	err := r.db.WithContext(ctx).
		Table("order_lines").
		Select("order_lines.id, order_lines.order_id, order_lines.product_id, products.name AS product_name, products.image_url AS product_image_url, order_lines.quantity, order_lines.unit_price, order_lines.line_total").
		Joins("JOIN products ON products.id = order_lines.product_id").
		Where("order_lines.order_id = ?", orderID).
		Order("order_lines.created_at ASC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (r *repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ApplySaleToProduct decrements stock and increments the sold counter in one
// guarded statement. Zero rows affected means the product is missing or its
// stock is short of the requested quantity.
func (r *repository) ApplySaleToProduct(ctx context.Context, productID uuid.UUID, quantity int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock - ?,
			sold_count = sold_count + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, quantity, quantity, productID, quantity)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) CreateSale(ctx context.Context, sale *models.Sale) error {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *repository) ListSales(ctx context.Context) ([]SaleSummary, error) {
	var sales []SaleSummary
	err := r.db.WithContext(ctx).
		Table("sales").
		Select("sales.id, sales.order_id, sales.total, sales.created_at, COUNT(order_lines.id) AS item_count").
		Joins("LEFT JOIN order_lines ON order_lines.order_id = sales.order_id").
		Group("sales.id, sales.order_id, sales.total, sales.created_at").
		Order("sales.created_at DESC").
		Scan(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}
