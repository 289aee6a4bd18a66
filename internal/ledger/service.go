package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-backend/pkg/db/models"
	"storefront-backend/pkg/enums"
	pkgerrors "storefront-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the database-backed order ledger.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateOrder(ctx context.Context) (*OrderDetail, error) {
	order := &models.Order{
		ID:     uuid.New(),
		Status: enums.OrderStatusOpen,
		Total:  decimal.Zero,
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return &OrderDetail{
		ID:        order.ID,
		Status:    order.Status,
		Total:     order.Total,
		Lines:     []OrderLineView{},
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}, nil
}

func (s *service) AddItem(ctx context.Context, orderID, productID uuid.UUID, quantity int) (*OrderLineView, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}

	var view *OrderLineView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusOpen {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not open")
		}

		product, err := repo.FindProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		// Price captured now; finalize never re-reads it.
		line := &models.OrderLine{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  quantity,
			UnitPrice: product.Price,
			LineTotal: product.Price.Mul(decimal.NewFromInt(int64(quantity))),
		}
		if err := repo.CreateLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order line")
		}

		if err := recomputeOrderTotal(ctx, repo, order.ID); err != nil {
			return err
		}

		view = &OrderLineView{
			ID:              line.ID,
			OrderID:         line.OrderID,
			ProductID:       line.ProductID,
			ProductName:     product.Name,
			ProductImageURL: product.ImageURL,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			LineTotal:       line.LineTotal,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) UpdateItemQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	if lineID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "line id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		line, err := repo.FindLine(ctx, lineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order line")
		}

		if err := ensureOrderOpen(ctx, repo, line.OrderID); err != nil {
			return err
		}

		// Quantity below one means "remove", mirroring the cart screen's
		// decrement-to-zero gesture.
		if quantity < 1 {
			if err := repo.DeleteLine(ctx, line.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order line")
			}
			return recomputeOrderTotal(ctx, repo, line.OrderID)
		}

		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		if err := repo.UpdateLineQuantity(ctx, line.ID, quantity, lineTotal); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order line")
		}
		return recomputeOrderTotal(ctx, repo, line.OrderID)
	})
}

func (s *service) RemoveItem(ctx context.Context, lineID uuid.UUID) error {
	if lineID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "line id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		line, err := repo.FindLine(ctx, lineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order line")
		}

		if err := ensureOrderOpen(ctx, repo, line.OrderID); err != nil {
			return err
		}

		if err := repo.DeleteLine(ctx, line.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order line")
		}
		return recomputeOrderTotal(ctx, repo, line.OrderID)
	})
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return s.materializeOrder(ctx, order)
}

func (s *service) GetActiveOrder(ctx context.Context) (*OrderDetail, error) {
	order, err := s.repo.FindActiveOrder(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no open order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active order")
	}
	return s.materializeOrder(ctx, order)
}

func (s *service) Finalize(ctx context.Context, orderID uuid.UUID) (uuid.UUID, error) {
	if orderID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var saleID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order does not exist or is not open")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusOpen {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order does not exist or is not open")
		}

		lines, err := repo.FindLinesByOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order lines")
		}

		for _, line := range lines {
			affected, err := repo.ApplySaleToProduct(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply sale to product")
			}
			if affected == 0 {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "product stock is below the ordered quantity").
					WithDetails(map[string]any{"product_id": line.ProductID, "quantity": line.Quantity})
			}
		}

		if err := repo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusFinalized.String()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		sale := &models.Sale{
			ID:      uuid.New(),
			OrderID: order.ID,
			Total:   order.Total,
		}
		if err := repo.CreateSale(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale")
		}

		saleID = sale.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return saleID, nil
}

func (s *service) Cancel(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusOpen {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not open")
		}

		if err := repo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusCancelled.String()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		return nil
	})
}

func (s *service) ListSales(ctx context.Context) ([]SaleSummary, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	return sales, nil
}

func (s *service) materializeOrder(ctx context.Context, order *models.Order) (*OrderDetail, error) {
	views, err := s.repo.FindLineViewsByOrder(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order lines")
	}
	if views == nil {
		views = []OrderLineView{}
	}
	return &OrderDetail{
		ID:        order.ID,
		Status:    order.Status,
		Total:     order.Total,
		Lines:     views,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}, nil
}

// ensureOrderOpen rejects line mutations once the owning order left the open
// state.
func ensureOrderOpen(ctx context.Context, repo Repository, orderID uuid.UUID) error {
	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Status != enums.OrderStatusOpen {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not open")
	}
	return nil
}

// recomputeOrderTotal rewrites the order total from its current lines. Runs
// inside the same transaction as the line mutation that made it stale.
func recomputeOrderTotal(ctx context.Context, repo Repository, orderID uuid.UUID) error {
	lines, err := repo.FindLinesByOrder(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order lines")
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal)
	}

	if err := repo.UpdateOrderTotal(ctx, orderID, total); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order total")
	}
	return nil
}
