package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-backend/pkg/db/models"
)

func TestApplySaleToProductGuardsStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Burger", "12.75", 3)

	affected, err := repo.ApplySaleToProduct(ctx, product.ID, 2)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	require.Equal(t, 1, reloaded.Stock)
	require.Equal(t, 2, reloaded.SoldCount)

	affected, err = repo.ApplySaleToProduct(ctx, product.ID, 2)
	require.NoError(t, err)
	require.EqualValues(t, 0, affected)

	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	require.Equal(t, 1, reloaded.Stock, "shortfall must leave stock untouched")

	affected, err = repo.ApplySaleToProduct(ctx, uuid.New(), 1)
	require.NoError(t, err)
	require.EqualValues(t, 0, affected)
}

func TestFindActiveOrder(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.FindActiveOrder(ctx)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	older := &models.Order{ID: uuid.New(), Status: "open", Total: decimal.Zero}
	require.NoError(t, repo.CreateOrder(ctx, older))
	time.Sleep(5 * time.Millisecond)
	newer := &models.Order{ID: uuid.New(), Status: "open", Total: decimal.Zero}
	require.NoError(t, repo.CreateOrder(ctx, newer))
	time.Sleep(5 * time.Millisecond)
	closed := &models.Order{ID: uuid.New(), Status: "finalized", Total: decimal.Zero}
	require.NoError(t, repo.CreateOrder(ctx, closed))

	active, err := repo.FindActiveOrder(ctx)
	require.NoError(t, err)
	require.Equal(t, newer.ID, active.ID)
}

func TestListSalesCountsItems(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Burger", "12.75", 100)

	orderA := &models.Order{ID: uuid.New(), Status: "finalized", Total: decimal.RequireFromString("25.50")}
	require.NoError(t, repo.CreateOrder(ctx, orderA))
	for i := 0; i < 2; i++ {
		require.NoError(t, repo.CreateLine(ctx, &models.OrderLine{
			ID:        uuid.New(),
			OrderID:   orderA.ID,
			ProductID: product.ID,
			Quantity:  1,
			UnitPrice: product.Price,
			LineTotal: product.Price,
		}))
	}
	require.NoError(t, repo.CreateSale(ctx, &models.Sale{ID: uuid.New(), OrderID: orderA.ID, Total: orderA.Total}))

	time.Sleep(5 * time.Millisecond)

	orderB := &models.Order{ID: uuid.New(), Status: "finalized", Total: decimal.Zero}
	require.NoError(t, repo.CreateOrder(ctx, orderB))
	require.NoError(t, repo.CreateSale(ctx, &models.Sale{ID: uuid.New(), OrderID: orderB.ID, Total: decimal.Zero}))

	sales, err := repo.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 2)

	// Newest first; the empty order still lists with a zero item count.
	require.Equal(t, orderB.ID, sales[0].OrderID)
	require.Equal(t, 0, sales[0].ItemCount)
	require.Equal(t, orderA.ID, sales[1].OrderID)
	require.Equal(t, 2, sales[1].ItemCount)
	require.True(t, sales[1].Total.Equal(decimal.RequireFromString("25.50")))
}

func TestLineViewsJoinProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	image := "https://cdn.example.com/burger.png"
	product := &models.Product{
		ID:       uuid.New(),
		Name:     "Burger",
		Price:    decimal.RequireFromString("12.75"),
		Stock:    10,
		ImageURL: &image,
	}
	require.NoError(t, db.Create(product).Error)

	order := &models.Order{ID: uuid.New(), Status: "open", Total: decimal.Zero}
	require.NoError(t, repo.CreateOrder(ctx, order))
	require.NoError(t, repo.CreateLine(ctx, &models.OrderLine{
		ID:        uuid.New(),
		OrderID:   order.ID,
		ProductID: product.ID,
		Quantity:  2,
		UnitPrice: product.Price,
		LineTotal: decimal.RequireFromString("25.50"),
	}))

	views, err := repo.FindLineViewsByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "Burger", views[0].ProductName)
	require.NotNil(t, views[0].ProductImageURL)
	require.Equal(t, image, *views[0].ProductImageURL)
	require.True(t, views[0].UnitPrice.Equal(product.Price))
}
