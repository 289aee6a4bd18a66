package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storefront-backend/pkg/db/models"
	"storefront-backend/pkg/enums"
	pkgerrors "storefront-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderLine{},
		&models.Sale{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, db
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:    uuid.New(),
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return product
}

func errCode(t *testing.T, err error) pkgerrors.Code {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	return typed.Code()
}

func TestOrderTotalsFollowLines(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	burger := seedProduct(t, db, "Burger", "12.75", 10)
	soda := seedProduct(t, db, "Soda", "10.00", 10)

	order, err := svc.CreateOrder(ctx)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if !order.Total.IsZero() || order.Status != enums.OrderStatusOpen {
		t.Fatalf("unexpected new order: %+v", order)
	}

	line, err := svc.AddItem(ctx, order.ID, burger.ID, 2)
	if err != nil {
		t.Fatalf("add burger: %v", err)
	}
	if !line.LineTotal.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("unexpected line total: %s", line.LineTotal)
	}

	detail, err := svc.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if !detail.Total.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("expected total 25.50, got %s", detail.Total)
	}

	if _, err := svc.AddItem(ctx, order.ID, soda.ID, 1); err != nil {
		t.Fatalf("add soda: %v", err)
	}
	detail, err = svc.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if !detail.Total.Equal(decimal.RequireFromString("35.50")) {
		t.Fatalf("expected total 35.50, got %s", detail.Total)
	}
	if len(detail.Lines) != 2 || detail.Lines[0].ProductName != "Burger" {
		t.Fatalf("unexpected lines: %+v", detail.Lines)
	}
}

func TestRemoveItemRestoresTotal(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	burger := seedProduct(t, db, "Burger", "12.75", 10)
	soda := seedProduct(t, db, "Soda", "10.00", 10)

	order, err := svc.CreateOrder(ctx)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := svc.AddItem(ctx, order.ID, burger.ID, 2); err != nil {
		t.Fatalf("add burger: %v", err)
	}
	line, err := svc.AddItem(ctx, order.ID, soda.ID, 1)
	if err != nil {
		t.Fatalf("add soda: %v", err)
	}

	if err := svc.RemoveItem(ctx, line.ID); err != nil {
		t.Fatalf("remove soda: %v", err)
	}
	detail, err := svc.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if !detail.Total.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("expected total back to 25.50, got %s", detail.Total)
	}
	if len(detail.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(detail.Lines))
	}
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	burger := seedProduct(t, db, "Burger", "12.75", 10)

	order, err := svc.CreateOrder(ctx)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	line, err := svc.AddItem(ctx, order.ID, burger.ID, 2)
	if err != nil {
		t.Fatalf("add burger: %v", err)
	}

	if err := svc.UpdateItemQuantity(ctx, line.ID, 3); err != nil {
		t.Fatalf("bump quantity: %v", err)
	}
	detail, err := svc.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if !detail.Total.Equal(decimal.RequireFromString("38.25")) {
		t.Fatalf("expected total 38.25, got %s", detail.Total)
	}

	if err := svc.UpdateItemQuantity(ctx, line.ID, 0); err != nil {
		t.Fatalf("drop quantity to zero: %v", err)
	}
	detail, err = svc.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(detail.Lines) != 0 {
		t.Fatalf("expected line removed, got %d lines", len(detail.Lines))
	}
	if !detail.Total.IsZero() {
		t.Fatalf("expected total 0, got %s", detail.Total)
	}
}

func TestFinalizeAppliesSale(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	burger := seedProduct(t, db, "Burger", "12.75", 10)
	soda := seedProduct(t, db, "Soda", "10.00", 3)

	order, err := svc.CreateOrder(ctx)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := svc.AddItem(ctx, order.ID, burger.ID, 2); err != nil {
		t.Fatalf("add burger: %v", err)
	}
	if _, err := svc.AddItem(ctx, order.ID, soda.ID, 1); err != nil {
		t.Fatalf("add soda: %v", err)
	}

	saleID, err := svc.Finalize(ctx, order.ID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if saleID == uuid.Nil {
		t.Fatal("expected sale id")
	}

	var sale models.Sale
	if err := db.First(&sale, "order_id = ?", order.ID).Error; err != nil {
		t.Fatalf("load sale: %v", err)
	}
	if !sale.Total.Equal(decimal.RequireFromString("35.50")) {
		t.Fatalf("expected sale total 35.50, got %s", sale.Total)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", burger.ID).Error; err != nil {
		t.Fatalf("load burger: %v", err)
	}
	if reloaded.Stock != 8 || reloaded.SoldCount != 2 {
		t.Fatalf("unexpected burger state: stock=%d sold=%d", reloaded.Stock, reloaded.SoldCount)
	}
	reloaded = models.Product{}
	if err := db.First(&reloaded, "id = ?", soda.ID).Error; err != nil {
		t.Fatalf("load soda: %v", err)
	}
	if reloaded.Stock != 2 || reloaded.SoldCount != 1 {
		t.Fatalf("unexpected soda state: stock=%d sold=%d", reloaded.Stock, reloaded.SoldCount)
	}

	detail, err := svc.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if detail.Status != enums.OrderStatusFinalized {
		t.Fatalf("expected finalized, got %s", detail.Status)
	}
}

func TestFinalizeTwiceConflicts(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	burger := seedProduct(t, db, "Burger", "12.75", 10)

	order, err := svc.CreateOrder(ctx)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := svc.AddItem(ctx, order.ID, burger.ID, 1); err != nil {
		t.Fatalf("add burger: %v", err)
	}
	if _, err := svc.Finalize(ctx, order.ID); err != nil {
		t.Fatalf("first finalize: %v", err)
	}

	_, err = svc.Finalize(ctx, order.ID)
	if code := errCode(t, err); code != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %s", code)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", burger.ID).Error; err != nil {
		t.Fatalf("load burger: %v", err)
	}
	if reloaded.Stock != 9 || reloaded.SoldCount != 1 {
		t.Fatalf("second finalize must not touch stock: stock=%d sold=%d", reloaded.Stock, reloaded.SoldCount)
	}
}

func TestFinalizeEmptyOrder(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	saleID, err := svc.Finalize(ctx, order.ID)
	if err != nil {
		t.Fatalf("finalize empty order: %v", err)
	}

	var sale models.Sale
	if err := db.First(&sale, "id = ?", saleID).Error; err != nil {
		t.Fatalf("load sale: %v", err)
	}
	if !sale.Total.IsZero() {
		t.Fatalf("expected total 0, got %s", sale.Total)
	}
}

func TestFinalizeInsufficientStockRollsBack(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	burger := seedProduct(t, db, "Burger", "12.75", 10)
	soda := seedProduct(t, db, "Soda", "10.00", 1)

	order, err := svc.CreateOrder(ctx)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := svc.AddItem(ctx, order.ID, burger.ID, 2); err != nil {
		t.Fatalf("add burger: %v", err)
	}
	if _, err := svc.AddItem(ctx, order.ID, soda.ID, 5); err != nil {
		t.Fatalf("add soda: %v", err)
	}

	_, err = svc.Finalize(ctx, order.ID)
	if code := errCode(t, err); code != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %s", code)
	}

	// The burger decrement ran before the soda shortfall; the rollback must
	// undo it.
	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", burger.ID).Error; err != nil {
		t.Fatalf("load burger: %v", err)
	}
	if reloaded.Stock != 10 || reloaded.SoldCount != 0 {
		t.Fatalf("expected burger untouched: stock=%d sold=%d", reloaded.Stock, reloaded.SoldCount)
	}

	detail, err := svc.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if detail.Status != enums.OrderStatusOpen {
		t.Fatalf("order must stay open, got %s", detail.Status)
	}
	var saleCount int64
	if err := db.Model(&models.Sale{}).Count(&saleCount).Error; err != nil {
		t.Fatalf("count sales: %v", err)
	}
	if saleCount != 0 {
		t.Fatalf("expected no sale, got %d", saleCount)
	}
}

func TestPriceSnapshotSurvivesRepricing(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	burger := seedProduct(t, db, "Burger", "12.75", 10)

	order, err := svc.CreateOrder(ctx)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := svc.AddItem(ctx, order.ID, burger.ID, 2); err != nil {
		t.Fatalf("add burger: %v", err)
	}

	if err := db.Model(&models.Product{}).
		Where("id = ?", burger.ID).
		Update("price", decimal.RequireFromString("99.99")).Error; err != nil {
		t.Fatalf("reprice burger: %v", err)
	}

	saleID, err := svc.Finalize(ctx, order.ID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	var sale models.Sale
	if err := db.First(&sale, "id = ?", saleID).Error; err != nil {
		t.Fatalf("load sale: %v", err)
	}
	if !sale.Total.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("expected snapshotted total 25.50, got %s", sale.Total)
	}
}

func TestGetActiveOrderResumesNewestOpen(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	burger := seedProduct(t, db, "Burger", "12.75", 10)

	if _, err := svc.GetActiveOrder(ctx); errCode(t, err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found before any order exists, got %v", err)
	}

	first, err := svc.CreateOrder(ctx)
	if err != nil {
		t.Fatalf("create first order: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second, err := svc.CreateOrder(ctx)
	if err != nil {
		t.Fatalf("create second order: %v", err)
	}
	if _, err := svc.AddItem(ctx, second.ID, burger.ID, 1); err != nil {
		t.Fatalf("add burger: %v", err)
	}

	active, err := svc.GetActiveOrder(ctx)
	if err != nil {
		t.Fatalf("get active order: %v", err)
	}
	if active.ID != second.ID {
		t.Fatalf("expected newest open order %s, got %s", second.ID, active.ID)
	}
	if len(active.Lines) != 1 {
		t.Fatalf("expected resumed order to carry its line")
	}

	if _, err := svc.Finalize(ctx, second.ID); err != nil {
		t.Fatalf("finalize second: %v", err)
	}
	active, err = svc.GetActiveOrder(ctx)
	if err != nil {
		t.Fatalf("get active order: %v", err)
	}
	if active.ID != first.ID {
		t.Fatalf("expected fallback to older open order %s, got %s", first.ID, active.ID)
	}
}

func TestMutationsRejectedOnClosedOrder(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	burger := seedProduct(t, db, "Burger", "12.75", 10)

	order, err := svc.CreateOrder(ctx)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	line, err := svc.AddItem(ctx, order.ID, burger.ID, 1)
	if err != nil {
		t.Fatalf("add burger: %v", err)
	}
	if _, err := svc.Finalize(ctx, order.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if _, err := svc.AddItem(ctx, order.ID, burger.ID, 1); errCode(t, err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on add, got %v", err)
	}
	if err := svc.UpdateItemQuantity(ctx, line.ID, 3); errCode(t, err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on update, got %v", err)
	}
	if err := svc.RemoveItem(ctx, line.ID); errCode(t, err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on remove, got %v", err)
	}
}

func TestCancelOrder(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	burger := seedProduct(t, db, "Burger", "12.75", 10)

	order, err := svc.CreateOrder(ctx)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := svc.AddItem(ctx, order.ID, burger.ID, 2); err != nil {
		t.Fatalf("add burger: %v", err)
	}

	if err := svc.Cancel(ctx, order.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	detail, err := svc.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if detail.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", detail.Status)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", burger.ID).Error; err != nil {
		t.Fatalf("load burger: %v", err)
	}
	if reloaded.Stock != 10 {
		t.Fatalf("cancel must not touch stock, got %d", reloaded.Stock)
	}

	if err := svc.Cancel(ctx, order.ID); errCode(t, err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on second cancel, got %v", err)
	}
}

func TestAddItemValidation(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	burger := seedProduct(t, db, "Burger", "12.75", 10)

	order, err := svc.CreateOrder(ctx)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, err := svc.AddItem(ctx, order.ID, burger.ID, 0); errCode(t, err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error on zero quantity, got %v", err)
	}
	if _, err := svc.AddItem(ctx, order.ID, uuid.New(), 1); errCode(t, err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
	if _, err := svc.AddItem(ctx, uuid.New(), burger.ID, 1); errCode(t, err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown order, got %v", err)
	}
}
