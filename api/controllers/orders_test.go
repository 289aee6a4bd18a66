package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"storefront-backend/internal/ledger"
	pkgerrors "storefront-backend/pkg/errors"
)

type stubLedgerService struct {
	order  *ledger.OrderDetail
	line   *ledger.OrderLineView
	saleID uuid.UUID
	sales  []ledger.SaleSummary
	err    error
}

func (s stubLedgerService) CreateOrder(context.Context) (*ledger.OrderDetail, error) {
	return s.order, s.err
}

func (s stubLedgerService) AddItem(context.Context, uuid.UUID, uuid.UUID, int) (*ledger.OrderLineView, error) {
	return s.line, s.err
}

func (s stubLedgerService) UpdateItemQuantity(context.Context, uuid.UUID, int) error {
	return s.err
}

func (s stubLedgerService) RemoveItem(context.Context, uuid.UUID) error {
	return s.err
}

func (s stubLedgerService) GetOrder(context.Context, uuid.UUID) (*ledger.OrderDetail, error) {
	return s.order, s.err
}

func (s stubLedgerService) GetActiveOrder(context.Context) (*ledger.OrderDetail, error) {
	return s.order, s.err
}

func (s stubLedgerService) Finalize(context.Context, uuid.UUID) (uuid.UUID, error) {
	return s.saleID, s.err
}

func (s stubLedgerService) Cancel(context.Context, uuid.UUID) error {
	return s.err
}

func (s stubLedgerService) ListSales(context.Context) ([]ledger.SaleSummary, error) {
	return s.sales, s.err
}

func newOrderRouter(svc ledger.Service) http.Handler {
	r := chi.NewRouter()
	r.Post("/orders", CreateOrder(svc, nil))
	r.Get("/orders/active", GetActiveOrder(svc, nil))
	r.Get("/orders/{orderId}", GetOrder(svc, nil))
	r.Post("/orders/{orderId}/finalize", FinalizeOrder(svc, nil))
	r.Post("/orders/{orderId}/cancel", CancelOrder(svc, nil))
	r.Post("/order-items", AddOrderItem(svc, nil))
	return r
}

func TestFinalizeOrderSuccess(t *testing.T) {
	saleID := uuid.New()
	router := newOrderRouter(stubLedgerService{saleID: saleID})

	req := httptest.NewRequest(http.MethodPost, "/orders/"+uuid.NewString()+"/finalize", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["sale_id"] != saleID.String() {
		t.Fatalf("expected sale id %s got %s", saleID, envelope.Data["sale_id"])
	}
}

func TestFinalizeOrderConflict(t *testing.T) {
	router := newOrderRouter(stubLedgerService{
		err: pkgerrors.New(pkgerrors.CodeStateConflict, "order does not exist or is not open"),
	})

	req := httptest.NewRequest(http.MethodPost, "/orders/"+uuid.NewString()+"/finalize", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("unexpected error code %s", envelope.Error.Code)
	}
	if envelope.Error.Message != "order does not exist or is not open" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}

func TestFinalizeOrderBadID(t *testing.T) {
	router := newOrderRouter(stubLedgerService{})

	req := httptest.NewRequest(http.MethodPost, "/orders/not-a-uuid/finalize", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAddOrderItemRejectsBadBody(t *testing.T) {
	router := newOrderRouter(stubLedgerService{})

	body := bytes.NewBufferString(`{"order_id":"` + uuid.NewString() + `","quantity":0}`)
	req := httptest.NewRequest(http.MethodPost, "/order-items", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAddOrderItemSuccess(t *testing.T) {
	orderID := uuid.New()
	productID := uuid.New()
	router := newOrderRouter(stubLedgerService{
		line: &ledger.OrderLineView{ID: uuid.New(), OrderID: orderID, ProductID: productID, Quantity: 2},
	})

	payload, _ := json.Marshal(map[string]any{
		"order_id":   orderID,
		"product_id": productID,
		"quantity":   2,
	})
	req := httptest.NewRequest(http.MethodPost, "/order-items", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetActiveOrderNotFound(t *testing.T) {
	router := newOrderRouter(stubLedgerService{
		err: pkgerrors.New(pkgerrors.CodeNotFound, "no open order"),
	})

	req := httptest.NewRequest(http.MethodGet, "/orders/active", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
