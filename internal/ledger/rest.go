package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"storefront-backend/pkg/restapi"
)

// restService satisfies Service against a remote storefront API instead of the
// local database. Multi-row mutations map to single remote calls, so the
// remote side owns the all-or-nothing guarantee.
type restService struct {
	client *restapi.Client
}

// NewRESTService binds the order ledger to a remote storefront API.
func NewRESTService(client *restapi.Client) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("rest client required")
	}
	return &restService{client: client}, nil
}

type addItemRequest struct {
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type finalizeResponse struct {
	SaleID uuid.UUID `json:"sale_id"`
}

func (s *restService) CreateOrder(ctx context.Context) (*OrderDetail, error) {
	var detail OrderDetail
	if err := s.client.Post(ctx, "/orders", nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *restService) AddItem(ctx context.Context, orderID, productID uuid.UUID, quantity int) (*OrderLineView, error) {
	req := addItemRequest{OrderID: orderID, ProductID: productID, Quantity: quantity}
	var view OrderLineView
	if err := s.client.Post(ctx, "/order-items", req, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *restService) UpdateItemQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	return s.client.Put(ctx, "/order-items/"+lineID.String(), updateItemRequest{Quantity: quantity}, nil)
}

func (s *restService) RemoveItem(ctx context.Context, lineID uuid.UUID) error {
	return s.client.Delete(ctx, "/order-items/"+lineID.String(), nil)
}

func (s *restService) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	var detail OrderDetail
	if err := s.client.Get(ctx, "/orders/"+orderID.String(), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *restService) GetActiveOrder(ctx context.Context) (*OrderDetail, error) {
	var detail OrderDetail
	if err := s.client.Get(ctx, "/orders/active", &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *restService) Finalize(ctx context.Context, orderID uuid.UUID) (uuid.UUID, error) {
	var resp finalizeResponse
	if err := s.client.Post(ctx, "/orders/"+orderID.String()+"/finalize", nil, &resp); err != nil {
		return uuid.Nil, err
	}
	return resp.SaleID, nil
}

func (s *restService) Cancel(ctx context.Context, orderID uuid.UUID) error {
	return s.client.Post(ctx, "/orders/"+orderID.String()+"/cancel", nil, nil)
}

func (s *restService) ListSales(ctx context.Context) ([]SaleSummary, error) {
	var sales []SaleSummary
	if err := s.client.Get(ctx, "/sales", &sales); err != nil {
		return nil, err
	}
	return sales, nil
}
