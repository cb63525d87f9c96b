package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/praveensri2018/sivanyaAPI/api/middleware"
	orderssvc "github.com/praveensri2018/sivanyaAPI/internal/orders"
	"github.com/praveensri2018/sivanyaAPI/pkg/db/models"
	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	pkgerrors "github.com/praveensri2018/sivanyaAPI/pkg/errors"
	"github.com/shopspring/decimal"
)

type stubOrderService struct {
	placed  *models.Order
	placeIn orderssvc.PlaceInput
	err     error
}

func (s *stubOrderService) Place(ctx context.Context, input orderssvc.PlaceInput) (*models.Order, error) {
	s.placeIn = input
	return s.placed, s.err
}

func (s *stubOrderService) Get(ctx context.Context, userID int64, admin bool, orderID int64) (*orderssvc.Detail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &orderssvc.Detail{Order: *s.placed}, nil
}

func (s *stubOrderService) ListMine(ctx context.Context, userID int64) ([]models.Order, error) {
	return nil, s.err
}

func (s *stubOrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	return nil, s.err
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus) (*models.Order, error) {
	return s.placed, s.err
}

func (s *stubOrderService) Cancel(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	return s.placed, s.err
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := middleware.WithIdentity(req.Context(), 4, enums.UserTierRetailer, false)
	return req.WithContext(ctx)
}

const placeBody = `{
	"payment_reference": "pay_ref_001",
	"shipping_address": {
		"line1": "12 Weaver Street",
		"city": "Kanchipuram",
		"state": "Tamil Nadu",
		"postal_code": "631501"
	}
}`

func TestOrderPlaceSuccess(t *testing.T) {
	t.Parallel()

	stub := &stubOrderService{placed: &models.Order{
		ID:            77,
		UserID:        4,
		TotalAmount:   decimal.RequireFromString("500.00"),
		OrderStatus:   enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusCompleted,
	}}
	handler := OrderPlace(stub, nil)

	req := authedRequest(http.MethodPost, "/orders", placeBody)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	if stub.placeIn.UserID != 4 || stub.placeIn.Tier != enums.UserTierRetailer {
		t.Fatalf("place input = %+v", stub.placeIn)
	}
	if stub.placeIn.PaymentReference != "pay_ref_001" {
		t.Fatalf("reference = %q", stub.placeIn.PaymentReference)
	}
	if stub.placeIn.ShippingAddress == nil || stub.placeIn.ShippingAddress.City != "Kanchipuram" {
		t.Fatalf("shipping address = %+v", stub.placeIn.ShippingAddress)
	}

	var order models.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.ID != 77 {
		t.Fatalf("order id = %d", order.ID)
	}
}

func TestOrderPlaceMissingReference(t *testing.T) {
	t.Parallel()

	handler := OrderPlace(&stubOrderService{}, nil)

	req := authedRequest(http.MethodPost, "/orders", `{}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.Code)
	}
}

func TestOrderPlaceMissingShippingAddress(t *testing.T) {
	t.Parallel()

	stub := &stubOrderService{}
	handler := OrderPlace(stub, nil)

	req := authedRequest(http.MethodPost, "/orders", `{"payment_reference":"pay_ref_001"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	if stub.placeIn.PaymentReference != "" {
		t.Fatal("service was called despite missing address")
	}
}

func TestOrderPlacePaymentErrorIsBadRequest(t *testing.T) {
	t.Parallel()

	stub := &stubOrderService{err: pkgerrors.New(pkgerrors.CodePayment, "Payment amount does not match order total")}
	handler := OrderPlace(stub, nil)

	req := authedRequest(http.MethodPost, "/orders", placeBody)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.Code)
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "Payment amount does not match order total" {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestOrderCancelNonPendingIsBadRequest(t *testing.T) {
	t.Parallel()

	stub := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "Only pending orders can be cancelled")}

	router := chi.NewRouter()
	router.Delete("/orders/{orderID}", OrderCancel(stub, nil))

	req := authedRequest(http.MethodDelete, "/orders/77", "")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.Code)
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "Only pending orders can be cancelled" {
		t.Fatalf("message = %q", body.Message)
	}
}
