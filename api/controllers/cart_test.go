package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartsvc "github.com/pantrykit/pantry-backend/internal/cart"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
)

type stubCart struct {
	active   *cartsvc.CartDTO
	cart     *cartsvc.CartDTO
	checkout *cartsvc.CheckoutResultDTO
	err      error

	gotItemID   uuid.UUID
	gotQuantity decimal.Decimal
}

func (s *stubCart) ActiveCart(ctx context.Context) (*cartsvc.CartDTO, error) {
	return s.active, nil
}

func (s *stubCart) AddOrIncrement(ctx context.Context, cartID, itemID uuid.UUID, quantity decimal.Decimal) (*cartsvc.CartDTO, error) {
	s.gotItemID = itemID
	s.gotQuantity = quantity
	return s.cart, s.err
}

func (s *stubCart) SetLineQuantity(ctx context.Context, lineID uuid.UUID, quantity decimal.Decimal) (*cartsvc.CartDTO, error) {
	s.gotQuantity = quantity
	return s.cart, s.err
}

func (s *stubCart) RemoveLine(ctx context.Context, lineID uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s *stubCart) Checkout(ctx context.Context, cartID uuid.UUID) (*cartsvc.CheckoutResultDTO, error) {
	return s.checkout, s.err
}

func (s *stubCart) Abandon(ctx context.Context, cartID uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func cartRouter(svc cartsvc.Service) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", CartActive(svc, nil))
		r.Post("/lines", CartAddLine(svc, nil))
		r.Patch("/lines/{lineId}", CartSetLineQuantity(svc, nil))
		r.Delete("/lines/{lineId}", CartRemoveLine(svc, nil))
		r.Post("/checkout", CartCheckout(svc, nil))
		r.Post("/abandon", CartAbandon(svc, nil))
	})
	return r
}

func TestCartActiveReturnsCart(t *testing.T) {
	active := &cartsvc.CartDTO{ID: uuid.New(), Status: "active"}
	router := cartRouter(&stubCart{active: active})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != active.ID {
		t.Fatalf("unexpected cart id: %s", envelope.Data.ID)
	}
}

func TestCartAddLineForwardsPayload(t *testing.T) {
	active := &cartsvc.CartDTO{ID: uuid.New(), Status: "active"}
	stub := &stubCart{active: active, cart: active}
	router := cartRouter(stub)

	itemID := uuid.New()
	body := `{"item_id": "` + itemID.String() + `", "quantity": "1.5"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/lines", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.gotItemID != itemID {
		t.Fatalf("unexpected item id: %s", stub.gotItemID)
	}
	if !stub.gotQuantity.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("unexpected quantity: %s", stub.gotQuantity)
	}
}

func TestCartAddLineRejectsMissingItem(t *testing.T) {
	router := cartRouter(&stubCart{active: &cartsvc.CartDTO{ID: uuid.New()}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/lines", strings.NewReader(`{"quantity": "1"}`))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartCheckoutPartialFailureIsRetryableConflict(t *testing.T) {
	cartID := uuid.New()
	failed := uuid.New()
	stub := &stubCart{
		active: &cartsvc.CartDTO{ID: cartID, Status: "active"},
		checkout: &cartsvc.CheckoutResultDTO{
			Cart:         &cartsvc.CartDTO{ID: cartID, Status: "active"},
			AppliedLines: []uuid.UUID{uuid.New()},
			FailedLines:  []uuid.UUID{failed},
		},
		err: pkgerrors.New(pkgerrors.CodePartialCheckout, "1 of 2 lines failed"),
	}
	router := cartRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/checkout", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Error struct {
			Code      string `json:"code"`
			Retryable bool   `json:"retryable"`
			Details   struct {
				FailedLines []uuid.UUID `json:"failed_lines"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodePartialCheckout) {
		t.Fatalf("unexpected code: %s", envelope.Error.Code)
	}
	if !envelope.Error.Retryable {
		t.Fatal("partial checkout should be retryable")
	}
	if len(envelope.Error.Details.FailedLines) != 1 || envelope.Error.Details.FailedLines[0] != failed {
		t.Fatalf("failed lines not surfaced: %+v", envelope.Error.Details.FailedLines)
	}
}

func TestCartCheckoutCompletes(t *testing.T) {
	cartID := uuid.New()
	stub := &stubCart{
		active: &cartsvc.CartDTO{ID: cartID, Status: "active"},
		checkout: &cartsvc.CheckoutResultDTO{
			Cart:         &cartsvc.CartDTO{ID: cartID, Status: "completed"},
			AppliedLines: []uuid.UUID{uuid.New(), uuid.New()},
		},
	}
	router := cartRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/checkout", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data cartsvc.CheckoutResultDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Cart.Status != "completed" {
		t.Fatalf("unexpected cart status: %s", envelope.Data.Cart.Status)
	}
}

func TestCartAbandonOnTerminalCart(t *testing.T) {
	stub := &stubCart{
		active: &cartsvc.CartDTO{ID: uuid.New(), Status: "completed"},
		err:    pkgerrors.New(pkgerrors.CodeStateConflict, "cart is not active"),
	}
	router := cartRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/abandon", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}
