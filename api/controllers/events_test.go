package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ledgersvc "github.com/pantrykit/pantry-backend/internal/ledger"
	"github.com/pantrykit/pantry-backend/pkg/db/models"
	"github.com/pantrykit/pantry-backend/pkg/enums"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
	"github.com/pantrykit/pantry-backend/pkg/pagination"
)

type stubLedger struct {
	item    *models.Item
	entry   *models.InventoryLogEntry
	entries []models.InventoryLogEntry
	next    string
	err     error

	gotApply      *ledgersvc.ApplyDeltaInput
	gotSet        *ledgersvc.SetQuantityInput
	gotHistParams pagination.Params
}

func (s *stubLedger) ApplyDelta(ctx context.Context, input ledgersvc.ApplyDeltaInput) (*models.Item, *models.InventoryLogEntry, error) {
	s.gotApply = &input
	return s.item, s.entry, s.err
}

func (s *stubLedger) SetQuantity(ctx context.Context, input ledgersvc.SetQuantityInput) (*models.Item, *models.InventoryLogEntry, error) {
	s.gotSet = &input
	return s.item, s.entry, s.err
}

func (s *stubLedger) History(ctx context.Context, itemID uuid.UUID, params pagination.Params) ([]models.InventoryLogEntry, string, error) {
	s.gotHistParams = params
	return s.entries, s.next, s.err
}

func (s *stubLedger) LastRestockAt(ctx context.Context, itemID uuid.UUID) (*time.Time, error) {
	return nil, s.err
}

func eventsRouter(svc ledgersvc.Service) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1/items/{itemId}/events", func(r chi.Router) {
		r.Post("/", EventApply(svc, nil))
		r.Post("/correction", EventCorrection(svc, nil))
		r.Get("/", EventHistory(svc, nil))
	})
	return r
}

func TestEventApplySuccess(t *testing.T) {
	itemID := uuid.New()
	stub := &stubLedger{
		item:  &models.Item{ID: itemID, Name: "rice"},
		entry: &models.InventoryLogEntry{ID: uuid.New(), ItemID: itemID, Kind: enums.LogEntryKindRestock},
	}
	router := eventsRouter(stub)

	body := `{"delta": "3", "note": "weekly shop"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/"+itemID.String()+"/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.gotApply == nil {
		t.Fatal("ApplyDelta was not called")
	}
	if stub.gotApply.ItemID != itemID {
		t.Fatalf("unexpected item id: %s", stub.gotApply.ItemID)
	}
	if !stub.gotApply.Delta.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("unexpected delta: %s", stub.gotApply.Delta)
	}
	if stub.gotApply.Note == nil || *stub.gotApply.Note != "weekly shop" {
		t.Fatalf("note not forwarded: %v", stub.gotApply.Note)
	}
}

func TestEventApplyBadItemID(t *testing.T) {
	router := eventsRouter(&stubLedger{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/not-a-uuid/events", strings.NewReader(`{"delta":"1"}`))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestEventApplyValidationErrorFromService(t *testing.T) {
	stub := &stubLedger{err: pkgerrors.New(pkgerrors.CodeInvalidDelta, "delta must be non-zero")}
	router := eventsRouter(stub)

	itemID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/"+itemID.String()+"/events", strings.NewReader(`{"delta":"0"}`))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeInvalidDelta) {
		t.Fatalf("unexpected error code: %s", envelope.Error.Code)
	}
}

func TestEventCorrectionForwardsQuantity(t *testing.T) {
	itemID := uuid.New()
	stub := &stubLedger{
		item:  &models.Item{ID: itemID},
		entry: &models.InventoryLogEntry{ID: uuid.New(), ItemID: itemID, Kind: enums.LogEntryKindCorrection},
	}
	router := eventsRouter(stub)

	occurred := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	body := `{"quantity": "2.5", "occurred_at": "` + occurred.Format(time.RFC3339) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/"+itemID.String()+"/events/correction", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.gotSet == nil {
		t.Fatal("SetQuantity was not called")
	}
	if !stub.gotSet.Quantity.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("unexpected quantity: %s", stub.gotSet.Quantity)
	}
	if !stub.gotSet.OccurredAt.Equal(occurred) {
		t.Fatalf("unexpected occurred_at: %s", stub.gotSet.OccurredAt)
	}
}

func TestEventHistoryPassesPagination(t *testing.T) {
	itemID := uuid.New()
	stub := &stubLedger{
		entries: []models.InventoryLogEntry{{ID: uuid.New(), ItemID: itemID}},
		next:    "cursor-token",
	}
	router := eventsRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/"+itemID.String()+"/events?limit=10&cursor=abc", nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.gotHistParams.Limit != 10 {
		t.Fatalf("unexpected limit: %d", stub.gotHistParams.Limit)
	}
	if stub.gotHistParams.Cursor != "abc" {
		t.Fatalf("unexpected cursor: %s", stub.gotHistParams.Cursor)
	}

	var envelope struct {
		Data struct {
			NextCursor string `json:"next_cursor"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.NextCursor != "cursor-token" {
		t.Fatalf("unexpected next cursor: %s", envelope.Data.NextCursor)
	}
}

func TestEventHistoryRejectsOversizedLimit(t *testing.T) {
	router := eventsRouter(&stubLedger{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/"+uuid.NewString()+"/events?limit=9999", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
