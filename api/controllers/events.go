package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pantrykit/pantry-backend/api/responses"
	"github.com/pantrykit/pantry-backend/api/validators"
	ledgersvc "github.com/pantrykit/pantry-backend/internal/ledger"
	"github.com/pantrykit/pantry-backend/pkg/logger"
	"github.com/pantrykit/pantry-backend/pkg/pagination"
)

type applyEventRequest struct {
	Delta      decimal.Decimal `json:"delta"`
	OccurredAt *time.Time      `json:"occurred_at,omitempty"`
	Note       *string         `json:"note,omitempty"`
}

type correctionRequest struct {
	Quantity   decimal.Decimal `json:"quantity"`
	OccurredAt *time.Time      `json:"occurred_at,omitempty"`
	Note       *string         `json:"note,omitempty"`
}

type eventResponse struct {
	Item  any `json:"item"`
	Entry any `json:"entry"`
}

// EventApply records a signed quantity change against an item.
func EventApply(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := parseURLUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload applyEventRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithItemID(ctx, itemID.String())
		}

		input := ledgersvc.ApplyDeltaInput{
			ItemID: itemID,
			Delta:  payload.Delta,
			Note:   payload.Note,
		}
		if payload.OccurredAt != nil {
			input.OccurredAt = *payload.OccurredAt
		}

		item, entry, err := svc.ApplyDelta(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, eventResponse{Item: item, Entry: entry})
	}
}

// EventCorrection sets the resolved quantity to an absolute value.
func EventCorrection(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := parseURLUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload correctionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithItemID(ctx, itemID.String())
		}

		input := ledgersvc.SetQuantityInput{
			ItemID:   itemID,
			Quantity: payload.Quantity,
			Note:     payload.Note,
		}
		if payload.OccurredAt != nil {
			input.OccurredAt = *payload.OccurredAt
		}

		item, entry, err := svc.SetQuantity(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, eventResponse{Item: item, Entry: entry})
	}
}

type historyResponse struct {
	Entries    any    `json:"entries"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// EventHistory returns the item's log entries, newest first.
func EventHistory(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := parseURLUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, next, err := svc.History(r.Context(), itemID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, historyResponse{Entries: entries, NextCursor: next})
	}
}
