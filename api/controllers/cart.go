package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantrykit/pantry-backend/api/responses"
	"github.com/pantrykit/pantry-backend/api/validators"
	cartsvc "github.com/pantrykit/pantry-backend/internal/cart"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
	"github.com/pantrykit/pantry-backend/pkg/logger"
)

// CartActive returns the active cart, creating one when none exists.
func CartActive(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cart, err := svc.ActiveCart(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

type addLineRequest struct {
	ItemID   uuid.UUID       `json:"item_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// CartAddLine adds an item to the active cart, merging additively into an
// existing line.
func CartAddLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		active, err := svc.ActiveCart(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithCartID(ctx, active.ID.String())
		}

		cart, err := svc.AddOrIncrement(ctx, active.ID, payload.ItemID, payload.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cart)
	}
}

type setLineQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// CartSetLineQuantity replaces a line's quantity; zero or below removes it.
func CartSetLineQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID, err := parseURLUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload setLineQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.SetLineQuantity(r.Context(), lineID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartRemoveLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID, err := parseURLUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cart, err := svc.RemoveLine(r.Context(), lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartCheckout drains the active cart into restock events. A partial failure
// comes back as a retryable error with the remaining lines still on the cart.
func CartCheckout(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := activeCartID(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithCartID(ctx, cartID.String())
		}

		result, err := svc.Checkout(ctx, cartID)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodePartialCheckout && result != nil {
				typed.WithDetails(map[string]any{
					"applied_lines": result.AppliedLines,
					"failed_lines":  result.FailedLines,
				})
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartAbandon(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := activeCartID(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cart, err := svc.Abandon(r.Context(), cartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// activeCartID resolves the cart the request operates on: an explicit cartId
// path param when the route carries one, otherwise the active cart.
func activeCartID(r *http.Request, svc cartsvc.Service) (uuid.UUID, error) {
	if raw := r.URL.Query().Get("cart_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "cart_id must be a uuid")
		}
		return id, nil
	}
	active, err := svc.ActiveCart(r.Context())
	if err != nil {
		return uuid.Nil, err
	}
	return active.ID, nil
}
