package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantrykit/pantry-backend/api/responses"
	"github.com/pantrykit/pantry-backend/api/validators"
	itemsvc "github.com/pantrykit/pantry-backend/internal/items"
	"github.com/pantrykit/pantry-backend/pkg/enums"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
	"github.com/pantrykit/pantry-backend/pkg/logger"
)

type createItemRequest struct {
	Name             string           `json:"name" validate:"required"`
	PackageUnit      *string          `json:"package_unit,omitempty"`
	MeasurementUnit  *string          `json:"measurement_unit,omitempty"`
	AmountPerPackage *decimal.Decimal `json:"amount_per_package,omitempty"`
	TargetUnit       *string          `json:"target_unit,omitempty"`
	PackedQuantity   *int             `json:"packed_quantity,omitempty" validate:"omitempty,min=0"`
	UnpackedQuantity *decimal.Decimal `json:"unpacked_quantity,omitempty"`
	ConsumeAmount    *decimal.Decimal `json:"consume_amount,omitempty"`
	TargetQuantity   *decimal.Decimal `json:"target_quantity,omitempty"`
	RefillThreshold  *decimal.Decimal `json:"refill_threshold,omitempty"`
	DueDate          *time.Time       `json:"due_date,omitempty"`
	EstimatedDueDays *int             `json:"estimated_due_days,omitempty"`
	TagIDs           []uuid.UUID      `json:"tag_ids,omitempty"`
	VendorIDs        []uuid.UUID      `json:"vendor_ids,omitempty"`
}

func (req createItemRequest) toInput() (itemsvc.CreateItemInput, error) {
	input := itemsvc.CreateItemInput{
		Name:             req.Name,
		PackageUnit:      req.PackageUnit,
		MeasurementUnit:  req.MeasurementUnit,
		ConsumeAmount:    req.ConsumeAmount,
		DueDate:          req.DueDate,
		EstimatedDueDays: req.EstimatedDueDays,
		TagIDs:           req.TagIDs,
		VendorIDs:        req.VendorIDs,
	}
	if req.TargetUnit != nil {
		unit, err := enums.ParseTargetUnit(strings.TrimSpace(*req.TargetUnit))
		if err != nil {
			return itemsvc.CreateItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target_unit")
		}
		input.TargetUnit = unit
	}
	if req.AmountPerPackage != nil {
		input.AmountPerPackage = *req.AmountPerPackage
	}
	if req.PackedQuantity != nil {
		input.PackedQuantity = *req.PackedQuantity
	}
	if req.UnpackedQuantity != nil {
		input.UnpackedQuantity = *req.UnpackedQuantity
	}
	if req.TargetQuantity != nil {
		input.TargetQuantity = *req.TargetQuantity
	}
	if req.RefillThreshold != nil {
		input.RefillThreshold = *req.RefillThreshold
	}
	return input, nil
}

// ItemCreate handles item creation.
func ItemCreate(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// ItemList lists items, optionally filtered by name, tag or vendor.
func ItemList(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tagID, err := validators.ParseQueryUUID(r, "tag_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vendorID, err := validators.ParseQueryUUID(r, "vendor_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListItems(r.Context(), itemsvc.ListFilter{
			Name:     validators.SanitizeString(r.URL.Query().Get("name"), 200),
			TagID:    tagID,
			VendorID: vendorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func ItemGet(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseURLUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.GetItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type updateItemRequest struct {
	Name             *string          `json:"name,omitempty"`
	PackageUnit      *string          `json:"package_unit,omitempty"`
	MeasurementUnit  *string          `json:"measurement_unit,omitempty"`
	AmountPerPackage *decimal.Decimal `json:"amount_per_package,omitempty"`
	TargetUnit       *string          `json:"target_unit,omitempty"`
	ConsumeAmount    *decimal.Decimal `json:"consume_amount,omitempty"`
	TargetQuantity   *decimal.Decimal `json:"target_quantity,omitempty"`
	RefillThreshold  *decimal.Decimal `json:"refill_threshold,omitempty"`
	DueDate          *time.Time       `json:"due_date,omitempty"`
	EstimatedDueDays *int             `json:"estimated_due_days,omitempty"`
	ClearDueDate     bool             `json:"clear_due_date,omitempty"`
	TagIDs           *[]uuid.UUID     `json:"tag_ids,omitempty"`
	VendorIDs        *[]uuid.UUID     `json:"vendor_ids,omitempty"`
}

func (req updateItemRequest) toInput() (itemsvc.UpdateItemInput, error) {
	input := itemsvc.UpdateItemInput{
		Name:             req.Name,
		PackageUnit:      req.PackageUnit,
		MeasurementUnit:  req.MeasurementUnit,
		AmountPerPackage: req.AmountPerPackage,
		ConsumeAmount:    req.ConsumeAmount,
		TargetQuantity:   req.TargetQuantity,
		RefillThreshold:  req.RefillThreshold,
		DueDate:          req.DueDate,
		EstimatedDueDays: req.EstimatedDueDays,
		ClearDueDate:     req.ClearDueDate,
		TagIDs:           req.TagIDs,
		VendorIDs:        req.VendorIDs,
	}
	if req.TargetUnit != nil {
		unit, err := enums.ParseTargetUnit(strings.TrimSpace(*req.TargetUnit))
		if err != nil {
			return itemsvc.UpdateItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target_unit")
		}
		input.TargetUnit = &unit
	}
	return input, nil
}

func ItemUpdate(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseURLUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItem(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ItemDelete(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseURLUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteItem(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ItemStatus returns the derived replenishment view of one item.
func ItemStatus(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseURLUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithItemID(ctx, id.String())
		}
		status, err := svc.Status(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
