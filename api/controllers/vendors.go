package controllers

import (
	"net/http"

	"github.com/pantrykit/pantry-backend/api/responses"
	"github.com/pantrykit/pantry-backend/api/validators"
	vendorsvc "github.com/pantrykit/pantry-backend/internal/vendors"
	"github.com/pantrykit/pantry-backend/pkg/logger"
)

type createVendorRequest struct {
	Name  string  `json:"name" validate:"required,max=200"`
	Notes *string `json:"notes,omitempty"`
}

func VendorCreate(svc vendorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createVendorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vendor, err := svc.CreateVendor(r.Context(), validators.SanitizeString(payload.Name, 200), payload.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, vendor)
	}
}

func VendorList(svc vendorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendors, err := svc.ListVendors(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendors)
	}
}

func VendorGet(svc vendorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseURLUUID(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vendor, err := svc.GetVendor(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendor)
	}
}

type updateVendorRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Notes *string `json:"notes,omitempty"`
}

func VendorUpdate(svc vendorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseURLUUID(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateVendorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vendor, err := svc.UpdateVendor(r.Context(), id, payload.Name, payload.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendor)
	}
}

func VendorDelete(svc vendorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseURLUUID(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteVendor(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
