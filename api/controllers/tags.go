package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pantrykit/pantry-backend/api/responses"
	"github.com/pantrykit/pantry-backend/api/validators"
	tagsvc "github.com/pantrykit/pantry-backend/internal/tags"
	"github.com/pantrykit/pantry-backend/pkg/logger"
)

type createTagRequest struct {
	Name      string     `json:"name" validate:"required,max=120"`
	TagTypeID *uuid.UUID `json:"tag_type_id,omitempty"`
}

func TagCreate(svc tagsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createTagRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tag, err := svc.CreateTag(r.Context(), validators.SanitizeString(payload.Name, 120), payload.TagTypeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, tag)
	}
}

func TagList(svc tagsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		typeID, err := validators.ParseQueryUUID(r, "tag_type_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tags, err := svc.ListTags(r.Context(), typeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tags)
	}
}

func TagGet(svc tagsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseURLUUID(r, "tagId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tag, err := svc.GetTag(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tag)
	}
}

type updateTagRequest struct {
	Name         *string    `json:"name,omitempty" validate:"omitempty,max=120"`
	TagTypeID    *uuid.UUID `json:"tag_type_id,omitempty"`
	ClearTagType bool       `json:"clear_tag_type,omitempty"`
}

func TagUpdate(svc tagsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseURLUUID(r, "tagId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateTagRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tag, err := svc.UpdateTag(r.Context(), id, payload.Name, payload.TagTypeID, payload.ClearTagType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tag)
	}
}

func TagDelete(svc tagsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseURLUUID(r, "tagId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteTag(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type tagTypeRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

func TagTypeCreate(svc tagsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload tagTypeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tt, err := svc.CreateTagType(r.Context(), validators.SanitizeString(payload.Name, 120))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, tt)
	}
}

func TagTypeList(svc tagsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		types, err := svc.ListTagTypes(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, types)
	}
}

func TagTypeGet(svc tagsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseURLUUID(r, "tagTypeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tt, err := svc.GetTagType(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tt)
	}
}

func TagTypeUpdate(svc tagsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseURLUUID(r, "tagTypeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload tagTypeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tt, err := svc.UpdateTagType(r.Context(), id, validators.SanitizeString(payload.Name, 120))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tt)
	}
}

func TagTypeDelete(svc tagsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseURLUUID(r, "tagTypeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteTagType(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
