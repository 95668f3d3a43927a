package controllers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/keepsake-app/keepsake-backend/api/responses"
	"github.com/keepsake-app/keepsake-backend/api/validators"
	"github.com/keepsake-app/keepsake-backend/internal/photos"
	pkgerrors "github.com/keepsake-app/keepsake-backend/pkg/errors"
	"github.com/keepsake-app/keepsake-backend/pkg/logger"
	"github.com/keepsake-app/keepsake-backend/pkg/types"
)

const immutableCacheControl = "public, max-age=31536000, immutable"

type photoWriteRequest struct {
	Password string             `json:"password"`
	Photo    *photos.PhotoInput `json:"photo"`
}

type photoReorderRequest struct {
	Password string               `json:"password"`
	Photos   []photos.OrderUpdate `json:"photos" validate:"required,dive"`
}

// PhotosList returns every photo in display order.
func PhotosList(svc photos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		list, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.ResultList[photos.Photo]{Results: list})
	}
}

func PhotosCreate(svc photos.Service, gate passwordGate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req photoWriteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := gate.Authorize(req.Password); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input, err := photoInput(req.Photo)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.CreatedID{Success: true, ID: id})
	}
}

func PhotosUpdate(svc photos.Service, gate passwordGate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req photoWriteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := gate.Authorize(req.Password); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := validators.ParseID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input, err := photoInput(req.Photo)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Update(ctx, id, input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.SuccessFlag{Success: true})
	}
}

func PhotosReorder(svc photos.Service, gate passwordGate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req photoReorderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := gate.Authorize(req.Password); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := validators.ValidateStruct(&req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Reorder(ctx, req.Photos); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.SuccessFlag{Success: true})
	}
}

// PhotosUpload accepts a multipart form with password, file and the optional
// caption and order_index fields.
func PhotosUpload(svc photos.Service, gate passwordGate, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := validators.ParseMultipartForm(w, r, maxBytes); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := gate.Authorize(validators.FormValue(r, "password")); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		file, ok, err := validators.FormFile(r, "file")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "No file provided"))
			return
		}
		orderIndex, err := validators.ParseOptionalInt(validators.FormValue(r, "order_index"), "order_index", 0)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Upload(ctx, photos.UploadInput{
			FileName:    file.Filename,
			ContentType: file.ContentType,
			Data:        file.Data,
			Caption:     validators.FormValue(r, "caption"),
			OrderIndex:  orderIndex,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PhotosServe streams a stored blob. The key is everything after /serve/.
func PhotosServe(svc photos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		obj, err := svc.Open(ctx, chi.URLParam(r, "*"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		defer obj.Body.Close()

		w.Header().Set("Content-Type", obj.ContentType)
		w.Header().Set("Cache-Control", immutableCacheControl)
		if obj.Size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
		}
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, obj.Body); err != nil && logg != nil {
			logg.Error(ctx, "photos.serve.stream_failed", err)
		}
	}
}

func photoInput(in *photos.PhotoInput) (photos.PhotoInput, error) {
	if in == nil {
		return photos.PhotoInput{}, pkgerrors.New(pkgerrors.CodeValidation, "photo is required")
	}
	if err := validators.ValidateStruct(in); err != nil {
		return photos.PhotoInput{}, err
	}
	return *in, nil
}
