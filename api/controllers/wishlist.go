package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keepsake-app/keepsake-backend/api/responses"
	"github.com/keepsake-app/keepsake-backend/api/validators"
	"github.com/keepsake-app/keepsake-backend/internal/wishlist"
	pkgerrors "github.com/keepsake-app/keepsake-backend/pkg/errors"
	"github.com/keepsake-app/keepsake-backend/pkg/logger"
	"github.com/keepsake-app/keepsake-backend/pkg/types"
)

type wishlistWriteRequest struct {
	Password string              `json:"password"`
	Item     *wishlist.ItemInput `json:"item"`
}

type wishlistReorderRequest struct {
	Password string                 `json:"password"`
	Items    []wishlist.OrderUpdate `json:"items" validate:"required,dive"`
}

func WishlistList(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		items, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.ResultList[wishlist.Item]{Results: items})
	}
}

func WishlistCreate(svc wishlist.Service, gate passwordGate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req wishlistWriteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := gate.Authorize(req.Password); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input, err := wishlistInput(req.Item)
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

func WishlistUpdate(svc wishlist.Service, gate passwordGate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req wishlistWriteRequest
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
		input, err := wishlistInput(req.Item)
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

// WishlistDelete reads the password from the query string.
func WishlistDelete(svc wishlist.Service, gate passwordGate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := gate.Authorize(r.URL.Query().Get("password")); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := validators.ParseID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.SuccessFlag{Success: true})
	}
}

// WishlistPurchase is open to guests so gift givers can claim an item.
func WishlistPurchase(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := validators.ParseID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req wishlist.PurchaseInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.SetPurchased(ctx, id, req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.SuccessFlag{Success: true})
	}
}

func WishlistReorder(svc wishlist.Service, gate passwordGate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req wishlistReorderRequest
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

		if err := svc.Reorder(ctx, req.Items); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.SuccessFlag{Success: true})
	}
}

func WishlistUploadImage(svc wishlist.Service, gate passwordGate, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.UploadImage(ctx, wishlist.ImageInput{
			FileName:    file.Filename,
			ContentType: file.ContentType,
			Data:        file.Data,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func wishlistInput(in *wishlist.ItemInput) (wishlist.ItemInput, error) {
	if in == nil {
		return wishlist.ItemInput{}, pkgerrors.New(pkgerrors.CodeValidation, "item is required")
	}
	if err := validators.ValidateStruct(in); err != nil {
		return wishlist.ItemInput{}, err
	}
	return *in, nil
}
